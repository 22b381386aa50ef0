package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title          string
	Balls          int
	GridSteps      int
	Triangles      int
	Tick           int32
	StepsPerUpdate int
	FPS            int32
	Paused         bool
	Overflow       bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD at the bottom left, above the control legend.
func (h *HUD) Draw(screenHeight int32, data HUDData) {
	y := screenHeight - 90
	rl.DrawText(data.Title, 10, y, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Balls: %d | Grid: %d^3 | Triangles: %d", data.Balls, data.GridSteps, data.Triangles),
		10, y+25, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("Tick: %d | Speed: %dx | FPS: %d", data.Tick, data.StepsPerUpdate, data.FPS),
		10, y+45, 16, rl.LightGray,
	)

	switch {
	case data.Paused:
		rl.DrawText("PAUSED", 10, y-20, 16, rl.Yellow)
	case data.Overflow:
		rl.DrawText("GRID OVERFLOW", 10, y-20, 16, h.renderer.Theme.WarnColor)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}
