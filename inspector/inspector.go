// Package inspector shows the state of one selected ball in a side panel.
package inspector

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/metaballs/balls"
)

// Panel dimensions
const (
	PanelWidth   = 320
	PanelPadding = 10
	HeaderHeight = 30
)

// Panel colors
var (
	ColorPanelBg     = rl.Color{R: 30, G: 30, B: 35, A: 240}
	ColorPanelHeader = rl.Color{R: 45, G: 45, B: 55, A: 255}
	ColorPanelBorder = rl.Color{R: 70, G: 70, B: 80, A: 255}
	ColorHeaderText  = rl.Color{R: 255, G: 255, B: 255, A: 255}
	ColorCloseBtn    = rl.Color{R: 180, G: 80, B: 80, A: 255}
	ColorSection     = rl.Color{R: 50, G: 50, B: 60, A: 255}
	ColorSectionText = rl.Color{R: 200, G: 200, B: 220, A: 255}
	ColorSelection   = rl.Color{R: 255, G: 240, B: 120, A: 255}
)

// Data is what the panel shows for the selected ball.
type Data struct {
	Ball     balls.Ball
	Energy   float64 // field energy at the ball center
	Level    float64
	MaxSpeed float64 // local units per second
	Auto     bool
}

// Inspector tracks the selected ball and draws its panel.
type Inspector struct {
	selected int // -1 when nothing is selected
	bounds   rl.Rectangle
}

// NewInspector creates an inspector with nothing selected.
func NewInspector(screenWidth, screenHeight int32) *Inspector {
	ins := &Inspector{selected: -1}
	ins.Resize(screenWidth, screenHeight)
	return ins
}

// Resize re-anchors the panel to the bottom right corner.
func (ins *Inspector) Resize(screenWidth, screenHeight int32) {
	ins.bounds = rl.Rectangle{
		X:      float32(screenWidth - PanelWidth - 10),
		Y:      float32(screenHeight - panelHeight - 40),
		Width:  PanelWidth,
		Height: panelHeight,
	}
}

func (ins *Inspector) closeButton() rl.Rectangle {
	return rl.Rectangle{X: ins.bounds.X + PanelWidth - 25, Y: ins.bounds.Y + 5, Width: 20, Height: 20}
}

// HandleClick processes a click that did not drag the camera.
// picked is the ball under the cursor or -1.
// Returns true if the click was consumed by the panel.
func (ins *Inspector) HandleClick(mouseX, mouseY float32, picked int) bool {
	if ins.Contains(mouseX, mouseY) {
		if rl.CheckCollisionPointRec(rl.Vector2{X: mouseX, Y: mouseY}, ins.closeButton()) {
			ins.Deselect()
		}
		return true
	}
	ins.selected = max(picked, -1)
	return false
}

// Contains reports whether the point is over the visible panel.
func (ins *Inspector) Contains(x, y float32) bool {
	return ins.selected >= 0 && rl.CheckCollisionPointRec(rl.Vector2{X: x, Y: y}, ins.bounds)
}

// Deselect clears the current selection.
func (ins *Inspector) Deselect() {
	ins.selected = -1
}

// Selected returns the index of the selected ball.
func (ins *Inspector) Selected() (int, bool) {
	return ins.selected, ins.selected >= 0
}

// panelHeight is fixed: header, one line per Ball field and the field section.
const panelHeight = HeaderHeight + PanelPadding + 22 + 8 + 5*20 + 12 + 20 + 3*18 + PanelPadding

// Draw renders the panel for the selected ball, if any.
func (ins *Inspector) Draw(data Data) {
	if ins.selected < 0 {
		return
	}
	px, py := int32(ins.bounds.X), int32(ins.bounds.Y)

	rl.DrawRectangleRec(ins.bounds, ColorPanelBg)
	rl.DrawRectangleLinesEx(ins.bounds, 1, ColorPanelBorder)
	rl.DrawRectangle(px, py, PanelWidth, HeaderHeight, ColorPanelHeader)
	rl.DrawText("INSPECTOR", px+PanelPadding, py+7, 16, ColorHeaderText)

	closeBtn := ins.closeButton()
	rl.DrawRectangleRec(closeBtn, ColorCloseBtn)
	rl.DrawText("X", int32(closeBtn.X)+6, int32(closeBtn.Y)+3, 14, rl.White)

	x, y := px+PanelPadding, py+HeaderHeight+PanelPadding

	mode := "manual"
	if data.Auto {
		mode = "auto"
	}
	rl.DrawText(fmt.Sprintf("Ball #%d  Motion: %s", ins.selected, mode), x, y, 14, ColorHeaderText)
	y += 22

	rl.DrawLine(x, y, px+PanelWidth-PanelPadding, y, ColorPanelBorder)
	y += 8

	for _, f := range ExtractFields(data.Ball) {
		y += max(DrawField(x, y, f), 20)
	}

	y += 4
	rl.DrawLine(x, y, px+PanelWidth-PanelPadding, y, ColorPanelBorder)
	y += 8

	ins.drawSectionHeader(x, y, "FIELD")
	y += 20

	y += DrawBar(x, y, "Energy", data.Energy, Hints{Max: 2 * data.Level, Mark: 0.5, Format: "%.1f"})
	y += DrawBar(x, y, "Speed", r3.Norm(data.Ball.Velocity), Hints{Max: data.MaxSpeed, Format: "%.3f"})
	DrawBool(x, y, "Inside", data.Energy >= data.Level)
}

// drawSectionHeader renders a section title.
func (ins *Inspector) drawSectionHeader(x, y int32, title string) {
	rl.DrawRectangle(x-2, y-2, PanelWidth-2*PanelPadding+4, 18, ColorSection)
	rl.DrawText(title, x+2, y, 14, ColorSectionText)
}

// DrawSelectionHighlight draws a marker around the selected ball. Call inside 3D mode.
func (ins *Inspector) DrawSelectionHighlight(center r3.Vec, radius float64) {
	if ins.selected < 0 {
		return
	}
	pos := rl.NewVector3(float32(center.X), float32(center.Y), float32(center.Z))
	rl.DrawSphereWires(pos, float32(radius), 8, 12, ColorSelection)
}
