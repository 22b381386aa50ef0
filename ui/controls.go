package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/metaballs/config"
)

// Controls is the set of pipeline settings the panel edits.
type Controls interface {
	NumBalls() int
	SetNumBalls(n int)
	GridSteps() int
	SetGridSteps(n int)
	Scale() float64
	SetScale(s float64)
	Level() float64
	SetLevel(level float64)
	LevelRange() (lo, hi float64)
	AutoLimit() r3.Vec
	SetAutoLimitX(v float64)
	SetAutoLimitY(v float64)
	SetAutoLimitZ(v float64)
	AutoMode() bool
	SetAutoMode(auto bool)
	RandomSeed() bool
	SetRandomSeed(random bool)
	Reseed()
}

// maxScaleSlider caps the scale slider; scale has no hard upper bound.
const maxScaleSlider = 800

// ControlsPanel renders the left-side panel of raygui sliders and buttons.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether a screen point is over the panel.
func (c *ControlsPanel) Contains(x, y float32) bool {
	if !c.visible {
		return false
	}
	return x >= float32(c.x) && x <= float32(c.x+c.width) &&
		y >= float32(c.y) && y <= float32(c.y+c.height())
}

func (c *ControlsPanel) height() int32 {
	// title, seven sliders, two button rows
	return 25 + 7*35 + 5 + 40 + 30 + 2*c.renderer.Theme.Padding
}

// Draw renders the panel and applies any changes to ctl.
func (c *ControlsPanel) Draw(ctl Controls) {
	if !c.visible {
		return
	}

	r := c.renderer
	padding := r.Theme.Padding
	r.DrawPanel(c.x, c.y, c.width, c.height())

	x := float32(c.x + padding)
	y := float32(c.y + padding)
	sliderW := float32(c.width - padding*2 - 50)

	rl.DrawText("Metaballs", int32(x), int32(y), 16, rl.White)
	y += 25

	slider := func(label, value string, v, lo, hi float32) float32 {
		rl.DrawText(label, int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
		out := gui.SliderBar(rl.Rectangle{X: x, Y: y + 14, Width: sliderW, Height: 14}, "", "", v, lo, hi)
		rl.DrawText(value, int32(x+sliderW+6), int32(y+14), r.Theme.FontSize, r.Theme.ValueColor)
		y += 35
		return out
	}

	if n := int(slider("Balls", fmt.Sprintf("%d", ctl.NumBalls()), float32(ctl.NumBalls()), 0, config.MaxBalls) + 0.5); n != ctl.NumBalls() {
		ctl.SetNumBalls(n)
	}
	if n := int(slider("Grid steps", fmt.Sprintf("%d", ctl.GridSteps()), float32(ctl.GridSteps()), config.MinGridSteps, config.MaxGridSteps) + 0.5); n != ctl.GridSteps() {
		ctl.SetGridSteps(n)
	}
	if s := slider("Scale", fmt.Sprintf("%.0f", ctl.Scale()), float32(ctl.Scale()), config.MinScale, maxScaleSlider); s != float32(ctl.Scale()) {
		ctl.SetScale(float64(s))
	}
	lo, hi := ctl.LevelRange()
	if l := slider("Level", fmt.Sprintf("%.3g", ctl.Level()), float32(ctl.Level()), float32(lo), float32(hi)); l != float32(ctl.Level()) {
		ctl.SetLevel(float64(l))
	}

	limit := ctl.AutoLimit()
	if v := slider("Limit X", fmt.Sprintf("%.2f", limit.X), float32(limit.X), config.MinLimit, config.MaxLimit); v != float32(limit.X) {
		ctl.SetAutoLimitX(float64(v))
	}
	if v := slider("Limit Y", fmt.Sprintf("%.2f", limit.Y), float32(limit.Y), config.MinLimit, config.MaxLimit); v != float32(limit.Y) {
		ctl.SetAutoLimitY(float64(v))
	}
	if v := slider("Limit Z", fmt.Sprintf("%.2f", limit.Z), float32(limit.Z), config.MinLimit, config.MaxLimit); v != float32(limit.Z) {
		ctl.SetAutoLimitZ(float64(v))
	}
	y += 5

	buttonW := (float32(c.width) - float32(padding)*3) / 2
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: buttonW, Height: 30}, toggleText(ctl.AutoMode(), "Stop", "Auto fly")) {
		ctl.SetAutoMode(!ctl.AutoMode())
	}
	if gui.Button(rl.Rectangle{X: x + buttonW + float32(padding), Y: y, Width: buttonW, Height: 30}, toggleText(ctl.RandomSeed(), "Random", "Centered")) {
		ctl.SetRandomSeed(!ctl.RandomSeed())
	}
	y += 40

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: buttonW, Height: 30}, "Reseed") {
		ctl.Reseed()
	}
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
