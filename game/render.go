package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/metaballs/inspector"
	"github.com/pthm-cable/metaballs/renderer"
	"github.com/pthm-cable/metaballs/ui"
)

const controlsLegend = "Click ball: inspect | Drag: orbit | Right drag: pan | Wheel: zoom | Space: pause | Tab: panel | S: stats | W: wireframe | B: balls | R: reseed | A: auto | O: export OBJ"

var (
	gridColor  = rl.Color{R: 70, G: 80, B: 95, A: 255}
	limitColor = rl.Color{R: 120, G: 110, B: 60, A: 255}
	ballColor  = rl.Color{R: 230, G: 200, B: 90, A: 255}
)

// Draw renders one frame.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)
	g.background.Draw()

	rl.BeginMode3D(renderer.Camera3D(g.camera))
	g.meshRenderer.Draw()
	renderer.DrawBox(g.mb.GridBounds(), gridColor)
	if g.mb.AutoMode() {
		renderer.DrawBox(g.mb.Bounds(), limitColor)
	}
	if g.showBalls {
		renderer.DrawBallMarkers(g.ballCenters(), g.mb.Space().Voxel*0.5, ballColor)
	}
	if sel, ok := g.inspector.Selected(); ok && sel < g.mb.NumBalls() {
		g.inspector.DrawSelectionHighlight(g.mb.Ball(sel).Position, g.mb.Space().Voxel)
	}
	rl.EndMode3D()

	g.drawUI()

	rl.EndDrawing()
}

// drawUI renders the panels, HUD and control legend.
func (g *Game) drawUI() {
	stats := g.mb.Stats()
	screenW := int32(g.screenWidth)
	screenH := int32(g.screenHeight)

	g.controls.Draw(g.mb)
	g.statsPanel.Draw(screenW, ui.StatsData{
		Pass:    stats,
		Ceiling: g.mb.OpenCeiling(),
		Perf:    g.perfCollector.Stats(),
	})

	g.hud.Draw(screenH, ui.HUDData{
		Title:          "Metaballs",
		Balls:          stats.Balls,
		GridSteps:      stats.GridSteps,
		Triangles:      stats.Triangles,
		Tick:           g.tick,
		StepsPerUpdate: g.stepsPerUpdate,
		FPS:            rl.GetFPS(),
		Paused:         g.paused,
		Overflow:       stats.Overflow,
	})
	if sel, ok := g.inspector.Selected(); ok && sel < g.mb.NumBalls() {
		b := g.mb.Ball(sel)
		cfg := g.mb.Config()
		g.inspector.Draw(inspector.Data{
			Ball:     b,
			Energy:   g.mb.EnergyAt(b.Position),
			Level:    g.mb.Level(),
			MaxSpeed: cfg.Motion.MaxSpeed,
			Auto:     g.mb.AutoMode(),
		})
	}
	g.hud.DrawControls(screenH, controlsLegend)
}
