package game

import (
	"fmt"
	"math"
	"path/filepath"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Mouse sensitivity in radians per pixel.
const orbitSpeed = 0.008

// A left click that travels less than clickSlop pixels selects instead of orbiting.
const (
	clickSlop = 4
	pickPx    = 14
)

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 10 {
		g.stepsPerUpdate++
	}

	// Panels and overlays
	if rl.IsKeyPressed(rl.KeyTab) {
		g.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyS) {
		g.statsPanel.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyW) {
		g.meshRenderer.Wireframe = !g.meshRenderer.Wireframe
	}
	if rl.IsKeyPressed(rl.KeyB) {
		g.showBalls = !g.showBalls
	}

	// Pipeline shortcuts
	if rl.IsKeyPressed(rl.KeyR) {
		g.mb.Reseed()
	}
	if rl.IsKeyPressed(rl.KeyA) {
		g.mb.SetAutoMode(!g.mb.AutoMode())
	}
	if rl.IsKeyPressed(rl.KeyO) {
		g.exportOBJ(g.objExportPath())
	}

	g.handleCameraInput()
}

// objExportPath picks where an interactive OBJ export goes.
func (g *Game) objExportPath() string {
	if g.objPath != "" {
		return g.objPath
	}
	name := fmt.Sprintf("mesh_%d.obj", g.tick)
	if dir := g.outputManager.Dir(); dir != "" {
		return filepath.Join(dir, name)
	}
	return name
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(float64(w), float64(h))
	g.background.Resize(int32(w), int32(h))
	g.inspector.Resize(int32(w), int32(h))
}

// handleCameraInput processes orbit/pan/zoom controls.
func (g *Game) handleCameraInput() {
	// Follow scale changes made through the panel
	if scale := g.mb.Scale(); scale != g.camera.Extent() {
		g.camera.SetExtent(scale)
	}

	mouse := rl.GetMousePosition()
	overPanel := g.controls.Contains(mouse.X, mouse.Y) || g.inspector.Contains(mouse.X, mouse.Y)

	g.handleSelection(mouse.X, mouse.Y, overPanel)

	if !overPanel {
		delta := rl.GetMouseDelta()
		if rl.IsMouseButtonDown(rl.MouseButtonLeft) {
			g.camera.Orbit(-float64(delta.X)*orbitSpeed, float64(delta.Y)*orbitSpeed)
		}
		if rl.IsMouseButtonDown(rl.MouseButtonRight) {
			g.camera.Pan(float64(delta.X), float64(delta.Y))
		}

		// Zoom controls: mouse wheel
		if wheelMove := rl.GetMouseWheelMove(); wheelMove != 0 {
			g.camera.ZoomBy(1 + float64(wheelMove)*0.1)
		}
	}

	// Arrow keys orbit
	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Orbit(-0.02, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Orbit(0.02, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Orbit(0, 0.02)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Orbit(0, -0.02)
	}

	// Keyboard zoom with +/- (= and - keys)
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	// Home key to reset camera
	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}

// handleSelection picks a ball on a left click that did not orbit the camera.
func (g *Game) handleSelection(mouseX, mouseY float32, overPanel bool) {
	if sel, ok := g.inspector.Selected(); ok && sel >= g.mb.NumBalls() {
		g.inspector.Deselect()
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		g.dragPx = 0
	}
	if rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		d := rl.GetMouseDelta()
		g.dragPx += float32(math.Hypot(float64(d.X), float64(d.Y)))
	}
	if !rl.IsMouseButtonReleased(rl.MouseButtonLeft) || g.dragPx >= clickSlop {
		return
	}
	if g.controls.Contains(mouseX, mouseY) {
		return
	}

	picked := -1
	if g.showBalls && !overPanel {
		picked = g.camera.Pick(g.ballCenters(), float64(mouseX), float64(mouseY), pickPx)
	}
	g.inspector.HandleClick(mouseX, mouseY, picked)
}
