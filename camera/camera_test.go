package camera

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestNew(t *testing.T) {
	cam := New(1280, 720, 200)

	if cam.Target != (r3.Vec{}) {
		t.Errorf("expected camera aimed at origin, got %v", cam.Target)
	}
	if math.Abs(cam.Distance-500) > 1e-9 {
		t.Errorf("expected distance 500, got %f", cam.Distance)
	}
	if cam.MinDistance != 50 || cam.MaxDistance != 1200 {
		t.Errorf("unexpected distance limits %f..%f", cam.MinDistance, cam.MaxDistance)
	}
}

func TestPositionAtDistance(t *testing.T) {
	cam := New(1280, 720, 200)
	cam.Target = r3.Vec{X: 5, Y: -3, Z: 2}

	for _, yaw := range []float64{0, 1, 2.5, 4} {
		cam.Yaw = yaw
		got := r3.Norm(r3.Sub(cam.Position(), cam.Target))
		if math.Abs(got-cam.Distance) > 1e-9 {
			t.Errorf("yaw %f: eye at distance %f, want %f", yaw, got, cam.Distance)
		}
	}
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := New(1280, 720, 200)

	// Target should map to screen center
	sx, sy, ok := cam.WorldToScreen(cam.Target)
	if !ok || math.Abs(sx-640) > 0.01 || math.Abs(sy-360) > 0.01 {
		t.Errorf("expected screen center (640, 360), got (%f, %f, %v)", sx, sy, ok)
	}

	// Behind the eye is not projected
	behind := r3.Sub(cam.Position(), cam.Forward())
	if _, _, ok := cam.WorldToScreen(behind); ok {
		t.Error("point behind the camera should not project")
	}
}

func TestWorldToScreenOrientation(t *testing.T) {
	cam := New(1280, 720, 200)
	cam.Yaw, cam.Pitch = 0, 0

	// Looking down -Z: +X is right, +Y is up on screen
	sx, _, _ := cam.WorldToScreen(r3.Vec{X: 10})
	if sx <= 640 {
		t.Errorf("expected +X right of center, got x=%f", sx)
	}
	_, sy, _ := cam.WorldToScreen(r3.Vec{Y: 10})
	if sy >= 360 {
		t.Errorf("expected +Y above center, got y=%f", sy)
	}
}

func TestOrbitWrapsAndClamps(t *testing.T) {
	cam := New(1280, 720, 200)
	cam.Yaw = 0.5

	cam.Orbit(-1, 0)
	if cam.Yaw < 0 || cam.Yaw >= 2*math.Pi {
		t.Errorf("expected yaw wrapped into [0, 2pi), got %f", cam.Yaw)
	}

	cam.Orbit(0, 10)
	if cam.Pitch != maxPitch {
		t.Errorf("expected pitch clamped to %f, got %f", maxPitch, cam.Pitch)
	}
	cam.Orbit(0, -20)
	if cam.Pitch != -maxPitch {
		t.Errorf("expected pitch clamped to %f, got %f", -maxPitch, cam.Pitch)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(1280, 720, 200)

	cam.ZoomBy(100) // Closer than min
	if cam.Distance != cam.MinDistance {
		t.Errorf("expected distance clamped to %f, got %f", cam.MinDistance, cam.Distance)
	}

	cam.SetDistance(1e6) // Beyond max
	if cam.Distance != cam.MaxDistance {
		t.Errorf("expected distance clamped to %f, got %f", cam.MaxDistance, cam.Distance)
	}

	before := cam.Distance
	cam.ZoomBy(0)
	if cam.Distance != before {
		t.Error("non-positive zoom factor should be ignored")
	}
}

func TestPanMovesTarget(t *testing.T) {
	cam := New(1280, 720, 200)
	cam.Yaw, cam.Pitch = 0, 0

	cam.Pan(-100, 0)
	if cam.Target.X <= 0 || math.Abs(cam.Target.Y) > 1e-9 {
		t.Errorf("dragging left should move the target right, got %v", cam.Target)
	}

	// The target keeps its screen position after a pan
	sx, sy, _ := cam.WorldToScreen(cam.Target)
	if math.Abs(sx-640) > 0.01 || math.Abs(sy-360) > 0.01 {
		t.Errorf("target should stay centered, got (%f, %f)", sx, sy)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1280, 720, 200)

	if !cam.IsVisible(r3.Vec{}, 10) {
		t.Error("target should be visible")
	}

	// Far to the side of the view
	right, _ := cam.basis()
	if cam.IsVisible(r3.Scale(5000, right), 10) {
		t.Error("far point should not be visible")
	}

	// Behind the eye
	behind := r3.Sub(cam.Position(), r3.Scale(100, cam.Forward()))
	if cam.IsVisible(behind, 10) {
		t.Error("point behind the camera should not be visible")
	}

	// The whole grid cube fits on screen at the default distance
	for _, corner := range []r3.Vec{{X: -100, Y: -100, Z: -100}, {X: 100, Y: 100, Z: 100}, {X: 100, Y: -100, Z: 100}} {
		if !cam.IsVisible(corner, 0) {
			t.Errorf("corner %v should be visible", corner)
		}
	}
}

func TestReset(t *testing.T) {
	cam := New(1280, 720, 200)
	cam.Target = r3.Vec{X: 50}
	cam.Orbit(1, 0.3)
	cam.ZoomBy(2)

	cam.Reset()

	fresh := New(1280, 720, 200)
	if cam.Target != fresh.Target || cam.Yaw != fresh.Yaw || cam.Pitch != fresh.Pitch || cam.Distance != fresh.Distance {
		t.Errorf("expected default view, got %+v", cam)
	}
}

func TestSetExtentKeepsAngles(t *testing.T) {
	cam := New(1280, 720, 200)
	cam.Orbit(0.4, 0.2)
	yaw, pitch := cam.Yaw, cam.Pitch
	before := cam.Distance

	cam.SetExtent(400)

	if cam.Yaw != yaw || cam.Pitch != pitch {
		t.Error("SetExtent should keep the orbit angles")
	}
	if math.Abs(cam.Distance-2*before) > 1e-9 {
		t.Errorf("expected distance %f, got %f", 2*before, cam.Distance)
	}
	if cam.Extent() != 400 || cam.MaxDistance != 2400 {
		t.Errorf("unexpected limits for extent %f: max %f", cam.Extent(), cam.MaxDistance)
	}
}

func TestPick(t *testing.T) {
	cam := New(1280, 720, 200)
	points := []r3.Vec{
		{X: 80, Y: 0, Z: 0},
		{},
		{X: -80, Y: 40, Z: 0},
	}

	sx, sy, _ := cam.WorldToScreen(points[2])
	if got := cam.Pick(points, sx+3, sy-2, 10); got != 2 {
		t.Errorf("expected point 2, got %d", got)
	}
	if got := cam.Pick(points, 640, 360, 10); got != 1 {
		t.Errorf("expected the target point at screen center, got %d", got)
	}
	if got := cam.Pick(points, 5, 5, 10); got != -1 {
		t.Errorf("expected no pick in the corner, got %d", got)
	}

	// A point behind the eye is never picked
	behind := r3.Add(cam.Position(), r3.Scale(-10, cam.Forward()))
	if got := cam.Pick([]r3.Vec{behind}, 640, 360, 1e6); got != -1 {
		t.Errorf("expected point behind the eye to be skipped, got %d", got)
	}
}
