package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/metaballs/camera"
)

// Camera3D converts an orbit camera to its raylib form.
func Camera3D(c *camera.Camera) rl.Camera3D {
	return rl.Camera3D{
		Position:   vec3(c.Position()),
		Target:     vec3(c.Target),
		Up:         rl.NewVector3(0, 1, 0),
		Fovy:       float32(c.FovY),
		Projection: rl.CameraPerspective,
	}
}

// DrawBox draws an axis-aligned box as wire edges.
func DrawBox(b r3.Box, col rl.Color) {
	size := r3.Sub(b.Max, b.Min)
	center := r3.Scale(0.5, r3.Add(b.Min, b.Max))
	rl.DrawCubeWires(vec3(center), float32(size.X), float32(size.Y), float32(size.Z), col)
}

// DrawBallMarkers draws a small marker at each ball center.
func DrawBallMarkers(centers []r3.Vec, radius float64, col rl.Color) {
	for _, c := range centers {
		rl.DrawSphereWires(vec3(c), float32(radius), 6, 8, col)
	}
}
