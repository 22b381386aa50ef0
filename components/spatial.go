package components

import "gonum.org/v1/gonum/spatial/r3"

// Position represents a ball's position in local grid space ([-1,1] per axis).
type Position struct {
	r3.Vec
}

// Velocity represents a ball's velocity in local units per second.
type Velocity struct {
	r3.Vec
}

// Acceleration represents a ball's current acceleration.
type Acceleration struct {
	r3.Vec
}
