// Package components defines ECS components for metaball entities.
package components

// Charge holds the field strength of a ball and its retarget timer.
type Charge struct {
	Mass float64
	Age  float64 // seconds since the acceleration was last changed
}
