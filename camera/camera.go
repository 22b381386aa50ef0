// Package camera provides an orbit camera around the metaball volume.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Pitch is kept just short of the poles so the up vector stays valid.
const maxPitch = math.Pi/2 - 0.01

// Camera orbits a target point at a given distance.
// Angles are in radians; yaw 0 looks along -Z from +Z.
type Camera struct {
	// Target is the orbit center in world coordinates
	Target r3.Vec

	Yaw, Pitch float64

	// Distance from the target along the view direction
	Distance float64

	// Vertical field of view in degrees
	FovY float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float64

	// Distance constraints
	MinDistance, MaxDistance float64

	extent float64
}

// New creates a camera framing a cube of the given edge length centered on the origin.
func New(viewportW, viewportH, extent float64) *Camera {
	c := &Camera{
		FovY:      45,
		ViewportW: viewportW,
		ViewportH: viewportH,
	}
	c.Fit(extent)
	return c
}

// Fit sets the distance limits for a cube of the given edge length and resets the view.
func (c *Camera) Fit(extent float64) {
	c.SetExtent(extent)
	c.Reset()
}

// SetExtent rescales the view for a new cube edge length, keeping the angles.
func (c *Camera) SetExtent(extent float64) {
	if extent <= 0 {
		extent = 1
	}
	if c.extent > 0 {
		k := extent / c.extent
		c.Distance *= k
		c.Target = r3.Scale(k, c.Target)
	}
	c.extent = extent
	c.MinDistance = extent * 0.25
	c.MaxDistance = extent * 6
	c.SetDistance(c.Distance)
}

// Extent returns the cube edge length the camera is fitted to.
func (c *Camera) Extent() float64 {
	return c.extent
}

// Reset returns the camera to the default angle and a distance showing the whole cube.
func (c *Camera) Reset() {
	c.Target = r3.Vec{}
	c.Yaw = math.Pi / 6
	c.Pitch = math.Pi / 8
	c.SetDistance(c.extent * 2.5)
}

// Position returns the eye position in world coordinates.
func (c *Camera) Position() r3.Vec {
	return r3.Add(c.Target, r3.Scale(c.Distance, c.offset()))
}

// Forward returns the unit view direction.
func (c *Camera) Forward() r3.Vec {
	return r3.Scale(-1, c.offset())
}

func (c *Camera) offset() r3.Vec {
	cp := math.Cos(c.Pitch)
	return r3.Vec{
		X: cp * math.Sin(c.Yaw),
		Y: math.Sin(c.Pitch),
		Z: cp * math.Cos(c.Yaw),
	}
}

// basis returns the right and up vectors of the view.
func (c *Camera) basis() (right, up r3.Vec) {
	f := c.Forward()
	right = r3.Unit(r3.Cross(f, r3.Vec{Y: 1}))
	up = r3.Cross(right, f)
	return right, up
}

// Orbit rotates the camera by the given angles. Yaw wraps, pitch is clamped.
func (c *Camera) Orbit(dYaw, dPitch float64) {
	c.Yaw = math.Mod(c.Yaw+dYaw, 2*math.Pi)
	if c.Yaw < 0 {
		c.Yaw += 2 * math.Pi
	}
	c.Pitch = clamp(c.Pitch+dPitch, -maxPitch, maxPitch)
}

// Pan moves the target by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float64) {
	right, up := c.basis()
	perPixel := c.worldPerPixel()
	c.Target = r3.Add(c.Target, r3.Add(r3.Scale(-dx*perPixel, right), r3.Scale(dy*perPixel, up)))
}

// SetDistance sets the orbit distance, clamped to min/max.
func (c *Camera) SetDistance(d float64) {
	c.Distance = clamp(d, c.MinDistance, c.MaxDistance)
}

// ZoomBy divides the current distance by the given factor.
func (c *Camera) ZoomBy(factor float64) {
	if factor <= 0 {
		return
	}
	c.SetDistance(c.Distance / factor)
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float64) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// worldPerPixel is the world size of one pixel at the target distance.
func (c *Camera) worldPerPixel() float64 {
	if c.ViewportH <= 0 {
		return 0
	}
	halfH := c.Distance * math.Tan(c.FovY*math.Pi/360)
	return 2 * halfH / c.ViewportH
}

// WorldToScreen projects p onto the viewport.
// ok is false when p is behind the eye.
func (c *Camera) WorldToScreen(p r3.Vec) (sx, sy float64, ok bool) {
	d := r3.Sub(p, c.Position())
	right, up := c.basis()
	depth := r3.Dot(d, c.Forward())
	if depth <= 1e-9 {
		return 0, 0, false
	}
	focal := c.ViewportH / 2 / math.Tan(c.FovY*math.Pi/360)
	sx = c.ViewportW/2 + r3.Dot(d, right)/depth*focal
	sy = c.ViewportH/2 - r3.Dot(d, up)/depth*focal
	return sx, sy, true
}

// IsVisible returns true if a sphere at p with the given radius
// could be on screen (conservative check for culling).
func (c *Camera) IsVisible(p r3.Vec, radius float64) bool {
	d := r3.Sub(p, c.Position())
	right, up := c.basis()
	depth := r3.Dot(d, c.Forward())
	if depth < -radius {
		return false
	}
	tanH := math.Tan(c.FovY * math.Pi / 360)
	tanW := tanH
	if c.ViewportH > 0 {
		tanW = tanH * c.ViewportW / c.ViewportH
	}
	// Slack grows with depth and covers the sphere radius along the slanted planes
	dist := max(depth, 0)
	return math.Abs(r3.Dot(d, right)) <= dist*tanW+radius*math.Hypot(1, tanW) &&
		math.Abs(r3.Dot(d, up)) <= dist*tanH+radius*math.Hypot(1, tanH)
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
