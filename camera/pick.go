package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Pick returns the index of the point whose projection lies nearest to the
// screen position (sx, sy), or -1 if none projects within maxPx pixels.
// Among equally near projections the point closest to the eye wins.
func (c *Camera) Pick(points []r3.Vec, sx, sy, maxPx float64) int {
	best := -1
	bestPx := maxPx
	bestDepth := math.Inf(1)
	eye := c.Position()
	for i, p := range points {
		px, py, ok := c.WorldToScreen(p)
		if !ok {
			continue
		}
		d := math.Hypot(px-sx, py-sy)
		depth := r3.Norm(r3.Sub(p, eye))
		if d < bestPx || (d == bestPx && best >= 0 && depth < bestDepth) {
			best, bestPx, bestDepth = i, d, depth
		}
	}
	return best
}
