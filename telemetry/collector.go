package telemetry

import "github.com/pthm-cable/metaballs/metaballs"

// Collector accumulates pass stats within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	// Current window tracking
	windowStartTick int32

	// Per-pass series for current window
	triangles   []float64
	vertices    float64
	visited     float64
	evaluations float64
	peakOpen    int

	// Event counters for current window
	sharedSeeds int
	missedSeeds int
	overflows   int
	dropped     int
	rebuilds    int

	last metaballs.Stats
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// Record adds one pass to the current window.
func (c *Collector) Record(s metaballs.Stats) {
	c.triangles = append(c.triangles, float64(s.Triangles))
	c.vertices += float64(s.Vertices)
	c.visited += float64(s.Visited)
	c.evaluations += float64(s.Evaluations)
	if s.PeakOpen > c.peakOpen {
		c.peakOpen = s.PeakOpen
	}

	c.sharedSeeds += s.SharedSeeds
	c.missedSeeds += s.MissedSeeds
	c.dropped += s.Dropped
	if s.Overflow {
		c.overflows++
	}
	if s.Rebuilt {
		c.rebuilds++
	}
	c.last = s
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// radii are vertex-to-ball distances sampled from the latest mesh.
func (c *Collector) Flush(currentTick int32, radii []float64) WindowStats {
	passes := len(c.triangles)
	triMean, triP10, triP50, triP90 := ComputeSeriesStats(c.triangles)
	radiusMean, radiusStd := ComputeRadiusStats(radii)

	mean := func(sum float64) float64 {
		if passes == 0 {
			return 0
		}
		return sum / float64(passes)
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		Balls:     c.last.Balls,
		GridSteps: c.last.GridSteps,
		Level:     c.last.Level,

		Passes: passes,

		TrianglesMean: triMean,
		TrianglesP10:  triP10,
		TrianglesP50:  triP50,
		TrianglesP90:  triP90,
		VerticesMean:  mean(c.vertices),

		VisitedMean:     mean(c.visited),
		EvaluationsMean: mean(c.evaluations),
		PeakOpenMax:     c.peakOpen,

		SharedSeeds: c.sharedSeeds,
		MissedSeeds: c.missedSeeds,
		Overflows:   c.overflows,
		Dropped:     c.dropped,
		Rebuilds:    c.rebuilds,

		RadiusMean: radiusMean,
		RadiusStd:  radiusStd,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.triangles = c.triangles[:0]
	c.vertices = 0
	c.visited = 0
	c.evaluations = 0
	c.peakOpen = 0
	c.sharedSeeds = 0
	c.missedSeeds = 0
	c.overflows = 0
	c.dropped = 0
	c.rebuilds = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
