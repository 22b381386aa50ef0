package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of extraction passes.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Pipeline settings at window end
	Balls     int     `csv:"balls"`
	GridSteps int     `csv:"grid_steps"`
	Level     float64 `csv:"level"`

	Passes int `csv:"passes"`

	// Mesh size per pass
	TrianglesMean float64 `csv:"triangles_mean"`
	TrianglesP10  float64 `csv:"triangles_p10"`
	TrianglesP50  float64 `csv:"triangles_p50"`
	TrianglesP90  float64 `csv:"triangles_p90"`
	VerticesMean  float64 `csv:"vertices_mean"`

	// Propagation work per pass
	VisitedMean     float64 `csv:"visited_mean"`
	EvaluationsMean float64 `csv:"evaluations_mean"`
	PeakOpenMax     int     `csv:"peak_open_max"`

	// Events during window
	SharedSeeds int `csv:"shared_seeds"`
	MissedSeeds int `csv:"missed_seeds"`
	Overflows   int `csv:"overflows"`
	Dropped     int `csv:"dropped"`
	Rebuilds    int `csv:"rebuilds"`

	// Vertex distance to the nearest ball (sampled at window end)
	RadiusMean float64 `csv:"radius_mean"`
	RadiusStd  float64 `csv:"radius_std"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeSeriesStats calculates mean and percentiles of a per-pass series.
func ComputeSeriesStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	mean = stat.Mean(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)
	return mean, p10, p50, p90
}

// SurfaceRadii returns, for each vertex, the distance to the nearest center.
// The result reuses buf.
func SurfaceRadii(buf []float64, vertices, centers []r3.Vec) []float64 {
	buf = buf[:0]
	if len(centers) == 0 {
		return buf
	}
	for _, v := range vertices {
		best := math.Inf(1)
		for _, c := range centers {
			if d := r3.Norm2(r3.Sub(v, c)); d < best {
				best = d
			}
		}
		buf = append(buf, math.Sqrt(best))
	}
	return buf
}

// ComputeRadiusStats returns the mean and standard deviation of radii.
func ComputeRadiusStats(radii []float64) (mean, std float64) {
	switch len(radii) {
	case 0:
		return 0, 0
	case 1:
		return radii[0], 0
	}
	return stat.MeanStdDev(radii, nil)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("balls", s.Balls),
		slog.Int("grid_steps", s.GridSteps),
		slog.Float64("level", s.Level),
		slog.Int("passes", s.Passes),
		slog.Float64("triangles_mean", s.TrianglesMean),
		slog.Float64("triangles_p10", s.TrianglesP10),
		slog.Float64("triangles_p50", s.TrianglesP50),
		slog.Float64("triangles_p90", s.TrianglesP90),
		slog.Float64("vertices_mean", s.VerticesMean),
		slog.Float64("visited_mean", s.VisitedMean),
		slog.Float64("evaluations_mean", s.EvaluationsMean),
		slog.Int("peak_open_max", s.PeakOpenMax),
		slog.Int("shared_seeds", s.SharedSeeds),
		slog.Int("missed_seeds", s.MissedSeeds),
		slog.Int("overflows", s.Overflows),
		slog.Int("dropped", s.Dropped),
		slog.Int("rebuilds", s.Rebuilds),
		slog.Float64("radius_mean", s.RadiusMean),
		slog.Float64("radius_std", s.RadiusStd),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"balls", s.Balls,
		"grid_steps", s.GridSteps,
		"passes", s.Passes,
		"triangles_mean", s.TrianglesMean,
		"triangles_p50", s.TrianglesP50,
		"visited_mean", s.VisitedMean,
		"evaluations_mean", s.EvaluationsMean,
		"peak_open_max", s.PeakOpenMax,
		"shared_seeds", s.SharedSeeds,
		"overflows", s.Overflows,
		"rebuilds", s.Rebuilds,
		"radius_mean", s.RadiusMean,
		"radius_std", s.RadiusStd,
	)
}
