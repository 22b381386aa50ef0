package telemetry

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/metaballs/metaballs"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeSeriesStats(t *testing.T) {
	values := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}
	mean, p10, p50, p90 := ComputeSeriesStats(values)

	// Mean should be 0.55
	if math.Abs(mean-0.55) > 0.001 {
		t.Errorf("mean = %v, want 0.55", mean)
	}

	// P10 should be around 0.19
	if math.Abs(p10-0.19) > 0.01 {
		t.Errorf("p10 = %v, want ~0.19", p10)
	}

	// P50 should be around 0.55
	if math.Abs(p50-0.55) > 0.01 {
		t.Errorf("p50 = %v, want ~0.55", p50)
	}

	// P90 should be around 0.91
	if math.Abs(p90-0.91) > 0.01 {
		t.Errorf("p90 = %v, want ~0.91", p90)
	}

	// Input must not be reordered
	shuffled := []float64{3, 1, 2}
	ComputeSeriesStats(shuffled)
	if shuffled[0] != 3 {
		t.Error("input slice was sorted in place")
	}
}

func TestComputeSeriesStatsEmpty(t *testing.T) {
	mean, p10, p50, p90 := ComputeSeriesStats([]float64{})

	if mean != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}
}

func TestSurfaceRadii(t *testing.T) {
	vertices := []r3.Vec{{X: 3}, {X: -9}, {Y: 4}}
	centers := []r3.Vec{{}, {X: -10}}

	radii := SurfaceRadii(nil, vertices, centers)
	want := []float64{3, 1, 4}
	for i := range want {
		if math.Abs(radii[i]-want[i]) > 1e-12 {
			t.Errorf("radius %d = %v, want %v", i, radii[i], want[i])
		}
	}

	if got := SurfaceRadii(radii, vertices, nil); len(got) != 0 {
		t.Errorf("expected no radii without centers, got %d", len(got))
	}
}

func TestComputeRadiusStats(t *testing.T) {
	mean, std := ComputeRadiusStats([]float64{1, 2, 3})
	if mean != 2 || math.Abs(std-1) > 1e-12 {
		t.Errorf("expected mean 2 std 1, got %v and %v", mean, std)
	}
	if mean, std := ComputeRadiusStats([]float64{5}); mean != 5 || std != 0 {
		t.Errorf("expected single radius 5 with zero spread, got %v and %v", mean, std)
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(1.0, 0.25)
	if c.WindowDurationTicks() != 4 {
		t.Fatalf("expected 4 ticks per window, got %d", c.WindowDurationTicks())
	}

	for i := 1; i <= 4; i++ {
		s := metaballs.Stats{Balls: 2, GridSteps: 32, Triangles: 10 * i, Vertices: 30 * i, Rebuilt: i == 1}
		s.Visited = 5
		s.PeakOpen = i
		if i == 4 {
			s.Overflow = true
			s.Dropped = 7
		}
		c.Record(s)
	}
	if !c.ShouldFlush(4) || c.ShouldFlush(3) {
		t.Error("unexpected flush decision")
	}

	w := c.Flush(4, []float64{1, 2, 3})
	if w.Passes != 4 || w.TrianglesMean != 25 || w.VerticesMean != 75 || w.VisitedMean != 5 {
		t.Errorf("unexpected window means %+v", w)
	}
	if w.PeakOpenMax != 4 || w.Overflows != 1 || w.Dropped != 7 || w.Rebuilds != 1 {
		t.Errorf("unexpected window counters %+v", w)
	}
	if w.Balls != 2 || w.GridSteps != 32 || w.SimTimeSec != 1 || w.RadiusMean != 2 {
		t.Errorf("unexpected window snapshot %+v", w)
	}

	next := c.Flush(8, nil)
	if next.Passes != 0 || next.Overflows != 0 || next.WindowStartTick != 4 {
		t.Errorf("expected reset counters, got %+v", next)
	}
}
