package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/metaballs/config"
	"github.com/pthm-cable/metaballs/metaballs"
	"github.com/pthm-cable/metaballs/telemetry"
)

const dt = 1.0 / 60.0

// Targets describes the surface behavior the optimizer aims for.
type Targets struct {
	MergeRate float64 // fraction of balls whose seed lands on an existing surface
	Radius    float64 // mean vertex-to-ball distance as a fraction of scale
}

// FitnessEvaluator runs headless extraction passes and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int32
	seeds      []int64
	baseConfig *config.Config
	targets    Targets

	mu          sync.Mutex
	bestFitness float64
	lastMerge   float64 // merge rate from most recent Evaluate call
	lastRadius  float64 // radius fraction from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config, targets Targets) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		targets:     targets,
		bestFitness: math.Inf(1),
	}
}

// LastRun returns the merge rate and radius fraction from the most recent evaluation.
func (fe *FitnessEvaluator) LastRun() (merge, radius float64) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastMerge, fe.lastRadius
}

// runResult holds the results from a single run.
type runResult struct {
	window telemetry.WindowStats
	scale  float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup

	// Pipelines share nothing, so seeds run in parallel
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.run(x, s)
		}(i, seed)
	}
	wg.Wait()

	var total, merge, radius float64
	for _, r := range results {
		m, rad := rates(r)
		merge += m
		radius += rad
		total += fe.fitness(r)
	}

	n := float64(len(fe.seeds))
	avg := total / n

	fe.mu.Lock()
	if avg < fe.bestFitness {
		fe.bestFitness = avg
	}
	fe.lastMerge = merge / n
	fe.lastRadius = radius / n
	fe.mu.Unlock()

	return avg
}

// run executes one headless run and summarizes it as a single window.
func (fe *FitnessEvaluator) run(x []float64, seed int64) runResult {
	cfg := *fe.baseConfig
	fe.params.ApplyToConfig(&cfg, x)

	m := metaballs.New(&cfg, seed)
	c := telemetry.NewCollector(float64(fe.maxTicks)*dt, dt)

	var radii []float64
	var centers []r3.Vec
	var radiusSum float64
	var samples int
	for tick := int32(1); tick <= fe.maxTicks; tick++ {
		c.Record(m.Update(dt))

		// Sample the surface a few times per second
		if tick%15 == 0 {
			centers = centers[:0]
			for i := 0; i < m.NumBalls(); i++ {
				centers = append(centers, m.Ball(i).Position)
			}
			radii = telemetry.SurfaceRadii(radii, m.Mesh().Vertices, centers)
			if mean, _ := telemetry.ComputeRadiusStats(radii); mean > 0 {
				radiusSum += mean
				samples++
			}
		}
	}

	w := c.Flush(fe.maxTicks, nil)
	if samples > 0 {
		w.RadiusMean = radiusSum / float64(samples)
	}
	return runResult{window: w, scale: m.Scale()}
}

// rates extracts the merge rate and radius fraction of a run.
func rates(r runResult) (merge, radius float64) {
	w := r.window
	if w.Passes > 0 && w.Balls > 0 {
		merge = float64(w.SharedSeeds) / float64(w.Passes*w.Balls)
	}
	if r.scale > 0 {
		radius = w.RadiusMean / r.scale
	}
	return merge, radius
}

// fitness scores a run by its distance from the targets.
// Overflowing passes are penalized since their surfaces are incomplete.
func (fe *FitnessEvaluator) fitness(r runResult) float64 {
	merge, radius := rates(r)

	dm := merge - fe.targets.MergeRate
	loss := dm * dm
	if fe.targets.Radius > 0 {
		dr := (radius - fe.targets.Radius) / fe.targets.Radius
		loss += dr * dr
	}
	if r.window.Passes > 0 {
		loss += float64(r.window.Overflows) / float64(r.window.Passes)
	}
	return loss
}
