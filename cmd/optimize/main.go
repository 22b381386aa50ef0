// Command optimize searches field and motion parameters with CMA-ES for a
// target amount of merging and surface size.
//
// Usage: go run ./cmd/optimize -output runs/tune1 [-merge-target 0.3] [-radius-target 0.12]
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/metaballs/config"
)

// evalRecord is one row of optimize_log.csv.
type evalRecord struct {
	Eval             int     `csv:"eval"`
	Fitness          float64 `csv:"fitness"`
	MergeRate        float64 `csv:"merge_rate"`
	Radius           float64 `csv:"radius"`
	Level            float64 `csv:"level"`
	MaxSpeed         float64 `csv:"max_speed"`
	MaxAccel         float64 `csv:"max_accel"`
	RetargetInterval float64 `csv:"retarget_interval"`
	ElapsedSec       float64 `csv:"elapsed_sec"`
}

type options struct {
	configPath   string
	outputDir    string
	maxTicks     int
	seeds        int
	maxEvals     int
	population   int
	mergeTarget  float64
	radiusTarget float64
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	flag.StringVar(&opts.outputDir, "output", "", "Output directory for results")
	flag.IntVar(&opts.maxTicks, "max-ticks", 1200, "Passes per run")
	flag.IntVar(&opts.seeds, "seeds", 3, "Number of seeds per evaluation")
	flag.IntVar(&opts.maxEvals, "max-evals", 100, "Maximum number of evaluations")
	flag.IntVar(&opts.population, "population", 0, "CMA-ES population size (0 = auto)")
	flag.Float64Var(&opts.mergeTarget, "merge-target", 0.3, "Target fraction of balls merged into another's surface")
	flag.Float64Var(&opts.radiusTarget, "radius-target", 0.12, "Target mean surface radius as a fraction of scale (0 = ignore)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := run(opts); err != nil {
		slog.Error("optimization failed", "error", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if opts.outputDir == "" {
		return errors.New("-output is required")
	}
	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := config.Init(opts.configPath); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	baseCfg := config.Cfg()

	params := NewParamVector()
	evalSeeds := make([]int64, opts.seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, int32(opts.maxTicks), evalSeeds, baseCfg, Targets{
		MergeRate: opts.mergeTarget,
		Radius:    opts.radiusTarget,
	})

	popSize := opts.population
	if popSize == 0 {
		popSize = 4 + 3*params.Dim()/2
	}

	var (
		records     []evalRecord
		bestFitness = 1e9
		bestParams  []float64
		start       = time.Now()
	)
	logPath := filepath.Join(opts.outputDir, "optimize_log.csv")

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			// Clamped values are the ones actually simulated
			values := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(values)
			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = values
			}

			merge, radius := evaluator.LastRun()
			elapsed := time.Since(start)
			records = append(records, evalRecord{
				Eval:             len(records) + 1,
				Fitness:          fitness,
				MergeRate:        merge,
				Radius:           radius,
				Level:            values[0],
				MaxSpeed:         values[1],
				MaxAccel:         values[2],
				RetargetInterval: values[3],
				ElapsedSec:       elapsed.Seconds(),
			})
			if err := writeLog(logPath, records); err != nil {
				slog.Warn("failed to write optimize log", "error", err)
			}

			n := len(records)
			eta := time.Duration(opts.maxEvals-n) * (elapsed / time.Duration(n))
			slog.Info("eval",
				"n", n,
				"of", opts.maxEvals,
				"fitness", fitness,
				"merge", merge,
				"radius", radius,
				"best", bestFitness,
				"elapsed", elapsed.Round(time.Second),
				"eta", eta.Round(time.Second),
			)
			return fitness
		},
	}

	slog.Info("starting CMA-ES",
		"params", params.Dim(),
		"population", popSize,
		"max_evals", opts.maxEvals,
		"seeds", opts.seeds,
		"passes", opts.maxTicks,
	)

	initX := params.Normalize(params.ExtractFromConfig(baseCfg))
	result, err := optimize.Minimize(problem, initX,
		&optimize.Settings{FuncEvaluations: opts.maxEvals},
		&optimize.CmaEsChol{InitStepSize: 0.3, Population: popSize},
	)
	if err != nil {
		slog.Warn("optimization ended", "error", err)
	}

	// The best evaluation may come from any generation, not just the last
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		return errors.New("no evaluations completed")
	}

	attrs := []any{"evals", len(records), "fitness", bestFitness, "took", time.Since(start).Round(time.Second)}
	for i, spec := range params.Specs {
		attrs = append(attrs, spec.Name, bestParams[i])
	}
	slog.Info("optimization complete", attrs...)

	bestCfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("reload config: %w", err)
	}
	params.ApplyToConfig(bestCfg, bestParams)

	configOut := filepath.Join(opts.outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOut); err != nil {
		return fmt.Errorf("write best config: %w", err)
	}
	slog.Info("best config saved", "path", configOut)
	return nil
}

// writeLog rewrites the evaluation log so a crashed run keeps its history.
func writeLog(path string, records []evalRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gocsv.MarshalFile(&records, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
