package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/metaballs/config"
	"github.com/pthm-cable/metaballs/game"
)

func main() {
	var (
		opts       game.Options
		configPath string
		maxTicks   int
		debug      bool
	)
	flag.StringVar(&configPath, "config", "", "Path to config.yaml (empty = use defaults)")
	flag.BoolVar(&opts.Headless, "headless", false, "Run without graphics")
	flag.BoolVar(&opts.LogStats, "log-stats", false, "Output stats via slog")
	flag.IntVar(&opts.StatsWindow, "stats-window", 0, "Passes per stats window (0 = use config)")
	flag.StringVar(&opts.SnapshotDir, "snapshot-dir", "", "Directory for snapshot files")
	flag.StringVar(&opts.LoadSnapshot, "load-snapshot", "", "Snapshot file to restore at startup")
	flag.StringVar(&opts.OutputDir, "output-dir", "", "Output directory for CSV logs, meshes and config snapshot")
	flag.StringVar(&opts.OBJPath, "obj", "", "Write the final mesh as Wavefront OBJ to this path")
	flag.Int64Var(&opts.Seed, "seed", 0, "RNG seed (0 = time-based)")
	flag.IntVar(&maxTicks, "max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	flag.IntVar(&opts.StepsPerUpdate, "steps-per-update", 1, "Pipeline ticks per update call (higher = faster headless runs)")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	if err := config.Init(configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	if opts.Headless {
		// A mesh export without a tick limit extracts a single surface
		if maxTicks <= 0 && opts.OBJPath != "" {
			maxTicks = 1
		}
		runHeadless(opts, maxTicks)
		return
	}
	runWindowed(opts, maxTicks)
}

// runHeadless ticks the pipeline without a window until maxTicks, or forever
// when maxTicks is 0.
func runHeadless(opts game.Options, maxTicks int) {
	cfg := config.Cfg()
	g := game.NewGameWithOptions(opts)
	defer g.Unload()

	slog.Info("starting headless run",
		"seed", opts.Seed,
		"balls", cfg.Metaballs.NumBalls,
		"grid_steps", cfg.Metaballs.GridSteps,
		"max_ticks", maxTicks,
		"steps_per_update", opts.StepsPerUpdate,
	)
	for maxTicks <= 0 || int(g.Tick()) < maxTicks {
		g.UpdateHeadless()
	}
	slog.Info("max ticks reached", "tick", g.Tick())
}

func runWindowed(opts game.Options, maxTicks int) {
	cfg := config.Cfg()
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Metaballs")
	defer rl.CloseWindow()

	g := game.NewGameWithOptions(opts)
	defer g.Unload()

	for !rl.WindowShouldClose() && (maxTicks <= 0 || int(g.Tick()) < maxTicks) {
		g.Update()
		g.Draw()
	}
}
