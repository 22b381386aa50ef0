// Package game drives the metaballs pipeline in a window or headless,
// and wires it to the telemetry outputs.
package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/metaballs/camera"
	"github.com/pthm-cable/metaballs/config"
	"github.com/pthm-cable/metaballs/inspector"
	"github.com/pthm-cable/metaballs/metaballs"
	"github.com/pthm-cable/metaballs/renderer"
	"github.com/pthm-cable/metaballs/telemetry"
	"github.com/pthm-cable/metaballs/ui"
)

// DT is the simulated time per tick in seconds.
const DT = 1.0 / 60.0

// Options configures a Game.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindow    int    // passes per stats window (0 = config)
	SnapshotDir    string // snapshots saved on bookmarks
	LoadSnapshot   string // snapshot restored at startup
	OutputDir      string // CSV logs, config and meshes
	OBJPath        string // final mesh written on Unload
	Headless       bool
	StepsPerUpdate int
}

// Game holds the pipeline and everything that observes it.
type Game struct {
	mb      *metaballs.Metaballs
	rngSeed int64

	// State
	tick           int32
	paused         bool
	stepsPerUpdate int

	// Telemetry
	perfCollector    *telemetry.PerfCollector
	collector        *telemetry.Collector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	snapshotDir      string
	logStats         bool
	objPath          string
	radii            []float64
	centers          []r3.Vec

	// Rendering (nil when headless)
	camera       *camera.Camera
	meshRenderer *renderer.MeshRenderer
	background   *renderer.BackgroundRenderer
	controls     *ui.ControlsPanel
	statsPanel   *ui.StatsPanel
	hud          *ui.HUD
	inspector    *inspector.Inspector
	showBalls    bool
	dragPx       float32 // mouse travel since the left button went down

	screenWidth, screenHeight float32
}

// NewGameWithOptions creates a game from the global config.
func NewGameWithOptions(opts Options) *Game {
	cfg := config.Cfg()

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindow > 0 {
		statsWindow = opts.StatsWindow
	}
	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}

	g := &Game{
		rngSeed:          opts.Seed,
		stepsPerUpdate:   steps,
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		collector:        telemetry.NewCollector(float64(statsWindow)*DT, DT),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		snapshotDir:      opts.SnapshotDir,
		logStats:         opts.LogStats,
		objPath:          opts.OBJPath,
	}

	var snap *telemetry.Snapshot
	if opts.LoadSnapshot != "" {
		var err error
		snap, err = telemetry.LoadSnapshot(opts.LoadSnapshot)
		if err != nil {
			slog.Error("failed to load snapshot", "path", opts.LoadSnapshot, "error", err)
		} else {
			g.rngSeed = snap.RNGSeed
		}
	}

	g.mb = metaballs.New(cfg, g.rngSeed)
	g.mb.SetPhaseTimer(g.perfCollector)

	if snap != nil {
		if err := snap.Restore(g.mb); err != nil {
			slog.Error("failed to restore snapshot", "path", opts.LoadSnapshot, "error", err)
		} else {
			g.tick = snap.Tick
			slog.Info("snapshot restored", "path", opts.LoadSnapshot, "tick", snap.Tick, "balls", len(snap.Balls))
		}
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		slog.Error("failed to create output directory", "dir", opts.OutputDir, "error", err)
	}
	g.outputManager = om
	if err := g.outputManager.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	if !opts.Headless {
		g.initRendering(cfg)
	}

	return g
}

// initRendering creates the camera, renderers and panels. Requires a raylib window.
func (g *Game) initRendering(cfg *config.Config) {
	g.screenWidth = float32(rl.GetScreenWidth())
	g.screenHeight = float32(rl.GetScreenHeight())

	g.camera = camera.New(float64(g.screenWidth), float64(g.screenHeight), g.mb.Scale())
	g.meshRenderer = renderer.NewMeshRenderer()
	g.background = renderer.NewBackgroundRenderer(int32(g.screenWidth), int32(g.screenHeight),
		rl.Color{R: 24, G: 30, B: 42, A: 255}, rl.Color{R: 8, G: 10, B: 14, A: 255})
	g.controls = ui.NewControlsPanel(10, 10, 240)
	g.statsPanel = ui.NewStatsPanel(230)
	g.hud = ui.NewHUD()
	g.inspector = inspector.NewInspector(int32(g.screenWidth), int32(g.screenHeight))
	g.showBalls = true

	if cfg.Screen.TargetFPS > 0 {
		rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))
	}
}

// Update runs one frame in graphical mode.
func (g *Game) Update() {
	g.perfCollector.RecordFrame()
	g.handleInput()

	if g.paused {
		// Settings still apply while paused; dt = 0 keeps the balls still
		g.mb.Update(0)
		g.publish()
		return
	}

	for i := 0; i < g.stepsPerUpdate; i++ {
		g.step()
	}
}

// UpdateHeadless runs StepsPerUpdate ticks without any rendering.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.step()
	}
}

// step advances the pipeline one tick and feeds the telemetry.
func (g *Game) step() {
	g.perfCollector.StartTick()

	stats := g.mb.Update(DT)

	g.perfCollector.StartPhase(telemetry.PhasePublish)
	g.publish()

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.collector.Record(stats)
	g.tick++
	g.flushTelemetry()

	g.perfCollector.EndTick()
}

// publish hands the mesh to the renderer and, with an output directory, to
// the output manager for bookmark meshes.
func (g *Game) publish() {
	if g.meshRenderer != nil {
		logIfErr("publish mesh", g.mb.Render(g.meshRenderer))
	}
	if g.outputManager != nil {
		logIfErr("publish mesh to output", g.mb.Render(g.outputManager))
	}
}

// ballCenters returns the active ball positions in world units.
func (g *Game) ballCenters() []r3.Vec {
	g.centers = g.centers[:0]
	for i := 0; i < g.mb.NumBalls(); i++ {
		g.centers = append(g.centers, g.mb.Ball(i).Position)
	}
	return g.centers
}

// Metaballs returns the pipeline.
func (g *Game) Metaballs() *metaballs.Metaballs {
	return g.mb
}

// Tick returns the number of ticks simulated.
func (g *Game) Tick() int32 {
	return g.tick
}

// Unload writes the final mesh if requested and closes output files.
func (g *Game) Unload() {
	if g.objPath != "" {
		g.exportOBJ(g.objPath)
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output files", "error", err)
	}
}
