// Package metaballs ties the ball set, energy field, grid cache and surface
// extraction into a per-frame pipeline.
package metaballs

import (
	"log/slog"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/metaballs/balls"
	"github.com/pthm-cable/metaballs/config"
	"github.com/pthm-cable/metaballs/field"
	"github.com/pthm-cable/metaballs/grid"
	"github.com/pthm-cable/metaballs/mesh"
	"github.com/pthm-cable/metaballs/surface"
)

// Phase names reported to a PhaseTimer during Update.
const (
	PhaseBalls   = "balls"
	PhaseGrid    = "grid"
	PhaseExtract = "extract"
)

// PhaseTimer is told when each stage of Update begins.
type PhaseTimer interface {
	StartPhase(name string)
}

// Stats describes the last extraction pass.
type Stats struct {
	Balls     int
	GridSteps int
	Scale     float64
	Level     float64
	Vertices  int
	Triangles int
	Rebuilt   bool // grid buffers were reallocated this pass

	surface.Result
}

// LogValue implements slog.LogValuer for structured logging.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("balls", s.Balls),
		slog.Int("grid_steps", s.GridSteps),
		slog.Float64("scale", s.Scale),
		slog.Float64("level", s.Level),
		slog.Int("vertices", s.Vertices),
		slog.Int("triangles", s.Triangles),
		slog.Bool("rebuilt", s.Rebuilt),
		slog.Int("seeds", s.Seeds),
		slog.Int("shared_seeds", s.SharedSeeds),
		slog.Int("missed_seeds", s.MissedSeeds),
		slog.Int("visited", s.Visited),
		slog.Int("triangulated", s.Triangulated),
		slog.Int("evaluations", s.Evaluations),
		slog.Int("peak_open", s.PeakOpen),
		slog.Int("dropped", s.Dropped),
		slog.Bool("overflow", s.Overflow),
	)
}

// Metaballs is the whole extraction pipeline. It is not safe for concurrent use.
type Metaballs struct {
	cfg config.Config
	rng *rand.Rand

	balls *balls.Set
	field *field.Field
	space grid.Space
	cache *grid.Cache
	prop  *surface.Propagator

	mesh  mesh.Mesh
	seeds []r3.Vec
	stats Stats
	err   error
	timer PhaseTimer
}

// New builds a pipeline from cfg. Ball placement and motion draw from a
// rand.Rand seeded with seed.
func New(cfg *config.Config, seed int64) *Metaballs {
	c := *cfg
	c.Normalize()

	m := &Metaballs{
		cfg:   c,
		rng:   rand.New(rand.NewSource(seed)),
		space: grid.NewSpace(c.Metaballs.GridSteps, c.Metaballs.Scale),
		seeds: make([]r3.Vec, 0, config.MaxBalls),
	}
	m.balls = balls.NewSet(&m.cfg, m.rng)
	m.field = field.New(field.NewKernel(c.Field), m.space.Half)
	m.cache = grid.NewCache(m.space, m.field)
	m.prop = surface.NewPropagator(m.cache, m.field, c.Field.Level, c.Propagation)

	slog.Debug("metaballs created",
		"balls", m.balls.Count(),
		"grid_steps", m.space.Steps,
		"scale", m.space.Scale,
		"kernel", c.Field.Kernel,
		"open_ceiling", m.prop.OpenList().Ceiling(),
	)
	return m
}

// Update advances the balls by dt seconds and extracts a new surface.
func (m *Metaballs) Update(dt float64) Stats {
	if dt < 0 {
		dt = 0
	}
	m.phase(PhaseBalls)
	m.balls.Advance(dt)

	m.phase(PhaseGrid)
	rebuilt := m.syncGrid()

	m.mesh.Reset()
	snap := m.balls.Snapshot()
	m.field.SetBalls(snap)

	var res surface.Result
	m.err = nil
	if len(snap) == 0 {
		m.cache.Reset()
	} else {
		m.seeds = m.seeds[:0]
		for _, b := range snap {
			m.seeds = append(m.seeds, m.toWorld(b.Position))
		}
		m.phase(PhaseExtract)
		res, m.err = m.prop.Extract(m.seeds, &m.mesh)
		if m.err != nil {
			slog.Warn("grid overflow",
				"steps", m.space.Steps,
				"ceiling", m.prop.OpenList().Ceiling(),
				"dropped", res.Dropped,
			)
		}
	}

	m.stats = Stats{
		Balls:     len(snap),
		GridSteps: m.space.Steps,
		Scale:     m.space.Scale,
		Level:     m.prop.Level(),
		Vertices:  m.mesh.NumVertices(),
		Triangles: m.mesh.NumTriangles(),
		Rebuilt:   rebuilt,
		Result:    res,
	}
	return m.stats
}

// SetPhaseTimer installs a timer notified at each stage of Update. nil disables it.
func (m *Metaballs) SetPhaseTimer(t PhaseTimer) {
	m.timer = t
}

func (m *Metaballs) phase(name string) {
	if m.timer != nil {
		m.timer.StartPhase(name)
	}
}

// syncGrid rebuilds the lattice when steps or scale changed.
func (m *Metaballs) syncGrid() bool {
	space := grid.NewSpace(m.cfg.Metaballs.GridSteps, m.cfg.Metaballs.Scale)
	if space == m.space {
		return false
	}
	m.space = space
	m.cache.Rebuild(space)
	m.prop.Resize()
	m.field.SetUnit(space.Half)
	slog.Debug("grid rebuilt", "steps", space.Steps, "scale", space.Scale, "voxel", space.Voxel)
	return true
}

// Render publishes the last pass to sink.
func (m *Metaballs) Render(sink mesh.Sink) error {
	return m.mesh.PublishTo(sink)
}

// Mesh returns the buffers of the last pass. They are overwritten by the next Update.
func (m *Metaballs) Mesh() *mesh.Mesh {
	return &m.mesh
}

// Stats returns the stats of the last pass.
func (m *Metaballs) Stats() Stats {
	return m.stats
}

// Err returns the wrapped surface.ErrGridOverflow if the last pass overflowed.
func (m *Metaballs) Err() error {
	return m.err
}

// OpenCeiling returns the most voxels the open list may hold for the current grid.
func (m *Metaballs) OpenCeiling() int {
	return m.prop.OpenList().Ceiling()
}

// Config returns the effective configuration.
func (m *Metaballs) Config() config.Config {
	return m.cfg
}

// Space returns the current sampling lattice.
func (m *Metaballs) Space() grid.Space {
	return m.space
}

// Bounds returns the world box the balls fly in.
func (m *Metaballs) Bounds() r3.Box {
	b := m.balls.Bounds()
	return r3.Box{Min: m.toWorld(b.Min), Max: m.toWorld(b.Max)}
}

// GridBounds returns the world box covered by the lattice.
func (m *Metaballs) GridBounds() r3.Box {
	return m.space.Bounds()
}

// Ball returns ball i with its position in world units.
func (m *Metaballs) Ball(i int) balls.Ball {
	b := m.balls.Ball(i)
	b.Position = m.toWorld(b.Position)
	return b
}

// EnergyAt samples the field of the last pass at a world point.
func (m *Metaballs) EnergyAt(p r3.Vec) float64 {
	return m.field.EnergyAt(p)
}

// IsoRadius returns the world radius of a lone ball's surface.
func (m *Metaballs) IsoRadius() float64 {
	return m.field.IsoRadius(m.cfg.Field.Mass, m.prop.Level())
}

// unit is the world length of one local unit, following pending scale changes.
func (m *Metaballs) unit() float64 {
	return m.cfg.Metaballs.Scale / 2
}

func (m *Metaballs) toWorld(local r3.Vec) r3.Vec {
	return r3.Scale(m.unit(), local)
}

// NumBalls returns the number of active balls.
func (m *Metaballs) NumBalls() int {
	return m.balls.Count()
}

// SetNumBalls sets the number of active balls, clamped to [0, MaxBalls].
func (m *Metaballs) SetNumBalls(n int) {
	c := config.ClampNumBalls(n)
	logClamp("num_balls", n, c)
	m.cfg.Metaballs.NumBalls = c
	m.balls.SetCount(c)
}

// Scale returns the world edge length of the grid.
func (m *Metaballs) Scale() float64 {
	return m.cfg.Metaballs.Scale
}

// SetScale sets the grid edge length. The grid is rebuilt on the next Update.
func (m *Metaballs) SetScale(s float64) {
	c := config.ClampScale(s)
	logClamp("scale", s, c)
	m.cfg.Metaballs.Scale = c
}

// GridSteps returns the voxels per axis.
func (m *Metaballs) GridSteps() int {
	return m.cfg.Metaballs.GridSteps
}

// SetGridSteps sets the voxels per axis. The grid is rebuilt on the next Update.
func (m *Metaballs) SetGridSteps(n int) {
	c := config.ClampGridSteps(n)
	logClamp("grid_steps", n, c)
	m.cfg.Metaballs.GridSteps = c
}

// RandomSeed reports whether reseeding scatters the balls.
func (m *Metaballs) RandomSeed() bool {
	return m.cfg.Metaballs.RandomSeed
}

// SetRandomSeed chooses scattered or centered placement. Changing it reseeds.
func (m *Metaballs) SetRandomSeed(random bool) {
	if random == m.cfg.Metaballs.RandomSeed {
		return
	}
	m.cfg.Metaballs.RandomSeed = random
	m.Reseed()
}

// Reseed places the balls again using the current placement mode.
func (m *Metaballs) Reseed() {
	mode := balls.SeedCentered
	if m.cfg.Metaballs.RandomSeed {
		mode = balls.SeedRandom
	}
	m.balls.Seed(mode)
}

// AutoMode reports whether balls move on their own.
func (m *Metaballs) AutoMode() bool {
	return m.balls.Auto()
}

// SetAutoMode switches auto-fly on or off.
func (m *Metaballs) SetAutoMode(auto bool) {
	m.cfg.Metaballs.AutoMode = auto
	m.balls.SetAuto(auto)
}

// AutoLimit returns the per-axis auto-fly limits.
func (m *Metaballs) AutoLimit() r3.Vec {
	return m.balls.Limits()
}

// SetAutoLimitX sets the x auto-fly limit, clamped to [0,1].
func (m *Metaballs) SetAutoLimitX(v float64) {
	l := m.balls.Limits()
	l.X = v
	m.setLimits(l)
}

// SetAutoLimitY sets the y auto-fly limit, clamped to [0,1].
func (m *Metaballs) SetAutoLimitY(v float64) {
	l := m.balls.Limits()
	l.Y = v
	m.setLimits(l)
}

// SetAutoLimitZ sets the z auto-fly limit, clamped to [0,1].
func (m *Metaballs) SetAutoLimitZ(v float64) {
	l := m.balls.Limits()
	l.Z = v
	m.setLimits(l)
}

func (m *Metaballs) setLimits(l r3.Vec) {
	m.balls.SetLimits(l)
	got := m.balls.Limits()
	logClamp("auto_limit", l, got)
	m.cfg.Metaballs.AutoLimit = config.LimitConfig{X: got.X, Y: got.Y, Z: got.Z}
}

// SetBallTransform moves active ball i to a world position.
// Returns false if i is not an active ball.
func (m *Metaballs) SetBallTransform(i int, world r3.Vec) bool {
	return m.balls.SetTransform(i, r3.Scale(1/m.unit(), world))
}

// SetBallState overwrites the position (world units), velocity, acceleration
// and age of active ball i. Returns false if i is not an active ball.
func (m *Metaballs) SetBallState(i int, b balls.Ball) bool {
	u := m.unit()
	b.Position = r3.Scale(1/u, b.Position)
	return m.balls.SetState(i, b)
}

// Level returns the iso level.
func (m *Metaballs) Level() float64 {
	return m.prop.Level()
}

// SetLevel sets the iso level used from the next Update.
func (m *Metaballs) SetLevel(level float64) {
	m.cfg.Field.Level = level
	m.prop.SetLevel(level)
}

// LevelRange returns the useful iso levels of the current kernel.
func (m *Metaballs) LevelRange() (lo, hi float64) {
	lo, _, hi = config.LevelRange(m.cfg.Field.Kernel, m.cfg.Field.Mass)
	return lo, hi
}

// Kernel returns the name of the falloff in use.
func (m *Metaballs) Kernel() string {
	return m.cfg.Field.Kernel
}

// SetKernel switches the falloff by name from the next Update. A level
// outside the new kernel's useful range moves to its starting level.
// Unknown names are ignored.
func (m *Metaballs) SetKernel(name string) {
	switch name {
	case config.KernelInverseSquare, config.KernelWyvill:
	default:
		slog.Debug("unknown kernel ignored", "kernel", name)
		return
	}
	m.cfg.Field.Kernel = name
	m.field.SetKernel(field.NewKernel(m.cfg.Field))

	lo, hi := m.LevelRange()
	if level := m.Level(); level < lo || level > hi {
		_, def, _ := config.LevelRange(name, m.cfg.Field.Mass)
		m.SetLevel(def)
		logClamp("level", level, def)
	}
}

func logClamp[T comparable](name string, requested, applied T) {
	if requested != applied {
		slog.Debug("setting clamped", "name", name, "requested", requested, "applied", applied)
	}
}
