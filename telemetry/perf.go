package telemetry

import (
	"log/slog"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/metaballs/metaballs"
)

// Phase names for one frame. The first three are reported by the pipeline itself.
const (
	PhaseBalls     = metaballs.PhaseBalls
	PhaseGrid      = metaballs.PhaseGrid
	PhaseExtract   = metaballs.PhaseExtract
	PhasePublish   = "publish"
	PhaseTelemetry = "telemetry"
)

// phases lists the known phases in frame order. Other names are accepted and
// tracked after these.
var phases = []string{PhaseBalls, PhaseGrid, PhaseExtract, PhasePublish, PhaseTelemetry}

// PerfSample holds timing data for a single tick.
type PerfSample struct {
	Tick   time.Duration
	Phases []time.Duration // indexed by phase id
}

// PerfCollector tracks tick and phase timings over a rolling window.
// It satisfies metaballs.PhaseTimer.
type PerfCollector struct {
	ring   []PerfSample
	next   int
	filled int

	// Phase ids are assigned on first use and never reused
	names   []string
	ids     map[string]int
	started []bool

	current    []time.Duration
	tickStart  time.Time
	phaseStart time.Time
	open       int // id of the running phase, -1 if none

	// Frame timing (graphics mode)
	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	p := &PerfCollector{
		ring: make([]PerfSample, windowSize),
		ids:  make(map[string]int, len(phases)),
		open: -1,
	}
	for _, name := range phases {
		p.phaseID(name)
	}
	return p
}

func (p *PerfCollector) phaseID(name string) int {
	if id, ok := p.ids[name]; ok {
		return id
	}
	id := len(p.names)
	p.names = append(p.names, name)
	p.ids[name] = id
	p.started = append(p.started, false)
	p.current = append(p.current, 0)
	return id
}

// StartTick begins timing a new tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	clear(p.current)
	p.open = -1
}

// StartPhase closes the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	p.closePhase(now)
	p.open = p.phaseID(phase)
	p.started[p.open] = true
	p.phaseStart = now
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.open >= 0 {
		p.current[p.open] += now.Sub(p.phaseStart)
	}
}

// EndTick closes the running phase and records the tick.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.open = -1

	s := &p.ring[p.next]
	s.Tick = now.Sub(p.tickStart)
	s.Phases = append(s.Phases[:0], p.current...)

	p.next = (p.next + 1) % len(p.ring)
	p.filled = min(p.filled+1, len(p.ring))
}

// RecordFrame records frame timing for graphics mode.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	TickJitter      time.Duration // standard deviation of tick durations

	// Average duration and share of the average tick, per started phase
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	TicksPerSecond float64

	// Frame timing (graphics mode)
	FrameDuration time.Duration
	FPS           float64
}

// Stats aggregates the samples in the window.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{
		PhaseAvg:      make(map[string]time.Duration),
		PhasePct:      make(map[string]float64),
		FrameDuration: p.frame,
	}
	if p.frame > 0 {
		s.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.filled == 0 {
		return s
	}

	window := p.ring[:p.filled]
	ticks := make([]float64, len(window))
	sums := make([]time.Duration, len(p.names))
	s.MinTickDuration = window[0].Tick
	for i, sample := range window {
		ticks[i] = float64(sample.Tick)
		s.MinTickDuration = min(s.MinTickDuration, sample.Tick)
		s.MaxTickDuration = max(s.MaxTickDuration, sample.Tick)
		for id, d := range sample.Phases {
			sums[id] += d
		}
	}

	mean := stat.Mean(ticks, nil)
	s.AvgTickDuration = time.Duration(mean)
	if len(ticks) > 1 {
		s.TickJitter = time.Duration(stat.StdDev(ticks, nil))
	}
	if mean > 0 {
		s.TicksPerSecond = float64(time.Second) / mean
	}

	n := time.Duration(len(window))
	for id, name := range p.names {
		if !p.started[id] {
			continue
		}
		avg := sums[id] / n
		s.PhaseAvg[name] = avg
		if mean > 0 {
			s.PhasePct[name] = float64(avg) / mean * 100
		}
	}
	return s
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"jitter_us", s.TickJitter.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for _, phase := range phases {
		if pct := s.PhasePct[phase]; pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}

	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Int64("jitter_us", s.TickJitter.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, phase := range phases {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}

	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	WindowEnd    int32   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	JitterUS     int64   `csv:"jitter_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	FPS          float64 `csv:"fps"`
	BallsPct     float64 `csv:"balls_pct"`
	GridPct      float64 `csv:"grid_pct"`
	ExtractPct   float64 `csv:"extract_pct"`
	PublishPct   float64 `csv:"publish_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats for the window ending at windowEnd.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		JitterUS:     s.TickJitter.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		FPS:          s.FPS,
		BallsPct:     s.PhasePct[PhaseBalls],
		GridPct:      s.PhasePct[PhaseGrid],
		ExtractPct:   s.PhasePct[PhaseExtract],
		PublishPct:   s.PhasePct[PhasePublish],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
