package telemetry

import (
	"testing"
	"time"

	"github.com/pthm-cable/metaballs/config"
	"github.com/pthm-cable/metaballs/metaballs"
)

// tick runs one timed tick with the given phase sleeps.
func tick(pc *PerfCollector, sleeps map[string]time.Duration, order ...string) {
	pc.StartTick()
	for _, phase := range order {
		pc.StartPhase(phase)
		time.Sleep(sleeps[phase])
	}
	pc.EndTick()
}

func TestPerfCollector_PhaseAverages(t *testing.T) {
	pc := NewPerfCollector(10)
	sleeps := map[string]time.Duration{
		PhaseGrid:    100 * time.Microsecond,
		PhaseExtract: 300 * time.Microsecond,
	}
	for i := 0; i < 5; i++ {
		tick(pc, sleeps, PhaseGrid, PhaseExtract)
	}

	stats := pc.Stats()
	if stats.AvgTickDuration <= 0 || stats.TicksPerSecond <= 0 {
		t.Fatalf("expected positive tick timing, got %+v", stats)
	}
	if stats.PhaseAvg[PhaseExtract] < 300*time.Microsecond {
		t.Errorf("expected extract average >= 300us, got %v", stats.PhaseAvg[PhaseExtract])
	}
	if stats.PhasePct[PhaseExtract] <= stats.PhasePct[PhaseGrid] {
		t.Errorf("expected extract share %.1f%% > grid share %.1f%%",
			stats.PhasePct[PhaseExtract], stats.PhasePct[PhaseGrid])
	}
	// Phases never started are not reported
	if _, ok := stats.PhaseAvg[PhaseTelemetry]; ok {
		t.Error("expected telemetry phase to be absent")
	}
}

func TestPerfCollector_CustomPhase(t *testing.T) {
	pc := NewPerfCollector(4)
	tick(pc, map[string]time.Duration{"export": 50 * time.Microsecond}, PhaseBalls, "export")

	stats := pc.Stats()
	if stats.PhaseAvg["export"] < 50*time.Microsecond {
		t.Errorf("expected custom phase to be tracked, got %v", stats.PhaseAvg)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(3)

	// Three slow ticks then three fast ones push the slow ones out
	for i := 0; i < 3; i++ {
		tick(pc, map[string]time.Duration{PhaseGrid: 2 * time.Millisecond}, PhaseGrid)
	}
	for i := 0; i < 3; i++ {
		tick(pc, nil, PhaseGrid)
	}

	stats := pc.Stats()
	if stats.MaxTickDuration >= 2*time.Millisecond {
		t.Errorf("expected slow ticks to leave the window, max %v", stats.MaxTickDuration)
	}
	if stats.MinTickDuration > stats.AvgTickDuration || stats.AvgTickDuration > stats.MaxTickDuration {
		t.Errorf("expected min <= avg <= max, got %v %v %v",
			stats.MinTickDuration, stats.AvgTickDuration, stats.MaxTickDuration)
	}
}

func TestPerfCollector_Jitter(t *testing.T) {
	pc := NewPerfCollector(8)
	tick(pc, nil, PhaseGrid)
	if j := pc.Stats().TickJitter; j != 0 {
		t.Errorf("expected no jitter from a single tick, got %v", j)
	}

	tick(pc, map[string]time.Duration{PhaseGrid: 2 * time.Millisecond}, PhaseGrid)
	if j := pc.Stats().TickJitter; j < 500*time.Microsecond {
		t.Errorf("expected jitter from uneven ticks, got %v", j)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	stats := NewPerfCollector(10).Stats()

	if stats.AvgTickDuration != 0 || stats.TicksPerSecond != 0 {
		t.Errorf("expected zero timing for empty collector, got %+v", stats)
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil phase maps")
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()
	if stats.FrameDuration < 15*time.Millisecond {
		t.Errorf("expected frame duration >= 15ms, got %v", stats.FrameDuration)
	}
	// Sleep overshoot only lowers the rate
	if stats.FPS <= 0 || stats.FPS > 67 {
		t.Errorf("expected FPS in (0, 67] with a 16ms frame, got %v", stats.FPS)
	}
}

func TestPerfCollector_PipelinePhases(t *testing.T) {
	pc := NewPerfCollector(4)
	m := metaballs.New(config.Default(), 1)
	m.SetPhaseTimer(pc)

	for i := 0; i < 3; i++ {
		pc.StartTick()
		m.Update(1.0 / 60)
		pc.StartPhase(PhasePublish)
		pc.EndTick()
	}

	stats := pc.Stats()
	for _, phase := range []string{PhaseBalls, PhaseGrid, PhaseExtract, PhasePublish} {
		if _, ok := stats.PhaseAvg[phase]; !ok {
			t.Errorf("expected %s phase to be tracked", phase)
		}
	}

	row := stats.ToCSV(3)
	if row.WindowEnd != 3 || row.ExtractPct != stats.PhasePct[PhaseExtract] {
		t.Errorf("unexpected csv row %+v", row)
	}
}
