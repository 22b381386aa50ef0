package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/metaballs/balls"
	"github.com/pthm-cable/metaballs/metaballs"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the pipeline settings and ball state for replay.
type Snapshot struct {
	Version int   `json:"version"`
	RNGSeed int64 `json:"rng_seed"`

	Scale     float64 `json:"scale"`
	GridSteps int     `json:"grid_steps"`
	Level     float64 `json:"level"`
	AutoMode  bool    `json:"auto_mode"`

	Tick int32 `json:"tick"`

	Balls []BallState `json:"balls"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// BallState holds one active ball in world units.
type BallState struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
	VelX float64 `json:"vel_x"`
	VelY float64 `json:"vel_y"`
	VelZ float64 `json:"vel_z"`
	AccX float64 `json:"acc_x"`
	AccY float64 `json:"acc_y"`
	AccZ float64 `json:"acc_z"`
	Age  float64 `json:"age"`
}

// CaptureSnapshot records the current state of m.
func CaptureSnapshot(m *metaballs.Metaballs, seed int64, tick int32) *Snapshot {
	s := &Snapshot{
		Version:   SnapshotVersion,
		RNGSeed:   seed,
		Scale:     m.Scale(),
		GridSteps: m.GridSteps(),
		Level:     m.Level(),
		AutoMode:  m.AutoMode(),
		Tick:      tick,
		Balls:     make([]BallState, 0, m.NumBalls()),
	}
	for i := 0; i < m.NumBalls(); i++ {
		b := m.Ball(i)
		s.Balls = append(s.Balls, BallState{
			X: b.Position.X, Y: b.Position.Y, Z: b.Position.Z,
			VelX: b.Velocity.X, VelY: b.Velocity.Y, VelZ: b.Velocity.Z,
			AccX: b.Acceleration.X, AccY: b.Acceleration.Y, AccZ: b.Acceleration.Z,
			Age: b.Age,
		})
	}
	return s
}

// Restore applies the snapshot's settings and ball state to m.
func (s *Snapshot) Restore(m *metaballs.Metaballs) error {
	if s.Version != SnapshotVersion {
		return fmt.Errorf("snapshot version %d, want %d", s.Version, SnapshotVersion)
	}
	m.SetScale(s.Scale)
	m.SetGridSteps(s.GridSteps)
	m.SetLevel(s.Level)
	m.SetAutoMode(s.AutoMode)
	m.SetNumBalls(len(s.Balls))

	for i, b := range s.Balls {
		ok := m.SetBallState(i, balls.Ball{
			Position:     r3.Vec{X: b.X, Y: b.Y, Z: b.Z},
			Velocity:     r3.Vec{X: b.VelX, Y: b.VelY, Z: b.VelZ},
			Acceleration: r3.Vec{X: b.AccX, Y: b.AccY, Z: b.AccZ},
			Age:          b.Age,
		})
		if !ok {
			return fmt.Errorf("restoring ball %d of %d", i, len(s.Balls))
		}
	}
	return nil
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	// Build filename
	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		// Sanitize bookmark type for filename
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}
