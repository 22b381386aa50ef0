package telemetry

import (
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pthm-cable/metaballs/config"
	"github.com/pthm-cable/metaballs/metaballs"
)

func TestSnapshotFileRoundTrip(t *testing.T) {
	want := &Snapshot{
		Version:   SnapshotVersion,
		RNGSeed:   42,
		Scale:     200,
		GridSteps: 48,
		Level:     40,
		AutoMode:  true,
		Tick:      1000,
		Balls: []BallState{
			{X: 10, Y: -5, Z: 3, VelX: 0.5, VelY: -0.3, AccZ: 0.2, Age: 1.25},
		},
		Bookmark: &Bookmark{Type: BookmarkMerge, Tick: 1000, Description: "two balls joined"},
	}

	path, err := SaveSnapshot(want, t.TempDir())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("loaded snapshot differs\ngot  %+v\nwant %+v", got, want)
	}
}

func TestSnapshotFileNames(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		tick     int32
		bookmark *Bookmark
		want     string
	}{
		{5000, &Bookmark{Type: BookmarkStableSurface, Tick: 5000}, "snapshot_5000_stable_surface.json"},
		{3000, nil, "snapshot_3000.json"},
	}
	for _, tt := range tests {
		path, err := SaveSnapshot(&Snapshot{Version: SnapshotVersion, Tick: tt.tick, Bookmark: tt.bookmark}, dir)
		if err != nil {
			t.Fatalf("save tick %d: %v", tt.tick, err)
		}
		if want := filepath.Join(dir, tt.want); path != want {
			t.Errorf("tick %d saved to %s, want %s", tt.tick, path, want)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("tick %d: %v", tt.tick, err)
		}
	}
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	if _, err := LoadSnapshot(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing snapshot")
	}
}

func TestSnapshotRestoreReproducesMesh(t *testing.T) {
	src := metaballs.New(config.Default(), 9)
	for i := 0; i < 20; i++ {
		src.Update(1.0 / 60)
	}
	snap := CaptureSnapshot(src, 9, 20)

	cfg := config.Default()
	cfg.Metaballs.RandomSeed = false
	cfg.Metaballs.GridSteps = 16
	dst := metaballs.New(cfg, 1)
	if err := snap.Restore(dst); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if dst.NumBalls() != src.NumBalls() || dst.GridSteps() != src.GridSteps() {
		t.Fatalf("settings not restored: %d balls, %d steps", dst.NumBalls(), dst.GridSteps())
	}

	for i := 0; i < src.NumBalls(); i++ {
		a, b := src.Ball(i), dst.Ball(i)
		if math.Abs(a.Position.X-b.Position.X) > 1e-9 || math.Abs(a.Velocity.Y-b.Velocity.Y) > 1e-12 || a.Age != b.Age {
			t.Fatalf("ball %d differs: %+v vs %+v", i, a, b)
		}
	}

	// Freeze both and compare surfaces
	src.SetAutoMode(false)
	dst.SetAutoMode(false)
	src.Update(0)
	dst.Update(0)
	if src.Mesh().NumTriangles() != dst.Mesh().NumTriangles() {
		t.Errorf("restored mesh has %d triangles, want %d", dst.Mesh().NumTriangles(), src.Mesh().NumTriangles())
	}
}

func TestSnapshotRestoreRejectsVersion(t *testing.T) {
	m := metaballs.New(config.Default(), 1)
	if err := (&Snapshot{Version: SnapshotVersion + 1}).Restore(m); err == nil {
		t.Error("expected version mismatch error")
	}
}
