package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/metaballs/config"
	"github.com/pthm-cable/metaballs/metaballs"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("expected nil manager without a directory, got %v, %v", om, err)
	}
	// All methods are nil-safe
	if err := om.WriteWindow(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.Publish(nil, nil, nil, nil, nil, nil); err != nil {
		t.Error(err)
	}
	if path, err := om.WriteMesh(0); path != "" || err != nil {
		t.Errorf("unexpected mesh write %q, %v", path, err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManagerWritesHeadersOnce(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager failed: %v", err)
	}

	for i := int32(1); i <= 3; i++ {
		if err := om.WriteWindow(WindowStats{WindowEndTick: i * 60, Passes: 60}); err != nil {
			t.Fatalf("WriteWindow failed: %v", err)
		}
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkMerge, Tick: 120}); err != nil {
		t.Fatalf("WriteBookmark failed: %v", err)
	}
	if err := om.WriteConfig(config.Default()); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "passes.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "window_end,") {
		t.Errorf("unexpected header %q", lines[0])
	}

	data, err = os.ReadFile(filepath.Join(dir, "bookmarks.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "merge") {
		t.Errorf("bookmark row missing: %q", data)
	}

	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("written config does not load: %v", err)
	}
}

func TestOutputManagerWriteMesh(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer om.Close()

	cfg := config.Default()
	cfg.Metaballs.NumBalls = 1
	cfg.Metaballs.RandomSeed = false
	cfg.Metaballs.AutoMode = false
	cfg.Metaballs.GridSteps = 16
	m := metaballs.New(cfg, 1)
	m.Update(0)

	// Nothing published yet
	if path, err := om.WriteMesh(3); path != "" || err != nil {
		t.Fatalf("expected no mesh before a publish, got %q, %v", path, err)
	}

	// Each pass is published; the file holds the last one
	for i := 0; i < 2; i++ {
		if err := m.Render(om); err != nil {
			t.Fatalf("publish to output failed: %v", err)
		}
	}
	if om.Published() != 2 {
		t.Errorf("expected 2 publishes, got %d", om.Published())
	}

	path, err := om.WriteMesh(7)
	if err != nil {
		t.Fatalf("WriteMesh failed: %v", err)
	}
	if filepath.Base(path) != "mesh_7.obj" {
		t.Errorf("unexpected mesh path %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(data), "\nf "); got != m.Mesh().NumTriangles() {
		t.Errorf("expected %d faces, got %d", m.Mesh().NumTriangles(), got)
	}
}
