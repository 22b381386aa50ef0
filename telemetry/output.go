package telemetry

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/metaballs/config"
	"github.com/pthm-cable/metaballs/mesh"
)

// csvLog appends gocsv records to one file, writing the header once.
type csvLog struct {
	file   *os.File
	header bool
}

func openCSVLog(dir, name string) (*csvLog, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvLog{file: f}, nil
}

func appendRecord[T any](l *csvLog, record T) error {
	records := []T{record}
	if !l.header {
		l.header = true
		return gocsv.Marshal(records, l.file)
	}
	return gocsv.MarshalWithoutHeaders(records, l.file)
}

func (l *csvLog) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// OutputManager writes a run's window stats, perf stats, bookmarks and meshes.
// It is also a mesh.Sink holding the latest published surface.
type OutputManager struct {
	dir       string
	passes    *csvLog
	perf      *csvLog
	bookmarks *csvLog
	latest    mesh.Capture
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	var err error
	if om.passes, err = openCSVLog(dir, "passes.csv"); err != nil {
		return nil, err
	}
	if om.perf, err = openCSVLog(dir, "perf.csv"); err != nil {
		om.Close()
		return nil, err
	}
	if om.bookmarks, err = openCSVLog(dir, "bookmarks.csv"); err != nil {
		om.Close()
		return nil, err
	}
	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteWindow appends a window stats record to passes.csv.
func (om *OutputManager) WriteWindow(stats WindowStats) error {
	if om == nil {
		return nil
	}
	if err := appendRecord(om.passes, stats); err != nil {
		return fmt.Errorf("writing passes: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}
	if err := appendRecord(om.perf, stats.ToCSV(windowEnd)); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteBookmark writes a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	if err := appendRecord(om.bookmarks, b); err != nil {
		return fmt.Errorf("writing bookmark: %w", err)
	}
	return nil
}

// Publish implements mesh.Sink by keeping a copy of the surface for WriteMesh.
func (om *OutputManager) Publish(vertices []r3.Vec, indices []int32, normals []r3.Vec, uvs []mesh.UV, colors []color.RGBA, tangents []mesh.Tangent) error {
	if om == nil {
		return nil
	}
	return om.latest.Publish(vertices, indices, normals, uvs, colors, tangents)
}

// Published returns the number of surfaces received through Publish.
func (om *OutputManager) Published() int {
	if om == nil {
		return 0
	}
	return om.latest.Publishes
}

// WriteMesh saves the latest published surface as mesh_<tick>.obj and
// returns its path. Nothing is written before the first Publish.
func (om *OutputManager) WriteMesh(tick int32) (string, error) {
	if om.Published() == 0 {
		return "", nil
	}
	path := filepath.Join(om.dir, fmt.Sprintf("mesh_%d.obj", tick))
	if err := mesh.WriteOBJFile(path, &om.latest.Mesh); err != nil {
		return "", fmt.Errorf("writing mesh: %w", err)
	}
	return path, nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	return errors.Join(om.passes.Close(), om.perf.Close(), om.bookmarks.Close())
}
