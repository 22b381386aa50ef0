package mesh

import (
	"bytes"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func triangle() *Mesh {
	m := &Mesh{}
	n := r3.Vec{Z: 1}
	a := m.AddVertex(r3.Vec{}, n, UV{0, 0}, color.RGBA{255, 0, 0, 255}, Tangent{Dir: r3.Vec{X: 1}})
	b := m.AddVertex(r3.Vec{X: 1}, n, UV{1, 0}, color.RGBA{0, 255, 0, 255}, Tangent{Dir: r3.Vec{X: 1}})
	c := m.AddVertex(r3.Vec{Y: 1}, n, UV{0, 1}, color.RGBA{0, 0, 255, 255}, Tangent{Dir: r3.Vec{X: 1}})
	m.AddTriangle(a, b, c)
	return m
}

func TestValidate(t *testing.T) {
	m := triangle()
	if err := m.Validate(); err != nil {
		t.Fatalf("expected valid mesh, got %v", err)
	}

	m.Indices = append(m.Indices, 0)
	if err := m.Validate(); !errors.Is(err, ErrStride) {
		t.Errorf("expected ErrStride, got %v", err)
	}

	m.Indices = append(m.Indices, 1, 3)
	if err := m.Validate(); !errors.Is(err, ErrIndexRange) {
		t.Errorf("expected ErrIndexRange, got %v", err)
	}

	m = triangle()
	m.UVs = m.UVs[:2]
	if err := m.Validate(); !errors.Is(err, ErrAttributeLength) {
		t.Errorf("expected ErrAttributeLength, got %v", err)
	}
}

func TestResetKeepsCapacity(t *testing.T) {
	m := triangle()
	capBefore := cap(m.Vertices)
	m.Reset()

	if !m.Empty() || m.NumVertices() != 0 {
		t.Errorf("expected empty mesh after reset, got %d vertices", m.NumVertices())
	}
	if cap(m.Vertices) != capBefore {
		t.Errorf("expected capacity %d kept, got %d", capBefore, cap(m.Vertices))
	}
	if err := m.Validate(); err != nil {
		t.Errorf("empty mesh should validate, got %v", err)
	}
}

func TestBounds(t *testing.T) {
	m := triangle()
	b := m.Bounds()
	if b.Min != (r3.Vec{}) || b.Max != (r3.Vec{X: 1, Y: 1}) {
		t.Errorf("unexpected bounds %+v", b)
	}
	if (&Mesh{}).Bounds() != (r3.Box{}) {
		t.Error("expected zero box for empty mesh")
	}
}

func TestCaptureCopies(t *testing.T) {
	m := triangle()
	var c Capture
	if err := m.PublishTo(&c); err != nil {
		t.Fatal(err)
	}

	m.Vertices[0] = r3.Vec{X: 42}
	if c.Mesh.Vertices[0] == m.Vertices[0] {
		t.Error("capture aliases the source buffer")
	}
	if c.Publishes != 1 || c.Mesh.NumTriangles() != 1 {
		t.Errorf("expected 1 publish with 1 triangle, got %d and %d", c.Publishes, c.Mesh.NumTriangles())
	}
}

func TestOBJWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := triangle().PublishTo(NewOBJWriter(&buf)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{"v 1 0 0 0.0000 1.0000 0.0000\n", "vt 0 1\n", "vn 0 0 1\n", "f 1/1/1 2/2/2 3/3/3\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	if got := strings.Count(out, "\nv "); got != 3 {
		t.Errorf("expected 3 vertex lines, got %d", got)
	}
}

func TestWriteOBJFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesh.obj")
	if err := WriteOBJFile(path, triangle()); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("f 1/1/1 2/2/2 3/3/3")) {
		t.Errorf("face line missing from %s", data)
	}

	if err := WriteOBJFile(filepath.Join(t.TempDir(), "missing", "x.obj"), triangle()); err == nil {
		t.Error("expected error for missing directory")
	}
}
