// Package mesh holds the triangle buffers produced by an extraction pass and
// the sinks they are published to.
package mesh

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrStride is returned when the index buffer is not a whole number of triangles.
	ErrStride = errors.New("mesh: index count not a multiple of 3")
	// ErrIndexRange is returned when an index does not name a vertex.
	ErrIndexRange = errors.New("mesh: index out of range")
	// ErrAttributeLength is returned when a per-vertex buffer has the wrong length.
	ErrAttributeLength = errors.New("mesh: attribute length mismatch")
)

// UV is a texture coordinate in [0,1].
type UV struct {
	U, V float64
}

// Tangent is a unit vector in the surface plane along the U direction.
type Tangent struct {
	Dir   r3.Vec
	FlipV bool
}

// Sink receives the buffers of a finished pass. The slices are only valid
// for the duration of the call.
type Sink interface {
	Publish(vertices []r3.Vec, indices []int32, normals []r3.Vec, uvs []UV, colors []color.RGBA, tangents []Tangent) error
}

// Mesh is a set of parallel per-vertex buffers plus a triangle index list.
type Mesh struct {
	Vertices []r3.Vec
	Indices  []int32
	Normals  []r3.Vec
	UVs      []UV
	Colors   []color.RGBA
	Tangents []Tangent
}

// Reset truncates every buffer, keeping capacity.
func (m *Mesh) Reset() {
	m.Vertices = m.Vertices[:0]
	m.Indices = m.Indices[:0]
	m.Normals = m.Normals[:0]
	m.UVs = m.UVs[:0]
	m.Colors = m.Colors[:0]
	m.Tangents = m.Tangents[:0]
}

// AddVertex appends one vertex with all its attributes and returns its index.
func (m *Mesh) AddVertex(p, n r3.Vec, uv UV, c color.RGBA, t Tangent) int32 {
	m.Vertices = append(m.Vertices, p)
	m.Normals = append(m.Normals, n)
	m.UVs = append(m.UVs, uv)
	m.Colors = append(m.Colors, c)
	m.Tangents = append(m.Tangents, t)
	return int32(len(m.Vertices) - 1)
}

// AddTriangle appends one triangle.
func (m *Mesh) AddTriangle(a, b, c int32) {
	m.Indices = append(m.Indices, a, b, c)
}

// NumVertices returns the vertex count.
func (m *Mesh) NumVertices() int {
	return len(m.Vertices)
}

// NumTriangles returns the triangle count.
func (m *Mesh) NumTriangles() int {
	return len(m.Indices) / 3
}

// Empty reports whether the mesh has no triangles.
func (m *Mesh) Empty() bool {
	return len(m.Indices) == 0
}

// Validate checks stride, index range and attribute lengths.
func (m *Mesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices", ErrStride, len(m.Indices))
	}
	n := len(m.Vertices)
	for i, idx := range m.Indices {
		if idx < 0 || int(idx) >= n {
			return fmt.Errorf("%w: indices[%d]=%d with %d vertices", ErrIndexRange, i, idx, n)
		}
	}
	for name, l := range map[string]int{
		"normals":  len(m.Normals),
		"uvs":      len(m.UVs),
		"colors":   len(m.Colors),
		"tangents": len(m.Tangents),
	} {
		if l != n {
			return fmt.Errorf("%w: %s has %d entries, want %d", ErrAttributeLength, name, l, n)
		}
	}
	return nil
}

// Bounds returns the axis-aligned box around all vertices. The zero box is
// returned for an empty mesh.
func (m *Mesh) Bounds() r3.Box {
	if len(m.Vertices) == 0 {
		return r3.Box{}
	}
	b := r3.Box{Min: m.Vertices[0], Max: m.Vertices[0]}
	for _, v := range m.Vertices[1:] {
		b.Min = r3.Vec{X: min(b.Min.X, v.X), Y: min(b.Min.Y, v.Y), Z: min(b.Min.Z, v.Z)}
		b.Max = r3.Vec{X: max(b.Max.X, v.X), Y: max(b.Max.Y, v.Y), Z: max(b.Max.Z, v.Z)}
	}
	return b
}

// PublishTo sends the buffers to sink.
func (m *Mesh) PublishTo(sink Sink) error {
	return sink.Publish(m.Vertices, m.Indices, m.Normals, m.UVs, m.Colors, m.Tangents)
}

// Capture is a Sink that keeps a private copy of the last published mesh.
type Capture struct {
	Mesh      Mesh
	Publishes int
}

// Publish implements Sink.
func (c *Capture) Publish(vertices []r3.Vec, indices []int32, normals []r3.Vec, uvs []UV, colors []color.RGBA, tangents []Tangent) error {
	c.Mesh.Vertices = append(c.Mesh.Vertices[:0], vertices...)
	c.Mesh.Indices = append(c.Mesh.Indices[:0], indices...)
	c.Mesh.Normals = append(c.Mesh.Normals[:0], normals...)
	c.Mesh.UVs = append(c.Mesh.UVs[:0], uvs...)
	c.Mesh.Colors = append(c.Mesh.Colors[:0], colors...)
	c.Mesh.Tangents = append(c.Mesh.Tangents[:0], tangents...)
	c.Publishes++
	return nil
}
