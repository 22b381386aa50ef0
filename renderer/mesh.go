package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/metaballs/mesh"
)

// MeshRenderer is a mesh.Sink that keeps the last published surface
// in raylib form and draws it with simple directional lighting.
type MeshRenderer struct {
	vertices []rl.Vector3
	shades   []rl.Color
	indices  []int32

	// Light points from the surface toward the light source
	Light r3.Vec
	// Ambient is the minimum brightness of surfaces facing away from the light
	Ambient float64

	Wireframe bool
}

// NewMeshRenderer creates a mesh renderer with a light above and in front of the volume.
func NewMeshRenderer() *MeshRenderer {
	return &MeshRenderer{
		Light:   r3.Unit(r3.Vec{X: 0.4, Y: 1, Z: 0.6}),
		Ambient: 0.3,
	}
}

// Publish implements mesh.Sink. Buffers are copied, so the caller may reuse them.
func (r *MeshRenderer) Publish(vertices []r3.Vec, indices []int32, normals []r3.Vec, uvs []mesh.UV, colors []color.RGBA, tangents []mesh.Tangent) error {
	r.vertices = r.vertices[:0]
	r.shades = r.shades[:0]
	for i, v := range vertices {
		r.vertices = append(r.vertices, vec3(v))

		base := color.RGBA{R: 180, G: 200, B: 230, A: 255}
		if i < len(colors) {
			base = colors[i]
		}
		n := r3.Vec{Y: 1}
		if i < len(normals) {
			n = normals[i]
		}
		r.shades = append(r.shades, r.shade(base, n))
	}
	r.indices = append(r.indices[:0], indices...)
	return nil
}

// shade applies Lambert lighting to c.
func (r *MeshRenderer) shade(c color.RGBA, n r3.Vec) rl.Color {
	k := r.Ambient + (1-r.Ambient)*max(0, r3.Dot(n, r.Light))
	return rl.Color{
		R: uint8(float64(c.R) * k),
		G: uint8(float64(c.G) * k),
		B: uint8(float64(c.B) * k),
		A: c.A,
	}
}

// NumTriangles returns the number of triangles held for drawing.
func (r *MeshRenderer) NumTriangles() int {
	return len(r.indices) / 3
}

// Draw renders the surface. Must be called inside BeginMode3D.
func (r *MeshRenderer) Draw() {
	for i := 0; i+2 < len(r.indices); i += 3 {
		a, b, c := r.indices[i], r.indices[i+1], r.indices[i+2]
		va, vb, vc := r.vertices[a], r.vertices[b], r.vertices[c]

		if r.Wireframe {
			col := r.shades[a]
			rl.DrawLine3D(va, vb, col)
			rl.DrawLine3D(vb, vc, col)
			rl.DrawLine3D(vc, va, col)
			continue
		}
		rl.DrawTriangle3D(va, vb, vc, average(r.shades[a], r.shades[b], r.shades[c]))
	}
}

func average(a, b, c rl.Color) rl.Color {
	return rl.Color{
		R: uint8((int(a.R) + int(b.R) + int(c.R)) / 3),
		G: uint8((int(a.G) + int(b.G) + int(c.G)) / 3),
		B: uint8((int(a.B) + int(b.B) + int(c.B)) / 3),
		A: uint8((int(a.A) + int(b.A) + int(c.A)) / 3),
	}
}

func vec3(v r3.Vec) rl.Vector3 {
	return rl.NewVector3(float32(v.X), float32(v.Y), float32(v.Z))
}
