package surface

import (
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/metaballs/grid"
	"github.com/pthm-cable/metaballs/mesh"
)

// Field is the scalar field being polygonized.
type Field interface {
	grid.Sampler
	Gradient(p r3.Vec, h float64) r3.Vec
}

// Triangulator turns a classified voxel into triangles using the case tables.
type Triangulator struct {
	cache *grid.Cache
	field Field
}

// NewTriangulator returns a triangulator reading corner positions from cache
// and normals from f.
func NewTriangulator(cache *grid.Cache, f Field) *Triangulator {
	return &Triangulator{cache: cache, field: f}
}

// Polygonize appends the triangles of voxel (x,y,z) to out and returns how
// many were added. e holds the corner energies in corner order and mask the
// matching classification (bit set = below level).
func (t *Triangulator) Polygonize(x, y, z int, e *[8]float64, mask uint8, level float64, out *mesh.Mesh) int {
	edges := edgeTable[mask]
	if edges == 0 {
		return 0
	}
	s := t.cache.Space()

	var corner [8]r3.Vec
	for i, o := range cornerOffsets {
		corner[i] = s.Point(x+o[0], y+o[1], z+o[2])
	}

	var (
		verts     [12]r3.Vec
		normals   [12]r3.Vec
		hasNormal [12]bool
	)
	for i := 0; i < 12; i++ {
		if edges&(1<<i) == 0 {
			continue
		}
		a, b := edgeCorners[i][0], edgeCorners[i][1]
		verts[i] = interpolate(corner[a], corner[b], e[a], e[b], level)
		normals[i], hasNormal[i] = t.normal(verts[i], s.Voxel/2)
	}

	row := &triTable[mask]

	// Vertices with a flat gradient take the normal of the first triangle using them.
	for k := 0; row[k] != -1; k += 3 {
		fn := faceNormal(verts[row[k]], verts[row[k+1]], verts[row[k+2]])
		for _, ed := range row[k : k+3] {
			if !hasNormal[ed] && fn != (r3.Vec{}) {
				normals[ed] = fn
				hasNormal[ed] = true
			}
		}
	}

	var (
		index   [12]int32
		emitted [12]bool
	)
	vertex := func(ed int8) int32 {
		if !emitted[ed] {
			n := normals[ed]
			if !hasNormal[ed] {
				n = r3.Vec{Y: 1}
			}
			uv, c, tan := attributes(verts[ed], n, s)
			index[ed] = out.AddVertex(verts[ed], n, uv, c, tan)
			emitted[ed] = true
		}
		return index[ed]
	}

	count := 0
	for k := 0; row[k] != -1; k += 3 {
		a, b, c := row[k], row[k+1], row[k+2]
		fn := r3.Cross(r3.Sub(verts[b], verts[a]), r3.Sub(verts[c], verts[a]))
		sum := r3.Add(r3.Add(normals[a], normals[b]), normals[c])
		if r3.Dot(fn, sum) < 0 {
			b, c = c, b
		}
		out.AddTriangle(vertex(a), vertex(b), vertex(c))
		count++
	}
	return count
}

// normal returns the unit negative gradient at p, or false when it is degenerate.
func (t *Triangulator) normal(p r3.Vec, h float64) (r3.Vec, bool) {
	n := r3.Scale(-1, t.field.Gradient(p, h))
	l := r3.Norm(n)
	if l < 1e-12 || math.IsNaN(l) || math.IsInf(l, 0) {
		return r3.Vec{}, false
	}
	return r3.Scale(1/l, n), true
}

// interpolate places the level crossing between two corners.
func interpolate(pa, pb r3.Vec, ea, eb, level float64) r3.Vec {
	t := 0.5
	if d := eb - ea; d != 0 {
		t = (level - ea) / d
	}
	t = math.Max(0, math.Min(1, t))
	return r3.Add(pa, r3.Scale(t, r3.Sub(pb, pa)))
}

func faceNormal(a, b, c r3.Vec) r3.Vec {
	n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
	if r3.Norm2(n) == 0 {
		return r3.Vec{}
	}
	return r3.Unit(n)
}

// attributes derives texture coordinate, color and tangent from a vertex
// position and its unit normal. UVs project onto the two axes other than the
// dominant normal axis, normalized over the grid extent.
func attributes(p, n r3.Vec, s grid.Space) (mesh.UV, color.RGBA, mesh.Tangent) {
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)

	var pu, pv float64
	var uAxis r3.Vec
	switch {
	case ax >= ay && ax >= az:
		pu, pv, uAxis = p.Y, p.Z, r3.Vec{Y: 1}
	case ay >= az:
		pu, pv, uAxis = p.X, p.Z, r3.Vec{X: 1}
	default:
		pu, pv, uAxis = p.X, p.Y, r3.Vec{X: 1}
	}
	uv := mesh.UV{U: unitRange((pu + s.Half) / s.Scale), V: unitRange((pv + s.Half) / s.Scale)}

	// Gram-Schmidt uAxis against n; uAxis is never parallel to a dominant-axis normal.
	tan := r3.Sub(uAxis, r3.Scale(r3.Dot(n, uAxis), n))
	if r3.Norm2(tan) > 0 {
		tan = r3.Unit(tan)
	}

	c := color.RGBA{R: channel(n.X), G: channel(n.Y), B: channel(n.Z), A: 255}
	return uv, c, mesh.Tangent{Dir: tan}
}

func unitRange(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// channel maps a normal component in [-1,1] to [0,255].
func channel(c float64) uint8 {
	return uint8(math.Round(unitRange(c*0.5+0.5) * 255))
}
