package surface

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/metaballs/balls"
	"github.com/pthm-cable/metaballs/config"
	"github.com/pthm-cable/metaballs/field"
	"github.com/pthm-cable/metaballs/grid"
	"github.com/pthm-cable/metaballs/mesh"
)

type scene struct {
	prop  *Propagator
	field *field.Field
	seeds []r3.Vec
}

// newScene builds a propagator over an inverse-square field with unit-mass
// balls at the given local positions.
func newScene(steps int, scale, level float64, maxOpen int, local ...r3.Vec) *scene {
	unit := scale / 2
	f := field.New(field.InverseSquare{Epsilon: field.DefaultEpsilon}, unit)

	bs := make([]balls.Ball, len(local))
	seeds := make([]r3.Vec, len(local))
	for i, p := range local {
		bs[i] = balls.Ball{Position: p, Mass: 1}
		seeds[i] = r3.Scale(unit, p)
	}
	f.SetBalls(bs)

	cache := grid.NewCache(grid.NewSpace(steps, scale), f)
	cfg := config.PropagationConfig{InitialOpenVoxels: config.MinOpenVoxels, MaxOpenVoxels: maxOpen}
	return &scene{prop: NewPropagator(cache, f, level, cfg), field: f, seeds: seeds}
}

func (s *scene) extract(t *testing.T) (*mesh.Mesh, Result) {
	t.Helper()
	m := &mesh.Mesh{}
	res, err := s.prop.Extract(s.seeds, m)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("invalid mesh: %v", err)
	}
	return m, res
}

func TestTablesConsistent(t *testing.T) {
	for mask := 0; mask < 256; mask++ {
		var used uint16
		row := triTable[mask]
		k := 0
		for ; row[k] != -1; k++ {
			used |= 1 << row[k]
		}
		if k%3 != 0 {
			t.Errorf("case %d: %d entries is not whole triangles", mask, k)
		}
		if used != edgeTable[mask] {
			t.Errorf("case %d: triangles use edges %03x, edge table says %03x", mask, used, edgeTable[mask])
		}
		if edgeTable[mask] != edgeTable[255-mask] {
			t.Errorf("case %d: complement crosses different edges", mask)
		}
	}
	if edgeTable[1] != 0x109 {
		t.Errorf("expected corner 0 to cross edges 0, 3 and 8, got %03x", edgeTable[1])
	}
}

func TestOpenListLIFOAndGrowth(t *testing.T) {
	l := NewOpenList(2, 5)
	for i := 0; i < 5; i++ {
		if !l.Push(i) {
			t.Fatalf("push %d failed below ceiling", i)
		}
	}
	if l.Cap() != 5 {
		t.Errorf("expected capacity to grow 2 -> 4 -> 5, got %d", l.Cap())
	}
	if l.Push(99) {
		t.Error("expected push at ceiling to fail")
	}
	if l.Len() != 5 || l.Peak() != 5 {
		t.Errorf("expected len and peak 5, got %d and %d", l.Len(), l.Peak())
	}
	for want := 4; want >= 0; want-- {
		got, ok := l.Pop()
		if !ok || got != want {
			t.Fatalf("expected pop %d, got %d (ok=%v)", want, got, ok)
		}
	}
	if _, ok := l.Pop(); ok {
		t.Error("expected pop on empty list to fail")
	}

	l.Reset()
	if l.Cap() != 5 || l.Peak() != 0 {
		t.Errorf("expected reset to keep capacity and clear peak, got cap %d peak %d", l.Cap(), l.Peak())
	}
}

func TestOpenListCeilingBelowInitial(t *testing.T) {
	l := NewOpenList(32, 3)
	if l.Cap() != 3 || l.Ceiling() != 3 {
		t.Errorf("expected capacity and ceiling 3, got %d and %d", l.Cap(), l.Ceiling())
	}
}

func TestInterpolateClamps(t *testing.T) {
	a, b := r3.Vec{}, r3.Vec{X: 2}
	if got := interpolate(a, b, 0, 4, 1); got != (r3.Vec{X: 0.5}) {
		t.Errorf("expected {0.5 0 0}, got %v", got)
	}
	if got := interpolate(a, b, 0, 4, 10); got != b {
		t.Errorf("expected clamp to far corner, got %v", got)
	}
	if got := interpolate(a, b, 3, 3, 3); got != (r3.Vec{X: 1}) {
		t.Errorf("expected midpoint for flat edge, got %v", got)
	}
}

func TestNoSeedsEmptyMesh(t *testing.T) {
	s := newScene(32, 100, 40, 0)
	m, res := s.extract(t)
	if !m.Empty() || m.NumVertices() != 0 {
		t.Errorf("expected empty mesh, got %d vertices", m.NumVertices())
	}
	if res.Evaluations != 0 {
		t.Errorf("expected no field samples, got %d", res.Evaluations)
	}
}

func TestSingleBallSphere(t *testing.T) {
	const level = 40.0
	s := newScene(48, 200, level, 0, r3.Vec{})
	m, res := s.extract(t)

	if m.Empty() {
		t.Fatal("expected a surface")
	}
	if res.Seeds != 1 || res.Overflow {
		t.Errorf("unexpected result %+v", res)
	}

	radius := s.field.IsoRadius(1, level)
	diag := s.prop.cache.Space().VoxelDiagonal()
	for i, v := range m.Vertices {
		if d := math.Abs(r3.Norm(v) - radius); d > diag {
			t.Fatalf("vertex %d at distance %f from sphere of radius %f", i, d, radius)
		}
		if r3.Dot(m.Normals[i], v) <= 0 {
			t.Fatalf("vertex %d normal %v points inward", i, m.Normals[i])
		}
		if n := r3.Norm(m.Normals[i]); math.Abs(n-1) > 1e-9 {
			t.Fatalf("vertex %d normal has length %f", i, n)
		}
	}

	// counter-clockwise seen from outside
	for k := 0; k < len(m.Indices); k += 3 {
		a, b, c := m.Vertices[m.Indices[k]], m.Vertices[m.Indices[k+1]], m.Vertices[m.Indices[k+2]]
		fn := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
		if r3.Norm2(fn) == 0 {
			continue
		}
		centroid := r3.Scale(1.0/3, r3.Add(r3.Add(a, b), c))
		if r3.Cos(fn, centroid) < -0.1 {
			t.Fatalf("triangle %d wound clockwise", k/3)
		}
	}
}

func TestSingleBallClosedSurface(t *testing.T) {
	s := newScene(32, 100, 30, 0, r3.Vec{X: 0.05, Y: -0.03, Z: 0.02})
	m, _ := s.extract(t)

	key := func(v r3.Vec) [3]int64 {
		return [3]int64{int64(math.Round(v.X * 1e6)), int64(math.Round(v.Y * 1e6)), int64(math.Round(v.Z * 1e6))}
	}
	type edge struct{ a, b [3]int64 }
	count := map[edge]int{}
	for k := 0; k < len(m.Indices); k += 3 {
		tri := [3][3]int64{key(m.Vertices[m.Indices[k]]), key(m.Vertices[m.Indices[k+1]]), key(m.Vertices[m.Indices[k+2]])}
		for i := 0; i < 3; i++ {
			a, b := tri[i], tri[(i+1)%3]
			if b[0] < a[0] || (b[0] == a[0] && (b[1] < a[1] || (b[1] == a[1] && b[2] < a[2]))) {
				a, b = b, a
			}
			count[edge{a, b}]++
		}
	}
	if len(count) == 0 {
		t.Fatal("expected a surface")
	}
	for e, n := range count {
		if n != 2 {
			t.Fatalf("edge %v shared by %d triangles, want 2", e, n)
		}
	}
}

func TestOverlappingBallsShareSeed(t *testing.T) {
	s := newScene(32, 100, 30, 0, r3.Vec{X: -0.02}, r3.Vec{X: 0.02})
	_, res := s.extract(t)
	if res.Seeds != 1 || res.SharedSeeds != 1 {
		t.Errorf("expected one seed and one shared, got %+v", res)
	}
}

func TestSeparateBallsSeedTwice(t *testing.T) {
	s := newScene(48, 100, 60, 0, r3.Vec{X: -0.5}, r3.Vec{X: 0.5})
	m, res := s.extract(t)
	if res.Seeds != 2 {
		t.Errorf("expected two seeds, got %+v", res)
	}

	var left, right int
	for _, v := range m.Vertices {
		if v.X < 0 {
			left++
		} else {
			right++
		}
	}
	if left == 0 || right == 0 {
		t.Errorf("expected surface around both balls, got %d left and %d right", left, right)
	}
}

func TestLevelAboveFieldMissesSeed(t *testing.T) {
	s := newScene(16, 10, 1e9, 0, r3.Vec{})
	m, res := s.extract(t)
	if res.MissedSeeds != 1 || !m.Empty() {
		t.Errorf("expected missed seed and empty mesh, got %+v", res)
	}
}

func TestOverflowTerminates(t *testing.T) {
	s := newScene(48, 200, 40, 1, r3.Vec{})
	m := &mesh.Mesh{}
	res, err := s.prop.Extract(s.seeds, m)

	if !errors.Is(err, ErrGridOverflow) {
		t.Fatalf("expected ErrGridOverflow, got %v", err)
	}
	if !res.Overflow || res.Dropped == 0 {
		t.Errorf("expected overflow with dropped pushes, got %+v", res)
	}
	if res.PeakOpen > 1 {
		t.Errorf("open list exceeded ceiling: peak %d", res.PeakOpen)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("partial mesh invalid: %v", err)
	}
}

func TestEachVoxelVisitedOnce(t *testing.T) {
	s := newScene(32, 100, 30, 0, r3.Vec{})
	_, res := s.extract(t)
	if res.Visited != s.prop.cache.TriangulatedCount() {
		t.Errorf("visited %d voxels but %d are marked", res.Visited, s.prop.cache.TriangulatedCount())
	}
	if res.Triangulated > res.Visited {
		t.Errorf("triangulated %d of %d visited", res.Triangulated, res.Visited)
	}
}

func TestAttributes(t *testing.T) {
	sp := grid.NewSpace(16, 10)
	uv, c, tan := attributes(r3.Vec{X: 5, Y: 2.5, Z: -5}, r3.Vec{X: 1}, sp)

	if uv.U != 0.75 || uv.V != 0 {
		t.Errorf("expected uv (0.75, 0), got %+v", uv)
	}
	if c.R != 255 || c.G != 128 || c.B != 128 || c.A != 255 {
		t.Errorf("unexpected color %v", c)
	}
	if r3.Dot(tan.Dir, r3.Vec{X: 1}) != 0 || math.Abs(r3.Norm(tan.Dir)-1) > 1e-12 {
		t.Errorf("tangent %v not a unit vector orthogonal to the normal", tan.Dir)
	}
}

func BenchmarkExtract(b *testing.B) {
	s := newScene(64, 200, 40, 0, r3.Vec{X: -0.3}, r3.Vec{X: 0.3}, r3.Vec{Y: 0.4})
	m := &mesh.Mesh{}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Reset()
		if _, err := s.prop.Extract(s.seeds, m); err != nil {
			b.Fatal(err)
		}
	}
}
