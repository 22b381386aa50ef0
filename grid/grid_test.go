package grid

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// countingField returns x+y+z and counts calls.
type countingField struct {
	calls int
}

func (f *countingField) EnergyAt(p r3.Vec) float64 {
	f.calls++
	return p.X + p.Y + p.Z
}

func TestLatticeRoundtrip(t *testing.T) {
	for _, steps := range []int{16, 17, 33, 48, 100, 128} {
		for _, scale := range []float64{1, 3.7, 10, 200, 1234.5} {
			s := NewSpace(steps, scale)
			for i := 0; i <= s.Steps; i++ {
				p := s.GridToWorld(i)
				if got := s.WorldToGrid(p); got != i {
					t.Fatalf("steps=%d scale=%f: WorldToGrid(GridToWorld(%d)) = %d", steps, scale, i, got)
				}
				if back := s.GridToWorld(s.WorldToGrid(p)); back != p {
					t.Fatalf("steps=%d scale=%f: %v did not round trip, got %v", steps, scale, p, back)
				}
			}
		}
	}
}

func TestSpaceCenteredAndClamped(t *testing.T) {
	s := NewSpace(4, 0.1)
	if s.Steps != 16 || s.Scale != 1 {
		t.Fatalf("expected clamped (16, 1), got (%d, %f)", s.Steps, s.Scale)
	}
	if s.GridToWorld(0) != -0.5 || s.GridToWorld(s.Steps) != 0.5 {
		t.Errorf("expected lattice to span [-0.5, 0.5], got [%f, %f]",
			s.GridToWorld(0), s.GridToWorld(s.Steps))
	}

	s = NewSpace(500, 10)
	if s.Steps != 128 {
		t.Errorf("expected steps clamped to 128, got %d", s.Steps)
	}
}

func TestNearestVoxelClamped(t *testing.T) {
	s := NewSpace(16, 16)

	tests := []struct {
		p       r3.Vec
		x, y, z int
	}{
		{r3.Vec{}, 8, 8, 8},
		{r3.Vec{X: -7.5, Y: 7.5, Z: 0.2}, 0, 15, 8},
		{r3.Vec{X: -100, Y: 100, Z: -0.2}, 0, 15, 7},
	}
	for _, tt := range tests {
		x, y, z := s.NearestVoxel(tt.p)
		if x != tt.x || y != tt.y || z != tt.z {
			t.Errorf("NearestVoxel(%v) = (%d,%d,%d), want (%d,%d,%d)", tt.p, x, y, z, tt.x, tt.y, tt.z)
		}
	}
}

func TestVoxelIndexRoundtrip(t *testing.T) {
	s := NewSpace(20, 1)
	for _, c := range [][3]int{{0, 0, 0}, {19, 0, 0}, {3, 7, 11}, {19, 19, 19}} {
		idx := s.VoxelIndex(c[0], c[1], c[2])
		x, y, z := s.VoxelCoords(idx)
		if x != c[0] || y != c[1] || z != c[2] {
			t.Errorf("VoxelCoords(VoxelIndex(%v)) = (%d,%d,%d)", c, x, y, z)
		}
	}
	if got := s.PointIndex(1, 2, 3); got != 1+2*21+3*21*21 {
		t.Errorf("unexpected point index %d", got)
	}
}

func TestCacheMemoizes(t *testing.T) {
	f := &countingField{}
	c := NewCache(NewSpace(16, 16), f)

	e1 := c.PointEnergy(3, 4, 5)
	e2 := c.PointEnergy(3, 4, 5)
	if e1 != e2 {
		t.Errorf("expected identical cached energy, got %f and %f", e1, e2)
	}
	if f.calls != 1 {
		t.Errorf("expected one field evaluation, got %d", f.calls)
	}
	if !c.PointComputed(3, 4, 5) || c.PointComputed(4, 4, 5) {
		t.Error("computed flag mismatch")
	}

	want := c.Space().Point(3, 4, 5)
	if e1 != want.X+want.Y+want.Z {
		t.Errorf("expected energy %f, got %f", want.X+want.Y+want.Z, e1)
	}
}

func TestCacheResetClearsAllFlags(t *testing.T) {
	f := &countingField{}
	c := NewCache(NewSpace(16, 16), f)

	c.PointEnergy(1, 1, 1)
	c.MarkTriangulated(2, 2, 2)
	c.MarkEnqueued(3, 3, 3)

	c.Reset()

	if c.PointComputed(1, 1, 1) || c.Triangulated(2, 2, 2) || c.Enqueued(3, 3, 3) {
		t.Error("expected all flags cleared after reset")
	}
	if c.Evaluations() != 0 {
		t.Errorf("expected evaluation counter reset, got %d", c.Evaluations())
	}

	c.PointEnergy(1, 1, 1)
	if f.calls != 2 {
		t.Errorf("expected re-evaluation after reset, got %d calls", f.calls)
	}
}

func TestCacheRebuildOnlyOnChange(t *testing.T) {
	c := NewCache(NewSpace(16, 16), &countingField{})

	if c.Rebuild(NewSpace(16, 16)) {
		t.Error("expected no rebuild for identical space")
	}
	if !c.Rebuild(NewSpace(32, 16)) {
		t.Fatal("expected rebuild for new step count")
	}
	if len(c.energy) != 33*33*33 {
		t.Errorf("expected %d energies, got %d", 33*33*33, len(c.energy))
	}
	if c.triangulated.Len() != 32*32*32 {
		t.Errorf("expected %d voxel flags, got %d", 32*32*32, c.triangulated.Len())
	}
}
