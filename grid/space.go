// Package grid maps world coordinates onto the cubic sampling lattice and
// caches field energies at its points.
package grid

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/metaballs/config"
)

// Space is a cubic lattice of Steps voxels per axis spanning [-Scale/2, +Scale/2].
type Space struct {
	Steps int
	Scale float64
	Voxel float64 // Scale / Steps
	Half  float64 // Scale / 2

	// Points is the lattice width (Steps+1); Area and Volume follow the same convention.
	Points      int
	PointArea   int
	PointVolume int
	VoxelArea   int
	VoxelVolume int
}

// NewSpace returns a Space with steps and scale clamped to their valid ranges.
func NewSpace(steps int, scale float64) Space {
	steps = config.ClampGridSteps(steps)
	scale = config.ClampScale(scale)

	n := steps + 1
	return Space{
		Steps:       steps,
		Scale:       scale,
		Voxel:       scale / float64(steps),
		Half:        scale / 2,
		Points:      n,
		PointArea:   n * n,
		PointVolume: n * n * n,
		VoxelArea:   steps * steps,
		VoxelVolume: steps * steps * steps,
	}
}

// WorldToGrid returns the nearest lattice index for a world coordinate.
// The result is not bounds checked.
func (s Space) WorldToGrid(c float64) int {
	return int(math.Floor((c+s.Half)/s.Voxel + 0.5))
}

// GridToWorld returns the world coordinate of a lattice index.
func (s Space) GridToWorld(i int) float64 {
	return float64(i)*s.Voxel - s.Half
}

// Point returns the world position of lattice point (x,y,z).
func (s Space) Point(x, y, z int) r3.Vec {
	return r3.Vec{X: s.GridToWorld(x), Y: s.GridToWorld(y), Z: s.GridToWorld(z)}
}

// NearestVoxel returns the voxel containing p, clamped into the grid.
func (s Space) NearestVoxel(p r3.Vec) (x, y, z int) {
	return s.voxelCoord(p.X), s.voxelCoord(p.Y), s.voxelCoord(p.Z)
}

func (s Space) voxelCoord(c float64) int {
	i := int(math.Floor((c + s.Half) / s.Voxel))
	if i < 0 {
		return 0
	}
	if i >= s.Steps {
		return s.Steps - 1
	}
	return i
}

// PointIndex flattens lattice coordinates: x + y*(n+1) + z*(n+1)^2.
func (s Space) PointIndex(x, y, z int) int {
	return x + y*s.Points + z*s.PointArea
}

// VoxelIndex flattens voxel coordinates: x + y*n + z*n^2.
func (s Space) VoxelIndex(x, y, z int) int {
	return x + y*s.Steps + z*s.VoxelArea
}

// VoxelCoords is the inverse of VoxelIndex.
func (s Space) VoxelCoords(idx int) (x, y, z int) {
	x = idx % s.Steps
	y = (idx % s.VoxelArea) / s.Steps
	z = idx / s.VoxelArea
	return x, y, z
}

// VoxelInBounds reports whether (x,y,z) names a voxel of the grid.
func (s Space) VoxelInBounds(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 &&
		x < s.Steps && y < s.Steps && z < s.Steps
}

// Bounds returns the world box covered by the lattice.
func (s Space) Bounds() r3.Box {
	return r3.Box{
		Min: r3.Vec{X: -s.Half, Y: -s.Half, Z: -s.Half},
		Max: r3.Vec{X: s.Half, Y: s.Half, Z: s.Half},
	}
}

// VoxelDiagonal returns the world length of a voxel's main diagonal.
func (s Space) VoxelDiagonal() float64 {
	return s.Voxel * math.Sqrt(3)
}
