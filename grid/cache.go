package grid

import (
	"github.com/bits-and-blooms/bitset"
	"gonum.org/v1/gonum/spatial/r3"
)

// Sampler evaluates a scalar field at a world point.
type Sampler interface {
	EnergyAt(p r3.Vec) float64
}

// Cache memoizes lattice point energies and tracks per-voxel visit flags for
// one extraction pass. All flags are cleared together by Reset.
type Cache struct {
	space Space
	field Sampler

	energy       []float64
	computed     *bitset.BitSet // per point: energy valid this pass
	triangulated *bitset.BitSet // per voxel: classified and polygonized
	enqueued     *bitset.BitSet // per voxel: pushed onto the open list

	evaluations int
}

// NewCache allocates buffers for space and samples f on demand.
func NewCache(space Space, f Sampler) *Cache {
	c := &Cache{field: f}
	c.allocate(space)
	return c
}

func (c *Cache) allocate(space Space) {
	c.space = space
	c.energy = make([]float64, space.PointVolume)
	c.computed = bitset.New(uint(space.PointVolume))
	c.triangulated = bitset.New(uint(space.VoxelVolume))
	c.enqueued = bitset.New(uint(space.VoxelVolume))
	c.evaluations = 0
}

// Space returns the lattice the cache is sized for.
func (c *Cache) Space() Space {
	return c.space
}

// Rebuild reallocates the buffers when space differs from the current one.
// Returns true if a reallocation happened.
func (c *Cache) Rebuild(space Space) bool {
	if space == c.space {
		return false
	}
	c.allocate(space)
	return true
}

// Reset clears every point and voxel flag for a new pass.
func (c *Cache) Reset() {
	c.computed.ClearAll()
	c.triangulated.ClearAll()
	c.enqueued.ClearAll()
	c.evaluations = 0
}

// PointEnergy returns the field value at lattice point (x,y,z), sampling it
// at most once per pass.
func (c *Cache) PointEnergy(x, y, z int) float64 {
	i := uint(c.space.PointIndex(x, y, z))
	if c.computed.Test(i) {
		return c.energy[i]
	}
	e := c.field.EnergyAt(c.space.Point(x, y, z))
	c.energy[i] = e
	c.computed.Set(i)
	c.evaluations++
	return e
}

// PointComputed reports whether (x,y,z) has been sampled this pass.
func (c *Cache) PointComputed(x, y, z int) bool {
	return c.computed.Test(uint(c.space.PointIndex(x, y, z)))
}

// Evaluations returns the number of field samples taken this pass.
func (c *Cache) Evaluations() int {
	return c.evaluations
}

// Triangulated reports whether voxel (x,y,z) was polygonized this pass.
func (c *Cache) Triangulated(x, y, z int) bool {
	return c.triangulated.Test(uint(c.space.VoxelIndex(x, y, z)))
}

// MarkTriangulated flags voxel (x,y,z) as polygonized.
func (c *Cache) MarkTriangulated(x, y, z int) {
	c.triangulated.Set(uint(c.space.VoxelIndex(x, y, z)))
}

// Enqueued reports whether voxel (x,y,z) was pushed onto the open list this pass.
func (c *Cache) Enqueued(x, y, z int) bool {
	return c.enqueued.Test(uint(c.space.VoxelIndex(x, y, z)))
}

// MarkEnqueued flags voxel (x,y,z) as pushed onto the open list.
func (c *Cache) MarkEnqueued(x, y, z int) {
	c.enqueued.Set(uint(c.space.VoxelIndex(x, y, z)))
}

// TriangulatedCount returns the number of voxels polygonized this pass.
func (c *Cache) TriangulatedCount() int {
	return int(c.triangulated.Count())
}
