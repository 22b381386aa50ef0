// Package surface extracts the level surface of a field by marching cubes,
// visiting only voxels connected to the surface near each ball.
package surface

import (
	"errors"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/metaballs/config"
	"github.com/pthm-cable/metaballs/grid"
	"github.com/pthm-cable/metaballs/mesh"
)

// ErrGridOverflow is returned when the open list hit its ceiling during a pass.
// The pass still completes; the mesh may be missing parts of the surface.
var ErrGridOverflow = errors.New("surface: grid overflow")

const (
	maskInside  uint8 = 0x00
	maskOutside uint8 = 0xff
)

// Seeding walks away from a ball's voxel in this order until the surface is found.
var walkDirs = [6][3]int{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}

// Result counts the work done by one extraction pass.
type Result struct {
	Seeds        int // balls that started a propagation
	SharedSeeds  int // balls whose surface was already extracted
	MissedSeeds  int // balls with no surface crossing along the walk
	Visited      int // voxels popped and classified
	Triangulated int // voxels that produced triangles
	Triangles    int
	Dropped      int // pushes rejected at the ceiling
	PeakOpen     int
	Evaluations  int // field samples
	Overflow     bool
}

// Propagator drives the open-voxel frontier from ball seeds across the surface.
type Propagator struct {
	cache *grid.Cache
	open  *OpenList
	tri   *Triangulator
	level float64

	initial int
	maxOpen int
}

// NewPropagator returns a propagator over cache polygonizing with f.
func NewPropagator(cache *grid.Cache, f Field, level float64, cfg config.PropagationConfig) *Propagator {
	p := &Propagator{
		cache:   cache,
		tri:     NewTriangulator(cache, f),
		level:   level,
		initial: cfg.InitialOpenVoxels,
		maxOpen: cfg.MaxOpenVoxels,
		open:    &OpenList{},
	}
	p.Resize()
	return p
}

// Resize recomputes the open-list ceiling from the cache's current space.
// Call it after the cache is rebuilt.
func (p *Propagator) Resize() {
	ceiling := p.cache.Space().VoxelVolume
	if p.maxOpen > 0 && p.maxOpen < ceiling {
		ceiling = p.maxOpen
	}
	p.open.Configure(p.initial, ceiling)
}

// SetMaxOpenVoxels changes the ceiling limit (0 = grid volume).
func (p *Propagator) SetMaxOpenVoxels(n int) {
	if n < 0 {
		n = 0
	}
	p.maxOpen = n
	p.Resize()
}

// Level returns the iso level.
func (p *Propagator) Level() float64 {
	return p.level
}

// SetLevel sets the iso level.
func (p *Propagator) SetLevel(level float64) {
	p.level = level
}

// OpenList exposes the frontier for inspection.
func (p *Propagator) OpenList() *OpenList {
	return p.open
}

// Extract runs one pass: it resets the cache flags, seeds from each world
// position in seeds and appends the surface to out. The caller clears out.
// On overflow the partial result is kept and a wrapped ErrGridOverflow returned.
func (p *Propagator) Extract(seeds []r3.Vec, out *mesh.Mesh) (Result, error) {
	p.cache.Reset()
	p.open.Reset()

	var res Result
	s := p.cache.Space()
	for _, c := range seeds {
		idx, ok := p.seedVoxel(c)
		if !ok {
			res.MissedSeeds++
			continue
		}
		x, y, z := s.VoxelCoords(idx)
		if p.cache.Triangulated(x, y, z) {
			res.SharedSeeds++
			continue
		}
		res.Seeds++
		if !p.cache.Enqueued(x, y, z) {
			p.push(x, y, z, &res)
		}
		p.drain(out, &res)
	}

	res.PeakOpen = p.open.Peak()
	res.Evaluations = p.cache.Evaluations()
	if res.Overflow {
		slog.Debug("open list saturated", "dropped", res.Dropped, "ceiling", p.open.Ceiling())
		return res, fmt.Errorf("%w: %d voxels dropped at ceiling %d (%d steps)",
			ErrGridOverflow, res.Dropped, p.open.Ceiling(), s.Steps)
	}
	return res, nil
}

func (p *Propagator) drain(out *mesh.Mesh, res *Result) {
	s := p.cache.Space()
	var e [8]float64
	for {
		idx, ok := p.open.Pop()
		if !ok {
			return
		}
		x, y, z := s.VoxelCoords(idx)
		if p.cache.Triangulated(x, y, z) {
			continue
		}
		res.Visited++

		mask := p.classify(x, y, z, &e)
		p.cache.MarkTriangulated(x, y, z)
		if mask == maskInside || mask == maskOutside {
			continue
		}
		res.Triangulated++
		res.Triangles += p.tri.Polygonize(x, y, z, &e, mask, p.level, out)

		for _, f := range faces {
			if !p.faceCrossed(&e, f.corners) {
				continue
			}
			nx, ny, nz := x+f.offset[0], y+f.offset[1], z+f.offset[2]
			if !s.VoxelInBounds(nx, ny, nz) || p.cache.Enqueued(nx, ny, nz) || p.cache.Triangulated(nx, ny, nz) {
				continue
			}
			p.push(nx, ny, nz, res)
		}
	}
}

func (p *Propagator) push(x, y, z int, res *Result) {
	if p.open.Push(p.cache.Space().VoxelIndex(x, y, z)) {
		p.cache.MarkEnqueued(x, y, z)
		return
	}
	res.Dropped++
	res.Overflow = true
}

// classify samples the eight corners of voxel (x,y,z) into e and returns the
// case mask. Bit i is set when corner i is below the level.
func (p *Propagator) classify(x, y, z int, e *[8]float64) uint8 {
	var mask uint8
	for i, o := range cornerOffsets {
		e[i] = p.cache.PointEnergy(x+o[0], y+o[1], z+o[2])
		if e[i] < p.level {
			mask |= 1 << i
		}
	}
	return mask
}

// faceCrossed reports whether the surface passes through the given face.
func (p *Propagator) faceCrossed(e *[8]float64, corners [4]int) bool {
	below := 0
	for _, c := range corners {
		if e[c] < p.level {
			below++
		}
	}
	return below > 0 && below < 4
}

// seedVoxel walks from the voxel containing c through fully inside voxels
// until it reaches one the surface crosses.
func (p *Propagator) seedVoxel(c r3.Vec) (int, bool) {
	s := p.cache.Space()
	x0, y0, z0 := s.NearestVoxel(c)

	var e [8]float64
	for _, d := range walkDirs {
		x, y, z := x0, y0, z0
		for s.VoxelInBounds(x, y, z) {
			mask := p.classify(x, y, z, &e)
			if mask == maskOutside {
				break
			}
			if mask != maskInside {
				return s.VoxelIndex(x, y, z), true
			}
			x, y, z = x+d[0], y+d[1], z+d[2]
		}
	}
	return 0, false
}
