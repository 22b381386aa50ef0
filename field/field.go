// Package field evaluates the metaball energy field at arbitrary world points.
package field

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/metaballs/balls"
	"github.com/pthm-cable/metaballs/config"
)

// DefaultEpsilon bounds the inverse-square kernel near a ball center.
const DefaultEpsilon = 1e-4

// Kernel is the falloff of a unit charge as a function of squared local distance.
// Implementations are continuous, non-increasing in d2 and bounded.
type Kernel interface {
	Contribution(d2 float64) float64
	// IsoDistance2 returns the squared distance at which a unit charge reaches level.
	IsoDistance2(level float64) float64
}

// InverseSquare is 1/d² clamped at Epsilon. It never reaches exactly zero but
// drops below any practical level within a few ball radii.
type InverseSquare struct {
	Epsilon float64
}

func (k InverseSquare) Contribution(d2 float64) float64 {
	if d2 < k.Epsilon {
		d2 = k.Epsilon
	}
	return 1 / d2
}

func (k InverseSquare) IsoDistance2(level float64) float64 {
	if level <= 0 {
		return math.Inf(1)
	}
	return math.Max(1/level, k.Epsilon)
}

// Wyvill is the cubic falloff (1 - d²/R²)³ inside Radius and zero beyond.
type Wyvill struct {
	Radius float64
}

func (k Wyvill) Contribution(d2 float64) float64 {
	r2 := k.Radius * k.Radius
	if d2 >= r2 {
		return 0
	}
	t := 1 - d2/r2
	return t * t * t
}

func (k Wyvill) IsoDistance2(level float64) float64 {
	r2 := k.Radius * k.Radius
	switch {
	case level <= 0:
		return r2
	case level >= 1:
		return 0
	}
	return r2 * (1 - math.Cbrt(level))
}

// NewKernel builds the kernel named in cfg.
func NewKernel(cfg config.FieldConfig) Kernel {
	if cfg.Kernel == config.KernelWyvill {
		return Wyvill{Radius: cfg.Radius}
	}
	return InverseSquare{Epsilon: DefaultEpsilon}
}

// Field sums kernel contributions of a ball snapshot.
// Balls are in local space; world points are divided by unit (half the grid scale).
type Field struct {
	kernel Kernel
	unit   float64
	balls  []balls.Ball
}

// New creates a field with the given kernel and local-to-world unit.
func New(kernel Kernel, unit float64) *Field {
	return &Field{kernel: kernel, unit: unit}
}

// Kernel returns the falloff in use.
func (f *Field) Kernel() Kernel {
	return f.kernel
}

// SetKernel replaces the falloff.
func (f *Field) SetKernel(k Kernel) {
	f.kernel = k
}

// Unit returns the world length of one local unit.
func (f *Field) Unit() float64 {
	return f.unit
}

// SetUnit sets the world length of one local unit.
func (f *Field) SetUnit(unit float64) {
	f.unit = unit
}

// SetBalls replaces the charges. The slice is read, not copied, during evaluation.
func (f *Field) SetBalls(b []balls.Ball) {
	f.balls = b
}

// NumBalls returns the number of charges being summed.
func (f *Field) NumBalls() int {
	return len(f.balls)
}

// EnergyAt returns the field value at world point p.
func (f *Field) EnergyAt(p r3.Vec) float64 {
	q := r3.Scale(1/f.unit, p)
	var e float64
	for i := range f.balls {
		d := r3.Sub(q, f.balls[i].Position)
		e += f.balls[i].Mass * f.kernel.Contribution(r3.Norm2(d))
	}
	return e
}

// Gradient estimates the field gradient at p by central differences with step h.
func (f *Field) Gradient(p r3.Vec, h float64) r3.Vec {
	return r3.Gradient(p, r3.Vec{X: h, Y: h, Z: h}, f.EnergyAt)
}

// IsoRadius returns the world radius of the level surface around a lone ball of the given mass.
func (f *Field) IsoRadius(mass, level float64) float64 {
	if mass <= 0 {
		return 0
	}
	return math.Sqrt(f.kernel.IsoDistance2(level/mass)) * f.unit
}
