package field

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/metaballs/balls"
	"github.com/pthm-cable/metaballs/config"
)

func kernels() map[string]Kernel {
	return map[string]Kernel{
		"inverse_square": InverseSquare{Epsilon: DefaultEpsilon},
		"wyvill":         Wyvill{Radius: 0.5},
	}
}

func TestKernelMonotonicAndBounded(t *testing.T) {
	for name, k := range kernels() {
		peak := k.Contribution(0)
		if math.IsInf(peak, 0) || math.IsNaN(peak) {
			t.Fatalf("%s: unbounded at center: %f", name, peak)
		}
		prev := peak
		for d2 := 0.0; d2 < 4; d2 += 0.001 {
			c := k.Contribution(d2)
			if c > prev+1e-12 {
				t.Fatalf("%s: increased at d2=%f (%f > %f)", name, d2, c, prev)
			}
			if c > peak {
				t.Fatalf("%s: exceeded peak at d2=%f", name, d2)
			}
			prev = c
		}
	}
}

func TestWyvillZeroBeyondRadius(t *testing.T) {
	k := Wyvill{Radius: 0.5}
	if c := k.Contribution(0.25); c != 0 {
		t.Errorf("expected zero at radius, got %f", c)
	}
	if c := k.Contribution(1); c != 0 {
		t.Errorf("expected zero beyond radius, got %f", c)
	}
}

func TestIsoDistanceMatchesContribution(t *testing.T) {
	for name, k := range kernels() {
		for _, level := range []float64{0.05, 0.3, 0.8, 5, 40} {
			if name == "wyvill" && level >= 1 {
				continue
			}
			d2 := k.IsoDistance2(level)
			if got := k.Contribution(d2); math.Abs(got-level) > 1e-9*math.Max(1, level) {
				t.Errorf("%s level %f: contribution at iso distance is %f", name, level, got)
			}
		}
	}
}

func TestEnergySumsAcrossBalls(t *testing.T) {
	f := New(InverseSquare{Epsilon: DefaultEpsilon}, 10)

	one := []balls.Ball{{Position: r3.Vec{X: 0.2}, Mass: 1}}
	two := []balls.Ball{{Position: r3.Vec{X: 0.2}, Mass: 1}, {Position: r3.Vec{X: -0.2}, Mass: 1}}

	p := r3.Vec{Y: 3}
	f.SetBalls(one)
	e1 := f.EnergyAt(p)
	f.SetBalls(two)
	e2 := f.EnergyAt(p)

	// p is equidistant from both balls
	if math.Abs(e2-2*e1) > 1e-12 {
		t.Errorf("expected doubled energy %f, got %f", 2*e1, e2)
	}
}

func TestEnergyUsesWorldUnit(t *testing.T) {
	f := New(InverseSquare{Epsilon: DefaultEpsilon}, 50)
	f.SetBalls([]balls.Ball{{Mass: 2}})

	// World distance 25 is local distance 0.5
	want := 2 / 0.25
	if got := f.EnergyAt(r3.Vec{Z: 25}); math.Abs(got-want) > 1e-12 {
		t.Errorf("expected %f, got %f", want, got)
	}
}

func TestEmptyFieldIsZero(t *testing.T) {
	f := New(NewKernel(config.Default().Field), 1)
	if e := f.EnergyAt(r3.Vec{X: 0.3}); e != 0 {
		t.Errorf("expected zero energy without balls, got %f", e)
	}
}

func TestGradientPointsTowardBall(t *testing.T) {
	f := New(InverseSquare{Epsilon: DefaultEpsilon}, 1)
	f.SetBalls([]balls.Ball{{Position: r3.Vec{X: 0.1, Y: -0.2, Z: 0.05}, Mass: 1}})

	p := r3.Vec{X: 0.4, Y: 0.1, Z: -0.2}
	g := f.Gradient(p, 1e-4)
	toBall := r3.Sub(r3.Vec{X: 0.1, Y: -0.2, Z: 0.05}, p)

	if cos := r3.Cos(g, toBall); cos < 0.999 {
		t.Errorf("expected gradient aligned with ball direction, cos=%f", cos)
	}
}

func TestIsoRadius(t *testing.T) {
	f := New(InverseSquare{Epsilon: DefaultEpsilon}, 100)
	f.SetBalls([]balls.Ball{{Mass: 1}})

	r := f.IsoRadius(1, 25)
	if math.Abs(r-20) > 1e-9 {
		t.Errorf("expected iso radius 20, got %f", r)
	}
	if e := f.EnergyAt(r3.Vec{X: r}); math.Abs(e-25) > 1e-9 {
		t.Errorf("expected level 25 at iso radius, got %f", e)
	}
}
