// Package balls holds the metaball charges and their auto-fly motion.
package balls

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/metaballs/components"
	"github.com/pthm-cable/metaballs/config"
)

// MaxBalls is the number of ball entities a Set owns.
const MaxBalls = config.MaxBalls

// SeedMode selects where balls start.
type SeedMode uint8

const (
	SeedCentered SeedMode = iota // all balls start at the origin
	SeedRandom                   // uniform inside the auto-fly box
)

// Ball is a read-only copy of one active ball.
type Ball struct {
	Position     r3.Vec  `inspect:"vector,fmt:%.1f"`
	Velocity     r3.Vec  `inspect:"vector,fmt:%.3f"`
	Acceleration r3.Vec  `inspect:"vector,fmt:%.3f"`
	Age          float64 `inspect:"label,fmt:%.2fs"` // seconds since last retarget
	Mass         float64 `inspect:"label"`
}

// Motion holds auto-fly parameters in local units per second.
type Motion struct {
	InitialSpeed     float64
	MaxSpeed         float64
	MaxAccel         float64
	RetargetInterval float64
}

// Set owns MaxBalls ball entities. Only the first Count are active; the rest are inert.
type Set struct {
	world  *ecs.World
	mapper *ecs.Map4[
		components.Position,
		components.Velocity,
		components.Acceleration,
		components.Charge,
	]
	posMap *ecs.Map[components.Position]

	entities [MaxBalls]ecs.Entity
	count    int
	auto     bool
	limits   r3.Vec
	motion   Motion
	mass     float64
	rng      *rand.Rand

	snapshot []Ball
}

// NewSet creates the ball entities from cfg and seeds them with rng.
func NewSet(cfg *config.Config, rng *rand.Rand) *Set {
	world := ecs.NewWorld()

	s := &Set{
		world: world,
		mapper: ecs.NewMap4[
			components.Position,
			components.Velocity,
			components.Acceleration,
			components.Charge,
		](world),
		posMap: ecs.NewMap[components.Position](world),
		count:  config.ClampNumBalls(cfg.Metaballs.NumBalls),
		auto:   cfg.Metaballs.AutoMode,
		limits: r3.Vec{
			X: config.ClampLimit(cfg.Metaballs.AutoLimit.X),
			Y: config.ClampLimit(cfg.Metaballs.AutoLimit.Y),
			Z: config.ClampLimit(cfg.Metaballs.AutoLimit.Z),
		},
		motion: Motion{
			InitialSpeed:     cfg.Motion.InitialSpeed,
			MaxSpeed:         cfg.Motion.MaxSpeed,
			MaxAccel:         cfg.Motion.MaxAccel,
			RetargetInterval: cfg.Motion.RetargetInterval,
		},
		mass:     cfg.Field.Mass,
		rng:      rng,
		snapshot: make([]Ball, 0, MaxBalls),
	}

	for i := range s.entities {
		pos := components.Position{}
		vel := components.Velocity{}
		acc := components.Acceleration{}
		charge := components.Charge{Mass: s.mass}
		s.entities[i] = s.mapper.NewEntity(&pos, &vel, &acc, &charge)
	}

	mode := SeedCentered
	if cfg.Metaballs.RandomSeed {
		mode = SeedRandom
	}
	s.Seed(mode)

	return s
}

// Count returns the number of active balls.
func (s *Set) Count() int {
	return s.count
}

// SetCount sets the number of active balls, clamped to [0, MaxBalls].
func (s *Set) SetCount(n int) {
	s.count = config.ClampNumBalls(n)
}

// Auto reports whether balls move on their own.
func (s *Set) Auto() bool {
	return s.auto
}

// SetAuto switches between auto-fly and externally driven positions.
func (s *Set) SetAuto(auto bool) {
	s.auto = auto
}

// Limits returns the per-axis auto-fly limits.
func (s *Set) Limits() r3.Vec {
	return s.limits
}

// SetLimits sets the per-axis auto-fly limits, each clamped to [0,1].
func (s *Set) SetLimits(l r3.Vec) {
	s.limits = r3.Vec{
		X: config.ClampLimit(l.X),
		Y: config.ClampLimit(l.Y),
		Z: config.ClampLimit(l.Z),
	}
}

// Bounds returns the auto-fly box in local space.
func (s *Set) Bounds() r3.Box {
	return r3.Box{Min: r3.Scale(-1, s.limits), Max: s.limits}
}

// SetTransform moves ball i to a local-space position.
// Returns false and leaves the set untouched if i is not an active ball or
// p is not finite.
func (s *Set) SetTransform(i int, p r3.Vec) bool {
	if i < 0 || i >= s.count {
		slog.Debug("ball transform index out of range", "index", i, "count", s.count)
		return false
	}
	if !finite(p) {
		slog.Debug("ball transform not finite", "index", i, "position", p)
		return false
	}
	pos := s.posMap.Get(s.entities[i])
	pos.Vec = p
	return true
}

// SetState overwrites the motion state of active ball i. Mass is shared by
// all balls and is not taken from b.
func (s *Set) SetState(i int, b Ball) bool {
	if i < 0 || i >= s.count {
		slog.Debug("ball state index out of range", "index", i, "count", s.count)
		return false
	}
	if !finite(b.Position) || !finite(b.Velocity) || !finite(b.Acceleration) || math.IsNaN(b.Age) || math.IsInf(b.Age, 0) {
		slog.Debug("ball state not finite", "index", i, "ball", b)
		return false
	}
	pos, vel, acc, charge := s.mapper.Get(s.entities[i])
	pos.Vec = b.Position
	vel.Vec = b.Velocity
	acc.Vec = b.Acceleration
	charge.Age = b.Age
	return true
}

func finite(v r3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// SetMass sets the charge of every ball, active or not.
func (s *Set) SetMass(m float64) {
	s.mass = m
	for _, e := range s.entities {
		_, _, _, charge := s.mapper.Get(e)
		charge.Mass = m
	}
}

// Seed places every ball (active or not) according to mode and gives it a
// fresh velocity and acceleration drawn from the set's rng.
func (s *Set) Seed(mode SeedMode) {
	for _, e := range s.entities {
		pos, vel, acc, charge := s.mapper.Get(e)

		pos.Vec = r3.Vec{}
		if mode == SeedRandom {
			pos.Vec = r3.Vec{
				X: (s.rng.Float64()*2 - 1) * s.limits.X,
				Y: (s.rng.Float64()*2 - 1) * s.limits.Y,
				Z: (s.rng.Float64()*2 - 1) * s.limits.Z,
			}
		}
		vel.Vec = r3.Scale(s.motion.InitialSpeed, s.randomDirection())
		acc.Vec = r3.Scale(s.motion.MaxAccel, s.randomDirection())

		// Desync retargeting across balls
		charge.Age = s.rng.Float64() * s.motion.RetargetInterval
		charge.Mass = s.mass
	}
}

// Advance moves the active balls forward by dt seconds.
// In manual mode only the age timers run.
func (s *Set) Advance(dt float64) {
	for i := 0; i < s.count; i++ {
		pos, vel, acc, charge := s.mapper.Get(s.entities[i])

		charge.Age += dt
		if !s.auto {
			continue
		}

		if s.motion.RetargetInterval > 0 && charge.Age >= s.motion.RetargetInterval {
			charge.Age = 0
			acc.Vec = r3.Scale(s.motion.MaxAccel, s.randomDirection())
		}

		pos.Vec = r3.Add(pos.Vec, r3.Scale(dt, vel.Vec))
		vel.Vec = r3.Add(vel.Vec, r3.Scale(dt, acc.Vec))

		if speed := r3.Norm(vel.Vec); s.motion.MaxSpeed > 0 && speed > s.motion.MaxSpeed {
			vel.Vec = r3.Scale(s.motion.MaxSpeed/speed, vel.Vec)
		}

		pos.X, vel.X = bounce(pos.X, vel.X, s.limits.X)
		pos.Y, vel.Y = bounce(pos.Y, vel.Y, s.limits.Y)
		pos.Z, vel.Z = bounce(pos.Z, vel.Z, s.limits.Z)
	}
}

// Ball returns a copy of ball i, active or not.
func (s *Set) Ball(i int) Ball {
	pos, vel, acc, charge := s.mapper.Get(s.entities[i])
	return Ball{
		Position:     pos.Vec,
		Velocity:     vel.Vec,
		Acceleration: acc.Vec,
		Age:          charge.Age,
		Mass:         charge.Mass,
	}
}

// Snapshot copies the active balls in index order.
// The returned slice is reused by the next call.
func (s *Set) Snapshot() []Ball {
	s.snapshot = s.snapshot[:0]
	for i := 0; i < s.count; i++ {
		s.snapshot = append(s.snapshot, s.Ball(i))
	}
	return s.snapshot
}

// randomDirection returns a unit vector drawn from the set's rng.
func (s *Set) randomDirection() r3.Vec {
	for {
		v := r3.Vec{X: s.rng.NormFloat64(), Y: s.rng.NormFloat64(), Z: s.rng.NormFloat64()}
		if n := r3.Norm(v); n > 1e-9 {
			return r3.Scale(1/n, v)
		}
	}
}

// bounce reflects a coordinate off the [-limit, limit] walls.
func bounce(p, v, limit float64) (float64, float64) {
	switch {
	case p > limit:
		return limit, -math.Abs(v)
	case p < -limit:
		return -limit, math.Abs(v)
	}
	return p, v
}
