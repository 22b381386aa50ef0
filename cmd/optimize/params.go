package main

import (
	"github.com/pthm-cable/metaballs/config"
)

// ParamSpec is one tunable config value and its search range.
type ParamSpec struct {
	Name    string
	Min     float64
	Max     float64
	Default float64

	// field points at the value inside a config
	field func(*config.Config) *float64
}

// ParamVector is the ordered set of tuned parameters. The optimizer works on
// vectors normalized to [0,1] per parameter.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector returns the field level and the auto-fly motion parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "level", Min: 10, Max: 120, Default: 40,
				field: func(c *config.Config) *float64 { return &c.Field.Level }},
			{Name: "max_speed", Min: 0.1, Max: 1.2, Default: 0.6,
				field: func(c *config.Config) *float64 { return &c.Motion.MaxSpeed }},
			{Name: "max_accel", Min: 0.05, Max: 1.0, Default: 0.35,
				field: func(c *config.Config) *float64 { return &c.Motion.MaxAccel }},
			{Name: "retarget_interval", Min: 0.3, Max: 4.0, Default: 1.5,
				field: func(c *config.Config) *float64 { return &c.Motion.RetargetInterval }},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values.
func (pv *ParamVector) DefaultVector() []float64 {
	return pv.each(func(_ int, s ParamSpec) float64 { return s.Default })
}

// Normalize maps raw values onto [0,1] per parameter range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	return pv.each(func(i int, s ParamSpec) float64 { return (raw[i] - s.Min) / (s.Max - s.Min) })
}

// Denormalize maps [0,1] values back to raw values.
func (pv *ParamVector) Denormalize(unit []float64) []float64 {
	return pv.each(func(i int, s ParamSpec) float64 { return s.Min + unit[i]*(s.Max-s.Min) })
}

// Clamp limits raw values to their ranges. CMA-ES samples outside [0,1].
func (pv *ParamVector) Clamp(v []float64) []float64 {
	return pv.each(func(i int, s ParamSpec) float64 { return min(max(v[i], s.Min), s.Max) })
}

// ApplyToConfig writes clamped values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		*pv.Specs[i].field(cfg) = v
	}
}

// ExtractFromConfig reads the current values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return pv.each(func(_ int, s ParamSpec) float64 { return *s.field(cfg) })
}

func (pv *ParamVector) each(f func(i int, s ParamSpec) float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, s := range pv.Specs {
		out[i] = f(i, s)
	}
	return out
}
