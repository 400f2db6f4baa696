package main

import (
	"github.com/pthm-cable/meadow/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Used when the base config leaves the value outside the bounds
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the succession weights and disturbance rate as a parameter set.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "local_weight", Path: "simulation.local_weight", Min: 0.0, Max: 1.0, Default: 0.80},
			{Name: "global_weight", Path: "simulation.global_weight", Min: 0.0, Max: 1.0, Default: 0.1995},
			{Name: "baseline", Path: "simulation.baseline", Min: 0.0, Max: 0.05, Default: 0.0005},
			{Name: "disturbance", Path: "simulation.disturbance", Min: 0.0, Max: 0.1, Default: 0.01},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg. Order must match Specs.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	// The three weights must not sum past 1
	if sum := clamped[0] + clamped[1] + clamped[2]; sum > 1 {
		for i := range 3 {
			clamped[i] /= sum
		}
	}
	cfg.Simulation.LocalWeight = clamped[0]
	cfg.Simulation.GlobalWeight = clamped[1]
	cfg.Simulation.Baseline = clamped[2]
	cfg.Simulation.Disturbance = clamped[3]
}

// ExtractFromConfig reads the current parameter values from cfg, falling back to
// the spec default for values outside the bounds.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	raw := []float64{
		cfg.Simulation.LocalWeight,
		cfg.Simulation.GlobalWeight,
		cfg.Simulation.Baseline,
		cfg.Simulation.Disturbance,
	}
	for i, spec := range pv.Specs {
		if raw[i] < spec.Min || raw[i] > spec.Max {
			raw[i] = spec.Default
		}
	}
	return raw
}
