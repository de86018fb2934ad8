// Package main provides CMA-ES optimization for lake species parameters.
package main

import (
	"fmt"

	"github.com/pthm-cable/simlac/components"
	"github.com/pthm-cable/simlac/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string // Human-readable name, "<species>.<field>"
	Kind    components.Kind
	Index   int     // position of the species in its layer
	Field   string  // config key of the trait
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Value in the base config
}

// tunableField is a species trait the optimizer may move.
type tunableField struct {
	name     string
	min, max float64
	foragers bool // only herbivores and carnivores carry it
	ref      func(sc *config.SpeciesConfig) **float64
}

var tunableFields = []tunableField{
	{name: "fertility", min: 0.02, max: 0.9, ref: func(sc *config.SpeciesConfig) **float64 { return &sc.Fertility }},
	{name: "resilience", min: 0.05, max: 0.95, ref: func(sc *config.SpeciesConfig) **float64 { return &sc.Resilience }},
	{name: "efficiency", min: 0.1, max: 1.0, ref: func(sc *config.SpeciesConfig) **float64 { return &sc.Efficiency }},
	{name: "persistence", min: 0.05, max: 0.95, foragers: true, ref: func(sc *config.SpeciesConfig) **float64 { return &sc.Persistence }},
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates one parameter per tunable trait of every species in
// the base config. Solar input and energy sizes stay fixed.
func NewParamVector(base *config.Config) *ParamVector {
	pv := &ParamVector{}
	for _, kind := range components.Kinds {
		layer := base.Layer(kind)
		for i := range layer {
			sc := &layer[i]
			for _, f := range tunableFields {
				if f.foragers && kind == components.KindPlant {
					continue
				}
				def := (f.min + f.max) / 2
				if p := *f.ref(sc); p != nil {
					def = clamp(*p, f.min, f.max)
				}
				pv.Specs = append(pv.Specs, ParamSpec{
					Name:    fmt.Sprintf("%s.%s", sc.Name, f.name),
					Kind:    kind,
					Index:   i,
					Field:   f.name,
					Min:     f.min,
					Max:     f.max,
					Default: def,
				})
			}
		}
	}
	return pv
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
		clamped[i] = clamp(v[i], spec.Min, spec.Max)
	}
	return clamped
}

// ApplyToConfig writes parameter values into the species entries of cfg.
// cfg must have the same species layout as the config the vector was built from.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	for i, spec := range pv.Specs {
		layer := cfg.Layer(spec.Kind)
		if spec.Index >= len(layer) {
			continue
		}
		for _, f := range tunableFields {
			if f.name == spec.Field {
				*f.ref(&layer[spec.Index]) = config.Ptr(clamped[i])
				break
			}
		}
	}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
