package config

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/simlac/components"
)

// FieldError reports one invalid or missing species parameter.
type FieldError struct {
	Kind    components.Kind
	Species string
	Field   string
	Reason  string
}

func (e *FieldError) Error() string {
	name := e.Species
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("%s %s: %s %s", e.Kind, name, e.Field, e.Reason)
}

// Population is a validated species together with its founding individuals.
type Population struct {
	Species components.Species
	Count   int
	Energy  float64 // starting energy of each founder
}

// speciesCheck accumulates field errors for one species entry.
type speciesCheck struct {
	kind components.Kind
	name string
	errs []error
}

func (c *speciesCheck) fail(field, reason string) {
	c.errs = append(c.errs, &FieldError{Kind: c.kind, Species: c.name, Field: field, Reason: reason})
}

func (c *speciesCheck) required(field string, v *float64) float64 {
	if v == nil {
		c.fail(field, "is required")
		return 0
	}
	return *v
}

func (c *speciesCheck) unit(field string, v *float64) float64 {
	x := c.required(field, v)
	if v != nil && (x < 0 || x > 1) {
		c.fail(field, fmt.Sprintf("must be in [0, 1], got %g", x))
	}
	return x
}

func (c *speciesCheck) positive(field string, v *float64) float64 {
	x := c.required(field, v)
	if v != nil && x <= 0 {
		c.fail(field, fmt.Sprintf("must be > 0, got %g", x))
	}
	return x
}

func (c *speciesCheck) unused(field string, set bool) {
	if set {
		c.fail(field, fmt.Sprintf("does not apply to a %s", c.kind))
	}
}

// Species validates the entry as a species of the given kind.
// All problems are reported at once, joined with errors.Join.
func (sc *SpeciesConfig) Species(kind components.Kind) (components.Species, error) {
	c := &speciesCheck{kind: kind, name: sc.Name}
	if sc.Name == "" {
		c.fail("name", "is required")
	}

	var tr components.Traits
	tr.EnergyNeed = c.positive("energy_need", sc.EnergyNeed)
	tr.Efficiency = c.unit("efficiency", sc.Efficiency)
	tr.Resilience = c.unit("resilience", sc.Resilience)
	tr.Fertility = c.unit("fertility", sc.Fertility)
	tr.ChildEnergy = c.positive("child_energy", sc.ChildEnergy)

	if sc.FertileAge == nil {
		c.fail("fertile_age", "is required")
	} else if *sc.FertileAge < 0 {
		c.fail("fertile_age", fmt.Sprintf("must be >= 0, got %d", *sc.FertileAge))
	} else {
		tr.FertileAge = *sc.FertileAge
	}

	if sc.MaxEnergy != nil {
		tr.MaxEnergy = c.positive("max_energy", sc.MaxEnergy)
	} else {
		tr.MaxEnergy = components.DefaultMaxEnergyFactor * tr.ChildEnergy
	}

	sp := components.Species{Name: sc.Name, Kind: kind, Traits: tr}

	switch kind {
	case components.KindPlant:
		c.unused("persistence", sc.Persistence != nil)
		c.unused("diet", len(sc.Diet) > 0)
		c.unused("bite_min", sc.BiteMin != nil)
		c.unused("bite_max", sc.BiteMax != nil)
	case components.KindHerbivore, components.KindCarnivore:
		sp.Forager = components.Forager{
			Persistence: c.unit("persistence", sc.Persistence),
			Diet:        c.diet(sc.Diet),
		}
		if kind == components.KindCarnivore {
			c.unused("bite_min", sc.BiteMin != nil)
			c.unused("bite_max", sc.BiteMax != nil)
			break
		}
		sp.Grazer = components.Grazer{
			BiteMin: c.unit("bite_min", sc.BiteMin),
			BiteMax: c.unit("bite_max", sc.BiteMax),
		}
		if sc.BiteMin != nil && sc.BiteMax != nil && sp.Grazer.BiteMin > sp.Grazer.BiteMax {
			c.fail("bite_min", fmt.Sprintf("must not exceed bite_max (%g > %g)", sp.Grazer.BiteMin, sp.Grazer.BiteMax))
		}
	default:
		c.fail("kind", "is unknown")
	}

	if err := errors.Join(c.errs...); err != nil {
		return components.Species{}, err
	}
	return sp, nil
}

func (c *speciesCheck) diet(names []string) components.Diet {
	if len(names) == 0 {
		c.fail("diet", "must name at least one species")
		return components.Diet{}
	}
	for _, n := range names {
		if n == "" {
			c.fail("diet", "contains an empty name")
		}
	}
	return components.NewDiet(names...)
}

// Population validates the entry and resolves its founding population.
func (sc *SpeciesConfig) Population(kind components.Kind) (Population, error) {
	sp, err := sc.Species(kind)
	var errs []error
	if err != nil {
		errs = append(errs, err)
	}

	c := &speciesCheck{kind: kind, name: sc.Name}
	if sc.Count < 0 {
		c.fail("count", fmt.Sprintf("must be >= 0, got %d", sc.Count))
	}
	energy := sp.Traits.ChildEnergy
	if sc.InitialEnergy != nil {
		energy = c.positive("initial_energy", sc.InitialEnergy)
	}
	errs = append(errs, c.errs...)

	if err := errors.Join(errs...); err != nil {
		return Population{}, err
	}
	return Population{Species: sp, Count: sc.Count, Energy: energy}, nil
}

// Layer returns the species entries configured for a kind.
func (c *Config) Layer(kind components.Kind) []SpeciesConfig {
	switch kind {
	case components.KindPlant:
		return c.Plants
	case components.KindHerbivore:
		return c.Herbivores
	case components.KindCarnivore:
		return c.Carnivores
	}
	return nil
}

// preyOf returns the layer a kind feeds on.
func preyOf(kind components.Kind) (components.Kind, bool) {
	switch kind {
	case components.KindHerbivore:
		return components.KindPlant, true
	case components.KindCarnivore:
		return components.KindHerbivore, true
	}
	return 0, false
}

// Populations validates every species and returns the founding populations
// in layer order: plants, herbivores, carnivores.
func (c *Config) Populations() ([]Population, error) {
	var (
		out  []Population
		errs []error
	)

	if c.Lake.SolarEnergy < 0 {
		errs = append(errs, fmt.Errorf("lake: solar_energy must be >= 0, got %g", c.Lake.SolarEnergy))
	}

	names := make(map[components.Kind]map[string]bool, len(components.Kinds))
	for _, kind := range components.Kinds {
		names[kind] = make(map[string]bool)
		layer := c.Layer(kind)
		for i := range layer {
			sc := &layer[i]
			if sc.Name != "" && names[kind][sc.Name] {
				errs = append(errs, &FieldError{Kind: kind, Species: sc.Name, Field: "name", Reason: "is not unique"})
			}
			names[kind][sc.Name] = true

			pop, err := sc.Population(kind)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			out = append(out, pop)
		}
	}

	for _, kind := range components.Kinds {
		prey, ok := preyOf(kind)
		if !ok {
			continue
		}
		for _, sc := range c.Layer(kind) {
			for _, food := range sc.Diet {
				if food != "" && !names[prey][food] {
					errs = append(errs, &FieldError{
						Kind:    kind,
						Species: sc.Name,
						Field:   "diet",
						Reason:  fmt.Sprintf("names unknown %s species %q", prey, food),
					})
				}
			}
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	_, err := c.Populations()
	if err != nil {
		return err
	}
	if c.Telemetry.StatsWindow < 0 {
		return fmt.Errorf("telemetry: stats_window must be >= 0, got %d", c.Telemetry.StatsWindow)
	}
	return nil
}
