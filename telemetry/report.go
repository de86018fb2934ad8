package telemetry

import (
	"fmt"
	"io"

	"github.com/pthm-cable/simlac/components"
)

// SpeciesSummary aggregates the living members of one species.
type SpeciesSummary struct {
	Name   string
	Count  int
	Energy float64 // total energy held by the species
}

// LayerSummary aggregates one trophic layer. Species lists only species with
// at least one living member, sorted by name.
type LayerSummary struct {
	Kind    components.Kind
	Species []SpeciesSummary
}

// Count returns the number of living individuals in the layer.
func (l LayerSummary) Count() int {
	n := 0
	for _, sp := range l.Species {
		n += sp.Count
	}
	return n
}

// Energy returns the total energy held by the layer.
func (l LayerSummary) Energy() float64 {
	var e float64
	for _, sp := range l.Species {
		e += sp.Energy
	}
	return e
}

// Summary is a read-only census of the lake at one tick.
type Summary struct {
	Tick   int
	Layers [len(components.Kinds)]LayerSummary
}

// Layer returns the summary for one kind.
func (s Summary) Layer(kind components.Kind) LayerSummary {
	if int(kind) >= len(s.Layers) {
		return LayerSummary{Kind: kind}
	}
	return s.Layers[kind]
}

// WriteReport prints the census: for each layer the number of remaining
// species, then one line per species with its individual count and total
// energy.
func WriteReport(w io.Writer, s Summary) error {
	for _, kind := range components.Kinds {
		layer := s.Layer(kind)
		if _, err := fmt.Fprintf(w, "%d %s species remain.\n", len(layer.Species), kind); err != nil {
			return err
		}
		for _, sp := range layer.Species {
			if _, err := fmt.Fprintf(w, "%s: %d individuals holding %.2f energy units in total.\n", sp.Name, sp.Count, sp.Energy); err != nil {
				return err
			}
		}
	}
	return nil
}
