package ecosystem

import (
	"sort"

	"github.com/pthm-cable/simlac/components"
	"github.com/pthm-cable/simlac/telemetry"
)

// Summarize returns a census of the living organisms, grouped by layer and
// species. Species are sorted by name; extinct species are omitted.
func (eco *Ecosystem) Summarize() telemetry.Summary {
	return eco.census().Summary
}

// Counts returns the number of living organisms per layer, indexed by kind.
func (eco *Ecosystem) Counts() [len(components.Kinds)]int {
	var counts [len(components.Kinds)]int
	for _, kind := range components.Kinds {
		counts[kind] = eco.living(kind)
	}
	return counts
}

// Extinct reports whether a layer has no living organism left.
func (eco *Ecosystem) Extinct(kind components.Kind) bool {
	return eco.living(kind) == 0
}

// living counts the organisms of one layer not yet flagged dead.
func (eco *Ecosystem) living(kind components.Kind) int {
	n := 0
	for _, e := range eco.entities(kind) {
		if !eco.orgMap.Get(e).Dead {
			n++
		}
	}
	return n
}

// Organisms returns copies of the organism state of one layer, in world order.
func (eco *Ecosystem) Organisms(kind components.Kind) []components.Organism {
	entities := eco.entities(kind)
	out := make([]components.Organism, 0, len(entities))
	for _, e := range entities {
		out = append(out, *eco.orgMap.Get(e))
	}
	return out
}

// census samples the summary and the per-individual energies.
func (eco *Ecosystem) census() telemetry.Census {
	c := telemetry.Census{Summary: telemetry.Summary{Tick: eco.tick}}

	for _, kind := range components.Kinds {
		bySpecies := make(map[string]*telemetry.SpeciesSummary)
		for _, org := range eco.Organisms(kind) {
			if org.Dead {
				continue
			}
			sp, ok := bySpecies[org.Species]
			if !ok {
				sp = &telemetry.SpeciesSummary{Name: org.Species}
				bySpecies[org.Species] = sp
			}
			sp.Count++
			sp.Energy += org.Energy
			c.Energies[kind] = append(c.Energies[kind], org.Energy)
		}

		layer := telemetry.LayerSummary{Kind: kind}
		for _, sp := range bySpecies {
			layer.Species = append(layer.Species, *sp)
		}
		sort.Slice(layer.Species, func(i, j int) bool {
			return layer.Species[i].Name < layer.Species[j].Name
		})
		c.Summary.Layers[kind] = layer
	}

	return c
}
