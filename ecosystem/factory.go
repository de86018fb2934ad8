package ecosystem

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/simlac/components"
	"github.com/pthm-cable/simlac/telemetry"
)

// birth is an offspring waiting to be added to the world.
type birth struct {
	kind    components.Kind
	org     components.Organism
	traits  components.Traits
	forager components.Forager
	grazer  components.Grazer
}

// Spawn adds one organism of the given species with the given energy at age 0.
// This is the construction path for founders; offspring are added by the
// tick phases.
func (eco *Ecosystem) Spawn(sp components.Species, energy float64) ecs.Entity {
	org := sp.Newborn()
	org.Energy = energy
	return eco.createOrganism(sp.Kind, org, sp.Traits, sp.Forager, sp.Grazer)
}

func (eco *Ecosystem) createOrganism(kind components.Kind, org components.Organism, tr components.Traits, fo components.Forager, gr components.Grazer) ecs.Entity {
	switch kind {
	case components.KindPlant:
		return eco.plantMapper.NewEntity(&org, &tr, &components.Plant{})
	case components.KindHerbivore:
		return eco.herbMapper.NewEntity(&org, &tr, &fo, &gr, &components.Herbivore{})
	default:
		return eco.carnMapper.NewEntity(&org, &tr, &fo, &components.Carnivore{})
	}
}

// queueOffspring records n children of the parent entity. Children copy every
// static parameter of the parent and start at age 0 with the child energy.
func (eco *Ecosystem) queueOffspring(kind components.Kind, parent ecs.Entity, n int) {
	if n <= 0 {
		return
	}

	org := eco.orgMap.Get(parent)
	b := birth{
		kind:   kind,
		traits: *eco.traitsMap.Get(parent),
	}
	b.org = components.Organism{Species: org.Species, Energy: b.traits.ChildEnergy}
	if kind != components.KindPlant {
		b.forager = *eco.foragerMap.Get(parent)
	}
	if kind == components.KindHerbivore {
		b.grazer = *eco.grazerMap.Get(parent)
	}

	for i := 0; i < n; i++ {
		eco.births = append(eco.births, b)
	}
}

// materializeBirths adds queued offspring to the world. Must be called
// outside of any query iteration.
func (eco *Ecosystem) materializeBirths() {
	for _, b := range eco.births {
		eco.createOrganism(b.kind, b.org, b.traits, b.forager, b.grazer)
		eco.collector.Record(telemetry.NewBirthEvent(eco.tick, b.kind, b.org.Species))
	}
	eco.births = eco.births[:0]
}
