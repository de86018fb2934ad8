package ecosystem

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/simlac/components"
	"github.com/pthm-cable/simlac/systems"
	"github.com/pthm-cable/simlac/telemetry"
)

// entities returns the entities of one layer in world order. The slice is a
// snapshot: entities created or removed afterwards do not affect it.
func (eco *Ecosystem) entities(kind components.Kind) []ecs.Entity {
	var out []ecs.Entity
	switch kind {
	case components.KindPlant:
		query := eco.plantFilter.Query()
		for query.Next() {
			out = append(out, query.Entity())
		}
	case components.KindHerbivore:
		query := eco.herbFilter.Query()
		for query.Next() {
			out = append(out, query.Entity())
		}
	case components.KindCarnivore:
		query := eco.carnFilter.Query()
		for query.Next() {
			out = append(out, query.Entity())
		}
	}
	return out
}

// livingEnergy sums the energy of the living organisms of one layer.
func (eco *Ecosystem) livingEnergy(kind components.Kind) float64 {
	var total float64
	for _, e := range eco.entities(kind) {
		org := eco.orgMap.Get(e)
		if !org.Dead {
			total += org.Energy
		}
	}
	return total
}

// cleanupDead removes every organism flagged dead during the tick, layer by
// layer, and records its death.
func (eco *Ecosystem) cleanupDead() {
	for _, kind := range components.Kinds {
		var toRemove []ecs.Entity
		for _, e := range eco.entities(kind) {
			org := eco.orgMap.Get(e)
			if !org.Dead {
				continue
			}
			eco.collector.Record(telemetry.NewDeathEvent(eco.tick, kind, org.Species, org.Age))
			toRemove = append(toRemove, e)
		}

		for _, e := range toRemove {
			if eco.world.Alive(e) {
				eco.world.RemoveEntity(e)
			}
		}
		eco.perfCollector.Count(telemetry.PhaseLoad{Deaths: len(toRemove)})
	}
}

// updateAging advances every survivor by one tick.
func (eco *Ecosystem) updateAging() {
	query := eco.orgFilter.Query()
	for query.Next() {
		systems.Age(query.Get())
	}
}
