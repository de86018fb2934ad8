package ecosystem

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/simlac/components"
	"github.com/pthm-cable/simlac/systems"
	"github.com/pthm-cable/simlac/telemetry"
)

// budgetFunc feeds one living organism and sets its budget for the tick.
type budgetFunc func(e ecs.Entity, org *components.Organism, tr *components.Traits)

// runPhase walks a snapshot of one layer taken at phase start. Organisms that
// die earlier in the phase are skipped; offspring join the world once the
// whole layer has acted.
func (eco *Ecosystem) runPhase(kind components.Kind, budget budgetFunc) {
	acted := 0
	for _, e := range eco.entities(kind) {
		org := eco.orgMap.Get(e)
		if org.Dead {
			continue
		}
		acted++
		tr := eco.traitsMap.Get(e)

		budget(e, org, tr)

		if !systems.SurvivalCheck(eco.rng, org, tr) {
			continue
		}
		eco.queueOffspring(kind, e, systems.ReproductionCheck(eco.rng, org, tr))
		systems.GrowOrShrink(org, tr)
	}
	eco.perfCollector.Count(telemetry.PhaseLoad{Acted: acted, Births: len(eco.births)})
	eco.materializeBirths()
}

// updatePlants shares the solar input among plants in proportion to the
// energy they held when the phase started.
func (eco *Ecosystem) updatePlants() {
	total := eco.livingEnergy(components.KindPlant)

	eco.runPhase(components.KindPlant, func(_ ecs.Entity, org *components.Organism, tr *components.Traits) {
		captured := systems.PlantBudget(org, tr, eco.solarEnergy, total)
		eco.collector.Record(telemetry.NewPhotosynthesisEvent(eco.tick, org.Species, captured))
	})
}

// updateHerbivores lets each herbivore graze on the plants in its diet,
// possibly biting the same plant several times.
func (eco *Ecosystem) updateHerbivores() {
	plants := eco.entities(components.KindPlant)

	eco.runPhase(components.KindHerbivore, func(e ecs.Entity, org *components.Organism, tr *components.Traits) {
		forager := eco.foragerMap.Get(e)
		grazer := eco.grazerMap.Get(e)

		pool := eco.eligible(plants, func(prey *components.Organism) bool {
			return forager.Diet.Contains(prey.Species)
		})
		meals := systems.MealCount(eco.rng, forager.Persistence, len(pool))

		targets := systems.SelectWithReplacement(eco.rng, pool, meals)
		eco.perfCollector.Count(telemetry.PhaseLoad{Meals: len(targets)})

		var eaten float64
		for _, target := range targets {
			plant := eco.orgMap.Get(target)
			bite := systems.Graze(eco.rng, grazer, plant)
			eaten += bite
			eco.collector.Record(telemetry.NewBiteEvent(eco.tick, org.Species, plant.Species, bite))
		}

		systems.ComputeBudget(org, tr, eaten)
	})
}

// updateCarnivores lets each carnivore hunt herbivores in its diet that are
// no heavier than itself. Each prey can be devoured only once.
func (eco *Ecosystem) updateCarnivores() {
	herbivores := eco.entities(components.KindHerbivore)

	eco.runPhase(components.KindCarnivore, func(e ecs.Entity, org *components.Organism, tr *components.Traits) {
		forager := eco.foragerMap.Get(e)

		pool := eco.eligible(herbivores, func(prey *components.Organism) bool {
			return forager.Diet.Contains(prey.Species) && prey.Energy <= org.Energy
		})
		meals := systems.MealCount(eco.rng, forager.Persistence, len(pool))

		targets := systems.SelectWithoutReplacement(eco.rng, pool, meals)
		eco.perfCollector.Count(telemetry.PhaseLoad{Meals: len(targets)})

		var eaten float64
		for _, target := range targets {
			prey := eco.orgMap.Get(target)
			devoured := systems.Devour(prey)
			eaten += devoured
			eco.collector.Record(telemetry.NewKillEvent(eco.tick, org.Species, prey.Species, devoured))
		}

		systems.ComputeBudget(org, tr, eaten)
	})
}

// eligible filters candidates down to the living ones accepted by keep.
func (eco *Ecosystem) eligible(candidates []ecs.Entity, keep func(*components.Organism) bool) []ecs.Entity {
	var pool []ecs.Entity
	for _, e := range candidates {
		prey := eco.orgMap.Get(e)
		if !prey.Dead && keep(prey) {
			pool = append(pool, e)
		}
	}
	return pool
}
