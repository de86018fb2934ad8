package telemetry

import "github.com/pthm-cable/simlac/components"

// Census is the population state sampled when a window is flushed.
type Census struct {
	Summary  Summary
	Energies [len(components.Kinds)][]float64 // per-individual energy of every living organism, by kind
}

// Collector accumulates events within tick windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int

	// Current window tracking
	windowStartTick int

	// Event counters for current window
	births         [len(components.Kinds)]int
	deaths         [len(components.Kinds)]int
	solarCaptured  float64
	bites          int
	energyBitten   float64
	kills          int
	energyDevoured float64

	ledger *SpeciesLedger
}

// NewCollector creates a new stats collector.
// windowTicks: how many ticks each stats window lasts.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		windowDurationTicks: windowTicks,
		ledger:              NewSpeciesLedger(),
	}
}

// Record folds one event into the current window.
func (c *Collector) Record(ev Event) {
	switch ev.Type {
	case EventBirth:
		c.births[ev.Kind]++
	case EventDeath:
		c.deaths[ev.Kind]++
	case EventPhotosynthesis:
		c.solarCaptured += ev.Amount
	case EventBite:
		c.bites++
		c.energyBitten += ev.Amount
	case EventKill:
		c.kills++
		c.energyDevoured += ev.Amount
	}
	c.ledger.Record(ev)
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces the window's stats and per-species rows, then resets
// counters for the next window.
func (c *Collector) Flush(currentTick int, census Census) (WindowStats, []SpeciesStats) {
	plants := census.Summary.Layer(components.KindPlant)
	herbivores := census.Summary.Layer(components.KindHerbivore)
	carnivores := census.Summary.Layer(components.KindCarnivore)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,

		PlantCount:     plants.Count(),
		HerbivoreCount: herbivores.Count(),
		CarnivoreCount: carnivores.Count(),

		PlantSpecies:     len(plants.Species),
		HerbivoreSpecies: len(herbivores.Species),
		CarnivoreSpecies: len(carnivores.Species),

		PlantBirths:     c.births[components.KindPlant],
		HerbivoreBirths: c.births[components.KindHerbivore],
		CarnivoreBirths: c.births[components.KindCarnivore],
		PlantDeaths:     c.deaths[components.KindPlant],
		HerbivoreDeaths: c.deaths[components.KindHerbivore],
		CarnivoreDeaths: c.deaths[components.KindCarnivore],

		SolarCaptured:  c.solarCaptured,
		Bites:          c.bites,
		EnergyBitten:   c.energyBitten,
		Kills:          c.kills,
		EnergyDevoured: c.energyDevoured,

		PlantEnergyTotal:     plants.Energy(),
		HerbivoreEnergyTotal: herbivores.Energy(),
		CarnivoreEnergyTotal: carnivores.Energy(),
	}

	stats.PlantEnergyMean, stats.PlantEnergyP10, stats.PlantEnergyP50, stats.PlantEnergyP90 =
		ComputeEnergyStats(census.Energies[components.KindPlant])
	stats.HerbivoreEnergyMean, stats.HerbivoreEnergyP10, stats.HerbivoreEnergyP50, stats.HerbivoreEnergyP90 =
		ComputeEnergyStats(census.Energies[components.KindHerbivore])
	stats.CarnivoreEnergyMean, stats.CarnivoreEnergyP10, stats.CarnivoreEnergyP50, stats.CarnivoreEnergyP90 =
		ComputeEnergyStats(census.Energies[components.KindCarnivore])

	species := c.ledger.Flush(currentTick, census.Summary)

	// Reset for next window
	c.windowStartTick = currentTick
	c.births = [len(components.Kinds)]int{}
	c.deaths = [len(components.Kinds)]int{}
	c.solarCaptured = 0
	c.bites = 0
	c.energyBitten = 0
	c.kills = 0
	c.energyDevoured = 0

	return stats, species
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int {
	return c.windowDurationTicks
}
