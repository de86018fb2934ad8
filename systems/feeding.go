package systems

import "github.com/pthm-cable/simlac/components"

// MealCount rolls how many meals a forager attempts this tick: every draw at
// or below Persistence adds a meal and rolls again. limit is the number of
// food items available; rolling stops there because further meals could not
// change the outcome, which also bounds the loop when Persistence is 1.
func MealCount(rng Rand, persistence float64, limit int) int {
	meals := 0
	for meals < limit && rng.Float64() <= persistence {
		meals++
	}
	return meals
}

// BiteFraction draws the fraction of a plant's energy eaten in one bite,
// uniform in [BiteMin, BiteMax].
func BiteFraction(rng Rand, g *components.Grazer) float64 {
	return g.BiteMin + rng.Float64()*(g.BiteMax-g.BiteMin)
}

// Graze takes one bite out of a plant and returns the energy eaten.
// The bite is sized against the plant's energy at the time of the bite.
func Graze(rng Rand, g *components.Grazer, plant *components.Organism) float64 {
	eaten := BiteFraction(rng, g) * plant.Energy
	Consume(plant, eaten)
	return eaten
}

// Devour kills a prey outright and returns all of its energy.
func Devour(prey *components.Organism) float64 {
	prey.Dead = true
	return prey.Energy
}
