package systems

import "github.com/pthm-cable/simlac/components"

// SolarShare returns the part of the solar input a plant captures: the input
// is split in proportion to standing energy. When no plant holds any energy
// the share is 0, so every plant falls back to a budget of -EnergyNeed.
func SolarShare(solar, energy, totalPlantEnergy float64) float64 {
	if totalPlantEnergy <= 0 {
		return 0
	}
	return solar * (energy / totalPlantEnergy)
}

// PlantBudget computes a plant's budget for the tick.
// totalPlantEnergy must be summed over the living plants before any plant acts.
func PlantBudget(org *components.Organism, tr *components.Traits, solar, totalPlantEnergy float64) float64 {
	share := SolarShare(solar, org.Energy, totalPlantEnergy)
	ComputeBudget(org, tr, share)
	return share
}

// Consume removes eaten energy from a plant, killing it if the plant
// goes below zero.
func Consume(plant *components.Organism, amount float64) {
	plant.Energy -= amount
	if plant.Energy < 0 {
		plant.Dead = true
	}
}
