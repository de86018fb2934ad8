package systems

import (
	"math"

	"github.com/pthm-cable/simlac/components"
)

// DeficitUnits returns the whole energy units missing for a negative budget.
// Any fraction counts as a full unit: -1.02 is a deficit of 2.
func DeficitUnits(budget float64) int {
	if budget >= 0 {
		return 0
	}
	return int(math.Ceil(-budget))
}

// SurvivalChance returns the probability of surviving a tick with the given
// budget: 1 without deficit, resilience^deficitUnits otherwise.
func SurvivalChance(budget, resilience float64) float64 {
	units := DeficitUnits(budget)
	if units == 0 {
		return 1
	}
	return math.Pow(resilience, float64(units))
}

// SurvivalCheck rolls once against SurvivalChance and flags the organism dead
// on failure. Returns true when the organism survives.
// A budget >= 0 survives without consuming a draw.
func SurvivalCheck(rng Rand, org *components.Organism, tr *components.Traits) bool {
	if org.Dead {
		return false
	}
	if org.Budget >= 0 {
		return true
	}

	chance := SurvivalChance(org.Budget, tr.Resilience)
	if rng.Float64() >= chance {
		org.Dead = true
		return false
	}
	return true
}

// ReproductionCheck returns how many children the organism produces this tick.
// Each birth charges ChildEnergy against both the budget and the remaining
// rolls; a failed roll consumes one roll for free. Rolling stops once the
// organism could no longer pay for a child out of energy plus budget.
// The caller materializes the children.
func ReproductionCheck(rng Rand, org *components.Organism, tr *components.Traits) int {
	if org.Dead || org.Budget < 0 || org.Age < tr.FertileAge {
		return 0
	}

	children := 0
	rolls := int(org.Budget) // whole units only: 1.7 gives one roll

	for rolls > 0 && org.Energy+org.Budget >= tr.ChildEnergy {
		if rng.Float64() < tr.Fertility {
			children++
			org.Budget -= tr.ChildEnergy
			rolls = int(float64(rolls) - tr.ChildEnergy)
		} else {
			rolls--
		}
	}
	return children
}

// GrowOrShrink applies the remaining budget to the organism's energy.
// Surplus is converted at the organism's efficiency and capped at MaxEnergy;
// a deficit is subtracted in full and kills the organism below zero.
func GrowOrShrink(org *components.Organism, tr *components.Traits) {
	if org.Dead {
		return
	}

	if org.Budget > 0 {
		org.Energy = math.Min(org.Energy+tr.Efficiency*org.Budget, tr.MaxEnergy)
	} else {
		org.Energy += org.Budget
	}

	if org.Energy < 0 {
		org.Dead = true
	}
}

// Age advances the organism by one tick.
func Age(org *components.Organism) {
	org.Age++
}

// ComputeBudget sets the tick budget from the energy received this tick.
func ComputeBudget(org *components.Organism, tr *components.Traits, received float64) {
	org.Budget = received - tr.EnergyNeed
}
