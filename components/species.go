package components

// DefaultMaxEnergyFactor is the growth cap, in multiples of the child
// energy, used when a species does not set one.
const DefaultMaxEnergyFactor = 20

// Species is a complete, validated parameter set for one species.
// Values of this type are produced by the config layer; the simulation
// trusts them without further range checks.
type Species struct {
	Name    string
	Kind    Kind
	Traits  Traits
	Forager Forager // herbivores and carnivores only
	Grazer  Grazer  // herbivores only
}

// Newborn returns the state of a fresh individual of this species.
func (s Species) Newborn() Organism {
	return Organism{
		Species: s.Name,
		Energy:  s.Traits.ChildEnergy,
	}
}
