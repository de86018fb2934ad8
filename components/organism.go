package components

// Kind identifies the trophic layer an organism belongs to.
type Kind uint8

const (
	KindPlant Kind = iota
	KindHerbivore
	KindCarnivore
)

// Kinds lists every trophic layer in energy-flow order.
var Kinds = [...]Kind{KindPlant, KindHerbivore, KindCarnivore}

// String returns the lowercase layer name.
func (k Kind) String() string {
	switch k {
	case KindPlant:
		return "plant"
	case KindHerbivore:
		return "herbivore"
	case KindCarnivore:
		return "carnivore"
	}
	return "unknown"
}

// Traits holds the static parameters an organism is born with.
// They never change after birth and are copied verbatim to offspring.
type Traits struct {
	EnergyNeed  float64 // energy consumed per tick
	Efficiency  float64 // 0..1, fraction of surplus converted into growth
	Resilience  float64 // 0..1, survival base under deficit
	Fertility   float64 // 0..1, success chance of one reproduction roll
	FertileAge  int     // minimum age in ticks before reproducing
	ChildEnergy float64 // starting energy of a newborn, also the price of a birth
	MaxEnergy   float64 // growth cap
}

// Organism is the mutable per-individual state.
type Organism struct {
	Species string
	Energy  float64
	Age     int
	Dead    bool

	// Budget is the signed net energy of the current tick. It is recomputed
	// before survival, reproduction and growth and never read across ticks.
	Budget float64
}

// Forager is carried by organisms that eat other organisms.
type Forager struct {
	Persistence float64 // 0..1, chance of attempting one more meal
	Diet        Diet
}

// Grazer holds the bite bounds of an herbivore, as fractions of a plant's energy.
type Grazer struct {
	BiteMin float64
	BiteMax float64
}

// Kind tags. Zero-size components used to tell populations apart in queries.
type (
	Plant     struct{}
	Herbivore struct{}
	Carnivore struct{}
)
