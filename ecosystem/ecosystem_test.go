package ecosystem

import (
	"bytes"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/pthm-cable/simlac/components"
	"github.com/pthm-cable/simlac/config"
	"github.com/pthm-cable/simlac/telemetry"
)

func plantSpecies(name string, tr components.Traits) components.Species {
	return components.Species{Name: name, Kind: components.KindPlant, Traits: tr}
}

func herbivoreSpecies(name string, tr components.Traits, persistence float64, diet ...string) components.Species {
	return components.Species{
		Name:    name,
		Kind:    components.KindHerbivore,
		Traits:  tr,
		Forager: components.Forager{Persistence: persistence, Diet: components.NewDiet(diet...)},
		Grazer:  components.Grazer{BiteMin: 0.1, BiteMax: 0.2},
	}
}

func carnivoreSpecies(name string, tr components.Traits, persistence float64, diet ...string) components.Species {
	return components.Species{
		Name:    name,
		Kind:    components.KindCarnivore,
		Traits:  tr,
		Forager: components.Forager{Persistence: persistence, Diet: components.NewDiet(diet...)},
	}
}

// windowRecorder captures every flushed window of a one-tick stats window.
type windowRecorder struct {
	windows []telemetry.WindowStats
}

func (r *windowRecorder) options(solar float64) Options {
	return Options{
		Seed:          1,
		SolarEnergy:   solar,
		StatsWindow:   1,
		StatsCallback: func(s telemetry.WindowStats) { r.windows = append(r.windows, s) },
	}
}

func (r *windowRecorder) last(t *testing.T) telemetry.WindowStats {
	t.Helper()
	if len(r.windows) == 0 {
		t.Fatal("no stats window flushed")
	}
	return r.windows[len(r.windows)-1]
}

// A sole plant takes the whole solar input and grows to its cap.
func TestTick_SolePlantGrowsToCap(t *testing.T) {
	eco := New(Options{Seed: 1, SolarEnergy: 50})
	eco.Spawn(plantSpecies("algae", components.Traits{
		EnergyNeed:  5,
		Efficiency:  1,
		Resilience:  0.5,
		FertileAge:  100,
		ChildEnergy: 5,
		MaxEnergy:   120,
	}), 100)

	eco.Tick()

	plants := eco.Organisms(components.KindPlant)
	if len(plants) != 1 {
		t.Fatalf("plants = %d, want 1", len(plants))
	}
	if plants[0].Energy != 120 {
		t.Errorf("energy = %v, want 120", plants[0].Energy)
	}
	if math.IsNaN(plants[0].Energy) {
		t.Error("energy is NaN")
	}
}

// With no standing plant energy every plant falls back to a budget of -need.
func TestTick_ZeroPlantEnergy(t *testing.T) {
	rec := &windowRecorder{}
	eco := New(rec.options(50))
	sp := plantSpecies("algae", components.Traits{
		EnergyNeed:  5,
		Efficiency:  1,
		Resilience:  1,
		ChildEnergy: 5,
		MaxEnergy:   100,
	})
	for i := 0; i < 3; i++ {
		eco.Spawn(sp, 0)
	}

	eco.Tick()

	// Resilience 1 survives the roll, then the deficit drives energy below zero.
	if n := eco.Counts()[components.KindPlant]; n != 0 {
		t.Errorf("plants = %d, want 0", n)
	}
	stats := rec.last(t)
	if stats.SolarCaptured != 0 {
		t.Errorf("solar captured = %v, want 0", stats.SolarCaptured)
	}
	if stats.PlantDeaths != 3 {
		t.Errorf("plant deaths = %d, want 3", stats.PlantDeaths)
	}
	if !eco.Extinct(components.KindPlant) {
		t.Error("plant layer should be extinct")
	}
}

var (
	minnowTraits = components.Traits{
		EnergyNeed:  0.5,
		Efficiency:  1,
		Resilience:  1,
		FertileAge:  100,
		ChildEnergy: 1,
		MaxEnergy:   100,
	}
	pikeTraits = components.Traits{
		EnergyNeed:  1,
		Efficiency:  1,
		Resilience:  1,
		FertileAge:  100,
		ChildEnergy: 1,
		MaxEnergy:   100,
	}
)

// A carnivore cannot eat an herbivore holding more energy than itself.
func TestTick_PreyLargerThanCarnivore(t *testing.T) {
	rec := &windowRecorder{}
	eco := New(rec.options(0))
	eco.Spawn(herbivoreSpecies("minnow", minnowTraits, 1, "algae"), 15)
	eco.Spawn(carnivoreSpecies("pike", pikeTraits, 1, "minnow"), 10)

	eco.Tick()

	if n := eco.Counts()[components.KindHerbivore]; n != 1 {
		t.Fatalf("herbivores = %d, want 1", n)
	}
	if kills := rec.last(t).Kills; kills != 0 {
		t.Errorf("kills = %d, want 0", kills)
	}
	pike := eco.Organisms(components.KindCarnivore)[0]
	if pike.Energy != 9 {
		t.Errorf("carnivore energy = %v, want 10 - need = 9", pike.Energy)
	}
}

func TestTick_CarnivoreDevoursPrey(t *testing.T) {
	rec := &windowRecorder{}
	eco := New(rec.options(0))
	eco.Spawn(herbivoreSpecies("minnow", minnowTraits, 1, "algae"), 8)
	eco.Spawn(carnivoreSpecies("pike", pikeTraits, 1, "minnow"), 10)

	eco.Tick()

	if n := eco.Counts()[components.KindHerbivore]; n != 0 {
		t.Errorf("herbivores = %d, want 0", n)
	}
	stats := rec.last(t)
	if stats.Kills != 1 || stats.HerbivoreDeaths != 1 {
		t.Errorf("kills = %d, herbivore deaths = %d; want 1 and 1", stats.Kills, stats.HerbivoreDeaths)
	}
	// The minnow shrank to 7.5 during its own phase.
	pike := eco.Organisms(components.KindCarnivore)[0]
	if math.Abs(pike.Energy-16.5) > 1e-12 {
		t.Errorf("carnivore energy = %v, want 10 + 7.5 - 1", pike.Energy)
	}
}

func TestTick_PerfWorkload(t *testing.T) {
	eco := New(Options{Seed: 1})
	eco.Spawn(herbivoreSpecies("minnow", minnowTraits, 1, "algae"), 8)
	eco.Spawn(carnivoreSpecies("pike", pikeTraits, 1, "minnow"), 10)

	eco.Tick()

	perf := eco.Perf()
	if perf.Ticks != 1 {
		t.Fatalf("perf ticks = %d, want 1", perf.Ticks)
	}
	want := [len(telemetry.Phases)]telemetry.PhaseRate{
		telemetry.PhaseHerbivores: {Acted: 1},
		telemetry.PhaseCarnivores: {Acted: 1, Meals: 1},
		telemetry.PhaseSweep:      {Deaths: 1},
	}
	if perf.Rate != want {
		t.Errorf("rates = %+v, want %+v", perf.Rate, want)
	}
}

func TestTick_NoDoubleKill(t *testing.T) {
	rec := &windowRecorder{}
	eco := New(rec.options(0))
	eco.Spawn(herbivoreSpecies("minnow", minnowTraits, 1, "algae"), 8)
	pike := carnivoreSpecies("pike", pikeTraits, 1, "minnow")
	eco.Spawn(pike, 10)
	eco.Spawn(pike, 10)

	eco.Tick()

	stats := rec.last(t)
	if stats.Kills != 1 {
		t.Errorf("kills = %d, want 1", stats.Kills)
	}
	if math.Abs(stats.EnergyDevoured-7.5) > 1e-12 {
		t.Errorf("energy devoured = %v, want 7.5", stats.EnergyDevoured)
	}
}

// Carnivores only hunt herbivores named in their diet.
func TestTick_DietRestrictsPrey(t *testing.T) {
	rec := &windowRecorder{}
	eco := New(rec.options(0))
	eco.Spawn(herbivoreSpecies("snail", minnowTraits, 1, "algae"), 2)
	eco.Spawn(carnivoreSpecies("pike", pikeTraits, 1, "minnow"), 10)

	eco.Tick()

	if kills := rec.last(t).Kills; kills != 0 {
		t.Errorf("kills = %d, want 0", kills)
	}
}

func TestTick_HerbivoreGrazes(t *testing.T) {
	rec := &windowRecorder{}
	eco := New(rec.options(0))
	eco.Spawn(plantSpecies("algae", components.Traits{
		EnergyNeed:  1,
		Efficiency:  1,
		Resilience:  1,
		FertileAge:  100,
		ChildEnergy: 1,
		MaxEnergy:   100,
	}), 50)
	eco.Spawn(herbivoreSpecies("snail", minnowTraits, 1, "algae"), 5)

	eco.Tick()

	stats := rec.last(t)
	if stats.Bites < 1 {
		t.Fatalf("bites = %d, want at least 1", stats.Bites)
	}
	plant := eco.Organisms(components.KindPlant)[0]
	// No solar input: the plant pays its need, then loses every bite.
	want := 50 - 1 - stats.EnergyBitten
	if math.Abs(plant.Energy-want) > 1e-9 {
		t.Errorf("plant energy = %v, want %v", plant.Energy, want)
	}
	snail := eco.Organisms(components.KindHerbivore)[0]
	if snail.Energy <= 5-minnowTraits.EnergyNeed {
		t.Errorf("herbivore energy = %v, should have gained from %v bitten", snail.Energy, stats.EnergyBitten)
	}
}

// Herbivores killed earlier in the tick are not in any carnivore's prey pool.
func TestTick_DeadPreyNotHunted(t *testing.T) {
	rec := &windowRecorder{}
	eco := New(rec.options(0))
	frail := minnowTraits
	frail.EnergyNeed = 5
	frail.Resilience = 0
	eco.Spawn(herbivoreSpecies("minnow", frail, 1, "algae"), 5)
	eco.Spawn(carnivoreSpecies("pike", pikeTraits, 1, "minnow"), 10)

	eco.Tick()

	stats := rec.last(t)
	if stats.Kills != 0 {
		t.Errorf("kills = %d, want 0", stats.Kills)
	}
	if stats.HerbivoreDeaths != 1 {
		t.Errorf("herbivore deaths = %d, want 1", stats.HerbivoreDeaths)
	}
	pike := eco.Organisms(components.KindCarnivore)[0]
	if pike.Energy != 9 {
		t.Errorf("carnivore energy = %v, want 10 - need = 9", pike.Energy)
	}
}

// tickRand replays fixed draws for a whole tick.
type tickRand struct {
	floats []float64
	ints   []int
}

func (r *tickRand) Float64() float64 {
	if len(r.floats) == 0 {
		panic("tickRand: no Float64 draws left")
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *tickRand) Intn(n int) int {
	if len(r.ints) == 0 {
		panic("tickRand: no Intn draws left")
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v
}

// One herbivore may bite the same plant several times in a tick; each bite
// is sized against what the plant has left.
func TestTick_HerbivoreBitesSamePlantRepeatedly(t *testing.T) {
	rng := &tickRand{
		// three meals then stop, then three minimal bites
		floats: []float64{0.1, 0.1, 0.1, 0.9, 0, 0, 0},
		ints:   []int{0, 0, 0},
	}
	rec := &windowRecorder{}
	opts := rec.options(0)
	opts.Rand = rng
	eco := New(opts)

	// No need and no fertility: plants draw nothing during their phase.
	idle := components.Traits{Efficiency: 1, Resilience: 1, FertileAge: 100, ChildEnergy: 1, MaxEnergy: 100}
	for i := 0; i < 4; i++ {
		eco.Spawn(plantSpecies("algae", idle), 50)
	}
	eco.Spawn(herbivoreSpecies("snail", minnowTraits, 0.5, "algae"), 5)

	eco.Tick()

	if len(rng.floats) != 0 || len(rng.ints) != 0 {
		t.Errorf("unused draws: floats %v, ints %v", rng.floats, rng.ints)
	}
	stats := rec.last(t)
	if stats.Bites != 3 {
		t.Errorf("bites = %d, want 3", stats.Bites)
	}

	// 50 -> 45 -> 40.5 -> 36.45
	plants := eco.Organisms(components.KindPlant)
	if math.Abs(plants[0].Energy-36.45) > 1e-9 {
		t.Errorf("first plant energy = %v, want 36.45", plants[0].Energy)
	}
	for i, p := range plants[1:] {
		if p.Energy != 50 {
			t.Errorf("plant %d energy = %v, want untouched 50", i+1, p.Energy)
		}
	}
	if math.Abs(stats.EnergyBitten-13.55) > 1e-9 {
		t.Errorf("energy bitten = %v, want 13.55", stats.EnergyBitten)
	}
}

// Offspring join after their phase, start with the child energy and do not
// act in the tick they are born. Aging then covers everyone.
func TestTick_NewbornsAndAging(t *testing.T) {
	rec := &windowRecorder{}
	eco := New(rec.options(50))
	eco.Spawn(plantSpecies("algae", components.Traits{
		EnergyNeed:  5,
		Efficiency:  1,
		Resilience:  1,
		Fertility:   1,
		ChildEnergy: 9,
		MaxEnergy:   200,
	}), 100)

	eco.Tick()

	// Budget 45 pays for five children of 9 with nothing left to grow.
	plants := eco.Organisms(components.KindPlant)
	if len(plants) != 6 {
		t.Fatalf("plants = %d, want 6", len(plants))
	}
	var parents, children int
	for _, p := range plants {
		if p.Age != 1 {
			t.Errorf("age = %d, want 1 after one tick", p.Age)
		}
		switch p.Energy {
		case 100:
			parents++
		case 9:
			children++
		default:
			t.Errorf("unexpected energy %v", p.Energy)
		}
	}
	if parents != 1 || children != 5 {
		t.Errorf("parents = %d, children = %d; want 1 and 5", parents, children)
	}
	if births := rec.last(t).PlantBirths; births != 5 {
		t.Errorf("births = %d, want 5", births)
	}
}

func TestMaterializeBirths_NewbornState(t *testing.T) {
	eco := New(Options{Seed: 1})
	sp := herbivoreSpecies("snail", minnowTraits, 0.4, "algae")
	parent := eco.Spawn(sp, 30)
	eco.orgMap.Get(parent).Age = 7

	eco.queueOffspring(components.KindHerbivore, parent, 2)
	eco.materializeBirths()

	herbivores := eco.Organisms(components.KindHerbivore)
	if len(herbivores) != 3 {
		t.Fatalf("herbivores = %d, want 3", len(herbivores))
	}
	newborns := 0
	for _, e := range eco.entities(components.KindHerbivore) {
		if e == parent {
			continue
		}
		newborns++
		org := eco.orgMap.Get(e)
		if org.Age != 0 || org.Energy != sp.Traits.ChildEnergy || org.Species != "snail" {
			t.Errorf("newborn = %+v, want age 0 and child energy", *org)
		}
		if *eco.traitsMap.Get(e) != sp.Traits {
			t.Error("newborn traits differ from parent")
		}
		fo := eco.foragerMap.Get(e)
		if fo.Persistence != 0.4 || !fo.Diet.Contains("algae") {
			t.Errorf("newborn forager = %+v", *fo)
		}
		if *eco.grazerMap.Get(e) != sp.Grazer {
			t.Error("newborn bite bounds differ from parent")
		}
	}
	if newborns != 2 {
		t.Errorf("newborns = %d, want 2", newborns)
	}
	if len(eco.births) != 0 {
		t.Error("birth queue not reset")
	}
}

func TestCleanupDead_AllLayers(t *testing.T) {
	eco := New(Options{Seed: 1})
	deadPlant := eco.Spawn(plantSpecies("algae", minnowTraits), 3)
	eco.Spawn(plantSpecies("algae", minnowTraits), 4)
	herb := eco.Spawn(herbivoreSpecies("snail", minnowTraits, 0.5, "algae"), 5)
	carn := eco.Spawn(carnivoreSpecies("pike", pikeTraits, 0.5, "snail"), 6)

	eco.orgMap.Get(deadPlant).Dead = true
	eco.orgMap.Get(herb).Dead = true
	eco.orgMap.Get(carn).Dead = true

	eco.cleanupDead()

	if got := eco.Counts(); got != [3]int{1, 0, 0} {
		t.Errorf("counts = %v, want [1 0 0]", got)
	}
	if eco.world.Alive(deadPlant) || eco.world.Alive(herb) || eco.world.Alive(carn) {
		t.Error("dead entities still in the world")
	}
}

func TestExtinct_PerLayer(t *testing.T) {
	eco := New(Options{Seed: 1})
	eco.Spawn(plantSpecies("algae", minnowTraits), 3)
	snail := eco.Spawn(herbivoreSpecies("snail", minnowTraits, 0.5, "algae"), 5)
	eco.orgMap.Get(snail).Dead = true

	tests := []struct {
		kind components.Kind
		want bool
	}{
		{components.KindPlant, false},
		{components.KindHerbivore, true}, // flagged dead, not yet swept
		{components.KindCarnivore, true},
	}
	for _, tt := range tests {
		if got := eco.Extinct(tt.kind); got != tt.want {
			t.Errorf("Extinct(%s) = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	eco := New(Options{Seed: 1})
	algae := plantSpecies("algae", minnowTraits)
	duckweed := plantSpecies("duckweed", minnowTraits)
	eco.Spawn(duckweed, 5)
	eco.Spawn(algae, 3)
	eco.Spawn(algae, 4)
	eco.Spawn(herbivoreSpecies("snail", minnowTraits, 0.5, "algae"), 6)
	dead := eco.Spawn(herbivoreSpecies("daphnia", minnowTraits, 0.5, "algae"), 2)
	eco.orgMap.Get(dead).Dead = true

	s := eco.Summarize()

	wantPlants := []telemetry.SpeciesSummary{
		{Name: "algae", Count: 2, Energy: 7},
		{Name: "duckweed", Count: 1, Energy: 5},
	}
	if got := s.Layer(components.KindPlant).Species; !reflect.DeepEqual(got, wantPlants) {
		t.Errorf("plants = %+v, want %+v", got, wantPlants)
	}
	wantHerbivores := []telemetry.SpeciesSummary{{Name: "snail", Count: 1, Energy: 6}}
	if got := s.Layer(components.KindHerbivore).Species; !reflect.DeepEqual(got, wantHerbivores) {
		t.Errorf("herbivores = %+v, want %+v", got, wantHerbivores)
	}
	if n := len(s.Layer(components.KindCarnivore).Species); n != 0 {
		t.Errorf("carnivore species = %d, want 0", n)
	}

	var buf bytes.Buffer
	if err := telemetry.WriteReport(&buf, s); err != nil {
		t.Fatal(err)
	}
	for _, line := range []string{
		"2 plant species remain.",
		"algae: 2 individuals holding 7.00 energy units in total.",
		"0 carnivore species remain.",
	} {
		if !strings.Contains(buf.String(), line) {
			t.Errorf("report missing %q:\n%s", line, buf.String())
		}
	}
}

func TestNewFromConfig_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}

	eco, err := NewFromConfig(cfg, Options{Seed: 3})
	if err != nil {
		t.Fatal(err)
	}

	want := [3]int{180, 100, 8}
	if got := eco.Counts(); got != want {
		t.Errorf("counts = %v, want %v", got, want)
	}
	if eco.SolarEnergy() != cfg.Lake.SolarEnergy {
		t.Errorf("solar = %v, want %v", eco.SolarEnergy(), cfg.Lake.SolarEnergy)
	}
	for _, org := range eco.Organisms(components.KindCarnivore) {
		if org.Species != "perch" || org.Energy != 10 || org.Age != 0 {
			t.Errorf("founder = %+v, want perch with child energy at age 0", org)
		}
	}
	if eco.collector.WindowDurationTicks() != cfg.Telemetry.StatsWindow {
		t.Errorf("stats window = %d, want %d", eco.collector.WindowDurationTicks(), cfg.Telemetry.StatsWindow)
	}
}

func TestNewFromConfig_Invalid(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Carnivores[0].Diet = []string{"trout"}

	if _, err := NewFromConfig(cfg, Options{}); err == nil {
		t.Error("expected error for unknown prey species")
	}
}

// The same seed replays the same lake.
func TestTick_Deterministic(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}

	run := func() (telemetry.Summary, []telemetry.WindowStats) {
		var windows []telemetry.WindowStats
		eco, err := NewFromConfig(cfg, Options{
			Seed:          42,
			StatsCallback: func(s telemetry.WindowStats) { windows = append(windows, s) },
		})
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 20; i++ {
			eco.Tick()
		}
		if eco.TickCount() != 20 {
			t.Errorf("tick count = %d, want 20", eco.TickCount())
		}
		return eco.Summarize(), windows
	}

	s1, w1 := run()
	s2, w2 := run()
	if !reflect.DeepEqual(s1, s2) {
		t.Errorf("summaries differ:\n%+v\n%+v", s1, s2)
	}
	if !reflect.DeepEqual(w1, w2) {
		t.Error("window stats differ between identical runs")
	}
	if len(w1) != 2 {
		t.Errorf("windows = %d, want 2", len(w1))
	}
}

// Invariants that hold after every tick of a busy lake.
func TestTick_Invariants(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	eco, err := NewFromConfig(cfg, Options{Seed: 9})
	if err != nil {
		t.Fatal(err)
	}

	for tick := 0; tick < 15; tick++ {
		eco.Tick()
		for _, kind := range components.Kinds {
			entities := eco.entities(kind)
			for _, e := range entities {
				org := eco.orgMap.Get(e)
				tr := eco.traitsMap.Get(e)
				if org.Dead {
					t.Fatalf("tick %d: dead %s survived the sweep", tick, kind)
				}
				if org.Energy < 0 || org.Energy > tr.MaxEnergy {
					t.Fatalf("tick %d: %s energy %v outside [0, %v]", tick, kind, org.Energy, tr.MaxEnergy)
				}
				if org.Age < 1 {
					t.Fatalf("tick %d: %s age %d after aging", tick, kind, org.Age)
				}
			}
		}
	}
}
