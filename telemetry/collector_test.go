package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/simlac/components"
)

func testSummary(tick int) Summary {
	var s Summary
	s.Tick = tick
	s.Layers[components.KindPlant] = LayerSummary{
		Kind: components.KindPlant,
		Species: []SpeciesSummary{
			{Name: "algae", Count: 3, Energy: 30},
			{Name: "duckweed", Count: 1, Energy: 5},
		},
	}
	s.Layers[components.KindHerbivore] = LayerSummary{
		Kind:    components.KindHerbivore,
		Species: []SpeciesSummary{{Name: "snail", Count: 2, Energy: 12}},
	}
	s.Layers[components.KindCarnivore] = LayerSummary{Kind: components.KindCarnivore}
	return s
}

func TestCollector_ShouldFlush(t *testing.T) {
	c := NewCollector(10)
	if c.ShouldFlush(9) {
		t.Error("window of 10 ticks flushed at tick 9")
	}
	if !c.ShouldFlush(10) {
		t.Error("window of 10 ticks not flushed at tick 10")
	}

	c.Flush(10, Census{})
	if c.ShouldFlush(15) || !c.ShouldFlush(20) {
		t.Error("second window should end at tick 20")
	}

	if NewCollector(0).WindowDurationTicks() != 1 {
		t.Error("window length should be clamped to at least one tick")
	}
}

func TestCollector_Flush(t *testing.T) {
	c := NewCollector(5)

	c.Record(NewPhotosynthesisEvent(1, "algae", 4.5))
	c.Record(NewPhotosynthesisEvent(1, "duckweed", 0.5))
	c.Record(NewBiteEvent(1, "snail", "algae", 2))
	c.Record(NewBiteEvent(2, "snail", "algae", 1))
	c.Record(NewKillEvent(3, "pike", "snail", 6))
	c.Record(NewBirthEvent(3, components.KindPlant, "algae"))
	c.Record(NewBirthEvent(3, components.KindPlant, "algae"))
	c.Record(NewDeathEvent(4, components.KindHerbivore, "snail", 7))
	c.Record(NewDeathEvent(4, components.KindCarnivore, "pike", 3))

	census := Census{Summary: testSummary(5)}
	census.Energies[components.KindPlant] = []float64{10, 10, 10, 5}
	census.Energies[components.KindHerbivore] = []float64{4, 8}

	stats, species := c.Flush(5, census)

	if stats.WindowStartTick != 0 || stats.WindowEndTick != 5 {
		t.Errorf("window = [%d, %d], want [0, 5]", stats.WindowStartTick, stats.WindowEndTick)
	}
	if stats.PlantCount != 4 || stats.HerbivoreCount != 2 || stats.CarnivoreCount != 0 {
		t.Errorf("counts = %d/%d/%d, want 4/2/0", stats.PlantCount, stats.HerbivoreCount, stats.CarnivoreCount)
	}
	if stats.PlantSpecies != 2 || stats.HerbivoreSpecies != 1 || stats.CarnivoreSpecies != 0 {
		t.Errorf("species = %d/%d/%d, want 2/1/0", stats.PlantSpecies, stats.HerbivoreSpecies, stats.CarnivoreSpecies)
	}
	if stats.PlantBirths != 2 || stats.HerbivoreDeaths != 1 || stats.CarnivoreDeaths != 1 {
		t.Errorf("events = births %d, herbivore deaths %d, carnivore deaths %d", stats.PlantBirths, stats.HerbivoreDeaths, stats.CarnivoreDeaths)
	}
	if stats.Bites != 2 || stats.EnergyBitten != 3 || stats.Kills != 1 || stats.EnergyDevoured != 6 {
		t.Errorf("feeding = %d bites (%v), %d kills (%v)", stats.Bites, stats.EnergyBitten, stats.Kills, stats.EnergyDevoured)
	}
	if math.Abs(stats.SolarCaptured-5) > 1e-12 {
		t.Errorf("solar captured = %v, want 5", stats.SolarCaptured)
	}
	if stats.PlantEnergyTotal != 35 || stats.HerbivoreEnergyTotal != 12 {
		t.Errorf("energy totals = %v/%v, want 35/12", stats.PlantEnergyTotal, stats.HerbivoreEnergyTotal)
	}
	if math.Abs(stats.PlantEnergyMean-8.75) > 1e-12 || stats.HerbivoreEnergyMean != 6 {
		t.Errorf("energy means = %v/%v, want 8.75/6", stats.PlantEnergyMean, stats.HerbivoreEnergyMean)
	}

	// Rows: algae, duckweed, snail, pike (no longer alive but active)
	if len(species) != 4 {
		t.Fatalf("species rows = %d, want 4: %+v", len(species), species)
	}
	algae := species[0]
	if algae.Species != "algae" || algae.Kind != "plant" || algae.Births != 2 || algae.TimesEaten != 2 || algae.EnergyLost != 3 {
		t.Errorf("algae row = %+v", algae)
	}
	snail := species[2]
	if snail.Species != "snail" || snail.Meals != 2 || snail.Captured != 3 || snail.TimesEaten != 1 || snail.MeanDeathAge != 7 {
		t.Errorf("snail row = %+v", snail)
	}
	pike := species[3]
	if pike.Species != "pike" || pike.Count != 0 || pike.Deaths != 1 || pike.Meals != 1 || pike.Captured != 6 {
		t.Errorf("pike row = %+v", pike)
	}

	// Counters reset for the next window
	stats, species = c.Flush(10, Census{})
	if stats.Bites != 0 || stats.PlantBirths != 0 || stats.SolarCaptured != 0 {
		t.Errorf("counters not reset: %+v", stats)
	}
	if len(species) != 0 {
		t.Errorf("species rows after reset = %+v, want none", species)
	}
}

// ---------- Report ----------

func TestLayerSummaryTotals(t *testing.T) {
	s := testSummary(0)
	plants := s.Layer(components.KindPlant)
	if plants.Count() != 4 || plants.Energy() != 35 {
		t.Errorf("plants = %d / %v, want 4 / 35", plants.Count(), plants.Energy())
	}
	if s.Layer(components.Kind(9)).Count() != 0 {
		t.Error("unknown kind should summarize as empty")
	}
}
