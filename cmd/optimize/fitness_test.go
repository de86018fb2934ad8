package main

import (
	"testing"

	"github.com/pthm-cable/simlac/components"
	"github.com/pthm-cable/simlac/telemetry"
)

func TestComputeQuality_TooFewWindows(t *testing.T) {
	windows := make([]telemetry.WindowStats, qualityWarmupWindows)
	if q := computeQuality(windows, [3]int{1, 1, 1}); q != 0 {
		t.Errorf("quality = %v, want 0", q)
	}
}

func TestComputeQuality_Bounds(t *testing.T) {
	ideal := telemetry.WindowStats{
		PlantCount: 500, HerbivoreCount: 100, CarnivoreCount: 10,
		PlantSpecies: 2, HerbivoreSpecies: 2, CarnivoreSpecies: 1,
		Kills: 50,
	}
	var windows []telemetry.WindowStats
	for i := 0; i < qualityWarmupWindows+5; i++ {
		windows = append(windows, ideal)
	}

	q := computeQuality(windows, [3]int{2, 2, 1})
	if q < 0.95 || q > 1 {
		t.Errorf("quality of a steady ideal pyramid = %v, want close to 1", q)
	}

	collapsed := make([]telemetry.WindowStats, len(windows))
	if q := computeQuality(collapsed, [3]int{2, 2, 1}); q != 0 {
		t.Errorf("quality of empty windows = %v, want 0", q)
	}
}

func TestComputeFitness(t *testing.T) {
	r := &runResult{survivalTicks: 100}
	if f := computeFitness(r); f != -100 {
		t.Errorf("fitness = %v, want -100 without quality windows", f)
	}
}

func TestRunSimulation_Deterministic(t *testing.T) {
	cfg := testConfig(t)
	fe := NewFitnessEvaluator(NewParamVector(cfg), 15, []int64{42}, cfg)

	a := fe.runSimulation(cfg, 7)
	b := fe.runSimulation(cfg, 7)

	if a.survivalTicks != b.survivalTicks || len(a.windowStats) != len(b.windowStats) {
		t.Errorf("runs differ: %d/%d ticks, %d/%d windows",
			a.survivalTicks, b.survivalTicks, len(a.windowStats), len(b.windowStats))
	}
	if a.survivalTicks > 15 {
		t.Errorf("survival %d exceeds max ticks", a.survivalTicks)
	}
	if a.species[components.KindPlant] != len(cfg.Plants) {
		t.Errorf("configured plant species = %d, want %d", a.species[components.KindPlant], len(cfg.Plants))
	}
}
