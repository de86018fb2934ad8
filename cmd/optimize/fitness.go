package main

import (
	"math"
	"sync"

	"github.com/pthm-cable/simlac/components"
	"github.com/pthm-cable/simlac/config"
	"github.com/pthm-cable/simlac/ecosystem"
	"github.com/pthm-cable/simlac/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int
	seeds       []int64
	baseConfig  *config.Config
	statsWindow int

	mu          sync.Mutex
	bestFitness float64
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 10,
		bestFitness: math.Inf(1),
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Minimum viable population: a layer that stays below this for
// extinctionGraceTicks consecutive ticks counts as functionally extinct.
const (
	minViablePop         = 3
	extinctionGraceTicks = 20
	warmupTicks          = 5
)

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks int                     // ticks before functional extinction (or maxTicks if survived)
	windowStats   []telemetry.WindowStats // collected via StatsCallback each window
	species       [len(components.Kinds)]int
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative survival ticks: longer survival = lower (better) fitness.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	// Each seed owns its lake and random source, so seeds run in parallel.
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(cfg, s)
			results[idx] = seedResult{
				fitness: computeFitness(result),
				quality: computeQuality(result.windowStats, result.species),
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
	}
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single headless simulation run.
// Runs until functional extinction or maxTicks, whichever comes first.
// cfg is only read.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) *runResult {
	result := &runResult{survivalTicks: fe.maxTicks}
	for _, kind := range components.Kinds {
		result.species[kind] = len(cfg.Layer(kind))
	}

	eco, err := ecosystem.NewFromConfig(cfg, ecosystem.Options{
		Seed:        seed,
		StatsWindow: fe.statsWindow,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		// Parameters are clamped into valid ranges; a failure here means a
		// broken base config, which scores as an immediate collapse.
		result.survivalTicks = 0
		return result
	}

	var below [len(components.Kinds)]int

	for eco.TickCount() < fe.maxTicks {
		eco.Tick()

		tick := eco.TickCount()
		counts := eco.Counts()

		for _, kind := range components.Kinds {
			// Hard extinction: a whole layer gone
			if counts[kind] == 0 {
				result.survivalTicks = tick
				return result
			}
			if tick < warmupTicks {
				continue
			}

			if counts[kind] < minViablePop {
				below[kind]++
			} else {
				below[kind] = 0
			}
			if below[kind] >= extinctionGraceTicks {
				result.survivalTicks = tick
				return result
			}
		}
	}

	return result
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(survivalTicks × (1.0 + 0.2 × quality))
// Survival dominates; quality adds up to 20% bonus to differentiate
// configs with similar survival.
func computeFitness(r *runResult) float64 {
	survival := float64(r.survivalTicks)
	quality := computeQuality(r.windowStats, r.species)
	return -(survival * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightRatio     = 0.30
	qualityWeightStability = 0.25
	qualityWeightDiversity = 0.25
	qualityWeightHunting   = 0.20

	qualityWarmupWindows = 3 // skip first N windows (warmup)
	qualityMinPop        = 3 // exclude windows where any layer < this
)

// computeQuality computes ecosystem quality ∈ [0, 1] from window stats.
// configured holds the number of species configured per layer.
func computeQuality(windows []telemetry.WindowStats, configured [len(components.Kinds)]int) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}

	valid := windows[qualityWarmupWindows:]

	var ratioSum, diversitySum, huntSum float64
	var ratioCount, huntCount int

	plantCounts := make([]float64, 0, len(valid))
	herbCounts := make([]float64, 0, len(valid))
	carnCounts := make([]float64, 0, len(valid))

	for _, w := range valid {
		if w.PlantCount < qualityMinPop || w.HerbivoreCount < qualityMinPop || w.CarnivoreCount < qualityMinPop {
			continue
		}

		plantCounts = append(plantCounts, float64(w.PlantCount))
		herbCounts = append(herbCounts, float64(w.HerbivoreCount))
		carnCounts = append(carnCounts, float64(w.CarnivoreCount))

		// 1. Pyramid shape: about 5 plants per herbivore and 10 herbivores per carnivore
		ratioSum += (ratioScore(float64(w.PlantCount)/float64(w.HerbivoreCount), 5) +
			ratioScore(float64(w.HerbivoreCount)/float64(w.CarnivoreCount), 10)) / 2
		ratioCount++

		// 3. Share of configured species still present
		diversitySum += (share(w.PlantSpecies, configured[components.KindPlant]) +
			share(w.HerbivoreSpecies, configured[components.KindHerbivore]) +
			share(w.CarnivoreSpecies, configured[components.KindCarnivore])) / 3

		// 4. Hunting activity
		if w.Kills > 0 {
			killsPerCarn := float64(w.Kills) / float64(w.CarnivoreCount)
			huntSum += 1.0 - math.Exp(-killsPerCarn)
			huntCount++
		}
	}

	// No valid windows → zero quality
	if ratioCount == 0 {
		return 0
	}

	// 2. Population stability (CV across all valid windows)
	stabilityScore := 0.0
	if len(plantCounts) >= 2 {
		cvPlant := telemetry.CoefficientOfVariation(plantCounts)
		cvHerb := telemetry.CoefficientOfVariation(herbCounts)
		cvCarn := telemetry.CoefficientOfVariation(carnCounts)
		stabilityScore = math.Exp(-(cvPlant*cvPlant + cvHerb*cvHerb + cvCarn*cvCarn))
	}

	huntScore := 0.0
	if huntCount > 0 {
		huntScore = huntSum / float64(huntCount)
	}

	quality := qualityWeightRatio*ratioSum/float64(ratioCount) +
		qualityWeightStability*stabilityScore +
		qualityWeightDiversity*diversitySum/float64(ratioCount) +
		qualityWeightHunting*huntScore

	return clamp(quality, 0, 1)
}

// ratioScore is 1 at the target ratio and falls off with the log error.
func ratioScore(ratio, target float64) float64 {
	logErr := math.Log(ratio / target)
	return math.Exp(-logErr * logErr)
}

func share(present, configured int) float64 {
	if configured == 0 {
		return 1
	}
	return math.Min(float64(present)/float64(configured), 1)
}
