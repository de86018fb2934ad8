// Command optimize searches species parameters for long-lived, balanced lakes
// with CMA-ES.
package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pthm-cable/simlac/config"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	env := config.LoadEnv()

	configPath := flag.String("config", env.ConfigPath, "Base config YAML file (empty = use defaults)")
	maxTicks := flag.Int("max-ticks", 2000, "Cap on ticks per simulation run")
	seeds := flag.Int("seeds", 3, "Lakes simulated per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", env.OutputDir, "Directory for optimize_log.csv and best_config.yaml")
	flag.Parse()

	if err := optimizeLake(*configPath, *outputDir, *maxTicks, *seeds, *maxEvals, *population); err != nil {
		slog.Error("optimize failed", "error", err)
		os.Exit(1)
	}
}

func optimizeLake(configPath, outputDir string, maxTicks, seeds, maxEvals, population int) error {
	if outputDir == "" {
		return errors.New("--output is required")
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}
	if err := config.Init(configPath); err != nil {
		return err
	}
	base := config.Cfg()

	params := NewParamVector(base)
	evalSeeds := make([]int64, seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, maxTicks, evalSeeds, base)

	s := newSearch(params, func(values []float64) (float64, float64) {
		fitness := evaluator.Evaluate(values)
		return fitness, evaluator.LastQuality()
	}, maxEvals)

	f, w, err := createLog(filepath.Join(outputDir, "optimize_log.csv"))
	if err != nil {
		return err
	}
	defer f.Close()
	if err := s.logTo(w); err != nil {
		return err
	}

	slog.Info("lakes per evaluation", "seeds", seeds, "max_ticks", maxTicks)
	best, err := s.run(population)
	if err != nil {
		return err
	}

	slog.Info("optimization complete", "evals", s.evals, "best_fitness", s.bestFitness, "took", formatDuration(time.Since(s.start)))
	for i, spec := range params.Specs {
		slog.Info("best", "param", spec.Name, "value", best[i])
	}

	bestCfg := base.Clone()
	params.ApplyToConfig(bestCfg, best)
	out := filepath.Join(outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(out); err != nil {
		return err
	}
	slog.Info("best config saved", "path", out)
	return nil
}
