package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/pthm-cable/simlac/components"
	"github.com/pthm-cable/simlac/config"
	"github.com/pthm-cable/simlac/ecosystem"
	"github.com/pthm-cable/simlac/telemetry"
)

func main() {
	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	env := config.LoadEnv()

	// CLI flags
	configPath := flag.String("config", env.ConfigPath, "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", env.OutputDir, "Output directory for CSV logs, config snapshot and report")
	seed := flag.Int64("seed", env.Seed, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = use config)")
	stopOnExtinction := flag.Bool("stop-on-extinction", false, "Stop as soon as a trophic layer dies out")
	reportEvery := flag.Int("report-every", 0, "Log a population summary every N ticks (0 = use config)")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	run := cfg.Run
	if *maxTicks > 0 {
		run.MaxTicks = *maxTicks
	}
	if *stopOnExtinction {
		run.StopOnExtinction = true
	}
	if *reportEvery > 0 {
		run.ReportEvery = *reportEvery
	}

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
		os.Exit(1)
	}
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	eco, err := ecosystem.NewFromConfig(cfg, ecosystem.Options{
		Seed:     rngSeed,
		LogStats: *logStats,
		Output:   output,
	})
	if err != nil {
		slog.Error("failed to build lake", "error", err)
		output.Close()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Info("starting simulation",
		"seed", rngSeed,
		"max_ticks", run.MaxTicks,
		"stop_on_extinction", run.StopOnExtinction,
		"output_dir", *outputDir,
	)

	simulate(ctx, eco, run)

	summary := eco.Summarize()
	if err := telemetry.WriteReport(os.Stdout, summary); err != nil {
		slog.Error("failed to print report", "error", err)
	}
	if err := output.WriteReport(summary); err != nil {
		slog.Error("failed to write report", "error", err)
	}
	if err := output.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}

// simulate ticks the lake until a run limit is reached or ctx is cancelled.
func simulate(ctx context.Context, eco *ecosystem.Ecosystem, run config.RunConfig) {
	for {
		if ctx.Err() != nil {
			slog.Info("interrupted", "tick", eco.TickCount())
			return
		}

		eco.Tick()
		tick := eco.TickCount()

		if run.ReportEvery > 0 && tick%run.ReportEvery == 0 {
			counts := eco.Counts()
			slog.Info("progress",
				"tick", tick,
				"plants", counts[components.KindPlant],
				"herbivores", counts[components.KindHerbivore],
				"carnivores", counts[components.KindCarnivore],
			)
		}

		if run.StopOnExtinction {
			for _, kind := range components.Kinds {
				if eco.Extinct(kind) {
					slog.Info("layer extinct", "tick", tick, "kind", kind.String())
					return
				}
			}
		}

		if run.MaxTicks > 0 && tick >= run.MaxTicks {
			slog.Info("max ticks reached", "tick", tick)
			return
		}
	}
}
