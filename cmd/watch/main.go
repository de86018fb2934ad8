// Command watch runs a lake live in the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/time/rate"

	"github.com/pthm-cable/simlac/config"
	"github.com/pthm-cable/simlac/ecosystem"
)

const frameInterval = 33 * time.Millisecond // ~30 FPS

func main() {
	env := config.LoadEnv()

	configPath := flag.String("config", env.ConfigPath, "Config YAML file (empty = use defaults)")
	seed := flag.Int64("seed", env.Seed, "RNG seed (0 = time based)")
	tps := flag.Float64("tps", 10, "Ticks per second")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	eco, err := ecosystem.NewFromConfig(config.Cfg(), ecosystem.Options{Seed: *seed})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build lake: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	run(context.Background(), newView(screen, eco), newLimiter(*tps))
}

// newLimiter paces ticks at tps. The burst lets one frame catch up on
// several ticks when tps exceeds the frame rate.
func newLimiter(tps float64) *rate.Limiter {
	if tps <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := int(math.Ceil(tps * frameInterval.Seconds()))
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(tps), burst)
}

// run drives the lake and the view until the user quits or ctx ends.
func run(ctx context.Context, v *view, limiter *rate.Limiter) {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case ev := <-events:
			if !v.handleEvent(ev) {
				return
			}

		case <-ticker.C:
			if !v.paused {
				step(v, limiter, limiter.Burst())
			}
			v.draw()
		}
	}
}

// step advances the lake by as many ticks as the limiter allows, up to max.
func step(v *view, limiter *rate.Limiter, max int) int {
	n := 0
	for n < max && limiter.Allow() {
		v.eco.Tick()
		n++
	}
	return n
}
