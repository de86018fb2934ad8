// Package ecosystem runs the lake: three trophic layers of organisms stored
// in an ECS world and advanced one discrete tick at a time.
package ecosystem

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/simlac/components"
	"github.com/pthm-cable/simlac/config"
	"github.com/pthm-cable/simlac/systems"
	"github.com/pthm-cable/simlac/telemetry"
)

// Defaults used when Options leave telemetry sizes unset.
const (
	DefaultStatsWindow     = 10
	DefaultBookmarkHistory = 20
	DefaultPerfWindow      = 100
)

// Options configures an Ecosystem.
type Options struct {
	Seed int64
	Rand systems.Rand // overrides Seed when set

	SolarEnergy float64

	// Telemetry
	StatsWindow     int // ticks per stats window
	BookmarkHistory int
	PerfWindow      int
	Bookmarks       config.BookmarksConfig
	LogStats        bool
	Output          *telemetry.OutputManager // nil disables CSV output
	StatsCallback   func(telemetry.WindowStats)
}

// Ecosystem holds the complete lake state.
type Ecosystem struct {
	world *ecs.World
	rng   systems.Rand

	solarEnergy float64

	// Entity mappers, one per trophic layer
	plantMapper *ecs.Map3[components.Organism, components.Traits, components.Plant]
	herbMapper  *ecs.Map5[components.Organism, components.Traits, components.Forager, components.Grazer, components.Herbivore]
	carnMapper  *ecs.Map4[components.Organism, components.Traits, components.Forager, components.Carnivore]

	plantFilter *ecs.Filter3[components.Organism, components.Traits, components.Plant]
	herbFilter  *ecs.Filter5[components.Organism, components.Traits, components.Forager, components.Grazer, components.Herbivore]
	carnFilter  *ecs.Filter4[components.Organism, components.Traits, components.Forager, components.Carnivore]
	orgFilter   *ecs.Filter1[components.Organism]

	// Individual component mappers for lookups
	orgMap     *ecs.Map1[components.Organism]
	traitsMap  *ecs.Map1[components.Traits]
	foragerMap *ecs.Map1[components.Forager]
	grazerMap  *ecs.Map1[components.Grazer]

	// Offspring waiting for the end of the current phase
	births []birth

	// State
	tick int

	// Telemetry
	collector        *telemetry.Collector
	bookmarkDetector *telemetry.BookmarkDetector
	perfCollector    *telemetry.PerfCollector
	outputManager    *telemetry.OutputManager
	logStats         bool
	statsCallback    func(telemetry.WindowStats)
	bookmarks        []telemetry.Bookmark
}

// New creates an empty lake.
func New(opts Options) *Ecosystem {
	world := ecs.NewWorld()

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(opts.Seed))
	}
	if opts.StatsWindow <= 0 {
		opts.StatsWindow = DefaultStatsWindow
	}
	if opts.BookmarkHistory <= 0 {
		opts.BookmarkHistory = DefaultBookmarkHistory
	}
	if opts.PerfWindow <= 0 {
		opts.PerfWindow = DefaultPerfWindow
	}

	return &Ecosystem{
		world:       world,
		rng:         rng,
		solarEnergy: opts.SolarEnergy,

		plantMapper: ecs.NewMap3[components.Organism, components.Traits, components.Plant](world),
		herbMapper:  ecs.NewMap5[components.Organism, components.Traits, components.Forager, components.Grazer, components.Herbivore](world),
		carnMapper:  ecs.NewMap4[components.Organism, components.Traits, components.Forager, components.Carnivore](world),

		plantFilter: ecs.NewFilter3[components.Organism, components.Traits, components.Plant](world),
		herbFilter:  ecs.NewFilter5[components.Organism, components.Traits, components.Forager, components.Grazer, components.Herbivore](world),
		carnFilter:  ecs.NewFilter4[components.Organism, components.Traits, components.Forager, components.Carnivore](world),
		orgFilter:   ecs.NewFilter1[components.Organism](world),

		orgMap:     ecs.NewMap1[components.Organism](world),
		traitsMap:  ecs.NewMap1[components.Traits](world),
		foragerMap: ecs.NewMap1[components.Forager](world),
		grazerMap:  ecs.NewMap1[components.Grazer](world),

		collector:        telemetry.NewCollector(opts.StatsWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(opts.BookmarkHistory, opts.Bookmarks),
		perfCollector:    telemetry.NewPerfCollector(opts.PerfWindow),
		outputManager:    opts.Output,
		logStats:         opts.LogStats,
		statsCallback:    opts.StatsCallback,
	}
}

// NewFromConfig validates the configuration, creates the lake and spawns the
// founding populations. Telemetry sizes left unset in opts come from cfg.
func NewFromConfig(cfg *config.Config, opts Options) (*Ecosystem, error) {
	pops, err := cfg.Populations()
	if err != nil {
		return nil, err
	}

	opts.SolarEnergy = cfg.Lake.SolarEnergy
	if opts.StatsWindow <= 0 {
		opts.StatsWindow = cfg.Telemetry.StatsWindow
	}
	if opts.BookmarkHistory <= 0 {
		opts.BookmarkHistory = cfg.Telemetry.BookmarkHistorySize
	}
	if opts.PerfWindow <= 0 {
		opts.PerfWindow = cfg.Telemetry.PerfCollectorWindow
	}
	if opts.Bookmarks == (config.BookmarksConfig{}) {
		opts.Bookmarks = cfg.Bookmarks
	}

	eco := New(opts)
	for _, pop := range pops {
		for i := 0; i < pop.Count; i++ {
			eco.Spawn(pop.Species, pop.Energy)
		}
	}
	return eco, nil
}

// Tick advances the lake by one step: plants, herbivores, carnivores, the
// death sweep and aging, in that order.
func (eco *Ecosystem) Tick() {
	eco.perfCollector.StartTick()

	eco.perfCollector.StartPhase(telemetry.PhasePlants)
	eco.updatePlants()

	eco.perfCollector.StartPhase(telemetry.PhaseHerbivores)
	eco.updateHerbivores()

	eco.perfCollector.StartPhase(telemetry.PhaseCarnivores)
	eco.updateCarnivores()

	eco.perfCollector.StartPhase(telemetry.PhaseSweep)
	eco.cleanupDead()

	eco.perfCollector.StartPhase(telemetry.PhaseAging)
	eco.updateAging()

	eco.tick++

	eco.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	eco.flushTelemetry()

	eco.perfCollector.EndTick()
}

// TickCount returns the number of completed ticks.
func (eco *Ecosystem) TickCount() int {
	return eco.tick
}

// SolarEnergy returns the energy split among plants each tick.
func (eco *Ecosystem) SolarEnergy() float64 {
	return eco.solarEnergy
}

// Perf returns the rolling phase timings and workload.
func (eco *Ecosystem) Perf() telemetry.PerfStats {
	return eco.perfCollector.Stats()
}

// Bookmarks returns every bookmark triggered so far.
func (eco *Ecosystem) Bookmarks() []telemetry.Bookmark {
	return eco.bookmarks
}

// RecordFrame marks a redraw of an interactive view for the perf stats.
func (eco *Ecosystem) RecordFrame() {
	eco.perfCollector.RecordFrame()
}
