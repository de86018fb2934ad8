package telemetry

import (
	"log/slog"
	"time"
)

// Phase identifies one step of a lake tick.
type Phase int

const (
	PhasePlants Phase = iota
	PhaseHerbivores
	PhaseCarnivores
	PhaseSweep
	PhaseAging
	PhaseTelemetry
	phaseCount
)

var phaseNames = [phaseCount]string{"plants", "herbivores", "carnivores", "sweep", "aging", "telemetry"}

func (p Phase) String() string {
	if p < 0 || p >= phaseCount {
		return "unknown"
	}
	return phaseNames[p]
}

// Phases lists the tick phases in execution order.
var Phases = [phaseCount]Phase{PhasePlants, PhaseHerbivores, PhaseCarnivores, PhaseSweep, PhaseAging, PhaseTelemetry}

// PhaseLoad counts the work a phase did in one tick.
type PhaseLoad struct {
	Acted  int // living organisms that took their turn
	Births int
	Meals  int // bites in the herbivore phase, kills in the carnivore phase
	Deaths int // organisms removed by the sweep
}

func (l *PhaseLoad) add(o PhaseLoad) {
	l.Acted += o.Acted
	l.Births += o.Births
	l.Meals += o.Meals
	l.Deaths += o.Deaths
}

type tickSample struct {
	elapsed time.Duration
	spent   [phaseCount]time.Duration
	load    [phaseCount]PhaseLoad
}

// PerfCollector keeps per-phase timings and workload over the last window of
// ticks.
type PerfCollector struct {
	ring   []tickSample
	next   int
	filled int

	cur        tickSample
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector keeps the last window ticks; a window below 1 falls back to 60.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{ring: make([]tickSample, window)}
}

func (p *PerfCollector) StartTick() {
	p.cur = tickSample{}
	p.inPhase = false
	p.tickStart = time.Now()
}

// StartPhase closes the running phase, if any, and opens the next one.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phase = phase
	p.phaseStart = now
	p.inPhase = true
}

// Count adds workload to the running phase. It is a no-op between ticks.
func (p *PerfCollector) Count(load PhaseLoad) {
	if !p.inPhase {
		return
	}
	p.cur.load[p.phase].add(load)
}

func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.cur.elapsed = now.Sub(p.tickStart)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	if p.filled < len(p.ring) {
		p.filled++
	}
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase {
		p.cur.spent[p.phase] += now.Sub(p.phaseStart)
		p.inPhase = false
	}
}

// RecordFrame marks one redraw of the terminal view.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PhaseRate is the average workload of a phase per tick.
type PhaseRate struct {
	Acted  float64
	Births float64
	Meals  float64
	Deaths float64
}

// PerfStats summarizes the collector window.
type PerfStats struct {
	Ticks          int
	AvgTick        time.Duration
	MaxTick        time.Duration
	TicksPerSecond float64

	Share [phaseCount]float64 // percent of tick time spent in each phase
	Rate  [phaseCount]PhaseRate

	FrameDuration time.Duration
	FPS           float64
}

// Births returns the average number of newborns per tick over all phases.
func (s PerfStats) Births() float64 {
	var n float64
	for _, r := range s.Rate {
		n += r.Births
	}
	return n
}

func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{Ticks: p.filled, FrameDuration: p.frame}
	if p.frame > 0 {
		s.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.filled == 0 {
		return s
	}

	var total time.Duration
	var spent [phaseCount]time.Duration
	var load [phaseCount]PhaseLoad
	for _, sample := range p.ring[:p.filled] {
		total += sample.elapsed
		s.MaxTick = max(s.MaxTick, sample.elapsed)
		for _, ph := range Phases {
			spent[ph] += sample.spent[ph]
			load[ph].add(sample.load[ph])
		}
	}

	n := float64(p.filled)
	s.AvgTick = total / time.Duration(p.filled)
	if s.AvgTick > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTick)
	}
	for _, ph := range Phases {
		if total > 0 {
			s.Share[ph] = float64(spent[ph]) / float64(total) * 100
		}
		s.Rate[ph] = PhaseRate{
			Acted:  float64(load[ph].Acted) / n,
			Births: float64(load[ph].Births) / n,
			Meals:  float64(load[ph].Meals) / n,
			Deaths: float64(load[ph].Deaths) / n,
		}
	}
	return s
}

// LogStats logs timing and the per-tick workload of the feeding phases.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTick.Microseconds(),
		"max_tick_us", s.MaxTick.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
		"bites_per_tick", s.Rate[PhaseHerbivores].Meals,
		"kills_per_tick", s.Rate[PhaseCarnivores].Meals,
		"births_per_tick", s.Births(),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for _, ph := range Phases {
		if s.Share[ph] > 0.1 {
			attrs = append(attrs, ph.String()+"_pct", float64(int(s.Share[ph]*10))/10)
		}
	}
	slog.Info("perf", attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd       int     `csv:"window_end"`
	AvgTickUS       int64   `csv:"avg_tick_us"`
	MaxTickUS       int64   `csv:"max_tick_us"`
	TicksPerSec     float64 `csv:"ticks_per_sec"`
	PlantsPct       float64 `csv:"plants_pct"`
	HerbivoresPct   float64 `csv:"herbivores_pct"`
	CarnivoresPct   float64 `csv:"carnivores_pct"`
	SweepPct        float64 `csv:"sweep_pct"`
	AgingPct        float64 `csv:"aging_pct"`
	TelemetryPct    float64 `csv:"telemetry_pct"`
	PlantsActed     float64 `csv:"plants_acted"`
	HerbivoresActed float64 `csv:"herbivores_acted"`
	CarnivoresActed float64 `csv:"carnivores_acted"`
	Births          float64 `csv:"births"`
	Bites           float64 `csv:"bites"`
	Kills           float64 `csv:"kills"`
	Removed         float64 `csv:"removed"`
}

// ToCSV flattens the stats; workload columns are per-tick averages.
func (s PerfStats) ToCSV(windowEnd int) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:       windowEnd,
		AvgTickUS:       s.AvgTick.Microseconds(),
		MaxTickUS:       s.MaxTick.Microseconds(),
		TicksPerSec:     s.TicksPerSecond,
		PlantsPct:       s.Share[PhasePlants],
		HerbivoresPct:   s.Share[PhaseHerbivores],
		CarnivoresPct:   s.Share[PhaseCarnivores],
		SweepPct:        s.Share[PhaseSweep],
		AgingPct:        s.Share[PhaseAging],
		TelemetryPct:    s.Share[PhaseTelemetry],
		PlantsActed:     s.Rate[PhasePlants].Acted,
		HerbivoresActed: s.Rate[PhaseHerbivores].Acted,
		CarnivoresActed: s.Rate[PhaseCarnivores].Acted,
		Births:          s.Births(),
		Bites:           s.Rate[PhaseHerbivores].Meals,
		Kills:           s.Rate[PhaseCarnivores].Meals,
		Removed:         s.Rate[PhaseSweep].Deaths,
	}
}
