package telemetry

import (
	"sort"

	"github.com/pthm-cable/simlac/components"
)

// SpeciesStats is one species' activity over a stats window.
type SpeciesStats struct {
	WindowEnd int    `csv:"window_end"`
	Kind      string `csv:"kind"`
	Species   string `csv:"species"`

	// Population at window end
	Count  int     `csv:"count"`
	Energy float64 `csv:"energy"`

	// Events during window
	Births       int     `csv:"births"`
	Deaths       int     `csv:"deaths"`
	MeanDeathAge float64 `csv:"mean_death_age"`
	Captured     float64 `csv:"captured"` // solar energy (plants) or food energy (foragers)
	Meals        int     `csv:"meals"`
	TimesEaten   int     `csv:"times_eaten"`
	EnergyLost   float64 `csv:"energy_lost"` // energy taken by foragers
}

type speciesKey struct {
	kind components.Kind
	name string
}

// speciesTally accumulates events for one species within a window.
type speciesTally struct {
	births      int
	deaths      int
	deathAgeSum float64
	captured    float64
	meals       int
	timesEaten  int
	energyLost  float64
}

// SpeciesLedger tracks per-species lifetime statistics within a window.
// Species names are only unique within a trophic layer, so entries are keyed
// by kind and name.
type SpeciesLedger struct {
	tallies map[speciesKey]*speciesTally
}

// NewSpeciesLedger creates an empty ledger.
func NewSpeciesLedger() *SpeciesLedger {
	return &SpeciesLedger{tallies: make(map[speciesKey]*speciesTally)}
}

func (l *SpeciesLedger) tally(kind components.Kind, name string) *speciesTally {
	key := speciesKey{kind, name}
	t := l.tallies[key]
	if t == nil {
		t = &speciesTally{}
		l.tallies[key] = t
	}
	return t
}

// Record folds one event into the ledger.
func (l *SpeciesLedger) Record(ev Event) {
	switch ev.Type {
	case EventBirth:
		l.tally(ev.Kind, ev.Species).births++
	case EventDeath:
		t := l.tally(ev.Kind, ev.Species)
		t.deaths++
		t.deathAgeSum += ev.Amount
	case EventPhotosynthesis:
		l.tally(ev.Kind, ev.Species).captured += ev.Amount
	case EventBite, EventKill:
		eater := l.tally(ev.Kind, ev.Species)
		eater.meals++
		eater.captured += ev.Amount
		eaten := l.tally(ev.preyKind(), ev.Target)
		eaten.timesEaten++
		eaten.energyLost += ev.Amount
	}
}

// Flush produces one row per species that was alive at window end or had
// any activity during the window, then resets the ledger. Rows are ordered by
// kind, then species name.
func (l *SpeciesLedger) Flush(windowEnd int, summary Summary) []SpeciesStats {
	rows := make(map[speciesKey]*SpeciesStats)
	row := func(key speciesKey) *SpeciesStats {
		r := rows[key]
		if r == nil {
			r = &SpeciesStats{WindowEnd: windowEnd, Kind: key.kind.String(), Species: key.name}
			rows[key] = r
		}
		return r
	}

	for _, kind := range components.Kinds {
		for _, sp := range summary.Layer(kind).Species {
			r := row(speciesKey{kind, sp.Name})
			r.Count = sp.Count
			r.Energy = sp.Energy
		}
	}

	for key, t := range l.tallies {
		r := row(key)
		r.Births = t.births
		r.Deaths = t.deaths
		if t.deaths > 0 {
			r.MeanDeathAge = t.deathAgeSum / float64(t.deaths)
		}
		r.Captured = t.captured
		r.Meals = t.meals
		r.TimesEaten = t.timesEaten
		r.EnergyLost = t.energyLost
	}

	keys := make([]speciesKey, 0, len(rows))
	for key := range rows {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].kind != keys[j].kind {
			return keys[i].kind < keys[j].kind
		}
		return keys[i].name < keys[j].name
	})

	out := make([]SpeciesStats, 0, len(keys))
	for _, key := range keys {
		out = append(out, *rows[key])
	}

	l.tallies = make(map[speciesKey]*speciesTally)
	return out
}

// Count returns the number of species with activity in the current window.
func (l *SpeciesLedger) Count() int {
	return len(l.tallies)
}
