// Package telemetry provides ecosystem health tracking, bookmarking, and reporting.
package telemetry

import "github.com/pthm-cable/simlac/components"

// EventType identifies telemetry events.
type EventType uint8

const (
	EventBirth EventType = iota
	EventDeath
	EventPhotosynthesis
	EventBite
	EventKill
)

// Event represents a single telemetry event.
type Event struct {
	Type    EventType
	Tick    int
	Kind    components.Kind // kind of the acting organism
	Species string          // species of the acting organism

	// Optional fields depending on event type
	Target string  // eaten species for bite/kill events
	Amount float64 // energy moved, or age at death for death events
}

// NewBirthEvent creates a birth event for one newborn.
func NewBirthEvent(tick int, kind components.Kind, species string) Event {
	return Event{
		Type:    EventBirth,
		Tick:    tick,
		Kind:    kind,
		Species: species,
	}
}

// NewDeathEvent creates a death event. The organism's age is carried in Amount.
func NewDeathEvent(tick int, kind components.Kind, species string, age int) Event {
	return Event{
		Type:    EventDeath,
		Tick:    tick,
		Kind:    kind,
		Species: species,
		Amount:  float64(age),
	}
}

// NewPhotosynthesisEvent records the solar energy captured by one plant.
func NewPhotosynthesisEvent(tick int, species string, captured float64) Event {
	return Event{
		Type:    EventPhotosynthesis,
		Tick:    tick,
		Kind:    components.KindPlant,
		Species: species,
		Amount:  captured,
	}
}

// NewBiteEvent creates a grazing event (herbivore biting a plant).
func NewBiteEvent(tick int, herbivore, plant string, eaten float64) Event {
	return Event{
		Type:    EventBite,
		Tick:    tick,
		Kind:    components.KindHerbivore,
		Species: herbivore,
		Target:  plant,
		Amount:  eaten,
	}
}

// NewKillEvent creates a predation event (carnivore devouring a herbivore).
func NewKillEvent(tick int, carnivore, herbivore string, devoured float64) Event {
	return Event{
		Type:    EventKill,
		Tick:    tick,
		Kind:    components.KindCarnivore,
		Species: carnivore,
		Target:  herbivore,
		Amount:  devoured,
	}
}

// preyKind returns the kind eaten in a feeding event.
func (e Event) preyKind() components.Kind {
	if e.Type == EventKill {
		return components.KindHerbivore
	}
	return components.KindPlant
}
