package components

import "sort"

// Diet is an immutable set of edible species names.
// The zero value is an empty diet.
type Diet struct {
	names map[string]struct{}
}

// NewDiet builds a diet from species names. Duplicates collapse.
func NewDiet(names ...string) Diet {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return Diet{names: set}
}

// Contains reports whether the species is edible.
func (d Diet) Contains(species string) bool {
	_, ok := d.names[species]
	return ok
}

// Len returns the number of edible species.
func (d Diet) Len() int {
	return len(d.names)
}

// Names returns the edible species sorted by name.
func (d Diet) Names() []string {
	out := make([]string, 0, len(d.names))
	for n := range d.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
