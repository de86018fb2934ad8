package systems

// scriptedRand replays fixed draws so tests can pin every stochastic branch.
// Running out of draws panics, which also catches unexpected extra rolls.
type scriptedRand struct {
	floats []float64
	ints   []int
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		panic("scriptedRand: no Float64 draws left")
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptedRand) Intn(n int) int {
	if len(r.ints) == 0 {
		panic("scriptedRand: no Intn draws left")
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	if v >= n {
		panic("scriptedRand: scripted index out of range")
	}
	return v
}

// repeat returns n copies of v.
func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
