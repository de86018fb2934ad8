package systems

// Rand is the random source threaded through every stochastic step of a tick.
// *math/rand.Rand satisfies it; tests substitute scripted sources.
type Rand interface {
	// Float64 returns a uniform draw in [0, 1).
	Float64() float64
	// Intn returns a uniform draw in [0, n).
	Intn(n int) int
}
