package systems

// SelectWithReplacement picks meals items from pool by independent index
// draws, so the same item may come up repeatedly. When the pool holds no
// more items than meals, every item is returned once in pool order.
func SelectWithReplacement[T any](rng Rand, pool []T, meals int) []T {
	if len(pool) <= meals {
		return pool
	}

	picked := make([]T, 0, meals)
	for i := 0; i < meals; i++ {
		picked = append(picked, pool[rng.Intn(len(pool))])
	}
	return picked
}

// SelectWithoutReplacement picks meals distinct items from pool, removing
// each pick before the next draw. When the pool holds no more items than
// meals, every item is returned once in pool order.
// pool itself is left untouched.
func SelectWithoutReplacement[T any](rng Rand, pool []T, meals int) []T {
	if len(pool) <= meals {
		return pool
	}

	remaining := make([]T, len(pool))
	copy(remaining, pool)

	picked := make([]T, 0, meals)
	for i := 0; i < meals; i++ {
		idx := rng.Intn(len(remaining))
		picked = append(picked, remaining[idx])
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return picked
}
