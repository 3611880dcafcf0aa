package social

import "math/rand/v2"

// Step moves current by delta through n variations, wrapping at both ends
func Step(n, current, delta int) int {
	if n <= 0 {
		return 0
	}
	return ((current+delta)%n + n) % n
}

// Random picks a variation index. A nil rng uses the global source.
func Random(n int, rng *rand.Rand) int {
	if n <= 0 {
		return 0
	}
	if rng == nil {
		return rand.IntN(n)
	}
	return rng.IntN(n)
}
