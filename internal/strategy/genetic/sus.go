package genetic

import "math/rand"

// rouletteEntry pairs a non-negative selection weight with the population
// index it represents.
type rouletteEntry struct {
	weight float64
	index  int
}

// stochasticUniversalSampling draws n indices from roulette with
// replacement using a single evenly-spaced sweep (spec.md §4.J). All
// weights must be >= 0 and their sum > 0; callers enforce the preconditions
// spec.md leaves as the caller's responsibility.
//
// Grounded verbatim on original_source/src/strategies/genetic/mod.rs's
// stochastic_universal_sampling.
func stochasticUniversalSampling(roulette []rouletteEntry, n int, rng *rand.Rand) []int {
	if len(roulette) == 0 {
		panic("genetic: stochasticUniversalSampling given an empty roulette")
	}
	if n == 0 {
		panic("genetic: stochasticUniversalSampling given n == 0")
	}

	total := 0.0
	for _, e := range roulette {
		total += e.weight
	}
	if total <= 0 {
		panic("genetic: stochasticUniversalSampling given a roulette with non-positive total weight")
	}

	distance := total / float64(n)
	start := rng.Float64() * distance

	selected := make([]int, 0, n)
	currentSum := 0.0
	currentIndex := 0

	for i := 0; i < n; i++ {
		pointer := start + float64(i)*distance

		for currentIndex < len(roulette) && currentSum < pointer {
			currentSum += roulette[currentIndex].weight
			currentIndex++
		}

		switch {
		case currentIndex == 0:
			selected = append(selected, roulette[0].index)
		case currentIndex <= len(roulette):
			selected = append(selected, roulette[currentIndex-1].index)
		default:
			selected = append(selected, roulette[len(roulette)-1].index)
		}
	}

	return selected
}
