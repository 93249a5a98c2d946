// Package sampling implements recall-weighted sampling without replacement
// for building quiz queues.
//
// A strict sort by recall probability makes a few very-low-recall words
// dominate every session when gaps are large. Sampling with soft weights
// keeps the bias toward forgettable words while still surfacing
// medium-difficulty ones.
package sampling

import (
	"math"
	"math/rand"
)

const (
	// DefaultBeta shapes the (1-p)^beta weight. Values above 1 focus
	// selection on low-recall words, values below 1 flatten toward uniform.
	DefaultBeta = 1.4

	// Recall probabilities are clamped into [PMin, PMax] before weighting so
	// no word ever has exactly zero or total weight.
	PMin = 0.01
	PMax = 0.99
)

// ByRecall draws up to count indices from recalls without replacement, each
// draw proportional to weight (1-p)^beta where p is the clamped recall
// probability. The returned slice preserves draw order: the first element is
// the highest-priority pick. Deterministic for a given rng.
func ByRecall(recalls []float64, count int, beta float64, rng *rand.Rand) []int {
	if count <= 0 || len(recalls) == 0 {
		return nil
	}
	if count > len(recalls) {
		count = len(recalls)
	}

	indices := make([]int, len(recalls))
	weights := make([]float64, len(recalls))
	for i, p := range recalls {
		indices[i] = i
		weights[i] = Weight(p, beta)
	}

	sampled := make([]int, 0, count)
	for len(indices) > 0 && len(sampled) < count {
		total := 0.0
		for _, w := range weights {
			total += w
		}
		if total <= 0 {
			// Floating-point degeneracy: weights have collapsed, append the
			// remainder in current order.
			sampled = append(sampled, indices...)
			break
		}

		r := rng.Float64() * total
		idx := 0
		for ; idx < len(weights); idx++ {
			if r <= weights[idx] {
				break
			}
			r -= weights[idx]
		}
		if idx >= len(indices) {
			idx = len(indices) - 1
		}

		sampled = append(sampled, indices[idx])
		indices = append(indices[:idx], indices[idx+1:]...)
		weights = append(weights[:idx], weights[idx+1:]...)
	}

	if len(sampled) > count {
		sampled = sampled[:count]
	}
	return sampled
}

// Weight returns the sampling weight for a recall probability p, clamped to
// [PMin, PMax]: lower recall means higher weight.
func Weight(p, beta float64) float64 {
	if p < PMin {
		p = PMin
	}
	if p > PMax {
		p = PMax
	}
	return math.Pow(1-p, beta)
}
