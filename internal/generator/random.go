package generator

import (
	"math/rand/v2"
	"time"
)

// newRand returns the run's random source. Every sampling decision in a
// run draws from it, so a fixed seed replays the same dataset.
func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d))
}

// newIDRand returns the source for sprint and fix version IDs. It is a
// separate stream so IDs do not shift the run's sampling sequence.
func newIDRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed^0xda942042e4dd58b5, seed))
}

// between returns a uniform integer in [lo, hi].
func between(r *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.IntN(hi-lo+1)
}

// chance reports true with probability p.
func chance(r *rand.Rand, p float64) bool {
	return r.Float64() < p
}

// uniform returns a float in [lo, hi).
func uniform(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

func choice[T any](r *rand.Rand, items []T) T {
	return items[r.IntN(len(items))]
}

// sample returns k distinct items in random order. k is clamped to
// len(items).
func sample[T any](r *rand.Rand, items []T, k int) []T {
	if k > len(items) {
		k = len(items)
	}
	out := make([]T, 0, k)
	for _, i := range r.Perm(len(items))[:k] {
		out = append(out, items[i])
	}
	return out
}

func daysAgo(now time.Time, r *rand.Rand, lo, hi int) time.Time {
	return now.Add(-time.Duration(between(r, lo, hi)) * 24 * time.Hour)
}

func hoursAgo(now time.Time, r *rand.Rand, lo, hi int) time.Time {
	return now.Add(-time.Duration(between(r, lo, hi)) * time.Hour)
}
