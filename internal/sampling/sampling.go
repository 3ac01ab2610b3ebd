// Package sampling holds small generic helpers: a cumulative threshold table
// lookup shared by the fixed-probability draws in internal/triage and
// internal/specialist, and a defensive bounds clamp used by
// internal/director's interval draw.
package sampling

import (
	"math/rand"

	"golang.org/x/exp/constraints"
)

// Threshold is one band of a cumulative-probability table: Value is chosen
// when a uniform draw falls below UpTo and above every earlier band's UpTo.
type Threshold[T any] struct {
	UpTo  float64
	Value T
}

// Sample draws a uniform float from r and returns the first threshold band
// it falls under, or fallback if roundoff carries the draw past the last
// band (bands are expected to end at 1.0).
func Sample[T any](r *rand.Rand, bands []Threshold[T], fallback T) T {
	roll := r.Float64()
	for _, b := range bands {
		if roll < b.UpTo {
			return b.Value
		}
	}
	return fallback
}

// Clamp bounds v to [lo, hi], guarding against a draw landing exactly on a
// boundary from pushing a scaled duration outside its intended range.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
