package sampling

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSample_PicksBandContainingRoll(t *testing.T) {
	bands := []Threshold[string]{
		{UpTo: 0.25, Value: "a"},
		{UpTo: 0.75, Value: "b"},
		{UpTo: 1.00, Value: "c"},
	}

	counts := map[string]int{}
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 10000; i++ {
		counts[Sample(r, bands, "fallback")]++
	}

	assert.InDelta(t, 0.25, float64(counts["a"])/10000, 0.02)
	assert.InDelta(t, 0.50, float64(counts["b"])/10000, 0.02)
	assert.InDelta(t, 0.25, float64(counts["c"])/10000, 0.02)
	assert.Zero(t, counts["fallback"])
}

func TestSample_FallsBackPastLastBand(t *testing.T) {
	// A band table that only covers half the probability space; the other
	// half must land on fallback.
	bands := []Threshold[int]{{UpTo: 0.5, Value: 1}}

	fallbacks := 0
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 10000; i++ {
		if Sample(r, bands, 2) == 2 {
			fallbacks++
		}
	}
	assert.InDelta(t, 0.5, float64(fallbacks)/10000, 0.02)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, Clamp(0, 1, 10))
	assert.Equal(t, 10, Clamp(20, 1, 10))
	assert.Equal(t, 5, Clamp(5, 1, 10))
}
