package sampling

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightedSamplerInRange(t *testing.T) {
	s, err := NewWeightedSampler([]float64{0.5, 0.25, 0.25}, 100, 7)
	require.NoError(t, err)

	idx := s.Indices()
	require.Len(t, idx, 100)
	for _, i := range idx {
		assert.True(t, i >= 0 && i < 3, "index %d out of range", i)
	}
}

func TestWeightedSamplerSeeded(t *testing.T) {
	w := []float64{1, 2, 3, 4}
	a, err := NewWeightedSampler(w, 50, 42)
	require.NoError(t, err)
	b, err := NewWeightedSampler(w, 50, 42)
	require.NoError(t, err)

	assert.Equal(t, a.Indices(), b.Indices())
}

func TestWeightedSamplerBalancesClasses(t *testing.T) {
	// 90 examples of class 0, 10 of class 1.
	labels := make([]int, 100)
	for i := 90; i < 100; i++ {
		labels[i] = 1
	}
	p, err := ComputePlan(labels)
	require.NoError(t, err)

	s, err := NewWeightedSampler(p.SampleWeights, 20000, 3)
	require.NoError(t, err)

	var rare int
	for _, i := range s.Indices() {
		if labels[i] == 1 {
			rare++
		}
	}
	frac := float64(rare) / 20000
	assert.InDelta(t, 0.5, frac, 0.03)
}

func TestWeightedSamplerZeroWeightNeverDrawn(t *testing.T) {
	s, err := NewWeightedSampler([]float64{0, 1, 0}, 200, 11)
	require.NoError(t, err)
	for _, i := range s.Indices() {
		require.Equal(t, 1, i)
	}
}

func TestWeightedSamplerRejectsBadWeights(t *testing.T) {
	for _, w := range [][]float64{
		nil,
		{0, 0},
		{1, -1},
		{1, math.NaN()},
		{math.Inf(1), 1},
	} {
		_, err := NewWeightedSampler(w, 10, 0)
		assert.Error(t, err, "weights %v", w)
	}

	_, err := NewWeightedSampler([]float64{1}, -1, 0)
	assert.Error(t, err)
}

func TestRandomSamplerPermutes(t *testing.T) {
	s := NewRandomSampler(10, 5)
	require.Equal(t, 10, s.Len())

	idx := s.Indices()
	require.Len(t, idx, 10)
	seen := make(map[int]bool)
	for _, i := range idx {
		seen[i] = true
	}
	assert.Len(t, seen, 10)
}

func TestBatches(t *testing.T) {
	b := Batches([]int{0, 1, 2, 3, 4, 5, 6}, 3)
	assert.Equal(t, [][]int{{0, 1, 2}, {3, 4, 5}, {6}}, b)

	assert.Empty(t, Batches(nil, 4))
	assert.Equal(t, 3, NumBatches(7, 3))
	assert.Equal(t, 2, NumBatches(6, 3))
	assert.Equal(t, 0, NumBatches(0, 3))
}
