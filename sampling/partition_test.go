package sampling

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func countLabels(labels, indices []int, numClasses int) []int {
	counts := make([]int, numClasses)
	for _, i := range indices {
		counts[labels[i]]++
	}
	return counts
}

func TestBalancedSubset(t *testing.T) {
	labels := []int{0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 2, 2, 2, 2, 2}
	kept := BalancedSubset(labels, rand.New(rand.NewSource(1)))

	require.Len(t, kept, 9)
	assert.Equal(t, []int{3, 3, 3}, countLabels(labels, kept, 3))
	for i := 1; i < len(kept); i++ {
		assert.True(t, kept[i-1] < kept[i], "kept indices out of order: %v", kept)
	}
	// the rarest class is kept whole
	assert.Subset(t, kept, []int{7, 8, 9})
}

func TestBalancedSubsetSkipsAbsentClasses(t *testing.T) {
	labels := []int{0, 0, 2, 2, 2}
	kept := BalancedSubset(labels, rand.New(rand.NewSource(1)))
	assert.Equal(t, []int{2, 0, 2}, countLabels(labels, kept, 3))

	assert.Empty(t, BalancedSubset(nil, rand.New(rand.NewSource(1))))
}

func TestForDatasetTrain(t *testing.T) {
	labels := []int{0, 0, 0, 0, 0, 0, 1, 1, 2, 2, 2}
	s, err := ForDataset(labels, true, 5)
	require.NoError(t, err)

	ws, ok := s.(*WeightedSampler)
	require.True(t, ok, "training partition should be resampled, got %T", s)
	p, err := ComputePlan(labels)
	require.NoError(t, err)
	assert.Equal(t, p.Budget, ws.Len())
	assert.Equal(t, 6, ws.Len())

	idx := ws.Indices()
	require.Len(t, idx, 6)
	for _, i := range idx {
		assert.True(t, i >= 0 && i < len(labels))
	}
}

func TestForDatasetEval(t *testing.T) {
	labels := []int{0, 0, 0, 0, 0, 0, 1, 1, 2, 2, 2}
	s, err := ForDataset(labels, false, 5)
	require.NoError(t, err)

	_, ok := s.(*RandomSampler)
	require.True(t, ok, "evaluation partitions should be shuffled, got %T", s)
	require.Equal(t, 6, s.Len())

	first := s.Indices()
	assert.Equal(t, []int{2, 2, 2}, countLabels(labels, first, 3))
	// every epoch visits the same balanced subset, reordered
	assert.ElementsMatch(t, first, s.Indices())
}

func TestForDatasetErrors(t *testing.T) {
	_, err := ForDataset(nil, true, 1)
	assert.Equal(t, ErrNoLabels, err)
	_, err = ForDataset(nil, false, 1)
	assert.Equal(t, ErrNoLabels, err)

	_, err = ForDataset([]int{0, 2}, true, 1)
	var empty *EmptyClassError
	require.True(t, errors.As(err, &empty))
	assert.Equal(t, 1, empty.Class)

	// the missing class does not matter without resampling
	_, err = ForDataset([]int{0, 2}, false, 1)
	assert.NoError(t, err)
}

func TestSubsetSamplerPermutesSubset(t *testing.T) {
	s := NewSubsetSampler([]int{4, 9, 11}, 3)
	assert.Equal(t, 3, s.Len())
	assert.ElementsMatch(t, []int{4, 9, 11}, s.Indices())
}
