package sampling

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePlanImbalanced(t *testing.T) {
	p, err := ComputePlan([]int{0, 0, 0, 1, 1, 2})
	require.NoError(t, err)

	assert.Equal(t, []int{3, 2, 1}, p.ClassCounts)
	assert.Equal(t, []float64{1. / 3, 1. / 2, 1}, p.ClassWeights)
	assert.Equal(t, []float64{1. / 3, 1. / 3, 1. / 3, 1. / 2, 1. / 2, 1}, p.SampleWeights)
	assert.Equal(t, 1, p.SamplesPerClass)
	assert.Equal(t, 3, p.NumClasses)
	assert.Equal(t, 3, p.Budget)
}

func TestComputePlanOnePerClass(t *testing.T) {
	p, err := ComputePlan([]int{0, 1, 2})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 1, 1}, p.ClassCounts)
	assert.Equal(t, []float64{1, 1, 1}, p.SampleWeights)
	assert.Equal(t, 3, p.Budget)
}

func TestComputePlanMissingClass(t *testing.T) {
	_, err := ComputePlan([]int{0, 0, 2})
	require.Error(t, err)

	var empty *EmptyClassError
	require.True(t, errors.As(err, &empty))
	assert.Equal(t, 1, empty.Class)
	assert.Equal(t, 3, empty.NumClasses)
	assert.Contains(t, err.Error(), "class 1")
}

func TestComputePlanHugeLabel(t *testing.T) {
	_, err := ComputePlan([]int{0, 1, 1 << 40})
	var empty *EmptyClassError
	require.True(t, errors.As(err, &empty))
	assert.Equal(t, 2, empty.Class)
	assert.Equal(t, 1<<40+1, empty.NumClasses)

	_, err = ComputePlan([]int{3, 0, 7, 1})
	require.True(t, errors.As(err, &empty))
	assert.Equal(t, 2, empty.Class)
	assert.Equal(t, 8, empty.NumClasses)
}

func TestComputePlanRejectsBadInput(t *testing.T) {
	_, err := ComputePlan(nil)
	assert.Equal(t, ErrNoLabels, err)

	_, err = ComputePlan([]int{0, -1, 1})
	var invalid *InvalidLabelError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, 1, invalid.Index)
	assert.Equal(t, -1, invalid.Label)
}

func TestComputePlanProperties(t *testing.T) {
	labels := []int{4, 1, 0, 3, 2, 2, 4, 4, 1, 0, 3, 3, 3, 2, 4}
	p, err := ComputePlan(labels)
	require.NoError(t, err)

	var total int
	min := p.ClassCounts[0]
	for c, n := range p.ClassCounts {
		total += n
		if n < min {
			min = n
		}
		assert.Equal(t, 1.0/float64(n), p.ClassWeights[c])
	}
	assert.Equal(t, len(labels), total)

	require.Len(t, p.SampleWeights, len(labels))
	for i, l := range labels {
		assert.Equal(t, p.ClassWeights[l], p.SampleWeights[i])
	}
	assert.Equal(t, min*p.NumClasses, p.Budget)
	assert.True(t, p.Budget >= 0)
}

func TestComputePlanIdempotent(t *testing.T) {
	labels := []int{2, 0, 1, 1, 0, 2, 2}
	a, err := ComputePlan(labels)
	require.NoError(t, err)
	b, err := ComputePlan(labels)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, []int{2, 0, 1, 1, 0, 2, 2}, labels)
}

func TestPlanSampler(t *testing.T) {
	p, err := ComputePlan([]int{0, 0, 0, 1, 1, 2})
	require.NoError(t, err)

	s, err := p.Sampler(1)
	require.NoError(t, err)
	assert.Equal(t, p.Budget, s.Len())
	assert.Len(t, s.Indices(), p.Budget)
}
