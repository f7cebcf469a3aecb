package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfusion(t *testing.T) {
	targets := []int{0, 0, 0, 1, 1, 2}
	preds := []int{0, 1, 0, 1, 1, 0}

	c, err := FromPredictions(targets, preds)
	require.NoError(t, err)
	require.Equal(t, 3, c.NumClasses())

	assert.Equal(t, 2, c.Count(0, 0))
	assert.Equal(t, 1, c.Count(0, 1))
	assert.Equal(t, 2, c.Count(1, 1))
	assert.Equal(t, 1, c.Count(2, 0))
	assert.Equal(t, 6, c.Total())

	assert.InDelta(t, 4./6, c.Accuracy(), 1e-12)
	acc := c.PerClassAccuracy()
	assert.InDelta(t, 2./3, acc[0], 1e-12)
	assert.InDelta(t, 1, acc[1], 1e-12)
	assert.InDelta(t, 0, acc[2], 1e-12)
	assert.InDelta(t, (2./3+1+0)/3, c.MeanAccuracy(), 1e-12)

	norm := c.Normalized()
	assert.InDelta(t, 1./3, norm[0][1], 1e-12)
	assert.InDelta(t, 1, norm[2][0], 1e-12)

	assert.Equal(t, "2 1 0\n0 2 0\n1 0 0\n", c.String())
	assert.Equal(t, "0.67 0.33 0.00\n0.00 1.00 0.00\n1.00 0.00 0.00\n", c.FormatNormalized())
}

func TestConfusionAbsentClass(t *testing.T) {
	c := NewConfusion(3)
	require.NoError(t, c.AddAll([]int{0, 2}, []int{0, 1}))

	acc := c.PerClassAccuracy()
	assert.True(t, math.IsNaN(acc[1]))
	assert.InDelta(t, 0.5, c.MeanAccuracy(), 1e-12)
	assert.Equal(t, []float64{0, 0, 0}, c.Normalized()[1])
}

func TestConfusionErrors(t *testing.T) {
	_, err := FromPredictions([]int{0}, []int{0, 1})
	assert.Error(t, err)

	c := NewConfusion(2)
	assert.Error(t, c.Add(2, 0))
	assert.Error(t, c.Add(0, -1))

	empty := NewConfusion(2)
	assert.Equal(t, 0., empty.Accuracy())
	assert.Equal(t, 0., empty.MeanAccuracy())
}

func TestAccuracyScore(t *testing.T) {
	assert.Equal(t, 0.75, AccuracyScore([]int{1, 2, 3, 4}, []int{1, 2, 3, 0}))
	assert.Equal(t, 0., AccuracyScore(nil, nil))
}
