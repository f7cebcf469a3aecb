package metrics

import (
	"fmt"
	"math"
	"strings"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

// Confusion counts predictions per (target, prediction) pair. Rows are
// targets, columns predictions.
type Confusion struct {
	counts [][]int
}

// NewConfusion returns an empty numClasses x numClasses matrix.
func NewConfusion(numClasses int) *Confusion {
	counts := make([][]int, numClasses)
	for i := range counts {
		counts[i] = make([]int, numClasses)
	}
	return &Confusion{counts: counts}
}

// FromPredictions builds a matrix sized to the largest label seen.
func FromPredictions(targets, preds []int) (*Confusion, error) {
	if len(targets) != len(preds) {
		return nil, errors.Errorf("%d targets but %d predictions", len(targets), len(preds))
	}
	n := 0
	for i := range targets {
		if targets[i] >= n {
			n = targets[i] + 1
		}
		if preds[i] >= n {
			n = preds[i] + 1
		}
	}
	c := NewConfusion(n)
	if err := c.AddAll(targets, preds); err != nil {
		return nil, err
	}
	return c, nil
}

// Add records one prediction.
func (c *Confusion) Add(target, pred int) error {
	n := len(c.counts)
	if target < 0 || target >= n || pred < 0 || pred >= n {
		return errors.Errorf("target %d / prediction %d outside %d classes", target, pred, n)
	}
	c.counts[target][pred]++
	return nil
}

// AddAll records a batch of predictions.
func (c *Confusion) AddAll(targets, preds []int) error {
	if len(targets) != len(preds) {
		return errors.Errorf("%d targets but %d predictions", len(targets), len(preds))
	}
	for i := range targets {
		if err := c.Add(targets[i], preds[i]); err != nil {
			return err
		}
	}
	return nil
}

// NumClasses is the matrix size.
func (c *Confusion) NumClasses() int {
	return len(c.counts)
}

// Count is the number of videos of class target predicted as pred.
func (c *Confusion) Count(target, pred int) int {
	return c.counts[target][pred]
}

// Total is the number of recorded predictions.
func (c *Confusion) Total() int {
	var n int
	for _, row := range c.counts {
		for _, v := range row {
			n += v
		}
	}
	return n
}

// Accuracy is the fraction of correct predictions over all classes.
func (c *Confusion) Accuracy() float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}
	var correct int
	for i := range c.counts {
		correct += c.counts[i][i]
	}
	return float64(correct) / float64(total)
}

// PerClassAccuracy is the recall of every class: diagonal over row sum.
// Classes without targets are NaN.
func (c *Confusion) PerClassAccuracy() []float64 {
	acc := make([]float64, len(c.counts))
	for i, row := range c.counts {
		var sum int
		for _, v := range row {
			sum += v
		}
		if sum == 0 {
			acc[i] = math.NaN()
			continue
		}
		acc[i] = float64(row[i]) / float64(sum)
	}
	return acc
}

// MeanAccuracy averages PerClassAccuracy over the classes with targets.
func (c *Confusion) MeanAccuracy() float64 {
	var present []float64
	for _, a := range c.PerClassAccuracy() {
		if !math.IsNaN(a) {
			present = append(present, a)
		}
	}
	mean, err := stats.Mean(present)
	if err != nil {
		return 0
	}
	return mean
}

// Normalized divides every row by its sum. Rows without targets stay zero.
func (c *Confusion) Normalized() [][]float64 {
	out := make([][]float64, len(c.counts))
	for i, row := range c.counts {
		out[i] = make([]float64, len(row))
		var sum int
		for _, v := range row {
			sum += v
		}
		if sum == 0 {
			continue
		}
		for j, v := range row {
			out[i][j] = float64(v) / float64(sum)
		}
	}
	return out
}

// String renders the raw counts, one row per target class.
func (c *Confusion) String() string {
	width := len(fmt.Sprint(c.Total()))
	var b strings.Builder
	for _, row := range c.counts {
		for j, v := range row {
			if j > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%*d", width, v)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// FormatNormalized renders the row-normalized matrix with two decimals.
func (c *Confusion) FormatNormalized() string {
	var b strings.Builder
	for _, row := range c.Normalized() {
		for j, v := range row {
			if j > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%.2f", v)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// AccuracyScore is the fraction of predictions equal to their target.
func AccuracyScore(targets, preds []int) float64 {
	if len(targets) == 0 || len(targets) != len(preds) {
		return 0
	}
	var correct int
	for i := range targets {
		if targets[i] == preds[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(targets))
}
