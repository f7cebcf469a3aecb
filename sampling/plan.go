package sampling

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNoLabels is returned when a plan is requested for an empty partition.
var ErrNoLabels = errors.New("no labels to sample from")

// InvalidLabelError reports a label that cannot be a class index.
type InvalidLabelError struct {
	Index int
	Label int
}

func (e *InvalidLabelError) Error() string {
	return fmt.Sprintf("label %d at position %d is not a valid class index", e.Label, e.Index)
}

// EmptyClassError reports a class index below the largest observed label
// that has no examples. Its inverse frequency is undefined. A label larger
// than the number of examples always leaves some class empty, so huge
// labels fail here without allocating per-class storage.
type EmptyClassError struct {
	Class      int
	NumClasses int
}

func (e *EmptyClassError) Error() string {
	return fmt.Sprintf("class %d of %d has no examples; remap labels or add examples before balancing", e.Class, e.NumClasses)
}

// Plan is an inverse class frequency resampling scheme for one partition.
type Plan struct {
	ClassCounts     []int
	ClassWeights    []float64
	SampleWeights   []float64
	NumClasses      int
	SamplesPerClass int
	// Budget is the number of draws per epoch: the rarest class count times
	// the number of classes.
	Budget int
}

// ComputePlan derives class counts, inverse frequency weights and the
// per-epoch sampling budget from a partition's labels. Classes are
// 0..max(labels); every one of them must have at least one example.
func ComputePlan(labels []int) (Plan, error) {
	if len(labels) == 0 {
		return Plan{}, ErrNoLabels
	}

	maxLabel := 0
	for i, l := range labels {
		if l < 0 {
			return Plan{}, &InvalidLabelError{Index: i, Label: l}
		}
		if l > maxLabel {
			maxLabel = l
		}
	}
	numClasses := maxLabel + 1
	if numClasses > len(labels) {
		// more classes than examples: name the first empty one without
		// allocating a count per class
		return Plan{}, &EmptyClassError{Class: firstMissing(labels), NumClasses: numClasses}
	}

	counts := make([]int, numClasses)
	for _, l := range labels {
		counts[l]++
	}

	perClass := counts[0]
	for c, n := range counts {
		if n == 0 {
			return Plan{}, &EmptyClassError{Class: c, NumClasses: numClasses}
		}
		if n < perClass {
			perClass = n
		}
	}

	classWeights := make([]float64, numClasses)
	for c, n := range counts {
		classWeights[c] = 1. / float64(n)
	}

	sampleWeights := make([]float64, len(labels))
	for i, l := range labels {
		sampleWeights[i] = classWeights[l]
	}

	return Plan{
		ClassCounts:     counts,
		ClassWeights:    classWeights,
		SampleWeights:   sampleWeights,
		NumClasses:      numClasses,
		SamplesPerClass: perClass,
		Budget:          perClass * numClasses,
	}, nil
}

// firstMissing is the smallest non-negative integer not in labels. It is at
// most len(labels).
func firstMissing(labels []int) int {
	present := make([]bool, len(labels)+1)
	for _, l := range labels {
		if l < len(present) {
			present[l] = true
		}
	}
	for c, ok := range present {
		if !ok {
			return c
		}
	}
	return len(labels)
}

// Sampler returns a with-replacement sampler drawing Budget indices per
// epoch according to the plan's sample weights.
func (p Plan) Sampler(seed int64) (*WeightedSampler, error) {
	return NewWeightedSampler(p.SampleWeights, p.Budget, seed)
}
