package sampling

import (
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Sampler yields the example indices of one epoch.
type Sampler interface {
	Indices() []int
	Len() int
}

// WeightedSampler draws indices independently, with replacement, with
// probability proportional to their weight.
type WeightedSampler struct {
	numSamples int
	dist       distuv.Categorical
}

// NewWeightedSampler validates the weights and builds a sampler drawing
// numSamples indices per epoch.
func NewWeightedSampler(weights []float64, numSamples int, seed int64) (*WeightedSampler, error) {
	if len(weights) == 0 {
		return nil, errors.New("weighted sampler needs at least one weight")
	}
	if numSamples < 0 {
		return nil, errors.Errorf("number of samples must be non-negative, got %d", numSamples)
	}
	var total float64
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return nil, errors.Errorf("invalid weight %v at index %d", w, i)
		}
		total += w
	}
	if total == 0 {
		return nil, errors.New("weights sum to zero")
	}

	w := make([]float64, len(weights))
	copy(w, weights)
	src := rand.NewSource(uint64(seed))
	return &WeightedSampler{
		numSamples: numSamples,
		dist:       distuv.NewCategorical(w, src),
	}, nil
}

// Indices draws a fresh epoch of indices.
func (s *WeightedSampler) Indices() []int {
	idx := make([]int, s.numSamples)
	for i := range idx {
		idx[i] = int(s.dist.Rand())
	}
	return idx
}

// Len is the number of indices per epoch.
func (s *WeightedSampler) Len() int {
	return s.numSamples
}

// RandomSampler shuffles a fixed set of indices every epoch.
type RandomSampler struct {
	n       int
	indices []int
	rng     *rand.Rand
}

// NewRandomSampler returns an unweighted shuffling sampler over n examples.
func NewRandomSampler(n int, seed int64) *RandomSampler {
	return &RandomSampler{n: n, rng: rand.New(rand.NewSource(uint64(seed)))}
}

// NewSubsetSampler shuffles only the given indices.
func NewSubsetSampler(indices []int, seed int64) *RandomSampler {
	s := NewRandomSampler(len(indices), seed)
	s.indices = append([]int(nil), indices...)
	return s
}

// Indices returns a new permutation.
func (s *RandomSampler) Indices() []int {
	perm := s.rng.Perm(s.n)
	if s.indices != nil {
		for i, p := range perm {
			perm[i] = s.indices[p]
		}
	}
	return perm
}

// Len is the number of indices per epoch.
func (s *RandomSampler) Len() int {
	return s.n
}

// Batches splits indices into consecutive batches of batchSize; the last
// batch holds the remainder.
func Batches(indices []int, batchSize int) [][]int {
	if batchSize <= 0 {
		batchSize = 1
	}
	batches := make([][]int, 0, NumBatches(len(indices), batchSize))
	for start := 0; start < len(indices); start += batchSize {
		end := start + batchSize
		if end > len(indices) {
			end = len(indices)
		}
		batches = append(batches, indices[start:end])
	}
	return batches
}

// NumBatches is ceil(n / batchSize).
func NumBatches(n, batchSize int) int {
	if batchSize <= 0 {
		batchSize = 1
	}
	return (n + batchSize - 1) / batchSize
}
