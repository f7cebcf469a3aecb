package sampling

import (
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

// BalancedSubset randomly keeps, for every class present in labels, as many
// indices as the rarest present class has. Kept indices are in ascending
// order.
func BalancedSubset(labels []int, rng *rand.Rand) []int {
	byClass := make(map[int][]int)
	for i, l := range labels {
		byClass[l] = append(byClass[l], i)
	}
	if len(byClass) == 0 {
		return nil
	}
	classes := make([]int, 0, len(byClass))
	min := len(labels)
	for c, idx := range byClass {
		classes = append(classes, c)
		if len(idx) < min {
			min = len(idx)
		}
	}
	sort.Ints(classes)

	var kept []int
	for _, c := range classes {
		idx := byClass[c]
		rng.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })
		kept = append(kept, idx[:min]...)
	}
	sort.Ints(kept)
	return kept
}

// ForDataset returns the sampler a partition is iterated with. The training
// partition draws plan.Budget indices per epoch, with replacement, weighted
// by inverse class frequency. Other partitions shuffle a BalancedSubset.
func ForDataset(labels []int, train bool, seed int64) (Sampler, error) {
	if len(labels) == 0 {
		return nil, ErrNoLabels
	}
	if train {
		plan, err := ComputePlan(labels)
		if err != nil {
			return nil, err
		}
		s, err := plan.Sampler(seed)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	kept := BalancedSubset(labels, rand.New(rand.NewSource(uint64(seed))))
	if len(kept) == 0 {
		return nil, errors.New("balanced subset is empty")
	}
	return NewSubsetSampler(kept, seed), nil
}
