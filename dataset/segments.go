package dataset

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

// SegmentIndices picks the frame offsets, relative to a record's first
// frame, of a clip made of numSegments segments of framesPerSegment
// consecutive frames each. The record is split into numSegments equal
// spans; test mode takes each span's center, otherwise a random start
// within the span is drawn from rng.
func SegmentIndices(numFrames, numSegments, framesPerSegment int, testMode bool, rng *rand.Rand) ([]int, error) {
	if numSegments <= 0 || framesPerSegment <= 0 {
		return nil, errors.Errorf("segments and frames per segment must be positive, got %d and %d", numSegments, framesPerSegment)
	}
	if numFrames < numSegments*framesPerSegment {
		return nil, errors.Errorf("%d frames cannot hold %d segments of %d frames", numFrames, numSegments, framesPerSegment)
	}

	starts := make([]int, numSegments)
	if testMode {
		distance := float64(numFrames-framesPerSegment+1) / float64(numSegments)
		for k := range starts {
			starts[k] = int(distance/2 + distance*float64(k))
		}
	} else {
		span := (numFrames - framesPerSegment + 1) / numSegments
		for k := range starts {
			starts[k] = k*span + rng.Intn(span)
		}
	}

	indices := make([]int, 0, numSegments*framesPerSegment)
	for _, s := range starts {
		for j := 0; j < framesPerSegment; j++ {
			indices = append(indices, s+j)
		}
	}
	return indices, nil
}
