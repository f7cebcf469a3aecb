package loader

import (
	"context"

	"actrec/dataset"
	"actrec/loader/pipeline"
	"actrec/sampling"

	"github.com/pkg/errors"
	torch "github.com/wangkuiyi/gotorch"
	"github.com/wangkuiyi/gotorch/vision/transforms"
	"gocv.io/x/gocv"
	"golang.org/x/exp/rand"
)

// Loader iterates over a partition in batches, in the manner of gotorch's
// imageloader: Scan advances to the next batch, Minibatch returns it. Each
// pass of Scan from start to false is one epoch drawn from the sampler.
// Clips are decoded by a pool of goroutines; tensors are only built on the
// goroutine calling Scan.
type Loader struct {
	ds        *dataset.Dataset
	device    torch.Device
	normalize *transforms.NormalizeTransformer
	clips     *pipeline.Pipeline[[]gocv.Mat]

	frames  []torch.Tensor
	labels  torch.Tensor
	targets []int
}

// New returns a loader over ds drawing epochs from sampler.
func New(ctx context.Context, ds *dataset.Dataset, sampler sampling.Sampler, batchSize, workers int, device torch.Device, seed int64) *Loader {
	l := &Loader{
		ds:        ds,
		device:    device,
		normalize: transforms.Normalize(imagenetMean, imagenetStd),
	}
	l.clips = pipeline.New[[]gocv.Mat](ctx, sampler, batchSize, workers, seed, l.decode, closeAll)
	return l
}

// Dataset is the partition being loaded.
func (l *Loader) Dataset() *dataset.Dataset {
	return l.ds
}

// NumBatches is the number of batches per epoch.
func (l *Loader) NumBatches() int {
	return l.clips.NumBatches()
}

// Scan decodes the next batch. It returns false at the end of the epoch or
// on error; check Err to tell them apart. The next call starts a new epoch.
func (l *Loader) Scan() bool {
	if !l.clips.Next() {
		return false
	}
	indices, clips := l.clips.Batch()
	l.assemble(indices, clips)
	return true
}

// Minibatch returns the current batch: one [B,3,224,224] tensor per frame
// position and the [B] class labels.
func (l *Loader) Minibatch() ([]torch.Tensor, torch.Tensor) {
	return l.frames, l.labels
}

// Targets are the class labels of the current batch.
func (l *Loader) Targets() []int {
	return l.targets
}

// Err is the error that ended the last epoch, if any.
func (l *Loader) Err() error {
	return l.clips.Err()
}

// Close stops any epoch in progress.
func (l *Loader) Close() {
	l.clips.Close()
}

func (l *Loader) decode(idx int, rng *rand.Rand) ([]gocv.Mat, error) {
	path := l.ds.Record(idx).Path
	paths, err := l.ds.FramePaths(idx, rng)
	if err != nil {
		return nil, err
	}
	frames := make([]gocv.Mat, 0, len(paths))
	for _, p := range paths {
		m, err := readFrame(p)
		if err != nil {
			closeAll(frames)
			return nil, errors.Wrapf(err, "load video %s", path)
		}
		frames = append(frames, m)
	}
	return frames, nil
}

func (l *Loader) assemble(indices []int, clips [][]gocv.Mat) {
	defer func() {
		for _, c := range clips {
			closeAll(c)
		}
	}()

	numFrames := l.ds.FramesPerSample()
	frames := make([]torch.Tensor, numFrames)
	for t := 0; t < numFrames; t++ {
		batch := make([]torch.Tensor, len(clips))
		for b, c := range clips {
			batch[b] = toTensor(c[t], l.normalize)
		}
		frames[t] = torch.Stack(batch, 0).To(l.device, torch.Float)
	}

	targets := make([]int, len(indices))
	labels := make([]int64, len(indices))
	for b, idx := range indices {
		targets[b] = l.ds.Label(idx)
		labels[b] = int64(targets[b])
	}

	l.frames = frames
	l.labels = torch.NewTensor(labels).To(l.device, torch.Long)
	l.targets = targets
}
