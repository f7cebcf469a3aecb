// Package pipeline decodes the batches of a sampled epoch on a pool of
// goroutines and hands them out in sampler order.
package pipeline

import (
	"context"
	"sync"

	"actrec/sampling"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

// prefetch is how many batches may be decoded ahead of the consumer.
const prefetch = 2

// Decoder produces the item of one example index. Each worker passes its
// own rng.
type Decoder[T any] func(idx int, rng *rand.Rand) (T, error)

type batch[T any] struct {
	indices []int
	items   []T
	decoded []bool
	errs    []error
	wg      sync.WaitGroup
}

type job[T any] struct {
	b    *batch[T]
	slot int
}

// Pipeline iterates over epochs of a sampler in batches. Next advances to
// the next batch and Batch returns it; a pass of Next from the first batch
// to false is one epoch. Items returned by Batch belong to the caller;
// items the pipeline drops, on error or when stopped, are passed to
// release.
type Pipeline[T any] struct {
	ctx       context.Context
	sampler   sampling.Sampler
	batchSize int
	workers   int
	seed      int64
	decode    Decoder[T]
	release   func(T)

	epoch   int
	out     chan *batch[T]
	cancel  context.CancelFunc
	running sync.WaitGroup

	indices []int
	items   []T
	err     error
}

// New returns a pipeline; no goroutine starts before the first Next.
func New[T any](ctx context.Context, sampler sampling.Sampler, batchSize, workers int, seed int64, decode Decoder[T], release func(T)) *Pipeline[T] {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if release == nil {
		release = func(T) {}
	}
	return &Pipeline[T]{
		ctx:       ctx,
		sampler:   sampler,
		batchSize: batchSize,
		workers:   workers,
		seed:      seed,
		decode:    decode,
		release:   release,
	}
}

// NumBatches is the number of batches per epoch.
func (p *Pipeline[T]) NumBatches() int {
	return sampling.NumBatches(p.sampler.Len(), p.batchSize)
}

// Next waits for the next batch. It returns false at the end of the epoch
// or on error; check Err to tell them apart. After the end of an epoch the
// next call starts a new one. Errors are final.
func (p *Pipeline[T]) Next() bool {
	if p.err != nil {
		return false
	}
	if p.out == nil {
		p.start()
	}

	var b *batch[T]
	var ok bool
	select {
	case b, ok = <-p.out:
	case <-p.ctx.Done():
		p.fail(p.ctx.Err())
		return false
	}
	if !ok {
		if err := p.ctx.Err(); err != nil {
			p.fail(err)
			return false
		}
		p.stop()
		return false
	}
	b.wg.Wait()

	for i, err := range b.errs {
		if err != nil {
			p.releaseBatch(b)
			p.fail(errors.Wrapf(err, "example %d", b.indices[i]))
			return false
		}
	}
	p.indices, p.items = b.indices, b.items
	return true
}

// Batch returns the example indices of the current batch and their items.
func (p *Pipeline[T]) Batch() ([]int, []T) {
	return p.indices, p.items
}

// Err is the error that stopped the pipeline, if any.
func (p *Pipeline[T]) Err() error {
	return p.err
}

// Close stops the epoch in progress and waits for its goroutines.
func (p *Pipeline[T]) Close() {
	p.stop()
}

func (p *Pipeline[T]) fail(err error) {
	p.err = err
	p.indices, p.items = nil, nil
	p.stop()
}

func (p *Pipeline[T]) start() {
	ctx, cancel := context.WithCancel(p.ctx)
	p.cancel = cancel
	out := make(chan *batch[T], prefetch)
	jobs := make(chan job[T], p.batchSize*prefetch)
	p.out = out

	batches := sampling.Batches(p.sampler.Indices(), p.batchSize)
	epoch := p.epoch
	p.epoch++

	p.running.Add(p.workers + 1)
	for w := 0; w < p.workers; w++ {
		rng := rand.New(rand.NewSource(uint64(p.seed) + uint64(epoch)*uint64(p.workers) + uint64(w)))
		go func() {
			defer p.running.Done()
			p.work(ctx, jobs, rng)
		}()
	}

	go func() {
		defer p.running.Done()
		defer close(out)
		defer close(jobs)
		for _, indices := range batches {
			b := &batch[T]{
				indices: indices,
				items:   make([]T, len(indices)),
				decoded: make([]bool, len(indices)),
				errs:    make([]error, len(indices)),
			}
			b.wg.Add(len(indices))
			for slot := range indices {
				select {
				case jobs <- job[T]{b: b, slot: slot}:
				case <-ctx.Done():
					// the slots not handed out will never be decoded
					b.wg.Add(slot - len(indices))
					p.releaseBatch(b)
					return
				}
			}
			select {
			case out <- b:
			case <-ctx.Done():
				p.releaseBatch(b)
				return
			}
		}
	}()
}

func (p *Pipeline[T]) work(ctx context.Context, jobs <-chan job[T], rng *rand.Rand) {
	for j := range jobs {
		if err := ctx.Err(); err != nil {
			j.b.errs[j.slot] = err
			j.b.wg.Done()
			continue
		}
		item, err := p.decode(j.b.indices[j.slot], rng)
		if err != nil {
			j.b.errs[j.slot] = err
		} else {
			j.b.items[j.slot] = item
			j.b.decoded[j.slot] = true
		}
		j.b.wg.Done()
	}
}

// releaseBatch waits for the batch's outstanding slots and releases every
// decoded item.
func (p *Pipeline[T]) releaseBatch(b *batch[T]) {
	b.wg.Wait()
	for i, ok := range b.decoded {
		if ok {
			p.release(b.items[i])
		}
	}
}

// stop cancels the epoch, releases queued batches and waits for the
// workers and dispatcher to exit.
func (p *Pipeline[T]) stop() {
	if p.out == nil {
		return
	}
	p.cancel()
	for b := range p.out {
		p.releaseBatch(b)
	}
	p.running.Wait()
	p.out = nil
}
