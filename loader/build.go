package loader

import (
	"context"

	"actrec/config"
	"actrec/dataset"
	"actrec/sampling"
	"actrec/util"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	torch "github.com/wangkuiyi/gotorch"
)

// ForPartition opens a partition and returns its loader. The training
// partition is resampled with replacement by inverse class frequency, with
// min(class count) * num classes draws per epoch. Other partitions are
// truncated to equal class counts and shuffled.
func ForPartition(ctx context.Context, cfg config.Data, partition dataset.Partition, device torch.Device) (*Loader, error) {
	ds, err := dataset.Open(cfg, partition)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s partition", partition)
	}

	train := partition == dataset.Train
	sampler, err := sampling.ForDataset(ds.Labels(), train, cfg.Seed)
	if err != nil {
		return nil, errors.Wrapf(err, "sampler for %s partition", partition)
	}
	if train {
		util.Logger.Infof("%s: drawing %s of %s videos per epoch, weighted by inverse class frequency",
			partition, humanize.Comma(int64(sampler.Len())), humanize.Comma(int64(ds.Len())))
	} else {
		util.Logger.Infof("%s: balanced to %s of %s videos",
			partition, humanize.Comma(int64(sampler.Len())), humanize.Comma(int64(ds.Len())))
	}

	return New(ctx, ds, sampler, cfg.BatchSize, cfg.Workers, device, cfg.Seed), nil
}
