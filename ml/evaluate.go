package ml

import (
	"context"

	"actrec/config"
	"actrec/dataset"
	"actrec/loader"
	"actrec/metrics"
	"actrec/util"

	"github.com/pkg/errors"
	"github.com/sbwhitecap/tqdm"
	"github.com/sbwhitecap/tqdm/iterators"
	log "github.com/sirupsen/logrus"
	torch "github.com/wangkuiyi/gotorch"
)

// Evaluate restores the checkpoint of cfg.Model and classifies the test
// partition with it.
func Evaluate(ctx context.Context, cfg config.Eval, device torch.Device) (*metrics.Confusion, error) {
	defer torch.FinishGC()

	testLoader, err := loader.ForPartition(ctx, cfg.Data, dataset.Test, device)
	if err != nil {
		return nil, err
	}
	defer testLoader.Close()
	ds := testLoader.Dataset()

	m, err := NewModel(cfg.Model, ds.NumClasses())
	if err != nil {
		return nil, err
	}
	if err := loadModel(m, cfg.CheckpointPath()); err != nil {
		return nil, err
	}
	m.ToDevice(device)
	m.Train(false)

	confusion := metrics.NewConfusion(ds.NumClasses())
	var preds, targets []int
	err = tqdm.With(iterators.Interval(0, testLoader.NumBatches()), "Evaluating", func(c interface{}) (brk bool) {
		batch := c.(int)
		if !testLoader.Scan() {
			return true
		}
		torch.GC()
		frames, _ := testLoader.Minibatch()
		pred := predictions(m.Forward(frames))
		tgt := testLoader.Targets()
		preds = append(preds, pred...)
		targets = append(targets, tgt...)

		if batch%cfg.PrintInterval == 0 {
			util.Logger.WithFields(log.Fields{
				"pred":    pred,
				"targets": tgt,
			}).Infof("Batch [%d/%d], acc: %.4f", batch+1, testLoader.NumBatches(), metrics.AccuracyScore(targets, preds))
		}
		return ctx.Err() != nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "progress")
	}
	if err := testLoader.Err(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := confusion.AddAll(targets, preds); err != nil {
		return nil, errors.Wrap(err, "confusion matrix")
	}

	report(confusion, classNames(ds))
	return confusion, nil
}

func report(c *metrics.Confusion, names []string) {
	for i, acc := range c.PerClassAccuracy() {
		util.Logger.Infof("class %s accuracy: %.4f", names[i], acc)
	}
	util.Logger.Infof("mean class accuracy: %.4f over %d videos", c.MeanAccuracy(), c.Total())
	util.Logger.Infof("confusion matrix:\n%s", c.String())
	util.Logger.Infof("normalized confusion matrix:\n%s", c.FormatNormalized())
}
