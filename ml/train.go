package ml

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"actrec/config"
	"actrec/dataset"
	"actrec/loader"
	"actrec/metrics"
	"actrec/summary"
	"actrec/util"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	torch "github.com/wangkuiyi/gotorch"
	F "github.com/wangkuiyi/gotorch/nn/functional"
)

// passResult is what one pass over a loader produced.
type passResult struct {
	LossSum   float64
	Batches   int
	Samples   int
	Confusion *metrics.Confusion
	Elapsed   time.Duration
}

// AvgLoss is the summed batch loss over the number of batches.
func (r passResult) AvgLoss() float64 {
	if r.Batches == 0 {
		return 0
	}
	return r.LossSum / float64(r.Batches)
}

func (r passResult) throughput() string {
	if r.Elapsed <= 0 {
		return "0"
	}
	return humanize.Comma(int64(float64(r.Samples) / r.Elapsed.Seconds()))
}

// runPass feeds one epoch of l through m. With opts set the parameters are
// updated after every batch.
func runPass(ctx context.Context, m Classifier, l *loader.Loader, opts []torch.Optimizer, numClasses int, header string, printInterval int) (passResult, error) {
	res := passResult{Confusion: metrics.NewConfusion(numClasses)}
	var preds, targets []int
	start := time.Now()
	numBatches := l.NumBatches()

	for l.Scan() {
		torch.GC()
		frames, labels := l.Minibatch()
		out := m.Forward(frames)
		loss := F.NllLoss(out, labels, torch.Tensor{}, -100, "mean")
		if opts != nil {
			for _, opt := range opts {
				opt.ZeroGrad()
			}
			loss.Backward()
			for _, opt := range opts {
				opt.Step()
			}
		}

		pred := predictions(out)
		tgt := l.Targets()
		preds = append(preds, pred...)
		targets = append(targets, tgt...)
		lossValue := scalar(loss)
		res.LossSum += lossValue

		if res.Batches%printInterval == 0 {
			util.Logger.WithFields(log.Fields{
				"pred":    pred,
				"targets": tgt,
				"acc":     metrics.AccuracyScore(targets, preds),
			}).Infof("%s, Batch [%d/%d], Loss: %.4f", header, res.Batches+1, numBatches, lossValue)
		}
		res.Batches++
		res.Samples += len(tgt)

		if ctx.Err() != nil {
			break
		}
	}
	if err := l.Err(); err != nil {
		return res, err
	}
	if err := ctx.Err(); err != nil {
		l.Close()
		return res, err
	}
	res.Elapsed = time.Since(start)
	if err := res.Confusion.AddAll(targets, preds); err != nil {
		return res, errors.Wrap(err, "confusion matrix")
	}
	return res, nil
}

// classNames are the raw annotation labels of the dense classes.
func classNames(ds *dataset.Dataset) []string {
	names := make([]string, ds.NumClasses())
	for i := range names {
		names[i] = strconv.Itoa(ds.LabelMap().Raw(i))
	}
	return names
}

// Train runs cfg.Epochs epochs over the balanced training partition,
// validates after each, and keeps the checkpoint with the lowest summed
// validation loss.
func Train(ctx context.Context, cfg config.Train, device torch.Device) error {
	defer torch.FinishGC()

	trainLoader, err := loader.ForPartition(ctx, cfg.Data, dataset.Train, device)
	if err != nil {
		return err
	}
	defer trainLoader.Close()
	valLoader, err := loader.ForPartition(ctx, cfg.Data, dataset.Val, device)
	if err != nil {
		return err
	}
	defer valLoader.Close()

	numClasses := trainLoader.Dataset().NumClasses()
	if n := valLoader.Dataset().NumClasses(); n != numClasses {
		return errors.Errorf("train has %d classes but val has %d, set --classify-labels", numClasses, n)
	}
	names := classNames(trainLoader.Dataset())

	m, err := NewModel(cfg.Model, numClasses)
	if err != nil {
		return err
	}
	m.ToDevice(device)
	opts := newOptimizers(m, cfg.LR, cfg.Model.S4DLR)

	writer, err := summary.NewWriter(cfg.RunsDir, cfg.Model.Kind.String(), time.Now())
	if err != nil {
		return err
	}
	defer writer.Close()
	if err := writer.AddHParams(cfg.Model.HParams(), map[string]float64{"lr": cfg.LR}); err != nil {
		return err
	}
	util.Logger.WithFields(log.Fields(cfg.Model.HParams())).Infof("start training, writing run to %s", writer.Dir())

	minValLoss := math.Inf(1)
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		header := fmt.Sprintf("Epoch [%d/%d]", epoch+1, cfg.Epochs)

		m.Train(true)
		train, err := runPass(ctx, m, trainLoader, opts, numClasses, header, cfg.PrintInterval)
		if err != nil {
			return errors.Wrapf(err, "train epoch %d", epoch)
		}
		if err := record(writer, "Train", train, names, epoch); err != nil {
			return err
		}
		util.Logger.Infof("Avg loss on epoch %d: %.4f, throughput: %s samples/sec", epoch, train.AvgLoss(), train.throughput())

		m.Train(false)
		val, err := runPass(ctx, m, valLoader, nil, numClasses, header, cfg.PrintInterval)
		if err != nil {
			return errors.Wrapf(err, "validate epoch %d", epoch)
		}
		if err := record(writer, "Val", val, names, epoch); err != nil {
			return err
		}
		if err := writer.AddCurves("Loss", epoch, "Train Loss", "Val Loss"); err != nil {
			return err
		}
		if err := writer.AddCurves("Accuracy", epoch, "Train Accuracy", "Val Accuracy"); err != nil {
			return err
		}

		if val.LossSum < minValLoss {
			minValLoss = val.LossSum
			if err := saveModel(m, cfg.CheckpointPath()); err != nil {
				return err
			}
		}
		util.Logger.Infof("Avg validation loss on epoch %d: %.4f", epoch, val.AvgLoss())
	}
	return nil
}

func record(w *summary.Writer, prefix string, r passResult, names []string, epoch int) error {
	w.AddScalar(prefix+" Loss", r.AvgLoss(), epoch)
	w.AddScalar(prefix+" Accuracy", r.Confusion.MeanAccuracy(), epoch)
	return w.AddConfusion(prefix+" Confusion matrix", r.Confusion, names, epoch)
}
