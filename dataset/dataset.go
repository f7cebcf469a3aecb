package dataset

import (
	"fmt"
	"path/filepath"

	"actrec/config"
	"actrec/util"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

// Partition names a dataset split; its annotation file is <partition>.txt.
type Partition string

const (
	// Train is sampled with class balancing and random frame offsets.
	Train Partition = "train"
	// Val is used for checkpoint selection.
	Val Partition = "val"
	// Test is used by the evaluation command.
	Test Partition = "test"
)

// Dataset is one partition's videos, reduced to the classified labels.
type Dataset struct {
	root            string
	template        string
	partition       Partition
	framesPerSample int
	labelMap        LabelMap
	records         []Record
	labels          []int
}

// Open reads <videos root>/<partition>.txt and builds the partition.
func Open(cfg config.Data, partition Partition) (*Dataset, error) {
	records, err := ReadAnnotationFile(cfg.AnnotationPath(string(partition)))
	if err != nil {
		return nil, err
	}
	return New(cfg, partition, records)
}

// New builds a partition from already parsed records. Records whose label
// is not classified, or that are too short for a clip, are dropped.
func New(cfg config.Data, partition Partition, records []Record) (*Dataset, error) {
	labelMap := NewLabelMap(cfg.ClassifyLabels)
	if len(cfg.ClassifyLabels) == 0 {
		labelMap = labelMapOf(records)
	}

	ds := &Dataset{
		root:            cfg.VideosRoot,
		template:        cfg.ImageTemplate,
		partition:       partition,
		framesPerSample: cfg.FramesPerSample,
		labelMap:        labelMap,
	}

	var unclassified, short int
	for _, r := range records {
		class, ok := labelMap.Class(r.Label())
		if !ok {
			unclassified++
			continue
		}
		if r.NumFrames() < cfg.FramesPerSample {
			short++
			util.Logger.Debugf("%s: dropping %s, %d frames is fewer than %d", partition, r.Path, r.NumFrames(), cfg.FramesPerSample)
			continue
		}
		ds.records = append(ds.records, r)
		ds.labels = append(ds.labels, class)
	}
	if short > 0 {
		util.Logger.Warnf("%s: dropped %d videos shorter than %d frames", partition, short, cfg.FramesPerSample)
	}
	if len(ds.records) == 0 {
		return nil, errors.Errorf("%s: none of %d annotated videos carry a classified label", partition, len(records))
	}

	util.Logger.Infof("%s: %s videos in %d classes (%s unclassified skipped)",
		partition, humanize.Comma(int64(len(ds.records))), labelMap.Len(), humanize.Comma(int64(unclassified)))
	return ds, nil
}

// Partition is the split the dataset was built from.
func (d *Dataset) Partition() Partition {
	return d.partition
}

// TestMode reports whether clips use deterministic segment centers.
func (d *Dataset) TestMode() bool {
	return d.partition != Train
}

// Len is the number of videos.
func (d *Dataset) Len() int {
	return len(d.records)
}

// Labels are the class indices of every video, in order. The slice must
// not be modified.
func (d *Dataset) Labels() []int {
	return d.labels
}

// Label is the class index of video i.
func (d *Dataset) Label(i int) int {
	return d.labels[i]
}

// Record is the annotation of video i.
func (d *Dataset) Record(i int) Record {
	return d.records[i]
}

// LabelMap maps raw labels to class indices.
func (d *Dataset) LabelMap() LabelMap {
	return d.labelMap
}

// NumClasses is the number of classified labels.
func (d *Dataset) NumClasses() int {
	return d.labelMap.Len()
}

// FramesPerSample is the clip length.
func (d *Dataset) FramesPerSample() int {
	return d.framesPerSample
}

// FramePaths lists the frame files of a clip of video i. rng is only used
// for training partitions and must not be shared between goroutines.
func (d *Dataset) FramePaths(i int, rng *rand.Rand) ([]string, error) {
	r := d.records[i]
	offsets, err := SegmentIndices(r.NumFrames(), d.framesPerSample, 1, d.TestMode(), rng)
	if err != nil {
		return nil, errors.Wrapf(err, "video %s", r.Path)
	}
	paths := make([]string, len(offsets))
	for j, off := range offsets {
		paths[j] = filepath.Join(d.root, r.Path, fmt.Sprintf(d.template, r.StartFrame+off))
	}
	return paths, nil
}
