package summary

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"actrec/metrics"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// Point is one recorded value of a scalar.
type Point struct {
	Step  int
	Value float64
}

// Writer records a run's hyper-parameters, per-epoch scalars and figures
// under <root>/<model>/<start time>/. Scalars go to scalars.jsonl, one JSON
// object per value. A Writer belongs to the training goroutine and is not
// safe for concurrent use.
type Writer struct {
	dir     string
	file    *os.File
	scalars *log.Logger
	history map[string][]Point
}

// NewWriter creates the run directory.
func NewWriter(root, model string, start time.Time) (*Writer, error) {
	dir := filepath.Join(root, model, start.Format("2006-01-02_15-04-05"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "create run dir %s", dir)
	}
	f, err := os.Create(filepath.Join(dir, "scalars.jsonl"))
	if err != nil {
		return nil, errors.Wrap(err, "create scalars file")
	}

	scalars := log.New()
	scalars.SetOutput(f)
	scalars.SetFormatter(&log.JSONFormatter{TimestampFormat: time.RFC3339Nano})

	return &Writer{
		dir:     dir,
		file:    f,
		scalars: scalars,
		history: make(map[string][]Point),
	}, nil
}

// Dir is the run directory.
func (w *Writer) Dir() string {
	return w.dir
}

// AddHParams writes hparams.yaml with the run's hyper-parameters and the
// metrics they are compared by.
func (w *Writer) AddHParams(hparams map[string]interface{}, metrics map[string]float64) error {
	buf, err := yaml.Marshal(struct {
		HParams map[string]interface{} `yaml:"hparams"`
		Metrics map[string]float64     `yaml:"metrics"`
	}{hparams, metrics})
	if err != nil {
		return errors.Wrap(err, "marshal hparams")
	}
	return errors.Wrap(ioutil.WriteFile(filepath.Join(w.dir, "hparams.yaml"), buf, 0644), "write hparams")
}

// AddScalar records the value of tag at step.
func (w *Writer) AddScalar(tag string, value float64, step int) {
	w.history[tag] = append(w.history[tag], Point{Step: step, Value: value})

	w.scalars.WithFields(log.Fields{
		"tag":   tag,
		"value": value,
		"step":  step,
	}).Info("scalar")
}

// History returns the recorded values of tag.
func (w *Writer) History(tag string) []Point {
	return append([]Point(nil), w.history[tag]...)
}

// AddConfusion saves the raw and row-normalized confusion matrices of c as
// text and heatmaps, and the per-class accuracy as a bar chart.
func (w *Writer) AddConfusion(tag string, c *metrics.Confusion, classNames []string, step int) error {
	base := filepath.Join(w.dir, figureName(tag, step))
	text := c.String() + "\n" + c.FormatNormalized()
	if err := ioutil.WriteFile(base+".txt", []byte(text), 0644); err != nil {
		return errors.Wrapf(err, "write %s", tag)
	}

	n := c.NumClasses()
	counts := make([][]float64, n)
	for i := range counts {
		counts[i] = make([]float64, n)
		for j := range counts[i] {
			counts[i][j] = float64(c.Count(i, j))
		}
	}
	if err := renderMatrix(base+".png", tag, counts, func(v float64) string {
		return strconv.Itoa(int(v))
	}, classNames); err != nil {
		return err
	}

	normTag := tag + " (normalized)"
	normPath := filepath.Join(w.dir, figureName(normTag, step)+".png")
	if err := renderMatrix(normPath, normTag, c.Normalized(), func(v float64) string {
		return fmt.Sprintf("%.2f", v)
	}, classNames); err != nil {
		return err
	}

	accTag := tag + " per class accuracy"
	return renderAccuracyBars(filepath.Join(w.dir, figureName(accTag, step)+".png"), accTag, c.PerClassAccuracy(), classNames)
}

// AddCurves renders the histories of tags as one line chart.
func (w *Writer) AddCurves(name string, step int, tags ...string) error {
	series := make(map[string][]Point, len(tags))
	for _, tag := range tags {
		series[tag] = w.History(tag)
	}
	return renderCurves(filepath.Join(w.dir, figureName(name, step)+".png"), name, tags, series)
}

// Close flushes the scalars file.
func (w *Writer) Close() error {
	return w.file.Close()
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

func figureName(tag string, step int) string {
	slug := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(tag), "_"), "_")
	return fmt.Sprintf("%s_%04d", slug, step)
}
