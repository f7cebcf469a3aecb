package config

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// DefaultClassifyLabels are the NTU action labels kept when neither the
// command line nor a data file names any.
var DefaultClassifyLabels = []int{41, 42, 43, 44, 45, 46, 47, 48, 104}

const (
	// DefaultVideosRoot holds one directory of frames per video plus the
	// partition annotation files.
	DefaultVideosRoot = "./data/NTU/data_frames"
	// DefaultImageTemplate names frame files by their 1-based frame number.
	DefaultImageTemplate = "img_%05d.jpg"
)

// Data configures how a partition is read and batched.
type Data struct {
	VideosRoot      string `yaml:"videos_root"`
	ClassifyLabels  []int  `yaml:"classify_labels"`
	ImageTemplate   string `yaml:"image_template"`
	FramesPerSample int    `yaml:"frames_per_sample"`
	BatchSize       int    `yaml:"batch_size"`
	Workers         int    `yaml:"workers"`
	Seed            int64  `yaml:"seed"`
}

// AnnotationPath is <videos root>/<partition>.txt.
func (d Data) AnnotationPath(partition string) string {
	return filepath.Join(d.VideosRoot, partition+".txt")
}

// Validate checks sizes and paths.
func (d Data) Validate() error {
	if d.VideosRoot == "" {
		return errors.New("videos root is empty")
	}
	if d.FramesPerSample <= 0 {
		return errors.Errorf("frames per sample must be positive, got %d", d.FramesPerSample)
	}
	if d.BatchSize <= 0 {
		return errors.Errorf("batch size must be positive, got %d", d.BatchSize)
	}
	if d.Workers <= 0 {
		return errors.Errorf("workers must be positive, got %d", d.Workers)
	}
	if !strings.Contains(d.ImageTemplate, "%") {
		return errors.Errorf("image template %q has no frame number verb", d.ImageTemplate)
	}
	if name := fmt.Sprintf(d.ImageTemplate, 1); strings.Contains(name, "%!") {
		return errors.Errorf("image template %q does not format a frame number: %s", d.ImageTemplate, name)
	}
	seen := make(map[int]bool)
	for _, l := range d.ClassifyLabels {
		if l < 0 {
			return errors.Errorf("classify label %d is negative", l)
		}
		if seen[l] {
			return errors.Errorf("classify label %d listed twice", l)
		}
		seen[l] = true
	}
	return nil
}

// DataFile is the optional YAML file passed with --config. Fields it sets
// fill in whatever the command line left empty.
type DataFile struct {
	VideosRoot     string `yaml:"videos_root"`
	ClassifyLabels []int  `yaml:"classify_labels"`
	ImageTemplate  string `yaml:"image_template"`
}

// LoadDataFile reads a DataFile from disk.
func LoadDataFile(path string) (DataFile, error) {
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		return DataFile{}, errors.Wrapf(err, "read config file %s", path)
	}
	var f DataFile
	if err := yaml.UnmarshalStrict(buf, &f); err != nil {
		return DataFile{}, errors.Wrapf(err, "unmarshal config file %s", path)
	}
	return f, nil
}

// apply fills empty fields of d from the file, then from the defaults.
func (f DataFile) apply(d Data) Data {
	if d.VideosRoot == "" {
		d.VideosRoot = f.VideosRoot
	}
	if d.VideosRoot == "" {
		d.VideosRoot = DefaultVideosRoot
	}
	if len(d.ClassifyLabels) == 0 {
		d.ClassifyLabels = f.ClassifyLabels
	}
	if len(d.ClassifyLabels) == 0 {
		d.ClassifyLabels = append([]int(nil), DefaultClassifyLabels...)
	}
	if d.ImageTemplate == "" {
		d.ImageTemplate = f.ImageTemplate
	}
	if d.ImageTemplate == "" {
		d.ImageTemplate = DefaultImageTemplate
	}
	return d
}

// Train is everything the training loop needs.
type Train struct {
	Model         Model
	Data          Data
	Epochs        int
	PrintInterval int
	LR            float64
	CheckpointDir string
	RunsDir       string
	CPU           bool
}

// Validate checks the whole training configuration.
func (t Train) Validate() error {
	if err := t.Model.Validate(); err != nil {
		return err
	}
	if err := t.Data.Validate(); err != nil {
		return err
	}
	if t.Epochs <= 0 {
		return errors.Errorf("epochs must be positive, got %d", t.Epochs)
	}
	if t.PrintInterval <= 0 {
		return errors.Errorf("print interval must be positive, got %d", t.PrintInterval)
	}
	if t.LR <= 0 {
		return errors.Errorf("learning rate must be positive, got %v", t.LR)
	}
	return nil
}

// CheckpointPath is <checkpoint dir>/<model name>.pth.
func (t Train) CheckpointPath() string {
	return CheckpointPath(t.CheckpointDir, t.Model.Kind)
}

// Eval is everything the evaluation loop needs.
type Eval struct {
	Model         Model
	Data          Data
	PrintInterval int
	CheckpointDir string
	CPU           bool
}

// Validate checks the whole evaluation configuration.
func (e Eval) Validate() error {
	if err := e.Model.Validate(); err != nil {
		return err
	}
	if err := e.Data.Validate(); err != nil {
		return err
	}
	if e.PrintInterval <= 0 {
		return errors.Errorf("print interval must be positive, got %d", e.PrintInterval)
	}
	return nil
}

// CheckpointPath is <checkpoint dir>/<model name>.pth.
func (e Eval) CheckpointPath() string {
	return CheckpointPath(e.CheckpointDir, e.Model.Kind)
}

// CheckpointPath names the checkpoint of a model variant.
func CheckpointPath(dir string, kind ModelKind) string {
	return filepath.Join(dir, kind.String()+".pth")
}

// HParams are the model hyper-parameters under the names the run summary
// records them with.
func (m Model) HParams() map[string]interface{} {
	return map[string]interface{}{
		"model":              m.Kind.String(),
		"lstm_num_hidden":    m.LSTMDims,
		"num_readout_hidden": m.ReadoutHiddenDims,
		"s4d_num_hidden":     m.S4DDims,
		"s4d_states":         m.S4DStates,
		"s4d_is_real":        m.S4DIsReal,
		"s4d_lr":             m.S4DLR,
		"encoder_activation": string(m.EncoderActivation),
	}
}
