package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	arg "github.com/alexflint/go-arg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseTrain(t *testing.T, flags ...string) (TrainArgs, error) {
	args := DefaultTrainArgs()
	p, err := arg.NewParser(arg.Config{}, &args)
	require.NoError(t, err)
	return args, p.Parse(flags)
}

func TestTrainArgsDefaults(t *testing.T) {
	args, err := parseTrain(t, "--model", "convnet-s4d")
	require.NoError(t, err)

	cfg, err := args.Config()
	require.NoError(t, err)

	assert.Equal(t, ConvNetS4D, cfg.Model.Kind)
	assert.Equal(t, 8, cfg.Data.BatchSize)
	assert.Equal(t, 8, cfg.Data.Workers)
	assert.Equal(t, 30, cfg.Data.FramesPerSample)
	assert.Equal(t, 100, cfg.Epochs)
	assert.Equal(t, 1e-3, cfg.LR)
	assert.Equal(t, 1e-3, cfg.Model.S4DLR)
	assert.True(t, cfg.Model.S4DIsReal)
	assert.Equal(t, SiLU, cfg.Model.EncoderActivation)
	assert.Equal(t, DefaultClassifyLabels, cfg.Data.ClassifyLabels)
	assert.Equal(t, DefaultVideosRoot, cfg.Data.VideosRoot)
	assert.Equal(t, DefaultImageTemplate, cfg.Data.ImageTemplate)
	assert.Equal(t, "convnet-s4d.pth", cfg.CheckpointPath())
}

func TestTrainArgsOverrides(t *testing.T) {
	args, err := parseTrain(t,
		"--model", "ConvNet-LSTM",
		"--batch-size", "4",
		"--epochs", "3",
		"--lr", "0.01",
		"--lstm-dims", "256",
		"--encoder-activation", "relu",
		"--classify-labels", "7", "3",
		"--checkpoint-dir", "/tmp/ckpt",
	)
	require.NoError(t, err)

	cfg, err := args.Config()
	require.NoError(t, err)
	assert.Equal(t, ConvNetLSTM, cfg.Model.Kind)
	assert.Equal(t, 4, cfg.Data.Workers)
	assert.Equal(t, 3, cfg.Epochs)
	assert.Equal(t, 0.01, cfg.LR)
	assert.Equal(t, 256, cfg.Model.LSTMDims)
	assert.Equal(t, ReLU, cfg.Model.EncoderActivation)
	assert.Equal(t, []int{7, 3}, cfg.Data.ClassifyLabels)
	assert.Equal(t, "/tmp/ckpt/convnet-lstm.pth", cfg.CheckpointPath())
}

func TestUnknownModelFailsAtParse(t *testing.T) {
	_, err := parseTrain(t, "--model", "efficientnet-b7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown model")

	_, err = parseTrain(t)
	require.Error(t, err)
}

func TestBadActivationFailsAtParse(t *testing.T) {
	_, err := parseTrain(t, "--model", "convnet-pool", "--encoder-activation", "gelu")
	require.Error(t, err)
}

func TestComplexStateSpaceRejected(t *testing.T) {
	args, err := parseTrain(t, "--model", "convnet-s4d", "--s4d-is-complex")
	require.NoError(t, err)

	_, err = args.Config()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "real state spaces")

	// other variants ignore the flag
	args, err = parseTrain(t, "--model", "convnet-pool", "--s4d-is-complex")
	require.NoError(t, err)
	_, err = args.Config()
	require.NoError(t, err)
}

func TestDataFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "data.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte("videos_root: /videos\nclassify_labels: [5, 6]\n"), 0644))

	args, err := parseTrain(t, "--model", "convnet-pool", "--config", path, "--videos-root", "/override")
	require.NoError(t, err)
	cfg, err := args.Config()
	require.NoError(t, err)

	assert.Equal(t, "/override", cfg.Data.VideosRoot)
	assert.Equal(t, []int{5, 6}, cfg.Data.ClassifyLabels)
	assert.Equal(t, DefaultImageTemplate, cfg.Data.ImageTemplate)
	assert.Equal(t, "/override/train.txt", cfg.Data.AnnotationPath("train"))

	require.NoError(t, ioutil.WriteFile(path, []byte("videos_rot: /typo\n"), 0644))
	_, err = LoadDataFile(path)
	assert.Error(t, err)

	_, err = LoadDataFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestEvalArgs(t *testing.T) {
	args := DefaultEvalArgs()
	p, err := arg.NewParser(arg.Config{}, &args)
	require.NoError(t, err)

	// the test command has no --epochs flag
	require.Error(t, p.Parse([]string{"--model", "convnet-pool", "--epochs", "3"}))

	args = DefaultEvalArgs()
	p, err = arg.NewParser(arg.Config{}, &args)
	require.NoError(t, err)
	require.NoError(t, p.Parse([]string{"--model", "convnet-pool", "--print-interval", "5"}))

	cfg, err := args.Config()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.PrintInterval)
	assert.Equal(t, "convnet-pool.pth", cfg.CheckpointPath())
}

func TestDataValidate(t *testing.T) {
	d := Data{
		VideosRoot:      "/v",
		ImageTemplate:   DefaultImageTemplate,
		FramesPerSample: 4,
		BatchSize:       2,
		Workers:         2,
		ClassifyLabels:  []int{1, 2},
	}
	require.NoError(t, d.Validate())

	dup := d
	dup.ClassifyLabels = []int{1, 1}
	assert.Error(t, dup.Validate())

	noVerb := d
	noVerb.ImageTemplate = "frame.jpg"
	assert.Error(t, noVerb.Validate())

	noFrames := d
	noFrames.FramesPerSample = 0
	assert.Error(t, noFrames.Validate())

	for _, tmpl := range []string{"img_%s.jpg", "img_%d_%d.jpg", "img_%05.jpg"} {
		bad := d
		bad.ImageTemplate = tmpl
		err := bad.Validate()
		require.Error(t, err, tmpl)
		assert.Contains(t, err.Error(), "does not format a frame number", tmpl)
	}

	padded := d
	padded.ImageTemplate = "%06d.png"
	assert.NoError(t, padded.Validate())
}

func TestModelKindText(t *testing.T) {
	for _, k := range ModelKinds() {
		b, err := k.MarshalText()
		require.NoError(t, err)

		var parsed ModelKind
		require.NoError(t, parsed.UnmarshalText(b))
		assert.Equal(t, k, parsed)
	}
	assert.Equal(t, "unknown", ModelKind(0).String())
}
