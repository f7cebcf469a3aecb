package config

// CommonArgs are the flags shared by the train and test commands.
type CommonArgs struct {
	Model             ModelKind  `arg:"--model,required" help:"model variant: convnet-lstm, convnet-s4d or convnet-pool"`
	BatchSize         int        `arg:"--batch-size" help:"batch size"`
	PrintInterval     int        `arg:"--print-interval" help:"log progress every N batches"`
	FramesPerSample   int        `arg:"--frames-per-sample" help:"frames sampled from each video"`
	S4DDims           int        `arg:"--s4d-dims" help:"width of the per-frame features, consumed unchanged by the state space block"`
	S4DStates         int        `arg:"--s4d-states" help:"states per dimension in the state space block"`
	S4DIsComplex      bool       `arg:"--s4d-is-complex" help:"request a complex state space (unsupported, rejected)"`
	LSTMDims          int        `arg:"--lstm-dims" help:"hidden size of the LSTM cell"`
	ReadoutHiddenDims int        `arg:"--readout-hidden-dims" help:"hidden layer size of the readout MLP"`
	EncoderActivation Activation `arg:"--encoder-activation" help:"frame encoder activation: relu or silu"`

	VideosRoot     string `arg:"--videos-root" help:"directory of frame folders and partition files (default: data file, then ./data/NTU/data_frames)"`
	ClassifyLabels []int  `arg:"--classify-labels" help:"annotation labels to keep, in class order (default: data file, then 41..48 and 104)"`
	ImageTemplate  string `arg:"--image-template" help:"printf template of frame file names (default: img_%05d.jpg)"`
	ConfigFile     string `arg:"--config" help:"optional YAML data file with videos_root, classify_labels and image_template"`
	Workers        int    `arg:"--workers" help:"clip decoding goroutines (default: batch size)"`
	Seed           int64  `arg:"--seed" help:"random seed for sampling and initialization"`
	CheckpointDir  string `arg:"--checkpoint-dir" help:"directory holding <model>.pth"`
	CPU            bool   `arg:"--cpu" help:"never use CUDA"`
	Verbose        bool   `arg:"-v,--verbose" help:"debug logging"`
}

func defaultCommonArgs() CommonArgs {
	return CommonArgs{
		BatchSize:         8,
		PrintInterval:     100,
		FramesPerSample:   30,
		S4DDims:           1280,
		S4DStates:         1,
		LSTMDims:          1280,
		ReadoutHiddenDims: 64,
		EncoderActivation: SiLU,
		Seed:              1,
		CheckpointDir:     ".",
	}
}

func (a CommonArgs) model(s4dLR float64) Model {
	return Model{
		Kind:              a.Model,
		LSTMDims:          a.LSTMDims,
		ReadoutHiddenDims: a.ReadoutHiddenDims,
		S4DDims:           a.S4DDims,
		S4DStates:         a.S4DStates,
		S4DIsReal:         !a.S4DIsComplex,
		S4DLR:             s4dLR,
		EncoderActivation: a.EncoderActivation,
	}
}

func (a CommonArgs) data() (Data, error) {
	d := Data{
		VideosRoot:      a.VideosRoot,
		ClassifyLabels:  a.ClassifyLabels,
		ImageTemplate:   a.ImageTemplate,
		FramesPerSample: a.FramesPerSample,
		BatchSize:       a.BatchSize,
		Workers:         a.Workers,
		Seed:            a.Seed,
	}
	if d.Workers == 0 {
		d.Workers = d.BatchSize
	}

	var f DataFile
	if a.ConfigFile != "" {
		var err error
		if f, err = LoadDataFile(a.ConfigFile); err != nil {
			return Data{}, err
		}
	}
	return f.apply(d), nil
}

// TrainArgs are the flags of the train command.
type TrainArgs struct {
	CommonArgs
	Epochs  int     `arg:"--epochs" help:"number of epochs"`
	LR      float64 `arg:"--lr" help:"learning rate"`
	S4DLR   float64 `arg:"--s4d-lr" help:"learning rate of the state space parameters"`
	RunsDir string  `arg:"--runs-dir" help:"directory receiving run summaries"`
}

// DefaultTrainArgs returns the train flags with their defaults filled in,
// ready for arg.MustParse.
func DefaultTrainArgs() TrainArgs {
	return TrainArgs{
		CommonArgs: defaultCommonArgs(),
		Epochs:     100,
		LR:         1e-3,
		S4DLR:      1e-3,
		RunsDir:    "runs/NTU",
	}
}

// Description is shown by --help.
func (TrainArgs) Description() string {
	return "Train a video action recognition model with class balanced sampling."
}

// Config turns the parsed flags into a validated training configuration.
func (a TrainArgs) Config() (Train, error) {
	d, err := a.data()
	if err != nil {
		return Train{}, err
	}
	t := Train{
		Model:         a.model(a.S4DLR),
		Data:          d,
		Epochs:        a.Epochs,
		PrintInterval: a.PrintInterval,
		LR:            a.LR,
		CheckpointDir: a.CheckpointDir,
		RunsDir:       a.RunsDir,
		CPU:           a.CPU,
	}
	if err := t.Validate(); err != nil {
		return Train{}, err
	}
	return t, nil
}

// EvalArgs are the flags of the test command.
type EvalArgs struct {
	CommonArgs
}

// DefaultEvalArgs returns the test flags with their defaults filled in.
func DefaultEvalArgs() EvalArgs {
	return EvalArgs{CommonArgs: defaultCommonArgs()}
}

// Description is shown by --help.
func (EvalArgs) Description() string {
	return "Evaluate a trained video action recognition model on the test partition."
}

// Config turns the parsed flags into a validated evaluation configuration.
func (a EvalArgs) Config() (Eval, error) {
	d, err := a.data()
	if err != nil {
		return Eval{}, err
	}
	e := Eval{
		Model:         a.model(0),
		Data:          d,
		PrintInterval: a.PrintInterval,
		CheckpointDir: a.CheckpointDir,
		CPU:           a.CPU,
	}
	if err := e.Validate(); err != nil {
		return Eval{}, err
	}
	return e, nil
}
