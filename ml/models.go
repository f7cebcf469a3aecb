package ml

import (
	"actrec/config"

	"github.com/pkg/errors"
	torch "github.com/wangkuiyi/gotorch"
	"github.com/wangkuiyi/gotorch/nn"
)

// ConvNetLSTM encodes every frame and runs an LSTM over the features.
type ConvNetLSTM struct {
	nn.Module
	Encoder *frameEncoder
	LSTM    *lstmCell
	Readout *readout
}

func (m *ConvNetLSTM) Forward(frames []torch.Tensor) torch.Tensor {
	return m.Readout.Forward(m.LSTM.Forward(encodeAll(m.Encoder, frames)))
}

func (m *ConvNetLSTM) ParameterGroups() (base, stateSpace []torch.Tensor) {
	return m.Parameters(), nil
}

func (m *ConvNetLSTM) ToDevice(device torch.Device) {
	m.To(device)
}

// ConvNetS4D encodes every frame and runs a diagonal state space layer over
// the features.
type ConvNetS4D struct {
	nn.Module
	Encoder *frameEncoder
	SSM     *diagonalSSM
	Readout *readout
}

func (m *ConvNetS4D) Forward(frames []torch.Tensor) torch.Tensor {
	return m.Readout.Forward(m.SSM.Forward(encodeAll(m.Encoder, frames)))
}

func (m *ConvNetS4D) ParameterGroups() (base, stateSpace []torch.Tensor) {
	base = append(m.Encoder.Parameters(), m.Readout.Parameters()...)
	return base, m.SSM.Parameters()
}

func (m *ConvNetS4D) ToDevice(device torch.Device) {
	m.To(device)
}

// ConvNetPool sums the frame features over time.
type ConvNetPool struct {
	nn.Module
	Encoder *frameEncoder
	Readout *readout
}

func (m *ConvNetPool) Forward(frames []torch.Tensor) torch.Tensor {
	return m.Readout.Forward(sumOverTime(encodeAll(m.Encoder, frames)))
}

func (m *ConvNetPool) ParameterGroups() (base, stateSpace []torch.Tensor) {
	return m.Parameters(), nil
}

func (m *ConvNetPool) ToDevice(device torch.Device) {
	m.To(device)
}

func encodeAll(e *frameEncoder, frames []torch.Tensor) []torch.Tensor {
	features := make([]torch.Tensor, len(frames))
	for t, f := range frames {
		features[t] = e.Forward(f)
	}
	return features
}

// NewModel builds the variant cfg selects with numClasses outputs, on the CPU.
func NewModel(cfg config.Model, numClasses int) (Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if numClasses < 2 {
		return nil, errors.Errorf("need at least 2 classes, got %d", numClasses)
	}

	dims := int64(cfg.EncoderDims())
	hidden := int64(cfg.ReadoutHiddenDims)
	classes := int64(numClasses)
	act := cfg.EncoderActivation

	switch cfg.Kind {
	case config.ConvNetLSTM:
		lstmDims := int64(cfg.LSTMDims)
		r := &ConvNetLSTM{
			Encoder: newFrameEncoder(dims, act),
			LSTM:    newLSTMCell(dims, lstmDims),
			Readout: newReadout(lstmDims, hidden, classes, act),
		}
		r.Init(r)
		return r, nil
	case config.ConvNetS4D:
		r := &ConvNetS4D{
			Encoder: newFrameEncoder(dims, act),
			SSM:     newDiagonalSSM(dims, int64(cfg.S4DStates)),
			Readout: newReadout(dims, hidden, classes, act),
		}
		r.Init(r)
		return r, nil
	case config.ConvNetPool:
		r := &ConvNetPool{
			Encoder: newFrameEncoder(dims, act),
			Readout: newReadout(dims, hidden, classes, act),
		}
		r.Init(r)
		return r, nil
	}
	return nil, errors.Errorf("unknown model %v", cfg.Kind)
}

// newOptimizers returns Adam over the base parameters at lr and, when the
// model has state space parameters, a second Adam over them at ssmLR.
func newOptimizers(m Classifier, lr, ssmLR float64) []torch.Optimizer {
	base, ssm := m.ParameterGroups()
	opt := torch.Adam(lr, 0.9, 0.999, 0)
	opt.AddParameters(base)
	opts := []torch.Optimizer{opt}
	if len(ssm) > 0 {
		ssmOpt := torch.Adam(ssmLR, 0.9, 0.999, 0)
		ssmOpt.AddParameters(ssm)
		opts = append(opts, ssmOpt)
	}
	return opts
}
