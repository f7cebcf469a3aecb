package ml

import (
	"actrec/config"

	torch "github.com/wangkuiyi/gotorch"
	"github.com/wangkuiyi/gotorch/nn"
	F "github.com/wangkuiyi/gotorch/nn/functional"
)

func activate(kind config.Activation, x torch.Tensor) torch.Tensor {
	if kind == config.ReLU {
		return torch.Relu(x)
	}
	// silu(x) = x * sigmoid(x)
	return torch.Mul(x, torch.Sigmoid(x))
}

// frameEncoder turns each frame into a feature vector: three strided
// convolutions, global average pooling and a projection.
type frameEncoder struct {
	nn.Module
	Conv1, Conv2, Conv3 *nn.Conv2dModule
	Proj                *nn.LinearModule
	Activation          config.Activation
}

const encoderChannels = 128

func newFrameEncoder(dims int64, act config.Activation) *frameEncoder {
	r := &frameEncoder{
		Conv1:      nn.Conv2d(3, 32, 3, 2, 1, 1, 1, true, "zeros"),
		Conv2:      nn.Conv2d(32, 64, 3, 2, 1, 1, 1, true, "zeros"),
		Conv3:      nn.Conv2d(64, encoderChannels, 3, 2, 1, 1, 1, true, "zeros"),
		Proj:       nn.Linear(encoderChannels, dims, true),
		Activation: act,
	}
	r.Init(r)
	return r
}

func (e *frameEncoder) Forward(x torch.Tensor) torch.Tensor {
	x = activate(e.Activation, e.Conv1.Forward(x))
	x = activate(e.Activation, e.Conv2.Forward(x))
	x = activate(e.Activation, e.Conv3.Forward(x))
	x = F.AdaptiveAvgPool2d(x, []int64{1, 1})
	x = x.View(-1, encoderChannels)
	return activate(e.Activation, e.Proj.Forward(x))
}

// readout is a one hidden layer MLP ending in log-probabilities.
type readout struct {
	nn.Module
	FC1, FC2   *nn.LinearModule
	Activation config.Activation
}

func newReadout(in, hidden, classes int64, act config.Activation) *readout {
	r := &readout{
		FC1:        nn.Linear(in, hidden, true),
		FC2:        nn.Linear(hidden, classes, true),
		Activation: act,
	}
	r.Init(r)
	return r
}

func (r *readout) Forward(x torch.Tensor) torch.Tensor {
	x = activate(r.Activation, r.FC1.Forward(x))
	return torch.LogSoftmax(r.FC2.Forward(x), 1)
}

// lstmCell is a single layer LSTM unrolled over the frame features.
type lstmCell struct {
	nn.Module
	XI, XF, XG, XO *nn.LinearModule
	HI, HF, HG, HO *nn.LinearModule
}

func newLSTMCell(in, hidden int64) *lstmCell {
	r := &lstmCell{
		XI: nn.Linear(in, hidden, true),
		XF: nn.Linear(in, hidden, true),
		XG: nn.Linear(in, hidden, true),
		XO: nn.Linear(in, hidden, true),
		HI: nn.Linear(hidden, hidden, false),
		HF: nn.Linear(hidden, hidden, false),
		HG: nn.Linear(hidden, hidden, false),
		HO: nn.Linear(hidden, hidden, false),
	}
	r.Init(r)
	return r
}

// Forward returns the last hidden state.
func (l *lstmCell) Forward(xs []torch.Tensor) torch.Tensor {
	var h, c torch.Tensor
	for t, x := range xs {
		i, f, g, o := l.XI.Forward(x), l.XF.Forward(x), l.XG.Forward(x), l.XO.Forward(x)
		if t > 0 {
			// h and c start at zero, so the recurrent terms vanish at t = 0
			i = torch.Add(i, l.HI.Forward(h), 1)
			f = torch.Add(f, l.HF.Forward(h), 1)
			g = torch.Add(g, l.HG.Forward(h), 1)
			o = torch.Add(o, l.HO.Forward(h), 1)
		}
		i, f, g, o = torch.Sigmoid(i), torch.Sigmoid(f), torch.Tanh(g), torch.Sigmoid(o)
		if t == 0 {
			c = torch.Mul(i, g)
		} else {
			c = torch.Add(torch.Mul(f, c), torch.Mul(i, g), 1)
		}
		h = torch.Mul(o, torch.Tanh(c))
	}
	return h
}

// diagonalSSM is a real diagonal linear state space layer:
// h_t = sigmoid(Decay) * h_{t-1} + In(x_t), y = Out(h_T).
type diagonalSSM struct {
	nn.Module
	In, Out *nn.LinearModule
	Decay   torch.Tensor
}

func newDiagonalSSM(dims, states int64) *diagonalSSM {
	r := &diagonalSSM{
		In:  nn.Linear(dims, dims*states, false),
		Out: nn.Linear(dims*states, dims, true),
		// sigmoid(1) keeps about three quarters of the state per frame
		Decay: torch.Full([]int64{dims * states}, 1, true),
	}
	r.Init(r)
	return r
}

func (s *diagonalSSM) Forward(xs []torch.Tensor) torch.Tensor {
	decay := torch.Sigmoid(s.Decay)
	h := s.In.Forward(xs[0])
	for _, x := range xs[1:] {
		h = torch.Add(torch.Mul(decay, h), s.In.Forward(x), 1)
	}
	return s.Out.Forward(h)
}

func sumOverTime(xs []torch.Tensor) torch.Tensor {
	sum := xs[0]
	for _, x := range xs[1:] {
		sum = torch.Add(sum, x, 1)
	}
	return sum
}
