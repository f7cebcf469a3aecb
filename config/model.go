package config

import (
	"strings"

	"github.com/pkg/errors"
)

// ModelKind enumerates the supported model variants.
type ModelKind int

const (
	// ConvNetLSTM runs an LSTM cell over per-frame conv features.
	ConvNetLSTM ModelKind = iota + 1
	// ConvNetS4D runs a diagonal real state space recurrence over per-frame conv features.
	ConvNetS4D
	// ConvNetPool sums per-frame conv features over time.
	ConvNetPool
)

var modelNames = map[ModelKind]string{
	ConvNetLSTM: "convnet-lstm",
	ConvNetS4D:  "convnet-s4d",
	ConvNetPool: "convnet-pool",
}

// ModelKinds lists every registered variant in declaration order.
func ModelKinds() []ModelKind {
	return []ModelKind{ConvNetLSTM, ConvNetS4D, ConvNetPool}
}

func (k ModelKind) String() string {
	if n, ok := modelNames[k]; ok {
		return n
	}
	return "unknown"
}

// ParseModelKind looks a variant up by name, case-insensitively.
func ParseModelKind(name string) (ModelKind, error) {
	for _, k := range ModelKinds() {
		if strings.EqualFold(name, k.String()) {
			return k, nil
		}
	}
	return 0, errors.Errorf("unknown model %q, expected one of %s", name, strings.Join(modelNameList(), ", "))
}

// UnmarshalText lets --model be parsed straight into a ModelKind.
func (k *ModelKind) UnmarshalText(b []byte) error {
	parsed, err := ParseModelKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalText is the inverse of UnmarshalText.
func (k ModelKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func modelNameList() []string {
	var names []string
	for _, k := range ModelKinds() {
		names = append(names, k.String())
	}
	return names
}

// Activation is the frame encoder's nonlinearity.
type Activation string

const (
	// ReLU is max(0, x).
	ReLU Activation = "relu"
	// SiLU is x * sigmoid(x).
	SiLU Activation = "silu"
)

// UnmarshalText validates the activation name.
func (a *Activation) UnmarshalText(b []byte) error {
	switch v := Activation(strings.ToLower(string(b))); v {
	case ReLU, SiLU:
		*a = v
		return nil
	}
	return errors.Errorf("unknown activation %q, expected relu or silu", string(b))
}

// Model holds the hyper-parameters shared by all variants; each variant
// reads the subset it needs.
type Model struct {
	Kind              ModelKind  `yaml:"kind"`
	LSTMDims          int        `yaml:"lstm_num_hidden"`
	ReadoutHiddenDims int        `yaml:"num_readout_hidden"`
	S4DDims           int        `yaml:"s4d_num_hidden"`
	S4DStates         int        `yaml:"s4d_states"`
	S4DIsReal         bool       `yaml:"s4d_is_real"`
	S4DLR             float64    `yaml:"s4d_lr"`
	EncoderActivation Activation `yaml:"encoder_activation"`
}

// Validate checks the parameters the selected variant depends on.
func (m Model) Validate() error {
	if _, ok := modelNames[m.Kind]; !ok {
		return errors.Errorf("no model selected, expected one of %s", strings.Join(modelNameList(), ", "))
	}
	if m.ReadoutHiddenDims <= 0 {
		return errors.Errorf("readout hidden dims must be positive, got %d", m.ReadoutHiddenDims)
	}
	if m.S4DDims <= 0 {
		return errors.Errorf("encoder dims must be positive, got %d", m.S4DDims)
	}
	if m.EncoderActivation != ReLU && m.EncoderActivation != SiLU {
		return errors.Errorf("unknown activation %q", m.EncoderActivation)
	}

	switch m.Kind {
	case ConvNetLSTM:
		if m.LSTMDims <= 0 {
			return errors.Errorf("lstm dims must be positive, got %d", m.LSTMDims)
		}
	case ConvNetS4D:
		if m.S4DStates <= 0 {
			return errors.Errorf("s4d states must be positive, got %d", m.S4DStates)
		}
		if !m.S4DIsReal {
			return errors.Errorf("%s only supports real state spaces, drop --s4d-is-complex", m.Kind)
		}
		if m.S4DLR < 0 {
			return errors.Errorf("s4d learning rate must be non-negative, got %v", m.S4DLR)
		}
	}
	return nil
}

// EncoderDims is the width of the per-frame features. The state space
// block consumes them unchanged, so it doubles as --s4d-dims.
func (m Model) EncoderDims() int {
	return m.S4DDims
}
