package ml

import (
	torch "github.com/wangkuiyi/gotorch"
)

// Classifier maps a clip, one [B,3,224,224] tensor per frame, to [B,C]
// class log-probabilities.
type Classifier interface {
	Forward(frames []torch.Tensor) torch.Tensor
	// ParameterGroups splits the trainable parameters into those updated at
	// the base learning rate and the state space ones, which have their own.
	ParameterGroups() (base, stateSpace []torch.Tensor)
	StateDict() map[string]torch.Tensor
	SetStateDict(states map[string]torch.Tensor) error
	Train(on bool)
	ToDevice(device torch.Device)
}
