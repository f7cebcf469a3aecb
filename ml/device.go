package ml

import (
	"actrec/util"

	torch "github.com/wangkuiyi/gotorch"
	"github.com/wangkuiyi/gotorch/nn/initializer"
)

// Setup picks CUDA when it is available and not disabled, and seeds
// parameter initialization.
func Setup(cpuOnly bool, seed int64) torch.Device {
	var device torch.Device
	if !cpuOnly && torch.IsCUDAAvailable() {
		util.Logger.Info("CUDA is valid")
		device = torch.NewDevice("cuda")
	} else {
		util.Logger.Info("No CUDA found or --cpu set; CPU only")
		device = torch.NewDevice("cpu")
	}
	initializer.ManualSeed(seed)
	return device
}
