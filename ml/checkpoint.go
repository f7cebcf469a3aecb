package ml

import (
	"encoding/gob"
	"os"
	"path/filepath"

	"actrec/util"

	"github.com/pkg/errors"
	torch "github.com/wangkuiyi/gotorch"
)

// saveModel writes a CPU copy of the model's state dict to path.
func saveModel(m Classifier, path string) error {
	util.Logger.Infof("saving model to %s", path)
	cpu := torch.NewDevice("cpu")
	states := make(map[string]torch.Tensor)
	for name, t := range m.StateDict() {
		states[name] = t.To(cpu, t.Dtype())
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create checkpoint dir")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "cannot create file to save model")
	}
	if err := gob.NewEncoder(f).Encode(states); err != nil {
		f.Close()
		return errors.Wrapf(err, "encode model to %s", path)
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}

// loadModel restores the state dict saved at path into m, which must still
// be on the CPU.
func loadModel(m Classifier, path string) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return errors.Errorf("no checkpoint at %s, train the model first", path)
	}
	if err != nil {
		return errors.Wrap(err, "open checkpoint")
	}
	defer f.Close()

	states := make(map[string]torch.Tensor)
	if err := gob.NewDecoder(f).Decode(&states); err != nil {
		return errors.Wrapf(err, "decode checkpoint %s", path)
	}
	return errors.Wrapf(m.SetStateDict(states), "restore %s", path)
}
