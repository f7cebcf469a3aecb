package ml

import (
	torch "github.com/wangkuiyi/gotorch"
)

// predictions is the argmax class of every row of log-probabilities.
func predictions(out torch.Tensor) []int {
	pred := out.Argmax(1)
	n := pred.Shape()[0]
	preds := make([]int, n)
	for i := int64(0); i < n; i++ {
		preds[i] = int(pred.Index(i).Item().(int64))
	}
	return preds
}

func scalar(t torch.Tensor) float64 {
	return float64(t.Item().(float32))
}
