package loader

import (
	"image"

	"github.com/pkg/errors"
	torch "github.com/wangkuiyi/gotorch"
	"github.com/wangkuiyi/gotorch/vision/transforms"
	"gocv.io/x/gocv"
)

const (
	resizeShortEdge = 256
	cropSize        = 224
)

var (
	imagenetMean = []float32{0.485, 0.456, 0.406}
	imagenetStd  = []float32{0.229, 0.224, 0.225}
)

// readFrame decodes one frame, converts it to RGB, resizes its short edge
// to 256 and center crops 224x224. The caller owns the returned Mat.
func readFrame(path string) (gocv.Mat, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		img.Close()
		return gocv.Mat{}, errors.Errorf("cannot read frame %s", path)
	}
	defer img.Close()
	gocv.CvtColor(img, &img, gocv.ColorBGRToRGB)

	h, w := img.Rows(), img.Cols()
	nh, nw := resizeShortEdge, resizeShortEdge
	if h < w {
		nw = w * resizeShortEdge / h
	} else {
		nh = h * resizeShortEdge / w
	}
	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(img, &resized, image.Point{X: nw, Y: nh}, 0, 0, gocv.InterpolationLinear)

	top := (nh - cropSize) / 2
	left := (nw - cropSize) / 2
	region := resized.Region(image.Rect(left, top, left+cropSize, top+cropSize))
	defer region.Close()
	return region.Clone(), nil
}

// toTensor turns an RGB crop into a normalized 3x224x224 float tensor.
func toTensor(m gocv.Mat, normalize *transforms.NormalizeTransformer) torch.Tensor {
	return normalize.Run(transforms.ToTensor().Run(m))
}

func closeAll(mats []gocv.Mat) {
	for i := range mats {
		mats[i].Close()
	}
}
