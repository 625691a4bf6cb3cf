// Package docpreproc implements the whole-page preprocessing stage that
// runs before text detection: a 4-class orientation classifier and a
// UVDoc-style geometric unwarper.
package docpreproc

import (
	"fmt"

	"github.com/glyphlane/oar/internal/imageops"
	"github.com/glyphlane/oar/internal/onnxrt"
)

// Orientation classes the classifier recognizes, in logit order.
var orientationAngles = [4]int{0, 90, 180, 270}

// OrientationResult is the classifier's verdict for one page.
type OrientationResult struct {
	Angle      int // clockwise rotation already present in the input, one of 0/90/180/270
	Confidence float32
}

// OrientationClassifier wraps the loaded 4-class orientation engine.
type OrientationClassifier struct {
	engine *onnxrt.Engine
	height int
	width  int
}

// NewOrientationClassifier builds a classifier around an already-loaded
// engine, deriving its expected input size from the model's declared input
// shape ([1, H, W, 3]), defaulting to 224x224 when the model reports
// dynamic axes.
func NewOrientationClassifier(engine *onnxrt.Engine) *OrientationClassifier {
	h, w := 224, 224
	shape := engine.InputShape()
	if len(shape) == 4 {
		if shape[1] > 0 {
			h = int(shape[1])
		}
		if shape[2] > 0 {
			w = int(shape[2])
		}
	}
	return &OrientationClassifier{engine: engine, height: h, width: w}
}

// Predict classifies the rotation already present in img.
func (c *OrientationClassifier) Predict(img *imageops.Image) (OrientationResult, error) {
	resized, err := img.Resize(c.width, c.height)
	if err != nil {
		return OrientationResult{}, fmt.Errorf("docpreproc: resize for orientation: %w", err)
	}

	out, err := c.engine.RunHWC(resized.Pix, c.height, c.width, 3)
	if err != nil {
		return OrientationResult{}, fmt.Errorf("docpreproc: orientation inference: %w", err)
	}
	if len(out.Data) < 4 {
		return OrientationResult{}, fmt.Errorf("docpreproc: orientation output has %d values, want >= 4", len(out.Data))
	}

	probs := softmax(out.Data[:4])
	best := 0
	for i := 1; i < 4; i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return OrientationResult{Angle: orientationAngles[best], Confidence: probs[best]}, nil
}

// Correct rotates img clockwise by the amount needed to undo the detected
// rotation, returning an upright image.
func Correct(img *imageops.Image, angle int) (*imageops.Image, error) {
	switch ((360 - angle) % 360) {
	case 0:
		return img, nil
	case 90:
		return img.Rotate90()
	case 180:
		return img.Rotate180()
	case 270:
		return img.Rotate270()
	default:
		return nil, fmt.Errorf("docpreproc: unsupported orientation angle %d", angle)
	}
}

func softmax(logits []float32) []float32 {
	maxv := logits[0]
	for _, v := range logits[1:] {
		if v > maxv {
			maxv = v
		}
	}
	out := make([]float32, len(logits))
	var sum float32
	for i, v := range logits {
		e := expf32(v - maxv)
		out[i] = e
		sum += e
	}
	if sum == 0 {
		return out
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
