// Package classifier implements the binary text-line orientation stage: for
// each cropped line image, decide whether it reads upright (0 degrees) or
// upside down (180 degrees) and flip it if so.
package classifier

import (
	"fmt"

	"github.com/glyphlane/oar/internal/imageops"
	"github.com/glyphlane/oar/internal/onnxrt"
)

// Result is the classifier's verdict for one line crop.
type Result struct {
	Rotated    bool // true if the line was detected upside down and flipped
	Confidence float32
}

// Config is the per-task-overridable subset of classifier behavior: whether
// the stage runs at all, and the confidence floor for a 180-degree verdict.
type Config struct {
	Enabled             bool
	ConfidenceThreshold float32
}

// Classifier wraps the loaded 2-class line-orientation engine.
type Classifier struct {
	engine              *onnxrt.Engine
	height              int
	width               int
	confidenceThreshold float32
}

// New builds a Classifier around an already-loaded engine. confidence
// threshold below which a 180-degree verdict is ignored (the line is left
// as detected) rather than flipped.
func New(engine *onnxrt.Engine, confidenceThreshold float32) *Classifier {
	h, w := 48, 192
	shape := engine.InputShape()
	if len(shape) == 4 {
		if shape[1] > 0 {
			h = int(shape[1])
		}
		if shape[2] > 0 {
			w = int(shape[2])
		}
	}
	return &Classifier{engine: engine, height: h, width: w, confidenceThreshold: confidenceThreshold}
}

// ConfidenceThreshold returns the classifier's own configured confidence
// floor, for callers building a per-task override around it.
func (c *Classifier) ConfidenceThreshold() float32 {
	return c.confidenceThreshold
}

// Classify resizes img to the model's input size, runs inference, and
// returns a verdict without mutating img, using the classifier's own
// configured confidence threshold.
func (c *Classifier) Classify(img *imageops.Image) (Result, error) {
	return c.ClassifyWithConfig(img, c.confidenceThreshold)
}

// ClassifyWithConfig runs Classify using confidenceThreshold in place of
// the classifier's own threshold, for per-task overrides.
func (c *Classifier) ClassifyWithConfig(img *imageops.Image, confidenceThreshold float32) (Result, error) {
	resized, err := img.Resize(c.width, c.height)
	if err != nil {
		return Result{}, fmt.Errorf("classifier: resize: %w", err)
	}

	out, err := c.engine.RunHWC(resized.Pix, c.height, c.width, 3)
	if err != nil {
		return Result{}, fmt.Errorf("classifier: inference: %w", err)
	}
	if len(out.Data) < 2 {
		return Result{}, fmt.Errorf("classifier: output has %d values, want >= 2", len(out.Data))
	}

	p0, p1 := out.Data[0], out.Data[1]
	if p0 < 0 || p0 > 1 || p1 < 0 || p1 > 1 {
		// Model emits raw logits rather than a softmaxed pair; normalize.
		sum := expf(p0) + expf(p1)
		p0, p1 = expf(p0)/sum, expf(p1)/sum
	}

	if p1 > p0 && p1 >= confidenceThreshold {
		return Result{Rotated: true, Confidence: p1}, nil
	}
	return Result{Rotated: false, Confidence: p0}, nil
}

// Apply flips img 180 degrees when res indicates it was detected upside
// down, returning the (possibly unchanged) image.
func Apply(img *imageops.Image, res Result) (*imageops.Image, error) {
	if !res.Rotated {
		return img, nil
	}
	return img.Rotate180()
}
