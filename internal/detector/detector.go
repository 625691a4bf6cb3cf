// Package detector implements DBNet-style text-region detection: a small
// dual-resolution model router, probability-map postprocessing into
// polygons, and deterministic reading-order sorting of the results.
package detector

import (
	"fmt"

	"github.com/glyphlane/oar/internal/geom"
	"github.com/glyphlane/oar/internal/imageops"
	"github.com/glyphlane/oar/internal/onnxrt"
)

// Detected sizes the detector routes between, per SizeThreshold.
const (
	Size640 = 640
	Size960 = 960
)

// Config controls postprocessing thresholds.
type Config struct {
	// SizeThreshold: pages whose longer side is below this use the 640
	// engine, otherwise the 960 engine.
	SizeThreshold int
	// BinThreshold binarizes the probability map.
	BinThreshold float32
	// BoxThreshold discards candidate regions whose mean probability is
	// below this.
	BoxThreshold float32
	// UnclipRatio expands surviving boxes outward to recover the original
	// text region from the shrunk training target.
	UnclipRatio float64
	// MinBoxArea discards connected components smaller than this, in
	// probability-map pixels.
	MinBoxArea int
	// MaxCandidates caps the number of connected components postprocess
	// considers per page: components are sorted by area descending and
	// truncated to this count before scoring, so a noisy probability map
	// can't blow up postprocessing cost.
	MaxCandidates int
}

// DefaultConfig returns the DBNet-standard thresholds.
func DefaultConfig() Config {
	return Config{
		SizeThreshold: 800,
		BinThreshold:  0.3,
		BoxThreshold:  0.6,
		UnclipRatio:   1.5,
		MinBoxArea:    9,
		MaxCandidates: 1500,
	}
}

// Box is one detected text region in original-image coordinates.
type Box struct {
	Quad  geom.Quad
	Score float32
}

// Detector routes each page to the appropriately sized engine and
// postprocesses its probability map into ordered text-region boxes.
type Detector struct {
	small *onnxrt.Engine // Size640
	large *onnxrt.Engine // Size960
	cfg   Config
}

// New builds a Detector from the two pre-loaded engines.
func New(small, large *onnxrt.Engine, cfg Config) *Detector {
	return &Detector{small: small, large: large, cfg: cfg}
}

// Detect runs the appropriate engine on img and returns ordered text-region
// boxes in img's coordinate space, using the detector's own configured
// thresholds.
func (d *Detector) Detect(img *imageops.Image) ([]Box, error) {
	return d.DetectWithConfig(img, d.cfg)
}

// DetectWithConfig runs detection using cfg in place of the detector's own
// thresholds, for per-task overrides that must not mutate the detector
// itself.
func (d *Detector) DetectWithConfig(img *imageops.Image, cfg Config) ([]Box, error) {
	if img.Width <= 0 || img.Height <= 0 {
		return nil, imageops.ErrEmptyImage
	}

	target := Size640
	if max(img.Width, img.Height) >= cfg.SizeThreshold {
		target = Size960
	}
	engine := d.small
	if target == Size960 {
		engine = d.large
	}
	if engine == nil {
		return nil, fmt.Errorf("detector: no engine loaded for target size %d", target)
	}

	padded, err := imageops.PadAndResize(img, target)
	if err != nil {
		return nil, fmt.Errorf("detector: preprocess: %w", err)
	}

	out, err := engine.RunHWC(padded.Image.Pix, target, target, 3)
	if err != nil {
		return nil, fmt.Errorf("detector: inference: %w", err)
	}

	prob, ph, pw, err := extractProbabilityMap(out)
	if err != nil {
		return nil, err
	}

	boxes := postprocess(prob, ph, pw, cfg)

	// Map from probability-map space back to original image coordinates in
	// three steps, inverting PadAndResize: probability map -> model input
	// (target x target) -> padded square -> original image.
	mapScaleX := float64(target) / float64(pw)
	mapScaleY := float64(target) / float64(ph)
	result := make([]Box, 0, len(boxes))
	for _, b := range boxes {
		quad := b.Quad
		for i := range quad {
			tx := quad[i].X * mapScaleX
			ty := quad[i].Y * mapScaleY
			sx := tx / padded.Scale
			sy := ty / padded.Scale
			quad[i].X = sx - float64(padded.PadLeft)
			quad[i].Y = sy - float64(padded.PadTop)
		}
		quad = quad.ClipToImage(img.Width, img.Height)
		result = append(result, Box{Quad: quad, Score: b.Score})
	}

	return SortReadingOrder(result), nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// extractProbabilityMap normalizes either an NCHW [1,1,H,W] or NHWC
// [1,H,W,1] probability output into a flat row-major slice.
func extractProbabilityMap(out onnxrt.Output) (data []float32, h, w int, err error) {
	if len(out.Shape) != 4 {
		return nil, 0, 0, fmt.Errorf("detector: output has %d dims, want 4", len(out.Shape))
	}
	switch {
	case out.Shape[1] == 1:
		h, w = int(out.Shape[2]), int(out.Shape[3])
	case out.Shape[3] == 1:
		h, w = int(out.Shape[1]), int(out.Shape[2])
	default:
		return nil, 0, 0, fmt.Errorf("detector: output shape %v has no singleton channel axis", out.Shape)
	}
	if h <= 0 || w <= 0 || h*w != len(out.Data) {
		return nil, 0, 0, fmt.Errorf("detector: output shape %v incompatible with %d values", out.Shape, len(out.Data))
	}
	return out.Data, h, w, nil
}
