package docpreproc

import (
	"fmt"
	"log/slog"

	"github.com/glyphlane/oar/internal/imageops"
)

// Preprocessor chains orientation correction and geometric unwarping ahead
// of text detection. Both engine pointers are retained regardless of
// Config's enable flags, which are consulted at call time instead, so a
// stage loaded but disabled by default can still be engaged by a per-task
// override.
type Preprocessor struct {
	orientation *OrientationClassifier
	unwarp      *Unwarper

	cfg Config
}

// Config controls which preprocessing stages run.
type Config struct {
	EnableOrientation bool
	EnableUnwarp      bool
	// ConfidenceThreshold below which a detected rotation is ignored and
	// the page is passed through unrotated.
	ConfidenceThreshold float32
}

// DefaultConfig returns both stages enabled with the orientation model's
// standard confidence floor.
func DefaultConfig() Config {
	return Config{EnableOrientation: true, EnableUnwarp: true, ConfidenceThreshold: 0.9}
}

// New builds a Preprocessor. orientation and unwarp may be nil if their
// models were never loaded, in which case the corresponding stage never
// runs even if later enabled by a per-task override.
func New(cfg Config, orientation *OrientationClassifier, unwarp *Unwarper) *Preprocessor {
	return &Preprocessor{orientation: orientation, unwarp: unwarp, cfg: cfg}
}

// Result reports what the preprocessor did to the page.
type Result struct {
	Image      *imageops.Image
	Angle      int
	Confidence float32
	Unwarped   bool
}

// Run applies orientation correction then unwarping, in that order, to img,
// using the preprocessor's own configured flags and threshold.
func (p *Preprocessor) Run(img *imageops.Image) (Result, error) {
	return p.RunWithConfig(img, p.cfg)
}

// RunWithConfig applies orientation correction then unwarping using cfg in
// place of the preprocessor's own flags and threshold, for per-task
// overrides. Both stages fail soft: an inference error is logged as a
// warning and the stage is skipped, passing the page through unmodified
// rather than aborting it.
func (p *Preprocessor) RunWithConfig(img *imageops.Image, cfg Config) (Result, error) {
	res := Result{Image: img}

	if cfg.EnableOrientation && p.orientation != nil {
		pred, err := p.orientation.Predict(img)
		if err != nil {
			slog.Warn("orientation inference failed, passing page through unrotated", "error", err)
		} else {
			res.Angle = pred.Angle
			res.Confidence = pred.Confidence
			if pred.Confidence >= cfg.ConfidenceThreshold && pred.Angle != 0 {
				corrected, err := Correct(img, pred.Angle)
				if err != nil {
					return Result{}, fmt.Errorf("docpreproc: correct orientation: %w", err)
				}
				res.Image = corrected
			}
		}
	}

	if cfg.EnableUnwarp && p.unwarp != nil {
		unwarped, err := p.unwarp.Unwarp(res.Image)
		if err != nil {
			slog.Warn("unwarp inference failed, passing page through unmodified", "error", err)
		} else {
			res.Image = unwarped
			res.Unwarped = true
		}
	}

	return res, nil
}
