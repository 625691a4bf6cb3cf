package recognizer

import (
	"fmt"

	"github.com/glyphlane/oar/internal/imageops"
	"github.com/glyphlane/oar/internal/onnxrt"
)

// Config controls recognition preprocessing and result filtering.
type Config struct {
	// TargetHeight is the fixed line height every bucket resizes to.
	TargetHeight int
	// MaxBucket caps the aspect-ratio bucket used for very wide crops.
	MaxBucket int
	// ConfThreshold drops a decoded line whose mean per-character
	// confidence falls below this.
	ConfThreshold float32
}

// DefaultConfig returns the standard 48px line height with the full bucket
// range from imageops.Buckets.
func DefaultConfig() Config {
	buckets := imageops.Buckets()
	return Config{TargetHeight: 48, MaxBucket: buckets[len(buckets)-1], ConfThreshold: 0.3}
}

// Recognizer routes each line crop to the engine for its aspect-ratio
// bucket and decodes the result against a shared dictionary.
type Recognizer struct {
	engines map[int]*onnxrt.Engine // keyed by bucket, see imageops.BucketFor
	dict    *Dictionary
	cfg     Config
}

// New builds a Recognizer. engines must have one entry per bucket returned
// by imageops.Buckets.
func New(engines map[int]*onnxrt.Engine, dict *Dictionary, cfg Config) (*Recognizer, error) {
	for _, bucket := range imageops.Buckets() {
		if _, ok := engines[bucket]; !ok {
			return nil, fmt.Errorf("recognizer: missing engine for bucket %d", bucket)
		}
	}
	return &Recognizer{engines: engines, dict: dict, cfg: cfg}, nil
}

// Recognize decodes the text in a single line crop using the recognizer's
// own configured thresholds.
func (r *Recognizer) Recognize(img *imageops.Image) (DecodedText, error) {
	return r.RecognizeWithConfig(img, r.cfg)
}

// RecognizeWithConfig decodes the text in a single line crop using cfg in
// place of the recognizer's own thresholds, for per-task overrides. The
// decoded text is dropped (returned as a zero DecodedText) when empty or
// below cfg.ConfThreshold.
func (r *Recognizer) RecognizeWithConfig(img *imageops.Image, cfg Config) (DecodedText, error) {
	if img.Width <= 0 || img.Height <= 0 {
		return DecodedText{}, imageops.ErrEmptyImage
	}

	ratio := float64(img.Width) / float64(img.Height)
	bucket := imageops.BucketFor(ratio)
	if bucket > cfg.MaxBucket {
		bucket = cfg.MaxBucket
	}
	engine, ok := r.engines[bucket]
	if !ok {
		return DecodedText{}, fmt.Errorf("recognizer: no engine loaded for bucket %d", bucket)
	}

	resized, _, err := imageops.PadAndResizeKeepRatio(img, cfg.TargetHeight, bucket)
	if err != nil {
		return DecodedText{}, fmt.Errorf("recognizer: preprocess: %w", err)
	}

	out, err := engine.RunHWC(resized.Pix, resized.Height, resized.Width, 3)
	if err != nil {
		return DecodedText{}, fmt.Errorf("recognizer: inference: %w", err)
	}

	timesteps, classes, err := extractSequenceShape(out)
	if err != nil {
		return DecodedText{}, err
	}
	if err := r.dict.CheckModelChannels(classes); err != nil {
		return DecodedText{}, err
	}

	decoded := GreedyDecode(out.Data, timesteps, classes, r.dict)
	if decoded.Text == "" || decoded.Confidence < cfg.ConfThreshold {
		return DecodedText{}, nil
	}
	return decoded, nil
}

// extractSequenceShape normalizes a [1, T, C] CTC output into (T, C).
func extractSequenceShape(out onnxrt.Output) (timesteps, classes int, err error) {
	if len(out.Shape) != 3 {
		return 0, 0, fmt.Errorf("recognizer: output has %d dims, want 3", len(out.Shape))
	}
	timesteps = int(out.Shape[1])
	classes = int(out.Shape[2])
	if timesteps <= 0 || classes <= 0 || timesteps*classes != len(out.Data) {
		return 0, 0, fmt.Errorf("recognizer: output shape %v incompatible with %d values", out.Shape, len(out.Data))
	}
	return timesteps, classes, nil
}
