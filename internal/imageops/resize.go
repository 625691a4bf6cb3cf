package imageops

import (
	"math"

	"github.com/disintegration/imaging"
)

// bucketRatios is the fixed set of aspect-ratio buckets the recognizer
// model family is specialized for.
var bucketRatios = []int{3, 5, 10, 15, 25, 35}

// BucketFor returns the smallest bucket B with B >= r, capped at the
// largest configured bucket.
func BucketFor(r float64) int {
	max := bucketRatios[len(bucketRatios)-1]
	for _, b := range bucketRatios {
		if r <= float64(b) {
			return b
		}
	}
	return max
}

// Buckets returns the configured aspect-ratio buckets in ascending order.
func Buckets() []int {
	out := make([]int, len(bucketRatios))
	copy(out, bucketRatios)
	return out
}

// PadAndResizeResult carries the geometry needed to map coordinates from
// model space back to the original image.
type PadAndResizeResult struct {
	Image    *Image
	PadLeft  int
	PadTop   int
	Scale    float64
}

// PadAndResize pads the shorter side of img with black to make it square of
// side S = max(H, W), then resizes to target x target with bilinear
// interpolation. Resizing always happens after padding so the aspect ratio
// of the original content is preserved.
func PadAndResize(img *Image, target int) (PadAndResizeResult, error) {
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return PadAndResizeResult{}, ErrEmptyImage
	}
	s := img.Width
	if img.Height > s {
		s = img.Height
	}
	padLeft := (s - img.Width) / 2
	padTop := (s - img.Height) / 2

	square, err := PasteBlack(s, s, img, padLeft, padTop)
	if err != nil {
		return PadAndResizeResult{}, err
	}
	resized, err := FromStdImage(imaging.Resize(square.ToStdImage(), target, target, imaging.Linear))
	if err != nil {
		return PadAndResizeResult{}, err
	}
	return PadAndResizeResult{
		Image:   resized,
		PadLeft: padLeft,
		PadTop:  padTop,
		Scale:   float64(target) / float64(s),
	}, nil
}

// PadAndResizeKeepRatio resizes img to height targetH preserving aspect
// ratio, then right-pads with black to the bucketed width
// targetH * bucket(ratio). maxRatio caps the bucket selection (pass the
// largest configured bucket to use the full recognizer family).
func PadAndResizeKeepRatio(img *Image, targetH int, maxRatio int) (*Image, int, error) {
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return nil, 0, ErrEmptyImage
	}
	if targetH <= 0 {
		return nil, 0, ErrEmptyImage
	}
	ratio := float64(img.Width) / float64(img.Height)
	newW := int(math.Round(float64(targetH) * ratio))
	if newW < 1 {
		newW = 1
	}

	bucket := BucketFor(ratio)
	if bucket > maxRatio {
		bucket = maxRatio
	}
	targetW := targetH * bucket
	if newW > targetW {
		newW = targetW
	}

	resized, err := img.Resize(newW, targetH)
	if err != nil {
		return nil, 0, err
	}
	if newW == targetW {
		return resized, bucket, nil
	}
	padded, err := PasteBlack(targetW, targetH, resized, 0, 0)
	if err != nil {
		return nil, 0, err
	}
	return padded, bucket, nil
}
