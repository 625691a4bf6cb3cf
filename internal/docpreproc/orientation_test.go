package docpreproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glyphlane/oar/internal/imageops"
)

func TestCorrectZeroAngleIsNoop(t *testing.T) {
	img, err := imageops.NewImage(3, 2)
	require.NoError(t, err)
	out, err := Correct(img, 0)
	require.NoError(t, err)
	assert.Same(t, img, out)
}

func TestCorrectRejectsUnsupportedAngle(t *testing.T) {
	img, err := imageops.NewImage(3, 2)
	require.NoError(t, err)
	_, err = Correct(img, 45)
	assert.Error(t, err)
}

func TestCorrectNonZeroAnglesPreservePixelCount(t *testing.T) {
	img, err := imageops.NewImage(4, 3)
	require.NoError(t, err)
	img.Set(0, 0, 1, 2, 3)

	for _, angle := range []int{90, 180, 270} {
		corrected, err := Correct(img, angle)
		require.NoError(t, err)
		assert.Equal(t, len(img.Pix), len(corrected.Pix))
	}
}

func TestSoftmaxSumsToOne(t *testing.T) {
	probs := softmax([]float32{1, 2, 3, 4})
	var sum float32
	for _, p := range probs {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-5)
}

func TestSoftmaxPicksLargestLogit(t *testing.T) {
	probs := softmax([]float32{0, 5, 1, 0})
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	assert.Equal(t, 1, best)
}
