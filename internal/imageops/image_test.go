package imageops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAtRoundTrip(t *testing.T) {
	img, err := NewImage(2, 2)
	require.NoError(t, err)

	img.Set(1, 0, 10, 20, 30)
	b, g, r := img.At(1, 0)
	assert.Equal(t, byte(10), b)
	assert.Equal(t, byte(20), g)
	assert.Equal(t, byte(30), r)
}

func TestNewImageRejectsZeroDims(t *testing.T) {
	_, err := NewImage(0, 5)
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func TestRotate90SwapsDimensionsAndPreservesPixels(t *testing.T) {
	img, err := NewImage(3, 2)
	require.NoError(t, err)
	img.Set(2, 1, 7, 8, 9)

	rotated, err := img.Rotate90()
	require.NoError(t, err)
	assert.Equal(t, img.Height, rotated.Width)
	assert.Equal(t, img.Width, rotated.Height)

	var found bool
	for y := 0; y < rotated.Height; y++ {
		for x := 0; x < rotated.Width; x++ {
			b, g, r := rotated.At(x, y)
			if b == 7 && g == 8 && r == 9 {
				found = true
			}
		}
	}
	assert.True(t, found, "rotation should preserve every pixel, just relocate it")
}

func TestRotate90ThenRotate270IsIdentity(t *testing.T) {
	img, err := NewImage(3, 2)
	require.NoError(t, err)
	img.Set(2, 1, 7, 8, 9)
	img.Set(0, 0, 1, 2, 3)

	rotated, err := img.Rotate90()
	require.NoError(t, err)
	back, err := rotated.Rotate270()
	require.NoError(t, err)

	assert.Equal(t, img.Width, back.Width)
	assert.Equal(t, img.Height, back.Height)
	assert.Equal(t, img.Pix, back.Pix)
}

func TestPasteBlackClipsOutOfBounds(t *testing.T) {
	src, err := NewImage(4, 4)
	require.NoError(t, err)
	src.Set(0, 0, 9, 9, 9)

	out, err := PasteBlack(2, 2, src, -1, -1)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Width)
}
