package imageio

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSupportedImage(t *testing.T) {
	assert.True(t, IsSupportedImage("scan.PNG"))
	assert.True(t, IsSupportedImage("scan.jpeg"))
	assert.False(t, IsSupportedImage("scan.gif"))
	assert.False(t, IsSupportedImage("scan"))
}

func TestLoadImageRejectsEmptyPath(t *testing.T) {
	_, _, err := LoadImage("")
	assert.Error(t, err)
}

func TestLoadImageRejectsUnsupportedFormat(t *testing.T) {
	_, _, err := LoadImage("scan.gif")
	assert.Error(t, err)
}

func TestLoadImageRejectsMissingFile(t *testing.T) {
	_, _, err := LoadImage(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestLoadImageDecodesPNG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.png")

	src := image.NewRGBA(image.Rect(0, 0, 4, 3))
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, src))
	require.NoError(t, f.Close())

	img, meta, err := LoadImage(path)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Width)
	assert.Equal(t, 3, img.Height)
	assert.Equal(t, "png", meta.Format)
	assert.Equal(t, path, meta.Path)
	assert.Greater(t, meta.SizeBytes, int64(0))
}
