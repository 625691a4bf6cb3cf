// Package imageio loads source image files from disk into the
// imageops.Image representation the pipeline consumes.
package imageio

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"

	"github.com/glyphlane/oar/internal/imageops"
)

// SupportedExtensions lists the file extensions LoadImage will decode.
var SupportedExtensions = []string{".jpg", ".jpeg", ".png", ".bmp"}

// IsSupportedImage reports whether path has a supported image extension.
func IsSupportedImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// Metadata captures lightweight file and pixel information about a loaded
// image.
type Metadata struct {
	Path      string
	Format    string
	SizeBytes int64
	Width     int
	Height    int
}

// LoadImage decodes path into the pipeline's BGR image representation.
func LoadImage(path string) (*imageops.Image, Metadata, error) {
	if path == "" {
		return nil, Metadata{}, fmt.Errorf("imageio: empty path")
	}
	if !IsSupportedImage(path) {
		return nil, Metadata{}, fmt.Errorf("imageio: unsupported format %s", filepath.Ext(path))
	}

	f, err := os.Open(path) //nolint:gosec // caller-provided path is expected
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("imageio: open %s: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("imageio: stat %s: %w", path, err)
	}

	decoded, format, err := image.Decode(f)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("imageio: decode %s: %w", path, err)
	}

	img, err := imageops.FromStdImage(decoded)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("imageio: convert %s: %w", path, err)
	}

	meta := Metadata{
		Path:      path,
		Format:    format,
		SizeBytes: fi.Size(),
		Width:     img.Width,
		Height:    img.Height,
	}
	return img, meta, nil
}
