// Package imageops implements the HWC/BGR uint8 image representation the
// inference engines consume, plus the pad-and-resize family of preprocess
// operations.
package imageops

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ErrEmptyImage is returned by any operation given a zero-dimension image.
var ErrEmptyImage = errors.New("imageops: image has zero width or height")

// Image is a height x width x 3 byte matrix in BGR channel order, row-major,
// matching the uint8 HWC buffer every model in this pipeline expects. It is
// immutable by convention once constructed; every transform returns a new
// Image.
type Image struct {
	Width, Height int
	// Pix holds Height*Width*3 bytes, row-major, channel order B,G,R.
	Pix []byte
}

// NewImage allocates a zeroed Image of the given size.
func NewImage(width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrEmptyImage
	}
	return &Image{Width: width, Height: height, Pix: make([]byte, width*height*3)}, nil
}

// At returns the BGR triple at (x, y).
func (im *Image) At(x, y int) (b, g, r byte) {
	i := (y*im.Width + x) * 3
	return im.Pix[i], im.Pix[i+1], im.Pix[i+2]
}

// Set writes the BGR triple at (x, y).
func (im *Image) Set(x, y int, b, g, r byte) {
	i := (y*im.Width + x) * 3
	im.Pix[i] = b
	im.Pix[i+1] = g
	im.Pix[i+2] = r
}

// FromStdImage converts a standard library image.Image into a BGR HWC Image.
func FromStdImage(src image.Image) (*Image, error) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyImage
	}
	out, err := NewImage(w, h)
	if err != nil {
		return nil, err
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			out.Set(x, y, byte(bl>>8), byte(g>>8), byte(r>>8))
		}
	}
	return out, nil
}

// ToStdImage converts the Image back into a standard library image.NRGBA for
// use with imaging's resize/rotate primitives and for debug dumps.
func (im *Image) ToStdImage() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, im.Width, im.Height))
	for y := 0; y < im.Height; y++ {
		for x := 0; x < im.Width; x++ {
			b, g, r := im.At(x, y)
			i := out.PixOffset(x, y)
			out.Pix[i] = r
			out.Pix[i+1] = g
			out.Pix[i+2] = b
			out.Pix[i+3] = 255
		}
	}
	return out
}

// Crop returns the sub-image of the rectangle [x0,y0)-[x1,y1), clamped to
// the source bounds.
func (im *Image) Crop(x0, y0, x1, y1 int) (*Image, error) {
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > im.Width {
		x1 = im.Width
	}
	if y1 > im.Height {
		y1 = im.Height
	}
	if x1 <= x0 || y1 <= y0 {
		return nil, ErrEmptyImage
	}
	out, err := NewImage(x1-x0, y1-y0)
	if err != nil {
		return nil, err
	}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			b, g, r := im.At(x, y)
			out.Set(x-x0, y-y0, b, g, r)
		}
	}
	return out, nil
}

// Resize scales the image to (width, height) using imaging's Lanczos
// resampler, matching the teacher's image-ops resize quality.
func (im *Image) Resize(width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("imageops: invalid resize target %dx%d", width, height)
	}
	resized := imaging.Resize(im.ToStdImage(), width, height, imaging.Lanczos)
	return FromStdImage(resized)
}

// Rotate90 rotates the image 90 degrees clockwise.
func (im *Image) Rotate90() (*Image, error) {
	return FromStdImage(imaging.Rotate270(im.ToStdImage())) // imaging's Rotate270 is CW by 90 in its CCW convention
}

// Rotate180 rotates the image 180 degrees.
func (im *Image) Rotate180() (*Image, error) {
	return FromStdImage(imaging.Rotate180(im.ToStdImage()))
}

// Rotate270 rotates the image 270 degrees clockwise (== 90 CCW).
func (im *Image) Rotate270() (*Image, error) {
	return FromStdImage(imaging.Rotate90(im.ToStdImage()))
}

// PasteBlack returns a new Image of size (width, height) with im pasted at
// (x, y) on a black background.
func PasteBlack(width, height int, src *Image, x, y int) (*Image, error) {
	out, err := NewImage(width, height)
	if err != nil {
		return nil, err
	}
	for sy := 0; sy < src.Height; sy++ {
		dy := y + sy
		if dy < 0 || dy >= height {
			continue
		}
		for sx := 0; sx < src.Width; sx++ {
			dx := x + sx
			if dx < 0 || dx >= width {
				continue
			}
			b, g, r := src.At(sx, sy)
			out.Set(dx, dy, b, g, r)
		}
	}
	return out, nil
}
