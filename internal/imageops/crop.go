package imageops

import (
	"math"

	"github.com/glyphlane/oar/internal/geom"
)

// RotateCrop builds a perspective transform from quad to an axis-aligned
// rectangle of width max(|p0-p1|,|p3-p2|) and height max(|p0-p3|,|p1-p2|),
// bilinearly samples img through it, and rotates the result 90 degrees
// clockwise if its height/width ratio is >= 1.5 (portrait->landscape
// normalization for the recognizer).
func RotateCrop(img *Image, quad geom.Quad) (*Image, error) {
	w0 := dist(quad[0], quad[1])
	w1 := dist(quad[3], quad[2])
	h0 := dist(quad[0], quad[3])
	h1 := dist(quad[1], quad[2])

	width := int(math.Round(math.Max(w0, w1)))
	height := int(math.Round(math.Max(h0, h1)))
	if width < 1 || height < 1 {
		return nil, ErrEmptyImage
	}

	dst := geom.Quad{
		{X: 0, Y: 0},
		{X: float64(width - 1), Y: 0},
		{X: float64(width - 1), Y: float64(height - 1)},
		{X: 0, Y: float64(height - 1)},
	}
	h, ok := geom.ComputeHomography([4]geom.Point(dst), [4]geom.Point(quad))
	if !ok {
		return nil, ErrEmptyImage
	}

	out, err := NewImage(width, height)
	if err != nil {
		return nil, err
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			sx, sy := h.Apply(float64(x), float64(y))
			b, g, r := bilinearSample(img, sx, sy)
			out.Set(x, y, b, g, r)
		}
	}

	if float64(height)/float64(width) >= 1.5 {
		return out.Rotate90()
	}
	return out, nil
}

func dist(a, b geom.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Sample bilinearly samples img at floating-point (x, y), returning black
// for out-of-bounds coordinates. Shared by RotateCrop and the UVDoc remap
// stage.
func Sample(img *Image, x, y float64) (b, g, r byte) {
	return bilinearSample(img, x, y)
}

// bilinearSample samples img at floating-point (x, y), returning black for
// out-of-bounds coordinates.
func bilinearSample(img *Image, x, y float64) (b, g, r byte) {
	if x < 0 || y < 0 || x > float64(img.Width-1) || y > float64(img.Height-1) {
		return 0, 0, 0
	}
	x0 := int(x)
	y0 := int(y)
	x1 := x0 + 1
	y1 := y0 + 1
	if x1 >= img.Width {
		x1 = img.Width - 1
	}
	if y1 >= img.Height {
		y1 = img.Height - 1
	}
	fx := x - float64(x0)
	fy := y - float64(y0)

	b00, g00, r00 := img.At(x0, y0)
	b10, g10, r10 := img.At(x1, y0)
	b01, g01, r01 := img.At(x0, y1)
	b11, g11, r11 := img.At(x1, y1)

	lb := lerp(lerp(float64(b00), float64(b10), fx), lerp(float64(b01), float64(b11), fx), fy)
	lg := lerp(lerp(float64(g00), float64(g10), fx), lerp(float64(g01), float64(g11), fx), fy)
	lr := lerp(lerp(float64(r00), float64(r10), fx), lerp(float64(r01), float64(r11), fx), fy)
	return byte(lb + 0.5), byte(lg + 0.5), byte(lr + 0.5)
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
