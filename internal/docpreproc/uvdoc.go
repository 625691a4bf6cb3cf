package docpreproc

import (
	"fmt"

	"github.com/glyphlane/oar/internal/imageops"
	"github.com/glyphlane/oar/internal/onnxrt"
)

// Unwarper wraps the loaded UVDoc displacement-field model.
type Unwarper struct {
	engine *onnxrt.Engine
	height int
	width  int
}

// NewUnwarper builds an Unwarper, deriving its expected input size from the
// model's declared input shape, defaulting to 288x288 for dynamic axes.
func NewUnwarper(engine *onnxrt.Engine) *Unwarper {
	h, w := 288, 288
	shape := engine.InputShape()
	if len(shape) == 4 {
		if shape[1] > 0 {
			h = int(shape[1])
		}
		if shape[2] > 0 {
			w = int(shape[2])
		}
	}
	return &Unwarper{engine: engine, height: h, width: w}
}

// field is a low-resolution 2-channel displacement field: field[y][x] holds
// the (u, v) source coordinate, normalized to [0, 1], that output pixel
// (x, y) should sample from.
type field struct {
	h, w int
	u, v []float32
}

func (f field) at(x, y int) (float32, float32) {
	i := y*f.w + x
	return f.u[i], f.v[i]
}

// Unwarp runs the UVDoc model on img and remaps it through the predicted
// displacement field, upsampled to img's resolution with align_corners=true
// bilinear interpolation on both the field and the final pixel sample.
func (u *Unwarper) Unwarp(img *imageops.Image) (*imageops.Image, error) {
	resized, err := img.Resize(u.width, u.height)
	if err != nil {
		return nil, fmt.Errorf("docpreproc: resize for uvdoc: %w", err)
	}

	out, err := u.engine.RunHWC(resized.Pix, u.height, u.width, 3)
	if err != nil {
		return nil, fmt.Errorf("docpreproc: uvdoc inference: %w", err)
	}

	f, err := parseField(out)
	if err != nil {
		return nil, err
	}

	return remap(img, f)
}

// parseField accepts either an NCHW-style [1, 2, H, W] or NHWC-style
// [1, H, W, 2] displacement field output.
func parseField(out onnxrt.Output) (field, error) {
	if len(out.Shape) != 4 {
		return field{}, fmt.Errorf("docpreproc: uvdoc output has %d dims, want 4", len(out.Shape))
	}

	var h, w int
	var channelsFirst bool
	switch {
	case out.Shape[1] == 2:
		channelsFirst = true
		h, w = int(out.Shape[2]), int(out.Shape[3])
	case out.Shape[3] == 2:
		h, w = int(out.Shape[1]), int(out.Shape[2])
	default:
		return field{}, fmt.Errorf("docpreproc: uvdoc output shape %v has no 2-channel axis", out.Shape)
	}
	if h <= 0 || w <= 0 {
		return field{}, fmt.Errorf("docpreproc: uvdoc output has non-positive spatial dims %dx%d", h, w)
	}

	f := field{h: h, w: w, u: make([]float32, h*w), v: make([]float32, h*w)}
	if channelsFirst {
		plane := h * w
		for i := 0; i < plane; i++ {
			f.u[i] = out.Data[i]
			f.v[i] = out.Data[plane+i]
		}
	} else {
		for i := 0; i < h*w; i++ {
			f.u[i] = out.Data[i*2]
			f.v[i] = out.Data[i*2+1]
		}
	}
	return f, nil
}

// sampleField bilinearly upsamples f to full-resolution coordinate (x, y) in
// [0, outW) x [0, outH), using align_corners=true semantics: corner grid
// cells map exactly to corner output pixels.
func sampleField(f field, x, y, outW, outH int) (float32, float32) {
	fx := scaleAlignCorners(x, outW, f.w)
	fy := scaleAlignCorners(y, outH, f.h)

	x0 := int(fx)
	y0 := int(fy)
	x1 := x0 + 1
	y1 := y0 + 1
	if x1 >= f.w {
		x1 = f.w - 1
	}
	if y1 >= f.h {
		y1 = f.h - 1
	}
	tx := float32(fx) - float32(x0)
	ty := float32(fy) - float32(y0)

	u00, v00 := f.at(x0, y0)
	u10, v10 := f.at(x1, y0)
	u01, v01 := f.at(x0, y1)
	u11, v11 := f.at(x1, y1)

	u := lerpf(lerpf(u00, u10, tx), lerpf(u01, u11, tx), ty)
	v := lerpf(lerpf(v00, v10, tx), lerpf(v01, v11, tx), ty)
	return u, v
}

// scaleAlignCorners maps output index i in [0, outN) to a fractional source
// grid coordinate in [0, srcN-1], matching PyTorch's align_corners=true.
func scaleAlignCorners(i, outN, srcN int) float64 {
	if outN <= 1 || srcN <= 1 {
		return 0
	}
	return float64(i) * float64(srcN-1) / float64(outN-1)
}

func lerpf(a, b, t float32) float32 { return a + (b-a)*t }

func remap(img *imageops.Image, f field) (*imageops.Image, error) {
	out, err := imageops.NewImage(img.Width, img.Height)
	if err != nil {
		return nil, err
	}
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			u, v := sampleField(f, x, y, img.Width, img.Height)
			sx := float64(u) * float64(img.Width-1)
			sy := float64(v) * float64(img.Height-1)
			b, g, r := imageops.Sample(img, sx, sy)
			out.Set(x, y, b, g, r)
		}
	}
	return out, nil
}
