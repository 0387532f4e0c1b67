package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/marker-ar/internal/geometry"
)

// WarpPerspective renders a width×height image by pushing src through the
// homography h (source pixel coordinates to destination pixel coordinates).
//
// Every destination pixel (u, v) is mapped back through h⁻¹ and filled with
// the bilinear interpolation of the four surrounding source pixels. Pixel
// coordinates refer to pixel centres, so a quad corner found at (x, y)
// lands exactly on destination pixel (u, v) when h maps one onto the other.
// Samples that fall outside the source read as opaque black.
//
// Rows are processed in parallel with bild's row dispatcher. An *image.NRGBA
// source with its origin at (0, 0) is read in place; anything else is
// cloned first.
//
// Returns an error if h is not invertible or the requested size is empty.
func WarpPerspective(src image.Image, h geometry.Homography, width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("failed to warp image: invalid size %dx%d", width, height)
	}
	inv, err := h.Inverse()
	if err != nil {
		return nil, fmt.Errorf("failed to warp image: %w", err)
	}

	in, ok := src.(*image.NRGBA)
	if !ok || in.Rect.Min != (image.Point{}) {
		in = imaging.Clone(src)
	}
	out := image.NewNRGBA(image.Rect(0, 0, width, height))

	parallel.Line(height, func(start, end int) {
		for v := start; v < end; v++ {
			row := out.Pix[v*out.Stride : v*out.Stride+width*4]
			for u := 0; u < width; u++ {
				i := u * 4
				row[i+3] = 0xff
				p, ok := inv.Apply(geometry.Pt(float64(u), float64(v)))
				if !ok {
					continue
				}
				r, g, b := bilinear(in, p.X, p.Y)
				row[i], row[i+1], row[i+2] = r, g, b
			}
		}
	})
	return out, nil
}

// bilinear samples img at a fractional position. Neighbours outside the
// image contribute black.
func bilinear(img *image.NRGBA, x, y float64) (uint8, uint8, uint8) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if x < -1 || y < -1 || x > float64(w) || y > float64(h) || math.IsNaN(x) || math.IsNaN(y) {
		return 0, 0, 0
	}

	x0, y0 := math.Floor(x), math.Floor(y)
	fx, fy := x-x0, y-y0
	ix, iy := int(x0), int(y0)

	var acc [3]float64
	add := func(px, py int, weight float64) {
		if weight == 0 || px < 0 || py < 0 || px >= w || py >= h {
			return
		}
		o := py*img.Stride + px*4
		acc[0] += weight * float64(img.Pix[o])
		acc[1] += weight * float64(img.Pix[o+1])
		acc[2] += weight * float64(img.Pix[o+2])
	}
	add(ix, iy, (1-fx)*(1-fy))
	add(ix+1, iy, fx*(1-fy))
	add(ix, iy+1, (1-fx)*fy)
	add(ix+1, iy+1, fx*fy)

	return clampByte(acc[0]), clampByte(acc[1]), clampByte(acc[2])
}

func clampByte(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
