package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/histogram"
	"github.com/anthonynsimon/bild/parallel"
	"github.com/disintegration/imaging"
)

// Grayscale converts an image to 8-bit luminance using ITU-R BT.601
// weights (0.299*R + 0.587*G + 0.114*B). The result always has its origin
// at (0, 0).
func Grayscale(img image.Image) *image.Gray {
	g := imaging.Grayscale(img)
	b := g.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := g.Pix[y*g.Stride : y*g.Stride+b.Dx()*4]
		dst := out.Pix[y*out.Stride : y*out.Stride+b.Dx()]
		for x := range dst {
			dst[x] = src[x*4]
		}
	}
	return out
}

// OtsuLevel computes Otsu's threshold for a grayscale image.
//
// The returned value t splits the histogram into [0, t] (background) and
// [t+1, 255] (foreground) so that the between-class variance is maximal.
// Ties resolve to the lowest t. A single-valued image yields 0.
//
// # Algorithm
//
// For each candidate split t the class weights wB, wF and means mB, mF are
// accumulated from the 256-bin histogram and the between-class variance
// wB*wF*(mB-mF)² is evaluated. The histogram comes from bild's RGBA
// histogram; for gray input all three colour channels carry the same bins.
func OtsuLevel(gray image.Image) uint8 {
	bins := histogram.NewRGBAHistogram(gray).R.Bins

	var total, sumAll float64
	for i, n := range bins {
		total += float64(n)
		sumAll += float64(i) * float64(n)
	}

	var wB, sumB, best float64
	level := 0
	best = -1
	for t := 0; t < 255; t++ {
		wB += float64(bins[t])
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(bins[t])
		mB := sumB / wB
		mF := (sumAll - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			level = t
		}
	}
	return uint8(level)
}

// Binarize converts an image to black (0) and white (255) with an
// automatically chosen Otsu threshold. Pixels brighter than the threshold
// become white.
func Binarize(img image.Image) *image.Gray {
	gray := Grayscale(img)
	return Threshold(gray, OtsuLevel(gray))
}

// Threshold maps every pixel above level to 255 and the rest to 0. The
// comparison runs on the raw luminance bytes.
func Threshold(gray *image.Gray, level uint8) *image.Gray {
	b := gray.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	parallel.Line(b.Dy(), func(start, end int) {
		for y := start; y < end; y++ {
			src := gray.Pix[y*gray.Stride : y*gray.Stride+b.Dx()]
			dst := out.Pix[y*out.Stride : y*out.Stride+b.Dx()]
			for x, v := range src {
				if v > level {
					dst[x] = 255
				}
			}
		}
	})
	return out
}
