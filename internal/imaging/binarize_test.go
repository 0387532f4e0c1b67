package imaging

import (
	"image"
	"image/color"
	"testing"
)

// createSplitImage fills the left half with one grey level and the right
// half with another.
func createSplitImage(width, height int, left, right uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := right
			if x < width/2 {
				v = left
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func TestGrayscale(t *testing.T) {
	tests := []struct {
		name string
		c    color.RGBA
		want uint8
	}{
		{"white", color.RGBA{255, 255, 255, 255}, 255},
		{"black", color.RGBA{0, 0, 0, 255}, 0},
		{"red", color.RGBA{255, 0, 0, 255}, 76},
		{"green", color.RGBA{0, 255, 0, 255}, 150},
		{"blue", color.RGBA{0, 0, 255, 255}, 29},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Grayscale(solidImage(4, 3, tt.c))
			if g.Bounds() != image.Rect(0, 0, 4, 3) {
				t.Fatalf("bounds: got %v, want (0,0)-(4,3)", g.Bounds())
			}
			got := g.GrayAt(2, 1).Y
			if diff := int(got) - int(tt.want); diff < -1 || diff > 1 {
				t.Errorf("luma: got %d, want %d±1", got, tt.want)
			}
		})
	}
}

func TestGrayscale_OffsetBounds(t *testing.T) {
	src := solidImage(20, 20, color.RGBA{255, 255, 255, 255})
	sub := src.SubImage(image.Rect(5, 5, 15, 10))

	g := Grayscale(sub)
	if g.Bounds() != image.Rect(0, 0, 10, 5) {
		t.Errorf("bounds: got %v, want (0,0)-(10,5)", g.Bounds())
	}
}

func TestOtsuLevel_Bimodal(t *testing.T) {
	img := createSplitImage(40, 20, 40, 200)

	level := OtsuLevel(img)
	if level < 40 || level >= 200 {
		t.Errorf("OtsuLevel: got %d, want within [40, 200)", level)
	}
}

func TestOtsuLevel_Uniform(t *testing.T) {
	for _, v := range []uint8{0, 128, 255} {
		img := createSplitImage(10, 10, v, v)
		if got := OtsuLevel(img); got != 0 {
			t.Errorf("OtsuLevel(uniform %d): got %d, want 0", v, got)
		}
	}
}

func TestBinarize(t *testing.T) {
	img := createSplitImage(40, 20, 40, 200)

	bin := Binarize(img)
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			want := uint8(255)
			if x < 20 {
				want = 0
			}
			if got := bin.GrayAt(x, y).Y; got != want {
				t.Fatalf("pixel (%d,%d): got %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestBinarize_OnlyTwoValues(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 7 % 256)
	}

	bin := Binarize(img)
	for i, v := range bin.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("pixel %d: got %d, want 0 or 255", i, v)
		}
	}
}

func TestThreshold_ExactAtLevel(t *testing.T) {
	ramp := image.NewGray(image.Rect(0, 0, 256, 1))
	for i := range ramp.Pix {
		ramp.Pix[i] = uint8(i)
	}

	for _, level := range []uint8{0, 1, 99, 127, 128, 254, 255} {
		bin := Threshold(ramp, level)
		for v := 0; v < 256; v++ {
			want := uint8(0)
			if v > int(level) {
				want = 255
			}
			if got := bin.Pix[v]; got != want {
				t.Errorf("level %d, value %d: got %d, want %d", level, v, got, want)
			}
		}
	}
}

func TestBinarize_SplitsAtOtsuLevel(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 7 % 256)
	}
	level := OtsuLevel(img)

	bin := Binarize(img)
	for i, v := range img.Pix {
		want := uint8(0)
		if v > level {
			want = 255
		}
		if bin.Pix[i] != want {
			t.Fatalf("pixel %d (value %d, level %d): got %d, want %d", i, v, level, bin.Pix[i], want)
		}
	}
}
