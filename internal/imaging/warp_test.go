package imaging

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/marker-ar/internal/geometry"
)

// createCheckerImage creates a checkerboard with square cells of the given
// size, black in the top-left cell.
func createCheckerImage(width, height, cell int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBA{0, 0, 0, 255}
			if (x/cell+y/cell)%2 == 1 {
				c = color.NRGBA{255, 255, 255, 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestWarpPerspective_Translation(t *testing.T) {
	src := createCheckerImage(200, 200, 10)
	// Source (50,50) lands on destination (0,0).
	h := geometry.Homography{1, 0, -50, 0, 1, -50, 0, 0, 1}

	out, err := WarpPerspective(src, h, 100, 100)
	if err != nil {
		t.Fatalf("WarpPerspective failed: %v", err)
	}

	for v := 0; v < 100; v += 7 {
		for u := 0; u < 100; u += 7 {
			want := src.NRGBAAt(u+50, v+50)
			if got := out.NRGBAAt(u, v); got != want {
				t.Fatalf("pixel (%d,%d): got %v, want %v", u, v, got, want)
			}
		}
	}
}

func TestWarpPerspective_Scale(t *testing.T) {
	src := createCheckerImage(200, 200, 20)
	h := geometry.Homography{0.5, 0, 0, 0, 0.5, 0, 0, 0, 1}

	out, err := WarpPerspective(src, h, 100, 100)
	if err != nil {
		t.Fatalf("WarpPerspective failed: %v", err)
	}

	for v := 0; v < 100; v += 5 {
		for u := 0; u < 100; u += 5 {
			want := src.NRGBAAt(2*u, 2*v)
			if got := out.NRGBAAt(u, v); got != want {
				t.Fatalf("pixel (%d,%d): got %v, want %v", u, v, got, want)
			}
		}
	}
}

func TestWarpPerspective_OutsideIsBlack(t *testing.T) {
	src := solidImage(50, 50, color.RGBA{255, 255, 255, 255})
	h := geometry.Homography{1, 0, 1000, 0, 1, 1000, 0, 0, 1}

	out, err := WarpPerspective(src, h, 20, 20)
	if err != nil {
		t.Fatalf("WarpPerspective failed: %v", err)
	}
	want := color.NRGBA{0, 0, 0, 255}
	for v := 0; v < 20; v++ {
		for u := 0; u < 20; u++ {
			if got := out.NRGBAAt(u, v); got != want {
				t.Fatalf("pixel (%d,%d): got %v, want opaque black", u, v, got)
			}
		}
	}
}

func TestWarpPerspective_Bilinear(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 2, 1))
	src.Pix[0], src.Pix[1] = 0, 200
	// Destination (0,0) reads source (0.5, 0).
	h := geometry.Homography{1, 0, -0.5, 0, 1, 0, 0, 0, 1}

	out, err := WarpPerspective(src, h, 1, 1)
	if err != nil {
		t.Fatalf("WarpPerspective failed: %v", err)
	}
	if got := out.NRGBAAt(0, 0).R; got != 100 {
		t.Errorf("interpolated value: got %d, want 100", got)
	}
}

func TestWarpPerspective_Errors(t *testing.T) {
	src := solidImage(10, 10, color.White)

	if _, err := WarpPerspective(src, geometry.Identity(), 0, 10); err == nil {
		t.Error("expected error for empty size")
	}

	_, err := WarpPerspective(src, geometry.Homography{}, 10, 10)
	if !errors.Is(err, geometry.ErrDegenerate) {
		t.Errorf("singular homography: got %v, want ErrDegenerate", err)
	}
}
