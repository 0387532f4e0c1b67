package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func decodeOverlay(t *testing.T, res *GridOverlayResult) image.Image {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(res.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("failed to decode png: %v", err)
	}
	return img
}

func TestGridOverlay(t *testing.T) {
	img := solidImage(300, 300, color.RGBA{128, 128, 128, 255})

	result, err := GridOverlay(img, 6, false, "#FF0000")
	if err != nil {
		t.Fatalf("GridOverlay failed: %v", err)
	}

	if result.Width != 300 || result.Height != 300 {
		t.Errorf("dimensions: got %dx%d, want 300x300", result.Width, result.Height)
	}
	if result.Cells != 6 {
		t.Errorf("Cells: got %d, want 6", result.Cells)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}
}

func TestGridOverlay_CellBorders(t *testing.T) {
	img := solidImage(300, 300, color.RGBA{0, 0, 0, 255})

	result, err := GridOverlay(img, 6, false, "#FF0000FF")
	if err != nil {
		t.Fatalf("GridOverlay failed: %v", err)
	}
	gridImg := decodeOverlay(t, result)

	// Borders sit every 50 pixels.
	for _, x := range []int{50, 100, 250} {
		r, g, b, _ := gridImg.At(x, 10).RGBA()
		if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
			t.Errorf("border at x=%d: got (%d,%d,%d), want (255,0,0)", x, r>>8, g>>8, b>>8)
		}
	}

	r, g, b, _ := gridImg.At(25, 40).RGBA()
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("cell interior at (25,40): got (%d,%d,%d), want black", r>>8, g>>8, b>>8)
	}
}

func TestGridOverlay_SampleMarkers(t *testing.T) {
	img := solidImage(300, 300, color.RGBA{255, 255, 255, 255})

	result, err := GridOverlay(img, 6, true, "#FF0000")
	if err != nil {
		t.Fatalf("GridOverlay failed: %v", err)
	}
	gridImg := decodeOverlay(t, result)

	for _, rc := range [][2]int{{0, 0}, {2, 3}, {5, 5}} {
		p := CellCenter(300, 6, rc[0], rc[1])
		r, g, b, _ := gridImg.At(p.X, p.Y).RGBA()
		if r>>8 != 0 || g>>8 != 160 || b>>8 != 255 {
			t.Errorf("probe of cell %v at %v: got (%d,%d,%d)", rc, p, r>>8, g>>8, b>>8)
		}
	}
}

func TestGridOverlay_InvalidCells(t *testing.T) {
	if _, err := GridOverlay(solidImage(10, 10, color.White), 0, false, ""); err == nil {
		t.Error("expected error for zero cells")
	}
}

func TestGridOverlay_FallbackColor(t *testing.T) {
	img := solidImage(120, 120, color.RGBA{128, 128, 128, 255})

	for _, hex := range []string{"", "invalid"} {
		result, err := GridOverlay(img, 4, false, hex)
		if err != nil {
			t.Fatalf("GridOverlay(%q) failed: %v", hex, err)
		}
		if result.ImageBase64 == "" {
			t.Errorf("GridOverlay(%q): ImageBase64 is empty", hex)
		}
	}
}

func TestCellCenter(t *testing.T) {
	tests := []struct {
		row, col int
		want     image.Point
	}{
		{0, 0, image.Pt(25, 25)},
		{0, 5, image.Pt(275, 25)},
		{3, 1, image.Pt(75, 175)},
		{5, 5, image.Pt(275, 275)},
	}
	for _, tt := range tests {
		if got := CellCenter(300, 6, tt.row, tt.col); got != tt.want {
			t.Errorf("CellCenter(300, 6, %d, %d) = %v, want %v", tt.row, tt.col, got, tt.want)
		}
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		hex     string
		want    color.NRGBA
		wantErr bool
	}{
		{"#FF0000", color.NRGBA{255, 0, 0, 255}, false},
		{"#00ff00", color.NRGBA{0, 255, 0, 255}, false},
		{"0000FF", color.NRGBA{0, 0, 255, 255}, false},
		{"#FF000080", color.NRGBA{255, 0, 0, 128}, false},
		{"FFFFFF00", color.NRGBA{255, 255, 255, 0}, false},
		{"", color.NRGBA{}, true},
		{"#FFF", color.NRGBA{}, true},
		{"#GGGGGG", color.NRGBA{}, true},
		{"#FF0000ZZ", color.NRGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			c, err := ParseColor(tt.hex)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", c)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c != tt.want {
				t.Errorf("got %v, want %v", c, tt.want)
			}
		})
	}
}

func TestDrawLabel(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	drawLabel(img, image.Pt(10, 10), "3,4")

	hasText, hasBox := false, false
	for y := 9; y < 24; y++ {
		for x := 9; x < 40; x++ {
			r, _, _, a := img.At(x, y).RGBA()
			if r > 200<<8 {
				hasText = true
			}
			if a > 0 && r < 50<<8 {
				hasBox = true
			}
		}
	}
	if !hasText {
		t.Error("label should have white text pixels")
	}
	if !hasBox {
		t.Error("label should have a dark background")
	}

	if r, _, _, a := img.At(60, 60).RGBA(); r != 0 || a != 0 {
		t.Errorf("pixel outside the label was touched: r=%d a=%d", r>>8, a>>8)
	}
}

func TestDrawLabel_Clipping(t *testing.T) {
	tests := []struct {
		name string
		at   image.Point
		text string
	}{
		{"past bottom right", image.Pt(15, 15), "5,5"},
		{"origin", image.Pt(0, 0), "0,0"},
		{"negative", image.Pt(-5, -5), "1,2"},
		{"empty", image.Pt(10, 10), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewRGBA(image.Rect(0, 0, 20, 20))
			drawLabel(img, tt.at, tt.text)
		})
	}
}
