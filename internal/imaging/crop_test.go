package imaging

import (
	"encoding/base64"
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/marker-ar/internal/geometry"
)

func TestCrop(t *testing.T) {
	img := solidImage(100, 100, color.RGBA{255, 0, 0, 255})

	result, err := Crop(img, image.Rect(0, 0, 50, 50), 1.0)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}

	if result.Width != 50 || result.Height != 50 {
		t.Errorf("dimensions: got %dx%d, want 50x50", result.Width, result.Height)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}
	if _, err := base64.StdEncoding.DecodeString(result.ImageBase64); err != nil {
		t.Errorf("failed to decode base64: %v", err)
	}
}

func TestCrop_Scale(t *testing.T) {
	img := solidImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name  string
		r     image.Rectangle
		scale float64
		wantW int
		wantH int
	}{
		{"up 2x", image.Rect(0, 0, 50, 50), 2.0, 100, 100},
		{"down 0.5x", image.Rect(0, 0, 100, 100), 0.5, 50, 50},
		{"zero means 1x", image.Rect(10, 20, 40, 30), 0, 30, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Crop(img, tt.r, tt.scale)
			if err != nil {
				t.Fatalf("Crop failed: %v", err)
			}
			if result.Width != tt.wantW || result.Height != tt.wantH {
				t.Errorf("dimensions: got %dx%d, want %dx%d", result.Width, result.Height, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestCrop_InvalidRegion(t *testing.T) {
	img := solidImage(100, 100, color.White)

	tests := []struct {
		name string
		r    image.Rectangle
	}{
		{"outside", image.Rect(50, 50, 150, 150)},
		{"empty", image.Rect(10, 10, 10, 20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Crop(img, tt.r, 1.0); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCropAround(t *testing.T) {
	img := solidImage(200, 100, color.White)
	quad := []geometry.Point{geometry.Pt(50, 20), geometry.Pt(89, 22), geometry.Pt(88, 60), geometry.Pt(51.5, 59)}

	tests := []struct {
		name   string
		margin int
		want   image.Rectangle
	}{
		{"tight", 0, image.Rect(50, 20, 90, 61)},
		{"margin", 5, image.Rect(45, 15, 95, 66)},
		{"clipped", 30, image.Rect(20, 0, 120, 91)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := CropAround(img, quad, tt.margin, 1.0)
			if err != nil {
				t.Fatalf("CropAround failed: %v", err)
			}
			if result.Bounds != tt.want {
				t.Errorf("bounds: got %v, want %v", result.Bounds, tt.want)
			}
			if result.Width != tt.want.Dx() || result.Height != tt.want.Dy() {
				t.Errorf("dimensions: got %dx%d", result.Width, result.Height)
			}
		})
	}
}

func TestCropAround_Errors(t *testing.T) {
	img := solidImage(50, 50, color.White)

	if _, err := CropAround(img, nil, 0, 1.0); err == nil {
		t.Error("expected error for no points")
	}
	if _, err := CropAround(img, []geometry.Point{geometry.Pt(500, 500)}, 2, 1.0); err == nil {
		t.Error("expected error for points outside the image")
	}
}
