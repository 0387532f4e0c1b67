package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/marker-ar/internal/geometry"
)

// CropResult contains the cropped image data
type CropResult struct {
	// Bounds is the cropped rectangle in source image coordinates.
	Bounds      image.Rectangle `json:"bounds"`
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	ImageBase64 string          `json:"image_base64"`
	MimeType    string          `json:"mime_type"`
}

// Crop extracts a rectangular region from an image, optionally rescaled.
func Crop(img image.Image, r image.Rectangle, scale float64) (*CropResult, error) {
	bounds := img.Bounds()
	if !r.In(bounds) {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", r, bounds)
	}
	if r.Empty() {
		return nil, fmt.Errorf("invalid crop region %v", r)
	}

	cropped := imaging.Crop(img, r)
	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(cropped.Bounds().Dx()) * scale)
		newHeight := int(float64(cropped.Bounds().Dy()) * scale)
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}

	encoded, err := EncodePNG(cropped)
	if err != nil {
		return nil, err
	}

	return &CropResult{
		Bounds:      r,
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

// CropAround crops the bounding box of pts grown by margin pixels on every
// side and clipped to the image. It shows a candidate quad as it appears in
// the source frame.
func CropAround(img image.Image, pts []geometry.Point, margin int, scale float64) (*CropResult, error) {
	if len(pts) == 0 {
		return nil, fmt.Errorf("failed to crop: no points")
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	r := image.Rect(
		int(math.Floor(minX))-margin, int(math.Floor(minY))-margin,
		int(math.Floor(maxX))+1+margin, int(math.Floor(maxY))+1+margin,
	).Intersect(img.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("failed to crop: points lie outside image bounds %v", img.Bounds())
	}
	return Crop(img, r, scale)
}
