package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// GridOverlayResult contains a PNG-encoded image with the sampling grid drawn
// on top.
type GridOverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	Cells       int    `json:"cells"`
}

var (
	defaultGridColor = color.NRGBA{R: 255, A: 128}
	probeColor       = color.NRGBA{G: 160, B: 255, A: 255}
	labelBackground  = color.NRGBA{A: 180}
)

// CellCenter returns the pixel probed for cell (row, col) when an image of
// the given size is divided into cells×cells equal squares.
func CellCenter(size, cells, row, col int) image.Point {
	step := size / cells
	return image.Point{X: col*step + step/2, Y: row*step + step/2}
}

// GridOverlay draws the cells×cells sampling grid over a canonical marker
// image. The cell borders use gridColorHex ("#RRGGBB" or "#RRGGBBAA",
// semi-transparent red when unparsable). With showSamples the probe pixel of
// every cell is marked and labelled "row,col".
func GridOverlay(img image.Image, cells int, showSamples bool, gridColorHex string) (*GridOverlayResult, error) {
	if cells <= 0 {
		return nil, fmt.Errorf("failed to draw grid: invalid cell count %d", cells)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	gridColor, err := ParseColor(gridColorHex)
	if err != nil {
		gridColor = defaultGridColor
	}
	line := image.NewUniform(gridColor)

	result := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	stepX, stepY := width/cells, height/cells
	for i := 1; i < cells; i++ {
		draw.Draw(result, image.Rect(i*stepX, 0, i*stepX+1, height), line, image.Point{}, draw.Over)
		draw.Draw(result, image.Rect(0, i*stepY, width, i*stepY+1), line, image.Point{}, draw.Over)
	}

	if showSamples {
		probe := image.NewUniform(probeColor)
		for r := 0; r < cells; r++ {
			for c := 0; c < cells; c++ {
				x := c*stepX + stepX/2
				y := r*stepY + stepY/2
				draw.Draw(result, image.Rect(x-1, y-1, x+2, y+2), probe, image.Point{}, draw.Src)
				drawLabel(result, image.Pt(c*stepX+2, r*stepY+2), fmt.Sprintf("%d,%d", r, c))
			}
		}
	}

	encoded, err := EncodePNG(result)
	if err != nil {
		return nil, err
	}

	return &GridOverlayResult{
		Width:       width,
		Height:      height,
		ImageBase64: encoded,
		MimeType:    "image/png",
		Cells:       cells,
	}, nil
}

// EncodePNG encodes an image as base64 PNG.
func EncodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// ParseColor reads "#RRGGBB" or "#RRGGBBAA". The leading '#' is optional.
func ParseColor(hex string) (color.NRGBA, error) {
	hex = strings.TrimPrefix(hex, "#")
	alpha := uint8(255)
	switch len(hex) {
	case 6:
	case 8:
		a, err := strconv.ParseUint(hex[6:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid alpha in color %q: %w", hex, err)
		}
		alpha = uint8(a)
		hex = hex[:6]
	default:
		return color.NRGBA{}, fmt.Errorf("invalid color %q: want 6 or 8 hex digits", hex)
	}

	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

// drawLabel writes text in white on a dark box whose top-left corner is at.
func drawLabel(dst draw.Image, at image.Point, text string) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(at.X, at.Y+face.Ascent),
	}
	box := image.Rect(at.X-1, at.Y-1, at.X+d.MeasureString(text).Ceil()+1, at.Y+face.Height)
	draw.Draw(dst, box, image.NewUniform(labelBackground), image.Point{}, draw.Over)
	d.DrawString(text)
}
