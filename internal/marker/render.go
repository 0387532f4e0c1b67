package marker

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
)

// DefaultQuietZone is the white margin around a rendered marker, in cells.
const DefaultQuietZone = 1

// Render draws a printable marker: the pattern's cells as cellSize-pixel
// squares surrounded by quietZone cells of white margin.
func Render(pattern Grid, cellSize, quietZone int) (*image.NRGBA, error) {
	if !pattern.square() {
		return nil, fmt.Errorf("failed to render marker: %w", ErrInvalidCatalog)
	}
	if cellSize <= 0 || quietZone < 0 {
		return nil, fmt.Errorf("failed to render marker: invalid cell size %d or quiet zone %d", cellSize, quietZone)
	}

	n := pattern.Size()
	side := (n + 2*quietZone) * cellSize
	img := imaging.New(side, side, color.White)

	black := image.NewUniform(color.Black)
	for r, row := range pattern {
		for c, v := range row {
			if v == White {
				continue
			}
			x := (c + quietZone) * cellSize
			y := (r + quietZone) * cellSize
			draw.Draw(img, image.Rect(x, y, x+cellSize, y+cellSize), black, image.Point{}, draw.Src)
		}
	}
	return img, nil
}

// RenderEntry draws the catalog entry with the given ID.
func (c *Catalog) RenderEntry(id string, cellSize, quietZone int) (*image.NRGBA, error) {
	e, err := c.Lookup(id)
	if err != nil {
		return nil, err
	}
	return Render(e.Pattern, cellSize, quietZone)
}
