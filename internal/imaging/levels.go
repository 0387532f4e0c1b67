package imaging

import (
	"fmt"
	"image"
)

// CellLevels holds the raw luminance read at every cell probe of a
// canonical marker image, next to the threshold that binarizes them.
// Levels close to Threshold are the cells most likely to flip.
type CellLevels struct {
	Threshold uint8   `json:"threshold"`
	Levels    [][]int `json:"levels"`
}

// ProbeCells reads the grayscale value at each cell centre of a
// cells×cells division of img, the same pixels the grid sampler uses.
func ProbeCells(img image.Image, cells int) (*CellLevels, error) {
	if cells <= 0 {
		return nil, fmt.Errorf("failed to probe cells: invalid cell count %d", cells)
	}
	gray := Grayscale(img)
	size := gray.Bounds().Dx()
	if size < cells || gray.Bounds().Dy() < cells {
		return nil, fmt.Errorf("failed to probe cells: %dx%d image is smaller than %d cells", size, gray.Bounds().Dy(), cells)
	}

	levels := make([][]int, cells)
	for r := range levels {
		levels[r] = make([]int, cells)
		for c := range levels[r] {
			p := CellCenter(size, cells, r, c)
			levels[r][c] = int(gray.GrayAt(p.X, p.Y).Y)
		}
	}
	return &CellLevels{Threshold: OtsuLevel(gray), Levels: levels}, nil
}

// Margin returns the smallest distance between a probed level and the
// Otsu split. Otsu's foreground starts at Threshold+1, so the split point
// lies halfway between Threshold and Threshold+1.
func (l *CellLevels) Margin() float64 {
	split := float64(l.Threshold) + 0.5
	best := 256.0
	for _, row := range l.Levels {
		for _, v := range row {
			d := float64(v) - split
			if d < 0 {
				d = -d
			}
			if d < best {
				best = d
			}
		}
	}
	return best
}
