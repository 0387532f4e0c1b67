package marker

import (
	"image"

	"github.com/ironsheep/marker-ar/internal/imaging"
)

// SampleGrid reads the cell pattern of a rectified marker image.
//
// The image is binarized with Otsu's threshold and divided into cells×cells
// equal squares. Each cell takes the value of the single pixel at its
// centre, (c*S/N + S/2N, r*S/N + S/2N) for an S-pixel wide image, so the
// result contains only 0 and 255.
func SampleGrid(canonical image.Image, cells int) Grid {
	bin := imaging.Binarize(canonical)
	size := bin.Bounds().Dx()

	g := NewGrid(cells)
	for r := 0; r < cells; r++ {
		for c := 0; c < cells; c++ {
			p := imaging.CellCenter(size, cells, r, c)
			if bin.GrayAt(p.X, p.Y).Y >= 128 {
				g[r][c] = White
			}
		}
	}
	return g
}
