package marker

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Cell values of a sampled grid.
const (
	Black uint8 = 0
	White uint8 = 255
)

// Grid is a square matrix of cell values indexed grid[row][col], where
// row 0 is the top of the rectified marker.
type Grid [][]uint8

// NewGrid returns an all-black n×n grid.
func NewGrid(n int) Grid {
	g := make(Grid, n)
	for r := range g {
		g[r] = make([]uint8, n)
	}
	return g
}

// ParseGrid builds a grid from rows of '0' (black) and '1' (white).
func ParseGrid(rows ...string) (Grid, error) {
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("empty grid: %w", ErrInvalidCatalog)
	}
	g := NewGrid(n)
	for r, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("row %d has %d cells, want %d: %w", r, len(row), n, ErrInvalidCatalog)
		}
		for c, ch := range row {
			switch ch {
			case '0':
				g[r][c] = Black
			case '1':
				g[r][c] = White
			default:
				return nil, fmt.Errorf("row %d: unexpected cell %q: %w", r, ch, ErrInvalidCatalog)
			}
		}
	}
	return g, nil
}

// MustParseGrid is like ParseGrid but panics on malformed input. It is
// meant for compiled-in tables.
func MustParseGrid(rows ...string) Grid {
	g, err := ParseGrid(rows...)
	if err != nil {
		panic(err)
	}
	return g
}

// Size returns the number of cells per side.
func (g Grid) Size() int {
	return len(g)
}

// square reports whether every row has Size cells, each 0 or 255.
func (g Grid) square() bool {
	for _, row := range g {
		if len(row) != len(g) {
			return false
		}
		for _, v := range row {
			if v != Black && v != White {
				return false
			}
		}
	}
	return len(g) > 0
}

// Rotate returns the grid turned 90° counter-clockwise:
// out[r][c] = g[c][n-1-r].
func (g Grid) Rotate() Grid {
	n := len(g)
	out := NewGrid(n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			out[r][c] = g[c][n-1-r]
		}
	}
	return out
}

// Equal reports whether both grids have the same size and cells.
func (g Grid) Equal(o Grid) bool {
	return g.key() == o.key()
}

// key is the row-major byte string of the grid, used as the hash index key.
func (g Grid) key() string {
	var b strings.Builder
	b.Grow(len(g)*len(g) + 1)
	b.WriteByte(byte(len(g)))
	for _, row := range g {
		b.Write(row)
	}
	return b.String()
}

// Rows renders the grid as '0'/'1' strings, one per row.
func (g Grid) Rows() []string {
	out := make([]string, len(g))
	for r, row := range g {
		var b strings.Builder
		for _, v := range row {
			if v == White {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
		out[r] = b.String()
	}
	return out
}

func (g Grid) String() string {
	return strings.Join(g.Rows(), "/")
}

// MarshalJSON encodes the grid as its Rows.
func (g Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Rows())
}
