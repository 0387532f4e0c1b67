package marker

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Layout(t *testing.T) {
	pattern := DefaultEntries()[0].Pattern

	img, err := Render(pattern, 10, 2)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())

	white := color.NRGBA{255, 255, 255, 255}
	black := color.NRGBA{0, 0, 0, 255}

	// Quiet zone.
	assert.Equal(t, white, img.NRGBAAt(5, 5))
	assert.Equal(t, white, img.NRGBAAt(95, 50))
	// Border ring.
	assert.Equal(t, black, img.NRGBAAt(25, 25))
	// Cell (1,1) of marker 1 is white, (1,4) black.
	assert.Equal(t, white, img.NRGBAAt(35, 35))
	assert.Equal(t, black, img.NRGBAAt(65, 35))
}

func TestRender_Errors(t *testing.T) {
	_, err := Render(Grid{{0, 1}}, 10, 1)
	assert.ErrorIs(t, err, ErrInvalidCatalog)

	_, err = Render(NewGrid(6), 0, 1)
	assert.Error(t, err)

	c, err := DefaultCatalog()
	require.NoError(t, err)
	_, err = c.RenderEntry("nope", 10, 1)
	assert.ErrorIs(t, err, ErrUnknownMarker)
}

func TestSampleGrid_RoundTrip(t *testing.T) {
	for _, e := range DefaultEntries() {
		// A 300px canonical image: six 50px cells and no quiet zone.
		img, err := Render(e.Pattern, 50, 0)
		require.NoError(t, err)

		got := SampleGrid(img, DefaultGridSize)
		assert.True(t, e.Pattern.Equal(got), "marker %s: got %v", e.ID, got)
	}
}

func TestSampleGrid_RotatedImage(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	e := DefaultEntries()[3]
	img, err := Render(e.Pattern, 50, 0)
	require.NoError(t, err)

	// imaging rotates counter-clockwise, the same sense as Grid.Rotate.
	rotated := []*image.NRGBA{img, imaging.Rotate90(img), imaging.Rotate180(img), imaging.Rotate270(img)}
	for k, r := range rotated {
		m, err := c.Match(SampleGrid(r, DefaultGridSize))
		require.NoError(t, err, "rotation %d", k)
		assert.Equal(t, e.ID, m.Entry.ID)
		assert.Equal(t, k, m.Orientation)
	}
}

// Grid rows follow image y: row r, column c is the cell whose centre is at
// x = c*50+25, y = r*50+25 in a 300px canonical image.
func TestSampleGrid_RowsFollowImageY(t *testing.T) {
	img := imaging.New(300, 300, color.Black)
	img = imaging.Paste(img, imaging.New(50, 50, color.White), image.Pt(4*50, 1*50))

	g := SampleGrid(img, DefaultGridSize)
	assert.Equal(t, White, g[1][4])
	assert.Equal(t, Black, g[4][1])

	// Marker 1 authored row 2 reads "010110": white cells at x = 1, 3, 4.
	c, err := DefaultCatalog()
	require.NoError(t, err)
	m, err := c.Match(MustParseGrid(
		"000000",
		"011100",
		"010110",
		"001000",
		"010000",
		"000000",
	))
	require.NoError(t, err)
	assert.Equal(t, "1", m.Entry.ID)
	assert.Equal(t, 0, m.Orientation)
}
