package overlay

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/marker-ar/internal/geometry"
	"github.com/ironsheep/marker-ar/internal/marker"
	"github.com/ironsheep/marker-ar/internal/pipeline"
)

// frontalProjection looks straight at the marker from 5 units away. The
// marker spans x 240..400 and y 160..320 on a 640x480 frame.
func frontalProjection(t *testing.T) geometry.Projection {
	t.Helper()
	cam, err := geometry.NewCameraModel([][]float64{{800, 0, 320}, {0, 800, 240}, {0, 0, 1}}, nil)
	require.NoError(t, err)
	return geometry.NewProjection(cam, geometry.Pose{TVec: [3]float64{-0.5, -0.5, 5}})
}

func directive(t *testing.T, shape marker.Shape, state bool) pipeline.Directive {
	return pipeline.Directive{
		MarkerID:   "7",
		Shape:      shape,
		Projection: frontalProjection(t),
		State:      state,
		Label:      pipeline.Label("7", state),
	}
}

func assertColorNear(t *testing.T, want color.NRGBA, got color.NRGBA, tol int) {
	t.Helper()
	near := func(a, b uint8) bool {
		d := int(a) - int(b)
		return d <= tol && d >= -tol
	}
	if !near(want.R, got.R) || !near(want.G, got.G) || !near(want.B, got.B) {
		t.Errorf("color = %v, want %v (±%d)", got, want, tol)
	}
}

func countColor(img *image.NRGBA, r image.Rectangle, c color.NRGBA) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.NRGBAAt(x, y) == c {
				n++
			}
		}
	}
	return n
}

func TestSchemeFor(t *testing.T) {
	tests := []struct {
		shape marker.Shape
		state bool
		base  color.NRGBA
		top   color.NRGBA
	}{
		{marker.Triangle, true, color.NRGBA{0, 155, 0, 255}, color.NRGBA{0, 255, 0, 255}},
		{marker.Cube, true, color.NRGBA{0, 155, 0, 255}, color.NRGBA{0, 255, 0, 255}},
		{marker.Triangle, false, color.NRGBA{155, 155, 0, 255}, color.NRGBA{255, 255, 0, 255}},
		{marker.Pentagon, false, color.NRGBA{155, 0, 0, 255}, color.NRGBA{255, 0, 0, 255}},
		{marker.Cube, false, color.NRGBA{0, 0, 155, 255}, color.NRGBA{0, 0, 255, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.shape.String(), func(t *testing.T) {
			s := SchemeFor(tt.shape, tt.state)
			r, g, b := s.At(0).RGB255()
			assert.Equal(t, tt.base, color.NRGBA{r, g, b, 255})
			r, g, b = s.At(1).RGB255()
			assert.Equal(t, tt.top, color.NRGBA{r, g, b, 255})
		})
	}
}

func TestScheme_AtBlends(t *testing.T) {
	s := SchemeFor(marker.Cube, false)
	_, _, b := s.At(0.5).RGB255()
	assert.Greater(t, b, uint8(155))
	assert.Less(t, b, uint8(255))
}

func TestModel(t *testing.T) {
	assert.Len(t, Model(marker.Triangle), 8)
	assert.Len(t, Model(marker.Cube), 12)
	assert.Len(t, Model(marker.Pentagon), 15)
	assert.Nil(t, Model(marker.Shape(0)))

	for _, e := range PentagonCylinder(1, 1, 0.5, 0.5) {
		for _, p := range []geometry.Point3{e.A, e.B} {
			assert.InDelta(t, 0.5, geometry.Pt(p.X, p.Y).Dist(geometry.Pt(0.5, 0.5)), 1e-9)
		}
	}
}

func TestDraw_PyramidBaseAndLabel(t *testing.T) {
	frame := imaging.New(640, 480, color.Black)
	r := &Renderer{}

	out := r.Draw(frame, []pipeline.Directive{directive(t, marker.Triangle, true)})

	// Top base edge runs along y=160 from x=240 to x=400.
	assertColorNear(t, color.NRGBA{0, 155, 0, 255}, out.NRGBAAt(320, 160), 3)
	// The centre of the base is only crossed by the label.
	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, out.NRGBAAt(320, 200))

	labelBox := image.Rect(318, 225, 380, 245)
	assert.Positive(t, countColor(out, labelBox, LabelColor(true)), "label pixels")

	// The source frame is untouched.
	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, frame.NRGBAAt(320, 160))
}

func TestDraw_UnpairedCube(t *testing.T) {
	frame := imaging.New(640, 480, color.White)
	out := (&Renderer{}).Draw(frame, []pipeline.Directive{directive(t, marker.Cube, false)})

	assertColorNear(t, color.NRGBA{0, 0, 155, 255}, out.NRGBAAt(240, 240), 3)
	assert.Positive(t, countColor(out, image.Rect(318, 225, 380, 245), LabelColor(false)))
}

func TestDraw_BehindCameraIsSkipped(t *testing.T) {
	cam, err := geometry.NewCameraModel([][]float64{{800, 0, 320}, {0, 800, 240}, {0, 0, 1}}, nil)
	require.NoError(t, err)
	d := directive(t, marker.Cube, true)
	d.Projection = geometry.NewProjection(cam, geometry.Pose{TVec: [3]float64{0, 0, -5}})

	frame := imaging.New(64, 48, color.Black)
	out := (&Renderer{}).Draw(frame, []pipeline.Directive{d})
	assert.Equal(t, frame.Pix, out.Pix)
}

func TestRenderer_WritesFrames(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	r, err := NewRenderer(dir)
	require.NoError(t, err)

	frame := imaging.New(640, 480, color.Black)
	require.NoError(t, r.Render(frame, []pipeline.Directive{directive(t, marker.Pentagon, false)}))
	require.NoError(t, r.Render(frame, nil))

	assert.Equal(t, 2, r.Frames())
	require.NotNil(t, r.Last())

	for _, name := range []string{"frame_00000.png", "frame_00001.png"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	saved, err := imaging.Open(filepath.Join(dir, "frame_00000.png"))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 640, 480), saved.Bounds())
}

func TestRenderer_InMemory(t *testing.T) {
	r, err := NewRenderer("")
	require.NoError(t, err)
	assert.Nil(t, r.Last())

	require.NoError(t, r.Render(imaging.New(32, 32, color.Black), nil))
	assert.Equal(t, 1, r.Frames())
	assert.Equal(t, image.Rect(0, 0, 32, 32), r.Last().Bounds())
}
