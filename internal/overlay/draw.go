package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/ironsheep/marker-ar/internal/geometry"
)

const (
	// shadeSteps is how many pieces a climbing edge is cut into for its
	// colour gradient.
	shadeSteps = 8

	// farLimit skips segments whose endpoints project absurdly far away.
	farLimit = 1e6
)

// strokeLine fills the width-wide band around segment ab with c,
// antialiased. Only the part inside dst is rasterized.
func strokeLine(dst draw.Image, a, b geometry.Point, width float64, c color.Color) {
	if math.Abs(a.X) > farLimit || math.Abs(a.Y) > farLimit || math.Abs(b.X) > farLimit || math.Abs(b.Y) > farLimit {
		return
	}
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length < 1e-9 {
		return
	}
	nx, ny := -dy/length*width/2, dx/length*width/2

	pad := int(math.Ceil(width)) + 1
	box := image.Rect(
		int(math.Floor(math.Min(a.X, b.X)))-pad, int(math.Floor(math.Min(a.Y, b.Y)))-pad,
		int(math.Ceil(math.Max(a.X, b.X)))+pad, int(math.Ceil(math.Max(a.Y, b.Y)))+pad,
	).Intersect(dst.Bounds())
	if box.Empty() {
		return
	}

	ox, oy := float64(box.Min.X), float64(box.Min.Y)
	z := vector.NewRasterizer(box.Dx(), box.Dy())
	z.MoveTo(float32(a.X+nx-ox), float32(a.Y+ny-oy))
	z.LineTo(float32(b.X+nx-ox), float32(b.Y+ny-oy))
	z.LineTo(float32(b.X-nx-ox), float32(b.Y-ny-oy))
	z.LineTo(float32(a.X-nx-ox), float32(a.Y-ny-oy))
	z.ClosePath()
	z.Draw(dst, box, image.NewUniform(c), image.Point{})
}

// drawEdge projects one wireframe edge and strokes it. Edges that change
// height are cut into pieces so the colour follows the scheme gradient.
func drawEdge(dst draw.Image, proj geometry.Projection, e Edge, scheme Scheme, width float64) {
	ha, hb := height(e.A, 1), height(e.B, 1)
	steps := 1
	if ha != hb {
		steps = shadeSteps
	}

	lerp := func(t float64) geometry.Point3 {
		return geometry.Point3{
			X: e.A.X + (e.B.X-e.A.X)*t,
			Y: e.A.Y + (e.B.Y-e.A.Y)*t,
			Z: e.A.Z + (e.B.Z-e.A.Z)*t,
		}
	}

	prev, okPrev := proj.Project(e.A)
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		next, okNext := proj.Project(lerp(t))
		if okPrev && okNext {
			mid := (float64(i) - 0.5) / float64(steps)
			strokeLine(dst, prev, next, width, scheme.At(ha+(hb-ha)*mid))
		}
		prev, okPrev = next, okNext
	}
}

// drawText writes s with its baseline starting at p.
func drawText(dst draw.Image, p geometry.Point, s string, c color.Color) {
	if math.Abs(p.X) > farLimit || math.Abs(p.Y) > farLimit {
		return
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(int(math.Round(p.X)), int(math.Round(p.Y))),
	}
	d.DrawString(s)
}
