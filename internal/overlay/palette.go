package overlay

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/marker-ar/internal/marker"
)

// Scheme colours one wireframe: Base at the marker plane, Top at full
// height. Edges that climb are shaded between the two in Lab space.
type Scheme struct {
	Base colorful.Color
	Top  colorful.Color
}

// At returns the colour for a point at the given height fraction.
func (s Scheme) At(height float64) colorful.Color {
	switch {
	case height <= 0:
		return s.Base
	case height >= 1:
		return s.Top
	}
	return s.Base.BlendLab(s.Top, height).Clamped()
}

func rgb(r, g, b uint8) colorful.Color {
	c, _ := colorful.MakeColor(color.NRGBA{R: r, G: g, B: b, A: 255})
	return c
}

var (
	paired = Scheme{Base: rgb(0, 155, 0), Top: rgb(0, 255, 0)}

	unpaired = map[marker.Shape]Scheme{
		marker.Triangle: {Base: rgb(155, 155, 0), Top: rgb(255, 255, 0)},
		marker.Pentagon: {Base: rgb(155, 0, 0), Top: rgb(255, 0, 0)},
		marker.Cube:     {Base: rgb(0, 0, 155), Top: rgb(0, 0, 255)},
	}

	labelPaired   = color.NRGBA{R: 255, G: 255, A: 255}
	labelUnpaired = color.NRGBA{R: 200, G: 200, A: 255}
)

// SchemeFor returns the wireframe colours for a shape. Every shape is green
// when its sibling is visible; otherwise triangles are yellow, pentagons
// red and cubes blue.
func SchemeFor(shape marker.Shape, state bool) Scheme {
	if state {
		return paired
	}
	if s, ok := unpaired[shape]; ok {
		return s
	}
	return Scheme{Base: rgb(155, 155, 155), Top: rgb(255, 255, 255)}
}

// LabelColor returns the text colour for a marker label.
func LabelColor(state bool) color.NRGBA {
	if state {
		return labelPaired
	}
	return labelUnpaired
}
