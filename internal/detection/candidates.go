package detection

import (
	"image"

	"github.com/ironsheep/marker-ar/internal/geometry"
	"github.com/ironsheep/marker-ar/internal/imaging"
	"github.com/ironsheep/marker-ar/internal/monitoring"
)

// Default extraction parameters.
const (
	DefaultEpsilon      = 4.0
	DefaultMinPerimeter = 100.0
	DefaultMaxPerimeter = 700.0
)

// Quad is a marker candidate: four image corners listed clockwise on
// screen, starting at the corner closest to the image origin.
type Quad [4]geometry.Point

// Points returns the corners as a slice.
func (q Quad) Points() []geometry.Point {
	return q[:]
}

// Perimeter returns the length of the quad outline.
func (q Quad) Perimeter() float64 {
	return Perimeter(q[:])
}

// Area returns the signed shoelace area, positive for clockwise corners.
func (q Quad) Area() float64 {
	return SignedArea(q[:])
}

// Rejection names the reason a contour did not become a candidate.
type Rejection string

const (
	RejectNone      Rejection = ""
	RejectVertices  Rejection = "vertex_count"
	RejectPerimeter Rejection = "perimeter"
	RejectWinding   Rejection = "winding"
)

// Extractor finds quadrilateral marker candidates in a frame.
//
// A contour becomes a candidate when its polygon approximation has exactly
// four vertices, a perimeter strictly between MinPerimeter and MaxPerimeter,
// and a positive signed area. Perimeters equal to either bound are
// rejected.
type Extractor struct {
	// Epsilon is the polygon approximation tolerance in pixels.
	Epsilon float64

	// MinPerimeter and MaxPerimeter bound the quad perimeter (exclusive).
	MinPerimeter float64
	MaxPerimeter float64
}

// NewExtractor returns an Extractor with the default parameters.
func NewExtractor() *Extractor {
	return &Extractor{
		Epsilon:      DefaultEpsilon,
		MinPerimeter: DefaultMinPerimeter,
		MaxPerimeter: DefaultMaxPerimeter,
	}
}

// ExtractResult holds the candidates of one frame with per-reason counts of
// the contours that were filtered out.
type ExtractResult struct {
	Quads    []Quad
	Contours int
	Rejected map[Rejection]int
}

// Extract binarizes the frame with Otsu's threshold, traces all region
// boundaries and keeps the ones that pass the quad filter, in contour
// discovery order.
func (e *Extractor) Extract(frame image.Image) *ExtractResult {
	bin := imaging.Binarize(frame)
	contours := FindContours(bin)

	res := &ExtractResult{
		Contours: len(contours),
		Rejected: make(map[Rejection]int),
	}
	for _, c := range contours {
		poly := ApproxPolygon(c.Float(), e.Epsilon)
		q, reason := e.Filter(poly)
		if reason != RejectNone {
			res.Rejected[reason]++
			continue
		}
		res.Quads = append(res.Quads, q)
	}

	monitoring.Debugf("extracted %d candidates from %d contours (rejected: %v)", len(res.Quads), len(contours), res.Rejected)
	return res
}

// Filter applies the candidate acceptance rules to an approximated polygon
// and returns the normalized quad when it passes.
func (e *Extractor) Filter(poly []geometry.Point) (Quad, Rejection) {
	if len(poly) != 4 {
		return Quad{}, RejectVertices
	}
	p := Perimeter(poly)
	if p <= e.MinPerimeter || p >= e.MaxPerimeter {
		return Quad{}, RejectPerimeter
	}
	if SignedArea(poly) <= 0 {
		return Quad{}, RejectWinding
	}
	return NormalizeQuad(Quad{poly[0], poly[1], poly[2], poly[3]}), RejectNone
}

// NormalizeQuad rotates the corner list so it starts at the vertex with the
// smallest x+y (smallest y on ties) while keeping the cyclic order.
func NormalizeQuad(poly Quad) Quad {
	start := 0
	for i := 1; i < 4; i++ {
		si, sb := poly[i].X+poly[i].Y, poly[start].X+poly[start].Y
		if si < sb || (si == sb && poly[i].Y < poly[start].Y) {
			start = i
		}
	}
	var q Quad
	for i := 0; i < 4; i++ {
		q[i] = poly[(start+i)%4]
	}
	return q
}
