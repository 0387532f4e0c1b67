package geometry

import (
	"fmt"
	"math"
)

// Point is a 2D position in pixel or normalized image coordinates. Image
// coordinates follow the usual convention: origin top-left, X right, Y down.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

func (p Point) String() string {
	return fmt.Sprintf("(%.2f,%.2f)", p.X, p.Y)
}

// Point3 is a 3D position in marker (world) coordinates. Markers span the
// unit square of the z=0 plane.
type Point3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Cross returns the z component of (b-a)×(c-a), i.e. twice the signed area
// of triangle abc. With Y pointing down a positive value means a->b->c
// turns clockwise on screen.
func Cross(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}
