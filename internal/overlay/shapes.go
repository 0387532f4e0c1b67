package overlay

import (
	"math"

	"github.com/ironsheep/marker-ar/internal/geometry"
	"github.com/ironsheep/marker-ar/internal/marker"
)

// Edge is one wireframe segment in marker coordinates.
type Edge struct {
	A, B geometry.Point3
}

// Marker coordinates put the unit square in the z=0 plane with x to the
// right and y down the printed page, so the side facing the camera is -z.
func up(x, y, h float64) geometry.Point3 {
	return geometry.Point3{X: x, Y: y, Z: -h}
}

// height returns how far a point stands off the marker, in units of scale.
func height(p geometry.Point3, scale float64) float64 {
	return -p.Z / scale
}

func ring(pts []geometry.Point3) []Edge {
	edges := make([]Edge, len(pts))
	for i := range pts {
		edges[i] = Edge{A: pts[i], B: pts[(i+1)%len(pts)]}
	}
	return edges
}

// Pyramid covers the marker with a square base and an apex above its
// centre.
func Pyramid(scale float64) []Edge {
	base := []geometry.Point3{up(0, 0, 0), up(scale, 0, 0), up(scale, scale, 0), up(0, scale, 0)}
	apex := up(scale/2, scale/2, scale)

	edges := ring(base)
	for _, b := range base {
		edges = append(edges, Edge{A: b, B: apex})
	}
	return edges
}

// Cube stands on the marker square.
func Cube(scale float64) []Edge {
	var bottom, top []geometry.Point3
	for _, c := range [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}} {
		bottom = append(bottom, up(c[0]*scale, c[1]*scale, 0))
		top = append(top, up(c[0]*scale, c[1]*scale, scale))
	}

	edges := append(ring(bottom), ring(top)...)
	for i := range bottom {
		edges = append(edges, Edge{A: bottom[i], B: top[i]})
	}
	return edges
}

// PentagonCylinder is a pentagonal prism inscribed in the marker square,
// centred at (cx, cy) with the first vertex pointing towards -y.
func PentagonCylinder(size, h, cx, cy float64) []Edge {
	r := size / 2
	bottom := make([]geometry.Point3, 5)
	top := make([]geometry.Point3, 5)
	for k := range bottom {
		a := -math.Pi/2 + float64(k)*2*math.Pi/5
		x, y := cx+r*math.Cos(a), cy+r*math.Sin(a)
		bottom[k] = up(x, y, 0)
		top[k] = up(x, y, h)
	}

	edges := append(ring(bottom), ring(top)...)
	for i := range bottom {
		edges = append(edges, Edge{A: bottom[i], B: top[i]})
	}
	return edges
}

// Model returns the wireframe drawn for a shape at unit scale.
func Model(shape marker.Shape) []Edge {
	switch shape {
	case marker.Triangle:
		return Pyramid(1)
	case marker.Pentagon:
		return PentagonCylinder(1, 1, 0.5, 0.5)
	case marker.Cube:
		return Cube(1)
	}
	return nil
}
