package detection

import (
	"math"

	"github.com/ironsheep/marker-ar/internal/geometry"
)

// ApproxPolygon simplifies a closed curve with the Douglas–Peucker
// algorithm. Every dropped point lies within epsilon of the simplified
// polygon. The result keeps the cyclic order (and therefore the winding) of
// the input.
//
// The closed curve is first cut into two open chains at two far-apart
// points: the point farthest from the first point, and the point farthest
// from that one. Each chain is then simplified on its own.
func ApproxPolygon(curve []geometry.Point, epsilon float64) []geometry.Point {
	n := len(curve)
	if n < 3 {
		out := make([]geometry.Point, n)
		copy(out, curve)
		return out
	}

	a := farthestFrom(curve, curve[0])
	b := farthestFrom(curve, curve[a])
	if a == b {
		return []geometry.Point{curve[a]}
	}
	if a > b {
		a, b = b, a
	}

	// Chain a..b and chain b..a (wrapping), each including both ends.
	first := simplifyChain(curve, a, b, epsilon)
	second := simplifyChain(curve, b, a+n, epsilon)

	out := make([]geometry.Point, 0, len(first)+len(second))
	out = append(out, first[:len(first)-1]...)
	out = append(out, second[:len(second)-1]...)
	return out
}

func farthestFrom(curve []geometry.Point, p geometry.Point) int {
	best, bestD := 0, -1.0
	for i, q := range curve {
		if d := p.Dist(q); d > bestD {
			best, bestD = i, d
		}
	}
	return best
}

// simplifyChain runs Douglas–Peucker over curve[from..to] (indices taken
// modulo len(curve)) and returns the kept points including both ends.
func simplifyChain(curve []geometry.Point, from, to int, epsilon float64) []geometry.Point {
	n := len(curve)
	at := func(i int) geometry.Point { return curve[i%n] }

	keep := map[int]bool{from: true, to: true}
	type span struct{ lo, hi int }
	stack := []span{{from, to}}

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.hi-s.lo < 2 {
			continue
		}

		idx, maxD := -1, -1.0
		for i := s.lo + 1; i < s.hi; i++ {
			if d := segmentDistance(at(i), at(s.lo), at(s.hi)); d > maxD {
				idx, maxD = i, d
			}
		}
		if maxD > epsilon {
			keep[idx] = true
			stack = append(stack, span{s.lo, idx}, span{idx, s.hi})
		}
	}

	out := make([]geometry.Point, 0, len(keep))
	for i := from; i <= to; i++ {
		if keep[i] {
			out = append(out, at(i))
		}
	}
	return out
}

// segmentDistance is the distance from p to the line through a and b, or to
// a when the two coincide.
func segmentDistance(p, a, b geometry.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return p.Dist(a)
	}
	return math.Abs(dy*(p.X-a.X)-dx*(p.Y-a.Y)) / length
}

// Perimeter returns the length of the closed polygon.
func Perimeter(poly []geometry.Point) float64 {
	var sum float64
	for i := range poly {
		sum += poly[i].Dist(poly[(i+1)%len(poly)])
	}
	return sum
}

// SignedArea returns the shoelace area of a closed polygon. It is positive
// when the vertices run clockwise on screen (Y down).
func SignedArea(poly []geometry.Point) float64 {
	var sum float64
	for i := range poly {
		p, q := poly[i], poly[(i+1)%len(poly)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum / 2
}
