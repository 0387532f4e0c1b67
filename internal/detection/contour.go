package detection

import (
	"image"

	"github.com/ironsheep/marker-ar/internal/geometry"
)

// Contour is the ordered outer boundary of one connected region, listed as
// pixel coordinates.
type Contour struct {
	// Points are the boundary pixels in tracing order.
	Points []image.Point

	// Dark is true for regions of black pixels in the binary image.
	Dark bool
}

// Float returns the boundary as floating point coordinates.
func (c Contour) Float() []geometry.Point {
	out := make([]geometry.Point, len(c.Points))
	for i, p := range c.Points {
		out[i] = geometry.Pt(float64(p.X), float64(p.Y))
	}
	return out
}

// Moore neighbourhood in clockwise screen order (Y down), starting east.
var neighbours = [8]image.Point{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

const dirWest = 4

// FindContours returns the outer boundary of every connected region of a
// binary image, dark and light alike, as a flat list.
//
// Dark regions (value < 128) are grouped with 8-connectivity and light
// regions with 4-connectivity, so the two phases never cross each other.
// Regions are reported in raster order of their first pixel. Dark
// boundaries run clockwise on screen; light boundaries are reversed and run
// counter-clockwise, so a signed area test tells them apart.
//
// # Algorithm
//
//  1. Labelling: an iterative flood fill assigns a region id to every pixel.
//  2. Tracing: each region's boundary is followed with Moore-neighbour
//     tracing from its first pixel, whose west neighbour is always outside.
//     Tracing stops when the walk leaves the start pixel towards the same
//     second pixel a second time.
func FindContours(bin *image.Gray) []Contour {
	b := bin.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	dark := make([]bool, width*height)
	for y := 0; y < height; y++ {
		row := bin.Pix[y*bin.Stride : y*bin.Stride+width]
		for x, v := range row {
			dark[y*width+x] = v < 128
		}
	}

	labels := make([]int32, width*height)
	var contours []Contour
	var next int32

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if labels[y*width+x] != 0 {
				continue
			}
			next++
			isDark := dark[y*width+x]
			floodLabel(dark, labels, width, height, x, y, next, isDark)

			t := tracer{labels: labels, width: width, height: height, id: next}
			pts := t.trace(image.Point{X: x, Y: y})
			if !isDark {
				reverse(pts)
			}
			contours = append(contours, Contour{Points: pts, Dark: isDark})
		}
	}
	return contours
}

// floodLabel assigns id to the region containing (startX, startY).
//
// Uses an explicit stack so large regions cannot overflow the goroutine
// stack. Dark regions use 8-connectivity, light regions 4-connectivity.
func floodLabel(dark []bool, labels []int32, width, height, startX, startY int, id int32, isDark bool) {
	stack := []image.Point{{X: startX, Y: startY}}
	labels[startY*width+startX] = id

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for i, d := range neighbours {
			if !isDark && i%2 == 1 {
				continue
			}
			nx, ny := p.X+d.X, p.Y+d.Y
			if nx < 0 || nx >= width || ny < 0 || ny >= height {
				continue
			}
			idx := ny*width + nx
			if labels[idx] != 0 || dark[idx] != isDark {
				continue
			}
			labels[idx] = id
			stack = append(stack, image.Point{X: nx, Y: ny})
		}
	}
}

type tracer struct {
	labels        []int32
	width, height int
	id            int32
}

func (t *tracer) inside(p image.Point) bool {
	if p.X < 0 || p.X >= t.width || p.Y < 0 || p.Y >= t.height {
		return false
	}
	return t.labels[p.Y*t.width+p.X] == t.id
}

// step searches the neighbours of p clockwise, starting just after the
// backtrack direction, and returns the first one inside the region along
// with its direction index.
func (t *tracer) step(p image.Point, back int) (image.Point, int, bool) {
	for i := 1; i <= 8; i++ {
		k := (back + i) % 8
		q := p.Add(neighbours[k])
		if t.inside(q) {
			return q, k, true
		}
	}
	return image.Point{}, 0, false
}

func (t *tracer) trace(start image.Point) []image.Point {
	pts := []image.Point{start}
	p, back := start, dirWest
	var second image.Point
	limit := 4*t.width*t.height + 8

	for n := 0; n < limit; n++ {
		q, k, ok := t.step(p, back)
		if !ok {
			break
		}
		if n == 0 {
			second = q
		} else if p == start && q == second {
			break
		}
		// The neighbour checked just before q is outside; it becomes the
		// backtrack of q.
		b := p.Add(neighbours[(k+7)%8])
		back = direction(b.Sub(q))
		p = q
		pts = append(pts, p)
	}

	if len(pts) > 1 && pts[len(pts)-1] == start {
		pts = pts[:len(pts)-1]
	}
	return pts
}

func direction(d image.Point) int {
	for i, n := range neighbours {
		if n == d {
			return i
		}
	}
	return dirWest
}

func reverse(pts []image.Point) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}
