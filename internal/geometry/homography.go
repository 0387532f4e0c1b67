package geometry

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// ErrDegenerate is returned when a point configuration does not determine a
// homography, e.g. three of four corners are collinear or two coincide.
var ErrDegenerate = errors.New("degenerate point configuration")

const (
	// ransacIterations is the number of minimal samples drawn when more
	// than four correspondences are supplied.
	ransacIterations = 200

	// ransacThreshold is the reprojection distance in pixels below which a
	// correspondence counts as an inlier.
	ransacThreshold = 3.0

	// collinearTolerance bounds the twice-area of any corner triangle,
	// relative to the squared extent of the point set.
	collinearTolerance = 1e-6
)

// Homography is a 3x3 projective transform stored row-major.
//
// A point (x, y) maps to (x', y') with
//
//	x' = (h0*x + h1*y + h2) / (h6*x + h7*y + h8)
//	y' = (h3*x + h4*y + h5) / (h6*x + h7*y + h8)
type Homography [9]float64

// Identity returns the identity transform.
func Identity() Homography {
	return Homography{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// Apply maps p through the homography. ok is false when p maps to the line
// at infinity.
func (h Homography) Apply(p Point) (Point, bool) {
	w := h[6]*p.X + h[7]*p.Y + h[8]
	if math.Abs(w) < 1e-12 {
		return Point{}, false
	}
	return Point{
		X: (h[0]*p.X + h[1]*p.Y + h[2]) / w,
		Y: (h[3]*p.X + h[4]*p.Y + h[5]) / w,
	}, true
}

// Matrix returns the homography as a 3x3 gonum matrix.
func (h Homography) Matrix() *mat.Dense {
	data := make([]float64, 9)
	copy(data, h[:])
	return mat.NewDense(3, 3, data)
}

// Mul returns the composition h·o, which applies o first.
func (h Homography) Mul(o Homography) Homography {
	var out mat.Dense
	out.Mul(h.Matrix(), o.Matrix())
	return fromDense(&out)
}

// Inverse returns the inverse transform.
func (h Homography) Inverse() (Homography, error) {
	var inv mat.Dense
	if err := inv.Inverse(h.Matrix()); err != nil {
		return Homography{}, fmt.Errorf("failed to invert homography: %w", ErrDegenerate)
	}
	return fromDense(&inv).normalized(), nil
}

// normalized scales h so that h8 == 1 when that is numerically possible.
func (h Homography) normalized() Homography {
	if math.Abs(h[8]) < 1e-12 {
		return h
	}
	s := h[8]
	for i := range h {
		h[i] /= s
	}
	return h
}

func (h Homography) finite() bool {
	for _, v := range h {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func fromDense(m mat.Matrix) Homography {
	var h Homography
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			h[r*3+c] = m.At(r, c)
		}
	}
	return h
}

// FindHomography estimates the homography mapping src[i] to dst[i].
//
// With exactly four correspondences the result is the exact solution of the
// normalized direct linear transform. With more, a RANSAC loop picks the
// minimal sample with the largest inlier set and the model is refitted on
// those inliers. The random source is seeded deterministically so the same
// input always yields the same transform.
//
// # Errors
//
//   - ErrDegenerate if fewer than four points are given, the slices differ in
//     length, any three of a minimal sample are collinear, or the solve does
//     not produce a finite invertible transform.
func FindHomography(src, dst []Point) (Homography, error) {
	if len(src) != len(dst) || len(src) < 4 {
		return Homography{}, fmt.Errorf("need at least 4 matching points, got %d and %d: %w", len(src), len(dst), ErrDegenerate)
	}
	if len(src) == 4 {
		return solveDLT(src, dst)
	}

	rng := rand.New(rand.NewSource(1))
	n := len(src)
	bestCount := 0
	var bestInliers []int

	sampleSrc := make([]Point, 4)
	sampleDst := make([]Point, 4)
	for iter := 0; iter < ransacIterations; iter++ {
		idx := rng.Perm(n)[:4]
		for i, k := range idx {
			sampleSrc[i] = src[k]
			sampleDst[i] = dst[k]
		}
		h, err := solveDLT(sampleSrc, sampleDst)
		if err != nil {
			continue
		}
		inliers := make([]int, 0, n)
		for i := range src {
			p, ok := h.Apply(src[i])
			if ok && p.Dist(dst[i]) < ransacThreshold {
				inliers = append(inliers, i)
			}
		}
		if len(inliers) > bestCount {
			bestCount = len(inliers)
			bestInliers = inliers
		}
	}
	if bestCount < 4 {
		return Homography{}, fmt.Errorf("no consensus among %d points: %w", n, ErrDegenerate)
	}

	inSrc := make([]Point, len(bestInliers))
	inDst := make([]Point, len(bestInliers))
	for i, k := range bestInliers {
		inSrc[i] = src[k]
		inDst[i] = dst[k]
	}
	return solveDLT(inSrc, inDst)
}

// solveDLT solves the normalized direct linear transform. Each
// correspondence contributes two rows to A and h is the right singular
// vector of A for the smallest singular value.
func solveDLT(src, dst []Point) (Homography, error) {
	if len(src) == 4 && (nearCollinear(src) || nearCollinear(dst)) {
		return Homography{}, ErrDegenerate
	}

	tSrc, okSrc := normalizingTransform(src)
	tDst, okDst := normalizingTransform(dst)
	if !okSrc || !okDst {
		return Homography{}, ErrDegenerate
	}

	n := len(src)
	data := make([]float64, 0, 2*n*9)
	for i := 0; i < n; i++ {
		p, _ := tSrc.Apply(src[i])
		q, _ := tDst.Apply(dst[i])
		X, Y := p.X, p.Y
		x, y := q.X, q.Y
		data = append(data, -X, -Y, -1, 0, 0, 0, x*X, x*Y, x)
		data = append(data, 0, 0, 0, -X, -Y, -1, y*X, y*Y, y)
	}
	A := mat.NewDense(2*n, 9, data)

	var svd mat.SVD
	if ok := svd.Factorize(A, mat.SVDFullV); !ok {
		return Homography{}, fmt.Errorf("failed to factorize DLT system: %w", ErrDegenerate)
	}
	var V mat.Dense
	svd.VTo(&V)

	var hn Homography
	for i := 0; i < 9; i++ {
		hn[i] = V.At(i, 8)
	}

	invDst, err := tDst.Inverse()
	if err != nil {
		return Homography{}, err
	}
	h := invDst.Mul(hn).Mul(tSrc).normalized()
	if !h.finite() || math.Abs(mat.Det(h.Matrix())) < 1e-15 {
		return Homography{}, ErrDegenerate
	}
	return h, nil
}

// normalizingTransform translates the centroid of pts to the origin and
// scales so the mean distance from it is sqrt(2).
func normalizingTransform(pts []Point) (Homography, bool) {
	var cx, cy float64
	for _, p := range pts {
		cx += p.X
		cy += p.Y
	}
	cx /= float64(len(pts))
	cy /= float64(len(pts))

	var mean float64
	for _, p := range pts {
		mean += math.Hypot(p.X-cx, p.Y-cy)
	}
	mean /= float64(len(pts))
	if mean < 1e-9 {
		return Homography{}, false
	}
	s := math.Sqrt2 / mean
	return Homography{s, 0, -s * cx, 0, s, -s * cy, 0, 0, 1}, true
}

// nearCollinear reports whether any three of the four points are (nearly)
// collinear, which includes coincident points.
func nearCollinear(pts []Point) bool {
	minX, maxX := pts[0].X, pts[0].X
	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	extent := math.Max(maxX-minX, maxY-minY)
	if extent < 1e-9 {
		return true
	}
	limit := collinearTolerance * extent * extent

	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			for k := j + 1; k < 4; k++ {
				if math.Abs(Cross(pts[i], pts[j], pts[k])) < limit {
					return true
				}
			}
		}
	}
	return false
}
