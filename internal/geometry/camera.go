package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrInvalidCamera is returned when intrinsics or distortion coefficients
// have the wrong shape or unusable values.
var ErrInvalidCamera = errors.New("invalid camera model")

// undistortIterations bounds the fixed-point inversion of the lens model.
const undistortIterations = 20

// CameraModel holds the pinhole intrinsics and Brown–Conrady distortion
// coefficients of a calibrated camera. It is read-only after construction
// and safe to share across goroutines.
//
// Distortion coefficients follow the common ordering
// (k1, k2, p1, p2[, k3[, k4, k5, k6]]); 4, 5 or 8 values are accepted.
type CameraModel struct {
	k    *mat.Dense
	dist []float64
}

// NewCameraModel validates the shapes of the intrinsic matrix and
// distortion vector and returns a camera model.
//
// intrinsics must be 3x3 with positive focal lengths and a last row of
// (0, 0, 1). distortion may be empty (no distortion) or hold 4, 5 or 8
// coefficients.
func NewCameraModel(intrinsics [][]float64, distortion []float64) (*CameraModel, error) {
	if len(intrinsics) != 3 {
		return nil, fmt.Errorf("intrinsics must have 3 rows, got %d: %w", len(intrinsics), ErrInvalidCamera)
	}
	data := make([]float64, 0, 9)
	for i, row := range intrinsics {
		if len(row) != 3 {
			return nil, fmt.Errorf("intrinsics row %d must have 3 columns, got %d: %w", i, len(row), ErrInvalidCamera)
		}
		data = append(data, row...)
	}
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("intrinsics contain non-finite values: %w", ErrInvalidCamera)
		}
	}
	if data[0] <= 0 || data[4] <= 0 {
		return nil, fmt.Errorf("focal lengths must be positive, got fx=%g fy=%g: %w", data[0], data[4], ErrInvalidCamera)
	}
	if data[6] != 0 || data[7] != 0 || data[8] != 1 {
		return nil, fmt.Errorf("intrinsics last row must be (0, 0, 1): %w", ErrInvalidCamera)
	}

	switch len(distortion) {
	case 0, 4, 5, 8:
	default:
		return nil, fmt.Errorf("distortion must have 0, 4, 5 or 8 coefficients, got %d: %w", len(distortion), ErrInvalidCamera)
	}
	dist := make([]float64, 8)
	copy(dist, distortion)

	return &CameraModel{
		k:    mat.NewDense(3, 3, data),
		dist: dist,
	}, nil
}

// Intrinsics returns a copy of the 3x3 intrinsic matrix.
func (c *CameraModel) Intrinsics() *mat.Dense {
	return mat.DenseCopyOf(c.k)
}

// Distortion returns a copy of the distortion coefficients padded to 8.
func (c *CameraModel) Distortion() []float64 {
	out := make([]float64, len(c.dist))
	copy(out, c.dist)
	return out
}

// distort applies the lens model to a normalized image point.
func (c *CameraModel) distort(x, y float64) (float64, float64) {
	k1, k2, p1, p2, k3, k4, k5, k6 := c.dist[0], c.dist[1], c.dist[2], c.dist[3], c.dist[4], c.dist[5], c.dist[6], c.dist[7]
	r2 := x*x + y*y
	r4 := r2 * r2
	r6 := r4 * r2
	radial := (1 + k1*r2 + k2*r4 + k3*r6) / (1 + k4*r2 + k5*r4 + k6*r6)
	xd := x*radial + 2*p1*x*y + p2*(r2+2*x*x)
	yd := y*radial + p1*(r2+2*y*y) + 2*p2*x*y
	return xd, yd
}

// ProjectNormalized maps a normalized point through distortion and the
// intrinsic matrix to pixel coordinates.
func (c *CameraModel) ProjectNormalized(x, y float64) Point {
	xd, yd := c.distort(x, y)
	return Point{
		X: c.k.At(0, 0)*xd + c.k.At(0, 1)*yd + c.k.At(0, 2),
		Y: c.k.At(1, 1)*yd + c.k.At(1, 2),
	}
}

// Undistort maps a pixel to normalized, distortion-free image coordinates
// by inverting the lens model with fixed-point iteration.
func (c *CameraModel) Undistort(p Point) Point {
	fx, fy := c.k.At(0, 0), c.k.At(1, 1)
	skew := c.k.At(0, 1)
	cx, cy := c.k.At(0, 2), c.k.At(1, 2)

	yd := (p.Y - cy) / fy
	xd := (p.X - cx - skew*yd) / fx

	x, y := xd, yd
	for i := 0; i < undistortIterations; i++ {
		k1, k2, p1, p2, k3, k4, k5, k6 := c.dist[0], c.dist[1], c.dist[2], c.dist[3], c.dist[4], c.dist[5], c.dist[6], c.dist[7]
		r2 := x*x + y*y
		r4 := r2 * r2
		r6 := r4 * r2
		icdist := (1 + k4*r2 + k5*r4 + k6*r6) / (1 + k1*r2 + k2*r4 + k3*r6)
		dx := 2*p1*x*y + p2*(r2+2*x*x)
		dy := p1*(r2+2*y*y) + 2*p2*x*y
		x = (xd - dx) * icdist
		y = (yd - dy) * icdist
	}
	return Point{X: x, Y: y}
}
