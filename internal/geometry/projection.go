package geometry

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Projection is a 3x4 world-to-screen matrix K·[R|t]. It maps marker
// coordinates straight to pixels and ignores lens distortion, which is
// what overlay drawing wants.
type Projection [12]float64

// NewProjection composes the camera intrinsics with the pose extrinsics.
func NewProjection(cam *CameraModel, pose Pose) Projection {
	var p mat.Dense
	p.Mul(cam.k, pose.Extrinsic())

	var out Projection
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			out[r*4+c] = p.At(r, c)
		}
	}
	return out
}

// Matrix returns the projection as a 3x4 gonum matrix.
func (p Projection) Matrix() *mat.Dense {
	data := make([]float64, 12)
	copy(data, p[:])
	return mat.NewDense(3, 4, data)
}

// Project maps a marker point to pixel coordinates. ok is false for points
// on or behind the camera plane.
func (p Projection) Project(w Point3) (Point, bool) {
	x := p[0]*w.X + p[1]*w.Y + p[2]*w.Z + p[3]
	y := p[4]*w.X + p[5]*w.Y + p[6]*w.Z + p[7]
	z := p[8]*w.X + p[9]*w.Y + p[10]*w.Z + p[11]
	if z <= 1e-12 || math.IsNaN(z) {
		return Point{}, false
	}
	return Point{X: x / z, Y: y / z}, true
}

// Rows returns the matrix as nested rows, the shape used in JSON output.
func (p Projection) Rows() [][]float64 {
	return [][]float64{
		{p[0], p[1], p[2], p[3]},
		{p[4], p[5], p[6], p[7]},
		{p[8], p[9], p[10], p[11]},
	}
}

// MarshalJSON encodes the matrix as three rows of four.
func (p Projection) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Rows())
}
