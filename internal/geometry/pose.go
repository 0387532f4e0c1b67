package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrPoseFailed is returned when the perspective-n-point solve does not
// produce a usable pose.
var ErrPoseFailed = errors.New("pose solve failed")

const (
	// DefaultMaxReprojectionError is the mean pixel error above which a
	// solved pose is rejected.
	DefaultMaxReprojectionError = 8.0

	lmMaxIterations  = 50
	lmInitialDamping = 1e-3
)

// unitSquare lists the marker corners in the z=0 plane, clockwise on screen
// when the marker is viewed upright.
var unitSquare = [4]Point3{
	{X: 0, Y: 0, Z: 0},
	{X: 1, Y: 0, Z: 0},
	{X: 1, Y: 1, Z: 0},
	{X: 0, Y: 1, Z: 0},
}

// WorldCorners returns the marker-plane coordinates of the four image
// corners of a quad whose fingerprint matched at the given orientation.
//
// Image corner i corresponds to unit-square corner (i+orientation) mod 4.
// Orientation 0 is the authored layout; each step is one further 90°
// counter-clockwise turn of the printed marker as seen in the image.
func WorldCorners(orientation int) [4]Point3 {
	orientation = ((orientation % 4) + 4) % 4
	var out [4]Point3
	for i := range out {
		out[i] = unitSquare[(i+orientation)%4]
	}
	return out
}

// Pose is a rigid transform from marker coordinates to camera coordinates,
// expressed as a Rodrigues rotation vector and a translation.
type Pose struct {
	RVec [3]float64 `json:"rvec"`
	TVec [3]float64 `json:"tvec"`
}

// Rotation returns the 3x3 rotation matrix of the pose.
func (p Pose) Rotation() *mat.Dense {
	return Rodrigues(p.RVec)
}

// Extrinsic returns the 3x4 matrix [R | t].
func (p Pose) Extrinsic() *mat.Dense {
	r := p.Rotation()
	rt := mat.NewDense(3, 4, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			rt.Set(i, j, r.At(i, j))
		}
		rt.Set(i, 3, p.TVec[i])
	}
	return rt
}

// toCamera transforms a marker point into camera coordinates.
func (p Pose) toCamera(r mat.Matrix, w Point3) [3]float64 {
	return [3]float64{
		r.At(0, 0)*w.X + r.At(0, 1)*w.Y + r.At(0, 2)*w.Z + p.TVec[0],
		r.At(1, 0)*w.X + r.At(1, 1)*w.Y + r.At(1, 2)*w.Z + p.TVec[1],
		r.At(2, 0)*w.X + r.At(2, 1)*w.Y + r.At(2, 2)*w.Z + p.TVec[2],
	}
}

// Rodrigues converts a rotation vector (axis scaled by angle in radians)
// to a 3x3 rotation matrix.
func Rodrigues(rvec [3]float64) *mat.Dense {
	theta := math.Sqrt(rvec[0]*rvec[0] + rvec[1]*rvec[1] + rvec[2]*rvec[2])
	if theta < 1e-12 {
		// First-order expansion: I + [r]x.
		return mat.NewDense(3, 3, []float64{
			1, -rvec[2], rvec[1],
			rvec[2], 1, -rvec[0],
			-rvec[1], rvec[0], 1,
		})
	}
	kx, ky, kz := rvec[0]/theta, rvec[1]/theta, rvec[2]/theta
	c, s := math.Cos(theta), math.Sin(theta)
	v := 1 - c
	return mat.NewDense(3, 3, []float64{
		c + kx*kx*v, kx*ky*v - kz*s, kx*kz*v + ky*s,
		ky*kx*v + kz*s, c + ky*ky*v, ky*kz*v - kx*s,
		kz*kx*v - ky*s, kz*ky*v + kx*s, c + kz*kz*v,
	})
}

// RodriguesInverse converts a rotation matrix to a rotation vector with
// angle in [0, π].
func RodriguesInverse(r mat.Matrix) [3]float64 {
	trace := r.At(0, 0) + r.At(1, 1) + r.At(2, 2)
	cos := math.Max(-1, math.Min(1, (trace-1)/2))
	theta := math.Acos(cos)

	ax := r.At(2, 1) - r.At(1, 2)
	ay := r.At(0, 2) - r.At(2, 0)
	az := r.At(1, 0) - r.At(0, 1)

	switch {
	case theta < 1e-12:
		return [3]float64{ax / 2, ay / 2, az / 2}
	case math.Pi-theta < 1e-6:
		// sin(theta) ~ 0: recover the axis from the symmetric part.
		a := 0
		for i := 1; i < 3; i++ {
			if r.At(i, i) > r.At(a, a) {
				a = i
			}
		}
		var k [3]float64
		k[a] = math.Sqrt(math.Max(0, (r.At(a, a)-cos)/(1-cos)))
		for b := 0; b < 3; b++ {
			if b != a {
				k[b] = (r.At(a, b) + r.At(b, a)) / (2 * (1 - cos) * k[a])
			}
		}
		if k[0]*ax+k[1]*ay+k[2]*az < 0 {
			k[0], k[1], k[2] = -k[0], -k[1], -k[2]
		}
		return [3]float64{k[0] * theta, k[1] * theta, k[2] * theta}
	default:
		f := theta / (2 * math.Sin(theta))
		return [3]float64{ax * f, ay * f, az * f}
	}
}

// PoseSolver recovers the pose of a planar marker from its image corners.
type PoseSolver struct {
	Camera *CameraModel

	// MaxReprojectionError is the mean pixel error above which a solved
	// pose is rejected. Zero means DefaultMaxReprojectionError.
	MaxReprojectionError float64
}

// Solve estimates the pose that maps the planar object points onto the
// observed (still distorted) image points.
//
// # Algorithm
//
//  1. Undistort the image points to normalized camera coordinates.
//  2. Fit the homography from the object plane to those coordinates and
//     decompose it into [r1 r2 t]; r3 = r1 × r2. The rotation is
//     re-orthonormalized through its SVD and the sign is chosen so the
//     marker lies in front of the camera.
//  3. Refine the six pose parameters with Levenberg–Marquardt on the full
//     reprojection error (distortion included), using a central-difference
//     Jacobian.
//
// # Errors
//
// ErrPoseFailed wraps every failure: non-planar or mismatched input, a
// degenerate homography, a solution behind the camera, non-finite values,
// or a mean reprojection error above the limit.
func (s *PoseSolver) Solve(object []Point3, image []Point) (Pose, error) {
	if s.Camera == nil {
		return Pose{}, fmt.Errorf("no camera model: %w", ErrPoseFailed)
	}
	if len(object) != len(image) || len(object) < 4 {
		return Pose{}, fmt.Errorf("need at least 4 matching points, got %d and %d: %w", len(object), len(image), ErrPoseFailed)
	}

	planar := make([]Point, len(object))
	norm := make([]Point, len(image))
	for i, w := range object {
		if math.Abs(w.Z) > 1e-9 {
			return Pose{}, fmt.Errorf("object point %d is off the z=0 plane: %w", i, ErrPoseFailed)
		}
		planar[i] = Point{X: w.X, Y: w.Y}
		norm[i] = s.Camera.Undistort(image[i])
	}

	h, err := FindHomography(planar, norm)
	if err != nil {
		return Pose{}, fmt.Errorf("failed to fit plane homography: %w: %w", ErrPoseFailed, err)
	}

	pose, err := decomposePlanar(h)
	if err != nil {
		return Pose{}, err
	}

	pose = s.refine(pose, object, image)

	if !poseFinite(pose) {
		return Pose{}, fmt.Errorf("non-finite pose: %w", ErrPoseFailed)
	}
	r := pose.Rotation()
	for i, w := range object {
		if c := pose.toCamera(r, w); c[2] <= 0 {
			return Pose{}, fmt.Errorf("object point %d behind camera: %w", i, ErrPoseFailed)
		}
	}

	limit := s.MaxReprojectionError
	if limit <= 0 {
		limit = DefaultMaxReprojectionError
	}
	if e := s.ReprojectionError(pose, object, image); e > limit {
		return Pose{}, fmt.Errorf("mean reprojection error %.2fpx exceeds %.2fpx: %w", e, limit, ErrPoseFailed)
	}
	return pose, nil
}

// ReprojectionError returns the mean pixel distance between the projected
// object points and the observed image points.
func (s *PoseSolver) ReprojectionError(pose Pose, object []Point3, image []Point) float64 {
	residuals := make([]float64, 2*len(object))
	s.residuals(residuals, pose, object, image)
	var sum float64
	for i := 0; i < len(object); i++ {
		sum += math.Hypot(residuals[2*i], residuals[2*i+1])
	}
	return sum / float64(len(object))
}

// residuals fills dst with (projected - observed) pixel offsets.
func (s *PoseSolver) residuals(dst []float64, pose Pose, object []Point3, image []Point) {
	r := pose.Rotation()
	for i, w := range object {
		c := pose.toCamera(r, w)
		z := c[2]
		if math.Abs(z) < 1e-12 {
			z = 1e-12
		}
		p := s.Camera.ProjectNormalized(c[0]/z, c[1]/z)
		dst[2*i] = p.X - image[i].X
		dst[2*i+1] = p.Y - image[i].Y
	}
}

// refine runs damped Gauss–Newton on the six pose parameters. The input
// pose is returned unchanged if no step lowers the cost.
func (s *PoseSolver) refine(pose Pose, object []Point3, image []Point) Pose {
	m := 2 * len(object)
	f := func(y, x []float64) {
		s.residuals(y, poseFromParams(x), object, image)
	}

	x := poseParams(pose)
	r := make([]float64, m)
	f(r, x)
	cost := floats.Dot(r, r)

	jac := mat.NewDense(m, 6, nil)
	lambda := lmInitialDamping
	trial := make([]float64, 6)
	rTrial := make([]float64, m)

	converged := false
	for iter := 0; iter < lmMaxIterations && !converged && cost > 1e-18; iter++ {
		fd.Jacobian(jac, f, x, &fd.JacobianSettings{
			Formula:     fd.Central,
			OriginValue: r,
		})

		var jtj mat.Dense
		jtj.Mul(jac.T(), jac)
		var g mat.VecDense
		g.MulVec(jac.T(), mat.NewVecDense(m, r))

		improved := false
		for attempt := 0; attempt < 10; attempt++ {
			a := mat.DenseCopyOf(&jtj)
			for i := 0; i < 6; i++ {
				a.Set(i, i, jtj.At(i, i)*(1+lambda)+1e-12)
			}
			var step mat.VecDense
			if err := step.SolveVec(a, &g); err != nil {
				lambda *= 10
				continue
			}
			for i := range trial {
				trial[i] = x[i] - step.AtVec(i)
			}
			f(rTrial, trial)
			if c := floats.Dot(rTrial, rTrial); c < cost && !math.IsNaN(c) {
				copy(x, trial)
				copy(r, rTrial)
				delta := cost - c
				cost = c
				lambda = math.Max(lambda/10, 1e-12)
				improved = true
				converged = delta < 1e-14*(1+cost)
				break
			}
			lambda *= 10
		}
		if !improved {
			break
		}
	}
	return poseFromParams(x)
}

// decomposePlanar extracts a pose from a homography that maps the marker
// plane onto normalized image coordinates.
func decomposePlanar(h Homography) (Pose, error) {
	hm := h.Matrix()
	h1 := [3]float64{hm.At(0, 0), hm.At(1, 0), hm.At(2, 0)}
	h2 := [3]float64{hm.At(0, 1), hm.At(1, 1), hm.At(2, 1)}
	h3 := [3]float64{hm.At(0, 2), hm.At(1, 2), hm.At(2, 2)}

	n1 := floats.Norm(h1[:], 2)
	n2 := floats.Norm(h2[:], 2)
	if n1 < 1e-12 || n2 < 1e-12 {
		return Pose{}, fmt.Errorf("homography has a null column: %w", ErrPoseFailed)
	}
	lambda := 2 / (n1 + n2)
	if h3[2]*lambda < 0 {
		lambda = -lambda
	}

	var r1, r2, t [3]float64
	for i := 0; i < 3; i++ {
		r1[i] = h1[i] * lambda
		r2[i] = h2[i] * lambda
		t[i] = h3[i] * lambda
	}
	r3 := [3]float64{
		r1[1]*r2[2] - r1[2]*r2[1],
		r1[2]*r2[0] - r1[0]*r2[2],
		r1[0]*r2[1] - r1[1]*r2[0],
	}

	approx := mat.NewDense(3, 3, []float64{
		r1[0], r2[0], r3[0],
		r1[1], r2[1], r3[1],
		r1[2], r2[2], r3[2],
	})
	var svd mat.SVD
	if ok := svd.Factorize(approx, mat.SVDFull); !ok {
		return Pose{}, fmt.Errorf("failed to orthonormalize rotation: %w", ErrPoseFailed)
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	var rot mat.Dense
	rot.Mul(&u, v.T())
	if mat.Det(&rot) < 0 {
		for i := 0; i < 3; i++ {
			u.Set(i, 2, -u.At(i, 2))
		}
		rot.Mul(&u, v.T())
	}

	return Pose{RVec: RodriguesInverse(&rot), TVec: t}, nil
}

func poseParams(p Pose) []float64 {
	return []float64{p.RVec[0], p.RVec[1], p.RVec[2], p.TVec[0], p.TVec[1], p.TVec[2]}
}

func poseFromParams(x []float64) Pose {
	return Pose{
		RVec: [3]float64{x[0], x[1], x[2]},
		TVec: [3]float64{x[3], x[4], x[5]},
	}
}

func poseFinite(p Pose) bool {
	for _, v := range poseParams(p) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
