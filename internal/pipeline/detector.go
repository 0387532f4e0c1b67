package pipeline

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/marker-ar/internal/detection"
	"github.com/ironsheep/marker-ar/internal/geometry"
	"github.com/ironsheep/marker-ar/internal/marker"
	"github.com/ironsheep/marker-ar/internal/monitoring"
)

// RejectReason names the stage at which an extracted candidate was dropped.
type RejectReason string

const (
	RejectRectify RejectReason = "rectify"
	RejectNoMatch RejectReason = "no_match"
	RejectPose    RejectReason = "pose"
)

// ErrRejected wraps every per-candidate failure returned by Identify.
var ErrRejected = errors.New("candidate rejected")

// Options tunes a Detector. Zero fields take the package defaults.
type Options struct {
	Epsilon              float64
	MinPerimeter         float64
	MaxPerimeter         float64
	CanonicalSize        int
	MaxReprojectionError float64
}

// DefaultOptions returns the standard detection parameters.
func DefaultOptions() Options {
	return Options{
		Epsilon:              detection.DefaultEpsilon,
		MinPerimeter:         detection.DefaultMinPerimeter,
		MaxPerimeter:         detection.DefaultMaxPerimeter,
		CanonicalSize:        DefaultCanonicalSize,
		MaxReprojectionError: geometry.DefaultMaxReprojectionError,
	}
}

// Detector runs the per-frame pipeline: candidate extraction,
// rectification, grid sampling, catalog matching and pose recovery for each
// candidate, then the two-pass sibling resolution.
//
// A Detector holds no per-frame state; Detect may be called from several
// goroutines at once.
type Detector struct {
	extractor *detection.Extractor
	rectifier Rectifier
	catalog   *marker.Catalog
	camera    *geometry.CameraModel
	solver    *geometry.PoseSolver
}

// NewDetector wires a detector around an immutable catalog and camera.
func NewDetector(catalog *marker.Catalog, camera *geometry.CameraModel, opts Options) (*Detector, error) {
	if catalog == nil {
		return nil, fmt.Errorf("failed to create detector: no catalog")
	}
	if camera == nil {
		return nil, fmt.Errorf("failed to create detector: no camera model")
	}

	def := DefaultOptions()
	if opts.Epsilon <= 0 {
		opts.Epsilon = def.Epsilon
	}
	if opts.MinPerimeter <= 0 {
		opts.MinPerimeter = def.MinPerimeter
	}
	if opts.MaxPerimeter <= 0 {
		opts.MaxPerimeter = def.MaxPerimeter
	}
	if opts.MinPerimeter >= opts.MaxPerimeter {
		return nil, fmt.Errorf("failed to create detector: perimeter range (%.1f, %.1f) is empty", opts.MinPerimeter, opts.MaxPerimeter)
	}
	if opts.CanonicalSize <= 0 {
		opts.CanonicalSize = def.CanonicalSize
	}
	if opts.CanonicalSize < catalog.GridSize() {
		return nil, fmt.Errorf("failed to create detector: canonical size %d is smaller than the %d-cell grid", opts.CanonicalSize, catalog.GridSize())
	}

	return &Detector{
		extractor: &detection.Extractor{
			Epsilon:      opts.Epsilon,
			MinPerimeter: opts.MinPerimeter,
			MaxPerimeter: opts.MaxPerimeter,
		},
		rectifier: Rectifier{Size: opts.CanonicalSize},
		catalog:   catalog,
		camera:    camera,
		solver:    &geometry.PoseSolver{Camera: camera, MaxReprojectionError: opts.MaxReprojectionError},
	}, nil
}

// Catalog returns the catalog the detector matches against.
func (d *Detector) Catalog() *marker.Catalog {
	return d.catalog
}

// FrameResult is everything Detect learned about one frame.
type FrameResult struct {
	Markers    []DetectedMarker `json:"markers"`
	Directives []Directive      `json:"directives"`
	State      FrameState       `json:"present"`

	// Candidates is the number of quads that passed the geometric filter.
	Candidates int `json:"candidates"`

	// Rejections counts dropped candidates by stage.
	Rejections map[RejectReason]int `json:"rejections"`
}

// Detect processes one frame. It never fails: candidates that cannot be
// rectified, matched or posed are dropped and counted.
func (d *Detector) Detect(frame image.Image) *FrameResult {
	ext := d.extractor.Extract(frame)

	res := &FrameResult{
		Candidates: len(ext.Quads),
		Rejections: make(map[RejectReason]int),
	}

	markers := make([]DetectedMarker, 0, len(ext.Quads))
	for i, q := range ext.Quads {
		m, reason, err := d.identify(frame, q)
		if err != nil {
			res.Rejections[reason]++
			monitoring.Debugf("candidate %d at %v dropped (%s): %v", i, q[0], reason, err)
			continue
		}
		markers = append(markers, m)
	}

	res.Markers = markers
	res.State, res.Directives = Resolve(markers)
	return res
}

// Candidates returns the quads that pass the geometric filter, in
// discovery order.
func (d *Detector) Candidates(frame image.Image) []detection.Quad {
	return d.extractor.Extract(frame).Quads
}

// Rectify warps one candidate into the canonical image.
func (d *Detector) Rectify(frame image.Image, q detection.Quad) (*image.NRGBA, error) {
	return d.rectifier.Rectify(frame, q)
}

// Sample rectifies a candidate and reads its grid.
func (d *Detector) Sample(frame image.Image, q detection.Quad) (marker.Grid, error) {
	canonical, err := d.rectifier.Rectify(frame, q)
	if err != nil {
		return nil, err
	}
	return marker.SampleGrid(canonical, d.catalog.GridSize()), nil
}

// Identify runs rectification, matching and pose recovery on one quad.
// Failures wrap ErrRejected together with the underlying cause.
func (d *Detector) Identify(frame image.Image, q detection.Quad) (DetectedMarker, error) {
	m, reason, err := d.identify(frame, q)
	if err != nil {
		return DetectedMarker{}, fmt.Errorf("%w (%s): %w", ErrRejected, reason, err)
	}
	return m, nil
}

func (d *Detector) identify(frame image.Image, q detection.Quad) (DetectedMarker, RejectReason, error) {
	grid, err := d.Sample(frame, q)
	if err != nil {
		return DetectedMarker{}, RejectRectify, err
	}

	match, err := d.catalog.Match(grid)
	if err != nil {
		return DetectedMarker{}, RejectNoMatch, err
	}

	world := geometry.WorldCorners(match.Orientation)
	pose, err := d.solver.Solve(world[:], q.Points())
	if err != nil {
		return DetectedMarker{}, RejectPose, err
	}

	return DetectedMarker{
		ID:          match.Entry.ID,
		SiblingID:   match.Entry.SiblingID,
		Shape:       match.Entry.Shape,
		Orientation: match.Orientation,
		Corners:     q,
		Pose:        pose,
		Projection:  geometry.NewProjection(d.camera, pose),
	}, "", nil
}
