package pipeline

import (
	"fmt"
	"image"

	"github.com/ironsheep/marker-ar/internal/detection"
	"github.com/ironsheep/marker-ar/internal/geometry"
	"github.com/ironsheep/marker-ar/internal/imaging"
)

// DefaultCanonicalSize is the side of the rectified marker image in pixels.
const DefaultCanonicalSize = 300

// Rectifier maps a candidate quad onto an axis-aligned square image.
type Rectifier struct {
	// Size is the side of the canonical image. Zero means
	// DefaultCanonicalSize.
	Size int
}

func (r Rectifier) size() int {
	if r.Size <= 0 {
		return DefaultCanonicalSize
	}
	return r.Size
}

// Homography returns the transform taking the quad corners, in order, to
// (0,0), (S,0), (S,S), (0,S).
func (r Rectifier) Homography(q detection.Quad) (geometry.Homography, error) {
	s := float64(r.size())
	dst := []geometry.Point{geometry.Pt(0, 0), geometry.Pt(s, 0), geometry.Pt(s, s), geometry.Pt(0, s)}
	h, err := geometry.FindHomography(q.Points(), dst)
	if err != nil {
		return geometry.Homography{}, fmt.Errorf("failed to rectify quad at %v: %w", q[0], err)
	}
	return h, nil
}

// Rectify warps the quad region of frame into an S×S canonical image.
func (r Rectifier) Rectify(frame image.Image, q detection.Quad) (*image.NRGBA, error) {
	h, err := r.Homography(q)
	if err != nil {
		return nil, err
	}
	return imaging.WarpPerspective(frame, h, r.size(), r.size())
}
