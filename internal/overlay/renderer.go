package overlay

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/marker-ar/internal/geometry"
	"github.com/ironsheep/marker-ar/internal/monitoring"
	"github.com/ironsheep/marker-ar/internal/pipeline"
)

// DefaultLineWidth is the stroke width of wireframe edges in pixels.
const DefaultLineWidth = 2.0

// labelAnchor is where a marker's label is drawn, in marker coordinates.
var labelAnchor = geometry.Point3{X: 0.5, Y: 0.5}

// Renderer draws render directives onto frames. It implements
// pipeline.RenderSink.
//
// With an output directory each annotated frame is written there as
// frame_NNNNN.png; without one only the most recent frame is kept.
type Renderer struct {
	OutputDir string
	LineWidth float64

	frames int
	last   *image.NRGBA
}

// NewRenderer returns a renderer writing into dir, creating it if needed.
// An empty dir keeps frames in memory only.
func NewRenderer(dir string) (*Renderer, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	return &Renderer{OutputDir: dir, LineWidth: DefaultLineWidth}, nil
}

// Draw returns a copy of frame with every directive drawn on it.
func (r *Renderer) Draw(frame image.Image, directives []pipeline.Directive) *image.NRGBA {
	out := imaging.Clone(frame)

	width := r.LineWidth
	if width <= 0 {
		width = DefaultLineWidth
	}

	for _, d := range directives {
		scheme := SchemeFor(d.Shape, d.State)
		for _, e := range Model(d.Shape) {
			drawEdge(out, d.Projection, e, scheme, width)
		}
		if p, ok := d.Projection.Project(labelAnchor); ok {
			drawText(out, p, d.Label, LabelColor(d.State))
		}
	}
	return out
}

// Render draws one frame and, when an output directory is set, saves it.
func (r *Renderer) Render(frame image.Image, directives []pipeline.Directive) error {
	out := r.Draw(frame, directives)
	r.last = out

	index := r.frames
	r.frames++

	if r.OutputDir == "" {
		return nil
	}
	path := filepath.Join(r.OutputDir, fmt.Sprintf("frame_%05d.png", index))
	if err := imaging.Save(out, path); err != nil {
		return fmt.Errorf("failed to save frame %d: %w", index, err)
	}
	monitoring.Debugf("wrote %s (%d directives)", path, len(directives))
	return nil
}

// Last returns the most recently rendered frame, or nil.
func (r *Renderer) Last() *image.NRGBA {
	return r.last
}

// Frames returns how many frames have been rendered.
func (r *Renderer) Frames() int {
	return r.frames
}
