package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/ironsheep/marker-ar/internal/monitoring"
)

// ErrSourceFailing is returned by Loop.Run when the frame source failed
// MaxConsecutiveFailures times in a row.
var ErrSourceFailing = errors.New("frame source keeps failing")

// FrameSource delivers frames one at a time. Next returns io.EOF when no
// frames remain; any other error is an acquisition failure for that frame
// only.
type FrameSource interface {
	Next() (image.Image, error)
}

// RenderSink consumes the draw directives of each processed frame.
type RenderSink interface {
	Render(frame image.Image, directives []Directive) error
}

// Loop is the synchronous frame loop: read a frame, detect, hand the
// directives to the sink, repeat.
type Loop struct {
	Source   FrameSource
	Detector *Detector

	// Sink may be nil when only the results are of interest. A failed
	// render is logged and the loop moves on to the next frame.
	Sink RenderSink

	// MaxConsecutiveFailures, when positive, ends the run after that many
	// back-to-back acquisition failures. Zero or negative never gives up.
	MaxConsecutiveFailures int

	// OnFrame, when set, sees every frame result after rendering.
	OnFrame func(index int, res *FrameResult)
}

// LoopStats summarizes a finished run.
type LoopStats struct {
	Frames       int `json:"frames"`
	Skipped      int `json:"skipped"`
	Markers      int `json:"markers"`
	RenderErrors int `json:"render_errors"`
}

// Run processes frames until the source is exhausted or the context is
// cancelled, or until the optional failure cap is hit. Neither acquisition
// nor render failures stop the loop on their own. The context is checked
// between frames only.
func (l *Loop) Run(ctx context.Context) (LoopStats, error) {
	var stats LoopStats
	if l.Source == nil || l.Detector == nil {
		return stats, fmt.Errorf("failed to run frame loop: source and detector are required")
	}

	failures := 0
	for index := 0; ; index++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		frame, err := l.Source.Next()
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			stats.Skipped++
			failures++
			monitoring.Logf("frame %d: acquisition failed: %v", index, err)
			if l.MaxConsecutiveFailures > 0 && failures >= l.MaxConsecutiveFailures {
				return stats, fmt.Errorf("%d consecutive failures: %w", failures, ErrSourceFailing)
			}
			continue
		}
		failures = 0

		res := l.Detector.Detect(frame)
		stats.Frames++
		stats.Markers += len(res.Markers)

		if l.Sink != nil {
			if err := l.Sink.Render(frame, res.Directives); err != nil {
				stats.RenderErrors++
				monitoring.Logf("frame %d: render failed: %v", index, err)
			}
		}
		if l.OnFrame != nil {
			l.OnFrame(index, res)
		}
	}
}
