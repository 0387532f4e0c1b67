package pipeline

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/ironsheep/marker-ar/internal/detection"
	"github.com/ironsheep/marker-ar/internal/geometry"
	"github.com/ironsheep/marker-ar/internal/marker"
)

// DetectedMarker is a fully identified marker in one frame.
type DetectedMarker struct {
	ID          string       `json:"id"`
	SiblingID   string       `json:"sibling_id"`
	Shape       marker.Shape `json:"shape"`
	Orientation int          `json:"orientation"`

	// Corners are the image corners as extracted, clockwise from the one
	// closest to the origin.
	Corners detection.Quad `json:"corners"`

	Pose geometry.Pose `json:"pose"`

	// Projection maps marker coordinates (unit square, z=0) to pixels.
	Projection geometry.Projection `json:"projection"`
}

// FrameState is the set of marker IDs visible in one frame. It is built and
// consumed inside a single Detect call and handed back with the result.
type FrameState map[string]struct{}

// Add marks id as present.
func (s FrameState) Add(id string) {
	s[id] = struct{}{}
}

// Has reports whether id is present.
func (s FrameState) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the present IDs in sorted order.
func (s FrameState) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MarshalJSON encodes the state as its sorted ID list.
func (s FrameState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.IDs())
}

// Directive tells a renderer what to draw for one detected marker.
type Directive struct {
	MarkerID   string              `json:"marker_id"`
	Shape      marker.Shape        `json:"shape"`
	Projection geometry.Projection `json:"projection"`

	// State is true when the marker's sibling is visible in the same frame.
	State bool   `json:"state"`
	Label string `json:"label"`
}

// Label returns the overlay text for a marker: its ID followed by "true" or
// "false".
func Label(id string, state bool) string {
	return id + strconv.FormatBool(state)
}

// Resolve decides the state of every marker in two passes: the first
// collects the IDs present in the frame, the second checks each marker's
// sibling against that set. Directives come out in the order of markers.
func Resolve(markers []DetectedMarker) (FrameState, []Directive) {
	state := make(FrameState, len(markers))
	for _, m := range markers {
		state.Add(m.ID)
	}

	directives := make([]Directive, 0, len(markers))
	for _, m := range markers {
		on := state.Has(m.SiblingID)
		directives = append(directives, Directive{
			MarkerID:   m.ID,
			Shape:      m.Shape,
			Projection: m.Projection,
			State:      on,
			Label:      Label(m.ID, on),
		})
	}
	return state, directives
}
