package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/marker-ar/internal/detection"
	"github.com/ironsheep/marker-ar/internal/imaging"
	"github.com/ironsheep/marker-ar/internal/marker"
	"github.com/ironsheep/marker-ar/internal/monitoring"
	"github.com/ironsheep/marker-ar/internal/pipeline"
)

// ToolCallParams is the params member of a tools/call request.
type ToolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall runs one tool. Its result is returned as pretty-printed
// JSON in a single text content item; a failing tool yields codeToolFailed
// with the error text as data.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return fail(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		monitoring.Debugf("tool %s failed: %v", params.Name, err)
		return fail(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	text, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fail(req.ID, codeToolFailed, "Tool result not encodable", err.Error())
	}
	return reply(req.ID, map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": string(text)},
		},
	})
}

// executeTool maps a tool name to its handler. Missing arguments count as {}.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	case "image_load":
		return s.handleImageLoad(args)

	case "marker_detect":
		return s.handleMarkerDetect(args)
	case "marker_rectify":
		return s.handleMarkerRectify(args)

	case "marker_catalog":
		return s.handleMarkerCatalog(args)
	case "marker_generate":
		return s.handleMarkerGenerate(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

var errPathRequired = errors.New("path is required")

// === Frame Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errPathRequired
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === Detection Handlers ===

type markerDetectArgs struct {
	Path     string `json:"path"`
	Annotate bool   `json:"annotate"`
}

// MarkerDetectResult is the marker_detect output.
type MarkerDetectResult struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	*pipeline.FrameResult

	// AnnotatedBase64 is the rendered overlay, present when requested.
	AnnotatedBase64 string `json:"annotated_base64,omitempty"`
}

func (s *Server) handleMarkerDetect(args json.RawMessage) (interface{}, error) {
	var a markerDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errPathRequired
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	res := s.detector.Detect(img)
	out := &MarkerDetectResult{
		Path:        a.Path,
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		FrameResult: res,
	}

	if a.Annotate {
		encoded, err := imaging.EncodePNG(s.renderer.Draw(img, res.Directives))
		if err != nil {
			return nil, err
		}
		out.AnnotatedBase64 = encoded
	}
	return out, nil
}

type markerRectifyArgs struct {
	Path        string `json:"path"`
	Index       int    `json:"index"`
	ShowSamples *bool  `json:"show_samples"`
	GridColor   string `json:"grid_color"`
}

// MarkerRectifyResult is the marker_rectify output.
type MarkerRectifyResult struct {
	Index      int            `json:"index"`
	Candidates int            `json:"candidates"`
	Corners    detection.Quad `json:"corners"`
	Grid       marker.Grid    `json:"grid"`

	Matched     bool   `json:"matched"`
	MarkerID    string `json:"marker_id,omitempty"`
	Orientation int    `json:"orientation,omitempty"`

	// Levels are the raw luminance values behind Grid.
	Levels *imaging.CellLevels `json:"levels"`

	Canonical *imaging.GridOverlayResult `json:"canonical"`

	// Source is the candidate's neighbourhood in the original frame.
	Source *imaging.CropResult `json:"source"`
}

// sourceMargin is the padding around a candidate in marker_rectify crops.
const sourceMargin = 10

func (s *Server) handleMarkerRectify(args json.RawMessage) (interface{}, error) {
	var a markerRectifyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errPathRequired
	}
	showSamples := true
	if a.ShowSamples != nil {
		showSamples = *a.ShowSamples
	}
	if a.GridColor == "" {
		a.GridColor = "#FF0000"
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	quads := s.detector.Candidates(img)
	if a.Index < 0 || a.Index >= len(quads) {
		return nil, fmt.Errorf("candidate index %d out of range: %d candidates found", a.Index, len(quads))
	}
	q := quads[a.Index]

	canonical, err := s.detector.Rectify(img, q)
	if err != nil {
		return nil, err
	}

	cat := s.detector.Catalog()
	overlay, err := imaging.GridOverlay(canonical, cat.GridSize(), showSamples, a.GridColor)
	if err != nil {
		return nil, err
	}

	levels, err := imaging.ProbeCells(canonical, cat.GridSize())
	if err != nil {
		return nil, err
	}
	source, err := imaging.CropAround(img, q.Points(), sourceMargin, 1.0)
	if err != nil {
		return nil, err
	}

	out := &MarkerRectifyResult{
		Index:      a.Index,
		Candidates: len(quads),
		Corners:    q,
		Grid:       marker.SampleGrid(canonical, cat.GridSize()),
		Levels:     levels,
		Canonical:  overlay,
		Source:     source,
	}
	if m, err := cat.Match(out.Grid); err == nil {
		out.Matched = true
		out.MarkerID = m.Entry.ID
		out.Orientation = m.Orientation
	}
	return out, nil
}

// === Catalog Handlers ===

// CatalogEntry describes one marker with its grid at every orientation.
type CatalogEntry struct {
	ID        string       `json:"id"`
	SiblingID string       `json:"sibling_id"`
	Shape     marker.Shape `json:"shape"`

	// Rotations[k] is the pattern after k counter-clockwise quarter turns.
	Rotations [4]marker.Grid `json:"rotations"`
}

// CatalogResult is the marker_catalog output.
type CatalogResult struct {
	GridSize int            `json:"grid_size"`
	Entries  []CatalogEntry `json:"entries"`
}

func (s *Server) handleMarkerCatalog(_ json.RawMessage) (interface{}, error) {
	cat := s.detector.Catalog()
	out := &CatalogResult{GridSize: cat.GridSize()}
	for _, e := range cat.Entries() {
		rots, err := cat.Rotations(e.ID)
		if err != nil {
			return nil, err
		}
		out.Entries = append(out.Entries, CatalogEntry{
			ID:        e.ID,
			SiblingID: e.SiblingID,
			Shape:     e.Shape,
			Rotations: rots,
		})
	}
	return out, nil
}

type markerGenerateArgs struct {
	ID         string `json:"id"`
	CellSize   int    `json:"cell_size"`
	QuietZone  *int   `json:"quiet_zone"`
	OutputPath string `json:"output_path"`
}

// MarkerGenerateResult is the marker_generate output.
type MarkerGenerateResult struct {
	ID          string `json:"id"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	OutputPath  string `json:"output_path,omitempty"`
}

func (s *Server) handleMarkerGenerate(args json.RawMessage) (interface{}, error) {
	var a markerGenerateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.ID == "" {
		return nil, fmt.Errorf("id is required")
	}
	if a.CellSize == 0 {
		a.CellSize = 50
	}
	quiet := marker.DefaultQuietZone
	if a.QuietZone != nil {
		quiet = *a.QuietZone
	}

	img, err := s.detector.Catalog().RenderEntry(a.ID, a.CellSize, quiet)
	if err != nil {
		return nil, err
	}

	encoded, err := imaging.EncodePNG(img)
	if err != nil {
		return nil, err
	}
	if a.OutputPath != "" {
		if err := imaging.Save(img, a.OutputPath); err != nil {
			return nil, err
		}
	}

	return &MarkerGenerateResult{
		ID:          a.ID,
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
		OutputPath:  a.OutputPath,
	}, nil
}
