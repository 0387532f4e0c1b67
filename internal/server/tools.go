package server

// Tool is one entry of the tools/list result.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

// GetToolDefinitions lists the tools in the order clients see them.
func GetToolDefinitions() []Tool {
	return []Tool{
		// Frames
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The decoded frame is cached for later marker calls on the same path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Detection
		{
			Name:        "marker_detect",
			Description: "Detect catalog markers in an image. Returns each marker's ID, shape, orientation, corners, pose and 3x4 projection, the render directives with their sibling state, and per-stage rejection counts.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"annotate": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return the frame with wireframes and labels drawn, as base64 PNG. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "marker_rectify",
			Description: "Rectify one candidate quad of an image to the canonical square and show the sampling grid. Returns the sampled grid and whether it matches the catalog. Use this to see why a marker is not recognized.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"index": map[string]interface{}{
						"type":        "integer",
						"description": "Candidate index in discovery order (0-based). Default 0",
						"default":     0,
					},
					"show_samples": map[string]interface{}{
						"type":        "boolean",
						"description": "Mark the sample point and label of each cell. Default true",
						"default":     true,
					},
					"grid_color": map[string]interface{}{
						"type":        "string",
						"description": "Grid line color as hex. Default #FF0000",
						"default":     "#FF0000",
					},
				},
				"required": []string{"path"},
			},
		},

		// Catalog
		{
			Name:        "marker_catalog",
			Description: "List the marker catalog: IDs, siblings, shapes and the grid of each entry at all four orientations.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "marker_generate",
			Description: "Render a printable catalog marker as base64 PNG, optionally also writing it to a file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id": map[string]interface{}{
						"type":        "string",
						"description": "Catalog marker ID",
					},
					"cell_size": map[string]interface{}{
						"type":        "integer",
						"description": "Side of one grid cell in pixels. Default 50",
						"default":     50,
					},
					"quiet_zone": map[string]interface{}{
						"type":        "integer",
						"description": "White margin around the marker, in cells. Default 1",
						"default":     1,
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional file to write the marker to",
					},
				},
				"required": []string{"id"},
			},
		},
	}
}

func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return reply(req.ID, map[string]interface{}{"tools": GetToolDefinitions()})
}
