package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file (PNG or JPEG)",
	}
}

func hsvProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": description,
		"items":       map[string]interface{}{"type": "integer"},
		"minItems":    3,
		"maxItems":    3,
	}
}

func colorsProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": "Colors to track, in order. Defaults to the configured colors (skin, blue, red).",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"name":  map[string]interface{}{"type": "string"},
				"lower": hsvProperty("Inclusive lower bound [h, s, v]; h 0-179, s and v 0-255"),
				"upper": hsvProperty("Inclusive upper bound [h, s, v]; h 0-179, s and v 0-255"),
			},
			"required": []string{"lower", "upper"},
		},
	}
}

// frameProperties are shared by every still-image tool.
func frameProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": pathProperty(),
		"width": map[string]interface{}{
			"type":        "integer",
			"description": "Resize to this width before detection (area average). 0 keeps the source width.",
		},
		"height": map[string]interface{}{
			"type":        "integer",
			"description": "Resize to this height before detection. 0 keeps the source height.",
		},
		"mirror": map[string]interface{}{
			"type":        "boolean",
			"description": "Flip horizontally before detection, as the camera pipeline does. Default false.",
			"default":     false,
		},
	}
}

func withColors(props map[string]interface{}) map[string]interface{} {
	props["colors"] = colorsProperty()
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Still Images
		{
			Name:        "blob_frame_info",
			Description: "Load an image and report its source dimensions and the working frame size used for detection.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": frameProperties(),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "blob_filter_color",
			Description: "Keep only the pixels inside one HSV range. Returns the matched pixel count, the tight rectangle around all matches and the filtered frame as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": func() map[string]interface{} {
					p := frameProperties()
					p["lower"] = hsvProperty("Inclusive lower bound [h, s, v]")
					p["upper"] = hsvProperty("Inclusive upper bound [h, s, v]")
					return p
				}(),
				"required": []string{"path", "lower", "upper"},
			},
		},
		{
			Name:        "blob_detect_clusters",
			Description: "Find every 8-connected cluster of each color. Rectangles are [xmin, ymin, xmax, ymax] with inclusive corners, x = column, y = row.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": withColors(frameProperties()),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "blob_basic_rects",
			Description: "One tight rectangle around all pixels of each color, without separating clusters. found is false when no pixel matched.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": withColors(frameProperties()),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "blob_key_points",
			Description: "The largest cluster of each color. [0,0,0,0] means the color was not found. With normalized, coordinates are divided by the frame width and height.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": func() map[string]interface{} {
					p := withColors(frameProperties())
					p["normalized"] = map[string]interface{}{
						"type":        "boolean",
						"description": "Return coordinates in [0, 1]",
						"default":     false,
					}
					return p
				}(),
				"required": []string{"path"},
			},
		},
		{
			Name:        "blob_overlay",
			Description: "Draw detection results and return them as base64 PNG. keypoints mode joins consecutive colors' centers with white lines on the frame; normalized mode draws the normalized key points scaled onto a black surface.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": func() map[string]interface{} {
					p := withColors(frameProperties())
					p["mode"] = map[string]interface{}{
						"type":        "string",
						"description": "What to draw",
						"enum":        []string{"clusters", "keypoints", "normalized"},
						"default":     "keypoints",
					}
					p["surface_width"] = map[string]interface{}{
						"type":        "integer",
						"description": "normalized mode: surface width in pixels. Default 900",
						"default":     900,
					}
					p["surface_height"] = map[string]interface{}{
						"type":        "integer",
						"description": "normalized mode: surface height in pixels. Default 800",
						"default":     800,
					}
					p["scale"] = map[string]interface{}{
						"type":        "integer",
						"description": "Enlarge the output 1-8x. Default 1",
						"default":     1,
					}
					p["labels"] = map[string]interface{}{
						"type":        "boolean",
						"description": "Number each cluster box",
						"default":     false,
					}
					return p
				}(),
				"required": []string{"path"},
			},
		},

		// Camera
		{
			Name:        "camera_key_points",
			Description: "Stream key points from the configured camera for a number of frames. The camera is acquired for the call and released afterwards.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"frames": map[string]interface{}{
						"type":        "integer",
						"description": "Frames to capture, 1-300. Default 1",
						"default":     1,
					},
					"normalized": map[string]interface{}{
						"type":        "boolean",
						"description": "Return coordinates in [0, 1]",
						"default":     false,
					},
					"colors": colorsProperty(),
				},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
