package server

import "github.com/ironsheep/shape-counter/internal/shapes"

// Tool represents an MCP tool definition
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

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	def := shapes.DefaultParams()

	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format, file size and mean gray level (useful for picking a threshold).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_sample_color",
			Description: "Get the exact color value at a specific pixel coordinate, e.g. to check the fill of a detected shape.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based, from left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based, from top)",
					},
				},
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "image_cache_clear",
			Description: "Drop a cached image so the next call re-reads it from disk. Without a path the whole cache is cleared.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Image to evict. Omit to clear everything",
					},
				},
			},
		},

		// Shape Counting
		{
			Name:        "shapes_detect",
			Description: "Count triangles, squares, rectangles and circles in an image. Returns per-kind counts and every classified shape with its polygon; optionally writes or returns the annotated image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional path to write the annotated image to (format from extension)",
					},
					"include_image": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the annotated image as base64 PNG. Default false",
						"default":     false,
					},
					"labels": map[string]interface{}{
						"type":        "boolean",
						"description": "Draw the kind name next to each outline. Default false",
						"default":     false,
					},
					"min_area": map[string]interface{}{
						"type":        "number",
						"description": "Minimum contour area in square pixels. Default 500",
						"default":     def.MinArea,
					},
					"max_area": map[string]interface{}{
						"type":        "number",
						"description": "Maximum contour area in square pixels. Default 10000",
						"default":     def.MaxArea,
					},
					"epsilon_factor": map[string]interface{}{
						"type":        "number",
						"description": "Polygon approximation tolerance as a fraction of the perimeter. Default 0.02",
						"default":     def.EpsilonFactor,
					},
					"threshold": map[string]interface{}{
						"type":        "integer",
						"description": "Gray level (0-255) at or below which a pixel belongs to a shape. Default 127",
						"default":     int(def.Threshold),
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "shapes_classify",
			Description: "Classify a polygon from its vertex count and bounding-box width/height ratio without touching an image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"vertices": map[string]interface{}{
						"type":        "integer",
						"description": "Number of vertices of the approximated polygon",
					},
					"ratio": map[string]interface{}{
						"type":        "number",
						"description": "Bounding box width divided by height",
					},
				},
				"required": []string{"vertices", "ratio"},
			},
		},
		{
			Name:        "shapes_crop",
			Description: "Detect shapes and return a PNG crop around one of them, addressed by its index in the shapes_detect result.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"index": map[string]interface{}{
						"type":        "integer",
						"description": "Index into the detected shapes list",
					},
					"margin": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels added around the bounding box. Default 4",
						"default":     defaultCropMargin,
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Resize factor for the crop (e.g. 2.0 to zoom). Default 1",
						"default":     1.0,
					},
					"annotated": map[string]interface{}{
						"type":        "boolean",
						"description": "Crop from the annotated image instead of the source. Default false",
						"default":     false,
					},
				},
				"required": []string{"path", "index"},
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
