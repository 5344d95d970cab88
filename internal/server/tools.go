package server

import "github.com/ironsheep/piccy-engine/internal/imaging"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// imageSchema builds an input schema for a tool that takes an image plus the
// given extra properties. The image is passed as image_base64 or path.
func imageSchema(extra map[string]interface{}, required ...string) map[string]interface{} {
	props := map[string]interface{}{
		"image_base64": map[string]interface{}{
			"type":        "string",
			"description": "Image bytes, standard base64. Mutually exclusive with path.",
		},
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Path to the image file. Mutually exclusive with image_base64.",
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	if required == nil {
		required = []string{}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_inspect",
			Description: "Identify an image and return its dimensions, container format, and for animations the frame count and average frame duration in milliseconds.",
			InputSchema: imageSchema(nil),
		},

		// Region Operations
		{
			Name:        "image_crop",
			Description: "Crop a rectangle from every frame of an image. The result keeps the source format, frame count and frame delays and is returned base64-encoded.",
			InputSchema: imageSchema(map[string]interface{}{
				"left": map[string]interface{}{
					"type":        "integer",
					"description": "Left edge X coordinate (0-based)",
					"minimum":     0,
				},
				"top": map[string]interface{}{
					"type":        "integer",
					"description": "Top edge Y coordinate (0-based)",
					"minimum":     0,
				},
				"width": map[string]interface{}{
					"type":        "integer",
					"description": "Width of the rectangle in pixels",
					"minimum":     1,
				},
				"height": map[string]interface{}{
					"type":        "integer",
					"description": "Height of the rectangle in pixels",
					"minimum":     1,
				},
			}, "left", "top", "width", "height"),
		},
		{
			Name:        "image_crop_region",
			Description: "Crop a named region (half, quadrant or center) from every frame of an image.",
			InputSchema: imageSchema(map[string]interface{}{
				"region": map[string]interface{}{
					"type":        "string",
					"description": "Region to extract",
					"enum":        imaging.Regions,
				},
			}, "region"),
		},

		// Storage
		{
			Name:        "image_persist",
			Description: "Write image bytes to a file and return its absolute path. Without a destination, or when the destination is a directory, a unique file name is generated.",
			InputSchema: imageSchema(map[string]interface{}{
				"destination": map[string]interface{}{
					"type":        "string",
					"description": "File or existing directory to write to. Defaults to the configured output directory.",
				},
			}),
		},

		// Animation Operations
		{
			Name:        "image_frames",
			Description: "Split an animated GIF or WebP into its frames, each returned as a PNG with its delay.",
			InputSchema: imageSchema(nil),
		},
		{
			Name:        "image_reverse",
			Description: "Reverse the frame order of an animated image. Each frame keeps its own delay.",
			InputSchema: imageSchema(nil),
		},
		{
			Name:        "image_retime",
			Description: "Give every frame of an animated image the same delay.",
			InputSchema: imageSchema(map[string]interface{}{
				"delay_ms": map[string]interface{}{
					"type":        "integer",
					"description": "Frame delay in milliseconds. GIF stores delays in 10 ms steps.",
					"minimum":     1,
				},
			}, "delay_ms"),
		},
		{
			Name:        "image_convert",
			Description: "Re-encode an image in another format. Single-frame formats receive the first frame of an animation.",
			InputSchema: imageSchema(map[string]interface{}{
				"format": map[string]interface{}{
					"type":        "string",
					"description": "Target format",
					"enum":        []string{"png", "jpeg", "gif", "webp", "bmp", "tiff"},
				},
			}, "format"),
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
