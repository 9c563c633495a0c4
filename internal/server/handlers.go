package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ironsheep/shape-counter/internal/imaging"
	"github.com/ironsheep/shape-counter/internal/shapes"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "shapes_detect").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", zap.String("tool", params.Name), zap.Error(err))
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_sample_color":
		return s.handleImageSampleColor(args)
	case "image_cache_clear":
		return s.handleImageCacheClear(args)

	// Shape Counting
	case "shapes_detect":
		return s.handleShapesDetect(args)
	case "shapes_classify":
		return s.handleShapesClassify(args)
	case "shapes_crop":
		return s.handleShapesCrop(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

var errPathRequired = errors.New("path is required")

// === Basic Image Information Handlers ===

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

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errPathRequired
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

type imageSampleColorArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func (s *Server) handleImageSampleColor(args json.RawMessage) (interface{}, error) {
	var a imageSampleColorArgs
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
	return imaging.SampleColor(img, a.X, a.Y)
}

type imageCacheClearArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageCacheClear(args json.RawMessage) (interface{}, error) {
	var a imageCacheClearArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		s.cache.Clear()
		return map[string]string{"cleared": "all"}, nil
	}
	s.cache.Evict(a.Path)
	return map[string]string{"cleared": a.Path}, nil
}

// === Shape Counting Handlers ===

type shapesDetectArgs struct {
	Path          string   `json:"path"`
	OutputPath    string   `json:"output_path"`
	IncludeImage  bool     `json:"include_image"`
	Labels        bool     `json:"labels"`
	MinArea       *float64 `json:"min_area"`
	MaxArea       *float64 `json:"max_area"`
	EpsilonFactor *float64 `json:"epsilon_factor"`
	Threshold     *int     `json:"threshold"`
}

// ShapesDetectResult is the shapes_detect tool output.
type ShapesDetectResult struct {
	Backend    string                `json:"backend"`
	Counts     shapes.Counts         `json:"counts"`
	Total      int                   `json:"total"`
	Shapes     []shapes.Shape        `json:"shapes"`
	OutputPath string                `json:"output_path,omitempty"`
	Image      *imaging.EncodedImage `json:"image,omitempty"`
}

func (s *Server) handleShapesDetect(args json.RawMessage) (interface{}, error) {
	var a shapesDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errPathRequired
	}

	p := s.params
	if a.MinArea != nil {
		p.MinArea = *a.MinArea
	}
	if a.MaxArea != nil {
		p.MaxArea = *a.MaxArea
	}
	if a.EpsilonFactor != nil {
		p.EpsilonFactor = *a.EpsilonFactor
	}
	if a.Threshold != nil {
		if *a.Threshold < 0 || *a.Threshold > 255 {
			return nil, fmt.Errorf("threshold must be within 0-255, got %d", *a.Threshold)
		}
		p.Threshold = uint8(*a.Threshold)
	}
	if a.Labels {
		p.Labels = true
	}

	d := shapes.NewDetector(s.backend,
		shapes.WithParams(p),
		shapes.WithPalette(s.palette),
		shapes.WithImageCache(s.cache),
		shapes.WithLogger(s.logger),
	)
	res, err := d.DetectFile(a.Path)
	if err != nil {
		return nil, err
	}

	out := &ShapesDetectResult{
		Backend: d.Backend(),
		Counts:  res.Counts,
		Total:   res.Counts.Total(),
		Shapes:  res.Shapes,
	}
	if a.OutputPath != "" {
		if err := imaging.Save(res.Annotated, a.OutputPath, s.jpegQuality); err != nil {
			return nil, err
		}
		out.OutputPath = a.OutputPath
	}
	if a.IncludeImage {
		enc, err := imaging.EncodePNGBase64(res.Annotated)
		if err != nil {
			return nil, err
		}
		out.Image = enc
	}
	return out, nil
}

type shapesClassifyArgs struct {
	Vertices int     `json:"vertices"`
	Ratio    float64 `json:"ratio"`
}

// ShapesClassifyResult is the shapes_classify tool output.
type ShapesClassifyResult struct {
	Kind     shapes.Kind `json:"kind"`
	Vertices int         `json:"vertices"`
	Ratio    float64     `json:"ratio"`
}

func (s *Server) handleShapesClassify(args json.RawMessage) (interface{}, error) {
	var a shapesClassifyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Vertices < 0 {
		return nil, fmt.Errorf("vertices must not be negative, got %d", a.Vertices)
	}
	return &ShapesClassifyResult{
		Kind:     shapes.Classify(a.Vertices, a.Ratio, s.params),
		Vertices: a.Vertices,
		Ratio:    a.Ratio,
	}, nil
}

type shapesCropArgs struct {
	Path      string  `json:"path"`
	Index     int     `json:"index"`
	Margin    *int    `json:"margin"`
	Scale     float64 `json:"scale"`
	Annotated bool    `json:"annotated"`
}

// ShapesCropResult is the shapes_crop tool output.
type ShapesCropResult struct {
	Shape shapes.Shape          `json:"shape"`
	Image *imaging.EncodedImage `json:"image"`
}

const defaultCropMargin = 4

func (s *Server) handleShapesCrop(args json.RawMessage) (interface{}, error) {
	var a shapesCropArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errPathRequired
	}
	margin := defaultCropMargin
	if a.Margin != nil {
		margin = *a.Margin
	}

	d := shapes.NewDetector(s.backend,
		shapes.WithParams(s.params),
		shapes.WithPalette(s.palette),
		shapes.WithImageCache(s.cache),
		shapes.WithLogger(s.logger),
	)
	res, err := d.DetectFile(a.Path)
	if err != nil {
		return nil, err
	}
	if a.Index < 0 || a.Index >= len(res.Shapes) {
		return nil, fmt.Errorf("shape index %d out of range, %d shapes detected", a.Index, len(res.Shapes))
	}
	shape := res.Shapes[a.Index]

	src, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	r := shape.Bounds.Rect()
	if a.Annotated {
		// the annotated copy starts at the origin
		r = r.Sub(src.Bounds().Min)
		src = res.Annotated
	}

	enc, err := imaging.Crop(src, r, margin, a.Scale)
	if err != nil {
		return nil, err
	}
	return &ShapesCropResult{Shape: shape, Image: enc}, nil
}
