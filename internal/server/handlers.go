package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ironsheep/piccy-engine/internal/imaging"
	"github.com/ironsheep/piccy-engine/internal/storage"
)

// KindInvalidRequest identifies requests rejected before reaching the engine.
const KindInvalidRequest = "InvalidRequest"

// JSON-RPC error codes.
const (
	codeInvalidRequest = -32600
	codeInvalidParams  = -32602
	codeToolFailed     = -32000
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_inspect", "image_crop").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// ErrorData is the data member of a failed tools/call response.
type ErrorData struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// requestError marks a request rejected by argument validation.
type requestError struct {
	msg string
	// params is set when the arguments could not be decoded at all.
	params bool
}

func (e *requestError) Error() string { return e.msg }

func invalidRequest(format string, args ...interface{}) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

// errorKind classifies err for the wire.
func errorKind(err error) string {
	var re *requestError
	if errors.As(err, &re) {
		return KindInvalidRequest
	}
	if errors.Is(err, storage.ErrIO) {
		return imaging.KindIOError
	}
	return imaging.Kind(err)
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000 and
// data {"kind", "detail"}. Arguments that are not valid JSON for the tool use
// -32602.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params",
			ErrorData{Kind: KindInvalidRequest, Detail: err.Error()})
	}

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		kind := errorKind(err)
		s.log.Warn("Tool %s failed: %s: %v", params.Name, kind, err)

		var re *requestError
		if errors.As(err, &re) && re.params {
			return s.errorResponse(req.ID, codeInvalidParams, "Invalid params",
				ErrorData{Kind: kind, Detail: err.Error()})
		}
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed",
			ErrorData{Kind: kind, Detail: err.Error()})
	}
	s.log.Debug("Tool %s completed in %v", params.Name, time.Since(start))

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
//
// Each tool handler:
//  1. Unmarshals and validates its arguments
//  2. Resolves the image input under the configured limits
//  3. Calls the engine
//  4. Returns a JSON-ready result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_inspect":
		return s.handleImageInspect(args)

	// Region Operations
	case "image_crop":
		return s.handleImageCrop(args)
	case "image_crop_region":
		return s.handleImageCropRegion(args)

	// Storage
	case "image_persist":
		return s.handleImagePersist(args)

	// Animation Operations
	case "image_frames":
		return s.handleImageFrames(args)
	case "image_reverse":
		return s.handleImageReverse(args)
	case "image_retime":
		return s.handleImageRetime(args)
	case "image_convert":
		return s.handleImageConvert(args)

	default:
		return nil, invalidRequest("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
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
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments. Missing arguments decode as an empty object.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return &requestError{msg: "invalid arguments: " + err.Error(), params: true}
	}
	return nil
}

// === Image Input ===

// imageInput is embedded by every tool that takes an image. Exactly one of
// the fields must be set.
type imageInput struct {
	ImageBase64 string `json:"image_base64"`
	Path        string `json:"path"`
}

// readInput returns the raw input, enforcing max_input_bytes.
func (s *Server) readInput(in imageInput) ([]byte, error) {
	hasData, hasPath := in.ImageBase64 != "", in.Path != ""
	switch {
	case hasData && hasPath:
		return nil, invalidRequest("image_base64 and path are mutually exclusive")
	case hasPath:
		return imaging.ReadFile(in.Path, s.cfg.MaxInputBytes)
	case !hasData:
		return nil, invalidRequest("one of image_base64 or path is required")
	}

	data := strings.TrimSpace(in.ImageBase64)
	limit := s.cfg.MaxInputBytes
	if limit > 0 && int64(base64.StdEncoding.DecodedLen(len(data))) > limit+2 {
		return nil, fmt.Errorf("%w: image_base64 decodes to more than %d bytes", imaging.ErrTooLarge, limit)
	}
	buf, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, invalidRequest("image_base64: %v", err)
	}
	if limit > 0 && int64(len(buf)) > limit {
		return nil, fmt.Errorf("%w: image is %d bytes, limit is %d", imaging.ErrTooLarge, len(buf), limit)
	}
	return buf, nil
}

// loadImage returns the input bytes after checking them against max_pixels.
func (s *Server) loadImage(in imageInput) ([]byte, error) {
	buf, err := s.readInput(in)
	if err != nil {
		return nil, err
	}
	if _, err := imaging.CheckLimits(buf, s.cfg.MaxPixels); err != nil {
		return nil, err
	}
	return buf, nil
}

// === Results ===

// ImageResult is returned by every tool that produces an encoded image.
type ImageResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	FrameCount  int    `json:"frame_count"`
	Format      string `json:"format"`
	MimeType    string `json:"mime_type"`
	ImageBase64 string `json:"image_base64"`
}

func newImageResult(out *imaging.Output) *ImageResult {
	return &ImageResult{
		Width:       out.Width,
		Height:      out.Height,
		FrameCount:  out.Frames,
		Format:      out.Format.String(),
		MimeType:    out.Format.MimeType(),
		ImageBase64: base64.StdEncoding.EncodeToString(out.Data),
	}
}

// FrameResult is one entry of an image_frames result.
type FrameResult struct {
	Index       int    `json:"index"`
	DelayMS     int64  `json:"delay_ms"`
	ImageBase64 string `json:"image_base64"`
}

// FramesResult is returned by image_frames.
type FramesResult struct {
	Frames []FrameResult `json:"frames"`
}

// === Basic Image Information Handlers ===

func (s *Server) handleImageInspect(args json.RawMessage) (interface{}, error) {
	var a imageInput
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	buf, err := s.loadImage(a)
	if err != nil {
		return nil, err
	}
	return imaging.Inspect(buf)
}

// === Region Operation Handlers ===

type imageCropArgs struct {
	imageInput
	Left   *int `json:"left"`
	Top    *int `json:"top"`
	Width  *int `json:"width"`
	Height *int `json:"height"`
}

func (s *Server) handleImageCrop(args json.RawMessage) (interface{}, error) {
	var a imageCropArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Left == nil || a.Top == nil || a.Width == nil || a.Height == nil {
		return nil, invalidRequest("left, top, width and height are required")
	}
	buf, err := s.loadImage(a.imageInput)
	if err != nil {
		return nil, err
	}
	r := imaging.Rect{Left: *a.Left, Top: *a.Top, Width: *a.Width, Height: *a.Height}
	out, err := imaging.CropImage(buf, r, s.cfg.EncodeOptions())
	if err != nil {
		return nil, err
	}
	return newImageResult(out), nil
}

type imageCropRegionArgs struct {
	imageInput
	Region string `json:"region"`
}

func (s *Server) handleImageCropRegion(args json.RawMessage) (interface{}, error) {
	var a imageCropRegionArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Region == "" {
		return nil, invalidRequest("region is required")
	}
	buf, err := s.loadImage(a.imageInput)
	if err != nil {
		return nil, err
	}
	out, err := imaging.CropRegion(buf, a.Region, s.cfg.EncodeOptions())
	if err != nil {
		return nil, err
	}
	return newImageResult(out), nil
}

// === Storage Handlers ===

type imagePersistArgs struct {
	imageInput
	Destination string `json:"destination"`
}

// handleImagePersist writes the input bytes unchanged; only the byte limit applies.
func (s *Server) handleImagePersist(args json.RawMessage) (interface{}, error) {
	var a imagePersistArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	buf, err := s.readInput(a.imageInput)
	if err != nil {
		return nil, err
	}
	res, err := storage.Persist(buf, a.Destination, s.cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	s.log.Info("Wrote %d bytes to %s", res.Bytes, res.Path)
	return res, nil
}

// === Animation Handlers ===

func (s *Server) handleImageFrames(args json.RawMessage) (interface{}, error) {
	var a imageInput
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	buf, err := s.loadImage(a)
	if err != nil {
		return nil, err
	}
	frames, err := imaging.ExtractFrames(buf)
	if err != nil {
		return nil, err
	}

	res := &FramesResult{Frames: make([]FrameResult, len(frames))}
	for i, fr := range frames {
		res.Frames[i] = FrameResult{
			Index:       i,
			DelayMS:     fr.Delay.Milliseconds(),
			ImageBase64: base64.StdEncoding.EncodeToString(fr.Data),
		}
	}
	return res, nil
}

func (s *Server) handleImageReverse(args json.RawMessage) (interface{}, error) {
	var a imageInput
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	buf, err := s.loadImage(a)
	if err != nil {
		return nil, err
	}
	out, err := imaging.ReverseImage(buf, s.cfg.EncodeOptions())
	if err != nil {
		return nil, err
	}
	return newImageResult(out), nil
}

// maxDelayMS keeps delay_ms within time.Duration.
const maxDelayMS = int64(math.MaxInt64 / int64(time.Millisecond))

type imageRetimeArgs struct {
	imageInput
	DelayMS *int64 `json:"delay_ms"`
}

func (s *Server) handleImageRetime(args json.RawMessage) (interface{}, error) {
	var a imageRetimeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.DelayMS == nil {
		return nil, invalidRequest("delay_ms is required")
	}
	if *a.DelayMS > maxDelayMS {
		return nil, invalidRequest("delay_ms: %d is too large", *a.DelayMS)
	}
	buf, err := s.loadImage(a.imageInput)
	if err != nil {
		return nil, err
	}
	out, err := imaging.RetimeImage(buf, time.Duration(*a.DelayMS)*time.Millisecond, s.cfg.EncodeOptions())
	if err != nil {
		return nil, err
	}
	return newImageResult(out), nil
}

type imageConvertArgs struct {
	imageInput
	Format string `json:"format"`
}

func (s *Server) handleImageConvert(args json.RawMessage) (interface{}, error) {
	var a imageConvertArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	f, err := imaging.ParseFormat(a.Format)
	if err != nil {
		return nil, invalidRequest("format: %v", err)
	}
	buf, err := s.loadImage(a.imageInput)
	if err != nil {
		return nil, err
	}
	out, err := imaging.Convert(buf, f, s.cfg.EncodeOptions())
	if err != nil {
		return nil, err
	}
	return newImageResult(out), nil
}
