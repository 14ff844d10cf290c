package server

import (
	"encoding/json"
	"fmt"
	"image"

	"github.com/ironsheep/color-tracker/internal/capture"
	"github.com/ironsheep/color-tracker/internal/config"
	"github.com/ironsheep/color-tracker/internal/detection"
	"github.com/ironsheep/color-tracker/internal/imaging"
	"github.com/ironsheep/color-tracker/internal/pipeline"
	"github.com/ironsheep/color-tracker/internal/render"
)

// Limits for the camera tool, which blocks the server while it streams.
const (
	defaultCameraFrames = 1
	maxCameraFrames     = 300
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "blob_key_points").
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
		s.log.Warn("tool failed", "tool", params.Name, "error", err)
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
//
// Still-image tools load the file through the cache, prepare it as an HSV
// frame (optionally resized and mirrored) and run one detection cycle over
// it. Colors default to the configured ones.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	switch name {
	case "blob_frame_info":
		return s.handleFrameInfo(args)
	case "blob_filter_color":
		return s.handleFilterColor(args)
	case "blob_detect_clusters":
		return s.handleDetectClusters(args)
	case "blob_basic_rects":
		return s.handleBasicRects(args)
	case "blob_key_points":
		return s.handleKeyPoints(args)
	case "blob_overlay":
		return s.handleOverlay(args)
	case "camera_key_points":
		return s.handleCameraKeyPoints(args)
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
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Shared argument handling ===

type imageArgs struct {
	Path   string             `json:"path"`
	Width  int                `json:"width"`
	Height int                `json:"height"`
	Mirror bool               `json:"mirror"`
	Colors []config.ColorSpec `json:"colors"`
}

func (a imageArgs) prepareOptions() imaging.PrepareOptions {
	return imaging.PrepareOptions{Width: a.Width, Height: a.Height, Mirror: a.Mirror}
}

func (s *Server) loadFrame(a imageArgs) (*imaging.Frame, error) {
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if a.Width < 0 || a.Height < 0 {
		return nil, fmt.Errorf("invalid size %dx%d", a.Width, a.Height)
	}
	return s.cache.LoadFrame(a.Path, a.prepareOptions())
}

// colors resolves requested colors, falling back to the configured ones,
// and returns a namer for them.
func (s *Server) colors(specs []config.ColorSpec) ([]imaging.ColorBoundary, pipeline.Namer, error) {
	if len(specs) == 0 {
		specs = s.cfg.Colors
	}
	boundaries := make([]imaging.ColorBoundary, 0, len(specs))
	names := make(map[imaging.ColorBoundary]string, len(specs))
	for i, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, nil, fmt.Errorf("color %d: %w", i, err)
		}
		b := spec.Boundary()
		boundaries = append(boundaries, b)
		if _, ok := names[b]; !ok && spec.Name != "" {
			names[b] = spec.Name
		}
	}
	namer := func(b imaging.ColorBoundary) string {
		if n, ok := names[b]; ok {
			return n
		}
		return b.String()
	}
	return boundaries, namer, nil
}

// === Still Image Handlers ===

func (s *Server) handleFrameInfo(args json.RawMessage) (interface{}, error) {
	var a imageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	return imaging.LoadFrameInfo(s.cache, a.Path, a.prepareOptions())
}

type filterColorArgs struct {
	imageArgs
	Lower [3]int `json:"lower"`
	Upper [3]int `json:"upper"`
}

// FilterResult reports how much of a frame one color range matched.
type FilterResult struct {
	Width         int             `json:"width"`
	Height        int             `json:"height"`
	MatchedPixels int             `json:"matched_pixels"`
	Fraction      float64         `json:"fraction"`
	BasicRect     *detection.Rect `json:"basic_rect,omitempty"`
	ImageBase64   string          `json:"image_base64"`
	MimeType      string          `json:"mime_type"`
}

func (s *Server) handleFilterColor(args json.RawMessage) (interface{}, error) {
	var a filterColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	spec := config.ColorSpec{Lower: a.Lower, Upper: a.Upper}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	frame, err := s.loadFrame(a.imageArgs)
	if err != nil {
		return nil, err
	}

	filtered := imaging.Filter(frame, spec.Boundary())
	encoded, err := render.EncodeBase64PNG(imaging.ToRGB(filtered))
	if err != nil {
		return nil, err
	}

	matched := filtered.CountNonzero()
	result := &FilterResult{
		Width:         frame.Width,
		Height:        frame.Height,
		MatchedPixels: matched,
		ImageBase64:   encoded,
		MimeType:      "image/png",
	}
	if total := frame.Width * frame.Height; total > 0 {
		result.Fraction = float64(matched) / float64(total)
	}
	if r, ok := detection.FindFrameRect(filtered); ok {
		result.BasicRect = &r
	}
	return result, nil
}

// detect loads the frame and runs one detection cycle.
func (s *Server) detect(a imageArgs) (pipeline.ClusterFrame, pipeline.Namer, error) {
	boundaries, namer, err := s.colors(a.Colors)
	if err != nil {
		return pipeline.ClusterFrame{}, nil, err
	}
	frame, err := s.loadFrame(a)
	if err != nil {
		return pipeline.ClusterFrame{}, nil, err
	}
	return pipeline.Detect(frame, boundaries), namer, nil
}

func (s *Server) handleDetectClusters(args json.RawMessage) (interface{}, error) {
	var a imageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	cf, namer, err := s.detect(a)
	if err != nil {
		return nil, err
	}
	return cf.Message(namer), nil
}

func (s *Server) handleBasicRects(args json.RawMessage) (interface{}, error) {
	var a imageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	boundaries, namer, err := s.colors(a.Colors)
	if err != nil {
		return nil, err
	}
	frame, err := s.loadFrame(a)
	if err != nil {
		return nil, err
	}

	br := pipeline.DetectBasic(frame, boundaries)
	return br.Message(namer), nil
}

type keyPointsArgs struct {
	imageArgs
	Normalized bool `json:"normalized"`
}

func (s *Server) handleKeyPoints(args json.RawMessage) (interface{}, error) {
	var a keyPointsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	cf, namer, err := s.detect(a.imageArgs)
	if err != nil {
		return nil, err
	}

	kp := pipeline.KeyPointFrame{
		Frame:      cf.Frame,
		Boundaries: cf.Boundaries,
		Points:     detection.SelectKeyPoints(cf.Clusters),
	}
	if !a.Normalized {
		return kp.Message(namer), nil
	}
	nf := pipeline.NormalizedFrame{
		Frame:      kp.Frame,
		Boundaries: kp.Boundaries,
		Points:     detection.NormalizeAll(kp.Points, kp.Frame),
	}
	return nf.Message(namer), nil
}

type overlayArgs struct {
	imageArgs
	Mode          string `json:"mode"`
	Scale         int    `json:"scale"`
	Labels        bool   `json:"labels"`
	SurfaceWidth  int    `json:"surface_width"`
	SurfaceHeight int    `json:"surface_height"`
}

// OverlayResult contains the annotated frame.
type OverlayResult struct {
	Width       int              `json:"width"`
	Height      int              `json:"height"`
	ImageBase64 string           `json:"image_base64"`
	MimeType    string           `json:"mime_type"`
	Result      pipeline.Message `json:"result"`
}

func (s *Server) handleOverlay(args json.RawMessage) (interface{}, error) {
	var a overlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Mode == "" {
		a.Mode = "keypoints"
	}
	if a.Scale == 0 {
		a.Scale = 1
	}
	if a.Scale < 1 || a.Scale > 8 {
		return nil, fmt.Errorf("scale must be between 1 and 8, got %d", a.Scale)
	}
	switch a.Mode {
	case "clusters", "keypoints":
	case "normalized":
		if a.SurfaceWidth == 0 {
			a.SurfaceWidth = render.DefaultSurfaceWidth
		}
		if a.SurfaceHeight == 0 {
			a.SurfaceHeight = render.DefaultSurfaceHeight
		}
		if a.SurfaceWidth < 1 || a.SurfaceWidth > render.MaxSurfaceSize ||
			a.SurfaceHeight < 1 || a.SurfaceHeight > render.MaxSurfaceSize {
			return nil, fmt.Errorf("surface must be between 1 and %d pixels per side, got %dx%d",
				render.MaxSurfaceSize, a.SurfaceWidth, a.SurfaceHeight)
		}
	default:
		return nil, fmt.Errorf("unknown overlay mode %q (want clusters, keypoints or normalized)", a.Mode)
	}

	cf, namer, err := s.detect(a.imageArgs)
	if err != nil {
		return nil, err
	}

	opts := render.DefaultOptions()
	opts.Scale = a.Scale
	opts.Labels = a.Labels

	var (
		out    *image.NRGBA
		result pipeline.Message
	)
	kp := pipeline.KeyPointFrame{
		Frame:      cf.Frame,
		Boundaries: cf.Boundaries,
		Points:     detection.SelectKeyPoints(cf.Clusters),
	}
	switch a.Mode {
	case "clusters":
		out, err = render.Clusters(cf.Frame, cf.Boundaries, cf.Clusters, opts)
		result = cf.Message(namer)
	case "keypoints":
		out, err = render.KeyPoints(kp.Frame, kp.Boundaries, kp.Points, opts)
		result = kp.Message(namer)
	case "normalized":
		nf := pipeline.NormalizedFrame{
			Frame:      kp.Frame,
			Boundaries: kp.Boundaries,
			Points:     detection.NormalizeAll(kp.Points, kp.Frame),
		}
		out, err = render.Normalized(a.SurfaceWidth, a.SurfaceHeight, nf.Boundaries, nf.Points, opts)
		result = nf.Message(namer)
	}
	if err != nil {
		return nil, err
	}

	encoded, err := render.EncodeBase64PNG(out)
	if err != nil {
		return nil, err
	}
	return &OverlayResult{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
		Result:      result,
	}, nil
}

// === Camera Handlers ===

type cameraKeyPointsArgs struct {
	Frames     int                `json:"frames"`
	Normalized bool               `json:"normalized"`
	Colors     []config.ColorSpec `json:"colors"`
}

// CameraResult holds the messages produced by one camera run.
type CameraResult struct {
	StreamID string             `json:"stream_id"`
	Frames   []pipeline.Message `json:"frames"`
}

// cameraDriver builds the camera pipeline on first use. Building it runs
// the seed capture cycle, so a missing camera fails here.
func (s *Server) cameraDriver() (*pipeline.Driver, error) {
	if s.driver != nil {
		return s.driver, nil
	}
	if s.opener == nil {
		return nil, fmt.Errorf("no camera configured: %w", capture.ErrNoBackend)
	}
	src, err := capture.New(s.cfg.SourceConfig(), s.opener)
	if err != nil {
		return nil, err
	}
	s.driver = pipeline.New(src)
	return s.driver, nil
}

func (s *Server) handleCameraKeyPoints(args json.RawMessage) (interface{}, error) {
	var a cameraKeyPointsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Frames == 0 {
		a.Frames = defaultCameraFrames
	}
	if a.Frames < 0 || a.Frames > maxCameraFrames {
		return nil, fmt.Errorf("frames must be between 1 and %d, got %d", maxCameraFrames, a.Frames)
	}

	boundaries, namer, err := s.colors(a.Colors)
	if err != nil {
		return nil, err
	}
	d, err := s.cameraDriver()
	if err != nil {
		return nil, err
	}

	result := &CameraResult{Frames: make([]pipeline.Message, 0, a.Frames)}
	if a.Normalized {
		stream := d.NormalizedKeyPoints(boundaries)
		result.StreamID = stream.ID()
		for nf := range stream.All() {
			result.Frames = appendMessage(result.Frames, nf.Message(namer))
			if len(result.Frames) == a.Frames {
				break
			}
		}
		err = stream.Err()
	} else {
		stream := d.KeyPoints(boundaries)
		result.StreamID = stream.ID()
		for kp := range stream.All() {
			result.Frames = appendMessage(result.Frames, kp.Message(namer))
			if len(result.Frames) == a.Frames {
				break
			}
		}
		err = stream.Err()
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// appendMessage numbers m by its position and appends it.
func appendMessage(msgs []pipeline.Message, m pipeline.Message) []pipeline.Message {
	m.Seq = len(msgs) + 1
	return append(msgs, m)
}
