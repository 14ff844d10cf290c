// Package server implements the MCP (Model Context Protocol) server for the
// color-blob tracker.
//
// This package provides a JSON-RPC 2.0 server that exposes the tracking
// pipeline as MCP tools, so a client can inspect what the tracker sees in a
// still image or pull a few frames of key points from the camera.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Still images (one detection cycle over a file):
//   - blob_frame_info: Source and working frame dimensions
//   - blob_filter_color: Pixels inside one HSV range, as a PNG
//   - blob_detect_clusters: Every 8-connected cluster per color
//   - blob_basic_rects: One rectangle around all pixels of each color
//   - blob_key_points: Largest cluster per color, raw or normalized
//   - blob_overlay: Results drawn onto the frame, or normalized key
//     points scaled onto a blank surface
//
// Camera:
//   - camera_key_points: Stream key points for N frames
//
// Colors default to the configured ones and results keep their order.
// Rectangles are [xmin, ymin, xmax, ymax] with inclusive corners and
// [0,0,0,0] means the color was not found.
//
// # Camera
//
// The camera pipeline is built on the first camera_key_points call. Each
// call opens a stream, acquires the device, reads the requested frames and
// releases the device before responding.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(cfg, opener)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
