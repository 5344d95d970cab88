// Package server implements the MCP (Model Context Protocol) server for the
// piccy image engine.
//
// This package provides a JSON-RPC 2.0 server that exposes image inspection,
// cropping and persistence through the MCP protocol.
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
// Every tool takes its image either as image_base64 (standard base64) or as
// a path. Exactly one must be given.
//
// Basic Image Information:
//   - image_inspect: Dimensions, format, frame count and average frame duration
//
// Region Operations:
//   - image_crop: Crop a rectangle from every frame
//   - image_crop_region: Crop a named region (top-left, center, etc.)
//
// Storage:
//   - image_persist: Write image bytes to a file
//
// Animation Operations:
//   - image_frames: Split an animation into PNG frames
//   - image_reverse: Reverse frame order
//   - image_retime: Give every frame the same delay
//   - image_convert: Re-encode in another format
//
// # Concurrency
//
// Each request runs on a bounded worker pool sized by the workers setting.
// Responses are written as requests complete, so their order may differ from
// the request order; clients match them by id. The engine keeps no state
// between requests: every call decodes its own copy of the input.
//
// # Limits
//
// Inputs larger than max_input_bytes, or whose probed width x height x frames
// exceeds max_pixels, are rejected before decoding with kind TooLarge. A
// request line too long to hold such an input is skipped and answered with
// code -32600, a null id and kind TooLarge; the server keeps reading.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure), or -32602 when the arguments
//     cannot be decoded
//   - message: Human-readable error description
//   - data: {"kind": ..., "detail": ...} where kind is one of
//     UnsupportedFormat, CorruptImage, OutOfBounds, EncodeError, IOError,
//     TooLarge or InvalidRequest
//
// # Usage
//
//	srv := server.New(cfg, logger.New(cfg.Level()), version)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
