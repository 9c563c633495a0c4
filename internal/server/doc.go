// Package server implements the MCP (Model Context Protocol) server for the
// shape counter.
//
// This package provides a JSON-RPC 2.0 server that exposes shape counting
// through the MCP protocol, so MCP-compatible clients can count and inspect
// shapes in images on the local disk.
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
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//   - image_sample_color: Get color at pixel
//   - image_cache_clear: Evict one image or the whole cache
//
// Shape Counting:
//   - shapes_detect: Count and outline triangles, squares, rectangles and
//     circles; per-call overrides for area bounds, tolerance and threshold
//   - shapes_classify: Classify a vertex count and aspect ratio
//   - shapes_crop: PNG crop around one detected shape
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images. Images are cached
// by path and reused across multiple tool calls. Detection always draws on a
// copy, so cached images stay pristine.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// Logging goes through zap and must be configured to write to stderr; stdout
// belongs to the protocol.
//
// # Usage
//
//	srv := server.New(server.WithLogger(logger))
//	if err := srv.Run(); err != nil {
//	    logger.Fatal("mcp server failed", zap.Error(err))
//	}
package server
