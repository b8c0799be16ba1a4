// Package server provides a mock route-optimization solver for local
// debugging and integration tests.
//
// The server replays a recorded NDJSON event stream, or synthesizes one
// from the submitted request, on the streaming endpoint. The body is
// written in fixed-size chunks with an optional delay between them so
// clients see lines split across reads.
//
// # Endpoints
//
//   - GET /health - health report
//   - GET /sample-data - demo orders and shoppers
//   - POST /optimize-stream - chunked NDJSON progress stream
//   - POST /optimize-analytics - the final result as one JSON document
//
// All routes are mounted under Config.Prefix (default "/api").
package server
