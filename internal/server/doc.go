// Package server exposes the marker pipeline to MCP clients.
//
// A client can ask which markers a photo contains and where they sit,
// follow a single candidate quad through rectification and grid sampling
// to see why a print is not recognized, list the catalog and generate new
// printable markers.
//
// Requests arrive as line-delimited JSON-RPC 2.0 on stdin and responses go
// to stdout. Besides tools/list and tools/call the server answers
// initialize and ping, and ignores notifications/initialized.
//
// # Tools
//
//   - image_load: size, format and file size of a frame
//   - marker_detect: markers with pose and projection, render directives
//     with sibling state, rejection counts, optionally the annotated frame
//   - marker_rectify: canonical image, sampled grid, probe levels and
//     source crop of the candidate at a given index
//   - marker_catalog: every entry with its four orientation grids
//   - marker_generate: printable marker PNG, returned or written to disk
//
// Frames are decoded once per path and cached for the life of the process.
//
// A failing tool answers with code -32000 and the Go error text as data;
// malformed tools/call params answer with -32602.
//
//	srv := server.New(detector)
//	if err := srv.Run(); err != nil {
//		log.Fatal(err)
//	}
package server
