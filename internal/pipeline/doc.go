// Package pipeline turns camera frames into marker render directives.
//
// Detector.Detect runs the whole per-frame chain. Every quad candidate from
// the detection package is rectified to a canonical square, sampled into a
// grid, looked up in the marker catalog and posed against the camera model.
// A failure at any of these stages drops that candidate only. Once every
// candidate has been handled, Resolve makes two passes over the identified
// markers: the first builds the FrameState (the IDs present), the second
// emits one Directive per marker whose State says whether its sibling is in
// that set.
//
// Loop drives a FrameSource and a RenderSink around a Detector, one frame at
// a time.
package pipeline
