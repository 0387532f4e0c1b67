// Package imaging provides the raster operations of the marker pipeline.
//
// It covers loading frames (ImageCache, DirectorySource), grayscale
// conversion and Otsu binarization, perspective warping, and the debugging
// views used by the tool server: the sampling grid overlay, per-cell probe
// levels and crops around a candidate. All operations work with standard Go
// image.Image types and use a coordinate system where (0,0) is at the
// top-left corner, X increases rightward, and Y increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - Rectangles follow image.Rectangle: Min inclusive, Max exclusive
//
// Grayscale, Binarize and WarpPerspective return images whose origin is
// (0,0) whatever the bounds of their input, so pixel positions found on a
// binarized frame can be fed straight back into a warp of the same frame.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Individual image operations
// are stateless and can be called concurrently on different images.
// DirectorySource and StaticSource are not safe for concurrent use.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Regions outside image bounds
//   - Invalid cell counts or output sizes
//   - Singular warp transforms
//   - File I/O and encoding errors
//
// # Performance Considerations
//
// WarpPerspective spreads its rows over all CPUs with bild's parallel
// package. For repeated operations on the same image, use ImageCache to
// avoid redundant disk reads; Evict() or Clear() release memory in
// long-running processes.
package imaging
