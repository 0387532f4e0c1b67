// Package detection finds quadrilateral marker candidates in camera frames.
//
// # Pipeline
//
//  1. Binarization: the frame is converted to grayscale and thresholded with
//     Otsu's method (see the imaging package).
//  2. Contours: FindContours labels every connected region of both phases
//     and traces its outer boundary. No hierarchy is kept.
//  3. Approximation: ApproxPolygon reduces each boundary with the
//     Douglas–Peucker algorithm (epsilon 4 px by default).
//  4. Filtering: Extractor.Filter keeps polygons with exactly four vertices,
//     a perimeter strictly inside (100, 700) pixels and a positive signed
//     area.
//
// # Winding
//
// Dark regions are traced clockwise on screen and light regions
// counter-clockwise, so the signed area filter keeps the outlines of dark
// shapes only: the black border of a printed marker. Accepted quads keep
// their clockwise order and are rotated to start at the corner with the
// smallest x+y. Rectification and pose recovery rely on that order.
//
// # Coordinate System
//
// Contour points are pixel centres: origin (0, 0) at the top-left pixel,
// X increasing rightward, Y increasing downward.
package detection
