// Package overlay draws the AR wireframes for detected markers.
//
// Each shape is a list of edges in marker coordinates, projected through
// the marker's 3x4 projection and stroked with an antialiased rasterizer:
// a pyramid for triangles, a cube for cubes and a pentagonal prism for
// pentagons. The label, the marker ID followed by its state, sits at the
// projection of the marker centre.
package overlay
