// Package marker holds the fiducial marker catalog and the grid codec.
//
// A marker is an N×N grid of black and white cells whose outer ring is
// black. SampleGrid reads the grid back from a rectified marker image, and
// Catalog.Match identifies it together with its rotation: every authored
// pattern is expanded into four orientations when the catalog is built, so
// matching is a single map lookup. NewCatalog refuses catalogs in which two
// orientations of any markers coincide, since a lookup could then not tell
// them apart.
//
// Each marker names a sibling. The pipeline renders a marker in its "true"
// state only when the sibling is visible in the same frame.
package marker
