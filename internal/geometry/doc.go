// Package geometry provides the projective math behind marker rectification
// and pose recovery.
//
// # Homographies
//
// FindHomography fits a 3x3 projective transform to point correspondences
// with the normalized direct linear transform, solved through the SVD of
// the stacked constraint matrix. Four correspondences give the exact
// transform; more are filtered through a deterministic RANSAC loop.
// Configurations where three of four points are collinear are rejected
// with ErrDegenerate instead of producing an ill-conditioned transform.
//
// # Pose
//
// PoseSolver recovers the rotation and translation of a planar marker
// relative to a calibrated CameraModel (perspective-n-point). Rotations are
// carried as Rodrigues vectors; Rodrigues and RodriguesInverse convert
// between vectors and matrices. NewProjection composes the intrinsics with
// a pose into the 3x4 world-to-screen matrix used for drawing.
//
// # Corner Order
//
// Quads handed to this package list their corners clockwise on screen
// (Y down). WorldCorners returns the marker-plane coordinates in the same
// cyclic order, rotated by the orientation index found during catalog
// matching. Both sides must keep this order or the recovered pose comes
// out mirrored.
package geometry
