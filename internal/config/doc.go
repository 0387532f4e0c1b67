// Package config loads the detector tunables and the camera model from
// JSON files.
//
// Both loaders accept only .json files below 1MB. Config fields are
// pointers: anything missing from the file keeps its default.
package config
