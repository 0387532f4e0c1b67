package config

import (
	"encoding/json"
	"fmt"

	"github.com/ironsheep/marker-ar/internal/geometry"
)

// CameraFile is the on-disk form of a calibrated camera.
//
//	{"intrinsics": [[fx,0,cx],[0,fy,cy],[0,0,1]], "distortion": [k1,k2,p1,p2,k3]}
//
// Distortion may also be written as a 1×n or n×1 nested array, the way
// calibration tools commonly dump it.
type CameraFile struct {
	Intrinsics [][]float64     `json:"intrinsics"`
	Distortion json.RawMessage `json:"distortion,omitempty"`
}

// coefficients flattens the distortion field.
func (f *CameraFile) coefficients() ([]float64, error) {
	if len(f.Distortion) == 0 || string(f.Distortion) == "null" {
		return nil, nil
	}

	var flat []float64
	if err := json.Unmarshal(f.Distortion, &flat); err == nil {
		return flat, nil
	}

	var nested [][]float64
	if err := json.Unmarshal(f.Distortion, &nested); err != nil {
		return nil, fmt.Errorf("distortion must be a number array: %w", geometry.ErrInvalidCamera)
	}
	switch {
	case len(nested) == 1:
		return nested[0], nil
	case len(nested) > 1:
		out := make([]float64, 0, len(nested))
		for i, row := range nested {
			if len(row) != 1 {
				return nil, fmt.Errorf("distortion row %d has %d values, want 1: %w", i, len(row), geometry.ErrInvalidCamera)
			}
			out = append(out, row[0])
		}
		return out, nil
	}
	return nil, nil
}

// Model validates the file contents and builds the camera model.
func (f *CameraFile) Model() (*geometry.CameraModel, error) {
	dist, err := f.coefficients()
	if err != nil {
		return nil, err
	}
	return geometry.NewCameraModel(f.Intrinsics, dist)
}

// LoadCamera reads a camera model JSON file. Shape errors wrap
// geometry.ErrInvalidCamera.
func LoadCamera(path string) (*geometry.CameraModel, error) {
	data, err := readBounded(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load camera: %w", err)
	}

	var f CameraFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse camera JSON: %w: %w", geometry.ErrInvalidCamera, err)
	}

	cam, err := f.Model()
	if err != nil {
		return nil, fmt.Errorf("failed to load camera %s: %w", path, err)
	}
	return cam, nil
}

// NominalCamera returns an undistorted 640x480 pinhole camera with an
// 800px focal length. It stands in when no calibration file is configured;
// poses computed with it are only roughly scaled.
func NominalCamera() *geometry.CameraModel {
	cam, err := geometry.NewCameraModel([][]float64{
		{800, 0, 320},
		{0, 800, 240},
		{0, 0, 1},
	}, nil)
	if err != nil {
		panic(err)
	}
	return cam
}
