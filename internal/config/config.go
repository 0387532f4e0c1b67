package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ironsheep/marker-ar/internal/detection"
	"github.com/ironsheep/marker-ar/internal/geometry"
	"github.com/ironsheep/marker-ar/internal/pipeline"
)

// maxFileSize caps config and camera files.
const maxFileSize = 1 * 1024 * 1024 // 1MB

// Config holds the detector tunables and the camera model location.
// Fields omitted from a JSON file stay nil and fall back to the defaults
// through the Get* methods, so partial files are safe.
type Config struct {
	Epsilon              *float64 `json:"epsilon,omitempty"`
	MinPerimeter         *float64 `json:"min_perimeter,omitempty"`
	MaxPerimeter         *float64 `json:"max_perimeter,omitempty"`
	CanonicalSize        *int     `json:"canonical_size,omitempty"`
	MaxReprojectionError *float64 `json:"max_reprojection_error,omitempty"`

	// MaxConsecutiveFailures ends the frame loop after that many
	// acquisition failures in a row. Unset or zero never gives up.
	MaxConsecutiveFailures *int `json:"max_consecutive_failures,omitempty"`

	// CameraPath points at a camera model JSON file. Relative paths are
	// resolved against the config file's directory.
	CameraPath *string `json:"camera_path,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }

// Defaults returns a Config with every tunable set to its standard value.
func Defaults() *Config {
	return &Config{
		Epsilon:                ptrFloat64(detection.DefaultEpsilon),
		MinPerimeter:           ptrFloat64(detection.DefaultMinPerimeter),
		MaxPerimeter:           ptrFloat64(detection.DefaultMaxPerimeter),
		CanonicalSize:          ptrInt(pipeline.DefaultCanonicalSize),
		MaxReprojectionError:   ptrFloat64(geometry.DefaultMaxReprojectionError),
		MaxConsecutiveFailures: ptrInt(0),
	}
}

// readBounded reads a .json file of at most maxFileSize bytes.
func readBounded(path string) ([]byte, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// Load reads a Config from a JSON file and validates it.
func Load(path string) (*Config, error) {
	data, err := readBounded(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.CameraPath != nil && *cfg.CameraPath != "" && !filepath.IsAbs(*cfg.CameraPath) {
		resolved := filepath.Join(filepath.Dir(path), *cfg.CameraPath)
		cfg.CameraPath = &resolved
	}
	return cfg, nil
}

// Validate checks the values that are set.
func (c *Config) Validate() error {
	if c.Epsilon != nil && *c.Epsilon <= 0 {
		return fmt.Errorf("epsilon must be positive, got %g", *c.Epsilon)
	}
	if c.MinPerimeter != nil && *c.MinPerimeter < 0 {
		return fmt.Errorf("min_perimeter must be non-negative, got %g", *c.MinPerimeter)
	}
	if c.MaxPerimeter != nil && *c.MaxPerimeter <= 0 {
		return fmt.Errorf("max_perimeter must be positive, got %g", *c.MaxPerimeter)
	}
	if minP, maxP := c.GetMinPerimeter(), c.GetMaxPerimeter(); minP >= maxP {
		return fmt.Errorf("min_perimeter %g must be below max_perimeter %g", minP, maxP)
	}
	if c.CanonicalSize != nil && *c.CanonicalSize <= 0 {
		return fmt.Errorf("canonical_size must be positive, got %d", *c.CanonicalSize)
	}
	if c.MaxReprojectionError != nil && *c.MaxReprojectionError <= 0 {
		return fmt.Errorf("max_reprojection_error must be positive, got %g", *c.MaxReprojectionError)
	}
	if c.MaxConsecutiveFailures != nil && *c.MaxConsecutiveFailures < 0 {
		return fmt.Errorf("max_consecutive_failures must not be negative, got %d", *c.MaxConsecutiveFailures)
	}
	return nil
}

// GetEpsilon returns the polygon approximation tolerance or the default.
func (c *Config) GetEpsilon() float64 {
	if c.Epsilon == nil {
		return detection.DefaultEpsilon
	}
	return *c.Epsilon
}

// GetMinPerimeter returns the exclusive lower perimeter bound or the default.
func (c *Config) GetMinPerimeter() float64 {
	if c.MinPerimeter == nil {
		return detection.DefaultMinPerimeter
	}
	return *c.MinPerimeter
}

// GetMaxPerimeter returns the exclusive upper perimeter bound or the default.
func (c *Config) GetMaxPerimeter() float64 {
	if c.MaxPerimeter == nil {
		return detection.DefaultMaxPerimeter
	}
	return *c.MaxPerimeter
}

// GetCanonicalSize returns the rectified image side or the default.
func (c *Config) GetCanonicalSize() int {
	if c.CanonicalSize == nil {
		return pipeline.DefaultCanonicalSize
	}
	return *c.CanonicalSize
}

// GetMaxReprojectionError returns the pose acceptance limit or the default.
func (c *Config) GetMaxReprojectionError() float64 {
	if c.MaxReprojectionError == nil {
		return geometry.DefaultMaxReprojectionError
	}
	return *c.MaxReprojectionError
}

// GetMaxConsecutiveFailures returns the frame loop failure cap, zero when
// the loop should never give up on its source.
func (c *Config) GetMaxConsecutiveFailures() int {
	if c.MaxConsecutiveFailures == nil {
		return 0
	}
	return *c.MaxConsecutiveFailures
}

// GetCameraPath returns the camera model path, empty when unset.
func (c *Config) GetCameraPath() string {
	if c.CameraPath == nil {
		return ""
	}
	return *c.CameraPath
}

// DetectorOptions converts the config into pipeline options.
func (c *Config) DetectorOptions() pipeline.Options {
	return pipeline.Options{
		Epsilon:              c.GetEpsilon(),
		MinPerimeter:         c.GetMinPerimeter(),
		MaxPerimeter:         c.GetMaxPerimeter(),
		CanonicalSize:        c.GetCanonicalSize(),
		MaxReprojectionError: c.GetMaxReprojectionError(),
	}
}
