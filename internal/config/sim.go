package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical simulator defaults file.
const DefaultConfigPath = "config/livox.defaults.json"

// PoseConfig is a translation in meters and roll/pitch/yaw in radians.
type PoseConfig struct {
	XYZ [3]float64 `json:"xyz"`
	RPY [3]float64 `json:"rpy"`
}

// WorldPrimitive describes one piece of geometry in the built-in world.
// Type selects which fields apply: "plane" uses Point and Normal, "sphere"
// uses Center and Radius, "box" uses Min and Max.
type WorldPrimitive struct {
	Type   string     `json:"type"`
	Point  [3]float64 `json:"point,omitempty"`
	Normal [3]float64 `json:"normal,omitempty"`
	Center [3]float64 `json:"center,omitempty"`
	Radius float64    `json:"radius,omitempty"`
	Min    [3]float64 `json:"min,omitempty"`
	Max    [3]float64 `json:"max,omitempty"`
	Retro  float64    `json:"retro,omitempty"`
}

// SimConfig is the sensor description loaded at startup. Fields left out of
// the JSON fall back to the defaults returned by the Get* accessors, so
// partial configs are safe.
type SimConfig struct {
	// Scan pattern
	CSVFileName  *string           `json:"csv_file_name,omitempty"`
	PackageRoots map[string]string `json:"package_roots,omitempty"`
	Samples      *int              `json:"samples,omitempty"`
	DownSample   *int              `json:"downsample,omitempty"`

	// Ray range
	RangeMin        *float64 `json:"range_min,omitempty"`
	RangeMax        *float64 `json:"range_max,omitempty"`
	RangeResolution *float64 `json:"range_resolution,omitempty"`

	// Legacy scan grid
	HorizontalSamples    *int     `json:"horizontal_samples,omitempty"`
	HorizontalResolution *float64 `json:"horizontal_resolution,omitempty"`
	HorizontalMinAngle   *float64 `json:"horizontal_min_angle,omitempty"`
	HorizontalMaxAngle   *float64 `json:"horizontal_max_angle,omitempty"`
	VerticalSamples      *int     `json:"vertical_samples,omitempty"`
	VerticalResolution   *float64 `json:"vertical_resolution,omitempty"`
	VerticalMinAngle     *float64 `json:"vertical_min_angle,omitempty"`
	VerticalMaxAngle     *float64 `json:"vertical_max_angle,omitempty"`

	// Output identifiers, passed through untouched
	Topic       *string `json:"ros_topic,omitempty"`
	FrameName   *string `json:"frame_name,omitempty"`
	ParentFrame *string `json:"parent_frame,omitempty"`
	WorldName   *string `json:"world_name,omitempty"`

	// Placement
	SensorPose *PoseConfig `json:"sensor_pose,omitempty"`
	ParentPose *PoseConfig `json:"parent_pose,omitempty"`

	UpdateRateHz *float64         `json:"update_rate_hz,omitempty"`
	World        []WorldPrimitive `json:"world,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptySimConfig returns a SimConfig with all fields unset.
func EmptySimConfig() *SimConfig {
	return &SimConfig{}
}

// DefaultSimConfig returns a config with every field populated with the
// Livox Avia defaults.
func DefaultSimConfig() *SimConfig {
	return &SimConfig{
		CSVFileName:          ptrString("package://livox_laser_simulation/scan_mode/rosette.csv"),
		Samples:              ptrInt(24000),
		DownSample:           ptrInt(1),
		RangeMin:             ptrFloat64(0.1),
		RangeMax:             ptrFloat64(200),
		RangeResolution:      ptrFloat64(0.002),
		HorizontalSamples:    ptrInt(100),
		HorizontalResolution: ptrFloat64(1),
		HorizontalMinAngle:   ptrFloat64(-35.2 * math.Pi / 180),
		HorizontalMaxAngle:   ptrFloat64(35.2 * math.Pi / 180),
		VerticalSamples:      ptrInt(50),
		VerticalResolution:   ptrFloat64(1),
		VerticalMinAngle:     ptrFloat64(-38.6 * math.Pi / 180),
		VerticalMaxAngle:     ptrFloat64(38.6 * math.Pi / 180),
		Topic:                ptrString("/scan"),
		FrameName:            ptrString("livox"),
		ParentFrame:          ptrString("base_link"),
		WorldName:            ptrString("default"),
		SensorPose:           &PoseConfig{},
		ParentPose:           &PoseConfig{},
		UpdateRateHz:         ptrFloat64(10),
	}
}

// LoadSimConfig loads a SimConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadSimConfig(path string) (*SimConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptySimConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configured values can drive a sensor.
func (c *SimConfig) Validate() error {
	if c.Samples != nil && *c.Samples < 1 {
		return fmt.Errorf("samples must be at least 1, got %d", *c.Samples)
	}

	if c.GetRangeMin() <= 0 {
		return fmt.Errorf("range_min must be positive, got %f", c.GetRangeMin())
	}
	if c.GetRangeMax() <= c.GetRangeMin() {
		return fmt.Errorf("range_max (%f) must exceed range_min (%f)", c.GetRangeMax(), c.GetRangeMin())
	}

	if c.HorizontalSamples != nil && *c.HorizontalSamples < 0 {
		return fmt.Errorf("horizontal_samples must be non-negative, got %d", *c.HorizontalSamples)
	}
	if c.VerticalSamples != nil && *c.VerticalSamples < 0 {
		return fmt.Errorf("vertical_samples must be non-negative, got %d", *c.VerticalSamples)
	}
	if c.HorizontalResolution != nil && *c.HorizontalResolution < 0 {
		return fmt.Errorf("horizontal_resolution must be non-negative, got %f", *c.HorizontalResolution)
	}
	if c.VerticalResolution != nil && *c.VerticalResolution < 0 {
		return fmt.Errorf("vertical_resolution must be non-negative, got %f", *c.VerticalResolution)
	}

	if c.UpdateRateHz != nil && *c.UpdateRateHz <= 0 {
		return fmt.Errorf("update_rate_hz must be positive, got %f", *c.UpdateRateHz)
	}

	for i, p := range c.World {
		switch p.Type {
		case "plane":
			if p.Normal == [3]float64{} {
				return fmt.Errorf("world[%d]: plane normal must be non-zero", i)
			}
		case "sphere":
			if p.Radius <= 0 {
				return fmt.Errorf("world[%d]: sphere radius must be positive, got %f", i, p.Radius)
			}
		case "box":
			for a := 0; a < 3; a++ {
				if p.Min[a] > p.Max[a] {
					return fmt.Errorf("world[%d]: box min exceeds max on axis %d", i, a)
				}
			}
		default:
			return fmt.Errorf("world[%d]: unknown primitive type %q", i, p.Type)
		}
	}

	return nil
}
