package config

import "math"

// GetCSVFileName returns the scan table location or the default.
func (c *SimConfig) GetCSVFileName() string {
	if c.CSVFileName == nil {
		return "package://livox_laser_simulation/scan_mode/rosette.csv"
	}
	return *c.CSVFileName
}

// GetSamples returns the samples-per-frame value or the default.
func (c *SimConfig) GetSamples() int {
	if c.Samples == nil {
		return 24000
	}
	return *c.Samples
}

// GetDownSample returns the down-sample stride, coerced to at least 1.
func (c *SimConfig) GetDownSample() int {
	if c.DownSample == nil || *c.DownSample < 1 {
		return 1
	}
	return *c.DownSample
}

// GetRangeMin returns the range_min value or the default.
func (c *SimConfig) GetRangeMin() float64 {
	if c.RangeMin == nil {
		return 0.1
	}
	return *c.RangeMin
}

// GetRangeMax returns the range_max value or the default.
func (c *SimConfig) GetRangeMax() float64 {
	if c.RangeMax == nil {
		return 200
	}
	return *c.RangeMax
}

// GetRangeResolution returns the range_resolution value or the default.
func (c *SimConfig) GetRangeResolution() float64 {
	if c.RangeResolution == nil {
		return 0.002
	}
	return *c.RangeResolution
}

// GetHorizontalSamples returns the horizontal_samples value or the default.
func (c *SimConfig) GetHorizontalSamples() int {
	if c.HorizontalSamples == nil {
		return 100
	}
	return *c.HorizontalSamples
}

// GetHorizontalResolution returns the horizontal_resolution value or the default.
func (c *SimConfig) GetHorizontalResolution() float64 {
	if c.HorizontalResolution == nil {
		return 1
	}
	return *c.HorizontalResolution
}

// GetHorizontalMinAngle returns the horizontal_min_angle value or the default.
func (c *SimConfig) GetHorizontalMinAngle() float64 {
	if c.HorizontalMinAngle == nil {
		return -35.2 * math.Pi / 180
	}
	return *c.HorizontalMinAngle
}

// GetHorizontalMaxAngle returns the horizontal_max_angle value or the default.
func (c *SimConfig) GetHorizontalMaxAngle() float64 {
	if c.HorizontalMaxAngle == nil {
		return 35.2 * math.Pi / 180
	}
	return *c.HorizontalMaxAngle
}

// GetVerticalSamples returns the vertical_samples value or the default.
func (c *SimConfig) GetVerticalSamples() int {
	if c.VerticalSamples == nil {
		return 50
	}
	return *c.VerticalSamples
}

// GetVerticalResolution returns the vertical_resolution value or the default.
func (c *SimConfig) GetVerticalResolution() float64 {
	if c.VerticalResolution == nil {
		return 1
	}
	return *c.VerticalResolution
}

// GetVerticalMinAngle returns the vertical_min_angle value or the default.
func (c *SimConfig) GetVerticalMinAngle() float64 {
	if c.VerticalMinAngle == nil {
		return -38.6 * math.Pi / 180
	}
	return *c.VerticalMinAngle
}

// GetVerticalMaxAngle returns the vertical_max_angle value or the default.
func (c *SimConfig) GetVerticalMaxAngle() float64 {
	if c.VerticalMaxAngle == nil {
		return 38.6 * math.Pi / 180
	}
	return *c.VerticalMaxAngle
}

// GetTopic returns the output topic or the default.
func (c *SimConfig) GetTopic() string {
	if c.Topic == nil {
		return "/scan"
	}
	return *c.Topic
}

// GetFrameName returns the sensor frame identifier or the default.
func (c *SimConfig) GetFrameName() string {
	if c.FrameName == nil {
		return "livox"
	}
	return *c.FrameName
}

// GetParentFrame returns the parent frame identifier or the default.
func (c *SimConfig) GetParentFrame() string {
	if c.ParentFrame == nil {
		return "base_link"
	}
	return *c.ParentFrame
}

// GetWorldName returns the world frame identifier or the default.
func (c *SimConfig) GetWorldName() string {
	if c.WorldName == nil {
		return "default"
	}
	return *c.WorldName
}

// GetSensorPose returns the sensor pose relative to its parent.
func (c *SimConfig) GetSensorPose() PoseConfig {
	if c.SensorPose == nil {
		return PoseConfig{}
	}
	return *c.SensorPose
}

// GetParentPose returns the parent's pose in the world.
func (c *SimConfig) GetParentPose() PoseConfig {
	if c.ParentPose == nil {
		return PoseConfig{}
	}
	return *c.ParentPose
}

// GetUpdateRateHz returns the tick rate or the default.
func (c *SimConfig) GetUpdateRateHz() float64 {
	if c.UpdateRateHz == nil {
		return 10
	}
	return *c.UpdateRateHz
}
