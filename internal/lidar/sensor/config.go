package sensor

import (
	"fmt"

	"github.com/banshee-data/livox.sim/internal/config"
	"github.com/banshee-data/livox.sim/internal/lidar/cycler"
	"github.com/banshee-data/livox.sim/internal/lidar/frames"
	"github.com/banshee-data/livox.sim/internal/lidar/pattern"
	"github.com/banshee-data/livox.sim/internal/lidar/raygeom"
)

// Config is the resolved, load-time sensor description.
type Config struct {
	PatternPath string
	Batch       cycler.Config
	Bounds      frames.RangeBounds
	Grid        frames.GridSpec

	Topic       string
	FrameName   string
	ParentFrame string
	WorldName   string

	// SensorPose places the sensor, and the collision rays, relative to the
	// parent link.
	SensorPose raygeom.Pose
	// ParentPose is the parent link's initial pose in the world.
	ParentPose raygeom.Pose
}

// PoseFromConfig converts a config pose.
func PoseFromConfig(p config.PoseConfig) raygeom.Pose {
	return raygeom.NewPose(p.XYZ[0], p.XYZ[1], p.XYZ[2], p.RPY[0], p.RPY[1], p.RPY[2])
}

// ConfigFromSim resolves a SimConfig into a sensor Config, including the
// package:// lookup of the scan table.
func ConfigFromSim(c *config.SimConfig) (Config, error) {
	path, err := pattern.ResolvePath(c.GetCSVFileName(), c.PackageRoots)
	if err != nil {
		return Config{}, fmt.Errorf("resolve scan pattern: %w", err)
	}
	return Config{
		PatternPath: path,
		Batch: cycler.Config{
			SamplesPerFrame: c.GetSamples(),
			DownSample:      c.GetDownSample(),
		},
		Bounds: frames.RangeBounds{Min: c.GetRangeMin(), Max: c.GetRangeMax()},
		Grid: frames.GridSpec{
			Horizontal: frames.AxisSpec{
				Samples:    c.GetHorizontalSamples(),
				Resolution: c.GetHorizontalResolution(),
				MinAngle:   c.GetHorizontalMinAngle(),
				MaxAngle:   c.GetHorizontalMaxAngle(),
			},
			Vertical: frames.AxisSpec{
				Samples:    c.GetVerticalSamples(),
				Resolution: c.GetVerticalResolution(),
				MinAngle:   c.GetVerticalMinAngle(),
				MaxAngle:   c.GetVerticalMaxAngle(),
			},
			RangeResolution: c.GetRangeResolution(),
		},
		Topic:       c.GetTopic(),
		FrameName:   c.GetFrameName(),
		ParentFrame: c.GetParentFrame(),
		WorldName:   c.GetWorldName(),
		SensorPose:  PoseFromConfig(c.GetSensorPose()),
		ParentPose:  PoseFromConfig(c.GetParentPose()),
	}, nil
}

func (c Config) validate() error {
	if c.Batch.SamplesPerFrame < 1 {
		return fmt.Errorf("%w: samples must be at least 1, got %d", pattern.ErrConfig, c.Batch.SamplesPerFrame)
	}
	if c.Bounds.Min <= 0 || c.Bounds.Max <= c.Bounds.Min {
		return fmt.Errorf("%w: invalid range bounds (%g, %g)", pattern.ErrConfig, c.Bounds.Min, c.Bounds.Max)
	}
	return nil
}
