// Package codec defines the records the sensor publishes each frame and
// their protobuf wire encoding.
// This file defines the record types.
package codec

import (
	"time"

	"github.com/banshee-data/livox.sim/internal/lidar/frames"
	"github.com/banshee-data/livox.sim/internal/lidar/raygeom"
)

// Header stamps a record with simulation time and the frame it is
// expressed in.
type Header struct {
	Stamp   time.Duration // simulation time since start
	FrameID string
}

// Point32 is a single point of a PointCloud.
type Point32 struct {
	X, Y, Z float32
}

// Channel carries one per-point scalar alongside a PointCloud.
type Channel struct {
	Name   string
	Values []float32
}

// PointCloud is the per-frame point-cloud record. Points with range 0 are
// "no return" and sit at the origin.
type PointCloud struct {
	Header   Header
	Points   []Point32
	Channels []Channel
}

// NewPointCloud converts a frame into a PointCloud with an intensity channel.
func NewPointCloud(h Header, f *frames.Frame) *PointCloud {
	pc := &PointCloud{
		Header: h,
		Points: make([]Point32, len(f.Points)),
	}
	intensity := Channel{Name: "intensity", Values: make([]float32, len(f.Points))}
	for i, p := range f.Points {
		pc.Points[i] = Point32{X: float32(p.X), Y: float32(p.Y), Z: float32(p.Z)}
		if i < len(f.Intensities) {
			intensity.Values[i] = float32(f.Intensities[i])
		}
	}
	pc.Channels = []Channel{intensity}
	return pc
}

// LaserScanStamped is the legacy range-scan record.
type LaserScanStamped struct {
	Stamp     time.Duration
	Frame     string
	WorldPose raygeom.Pose
	Scan      frames.LaserScan
}

// TransformStamped describes Child's pose relative to Parent.
type TransformStamped struct {
	Header  Header // FrameID is the parent frame
	ChildID string
	Pose    raygeom.Pose
}
