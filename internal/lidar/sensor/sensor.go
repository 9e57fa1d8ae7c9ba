package sensor

import (
	"errors"
	"fmt"
	"time"

	"github.com/banshee-data/livox.sim/internal/lidar/codec"
	"github.com/banshee-data/livox.sim/internal/lidar/collision"
	"github.com/banshee-data/livox.sim/internal/lidar/cycler"
	"github.com/banshee-data/livox.sim/internal/lidar/frames"
	"github.com/banshee-data/livox.sim/internal/lidar/pattern"
	"github.com/banshee-data/livox.sim/internal/lidar/raygeom"
	"github.com/banshee-data/livox.sim/internal/monitoring"
)

// ErrNotInitialized is returned when a frame is requested from a sensor
// whose collision batch was never seeded.
var ErrNotInitialized = errors.New("sensor not initialized")

// FrameStats describes one processed frame.
type FrameStats struct {
	Sequence    uint64
	Stamp       time.Duration
	CursorStart int64
	Fired       int
	Dropped     int
	Summary     frames.Summary
}

// Sensor is one simulated Livox device.
type Sensor struct {
	cfg      Config
	pattern  pattern.ScanPattern
	shape    collision.Shape
	pub      Publisher
	capacity int

	cursor      cycler.Cursor
	seq         uint64
	parentWorld raygeom.Pose
}

// New loads the scan pattern at cfg.PatternPath and seeds shape with the
// fixed ray batch. Any failure leaves nothing activated.
func New(cfg Config, shape collision.Shape, pub Publisher) (*Sensor, error) {
	if shape == nil {
		return nil, fmt.Errorf("%w: no collision shape", ErrNotInitialized)
	}
	cfg.Batch = cfg.Batch.Normalized()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	monitoring.Logf("load csv file name: %s", cfg.PatternPath)
	p, err := pattern.LoadFile(cfg.PatternPath)
	if err != nil {
		return nil, fmt.Errorf("cannot get csv file: %w", err)
	}
	return NewWithPattern(cfg, p, shape, pub)
}

// NewWithPattern is New with an already loaded pattern.
func NewWithPattern(cfg Config, p pattern.ScanPattern, shape collision.Shape, pub Publisher) (*Sensor, error) {
	if shape == nil {
		return nil, fmt.Errorf("%w: no collision shape", ErrNotInitialized)
	}
	cfg.Batch = cfg.Batch.Normalized()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if p.Len() == 0 {
		return nil, fmt.Errorf("%w: scan pattern has no samples", pattern.ErrConfig)
	}
	if pub == nil {
		pub = Publishers(nil)
	}

	monitoring.Logf("ros topic name: %s", cfg.Topic)
	monitoring.Logf("scan info size: %d", p.Len())
	monitoring.Logf("sample: %d", cfg.Batch.SamplesPerFrame)
	monitoring.Logf("downsample: %d", cfg.Batch.DownSample)

	s := &Sensor{
		cfg:         cfg,
		pattern:     p,
		shape:       shape,
		pub:         pub,
		capacity:    cycler.Capacity(cfg.Batch),
		parentWorld: cfg.ParentPose,
	}

	s.pub.PublishTransform(s.sensorTransform(0))

	shape.Reserve(s.capacity)
	for _, sample := range cycler.SeedSamples(p, cfg.Batch) {
		start, end := raygeom.Endpoints(sample, cfg.SensorPose, cfg.Bounds.Min, cfg.Bounds.Max)
		shape.AddRay(start, end)
	}
	return s, nil
}

// Config returns the sensor's resolved configuration.
func (s *Sensor) Config() Config { return s.cfg }

// Pattern returns the loaded scan pattern.
func (s *Sensor) Pattern() pattern.ScanPattern { return s.pattern }

// Capacity returns the fixed ray-slot count seeded into the shape.
func (s *Sensor) Capacity() int { return s.capacity }

// Cursor returns the current rolling cursor.
func (s *Sensor) Cursor() cycler.Cursor { return s.cursor }

// SetParentWorldPose updates the parent link's world pose, for hosts that
// move the sensor between ticks. The collision shape is posed by the host.
func (s *Sensor) SetParentWorldPose(p raygeom.Pose) { s.parentWorld = p }

// OnNewScan runs one frame at simulation time stamp and publishes its
// records.
func (s *Sensor) OnNewScan(stamp time.Duration) (*frames.Frame, FrameStats, error) {
	if s == nil || s.shape == nil || s.shape.Len() == 0 {
		return nil, FrameStats{}, ErrNotInitialized
	}

	st := FrameStats{Sequence: s.seq, Stamp: stamp, CursorStart: s.cursor.NextStart}
	records, bst := cycler.NextBatch(&s.cursor, s.pattern, s.cfg.Batch, s.shape.Len())
	st.Fired = len(records)
	st.Dropped = bst.Dropped

	for _, rec := range records {
		start, end := raygeom.Endpoints(rec.Sample, s.cfg.SensorPose, s.cfg.Bounds.Min, s.cfg.Bounds.Max)
		s.shape.SetPoints(rec.RayIndex, start, end)
	}
	s.shape.Update()

	frame, err := frames.BuildFrame(records, s.shape, s.cfg.Bounds, s.cfg.Grid)
	if err != nil {
		return nil, st, err
	}
	st.Summary = frames.Summarize(frame)
	s.seq++

	s.pub.PublishTransform(s.parentTransform(stamp))
	s.pub.PublishTransform(s.sensorTransform(stamp))
	s.pub.PublishLaserScan(&codec.LaserScanStamped{
		Stamp:     stamp,
		Frame:     s.cfg.ParentFrame,
		WorldPose: raygeom.Compose(s.parentWorld, s.cfg.SensorPose),
		Scan:      frame.Scan,
	})
	pc := codec.NewPointCloud(codec.Header{Stamp: stamp, FrameID: s.cfg.FrameName}, frame)
	s.pub.PublishPointCloud(s.cfg.Topic, pc.ToPointCloud2())

	return frame, st, nil
}

func (s *Sensor) sensorTransform(stamp time.Duration) *codec.TransformStamped {
	return &codec.TransformStamped{
		Header:  codec.Header{Stamp: stamp, FrameID: s.cfg.ParentFrame},
		ChildID: s.cfg.FrameName,
		Pose:    s.cfg.SensorPose,
	}
}

func (s *Sensor) parentTransform(stamp time.Duration) *codec.TransformStamped {
	return &codec.TransformStamped{
		Header:  codec.Header{Stamp: stamp, FrameID: s.cfg.WorldName},
		ChildID: s.cfg.ParentFrame,
		Pose:    s.parentWorld,
	}
}
