package codec

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/livox.sim/internal/lidar/frames"
	"github.com/banshee-data/livox.sim/internal/lidar/raygeom"
)

func testFrame() *frames.Frame {
	grid := frames.GridSpec{
		Horizontal: frames.AxisSpec{Samples: 3, Resolution: 1, MinAngle: -0.5, MaxAngle: 0.5},
		Vertical:   frames.AxisSpec{Samples: 2, Resolution: 1, MinAngle: -0.1, MaxAngle: 0.1},

		RangeResolution: 0.002,
	}
	return &frames.Frame{
		Points:      []r3.Vec{{X: 1, Y: 2, Z: 3}, {}, {X: -4, Y: 0.5, Z: 0}},
		Ranges:      []float64{3.74, 0, 4.03},
		Intensities: []float64{100, 0, 25},
		Scan:        frames.NewLaserScan(grid, frames.RangeBounds{Min: 0.1, Max: 200}),
	}
}

func TestNewPointCloud_KeepsSentinelsInOrder(t *testing.T) {
	pc := NewPointCloud(Header{Stamp: time.Second, FrameID: "livox"}, testFrame())
	require.Len(t, pc.Points, 3)
	assert.Equal(t, Point32{X: 1, Y: 2, Z: 3}, pc.Points[0])
	assert.Equal(t, Point32{}, pc.Points[1])
	require.Len(t, pc.Channels, 1)
	assert.Equal(t, "intensity", pc.Channels[0].Name)
	assert.Equal(t, []float32{100, 0, 25}, pc.Channels[0].Values)
}

func TestPointCloud2_Layout(t *testing.T) {
	pc2 := NewPointCloud(Header{FrameID: "livox"}, testFrame()).ToPointCloud2()

	assert.Equal(t, uint32(1), pc2.Height)
	assert.Equal(t, uint32(3), pc2.Width)
	assert.Equal(t, uint32(16), pc2.PointStep)
	assert.Equal(t, uint32(48), pc2.RowStep)
	assert.Len(t, pc2.Data, 48)
	assert.Equal(t, []string{"x", "y", "z", "intensity"},
		[]string{pc2.Fields[0].Name, pc2.Fields[1].Name, pc2.Fields[2].Name, pc2.Fields[3].Name})

	x, err := pc2.Float32Field(2, "x")
	require.NoError(t, err)
	assert.Equal(t, float32(-4), x)
	in, err := pc2.Float32Field(0, "intensity")
	require.NoError(t, err)
	assert.Equal(t, float32(100), in)

	_, err = pc2.Float32Field(0, "rgb")
	assert.Error(t, err)
	_, err = pc2.Float32Field(3, "x")
	assert.Error(t, err)
}

func TestPointCloud2_WireRoundTrip(t *testing.T) {
	pc2 := NewPointCloud(Header{Stamp: 1500 * time.Millisecond, FrameID: "livox"}, testFrame()).ToPointCloud2()
	got, err := UnmarshalPointCloud2(MarshalPointCloud2(pc2))
	require.NoError(t, err)
	if diff := cmp.Diff(pc2, got); diff != "" {
		t.Errorf("PointCloud2 mismatch (-want +got):\n%s", diff)
	}
}

func TestLaserScanStamped_WireRoundTrip(t *testing.T) {
	ls := &LaserScanStamped{
		Stamp:     2*time.Second + 250*time.Millisecond,
		Frame:     "base_link",
		WorldPose: raygeom.NewPose(1, 2, 3, 0, 0, math.Pi/4),
		Scan:      testFrame().Scan,
	}
	got, err := UnmarshalLaserScanStamped(MarshalLaserScanStamped(ls))
	require.NoError(t, err)

	assert.Equal(t, ls.Stamp, got.Stamp)
	assert.Equal(t, "base_link", got.Frame)
	assert.Equal(t, ls.WorldPose, got.WorldPose)
	assert.Equal(t, 3, got.Scan.Count)
	assert.Equal(t, 2, got.Scan.VerticalCount)
	assert.Equal(t, 0.5, got.Scan.AngleStep)
	assert.Equal(t, 0.2, got.Scan.VerticalAngleStep)
	assert.Equal(t, 0.002, got.Scan.RangeResolution)
	assert.Equal(t, make([]float64, 6), got.Scan.Ranges)
	assert.Equal(t, make([]float64, 6), got.Scan.Intensities)
}

func TestTransformStamped_WireRoundTrip(t *testing.T) {
	tf := &TransformStamped{
		Header:  Header{Stamp: 42 * time.Millisecond, FrameID: "base_link"},
		ChildID: "livox",
		Pose:    raygeom.NewPose(0, 0, 0.1, 0.1, 0.2, 0.3),
	}
	got, err := UnmarshalTransformStamped(MarshalTransformStamped(tf))
	require.NoError(t, err)
	assert.Equal(t, tf, got)
}

func TestEnvelope(t *testing.T) {
	e := &Envelope{Kind: KindLaserScan, Topic: "/scan", Sequence: 7, Payload: []byte{1, 2, 3}}
	got, err := UnmarshalEnvelope(e.Marshal())
	require.NoError(t, err)
	assert.Equal(t, e, got)
	assert.Equal(t, "laserscan", got.Kind.String())
	assert.Equal(t, "kind(9)", Kind(9).String())

	_, err = UnmarshalEnvelope([]byte{0xff})
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = UnmarshalEnvelope((&Envelope{Topic: "/scan"}).Marshal())
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestSplitPointCloud2(t *testing.T) {
	pc2 := NewPointCloud(Header{FrameID: "livox"}, testFrame()).ToPointCloud2()

	assert.Equal(t, []*PointCloud2{pc2}, SplitPointCloud2(pc2, 0))
	assert.Equal(t, []*PointCloud2{pc2}, SplitPointCloud2(pc2, 3))
	assert.Nil(t, SplitPointCloud2(nil, 2))

	chunks := SplitPointCloud2(pc2, 2)
	require.Len(t, chunks, 2)
	assert.Equal(t, uint32(2), chunks[0].Width)
	assert.Equal(t, uint32(1), chunks[1].Width)
	assert.Equal(t, uint32(16), chunks[1].RowStep)
	x, err := chunks[1].Float32Field(0, "x")
	require.NoError(t, err)
	assert.Equal(t, float32(-4), x)
	assert.Equal(t, pc2.Header, chunks[1].Header)
}

func TestSplitLaserScan(t *testing.T) {
	grid := frames.GridSpec{
		Horizontal: frames.AxisSpec{Samples: 4, Resolution: 1, MinAngle: 0, MaxAngle: 3},
		Vertical:   frames.AxisSpec{Samples: 5, Resolution: 1, MinAngle: -2, MaxAngle: 2},
	}
	ls := &LaserScanStamped{Stamp: time.Second, Frame: "livox", Scan: frames.NewLaserScan(grid, frames.RangeBounds{Min: 0.1, Max: 10})}
	for i := range ls.Scan.Ranges {
		ls.Scan.Ranges[i] = float64(i)
	}

	t.Run("fits", func(t *testing.T) {
		got := SplitLaserScan(ls, 20)
		require.Len(t, got, 1)
		assert.Same(t, ls, got[0])
		assert.Len(t, SplitLaserScan(ls, 0), 1)
		assert.Nil(t, SplitLaserScan(nil, 8))
	})

	t.Run("whole rows", func(t *testing.T) {
		got := SplitLaserScan(ls, 9)
		require.Len(t, got, 3)
		var counts []int
		var ranges []float64
		for _, c := range got {
			assert.Equal(t, "livox", c.Frame)
			assert.Equal(t, time.Second, c.Stamp)
			assert.Equal(t, 4, c.Scan.Count)
			assert.Equal(t, 1.0, c.Scan.VerticalAngleStep)
			counts = append(counts, c.Scan.VerticalCount)
			ranges = append(ranges, c.Scan.Ranges...)
		}
		assert.Equal(t, []int{2, 2, 1}, counts)
		assert.Equal(t, ls.Scan.Ranges, ranges)
		assert.Equal(t, -2.0, got[0].Scan.VerticalAngleMin)
		assert.Equal(t, -1.0, got[0].Scan.VerticalAngleMax)
		assert.Equal(t, 0.0, got[1].Scan.VerticalAngleMin)
		assert.Equal(t, 2.0, got[2].Scan.VerticalAngleMin)
		assert.Equal(t, 2.0, got[2].Scan.VerticalAngleMax)
	})

	t.Run("column runs", func(t *testing.T) {
		got := SplitLaserScan(ls, 3)
		require.Len(t, got, 10)
		assert.Equal(t, 3, got[0].Scan.Count)
		assert.Equal(t, 1, got[1].Scan.Count)
		assert.Equal(t, 3.0, got[1].Scan.AngleMin)
		assert.Equal(t, 3.0, got[1].Scan.AngleMax)
		assert.Equal(t, 1, got[1].Scan.VerticalCount)
		assert.Equal(t, []float64{4, 5, 6}, got[2].Scan.Ranges)
	})
}
