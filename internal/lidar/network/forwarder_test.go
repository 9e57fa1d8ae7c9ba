package network

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/livox.sim/internal/lidar/codec"
	"github.com/banshee-data/livox.sim/internal/lidar/frames"
	"github.com/banshee-data/livox.sim/internal/lidar/raygeom"
)

type countingStats struct{ n atomic.Int64 }

func (c *countingStats) AddDropped() { c.n.Add(1) }

func listenLoopback(t *testing.T) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *net.UDPConn) *codec.Envelope {
	t.Helper()
	buf := make([]byte, 65535)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, _, err := conn.ReadFromUDP(buf)
	require.NoError(t, err)
	env, err := codec.UnmarshalEnvelope(buf[:n])
	require.NoError(t, err)
	return env
}

func newForwarder(t *testing.T, conn *net.UDPConn, stats DropCounter) *FrameForwarder {
	t.Helper()
	port := conn.LocalAddr().(*net.UDPAddr).Port
	fwd, err := NewFrameForwarder("127.0.0.1", port, stats, 10*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { fwd.Close() })
	return fwd
}

func TestFrameForwarder_SendsTransform(t *testing.T) {
	conn := listenLoopback(t)
	fwd := newForwarder(t, conn, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fwd.Start(ctx)

	tf := &codec.TransformStamped{
		Header:  codec.Header{Stamp: time.Second, FrameID: "world"},
		ChildID: "base_link",
		Pose:    raygeom.NewPose(1, 2, 3, 0, 0, 0),
	}
	fwd.PublishTransform(tf)

	env := readEnvelope(t, conn)
	assert.Equal(t, codec.KindTransform, env.Kind)
	assert.Equal(t, "base_link", env.Topic)
	assert.Equal(t, uint64(1), env.Sequence)

	got, err := codec.UnmarshalTransformStamped(env.Payload)
	require.NoError(t, err)
	assert.Equal(t, "world", got.Header.FrameID)
	assert.InDelta(t, 2.0, got.Pose.Pos.Y, 1e-12)
}

func TestFrameForwarder_ChunksPointClouds(t *testing.T) {
	conn := listenLoopback(t)
	fwd := newForwarder(t, conn, nil)
	fwd.SetChunkPoints(2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fwd.Start(ctx)

	f := &frames.Frame{
		Points:      []r3.Vec{{X: 1}, {X: 2}, {X: 3}},
		Intensities: []float64{1, 2, 3},
	}
	pc2 := codec.NewPointCloud(codec.Header{FrameID: "livox"}, f).ToPointCloud2()
	fwd.PublishPointCloud("scan", pc2)

	var widths []uint32
	for i := 0; i < 2; i++ {
		env := readEnvelope(t, conn)
		require.Equal(t, codec.KindPointCloud2, env.Kind)
		assert.Equal(t, "scan", env.Topic)
		assert.Equal(t, uint64(i+1), env.Sequence)
		chunk, err := codec.UnmarshalPointCloud2(env.Payload)
		require.NoError(t, err)
		widths = append(widths, chunk.Width)
	}
	assert.Equal(t, []uint32{2, 1}, widths)
}

func TestFrameForwarder_DropsWhenQueueFull(t *testing.T) {
	conn := listenLoopback(t)
	stats := &countingStats{}
	fwd := newForwarder(t, conn, stats)

	// Not started: nothing drains the queue.
	tf := &codec.TransformStamped{ChildID: "x", Pose: raygeom.Identity}
	total := cap(fwd.channel) + 5
	for i := 0; i < total; i++ {
		fwd.PublishTransform(tf)
	}
	assert.Equal(t, uint64(5), fwd.Dropped())
	assert.Equal(t, int64(5), stats.n.Load())
}

func TestFrameForwarder_CloseIsIdempotent(t *testing.T) {
	conn := listenLoopback(t)
	fwd := newForwarder(t, conn, nil)
	require.NoError(t, fwd.Close())
	require.NoError(t, fwd.Close())

	fwd.PublishTransform(&codec.TransformStamped{ChildID: "x", Pose: raygeom.Identity})
	assert.Equal(t, uint64(1), fwd.Dropped())
}

func TestNewFrameForwarder_BadAddress(t *testing.T) {
	_, err := NewFrameForwarder("127.0.0.1", -1, nil, time.Second)
	assert.Error(t, err)
}

// defaultGridScan matches the 100x50 grid of the default configuration.
func defaultGridScan() *codec.LaserScanStamped {
	grid := frames.GridSpec{
		Horizontal: frames.AxisSpec{Samples: 100, Resolution: 1, MinAngle: -0.6, MaxAngle: 0.6},
		Vertical:   frames.AxisSpec{Samples: 50, Resolution: 1, MinAngle: -0.3, MaxAngle: 0.3},
	}
	return &codec.LaserScanStamped{
		Frame: "livox",
		Scan:  frames.NewLaserScan(grid, frames.RangeBounds{Min: 0.1, Max: 200}),
	}
}

func TestFrameForwarder_ChunksLargeLaserScans(t *testing.T) {
	conn := listenLoopback(t)
	_ = conn.SetReadBuffer(1 << 20)
	fwd := newForwarder(t, conn, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fwd.Start(ctx)

	ls := defaultGridScan()
	require.Greater(t, len(codec.MarshalLaserScanStamped(ls)), MaxDatagramSize)
	fwd.PublishLaserScan(ls)

	rows := 0
	for i := 0; i < 3; i++ {
		env := readEnvelope(t, conn)
		require.Equal(t, codec.KindLaserScan, env.Kind)
		assert.Equal(t, "livox", env.Topic)
		chunk, err := codec.UnmarshalLaserScanStamped(env.Payload)
		require.NoError(t, err)
		assert.Equal(t, 100, chunk.Scan.Count)
		assert.Len(t, chunk.Scan.Ranges, 100*chunk.Scan.VerticalCount)
		rows += chunk.Scan.VerticalCount
	}
	assert.Equal(t, 50, rows)
	assert.Zero(t, fwd.Dropped())
}

func TestFrameForwarder_DropsOversizedDatagrams(t *testing.T) {
	conn := listenLoopback(t)
	stats := &countingStats{}
	fwd := newForwarder(t, conn, stats)
	fwd.SetChunkCells(0)

	fwd.PublishLaserScan(defaultGridScan())
	assert.Equal(t, uint64(1), fwd.Dropped())
	assert.Equal(t, int64(1), stats.n.Load())
	assert.Zero(t, len(fwd.channel))
}
