package network

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/banshee-data/livox.sim/internal/lidar/codec"
	"github.com/banshee-data/livox.sim/internal/monitoring"
)

// DefaultChunkPoints keeps a packed xyz+intensity chunk under the UDP
// datagram limit.
const DefaultChunkPoints = 2048

// DefaultChunkCells keeps a LaserScan chunk of packed range and intensity
// doubles under the UDP datagram limit.
const DefaultChunkCells = 2048

// MaxDatagramSize is the largest UDP payload over IPv4. Envelopes larger
// than this are dropped before they reach the socket.
const MaxDatagramSize = 65507

// DropCounter records records dropped by the forwarder.
type DropCounter interface {
	AddDropped()
}

// FrameForwarder encodes sensor records into envelopes and sends them to a
// UDP address without blocking the tick loop. It satisfies sensor.Publisher.
type FrameForwarder struct {
	conn        *net.UDPConn
	channel     chan []byte
	stats       DropCounter
	logInterval time.Duration
	address     string
	chunkPoints int
	chunkCells  int

	seq     atomic.Uint64
	dropped atomic.Uint64
	warned  atomic.Bool

	mu     sync.Mutex
	closed bool
}

// NewFrameForwarder dials addr:port. stats may be nil.
func NewFrameForwarder(addr string, port int, stats DropCounter, logInterval time.Duration) (*FrameForwarder, error) {
	forwardAddress := net.JoinHostPort(addr, fmt.Sprint(port))
	udpAddr, err := net.ResolveUDPAddr("udp", forwardAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve forward address: %w", err)
	}

	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to create forward connection: %w", err)
	}
	if logInterval <= 0 {
		logInterval = time.Minute
	}

	return &FrameForwarder{
		conn:        conn,
		channel:     make(chan []byte, 256),
		stats:       stats,
		logInterval: logInterval,
		address:     forwardAddress,
		chunkPoints: DefaultChunkPoints,
		chunkCells:  DefaultChunkCells,
	}, nil
}

// SetChunkPoints overrides the maximum points per PointCloud2 datagram.
func (f *FrameForwarder) SetChunkPoints(n int) { f.chunkPoints = n }

// SetChunkCells overrides the maximum grid cells per LaserScan datagram.
func (f *FrameForwarder) SetChunkCells(n int) { f.chunkCells = n }

// Dropped returns the number of envelopes dropped so far, whether the
// queue was full or the write failed.
func (f *FrameForwarder) Dropped() uint64 { return f.dropped.Load() }

// Address returns the destination host:port.
func (f *FrameForwarder) Address() string { return f.address }

// Start runs the send loop until ctx is cancelled or the forwarder is closed.
func (f *FrameForwarder) Start(ctx context.Context) {
	go func() {
		failed := 0
		var lastError error
		ticker := time.NewTicker(f.logInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case packet, ok := <-f.channel:
				if !ok {
					return
				}
				if _, err := f.conn.Write(packet); err != nil {
					failed++
					lastError = err
					f.drop()
				}
			case <-ticker.C:
				if failed > 0 && lastError != nil {
					monitoring.Warnf("Dropped %d forwarded records due to errors (latest: %v)", failed, lastError)
					failed = 0
					lastError = nil
				}
			}
		}
	}()

	monitoring.Logf("Forwarding frames to %s", f.address)
}

// PublishPointCloud sends pc as one or more self-contained chunks.
func (f *FrameForwarder) PublishPointCloud(topic string, pc *codec.PointCloud2) {
	for _, chunk := range codec.SplitPointCloud2(pc, f.chunkPoints) {
		f.enqueue(codec.KindPointCloud2, topic, codec.MarshalPointCloud2(chunk))
	}
}

// PublishLaserScan sends ls on the frame id of its scan, split into row
// chunks when the grid is too large for one datagram.
func (f *FrameForwarder) PublishLaserScan(ls *codec.LaserScanStamped) {
	for _, chunk := range codec.SplitLaserScan(ls, f.chunkCells) {
		f.enqueue(codec.KindLaserScan, ls.Frame, codec.MarshalLaserScanStamped(chunk))
	}
}

// PublishTransform sends tf under its child frame id.
func (f *FrameForwarder) PublishTransform(tf *codec.TransformStamped) {
	f.enqueue(codec.KindTransform, tf.ChildID, codec.MarshalTransformStamped(tf))
}

func (f *FrameForwarder) enqueue(kind codec.Kind, topic string, payload []byte) {
	env := codec.Envelope{Kind: kind, Topic: topic, Sequence: f.seq.Add(1), Payload: payload}
	packet := env.Marshal()
	if len(packet) > MaxDatagramSize {
		if !f.warned.Swap(true) {
			monitoring.Warnf("Dropping %s record of %d bytes: exceeds %d byte datagram limit", kind, len(packet), MaxDatagramSize)
		}
		f.drop()
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		f.drop()
		return
	}
	select {
	case f.channel <- packet:
	default:
		f.drop()
	}
}

func (f *FrameForwarder) drop() {
	f.dropped.Add(1)
	if f.stats != nil {
		f.stats.AddDropped()
	}
}

// Close stops accepting records and closes the connection.
func (f *FrameForwarder) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	close(f.channel)
	f.mu.Unlock()
	return f.conn.Close()
}
