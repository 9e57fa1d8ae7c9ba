package monitor

import (
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/livox.sim/internal/lidar/frames"
	"github.com/banshee-data/livox.sim/internal/lidar/sensor"
)

// FrameSnapshot is an immutable copy of the last published frame.
type FrameSnapshot struct {
	Stats       sensor.FrameStats
	Points      []r3.Vec
	Intensities []float64
}

// SnapshotStore holds the latest frame for readers on other goroutines.
type SnapshotStore struct {
	mu     sync.RWMutex
	frames uint64
	last   *FrameSnapshot
}

// Update copies f so the caller may reuse its buffers.
func (s *SnapshotStore) Update(f *frames.Frame, st sensor.FrameStats) {
	snap := &FrameSnapshot{Stats: st}
	if f != nil {
		snap.Points = append([]r3.Vec(nil), f.Points...)
		snap.Intensities = append([]float64(nil), f.Intensities...)
	}
	s.mu.Lock()
	s.frames++
	s.last = snap
	s.mu.Unlock()
}

// Latest returns the last snapshot and the number of frames seen. The
// snapshot is nil before the first Update.
func (s *SnapshotStore) Latest() (*FrameSnapshot, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.frames
}
