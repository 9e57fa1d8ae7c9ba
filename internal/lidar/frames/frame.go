package frames

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/livox.sim/internal/lidar/collision"
	"github.com/banshee-data/livox.sim/internal/lidar/cycler"
	"github.com/banshee-data/livox.sim/internal/lidar/raygeom"
)

// ErrPrecondition is returned when a frame is built against a collision
// batch that cannot serve the records, e.g. one that was never seeded.
var ErrPrecondition = errors.New("frame precondition violated")

// Frame is the output of one tick.
type Frame struct {
	Points      []r3.Vec  // sensor frame, one per record
	Ranges      []float64 // clamped range per point, 0 = no return
	Intensities []float64 // retro-reflectivity per point
	Scan        LaserScan
}

// Returns counts points with a valid (non-sentinel) range.
func (f *Frame) Returns() int {
	n := 0
	for _, r := range f.Ranges {
		if r > 0 {
			n++
		}
	}
	return n
}

// BuildFrame reads back the ray results for records and reconstructs one
// point per record in the sensor frame. Points are emitted in record order.
func BuildFrame(records []cycler.Record, shape collision.Reader, bounds RangeBounds, grid GridSpec) (*Frame, error) {
	if shape == nil {
		return nil, fmt.Errorf("%w: no collision batch", ErrPrecondition)
	}
	live := shape.Len()
	for _, rec := range records {
		if rec.RayIndex < 0 || rec.RayIndex >= live {
			return nil, fmt.Errorf("%w: ray slot %d but collision batch has %d slots", ErrPrecondition, rec.RayIndex, live)
		}
	}

	f := &Frame{
		Points:      make([]r3.Vec, 0, len(records)),
		Ranges:      make([]float64, 0, len(records)),
		Intensities: make([]float64, 0, len(records)),
		Scan:        NewLaserScan(grid, bounds),
	}
	for _, rec := range records {
		rng := bounds.Clamp(shape.Range(rec.RayIndex))
		intensity := shape.Retro(rec.RayIndex)

		f.Points = append(f.Points, r3.Scale(rng, raygeom.Direction(rec.Sample)))
		f.Ranges = append(f.Ranges, rng)
		f.Intensities = append(f.Intensities, intensity)
	}
	return f, nil
}
