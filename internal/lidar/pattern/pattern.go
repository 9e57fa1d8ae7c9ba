package pattern

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/livox.sim/internal/monitoring"
)

// ErrConfig marks a scan-pattern source that cannot be used to activate the
// sensor: unreadable, empty, or without a single valid sample.
var ErrConfig = errors.New("scan pattern config error")

const degToRad = math.Pi / 180.0

// RotateSample is one entry of the scan-pattern table.
type RotateSample struct {
	Time    float64 // seconds, informational only
	Azimuth float64 // radians
	Zenith  float64 // radians, 0 = horizontal forward
}

// ScanPattern is the ordered, read-only table of samples.
type ScanPattern []RotateSample

// Len returns the number of samples in the table.
func (p ScanPattern) Len() int { return len(p) }

// At returns the sample for a cursor value, wrapping by modulo. The index is
// always in [0, Len()) for a non-empty pattern, including negative k.
func (p ScanPattern) At(k int64) RotateSample {
	n := int64(len(p))
	idx := k % n
	if idx < 0 {
		idx += n
	}
	return p[idx]
}

// Bounds reports the angular extent covered by the table.
type Bounds struct {
	AzimuthMin, AzimuthMax float64
	ZenithMin, ZenithMax   float64
}

// Bounds returns the azimuth and zenith extent of the table in radians.
// An empty pattern yields zero bounds.
func (p ScanPattern) Bounds() Bounds {
	if len(p) == 0 {
		return Bounds{}
	}
	b := Bounds{
		AzimuthMin: p[0].Azimuth, AzimuthMax: p[0].Azimuth,
		ZenithMin: p[0].Zenith, ZenithMax: p[0].Zenith,
	}
	for _, s := range p[1:] {
		b.AzimuthMin = math.Min(b.AzimuthMin, s.Azimuth)
		b.AzimuthMax = math.Max(b.AzimuthMax, s.Azimuth)
		b.ZenithMin = math.Min(b.ZenithMin, s.Zenith)
		b.ZenithMax = math.Max(b.ZenithMax, s.Zenith)
	}
	return b
}

// Load converts raw (time, azimuth_deg, zenith_deg) rows into a ScanPattern.
// Rows that do not have exactly three fields are skipped. The zenith is
// re-based by -π/2 so that zero points horizontally forward.
func Load(rows [][]float64) (ScanPattern, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: scan pattern source has no rows", ErrConfig)
	}

	p := make(ScanPattern, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		if len(row) != 3 {
			dropped++
			continue
		}
		p = append(p, RotateSample{
			Time:    row[0],
			Azimuth: row[1] * degToRad,
			Zenith:  row[2]*degToRad - math.Pi/2,
		})
	}

	if dropped > 0 {
		monitoring.Warnf("scan pattern: skipped %d rows without 3 fields", dropped)
	}
	if len(p) == 0 {
		return nil, fmt.Errorf("%w: none of %d rows is a valid sample", ErrConfig, len(rows))
	}
	return p, nil
}
