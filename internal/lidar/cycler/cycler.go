// Package cycler maps the rolling frame cursor onto the scan-pattern table
// and selects which rays fire each tick.
package cycler

import (
	"github.com/banshee-data/livox.sim/internal/lidar/pattern"
	"github.com/banshee-data/livox.sim/internal/monitoring"
)

// Config fixes the batch shape for the lifetime of a cursor.
type Config struct {
	SamplesPerFrame int // un-downsampled span consumed per frame
	DownSample      int // stride through the span; values < 1 mean 1
}

// Normalized returns cfg with DownSample coerced up to 1.
func (c Config) Normalized() Config {
	if c.DownSample < 1 {
		c.DownSample = 1
	}
	return c
}

// Capacity returns the fixed ray-slot count of the collision batch,
// ceil(SamplesPerFrame / DownSample).
func Capacity(cfg Config) int {
	cfg = cfg.Normalized()
	if cfg.SamplesPerFrame <= 0 {
		return 0
	}
	return (cfg.SamplesPerFrame + cfg.DownSample - 1) / cfg.DownSample
}

// Cursor is the rolling position in the un-downsampled index space. It only
// ever moves forward, by SamplesPerFrame per frame.
type Cursor struct {
	NextStart int64
}

// Record pairs a ray slot with the table entry that drives its direction.
type Record struct {
	RayIndex int
	Sample   pattern.RotateSample
}

// Stats counts what happened to the indices of one batch.
type Stats struct {
	Requested int
	Dropped   int
}

// NextBatch selects the records for the next frame and advances cur.
// Slots at or beyond capacity are dropped for this frame only.
func NextBatch(cur *Cursor, p pattern.ScanPattern, cfg Config, capacity int) ([]Record, Stats) {
	cfg = cfg.Normalized()
	start := cur.NextStart
	end := start + int64(cfg.SamplesPerFrame)
	step := int64(cfg.DownSample)

	var st Stats
	records := make([]Record, 0, max(0, min(capacity, Capacity(cfg))))
	for k := start; k < end; k += step {
		st.Requested++
		slot := int((k - start) / step)
		if slot >= capacity {
			st.Dropped++
			continue
		}
		records = append(records, Record{RayIndex: slot, Sample: p.At(k)})
	}
	cur.NextStart = end

	if st.Dropped > 0 {
		monitoring.Warnf("ray batch: dropped %d of %d rays beyond capacity %d", st.Dropped, st.Requested, capacity)
	}
	return records, st
}

// SeedSamples returns the samples used to seed the collision batch at
// initialisation: table index j mod N for j in [0, SamplesPerFrame) step
// DownSample.
func SeedSamples(p pattern.ScanPattern, cfg Config) []pattern.RotateSample {
	cfg = cfg.Normalized()
	out := make([]pattern.RotateSample, 0, Capacity(cfg))
	for j := 0; j < cfg.SamplesPerFrame; j += cfg.DownSample {
		out = append(out, p.At(int64(j)))
	}
	return out
}
