package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/banshee-data/livox.sim/internal/lidar/frames"
	"github.com/banshee-data/livox.sim/internal/lidar/sensor"
	"github.com/banshee-data/livox.sim/internal/lidar/storage/sqlite"
	"github.com/banshee-data/livox.sim/internal/timeutil"
)

type frameRecorder interface {
	RecordFrame(*sqlite.FrameRecord) error
}

type frameSink interface {
	Update(*frames.Frame, sensor.FrameStats)
}

// tickLoop drives one sensor from a clock. Frames run to completion;
// cancellation is only observed between ticks.
type tickLoop struct {
	sensor    *sensor.Sensor
	clock     timeutil.Clock
	period    time.Duration
	maxFrames int
	runID     string
	recorder  frameRecorder
	sinks     []frameSink
}

// run returns the number of frames produced. A frame precondition failure
// stops the loop.
func (l *tickLoop) run(ctx context.Context) (int, error) {
	if l.period <= 0 {
		return 0, fmt.Errorf("invalid tick period %v", l.period)
	}
	ticker := l.clock.NewTicker(l.period)
	defer ticker.Stop()
	start := l.clock.Now()

	n := 0
	for l.maxFrames <= 0 || n < l.maxFrames {
		select {
		case <-ctx.Done():
			return n, nil
		case now := <-ticker.C():
			frame, st, err := l.sensor.OnNewScan(now.Sub(start))
			if err != nil {
				return n, fmt.Errorf("frame %d: %w", st.Sequence, err)
			}
			n++
			if l.recorder != nil {
				if err := l.recorder.RecordFrame(sqlite.NewFrameRecord(l.runID, st)); err != nil {
					log.Printf("failed to record frame %d: %v", st.Sequence, err)
				}
			}
			for _, s := range l.sinks {
				s.Update(frame, st)
			}
		}
	}
	return n, nil
}
