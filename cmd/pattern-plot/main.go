// Command pattern-plot renders a scan pattern table and the rays the
// simulator would fire in its first frames.
package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/banshee-data/livox.sim/internal/lidar/cycler"
	"github.com/banshee-data/livox.sim/internal/lidar/monitor"
	"github.com/banshee-data/livox.sim/internal/lidar/pattern"
)

var (
	csvFile    = flag.String("csv", "share/livox_laser_simulation/scan_mode/rosette.csv", "Scan pattern CSV (time, azimuth deg, zenith deg)")
	outDir     = flag.String("out", "plots", "Output directory for PNG files")
	downSample = flag.Int("downsample", 1, "Fire every Nth sample")
	samples    = flag.Int("samples", 2000, "Samples consumed per frame")
	numFrames  = flag.Int("frames", 8, "Frames drawn in the coverage plot")
	maxPoints  = flag.Int("max-points", 20000, "Cap on samples drawn in the pattern plot (0 draws all)")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if *samples < 1 {
		return fmt.Errorf("-samples must be at least 1, got %d", *samples)
	}
	p, err := pattern.LoadFile(*csvFile)
	if err != nil {
		return err
	}
	b := p.Bounds()
	log.Printf("loaded %d samples from %s (azimuth %.3f..%.3f rad, zenith %.3f..%.3f rad)",
		p.Len(), *csvFile, b.AzimuthMin, b.AzimuthMax, b.ZenithMin, b.ZenithMax)

	pp, err := monitor.NewPatternPlotter(*outDir)
	if err != nil {
		return err
	}
	pp.MaxPoints = *maxPoints
	pp.Name = strings.TrimSuffix(filepath.Base(*csvFile), filepath.Ext(*csvFile))

	out, err := pp.PlotPattern(p)
	if err != nil {
		return err
	}
	log.Printf("wrote %s", out)

	cfg := cycler.Config{SamplesPerFrame: *samples, DownSample: *downSample}
	out, err = pp.PlotCoverage(p, cfg, *numFrames)
	if err != nil {
		return err
	}
	log.Printf("wrote %s", out)
	return nil
}
