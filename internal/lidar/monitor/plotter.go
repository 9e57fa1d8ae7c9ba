package monitor

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/livox.sim/internal/lidar/cycler"
	"github.com/banshee-data/livox.sim/internal/lidar/pattern"
	"github.com/banshee-data/livox.sim/internal/security"
)

const (
	PatternFile  = "pattern.png"
	CoverageFile = "coverage.png"
)

// PatternPlotter renders scan patterns as azimuth/zenith scatter plots.
type PatternPlotter struct {
	outputDir string
	// MaxPoints caps the samples drawn by PlotPattern; 0 draws all.
	MaxPoints int
	// Name prefixes output files, e.g. "rosette" gives rosette_pattern.png.
	// It is sanitised before use.
	Name string
}

// NewPatternPlotter writes into outputDir, creating it when needed.
func NewPatternPlotter(outputDir string) (*PatternPlotter, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	return &PatternPlotter{outputDir: outputDir}, nil
}

func (pp *PatternPlotter) outputPath(base string) string {
	if pp.Name != "" {
		base = security.SanitizeFilename(pp.Name) + "_" + base
	}
	return filepath.Join(pp.outputDir, base)
}

func toDegrees(s pattern.RotateSample) plotter.XY {
	// Zenith is stored offset by -π/2; undo it so the plot matches the table.
	return plotter.XY{X: s.Azimuth * 180 / math.Pi, Y: (s.Zenith + math.Pi/2) * 180 / math.Pi}
}

func newAnglePlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Azimuth (deg)"
	p.Y.Label.Text = "Zenith (deg)"
	p.Add(plotter.NewGrid())
	return p
}

// PlotPattern draws every sample of p (strided down to MaxPoints) and
// returns the written path.
func (pp *PatternPlotter) PlotPattern(p pattern.ScanPattern) (string, error) {
	if p.Len() == 0 {
		return "", fmt.Errorf("%w: empty pattern", pattern.ErrConfig)
	}
	stride := 1
	if pp.MaxPoints > 0 && p.Len() > pp.MaxPoints {
		stride = (p.Len() + pp.MaxPoints - 1) / pp.MaxPoints
	}
	pts := make(plotter.XYs, 0, p.Len()/stride+1)
	for i := 0; i < p.Len(); i += stride {
		pts = append(pts, toDegrees(p[i]))
	}

	plt := newAnglePlot(fmt.Sprintf("Scan pattern (%d samples, stride %d)", p.Len(), stride))
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return "", err
	}
	sc.GlyphStyle.Radius = vg.Points(0.6)
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	sc.GlyphStyle.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	plt.Add(sc)

	out := pp.outputPath(PatternFile)
	if err := plt.Save(8*vg.Inch, 8*vg.Inch, out); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", out, err)
	}
	return out, nil
}

// PlotCoverage draws the rays fired in each of the first n frames in its
// own colour, showing how the rolling window sweeps the pattern.
func (pp *PatternPlotter) PlotCoverage(p pattern.ScanPattern, cfg cycler.Config, n int) (string, error) {
	if p.Len() == 0 {
		return "", fmt.Errorf("%w: empty pattern", pattern.ErrConfig)
	}
	if n < 1 {
		n = 1
	}
	cfg = cfg.Normalized()
	capacity := cycler.Capacity(cfg)
	colors := generateColors(n)

	plt := newAnglePlot(fmt.Sprintf("Per-frame coverage (%d frames, %d rays)", n, capacity))
	var cur cycler.Cursor
	for i := 0; i < n; i++ {
		recs, _ := cycler.NextBatch(&cur, p, cfg, capacity)
		pts := make(plotter.XYs, len(recs))
		for j, r := range recs {
			pts[j] = toDegrees(r.Sample)
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return "", err
		}
		sc.GlyphStyle.Radius = vg.Points(0.8)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Color = colors[i]
		plt.Add(sc)
		plt.Legend.Add(fmt.Sprintf("frame %d", i), sc)
	}
	plt.Legend.Top = true

	out := pp.outputPath(CoverageFile)
	if err := plt.Save(8*vg.Inch, 8*vg.Inch, out); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", out, err)
	}
	return out, nil
}

// generateColors spreads n hues around the colour wheel.
func generateColors(n int) []color.Color {
	colors := make([]color.Color, n)
	for i := range colors {
		r, g, b := hsvToRGB(float64(i)/float64(n), 0.75, 0.85)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

func hsvToRGB(h, s, v float64) (r, g, b uint8) {
	h6 := h * 6
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h6, 2)-1))
	var rf, gf, bf float64
	switch int(h6) % 6 {
	case 0:
		rf, gf = c, x
	case 1:
		rf, gf = x, c
	case 2:
		gf, bf = c, x
	case 3:
		gf, bf = x, c
	case 4:
		rf, bf = x, c
	default:
		rf, bf = c, x
	}
	m := v - c
	return uint8((rf + m) * 255), uint8((gf + m) * 255), uint8((bf + m) * 255)
}
