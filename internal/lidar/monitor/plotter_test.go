package monitor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/livox.sim/internal/lidar/cycler"
	"github.com/banshee-data/livox.sim/internal/lidar/pattern"
	"github.com/banshee-data/livox.sim/internal/monitoring"
)

func spiral(t *testing.T, n int) pattern.ScanPattern {
	t.Helper()
	rows := make([][]float64, n)
	for i := range rows {
		f := float64(i)
		rows[i] = []float64{f * 1e-5, 30 * float64(i%17) / 17, 90 + 20*float64(i%11)/11}
	}
	p, err := pattern.Load(rows)
	require.NoError(t, err)
	return p
}

func assertPNG(t *testing.T, path string) {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(b), 8)
	assert.Equal(t, "\x89PNG", string(b[:4]))
}

func TestPatternPlotter_PlotPattern(t *testing.T) {
	pp, err := NewPatternPlotter(t.TempDir())
	require.NoError(t, err)
	pp.MaxPoints = 100

	out, err := pp.PlotPattern(spiral(t, 500))
	require.NoError(t, err)
	assertPNG(t, out)

	_, err = pp.PlotPattern(nil)
	assert.ErrorIs(t, err, pattern.ErrConfig)
}

func TestPatternPlotter_PlotCoverage(t *testing.T) {
	monitoring.SetLogger(nil)
	pp, err := NewPatternPlotter(t.TempDir())
	require.NoError(t, err)

	out, err := pp.PlotCoverage(spiral(t, 300), cycler.Config{SamplesPerFrame: 50, DownSample: 2}, 4)
	require.NoError(t, err)
	assertPNG(t, out)
}

func TestPatternPlotter_NamedOutput(t *testing.T) {
	dir := t.TempDir()
	pp, err := NewPatternPlotter(dir)
	require.NoError(t, err)
	pp.Name = "../mid 40"

	out, err := pp.PlotPattern(spiral(t, 50))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mid_40_pattern.png"), out)
	assertPNG(t, out)

	out, err = pp.PlotCoverage(spiral(t, 50), cycler.Config{SamplesPerFrame: 10}, 2)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mid_40_coverage.png"), out)
}

func TestGenerateColors(t *testing.T) {
	cs := generateColors(6)
	require.Len(t, cs, 6)
	assert.NotEqual(t, cs[0], cs[3])
}
