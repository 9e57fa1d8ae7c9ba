package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultSimConfig_MatchesAccessorDefaults(t *testing.T) {
	def := DefaultSimConfig()
	empty := EmptySimConfig()

	assert.Equal(t, empty.GetCSVFileName(), def.GetCSVFileName())
	assert.Equal(t, empty.GetSamples(), def.GetSamples())
	assert.Equal(t, empty.GetDownSample(), def.GetDownSample())
	assert.Equal(t, empty.GetRangeMin(), def.GetRangeMin())
	assert.Equal(t, empty.GetRangeMax(), def.GetRangeMax())
	assert.Equal(t, empty.GetHorizontalSamples(), def.GetHorizontalSamples())
	assert.Equal(t, empty.GetHorizontalMinAngle(), def.GetHorizontalMinAngle())
	assert.Equal(t, empty.GetVerticalMaxAngle(), def.GetVerticalMaxAngle())
	assert.Equal(t, empty.GetTopic(), def.GetTopic())
	assert.Equal(t, empty.GetFrameName(), def.GetFrameName())
	assert.Equal(t, empty.GetUpdateRateHz(), def.GetUpdateRateHz())
	assert.NoError(t, def.Validate())
}

func TestGetDownSample_Coerced(t *testing.T) {
	for _, v := range []int{-5, 0, 1} {
		cfg := &SimConfig{DownSample: ptrInt(v)}
		assert.Equal(t, 1, cfg.GetDownSample(), "downsample=%d", v)
	}
	assert.Equal(t, 4, (&SimConfig{DownSample: ptrInt(4)}).GetDownSample())
}

func TestLoadSimConfig(t *testing.T) {
	path := writeConfig(t, "mid40.json", `{
  "csv_file_name": "/data/mid40.csv",
  "samples": 4,
  "downsample": 2,
  "range_min": 0.2,
  "range_max": 50,
  "ros_topic": "/livox/points",
  "sensor_pose": {"xyz": [0, 0, 1.5], "rpy": [0, 0.1, 0]},
  "world": [
    {"type": "plane", "point": [0, 0, 0], "normal": [0, 0, 1], "retro": 30},
    {"type": "sphere", "center": [5, 0, 1], "radius": 0.5}
  ]
}`)

	cfg, err := LoadSimConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/mid40.csv", cfg.GetCSVFileName())
	assert.Equal(t, 4, cfg.GetSamples())
	assert.Equal(t, 2, cfg.GetDownSample())
	assert.Equal(t, 0.2, cfg.GetRangeMin())
	assert.Equal(t, 50.0, cfg.GetRangeMax())
	assert.Equal(t, "/livox/points", cfg.GetTopic())
	assert.Equal(t, "livox", cfg.GetFrameName(), "unset fields keep defaults")
	assert.Equal(t, [3]float64{0, 0, 1.5}, cfg.GetSensorPose().XYZ)
	assert.Equal(t, PoseConfig{}, cfg.GetParentPose())
	require.Len(t, cfg.World, 2)
	assert.Equal(t, "sphere", cfg.World[1].Type)
}

func TestLoadSimConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"wrong extension", "cfg.yaml", `{}`, ".json extension"},
		{"bad json", "cfg.json", `{"samples": `, "failed to parse"},
		{"zero samples", "cfg.json", `{"samples": 0}`, "samples must be at least 1"},
		{"non-positive min", "cfg.json", `{"range_min": 0}`, "range_min must be positive"},
		{"max below min", "cfg.json", `{"range_min": 5, "range_max": 5}`, "must exceed range_min"},
		{"bad rate", "cfg.json", `{"update_rate_hz": -1}`, "update_rate_hz"},
		{"unknown primitive", "cfg.json", `{"world": [{"type": "cone"}]}`, "unknown primitive"},
		{"zero normal", "cfg.json", `{"world": [{"type": "plane"}]}`, "normal must be non-zero"},
		{"bad sphere", "cfg.json", `{"world": [{"type": "sphere", "radius": 0}]}`, "radius must be positive"},
		{"inverted box", "cfg.json", `{"world": [{"type": "box", "min": [1,0,0], "max": [0,1,1]}]}`, "box min exceeds max"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.body)
			_, err := LoadSimConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := LoadSimConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to stat")
}

func TestLoadSimConfig_TooLarge(t *testing.T) {
	body := `{"ros_topic": "` + strings.Repeat("x", 1<<20) + `"}`
	path := writeConfig(t, "big.json", body)
	_, err := LoadSimConfig(path)
	assert.ErrorContains(t, err, "too large")
}

func TestLoadSimConfig_RepositoryDefaults(t *testing.T) {
	cfg, err := LoadSimConfig(filepath.Join("..", "..", DefaultConfigPath))
	require.NoError(t, err)
	assert.Equal(t, "package://livox_laser_simulation/scan_mode/rosette.csv", cfg.GetCSVFileName())
	assert.NotEmpty(t, cfg.World)
}
