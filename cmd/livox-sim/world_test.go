package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/livox.sim/internal/config"
	"github.com/banshee-data/livox.sim/internal/lidar/collision"
)

func TestBuildWorld_DefaultGround(t *testing.T) {
	w, err := buildWorld(nil)
	require.NoError(t, err)
	require.Len(t, w, 1)
	assert.Equal(t, collision.Plane{Normal: r3.Vec{Z: 1}}, w[0])
}

func TestBuildWorld_Primitives(t *testing.T) {
	w, err := buildWorld([]config.WorldPrimitive{
		{Type: "plane", Normal: [3]float64{0, 0, 2}, Retro: 5},
		{Type: "sphere", Center: [3]float64{1, 2, 3}, Radius: 0.5, Retro: 7},
		{Type: "box", Min: [3]float64{-1, -1, 0}, Max: [3]float64{1, 1, 2}},
	})
	require.NoError(t, err)
	require.Len(t, w, 3)
	assert.Equal(t, collision.Plane{Normal: r3.Vec{Z: 1}, Reflectivity: 5}, w[0])
	assert.Equal(t, collision.Sphere{Center: r3.Vec{X: 1, Y: 2, Z: 3}, Radius: 0.5, Reflectivity: 7}, w[1])
	assert.Equal(t, 0.0, w[2].Retro())

	_, err = buildWorld([]config.WorldPrimitive{{Type: "cone"}})
	assert.Error(t, err)
}

func TestBuildWorld_RepositoryDefaults(t *testing.T) {
	cfg, err := config.LoadSimConfig("../../" + config.DefaultConfigPath)
	require.NoError(t, err)
	w, err := buildWorld(cfg.World)
	require.NoError(t, err)
	assert.Len(t, w, len(cfg.World))
}
