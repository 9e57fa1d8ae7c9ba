package collision

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/livox.sim/internal/lidar/raygeom"
)

var _ Shape = (*MultiRay)(nil)

func TestPrimitives_Intersect(t *testing.T) {
	origin := r3.Vec{}
	fwd := r3.Vec{X: 1}

	tests := []struct {
		name   string
		prim   Primitive
		dir    r3.Vec
		maxT   float64
		wantT  float64
		wantOK bool
	}{
		{"plane ahead", Plane{Point: r3.Vec{X: 5}, Normal: r3.Vec{X: -1}}, fwd, 100, 5, true},
		{"plane behind", Plane{Point: r3.Vec{X: -5}, Normal: r3.Vec{X: 1}}, fwd, 100, 0, false},
		{"plane parallel", Plane{Point: r3.Vec{Z: -1}, Normal: r3.Vec{Z: 1}}, fwd, 100, 0, false},
		{"plane beyond max", Plane{Point: r3.Vec{X: 50}, Normal: r3.Vec{X: 1}}, fwd, 10, 0, false},
		{"sphere ahead", Sphere{Center: r3.Vec{X: 10}, Radius: 2}, fwd, 100, 8, true},
		{"sphere miss", Sphere{Center: r3.Vec{X: 10, Y: 5}, Radius: 2}, fwd, 100, 0, false},
		{"inside sphere", Sphere{Radius: 3}, fwd, 100, 3, true},
		{"box ahead", Box{Min: r3.Vec{X: 4, Y: -1, Z: -1}, Max: r3.Vec{X: 6, Y: 1, Z: 1}}, fwd, 100, 4, true},
		{"box miss", Box{Min: r3.Vec{X: 4, Y: 2, Z: -1}, Max: r3.Vec{X: 6, Y: 3, Z: 1}}, fwd, 100, 0, false},
		{"inside box", Box{Min: r3.Vec{X: -1, Y: -1, Z: -1}, Max: r3.Vec{X: 2, Y: 1, Z: 1}}, fwd, 100, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.prim.Intersect(origin, tt.dir, tt.maxT)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.wantT, got, 1e-9)
			}
		})
	}
}

func TestMultiRay_NearestHitWins(t *testing.T) {
	world := []Primitive{
		Plane{Point: r3.Vec{X: 20}, Normal: r3.Vec{X: -1}, Reflectivity: 10},
		Sphere{Center: r3.Vec{X: 8}, Radius: 1, Reflectivity: 200},
	}
	m := NewMultiRay(raygeom.Identity, 0.1, world)
	m.Reserve(3)
	m.AddRay(r3.Vec{X: 0.1}, r3.Vec{X: 50})
	m.AddRay(r3.Vec{Y: 0.1}, r3.Vec{Y: 50})
	m.AddRay(r3.Vec{X: -0.1}, r3.Vec{X: -50})
	require.Equal(t, 3, m.Len())

	m.Update()

	assert.InDelta(t, 7.0, m.Range(0), 1e-9)
	assert.Equal(t, 200.0, m.Retro(0))
	assert.InDelta(t, 50.0, m.Range(1), 1e-9, "miss reports max range")
	assert.Zero(t, m.Retro(1))
	assert.InDelta(t, 50.0, m.Range(2), 1e-9)
}

func TestMultiRay_SetPointsRedirects(t *testing.T) {
	world := []Primitive{Plane{Point: r3.Vec{Y: 3}, Normal: r3.Vec{Y: 1}, Reflectivity: 1}}
	m := NewMultiRay(raygeom.Identity, 0, world)
	m.AddRay(r3.Vec{}, r3.Vec{X: 10})

	m.Update()
	assert.InDelta(t, 10.0, m.Range(0), 1e-9)

	m.SetPoints(0, r3.Vec{}, r3.Vec{Y: 10})
	m.Update()
	assert.InDelta(t, 3.0, m.Range(0), 1e-9)
	assert.Equal(t, 1, m.Len(), "redirecting never changes the slot count")

	assert.Panics(t, func() { m.SetPoints(1, r3.Vec{}, r3.Vec{X: 1}) })
}

func TestMultiRay_PoseMovesRays(t *testing.T) {
	// Shape raised 2m and yawed 90 degrees: local +X points along world +Y.
	pose := raygeom.NewPose(0, 0, 2, 0, 0, math.Pi/2)
	world := []Primitive{Plane{Point: r3.Vec{Y: 5}, Normal: r3.Vec{Y: -1}}}
	m := NewMultiRay(pose, 0, world)
	m.AddRay(r3.Vec{}, r3.Vec{X: 100})
	m.Update()
	assert.InDelta(t, 5.0, m.Range(0), 1e-9)
}
