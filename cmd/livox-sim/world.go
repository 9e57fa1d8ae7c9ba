package main

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/livox.sim/internal/config"
	"github.com/banshee-data/livox.sim/internal/lidar/collision"
)

func vec(a [3]float64) r3.Vec { return r3.Vec{X: a[0], Y: a[1], Z: a[2]} }

// buildWorld converts configured primitives into collision geometry. An
// empty list yields a ground plane under the origin.
func buildWorld(prims []config.WorldPrimitive) ([]collision.Primitive, error) {
	if len(prims) == 0 {
		return []collision.Primitive{collision.Plane{Normal: r3.Vec{Z: 1}}}, nil
	}
	world := make([]collision.Primitive, 0, len(prims))
	for i, p := range prims {
		switch p.Type {
		case "plane":
			world = append(world, collision.Plane{Point: vec(p.Point), Normal: r3.Unit(vec(p.Normal)), Reflectivity: p.Retro})
		case "sphere":
			world = append(world, collision.Sphere{Center: vec(p.Center), Radius: p.Radius, Reflectivity: p.Retro})
		case "box":
			world = append(world, collision.Box{Min: vec(p.Min), Max: vec(p.Max), Reflectivity: p.Retro})
		default:
			return nil, fmt.Errorf("world[%d]: unknown primitive type %q", i, p.Type)
		}
	}
	return world, nil
}
