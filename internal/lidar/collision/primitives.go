package collision

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// hitEpsilon rejects self-intersections at the ray origin.
const hitEpsilon = 1e-9

// Primitive is world geometry a ray can hit.
type Primitive interface {
	// Intersect returns the smallest t in (0, maxT] with origin+t*dir on the
	// surface. dir must be a unit vector.
	Intersect(origin, dir r3.Vec, maxT float64) (t float64, ok bool)
	// Retro returns the surface retro-reflectivity.
	Retro() float64
}

// Plane is an infinite plane through Point with the given Normal.
type Plane struct {
	Point        r3.Vec
	Normal       r3.Vec
	Reflectivity float64
}

func (p Plane) Intersect(origin, dir r3.Vec, maxT float64) (float64, bool) {
	n := r3.Unit(p.Normal)
	denom := r3.Dot(n, dir)
	if math.Abs(denom) < hitEpsilon {
		return 0, false
	}
	t := r3.Dot(n, r3.Sub(p.Point, origin)) / denom
	if t <= hitEpsilon || t > maxT {
		return 0, false
	}
	return t, true
}

func (p Plane) Retro() float64 { return p.Reflectivity }

// Sphere is a solid sphere.
type Sphere struct {
	Center       r3.Vec
	Radius       float64
	Reflectivity float64
}

func (s Sphere) Intersect(origin, dir r3.Vec, maxT float64) (float64, bool) {
	oc := r3.Sub(origin, s.Center)
	b := r3.Dot(oc, dir)
	c := r3.Dot(oc, oc) - s.Radius*s.Radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	for _, t := range [2]float64{-b - sq, -b + sq} {
		if t > hitEpsilon && t <= maxT {
			return t, true
		}
	}
	return 0, false
}

func (s Sphere) Retro() float64 { return s.Reflectivity }

// Box is an axis-aligned box between Min and Max.
type Box struct {
	Min, Max     r3.Vec
	Reflectivity float64
}

// Intersect uses the slab method.
func (b Box) Intersect(origin, dir r3.Vec, maxT float64) (float64, bool) {
	tMin, tMax := math.Inf(-1), math.Inf(1)
	axes := [3][4]float64{
		{origin.X, dir.X, b.Min.X, b.Max.X},
		{origin.Y, dir.Y, b.Min.Y, b.Max.Y},
		{origin.Z, dir.Z, b.Min.Z, b.Max.Z},
	}
	for _, a := range axes {
		o, d, lo, hi := a[0], a[1], a[2], a[3]
		if math.Abs(d) < hitEpsilon {
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}
		t1, t2 := (lo-o)/d, (hi-o)/d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}
	t := tMin
	if t <= hitEpsilon {
		t = tMax // origin inside the box
	}
	if t <= hitEpsilon || t > maxT {
		return 0, false
	}
	return t, true
}

func (b Box) Retro() float64 { return b.Reflectivity }
