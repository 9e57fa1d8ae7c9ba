package collision

import "gonum.org/v1/gonum/spatial/r3"

// Reader exposes the per-slot results of the last Update.
type Reader interface {
	// Len returns the number of live ray slots.
	Len() int
	// Range returns the measured range of slot i, measured from the sensor
	// origin. A ray that hits nothing reports the maximum range.
	Range(i int) float64
	// Retro returns the retro-reflectivity of the surface slot i hit, or 0.
	Retro(i int) float64
}

// Shape is the multi-ray collision primitive owned by the host.
type Shape interface {
	Reader
	Reserve(n int)
	AddRay(start, end r3.Vec)
	SetPoints(i int, start, end r3.Vec)
	Update()
}
