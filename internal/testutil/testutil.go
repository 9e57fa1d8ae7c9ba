// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Segment is one ray slot as seen by FakeShape.
type Segment struct {
	Start, End r3.Vec
}

// FakeShape is an in-memory multi-ray collision primitive. On Update slot i
// reports Ranges[i] (MissRange when unset) and Retros[i].
type FakeShape struct {
	Segments []Segment
	Ranges   []float64
	Retros   []float64

	// MissRange is reported for slots without an entry in Ranges.
	MissRange float64
	// MaxSlots, when positive, caps the slot count; extra AddRay calls are
	// ignored the way a host primitive with a smaller batch would.
	MaxSlots int

	Reserved    int
	UpdateCalls int
	SetCalls    int

	ranges []float64
	retros []float64
}

// NewFakeShape returns a fake whose slots report the given ranges.
func NewFakeShape(ranges ...float64) *FakeShape {
	return &FakeShape{Ranges: ranges}
}

func (f *FakeShape) Reserve(n int) { f.Reserved = n }

func (f *FakeShape) AddRay(start, end r3.Vec) {
	if f.MaxSlots > 0 && len(f.Segments) >= f.MaxSlots {
		return
	}
	f.Segments = append(f.Segments, Segment{Start: start, End: end})
}

func (f *FakeShape) SetPoints(i int, start, end r3.Vec) {
	if i < 0 || i >= len(f.Segments) {
		panic(fmt.Sprintf("testutil: SetPoints slot %d out of range [0,%d)", i, len(f.Segments)))
	}
	f.SetCalls++
	f.Segments[i] = Segment{Start: start, End: end}
}

func (f *FakeShape) Update() {
	f.UpdateCalls++
	f.ranges = make([]float64, len(f.Segments))
	f.retros = make([]float64, len(f.Segments))
	for i := range f.Segments {
		f.ranges[i] = f.MissRange
		if i < len(f.Ranges) {
			f.ranges[i] = f.Ranges[i]
		}
		if i < len(f.Retros) {
			f.retros[i] = f.Retros[i]
		}
	}
}

func (f *FakeShape) Len() int { return len(f.Segments) }

func (f *FakeShape) Range(i int) float64 {
	if i < len(f.ranges) {
		return f.ranges[i]
	}
	return f.MissRange
}

func (f *FakeShape) Retro(i int) float64 {
	if i < len(f.retros) {
		return f.retros[i]
	}
	return 0
}

// SeedSlots adds n zero-length rays, for tests that need live slots without
// caring about geometry.
func (f *FakeShape) SeedSlots(n int) *FakeShape {
	for i := 0; i < n; i++ {
		f.AddRay(r3.Vec{}, r3.Vec{})
	}
	return f
}
