package collision

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/livox.sim/internal/lidar/raygeom"
)

type raySlot struct {
	start, end r3.Vec
	rng, retro float64
}

// MultiRay is a reference Shape that casts its rays against a fixed list of
// primitives. Ray endpoints are given in the shape's frame; Pose places
// that frame in the world.
type MultiRay struct {
	Pose     raygeom.Pose
	MinRange float64
	World    []Primitive

	rays []raySlot
}

// NewMultiRay creates an empty primitive at pose. Ranges reported by the
// shape are offset by minRange, since every segment starts minRange away
// from the sensor origin.
func NewMultiRay(pose raygeom.Pose, minRange float64, world []Primitive) *MultiRay {
	return &MultiRay{Pose: pose, MinRange: minRange, World: world}
}

func (m *MultiRay) Reserve(n int) {
	if n > cap(m.rays) {
		rays := make([]raySlot, len(m.rays), n)
		copy(rays, m.rays)
		m.rays = rays
	}
}

func (m *MultiRay) AddRay(start, end r3.Vec) {
	m.rays = append(m.rays, raySlot{start: start, end: end})
}

// SetPoints redirects an existing slot. It panics on an unknown slot, the
// same way indexing a slice out of range would.
func (m *MultiRay) SetPoints(i int, start, end r3.Vec) {
	if i < 0 || i >= len(m.rays) {
		panic(fmt.Sprintf("collision: SetPoints slot %d out of range [0,%d)", i, len(m.rays)))
	}
	m.rays[i].start, m.rays[i].end = start, end
}

// Update intersects every slot with the world and records the nearest hit.
func (m *MultiRay) Update() {
	for i := range m.rays {
		r := &m.rays[i]
		origin := m.Pose.Apply(r.start)
		seg := r3.Sub(m.Pose.Apply(r.end), origin)
		length := r3.Norm(seg)

		r.rng = m.MinRange + length
		r.retro = 0
		if length == 0 {
			continue
		}
		dir := r3.Scale(1/length, seg)

		best := length
		for _, p := range m.World {
			if t, ok := p.Intersect(origin, dir, best); ok && t < best {
				best = t
				r.rng = m.MinRange + t
				r.retro = p.Retro()
			}
		}
	}
}

func (m *MultiRay) Len() int { return len(m.rays) }

func (m *MultiRay) Range(i int) float64 { return m.rays[i].rng }

func (m *MultiRay) Retro(i int) float64 { return m.rays[i].retro }
