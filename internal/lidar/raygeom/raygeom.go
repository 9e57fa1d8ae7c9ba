// Package raygeom converts scan-pattern samples into ray directions and
// collision-frame segment endpoints.
//
// Orientation follows the host engine: Euler angles are (roll, pitch, yaw)
// applied as R = Rz(yaw)·Ry(pitch)·Rx(roll), and the ray travels along the
// local +X axis before rotation.
package raygeom

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/livox.sim/internal/lidar/pattern"
)

// Forward is the un-rotated ray axis.
var Forward = r3.Vec{X: 1}

// Pose is a rigid transform: rotate by Rot, then translate by Pos.
type Pose struct {
	Pos r3.Vec
	Rot quat.Number
}

// Identity is the pose with no rotation or translation.
var Identity = Pose{Rot: quat.Number{Real: 1}}

// Euler returns the unit quaternion for the given roll, pitch and yaw in
// radians.
func Euler(roll, pitch, yaw float64) quat.Number {
	sr, cr := math.Sincos(roll / 2)
	sp, cp := math.Sincos(pitch / 2)
	sy, cy := math.Sincos(yaw / 2)

	q := quat.Number{
		Real: cr*cp*cy + sr*sp*sy,
		Imag: sr*cp*cy - cr*sp*sy,
		Jmag: cr*sp*cy + sr*cp*sy,
		Kmag: cr*cp*sy - sr*sp*cy,
	}
	return normalize(q)
}

// NewPose builds a pose from a translation and roll/pitch/yaw angles.
func NewPose(x, y, z, roll, pitch, yaw float64) Pose {
	return Pose{Pos: r3.Vec{X: x, Y: y, Z: z}, Rot: Euler(roll, pitch, yaw)}
}

// Rotate applies the pose rotation to v.
func (p Pose) Rotate(v r3.Vec) r3.Vec {
	return rotate(p.Rot, v)
}

// Apply transforms point v by the pose.
func (p Pose) Apply(v r3.Vec) r3.Vec {
	return r3.Add(rotate(p.Rot, v), p.Pos)
}

// Compose returns the pose of child expressed in the frame that parent is
// expressed in, i.e. child first, then parent.
func Compose(parent, child Pose) Pose {
	return Pose{
		Pos: parent.Apply(child.Pos),
		Rot: normalize(quat.Mul(parent.Rot, child.Rot)),
	}
}

// Direction returns the unit ray direction for a sample in the sensor frame.
func Direction(s pattern.RotateSample) r3.Vec {
	return rotate(Euler(0, s.Zenith, s.Azimuth), Forward)
}

// Endpoints returns the segment a collision ray spans for sample s, in the
// collision shape's frame: offset.Rot·Euler(0, zenith, azimuth)·X scaled to
// minRange and maxRange, translated by offset.Pos.
func Endpoints(s pattern.RotateSample, offset Pose, minRange, maxRange float64) (start, end r3.Vec) {
	ray := normalize(quat.Mul(offset.Rot, Euler(0, s.Zenith, s.Azimuth)))
	axis := rotate(ray, Forward)
	start = r3.Add(r3.Scale(minRange, axis), offset.Pos)
	end = r3.Add(r3.Scale(maxRange, axis), offset.Pos)
	return start, end
}

func rotate(q quat.Number, v r3.Vec) r3.Vec {
	return r3.Rotation(q).Rotate(v)
}

// normalize returns q scaled to unit length. The zero quaternion maps to
// the identity rotation.
func normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/n, q)
}
