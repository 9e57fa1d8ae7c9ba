package codec

import (
	"math"
	"time"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/banshee-data/livox.sim/internal/lidar/raygeom"
)

// Field numbers of the wire messages. Nested messages are length-delimited.
//
//	Time             { 1 sec:int64  2 nsec:int32 }
//	Header           { 1 stamp:Time  2 frame_id:string }
//	Vector3d         { 1 x  2 y  3 z :double }
//	Quaternion       { 1 x  2 y  3 z  4 w :double }
//	Pose             { 1 position:Vector3d  2 orientation:Quaternion }
//	PointField       { 1 name  2 offset  3 datatype  4 count }
//	PointCloud2      { 1 header  2 height  3 width  4 fields  5 is_bigendian
//	                   6 point_step  7 row_step  8 data  9 is_dense }
//	LaserScan        { 1 frame  2 world_pose  3 angle_min  4 angle_max
//	                   5 angle_step  6 count  7 vertical_angle_min
//	                   8 vertical_angle_max  9 vertical_angle_step
//	                   10 vertical_count  11 range_min  12 range_max
//	                   13 ranges:packed double  14 intensities:packed double
//	                   15 range_resolution }
//	LaserScanStamped { 1 time:Time  2 scan:LaserScan }
//	TransformStamped { 1 header  2 child_frame_id  3 translation  4 rotation }
//	Envelope         { 1 kind  2 topic  3 sequence  4 payload:bytes }
const (
	fieldTimeSec  protowire.Number = 1
	fieldTimeNsec protowire.Number = 2
)

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

func appendUint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	return appendUint(b, num, protowire.EncodeBool(v))
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendPackedDoubles(b []byte, num protowire.Number, vs []float64) []byte {
	packed := make([]byte, 0, 8*len(vs))
	for _, v := range vs {
		packed = protowire.AppendFixed64(packed, math.Float64bits(v))
	}
	return appendMessage(b, num, packed)
}

func encodeTime(d time.Duration) []byte {
	sec := int64(d / time.Second)
	nsec := int64(d % time.Second)
	var b []byte
	b = appendUint(b, fieldTimeSec, uint64(sec))
	b = appendUint(b, fieldTimeNsec, uint64(nsec))
	return b
}

func encodeHeader(h Header) []byte {
	var b []byte
	b = appendMessage(b, 1, encodeTime(h.Stamp))
	b = appendString(b, 2, h.FrameID)
	return b
}

func encodeVector(x, y, z float64) []byte {
	var b []byte
	b = appendDouble(b, 1, x)
	b = appendDouble(b, 2, y)
	b = appendDouble(b, 3, z)
	return b
}

func encodeQuaternion(p raygeom.Pose) []byte {
	var b []byte
	b = appendDouble(b, 1, p.Rot.Imag)
	b = appendDouble(b, 2, p.Rot.Jmag)
	b = appendDouble(b, 3, p.Rot.Kmag)
	b = appendDouble(b, 4, p.Rot.Real)
	return b
}

func encodePose(p raygeom.Pose) []byte {
	var b []byte
	b = appendMessage(b, 1, encodeVector(p.Pos.X, p.Pos.Y, p.Pos.Z))
	b = appendMessage(b, 2, encodeQuaternion(p))
	return b
}

// MarshalPointCloud2 encodes pc.
func MarshalPointCloud2(pc *PointCloud2) []byte {
	var b []byte
	b = appendMessage(b, 1, encodeHeader(pc.Header))
	b = appendUint(b, 2, uint64(pc.Height))
	b = appendUint(b, 3, uint64(pc.Width))
	for _, f := range pc.Fields {
		var fb []byte
		fb = appendString(fb, 1, f.Name)
		fb = appendUint(fb, 2, uint64(f.Offset))
		fb = appendUint(fb, 3, uint64(f.Datatype))
		fb = appendUint(fb, 4, uint64(f.Count))
		b = appendMessage(b, 4, fb)
	}
	b = appendBool(b, 5, pc.IsBigEndian)
	b = appendUint(b, 6, uint64(pc.PointStep))
	b = appendUint(b, 7, uint64(pc.RowStep))
	b = appendMessage(b, 8, pc.Data)
	b = appendBool(b, 9, pc.IsDense)
	return b
}

// MarshalLaserScanStamped encodes ls. Counts are written as doubles.
func MarshalLaserScanStamped(ls *LaserScanStamped) []byte {
	s := ls.Scan
	var sb []byte
	sb = appendString(sb, 1, ls.Frame)
	sb = appendMessage(sb, 2, encodePose(ls.WorldPose))
	sb = appendDouble(sb, 3, s.AngleMin)
	sb = appendDouble(sb, 4, s.AngleMax)
	sb = appendDouble(sb, 5, s.AngleStep)
	sb = appendDouble(sb, 6, float64(s.Count))
	sb = appendDouble(sb, 7, s.VerticalAngleMin)
	sb = appendDouble(sb, 8, s.VerticalAngleMax)
	sb = appendDouble(sb, 9, s.VerticalAngleStep)
	sb = appendDouble(sb, 10, float64(s.VerticalCount))
	sb = appendDouble(sb, 11, s.RangeMin)
	sb = appendDouble(sb, 12, s.RangeMax)
	sb = appendPackedDoubles(sb, 13, s.Ranges)
	sb = appendPackedDoubles(sb, 14, s.Intensities)
	sb = appendDouble(sb, 15, s.RangeResolution)

	var b []byte
	b = appendMessage(b, 1, encodeTime(ls.Stamp))
	b = appendMessage(b, 2, sb)
	return b
}

// MarshalTransformStamped encodes tf.
func MarshalTransformStamped(tf *TransformStamped) []byte {
	var b []byte
	b = appendMessage(b, 1, encodeHeader(tf.Header))
	b = appendString(b, 2, tf.ChildID)
	b = appendMessage(b, 3, encodeVector(tf.Pose.Pos.X, tf.Pose.Pos.Y, tf.Pose.Pos.Z))
	b = appendMessage(b, 4, encodeQuaternion(tf.Pose))
	return b
}
