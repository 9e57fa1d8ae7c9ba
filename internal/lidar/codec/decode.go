package codec

import (
	"errors"
	"fmt"
	"math"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/livox.sim/internal/lidar/raygeom"
)

// ErrMalformed is returned for payloads that are not valid wire messages.
var ErrMalformed = errors.New("malformed wire message")

type field struct {
	num   protowire.Number
	typ   protowire.Type
	u     uint64 // varint or fixed value
	bytes []byte
}

func (f field) double() float64 { return math.Float64frombits(f.u) }

func parseFields(b []byte) ([]field, error) {
	var out []field
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.u, n = protowire.ConsumeVarint(b)
		case protowire.Fixed64Type:
			f.u, n = protowire.ConsumeFixed64(b)
		case protowire.Fixed32Type:
			var v uint32
			v, n = protowire.ConsumeFixed32(b)
			f.u = uint64(v)
		case protowire.BytesType:
			f.bytes, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(n))
		}
		b = b[n:]
		out = append(out, f)
	}
	return out, nil
}

func decodePackedDoubles(b []byte) ([]float64, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("%w: packed doubles of %d bytes", ErrMalformed, len(b))
	}
	out := make([]float64, 0, len(b)/8)
	for len(b) > 0 {
		v, n := protowire.ConsumeFixed64(b)
		out = append(out, math.Float64frombits(v))
		b = b[n:]
	}
	return out, nil
}

func decodeTime(b []byte) (time.Duration, error) {
	fs, err := parseFields(b)
	if err != nil {
		return 0, err
	}
	var d time.Duration
	for _, f := range fs {
		switch f.num {
		case fieldTimeSec:
			d += time.Duration(int64(f.u)) * time.Second
		case fieldTimeNsec:
			d += time.Duration(int64(f.u))
		}
	}
	return d, nil
}

func decodeHeader(b []byte) (Header, error) {
	fs, err := parseFields(b)
	if err != nil {
		return Header{}, err
	}
	var h Header
	for _, f := range fs {
		switch f.num {
		case 1:
			if h.Stamp, err = decodeTime(f.bytes); err != nil {
				return Header{}, err
			}
		case 2:
			h.FrameID = string(f.bytes)
		}
	}
	return h, nil
}

func decodeVector(b []byte) (r3.Vec, error) {
	fs, err := parseFields(b)
	if err != nil {
		return r3.Vec{}, err
	}
	var v r3.Vec
	for _, f := range fs {
		switch f.num {
		case 1:
			v.X = f.double()
		case 2:
			v.Y = f.double()
		case 3:
			v.Z = f.double()
		}
	}
	return v, nil
}

func decodeQuaternion(b []byte) (quat.Number, error) {
	fs, err := parseFields(b)
	if err != nil {
		return quat.Number{}, err
	}
	var q quat.Number
	for _, f := range fs {
		switch f.num {
		case 1:
			q.Imag = f.double()
		case 2:
			q.Jmag = f.double()
		case 3:
			q.Kmag = f.double()
		case 4:
			q.Real = f.double()
		}
	}
	return q, nil
}

func decodePose(b []byte) (raygeom.Pose, error) {
	fs, err := parseFields(b)
	if err != nil {
		return raygeom.Pose{}, err
	}
	var p raygeom.Pose
	for _, f := range fs {
		switch f.num {
		case 1:
			if p.Pos, err = decodeVector(f.bytes); err != nil {
				return raygeom.Pose{}, err
			}
		case 2:
			if p.Rot, err = decodeQuaternion(f.bytes); err != nil {
				return raygeom.Pose{}, err
			}
		}
	}
	return p, nil
}

// UnmarshalLaserScanStamped decodes a record written by MarshalLaserScanStamped.
func UnmarshalLaserScanStamped(b []byte) (*LaserScanStamped, error) {
	fs, err := parseFields(b)
	if err != nil {
		return nil, err
	}
	ls := &LaserScanStamped{}
	for _, f := range fs {
		switch f.num {
		case 1:
			if ls.Stamp, err = decodeTime(f.bytes); err != nil {
				return nil, err
			}
		case 2:
			if err := decodeScan(f.bytes, ls); err != nil {
				return nil, err
			}
		}
	}
	return ls, nil
}

func decodeScan(b []byte, ls *LaserScanStamped) error {
	fs, err := parseFields(b)
	if err != nil {
		return err
	}
	s := &ls.Scan
	for _, f := range fs {
		switch f.num {
		case 1:
			ls.Frame = string(f.bytes)
		case 2:
			if ls.WorldPose, err = decodePose(f.bytes); err != nil {
				return err
			}
		case 3:
			s.AngleMin = f.double()
		case 4:
			s.AngleMax = f.double()
		case 5:
			s.AngleStep = f.double()
		case 6:
			s.Count = int(f.double())
		case 7:
			s.VerticalAngleMin = f.double()
		case 8:
			s.VerticalAngleMax = f.double()
		case 9:
			s.VerticalAngleStep = f.double()
		case 10:
			s.VerticalCount = int(f.double())
		case 11:
			s.RangeMin = f.double()
		case 12:
			s.RangeMax = f.double()
		case 13:
			if s.Ranges, err = decodePackedDoubles(f.bytes); err != nil {
				return err
			}
		case 14:
			if s.Intensities, err = decodePackedDoubles(f.bytes); err != nil {
				return err
			}
		case 15:
			s.RangeResolution = f.double()
		}
	}
	return nil
}

// UnmarshalTransformStamped decodes a record written by MarshalTransformStamped.
func UnmarshalTransformStamped(b []byte) (*TransformStamped, error) {
	fs, err := parseFields(b)
	if err != nil {
		return nil, err
	}
	tf := &TransformStamped{}
	for _, f := range fs {
		switch f.num {
		case 1:
			if tf.Header, err = decodeHeader(f.bytes); err != nil {
				return nil, err
			}
		case 2:
			tf.ChildID = string(f.bytes)
		case 3:
			if tf.Pose.Pos, err = decodeVector(f.bytes); err != nil {
				return nil, err
			}
		case 4:
			if tf.Pose.Rot, err = decodeQuaternion(f.bytes); err != nil {
				return nil, err
			}
		}
	}
	return tf, nil
}

// UnmarshalPointCloud2 decodes a record written by MarshalPointCloud2.
func UnmarshalPointCloud2(b []byte) (*PointCloud2, error) {
	fs, err := parseFields(b)
	if err != nil {
		return nil, err
	}
	pc := &PointCloud2{}
	for _, f := range fs {
		switch f.num {
		case 1:
			if pc.Header, err = decodeHeader(f.bytes); err != nil {
				return nil, err
			}
		case 2:
			pc.Height = uint32(f.u)
		case 3:
			pc.Width = uint32(f.u)
		case 4:
			pf, err := decodePointField(f.bytes)
			if err != nil {
				return nil, err
			}
			pc.Fields = append(pc.Fields, pf)
		case 5:
			pc.IsBigEndian = protowire.DecodeBool(f.u)
		case 6:
			pc.PointStep = uint32(f.u)
		case 7:
			pc.RowStep = uint32(f.u)
		case 8:
			pc.Data = append([]byte(nil), f.bytes...)
		case 9:
			pc.IsDense = protowire.DecodeBool(f.u)
		}
	}
	return pc, nil
}

func decodePointField(b []byte) (PointField, error) {
	fs, err := parseFields(b)
	if err != nil {
		return PointField{}, err
	}
	var pf PointField
	for _, f := range fs {
		switch f.num {
		case 1:
			pf.Name = string(f.bytes)
		case 2:
			pf.Offset = uint32(f.u)
		case 3:
			pf.Datatype = uint8(f.u)
		case 4:
			pf.Count = uint32(f.u)
		}
	}
	return pf, nil
}
