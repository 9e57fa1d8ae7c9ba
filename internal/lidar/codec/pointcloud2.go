package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// PointField datatypes, matching sensor_msgs/PointField.
const (
	PointFieldFloat32 uint8 = 7
)

// PointField describes one field of a PointCloud2 point.
type PointField struct {
	Name     string
	Offset   uint32
	Datatype uint8
	Count    uint32
}

// PointCloud2 is the packed binary point-cloud layout.
type PointCloud2 struct {
	Header      Header
	Height      uint32
	Width       uint32
	Fields      []PointField
	IsBigEndian bool
	PointStep   uint32
	RowStep     uint32
	Data        []byte
	IsDense     bool
}

// ToPointCloud2 packs pc as x, y, z followed by one float32 field per
// channel, little-endian, in a single row.
func (pc *PointCloud) ToPointCloud2() *PointCloud2 {
	fields := []PointField{
		{Name: "x", Offset: 0, Datatype: PointFieldFloat32, Count: 1},
		{Name: "y", Offset: 4, Datatype: PointFieldFloat32, Count: 1},
		{Name: "z", Offset: 8, Datatype: PointFieldFloat32, Count: 1},
	}
	for i, ch := range pc.Channels {
		fields = append(fields, PointField{Name: ch.Name, Offset: uint32(12 + 4*i), Datatype: PointFieldFloat32, Count: 1})
	}
	step := uint32(4 * len(fields))
	n := uint32(len(pc.Points))

	data := make([]byte, int(step*n))
	for i, p := range pc.Points {
		off := i * int(step)
		binary.LittleEndian.PutUint32(data[off:], math.Float32bits(p.X))
		binary.LittleEndian.PutUint32(data[off+4:], math.Float32bits(p.Y))
		binary.LittleEndian.PutUint32(data[off+8:], math.Float32bits(p.Z))
		for c, ch := range pc.Channels {
			var v float32
			if i < len(ch.Values) {
				v = ch.Values[i]
			}
			binary.LittleEndian.PutUint32(data[off+12+4*c:], math.Float32bits(v))
		}
	}

	return &PointCloud2{
		Header:    pc.Header,
		Height:    1,
		Width:     n,
		Fields:    fields,
		PointStep: step,
		RowStep:   step * n,
		Data:      data,
		IsDense:   true,
	}
}

// Float32Field reads field name of point i.
func (pc *PointCloud2) Float32Field(i int, name string) (float32, error) {
	for _, f := range pc.Fields {
		if f.Name != name {
			continue
		}
		if f.Datatype != PointFieldFloat32 {
			return 0, fmt.Errorf("field %q has datatype %d, not float32", name, f.Datatype)
		}
		off := uint32(i)*pc.PointStep + f.Offset
		if int(off)+4 > len(pc.Data) {
			return 0, fmt.Errorf("point %d out of range", i)
		}
		return math.Float32frombits(binary.LittleEndian.Uint32(pc.Data[off:])), nil
	}
	return 0, fmt.Errorf("no field %q", name)
}

// SplitPointCloud2 cuts pc into self-contained clouds of at most maxPoints
// points each. Every chunk shares the header and field layout of pc. A
// non-positive maxPoints returns pc unchanged.
func SplitPointCloud2(pc *PointCloud2, maxPoints int) []*PointCloud2 {
	if pc == nil {
		return nil
	}
	n := int(pc.Width) * int(pc.Height)
	if maxPoints <= 0 || n <= maxPoints {
		return []*PointCloud2{pc}
	}
	step := int(pc.PointStep)
	chunks := make([]*PointCloud2, 0, (n+maxPoints-1)/maxPoints)
	for lo := 0; lo < n; lo += maxPoints {
		hi := min(lo+maxPoints, n)
		w := uint32(hi - lo)
		chunks = append(chunks, &PointCloud2{
			Header:      pc.Header,
			Height:      1,
			Width:       w,
			Fields:      pc.Fields,
			IsBigEndian: pc.IsBigEndian,
			PointStep:   pc.PointStep,
			RowStep:     pc.PointStep * w,
			Data:        pc.Data[lo*step : hi*step],
			IsDense:     pc.IsDense,
		})
	}
	return chunks
}
