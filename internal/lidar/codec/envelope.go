package codec

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Kind identifies the record carried by an Envelope.
type Kind uint8

const (
	KindUnknown     Kind = 0
	KindPointCloud2 Kind = 1
	KindLaserScan   Kind = 2
	KindTransform   Kind = 3
)

func (k Kind) String() string {
	switch k {
	case KindPointCloud2:
		return "pointcloud2"
	case KindLaserScan:
		return "laserscan"
	case KindTransform:
		return "transform"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Envelope wraps one encoded record for transport.
type Envelope struct {
	Kind     Kind
	Topic    string
	Sequence uint64
	Payload  []byte
}

// Marshal encodes the envelope.
func (e *Envelope) Marshal() []byte {
	b := make([]byte, 0, len(e.Payload)+len(e.Topic)+16)
	b = appendUint(b, 1, uint64(e.Kind))
	b = appendString(b, 2, e.Topic)
	b = appendUint(b, 3, e.Sequence)
	b = appendMessage(b, 4, e.Payload)
	return b
}

// UnmarshalEnvelope decodes an envelope. The payload aliases b.
func UnmarshalEnvelope(b []byte) (*Envelope, error) {
	fs, err := parseFields(b)
	if err != nil {
		return nil, err
	}
	e := &Envelope{}
	for _, f := range fs {
		switch f.num {
		case 1:
			if f.typ != protowire.VarintType {
				return nil, fmt.Errorf("%w: envelope kind has wire type %d", ErrMalformed, f.typ)
			}
			e.Kind = Kind(f.u)
		case 2:
			e.Topic = string(f.bytes)
		case 3:
			e.Sequence = f.u
		case 4:
			e.Payload = f.bytes
		}
	}
	if e.Kind == KindUnknown {
		return nil, fmt.Errorf("%w: envelope without kind", ErrMalformed)
	}
	return e, nil
}
