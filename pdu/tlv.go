package pdu

import (
	"encoding/binary"
	"fmt"
)

// Tag identifies an optional TLV parameter.
type Tag uint16

// Tags this client emits or inspects. Unknown tags received from the SMSC
// are preserved verbatim in TLV.Tag/TLV.Value and tolerated, per §3.
const (
	TagMessagePayload     Tag = 0x0424
	TagReceiptedMessageID Tag = 0x001E
	TagMessageState       Tag = 0x0427
)

// TLV is one optional Tag-Length-Value parameter trailing a PDU body.
type TLV struct {
	Tag   Tag
	Value []byte
}

func (t TLV) encode() []byte {
	out := make([]byte, 4+len(t.Value))
	binary.BigEndian.PutUint16(out[0:2], uint16(t.Tag))
	binary.BigEndian.PutUint16(out[2:4], uint16(len(t.Value)))
	copy(out[4:], t.Value)
	return out
}

// decodeTLVs parses every TLV trailing the mandatory body fields already
// consumed from b. Unknown tags are retained, never rejected, per §3.
func decodeTLVs(b []byte) ([]TLV, error) {
	var out []TLV
	for len(b) > 0 {
		if len(b) < 4 {
			return nil, fmt.Errorf("pdu: truncated TLV header: %d bytes left", len(b))
		}
		tag := Tag(binary.BigEndian.Uint16(b[0:2]))
		length := int(binary.BigEndian.Uint16(b[2:4]))
		if len(b) < 4+length {
			return nil, fmt.Errorf("pdu: truncated TLV value for tag 0x%04X", tag)
		}
		value := make([]byte, length)
		copy(value, b[4:4+length])
		out = append(out, TLV{Tag: tag, Value: value})
		b = b[4+length:]
	}
	return out, nil
}

func encodeTLVs(tlvs []TLV) []byte {
	var out []byte
	for _, t := range tlvs {
		out = append(out, t.encode()...)
	}
	return out
}

// Find returns the first TLV with the given tag, if present.
func Find(tlvs []TLV, tag Tag) (TLV, bool) {
	for _, t := range tlvs {
		if t.Tag == tag {
			return t, true
		}
	}
	return TLV{}, false
}
