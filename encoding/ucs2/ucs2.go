// Package ucs2 implements the UCS-2/UTF-16BE short_message encoding
// (data_coding 8), built on the standard library's unicode/utf16 so
// surrogate pairs for runes outside the basic multilingual plane are
// handled correctly.
package ucs2

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"

	enc "github.com/Ucell-first/smppclient/encoding"
)

// DataCoding is the SMPP data_coding value for UCS-2.
const DataCoding = 0x08

// Codec implements encoding.Encoder for UCS-2 (big-endian UTF-16).
type Codec struct{}

// DataCoding implements encoding.Encoder.
func (Codec) DataCoding() byte { return DataCoding }

// Encode converts text to big-endian UTF-16 code units. UCS-2/UTF-16 can
// represent any valid rune via surrogate pairs, so policy is not used;
// invalid UTF-8 in text becomes U+FFFD in the []rune conversion.
func (Codec) Encode(text string, policy enc.ErrorPolicy) ([]byte, error) {
	units := utf16.Encode([]rune(text))
	out := make([]byte, len(units)*2)
	for i, u := range units {
		binary.BigEndian.PutUint16(out[i*2:i*2+2], u)
	}
	return out, nil
}

// Decode converts big-endian UTF-16 bytes back to text.
func (Codec) Decode(b []byte) (string, error) {
	if len(b)%2 != 0 {
		return "", fmt.Errorf("ucs2: odd byte length %d", len(b))
	}
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = binary.BigEndian.Uint16(b[i*2 : i*2+2])
	}
	return string(utf16.Decode(units)), nil
}
