// Package latin1 implements the ISO-8859-1 short_message encoding
// (data_coding 3).
package latin1

import (
	"fmt"

	enc "github.com/Ucell-first/smppclient/encoding"
)

// DataCoding is the SMPP data_coding value for Latin-1.
const DataCoding = 0x03

// Codec implements encoding.Encoder for ISO-8859-1, whose code points
// 0x00-0xFF map 1:1 onto Unicode's first 256 code points.
type Codec struct{}

// DataCoding implements encoding.Encoder.
func (Codec) DataCoding() byte { return DataCoding }

// Encode converts text to Latin-1 bytes per policy.
func (Codec) Encode(text string, policy enc.ErrorPolicy) ([]byte, error) {
	out := make([]byte, 0, len(text))
	for _, r := range text {
		if r <= 0xFF {
			out = append(out, byte(r))
			continue
		}
		switch policy {
		case enc.PolicyIgnore:
			continue
		case enc.PolicyReplace:
			out = append(out, '?')
		default:
			return nil, fmt.Errorf("latin1: %w", &enc.ErrUnencodable{Rune: r, Codec: "latin1"})
		}
	}
	return out, nil
}

// Decode converts Latin-1 bytes back to text.
func (Codec) Decode(b []byte) (string, error) {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes), nil
}
