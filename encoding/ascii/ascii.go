// Package ascii implements the plain 7-bit ASCII short_message encoding.
// SMPP doesn't define a dedicated data_coding value for it distinct from
// the SMSC default alphabet's 0, so it's offered as an explicit opt-out
// from GSM-7's character substitutions for SMSCs that expect raw ASCII.
package ascii

import (
	"fmt"

	enc "github.com/Ucell-first/smppclient/encoding"
)

// DataCoding mirrors the SMSC default alphabet value; ASCII text is a
// subset of it with none of GSM-7's accented-character remapping.
const DataCoding = 0x00

// Codec implements encoding.Encoder for 7-bit ASCII.
type Codec struct{}

// DataCoding implements encoding.Encoder.
func (Codec) DataCoding() byte { return DataCoding }

// Encode converts text to ASCII bytes per policy.
func (Codec) Encode(text string, policy enc.ErrorPolicy) ([]byte, error) {
	out := make([]byte, 0, len(text))
	for _, r := range text {
		if r < 0x80 {
			out = append(out, byte(r))
			continue
		}
		switch policy {
		case enc.PolicyIgnore:
			continue
		case enc.PolicyReplace:
			out = append(out, '?')
		default:
			return nil, fmt.Errorf("ascii: %w", &enc.ErrUnencodable{Rune: r, Codec: "ascii"})
		}
	}
	return out, nil
}
