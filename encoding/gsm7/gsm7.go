// Package gsm7 implements the GSM 03.38 default alphabet ("gsm0338"),
// packed into septets the way SMPP's short_message field expects when
// data_coding is 0. Character mapping and septet packing is hand-rolled,
// intrinsic wire-format logic for this domain, the same way PDU header
// framing is (see DESIGN.md).
package gsm7

import (
	"fmt"

	enc "github.com/Ucell-first/smppclient/encoding"
)

// DataCoding is the SMPP data_coding value for the GSM default alphabet.
const DataCoding = 0x00

const escape = 0x1B

// basic maps a rune to its default-alphabet septet value.
var basic = buildBasicTable()
var reverseBasic = reverse(basic)
var reverseExtension = reverse(extension)

func reverse(m map[rune]byte) map[byte]rune {
	out := make(map[byte]rune, len(m))
	for r, v := range m {
		out[v] = r
	}
	return out
}

// extension maps a rune to its escaped septet value (preceded by the
// escape character in the packed stream).
var extension = map[rune]byte{
	'\f': 0x0A,
	'^':  0x14,
	'{':  0x28,
	'}':  0x29,
	'\\': 0x2F,
	'[':  0x3C,
	'~':  0x3D,
	']':  0x3E,
	'|':  0x40,
	'€':  0x65,
}

func buildBasicTable() map[rune]byte {
	// The GSM 03.38 default alphabet's printable ASCII range matches
	// ASCII directly except for a handful of substitutions; those are
	// listed explicitly and take priority over the ASCII fallback loop.
	// An ASCII character whose septet value a substitution occupies (e.g.
	// '{' at 0x7B, which is 'ä') is dropped from this table, so it is
	// encoded through the extension table or not at all.
	m := make(map[rune]byte, 128)
	for i := 0x20; i < 0x7F; i++ {
		m[rune(i)] = byte(i)
	}
	substitutions := map[rune]byte{
		'\n': 0x0A,
		'\r': 0x0D,
		'@':  0x00,
		'£':  0x01,
		'$':  0x02,
		'¥':  0x03,
		'è':  0x04,
		'é':  0x05,
		'ù':  0x06,
		'ì':  0x07,
		'ò':  0x08,
		'Ç':  0x09,
		'Ø':  0x0B,
		'ø':  0x0C,
		'Å':  0x0E,
		'å':  0x0F,
		'Δ':  0x10,
		'_':  0x11,
		'Φ':  0x12,
		'Γ':  0x13,
		'Λ':  0x14,
		'Ω':  0x15,
		'Π':  0x16,
		'Ψ':  0x17,
		'Σ':  0x18,
		'Θ':  0x19,
		'Ξ':  0x1A,
		'Æ':  0x1C,
		'æ':  0x1D,
		'ß':  0x1E,
		'É':  0x1F,
		'Ä':  0x5B,
		'Ö':  0x5C,
		'Ñ':  0x5D,
		'Ü':  0x5E,
		'§':  0x5F,
		'¿':  0x60,
		'ä':  0x7B,
		'ö':  0x7C,
		'ñ':  0x7D,
		'ü':  0x7E,
		'à':  0x7F,
	}
	taken := make(map[byte]bool, len(substitutions))
	for _, v := range substitutions {
		taken[v] = true
	}
	for r, v := range m {
		if taken[v] {
			delete(m, r)
		}
	}
	for r, v := range substitutions {
		m[r] = v
	}
	return m
}

// Codec implements encoding.Encoder for the GSM default alphabet.
type Codec struct{}

// DataCoding implements encoding.Encoder.
func (Codec) DataCoding() byte { return DataCoding }

// Encode converts text to packed GSM-7 septets per policy.
func (Codec) Encode(text string, policy enc.ErrorPolicy) ([]byte, error) {
	septets, err := toSeptets(text, policy)
	if err != nil {
		return nil, err
	}
	return pack(septets), nil
}

// Decode reverses Encode: unpacks octets into septets and maps them back
// to runes. The session itself does not call it; the round-trip tests do.
// When the septet count is of the form 8n+7, the seven padding bits form
// one extra zero septet, which decodes as a trailing '@'.
func (Codec) Decode(packed []byte) (string, error) {
	septets := unpack(packed)
	var out []rune
	for i := 0; i < len(septets); i++ {
		s := septets[i]
		if s == escape {
			i++
			if i >= len(septets) {
				return "", fmt.Errorf("gsm7: dangling escape at end of message")
			}
			r, ok := reverseExtension[septets[i]]
			if !ok {
				return "", fmt.Errorf("gsm7: unknown extension septet 0x%02X", septets[i])
			}
			out = append(out, r)
			continue
		}
		r, ok := reverseBasic[s]
		if !ok {
			return "", fmt.Errorf("gsm7: unknown septet 0x%02X", s)
		}
		out = append(out, r)
	}
	return string(out), nil
}

func toSeptets(text string, policy enc.ErrorPolicy) ([]byte, error) {
	var out []byte
	for _, r := range text {
		if v, ok := basic[r]; ok {
			out = append(out, v)
			continue
		}
		if v, ok := extension[r]; ok {
			out = append(out, escape, v)
			continue
		}
		switch policy {
		case enc.PolicyIgnore:
			continue
		case enc.PolicyReplace:
			out = append(out, basic['?'])
		default:
			return nil, fmt.Errorf("gsm7: %w", &enc.ErrUnencodable{Rune: r, Codec: "gsm0338"})
		}
	}
	return out, nil
}

// pack packs 7-bit septets into 8-bit octets LSB-first, the bit order
// SMPP's short_message field requires for data_coding 0.
func pack(septets []byte) []byte {
	if len(septets) == 0 {
		return nil
	}
	totalBits := len(septets) * 7
	out := make([]byte, (totalBits+7)/8)
	bitPos := 0
	for _, s := range septets {
		s &= 0x7F
		for b := uint(0); b < 7; b++ {
			if s&(1<<b) != 0 {
				out[bitPos/8] |= 1 << uint(bitPos%8)
			}
			bitPos++
		}
	}
	return out
}

// unpack reverses pack: splits an LSB-first packed octet stream back
// into one septet per 7 bits. Any trailing bits short of a full septet
// (padding per GSM 03.38 §6.1.2.3) are discarded.
func unpack(packed []byte) []byte {
	totalBits := len(packed) * 8
	count := totalBits / 7
	out := make([]byte, count)
	bitPos := 0
	for i := 0; i < count; i++ {
		var s byte
		for b := uint(0); b < 7; b++ {
			byteIdx := bitPos / 8
			bitIdx := uint(bitPos % 8)
			if packed[byteIdx]&(1<<bitIdx) != 0 {
				s |= 1 << b
			}
			bitPos++
		}
		out[i] = s
	}
	return out
}
