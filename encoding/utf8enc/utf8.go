// Package utf8enc passes message text through as raw UTF-8 bytes. SMPP
// has no standard data_coding value for UTF-8; this client uses the
// generic octet-unspecified value and relies on the SMSC/operator
// agreement documented alongside the client configuration.
package utf8enc

import enc "github.com/Ucell-first/smppclient/encoding"

// DataCoding is the generic "octet unspecified" value some SMSCs accept
// for raw UTF-8 payloads by prior agreement.
const DataCoding = 0x04

// Codec implements encoding.Encoder by passing text through unchanged.
type Codec struct{}

// DataCoding implements encoding.Encoder.
func (Codec) DataCoding() byte { return DataCoding }

// Encode returns text's UTF-8 bytes unchanged; UTF-8 can represent any
// valid Go string, so policy never triggers.
func (Codec) Encode(text string, policy enc.ErrorPolicy) ([]byte, error) {
	return []byte(text), nil
}
