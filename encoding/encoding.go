// Package encoding selects and applies the per-message text encoding a
// submit_sm job declares (C14): the short_message text is transformed to
// its byte form before the codec package ever sees it, and data_coding
// is set according to the chosen encoding.
package encoding

import "fmt"

// ErrorPolicy controls what happens when text contains a rune the chosen
// encoding cannot represent.
type ErrorPolicy string

// Recognized codec_error_policy values (§6).
const (
	PolicyStrict  ErrorPolicy = "strict"
	PolicyIgnore  ErrorPolicy = "ignore"
	PolicyReplace ErrorPolicy = "replace"
)

// Encoder converts message text to its wire byte form and reports the
// data_coding value submit_sm/deliver_sm should carry for it.
type Encoder interface {
	Encode(text string, policy ErrorPolicy) ([]byte, error)
	DataCoding() byte
}

// Names recognized as the job-level "encoding" field (§3/§6).
const (
	NameGSM0338 = "gsm0338"
	NameUCS2    = "ucs2"
	NameLatin1  = "latin1"
	NameASCII   = "ascii"
	NameUTF8    = "utf-8"
)

// Registry resolves an encoding name to its Encoder. Registered here
// rather than in each subpackage's init to keep the registry's contents
// visible in one place and avoid import-order surprises.
type Registry map[string]Encoder

// ErrUnencodable is wrapped by PolicyStrict failures so callers can
// recognize a codec error versus a transport or framing error (§7.5).
type ErrUnencodable struct {
	Rune  rune
	Codec string
}

func (e *ErrUnencodable) Error() string {
	return fmt.Sprintf("encoding: rune %q not representable in %s", e.Rune, e.Codec)
}

// Lookup returns the Encoder registered under name, or false if name is
// unrecognized.
func (r Registry) Lookup(name string) (Encoder, bool) {
	if name == "" {
		name = NameGSM0338
	}
	e, ok := r[name]
	return e, ok
}
