// Package registry assembles the built-in text encoders into an
// encoding.Registry. It lives apart from package encoding itself so that
// encoding's interfaces stay free of a dependency on every concrete
// codec (which each import package encoding in turn).
package registry

import (
	"github.com/Ucell-first/smppclient/encoding"
	"github.com/Ucell-first/smppclient/encoding/ascii"
	"github.com/Ucell-first/smppclient/encoding/gsm7"
	"github.com/Ucell-first/smppclient/encoding/latin1"
	"github.com/Ucell-first/smppclient/encoding/ucs2"
	"github.com/Ucell-first/smppclient/encoding/utf8enc"
)

// Default returns every built-in Encoder keyed by the job-level encoding
// name (§3/§6): gsm0338 (the default), ucs2, latin1, ascii, utf-8.
func Default() encoding.Registry {
	return encoding.Registry{
		encoding.NameGSM0338: gsm7.Codec{},
		encoding.NameUCS2:    ucs2.Codec{},
		encoding.NameLatin1:  latin1.Codec{},
		encoding.NameASCII:   ascii.Codec{},
		encoding.NameUTF8:    utf8enc.Codec{},
	}
}
