package ucs2

import (
	"testing"

	enc "github.com/Ucell-first/smppclient/encoding"
)

func TestEncodeDecodeRoundTripWithSurrogatePair(t *testing.T) {
	c := Codec{}
	text := "hi \U0001F600" // outside the BMP, needs a surrogate pair
	got, err := c.Encode(text, enc.PolicyStrict)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(got)%2 != 0 {
		t.Fatalf("expected even byte length, got %d", len(got))
	}
	decoded, err := c.Decode(got)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded != text {
		t.Fatalf("round trip mismatch: got %q want %q", decoded, text)
	}
}

func TestDataCoding(t *testing.T) {
	if (Codec{}).DataCoding() != 0x08 {
		t.Fatal("expected data_coding 8 for UCS-2")
	}
}
