package gsm7

import (
	"testing"

	enc "github.com/Ucell-first/smppclient/encoding"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := Codec{}
	packed, err := c.Encode("Hello", enc.PolicyStrict)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := c.Decode(packed)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "Hello" {
		t.Fatalf("round trip mismatch: got %q", got)
	}
}

func TestEncodeExtensionCharacter(t *testing.T) {
	c := Codec{}
	packed, err := c.Encode("a{b", enc.PolicyStrict)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := c.Decode(packed)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "a{b" {
		t.Fatalf("round trip mismatch: got %q", got)
	}
}

func TestEncodeStrictRejectsUnencodable(t *testing.T) {
	c := Codec{}
	if _, err := c.Encode("日本語", enc.PolicyStrict); err == nil {
		t.Fatal("expected error under strict policy")
	}
}

func TestEncodeIgnorePolicyDropsUnencodable(t *testing.T) {
	c := Codec{}
	got, err := c.Encode("a日b", enc.PolicyIgnore)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := c.Decode(got)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded != "ab" {
		t.Fatalf("expected unencodable rune dropped, got %q", decoded)
	}
}

func TestEncodeReplacePolicySubstitutes(t *testing.T) {
	c := Codec{}
	got, err := c.Encode("a日b", enc.PolicyReplace)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := c.Decode(got)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded != "a?b" {
		t.Fatalf("expected '?' substitution, got %q", decoded)
	}
}

func TestDataCoding(t *testing.T) {
	if (Codec{}).DataCoding() != 0x00 {
		t.Fatal("expected data_coding 0 for GSM default alphabet")
	}
}
