package pdu

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func encodeDecode(t *testing.T, p PDU, seq uint32, status Status) (Header, PDU) {
	t.Helper()
	var buf bytes.Buffer
	if err := Encode(&buf, p, seq, status); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	h, got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return h, got
}

func TestBindTransceiverRoundTrip(t *testing.T) {
	p := &BindTransceiver{
		SystemID:         "smppclient1",
		Password:         "password",
		InterfaceVersion: 0x34,
		AddressRange:     "",
	}
	h, got := encodeDecode(t, p, 1, StatusOK)
	if h.CommandID != BindTransceiverID || h.SequenceNum != 1 {
		t.Fatalf("unexpected header: %+v", h)
	}
	out, ok := got.(*BindTransceiver)
	if !ok {
		t.Fatalf("wrong type: %T", got)
	}
	if out.SystemID != p.SystemID || out.Password != p.Password {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestSubmitSmRoundTrip(t *testing.T) {
	p := &SubmitSm{
		SourceAddr:      "254700",
		DestinationAddr: "254711",
		DestAddrTON:     1,
		DestAddrNPI:     1,
		ShortMessage:    []byte("Hello"),
	}
	_, got := encodeDecode(t, p, 2, StatusOK)
	out := got.(*SubmitSm)
	if string(out.ShortMessage) != "Hello" || out.SourceAddr != "254700" {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestSubmitSmLongMessageUsesPayloadTLV(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 255)
	p := &SubmitSm{Payload: payload}
	var buf bytes.Buffer
	if err := Encode(&buf, p, 3, StatusOK); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	_, got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	out := got.(*SubmitSm)
	if len(out.ShortMessage) != 0 {
		t.Fatalf("expected empty short_message, got %d bytes", len(out.ShortMessage))
	}
	if string(out.Payload) != string(payload) {
		t.Fatalf("payload mismatch")
	}
}

func TestSubmitSmExactly254BytesInline(t *testing.T) {
	msg := bytes.Repeat([]byte("y"), 254)
	p := &SubmitSm{ShortMessage: msg}
	_, got := encodeDecode(t, p, 4, StatusOK)
	out := got.(*SubmitSm)
	if len(out.ShortMessage) != 254 {
		t.Fatalf("expected 254 inline bytes, got %d", len(out.ShortMessage))
	}
}

func TestDeliverSmReceiptedMessageID(t *testing.T) {
	p := &DeliverSm{
		TLVs: []TLV{{Tag: TagReceiptedMessageID, Value: []byte("MID-9")}},
	}
	_, got := encodeDecode(t, p, 77, StatusOK)
	out := got.(*DeliverSm)
	id, ok := out.ReceiptedMessageID()
	if !ok || id != "MID-9" {
		t.Fatalf("expected MID-9, got %q ok=%v", id, ok)
	}
}

func TestEnquireLinkEmptyBodyRoundTrips(t *testing.T) {
	h, _ := encodeDecode(t, &EnquireLink{}, 3, StatusOK)
	if h.CommandLength != HeaderLen {
		t.Fatalf("expected command_length 16, got %d", h.CommandLength)
	}
}

func TestDecodeUnknownCommandIDReturnsRaw(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 16})
	buf.Write([]byte{0, 0, 0x13, 0x37})
	buf.Write([]byte{0, 0, 0, 0})
	buf.Write([]byte{0, 0, 0, 9})
	_, got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if _, ok := got.(*Raw); !ok {
		t.Fatalf("expected *Raw, got %T", got)
	}
}

func TestDecodeShortHeaderFails(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0, 0, 0})
	_, _, err := Decode(buf)
	if err == nil {
		t.Fatal("expected error on truncated header")
	}
}

func TestDecodeShortBodyFails(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 20}) // claims 4 more body bytes than supplied
	buf.Write([]byte{0, 0, 0, 21})
	buf.Write([]byte{0, 0, 0, 0})
	buf.Write([]byte{0, 0, 0, 1})
	_, _, err := Decode(&buf)
	if err == nil {
		t.Fatal("expected error on truncated body")
	}
}

func TestCommandLengthInvariant(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, &SubmitSm{ShortMessage: []byte("hi")}, 5, StatusOK); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	encoded := buf.Bytes()
	if int(binary.BigEndian.Uint32(encoded[0:4])) != len(encoded) {
		t.Fatalf("command_length %d != actual length %d", binary.BigEndian.Uint32(encoded[0:4]), len(encoded))
	}
}
