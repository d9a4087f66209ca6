package pdu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrTruncatedHeader is returned when fewer than HeaderLen bytes could be
// read for the fixed PDU header.
var ErrTruncatedHeader = errors.New("pdu: truncated header")

// ErrTruncatedBody is returned when fewer than command_length-HeaderLen
// bytes could be read for the body.
var ErrTruncatedBody = errors.New("pdu: truncated body")

// MaxCommandLength bounds command_length against a clearly bogus header,
// so a garbled length field can't make the decoder allocate unbounded
// memory before the read fails on its own.
const MaxCommandLength = 64 * 1024

// Encode writes p's header and body to w as one PDU. seq and status are
// supplied by the caller (the session assigns the sequence number before
// encoding, per the correlation-precedes-write invariant in §3) rather
// than generated here, so Encode has no side effects beyond the write.
func Encode(w io.Writer, p PDU, seq uint32, status Status) error {
	body, err := p.MarshalBody()
	if err != nil {
		return fmt.Errorf("pdu: marshal %s body: %w", p.CommandID(), err)
	}
	length := HeaderLen + len(body)
	buf := make([]byte, length)
	binary.BigEndian.PutUint32(buf[0:4], uint32(length))
	binary.BigEndian.PutUint32(buf[4:8], uint32(p.CommandID()))
	binary.BigEndian.PutUint32(buf[8:12], uint32(status))
	binary.BigEndian.PutUint32(buf[12:16], seq)
	copy(buf[16:], body)
	_, err = w.Write(buf)
	return err
}

// Decode reads exactly one PDU from r: the HeaderLen-octet header (which
// starts with command_length), then exactly command_length-HeaderLen
// further octets, per §4.1. Any
// short read is fatal to the stream's framing and returned as
// ErrTruncatedHeader/ErrTruncatedBody so the caller can tear the session
// down rather than risk reading a slipped frame.
func Decode(r io.Reader) (Header, PDU, error) {
	var hdr [HeaderLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Header{}, nil, fmt.Errorf("%w: %v", ErrTruncatedHeader, err)
	}
	length := binary.BigEndian.Uint32(hdr[0:4])
	h := Header{
		CommandLength: length,
		CommandID:     CommandID(binary.BigEndian.Uint32(hdr[4:8])),
		CommandStatus: Status(binary.BigEndian.Uint32(hdr[8:12])),
		SequenceNum:   binary.BigEndian.Uint32(hdr[12:16]),
	}
	if length < HeaderLen {
		return h, nil, fmt.Errorf("pdu: impossible command_length %d < %d", length, HeaderLen)
	}
	if length > MaxCommandLength {
		return h, nil, fmt.Errorf("pdu: impossible command_length %d > max %d", length, MaxCommandLength)
	}
	bodyLen := int(length) - HeaderLen
	body := make([]byte, bodyLen)
	if bodyLen > 0 {
		if _, err := io.ReadFull(r, body); err != nil {
			return h, nil, fmt.Errorf("%w: %v", ErrTruncatedBody, err)
		}
	}
	p := New(h.CommandID)
	if _, ok := p.(*Raw); ok {
		_ = p.UnmarshalBody(body)
		return h, p, nil
	}
	if err := p.UnmarshalBody(body); err != nil {
		return h, p, fmt.Errorf("pdu: unmarshal %s body: %w", h.CommandID, err)
	}
	return h, p, nil
}
