// Package pdu implements the SMPP v3.4 wire format: PDU header framing,
// the mandatory body layouts of the operations this client supports, and
// optional TLV parameters.
package pdu

import "fmt"

// CommandID identifies an SMPP operation.
type CommandID uint32

// Supported command IDs. Requests occupy 0x00000000-0x000001FF, responses
// carry the same low bits with the 0x80000000 bit set.
const (
	GenericNackID         CommandID = 0x80000000
	BindTransceiverID     CommandID = 0x00000009
	BindTransceiverRespID CommandID = 0x80000009
	UnbindID              CommandID = 0x00000006
	UnbindRespID          CommandID = 0x80000006
	EnquireLinkID         CommandID = 0x00000015
	EnquireLinkRespID     CommandID = 0x80000015
	SubmitSmID            CommandID = 0x00000004
	SubmitSmRespID        CommandID = 0x80000004
	DeliverSmID           CommandID = 0x00000005
	DeliverSmRespID       CommandID = 0x80000005
)

var idNames = map[CommandID]string{
	GenericNackID:         "generic_nack",
	BindTransceiverID:     "bind_transceiver",
	BindTransceiverRespID: "bind_transceiver_resp",
	UnbindID:              "unbind",
	UnbindRespID:          "unbind_resp",
	EnquireLinkID:         "enquire_link",
	EnquireLinkRespID:     "enquire_link_resp",
	SubmitSmID:            "submit_sm",
	SubmitSmRespID:        "submit_sm_resp",
	DeliverSmID:           "deliver_sm",
	DeliverSmRespID:       "deliver_sm_resp",
}

func (id CommandID) String() string {
	if s, ok := idNames[id]; ok {
		return s
	}
	return fmt.Sprintf("unknown(0x%08X)", uint32(id))
}

// IsResponse reports whether id is a response command (bit 31 set).
func (id CommandID) IsResponse() bool {
	return id&0x80000000 != 0
}

// ResponseID returns the response command ID that pairs with a request ID.
func (id CommandID) ResponseID() CommandID {
	return id | 0x80000000
}

// HeaderLen is the fixed SMPP PDU header length in octets.
const HeaderLen = 16

// Header is the four mandatory fields present in every PDU.
type Header struct {
	CommandLength uint32
	CommandID     CommandID
	CommandStatus Status
	SequenceNum   uint32
}
