package pdu

// PDU is implemented by every supported SMPP body. Codec (C1) dispatches
// on CommandID to pick the concrete type; MarshalBody/UnmarshalBody move
// between the wire body and struct fields. Header framing is handled
// separately by Encode/Decode in codec.go.
type PDU interface {
	CommandID() CommandID
	MarshalBody() ([]byte, error)
	UnmarshalBody([]byte) error
}

// New returns the zero value of the PDU type registered for id, or a Raw
// placeholder for anything this client doesn't model — letting the
// session emit generic_nack instead of failing to decode entirely.
func New(id CommandID) PDU {
	switch id {
	case BindTransceiverID:
		return &BindTransceiver{}
	case BindTransceiverRespID:
		return &BindTransceiverResp{}
	case UnbindID:
		return &Unbind{}
	case UnbindRespID:
		return &UnbindResp{}
	case EnquireLinkID:
		return &EnquireLink{}
	case EnquireLinkRespID:
		return &EnquireLinkResp{}
	case SubmitSmID:
		return &SubmitSm{}
	case SubmitSmRespID:
		return &SubmitSmResp{}
	case DeliverSmID:
		return &DeliverSm{}
	case DeliverSmRespID:
		return &DeliverSmResp{}
	case GenericNackID:
		return &GenericNack{}
	default:
		return &Raw{id: id}
	}
}

// Raw is returned by Decode when command_id is not one this client
// models. The header parsed cleanly; the body is kept verbatim so the
// session can log it and answer with generic_nack, per §4.1.
type Raw struct {
	id   CommandID
	Body []byte
}

func (p *Raw) CommandID() CommandID { return p.id }

func (p *Raw) MarshalBody() ([]byte, error) { return p.Body, nil }

func (p *Raw) UnmarshalBody(b []byte) error {
	p.Body = append([]byte(nil), b...)
	return nil
}

// GenericNack is sent when a PDU's header or body cannot be parsed, or in
// reply to an unrecognized command_id.
type GenericNack struct{}

func (p *GenericNack) CommandID() CommandID { return GenericNackID }

func (p *GenericNack) MarshalBody() ([]byte, error) { return nil, nil }

func (p *GenericNack) UnmarshalBody([]byte) error { return nil }

// BindTransceiver opens a session able to submit and receive messages.
type BindTransceiver struct {
	SystemID         string
	Password         string
	SystemType       string
	InterfaceVersion byte
	AddrTON          byte
	AddrNPI          byte
	AddressRange     string
}

func (p *BindTransceiver) CommandID() CommandID { return BindTransceiverID }

func (p *BindTransceiver) MarshalBody() ([]byte, error) {
	w := &bodyWriter{}
	w.cstring(p.SystemID)
	w.cstring(p.Password)
	w.cstring(p.SystemType)
	w.byte(p.InterfaceVersion)
	w.byte(p.AddrTON)
	w.byte(p.AddrNPI)
	w.cstring(p.AddressRange)
	return w.bytesOf(), nil
}

func (p *BindTransceiver) UnmarshalBody(b []byte) error {
	r := newBodyReader(b)
	var err error
	if p.SystemID, err = r.cstring(); err != nil {
		return err
	}
	if p.Password, err = r.cstring(); err != nil {
		return err
	}
	if p.SystemType, err = r.cstring(); err != nil {
		return err
	}
	if p.InterfaceVersion, err = r.byte(); err != nil {
		return err
	}
	if p.AddrTON, err = r.byte(); err != nil {
		return err
	}
	if p.AddrNPI, err = r.byte(); err != nil {
		return err
	}
	if p.AddressRange, err = r.cstring(); err != nil {
		return err
	}
	return nil
}

// BindTransceiverResp acknowledges a bind_transceiver request.
type BindTransceiverResp struct {
	SystemID string
}

func (p *BindTransceiverResp) CommandID() CommandID { return BindTransceiverRespID }

func (p *BindTransceiverResp) MarshalBody() ([]byte, error) {
	w := &bodyWriter{}
	w.cstring(p.SystemID)
	return w.bytesOf(), nil
}

func (p *BindTransceiverResp) UnmarshalBody(b []byte) error {
	if len(b) == 0 {
		p.SystemID = ""
		return nil
	}
	r := newBodyReader(b)
	var err error
	p.SystemID, err = r.cstring()
	return err
}

// Unbind requests an orderly session close. Body is empty.
type Unbind struct{}

func (p *Unbind) CommandID() CommandID         { return UnbindID }
func (p *Unbind) MarshalBody() ([]byte, error) { return nil, nil }
func (p *Unbind) UnmarshalBody([]byte) error   { return nil }

// UnbindResp acknowledges unbind. Body is empty.
type UnbindResp struct{}

func (p *UnbindResp) CommandID() CommandID         { return UnbindRespID }
func (p *UnbindResp) MarshalBody() ([]byte, error) { return nil, nil }
func (p *UnbindResp) UnmarshalBody([]byte) error   { return nil }

// EnquireLink is a liveness probe. Body is empty.
type EnquireLink struct{}

func (p *EnquireLink) CommandID() CommandID         { return EnquireLinkID }
func (p *EnquireLink) MarshalBody() ([]byte, error) { return nil, nil }
func (p *EnquireLink) UnmarshalBody([]byte) error   { return nil }

// EnquireLinkResp acknowledges enquire_link. Body is empty.
type EnquireLinkResp struct{}

func (p *EnquireLinkResp) CommandID() CommandID         { return EnquireLinkRespID }
func (p *EnquireLinkResp) MarshalBody() ([]byte, error) { return nil, nil }
func (p *EnquireLinkResp) UnmarshalBody([]byte) error   { return nil }

// SubmitSm submits one short message for delivery to the destination
// address. ShortMessage is already encoded to octets by the caller (the
// session applies the job's chosen text encoding before constructing
// this PDU); when len(ShortMessage) > 254 the caller must instead set
// Payload and leave ShortMessage nil, per §4.1.
type SubmitSm struct {
	ServiceType          string
	SourceAddrTON        byte
	SourceAddrNPI        byte
	SourceAddr           string
	DestAddrTON          byte
	DestAddrNPI          byte
	DestinationAddr      string
	EsmClass             byte
	ProtocolID           byte
	PriorityFlag         byte
	ScheduleDeliveryTime string
	ValidityPeriod       string
	RegisteredDelivery   byte
	ReplaceIfPresentFlag byte
	DataCoding           byte
	SmDefaultMsgID       byte
	ShortMessage         []byte
	Payload              []byte // carried as TagMessagePayload when set
	TLVs                 []TLV  // additional caller-supplied TLVs, passed through verbatim
}

func (p *SubmitSm) CommandID() CommandID { return SubmitSmID }

func (p *SubmitSm) MarshalBody() ([]byte, error) {
	w := &bodyWriter{}
	w.cstring(p.ServiceType)
	w.byte(p.SourceAddrTON)
	w.byte(p.SourceAddrNPI)
	w.cstring(p.SourceAddr)
	w.byte(p.DestAddrTON)
	w.byte(p.DestAddrNPI)
	w.cstring(p.DestinationAddr)
	w.byte(p.EsmClass)
	w.byte(p.ProtocolID)
	w.byte(p.PriorityFlag)
	w.cstring(p.ScheduleDeliveryTime)
	w.cstring(p.ValidityPeriod)
	w.byte(p.RegisteredDelivery)
	w.byte(p.ReplaceIfPresentFlag)
	w.byte(p.DataCoding)
	w.byte(p.SmDefaultMsgID)

	tlvs := p.TLVs
	if len(p.Payload) > 0 {
		w.byte(0)
		tlvs = append(append([]TLV(nil), tlvs...), TLV{Tag: TagMessagePayload, Value: p.Payload})
	} else {
		w.byte(byte(len(p.ShortMessage)))
		w.bytes(p.ShortMessage)
	}
	body := w.bytesOf()
	body = append(body, encodeTLVs(tlvs)...)
	return body, nil
}

func (p *SubmitSm) UnmarshalBody(b []byte) error {
	r := newBodyReader(b)
	var err error
	if p.ServiceType, err = r.cstring(); err != nil {
		return err
	}
	if p.SourceAddrTON, err = r.byte(); err != nil {
		return err
	}
	if p.SourceAddrNPI, err = r.byte(); err != nil {
		return err
	}
	if p.SourceAddr, err = r.cstring(); err != nil {
		return err
	}
	if p.DestAddrTON, err = r.byte(); err != nil {
		return err
	}
	if p.DestAddrNPI, err = r.byte(); err != nil {
		return err
	}
	if p.DestinationAddr, err = r.cstring(); err != nil {
		return err
	}
	if p.EsmClass, err = r.byte(); err != nil {
		return err
	}
	if p.ProtocolID, err = r.byte(); err != nil {
		return err
	}
	if p.PriorityFlag, err = r.byte(); err != nil {
		return err
	}
	if p.ScheduleDeliveryTime, err = r.cstring(); err != nil {
		return err
	}
	if p.ValidityPeriod, err = r.cstring(); err != nil {
		return err
	}
	if p.RegisteredDelivery, err = r.byte(); err != nil {
		return err
	}
	if p.ReplaceIfPresentFlag, err = r.byte(); err != nil {
		return err
	}
	if p.DataCoding, err = r.byte(); err != nil {
		return err
	}
	if p.SmDefaultMsgID, err = r.byte(); err != nil {
		return err
	}
	smLength, err := r.byte()
	if err != nil {
		return err
	}
	if p.ShortMessage, err = r.bytes(int(smLength)); err != nil {
		return err
	}
	tlvs, err := decodeTLVs(r.remainder())
	if err != nil {
		return err
	}
	p.TLVs = tlvs
	if payload, ok := Find(tlvs, TagMessagePayload); ok {
		p.Payload = payload.Value
	}
	return nil
}

// SubmitSmResp returns the SMSC-assigned message_id for a submit_sm.
type SubmitSmResp struct {
	MessageID string
}

func (p *SubmitSmResp) CommandID() CommandID { return SubmitSmRespID }

func (p *SubmitSmResp) MarshalBody() ([]byte, error) {
	w := &bodyWriter{}
	w.cstring(p.MessageID)
	return w.bytesOf(), nil
}

func (p *SubmitSmResp) UnmarshalBody(b []byte) error {
	if len(b) == 0 {
		p.MessageID = ""
		return nil
	}
	r := newBodyReader(b)
	var err error
	p.MessageID, err = r.cstring()
	return err
}

// DeliverSm mirrors SubmitSm's field layout; the SMSC uses it both for
// normal mobile-originated messages and delivery receipts, the latter
// identified by a TagReceiptedMessageID TLV.
type DeliverSm struct {
	ServiceType          string
	SourceAddrTON        byte
	SourceAddrNPI        byte
	SourceAddr           string
	DestAddrTON          byte
	DestAddrNPI          byte
	DestinationAddr      string
	EsmClass             byte
	ProtocolID           byte
	PriorityFlag         byte
	ScheduleDeliveryTime string
	ValidityPeriod       string
	RegisteredDelivery   byte
	ReplaceIfPresentFlag byte
	DataCoding           byte
	SmDefaultMsgID       byte
	ShortMessage         []byte
	TLVs                 []TLV
}

func (p *DeliverSm) CommandID() CommandID { return DeliverSmID }

func (p *DeliverSm) MarshalBody() ([]byte, error) {
	w := &bodyWriter{}
	w.cstring(p.ServiceType)
	w.byte(p.SourceAddrTON)
	w.byte(p.SourceAddrNPI)
	w.cstring(p.SourceAddr)
	w.byte(p.DestAddrTON)
	w.byte(p.DestAddrNPI)
	w.cstring(p.DestinationAddr)
	w.byte(p.EsmClass)
	w.byte(p.ProtocolID)
	w.byte(p.PriorityFlag)
	w.cstring(p.ScheduleDeliveryTime)
	w.cstring(p.ValidityPeriod)
	w.byte(p.RegisteredDelivery)
	w.byte(p.ReplaceIfPresentFlag)
	w.byte(p.DataCoding)
	w.byte(p.SmDefaultMsgID)
	w.byte(byte(len(p.ShortMessage)))
	w.bytes(p.ShortMessage)
	body := w.bytesOf()
	body = append(body, encodeTLVs(p.TLVs)...)
	return body, nil
}

func (p *DeliverSm) UnmarshalBody(b []byte) error {
	r := newBodyReader(b)
	var err error
	if p.ServiceType, err = r.cstring(); err != nil {
		return err
	}
	if p.SourceAddrTON, err = r.byte(); err != nil {
		return err
	}
	if p.SourceAddrNPI, err = r.byte(); err != nil {
		return err
	}
	if p.SourceAddr, err = r.cstring(); err != nil {
		return err
	}
	if p.DestAddrTON, err = r.byte(); err != nil {
		return err
	}
	if p.DestAddrNPI, err = r.byte(); err != nil {
		return err
	}
	if p.DestinationAddr, err = r.cstring(); err != nil {
		return err
	}
	if p.EsmClass, err = r.byte(); err != nil {
		return err
	}
	if p.ProtocolID, err = r.byte(); err != nil {
		return err
	}
	if p.PriorityFlag, err = r.byte(); err != nil {
		return err
	}
	if p.ScheduleDeliveryTime, err = r.cstring(); err != nil {
		return err
	}
	if p.ValidityPeriod, err = r.cstring(); err != nil {
		return err
	}
	if p.RegisteredDelivery, err = r.byte(); err != nil {
		return err
	}
	if p.ReplaceIfPresentFlag, err = r.byte(); err != nil {
		return err
	}
	if p.DataCoding, err = r.byte(); err != nil {
		return err
	}
	if p.SmDefaultMsgID, err = r.byte(); err != nil {
		return err
	}
	smLength, err := r.byte()
	if err != nil {
		return err
	}
	if p.ShortMessage, err = r.bytes(int(smLength)); err != nil {
		return err
	}
	p.TLVs, err = decodeTLVs(r.remainder())
	return err
}

// ReceiptedMessageID extracts the TagReceiptedMessageID TLV carried by a
// delivery receipt, if present. The field is specified as a C-octet
// string, so a trailing NUL (if the SMSC included one) is stripped.
func (p *DeliverSm) ReceiptedMessageID() (string, bool) {
	t, ok := Find(p.TLVs, TagReceiptedMessageID)
	if !ok {
		return "", false
	}
	v := t.Value
	if n := len(v); n > 0 && v[n-1] == 0 {
		v = v[:n-1]
	}
	return string(v), true
}

// DeliverSmResp acknowledges deliver_sm. Body is empty.
type DeliverSmResp struct{}

func (p *DeliverSmResp) CommandID() CommandID         { return DeliverSmRespID }
func (p *DeliverSmResp) MarshalBody() ([]byte, error) { return nil, nil }
func (p *DeliverSmResp) UnmarshalBody([]byte) error   { return nil }
