package client

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/Ucell-first/smppclient/broker"
	"github.com/Ucell-first/smppclient/broker/memory"
	"github.com/Ucell-first/smppclient/config"
	"github.com/Ucell-first/smppclient/hook"
	"github.com/Ucell-first/smppclient/logging"
	"github.com/Ucell-first/smppclient/pdu"
)

func testConfig() *config.Config {
	return &config.Config{
		SMSCHost:            "127.0.0.1",
		SMSCPort:            2775,
		SystemID:            "testsystem",
		Password:            "secret",
		InterfaceVersion:    0x34,
		ServiceType:         "CMT",
		SourceAddrTON:       1,
		SourceAddrNPI:       1,
		DestAddrTON:         1,
		DestAddrNPI:         1,
		EsmClass:            8,
		RegisteredDelivery:  1,
		Encoding:            "gsm0338",
		CodecErrorPolicy:    "strict",
		EnquireLinkInterval: time.Hour,
		SocketTimeout:       5 * time.Second,
		DrainDuration:       time.Second,
		SendRate:            1000,
		MaxTokens:           1000,
		DelayForTokens:      5 * time.Second,
		SamplingPeriod:      180 * time.Second,
		SampleSize:          60,
		DenyRequestAt:       50,
		CorrelaterTTL:       time.Minute,
		ClientID:            "test-client",
	}
}

// newPipedClient wires c's socket to a net.Pipe, returning the server-side
// end that a test goroutine can drive as the SMSC.
func newPipedClient(t *testing.T, deps Deps) (*Client, net.Conn) {
	t.Helper()
	clientSide, serverSide := net.Pipe()
	c := New(testConfig(), deps)
	c.dialFunc = func(ctx context.Context) (net.Conn, error) {
		return clientSide, nil
	}
	return c, serverSide
}

func readFrame(t *testing.T, conn net.Conn) (pdu.Header, pdu.PDU) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	h, p, err := pdu.Decode(conn)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return h, p
}

func writeFrame(t *testing.T, conn net.Conn, p pdu.PDU, seq uint32, status pdu.Status) {
	t.Helper()
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	var buf bytes.Buffer
	if err := pdu.Encode(&buf, p, seq, status); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := conn.Write(buf.Bytes()); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestBindThenGracefulUnbind(t *testing.T) {
	c, server := newPipedClient(t, Deps{
		Broker: memory.New(1),
		Logger: logging.Nop{},
	})

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	h, bindReq := readFrame(t, server)
	if h.CommandID != pdu.BindTransceiverID {
		t.Fatalf("expected bind_transceiver, got %s", h.CommandID)
	}
	bind := bindReq.(*pdu.BindTransceiver)
	if bind.SystemID != "testsystem" {
		t.Errorf("expected system_id testsystem, got %q", bind.SystemID)
	}
	writeFrame(t, server, &pdu.BindTransceiverResp{SystemID: "smsc"}, h.SequenceNum, pdu.StatusOK)

	waitForState(t, c, StateBoundTRx)

	c.Stop()

	h2, _ := readFrame(t, server)
	if h2.CommandID != pdu.UnbindID {
		t.Fatalf("expected unbind, got %s", h2.CommandID)
	}
	writeFrame(t, server, &pdu.UnbindResp{}, h2.SequenceNum, pdu.StatusOK)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for Run to return")
	}
}

func TestBindRejectedReturnsError(t *testing.T) {
	c, server := newPipedClient(t, Deps{
		Broker: memory.New(1),
		Logger: logging.Nop{},
	})

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	h, _ := readFrame(t, server)
	writeFrame(t, server, &pdu.BindTransceiverResp{}, h.SequenceNum, pdu.StatusInvPaswd)

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected bind error, got nil")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for Run to return")
	}
}

func TestSubmitSmDispatchAndCorrelatesResponse(t *testing.T) {
	b := memory.New(1)
	fromSMSC := make(chan uint32, 1)

	c, server := newPipedClient(t, Deps{
		Broker: b,
		Logger: logging.Nop{},
		Hooks: hook.Hooks{
			FromSMSC: func(ctx context.Context, smppCommand, logID string, hookMetadata map[string]string, status uint32, raw []byte) {
				fromSMSC <- status
			},
		},
	})

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()
	defer func() {
		c.Stop()
		<-done
	}()

	h, _ := readFrame(t, server)
	writeFrame(t, server, &pdu.BindTransceiverResp{SystemID: "smsc"}, h.SequenceNum, pdu.StatusOK)
	waitForState(t, c, StateBoundTRx)

	if err := b.Enqueue(context.Background(), broker.Job{
		Version:      broker.ProtocolVersion,
		SMPPCommand:  broker.CommandSubmitSM,
		LogID:        "log-1",
		ShortMessage: "hello",
		SourceAddr:   "2547000000",
		DestAddr:     "2547111111",
	}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	h2, submitted := readFrame(t, server)
	if h2.CommandID != pdu.SubmitSmID {
		t.Fatalf("expected submit_sm, got %s", h2.CommandID)
	}
	sm := submitted.(*pdu.SubmitSm)
	// The job names no encoding, so the default gsm0338 codec packs
	// "hello" into GSM-7 septets.
	if want := []byte{0xE8, 0x32, 0x9B, 0xFD, 0x06}; !bytes.Equal(sm.ShortMessage, want) {
		t.Errorf("expected short_message % X (\"hello\" packed as GSM-7), got % X", want, sm.ShortMessage)
	}
	writeFrame(t, server, &pdu.SubmitSmResp{MessageID: "smsc-msg-1"}, h2.SequenceNum, pdu.StatusOK)

	select {
	case status := <-fromSMSC:
		if status != uint32(pdu.StatusOK) {
			t.Errorf("expected status OK, got %d", status)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for from_smsc hook")
	}
}

func TestDeliverSmCorrelatesByReceiptedMessageID(t *testing.T) {
	b := memory.New(1)
	var gotLogID string
	fromSMSC := make(chan string, 1)

	c, server := newPipedClient(t, Deps{
		Broker: b,
		Logger: logging.Nop{},
		Hooks: hook.Hooks{
			FromSMSC: func(ctx context.Context, smppCommand, logID string, hookMetadata map[string]string, status uint32, raw []byte) {
				if smppCommand == "deliver_sm" {
					gotLogID = logID
					fromSMSC <- logID
				}
			},
		},
	})

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()
	defer func() {
		c.Stop()
		<-done
	}()

	h, _ := readFrame(t, server)
	writeFrame(t, server, &pdu.BindTransceiverResp{SystemID: "smsc"}, h.SequenceNum, pdu.StatusOK)
	waitForState(t, c, StateBoundTRx)

	if err := b.Enqueue(context.Background(), broker.Job{
		Version:      broker.ProtocolVersion,
		SMPPCommand:  broker.CommandSubmitSM,
		LogID:        "log-42",
		ShortMessage: "hi",
		SourceAddr:   "2547000000",
		DestAddr:     "2547111111",
	}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	h2, _ := readFrame(t, server)
	writeFrame(t, server, &pdu.SubmitSmResp{MessageID: "smsc-msg-99"}, h2.SequenceNum, pdu.StatusOK)

	deliver := &pdu.DeliverSm{
		SourceAddr:      "2547111111",
		DestinationAddr: "2547000000",
		TLVs: []pdu.TLV{
			{Tag: pdu.TagReceiptedMessageID, Value: []byte("smsc-msg-99\x00")},
		},
	}
	writeFrame(t, server, deliver, 999, pdu.StatusOK)

	h3, _ := readFrame(t, server)
	if h3.CommandID != pdu.DeliverSmRespID {
		t.Fatalf("expected deliver_sm_resp, got %s", h3.CommandID)
	}
	if h3.SequenceNum != 999 {
		t.Errorf("expected deliver_sm_resp to echo sequence 999, got %d", h3.SequenceNum)
	}

	select {
	case <-fromSMSC:
		if gotLogID != "log-42" {
			t.Errorf("expected correlated log_id log-42, got %q", gotLogID)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for deliver_sm hook")
	}
}

func waitForState(t *testing.T, c *Client, want State) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if c.State() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for state %s, currently %s", want, c.State())
}
