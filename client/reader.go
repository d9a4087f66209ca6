package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/Ucell-first/smppclient/broker"
	"github.com/Ucell-first/smppclient/hook"
	"github.com/Ucell-first/smppclient/pdu"
)

// readLoop is the inbound half of the session: it owns the socket's read
// side exclusively (§5's second invariant), decodes one frame at a time,
// and dispatches by command ID. Any read error tears the session down by
// canceling ctx; the caller (serve) then attempts a best-effort unbind.
func (c *Client) readLoop(ctx context.Context, cancel context.CancelFunc) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			cancel()
			return
		}

		// A generous read deadline bounds how long a dead socket can sit
		// silent before the prober's own liveness check would have fired
		// anyway; it mainly exists so this loop can observe ctx.Done.
		_ = conn.SetReadDeadline(time.Now().Add(2 * c.cfg.EnquireLinkInterval))
		// serve expires the deadline once ctx is canceled; re-check so a
		// cancellation just before the line above is not missed.
		if ctx.Err() != nil {
			return
		}
		// pdu.Decode only returns the parsed struct; the from_smsc hook's
		// contract (§4.6) also promises the raw frame bytes, so capture
		// everything Decode reads off the wire via a tee.
		var raw bytes.Buffer
		h, p, err := pdu.Decode(io.TeeReader(conn, &raw))
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				cancel()
				return
			}
			c.deps.Logger.Error("decode_failed", nil, err)
			cancel()
			return
		}

		c.noteLiveness()

		switch h.CommandID {
		case pdu.EnquireLinkID:
			c.replyEnquireLink(h.SequenceNum)
		case pdu.EnquireLinkRespID:
			// liveness already noted above; nothing else to do.
		case pdu.BindTransceiverRespID:
			// Only expected during bind(), which reads it directly.
		case pdu.SubmitSmRespID:
			c.handleSubmitSmResp(h, p, raw.Bytes())
		case pdu.DeliverSmID:
			c.handleDeliverSm(ctx, h, p, raw.Bytes())
		case pdu.UnbindID:
			c.replyUnbind(h.SequenceNum)
			cancel()
			return
		case pdu.UnbindRespID:
			// Part of our own graceful teardown; nothing further to do.
		case pdu.GenericNackID:
			c.deps.Logger.Error("generic_nack_received", map[string]any{"seq": h.SequenceNum}, h.CommandStatus)
		default:
			c.replyGenericNack(h.SequenceNum)
		}
	}
}

func (c *Client) noteLiveness() {
	select {
	case c.liveness <- struct{}{}:
	default:
	}
}

func (c *Client) replyEnquireLink(seq uint32) {
	if err := c.writeFrame(&pdu.EnquireLinkResp{}, seq, pdu.StatusOK, "enquire_link_resp", "", nil); err != nil {
		c.deps.Logger.Error("write_enquire_link_resp_failed", nil, err)
	}
}

func (c *Client) replyUnbind(seq uint32) {
	if err := c.writeFrame(&pdu.UnbindResp{}, seq, pdu.StatusOK, "unbind_resp", "", nil); err != nil {
		c.deps.Logger.Error("write_unbind_resp_failed", nil, err)
	}
}

func (c *Client) replyGenericNack(seq uint32) {
	if err := c.writeFrame(&pdu.GenericNack{}, seq, pdu.StatusInvCmdID, "generic_nack", "", nil); err != nil {
		c.deps.Logger.Error("write_generic_nack_failed", nil, err)
	}
}

func (c *Client) handleSubmitSmResp(h pdu.Header, p pdu.PDU, raw []byte) {
	entry, ok := c.deps.Correlater.Get(h.SequenceNum)
	if !ok {
		c.deps.Logger.Error("submit_sm_resp_uncorrelated", map[string]any{"seq": h.SequenceNum}, fmt.Errorf("client: no correlation entry for seq %d", h.SequenceNum))
		return
	}

	if h.CommandStatus.IsThrottle() {
		c.deps.Throttle.Throttled()
		if c.deps.Metrics != nil {
			c.deps.Metrics.ThrottledTotal.Inc()
		}
	} else {
		c.deps.Throttle.NotThrottled()
	}

	if resp, ok := p.(*pdu.SubmitSmResp); ok && resp.MessageID != "" {
		c.deps.Correlater.PutMessageID(resp.MessageID, entry.LogID, entry.HookMetadata)
	}

	if c.deps.Hooks.FromSMSC != nil {
		if r := hook.Run(func() {
			c.deps.Hooks.FromSMSC(context.Background(), broker.CommandSubmitSM, entry.LogID, entry.HookMetadata, uint32(h.CommandStatus), raw)
		}); r != nil {
			c.deps.Logger.Error("hook_panic", map[string]any{"hook": "from_smsc"}, fmt.Errorf("%v", r))
		}
	}
}

func (c *Client) handleDeliverSm(ctx context.Context, h pdu.Header, p pdu.PDU, raw []byte) {
	deliver, _ := p.(*pdu.DeliverSm)
	logID, hookMeta := "", map[string]string(nil)
	if deliver != nil {
		if messageID, ok := deliver.ReceiptedMessageID(); ok {
			if entry, found := c.deps.Correlater.GetByMessageID(messageID); found {
				logID, hookMeta = entry.LogID, entry.HookMetadata
			}
		}
	}

	if c.deps.Hooks.FromSMSC != nil {
		if r := hook.Run(func() {
			c.deps.Hooks.FromSMSC(context.Background(), "deliver_sm", logID, hookMeta, uint32(h.CommandStatus), raw)
		}); r != nil {
			c.deps.Logger.Error("hook_panic", map[string]any{"hook": "from_smsc"}, fmt.Errorf("%v", r))
		}
	}

	if err := c.writeFrame(&pdu.DeliverSmResp{}, h.SequenceNum, pdu.StatusOK, "deliver_sm_resp", logID, hookMeta); err != nil {
		c.deps.Logger.Error("write_deliver_sm_resp_failed", map[string]any{"log_id": logID}, err)
	}
}
