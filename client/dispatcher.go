package client

import (
	"context"
	"fmt"

	"github.com/Ucell-first/smppclient/broker"
	"github.com/Ucell-first/smppclient/encoding"
	"github.com/Ucell-first/smppclient/pdu"
)

// dispatchLoop is the outbound half of the session: it drains jobs from
// the broker, applies admission control (rate limiter, then throttle
// handler), encodes the message body, records the correlation entry,
// and writes the frame — always before the write, never after, so a
// submit_sm_resp can never race ahead of its own correlation entry.
//
// stopping is closed when an orderly Stop has begun draining (§4.8): the
// loop finishes any job already in flight, then returns without pulling
// another one from the broker, leaving ctx itself live until the caller's
// drain deadline elapses.
func (c *Client) dispatchLoop(ctx context.Context, stopping <-chan struct{}, cancel context.CancelFunc) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-stopping:
			return
		default:
		}

		job, err := c.deps.Broker.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.deps.Logger.Error("dequeue_failed", nil, err)
			continue
		}

		if err := job.Validate(); err != nil {
			c.deps.Logger.Error("job_dropped", map[string]any{"log_id": job.LogID}, err)
			continue
		}

		switch job.SMPPCommand {
		case broker.CommandSubmitSM:
			c.dispatchSubmitSM(ctx, job)
		case broker.CommandEnquireLink:
			seq := c.deps.Sequencer.Next()
			if err := c.writeFrame(&pdu.EnquireLink{}, seq, pdu.StatusOK, broker.CommandEnquireLink, job.LogID, job.HookMetadata); err != nil {
				c.deps.Logger.Error("write_enquire_link_failed", map[string]any{"log_id": job.LogID}, err)
			}
		case broker.CommandUnbind:
			cancel()
			return
		default:
			c.deps.Logger.Error("unknown_job_command", map[string]any{
				"smpp_command": job.SMPPCommand, "log_id": job.LogID,
			}, fmt.Errorf("client: unsupported job command"))
		}
	}
}

func (c *Client) dispatchSubmitSM(ctx context.Context, job broker.Job) {
	if err := c.deps.RateLimiter.Acquire(ctx); err != nil {
		c.deps.Logger.Error("rate_limiter_acquire_failed", map[string]any{"log_id": job.LogID}, err)
		return
	}

	for !c.deps.Throttle.AllowRequest() {
		if !c.sleepOrDone(ctx, c.deps.Throttle.ThrottleDelay()) {
			return
		}
	}

	codec, ok := c.deps.Encodings.Lookup(job.Encoding)
	if !ok {
		c.deps.Logger.Error("unknown_encoding", map[string]any{"log_id": job.LogID, "encoding": job.Encoding}, fmt.Errorf("client: no encoder registered for %q", job.Encoding))
		return
	}
	policyName := job.CodecErrorPolicy
	if policyName == "" {
		policyName = c.cfg.CodecErrorPolicy
	}
	body, err := codec.Encode(job.ShortMessage, encoding.ErrorPolicy(policyName))
	if err != nil {
		c.deps.Logger.Error("encode_failed", map[string]any{"log_id": job.LogID}, err)
		return
	}

	req := &pdu.SubmitSm{
		ServiceType:          c.cfg.ServiceType,
		SourceAddrTON:        c.cfg.SourceAddrTON,
		SourceAddrNPI:        c.cfg.SourceAddrNPI,
		SourceAddr:           job.SourceAddr,
		DestAddrTON:          c.cfg.DestAddrTON,
		DestAddrNPI:          c.cfg.DestAddrNPI,
		DestinationAddr:      job.DestAddr,
		EsmClass:             c.cfg.EsmClass,
		ProtocolID:           c.cfg.ProtocolID,
		PriorityFlag:         c.cfg.PriorityFlag,
		ScheduleDeliveryTime: c.cfg.ScheduleDeliveryTime,
		ValidityPeriod:       c.cfg.ValidityPeriod,
		RegisteredDelivery:   c.cfg.RegisteredDelivery,
		ReplaceIfPresentFlag: c.cfg.ReplaceIfPresentFlag,
		DataCoding:           codec.DataCoding(),
		SmDefaultMsgID:       c.cfg.SmDefaultMsgID,
	}
	// Per §4.1, sm_length is a single octet: a body longer than 254 bytes
	// can't be carried in short_message and must go in the message_payload
	// TLV instead, with sm_length left at 0.
	if len(body) > 254 {
		req.Payload = body
	} else {
		req.ShortMessage = body
	}
	for tag, val := range job.RawTLVs {
		req.TLVs = append(req.TLVs, pdu.TLV{Tag: pdu.Tag(tag), Value: val})
	}

	seq := c.deps.Sequencer.Next()
	c.deps.Correlater.Put(seq, job.LogID, job.HookMetadata)

	if err := c.writeFrame(req, seq, pdu.StatusOK, broker.CommandSubmitSM, job.LogID, job.HookMetadata); err != nil {
		c.deps.Logger.Error("write_submit_sm_failed", map[string]any{"log_id": job.LogID}, err)
	}
}
