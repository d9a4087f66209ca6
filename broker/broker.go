// Package broker defines the outbound job contract (C7) and the
// OutboundJob schema (§3/§6). Concrete brokers (memory, Redis, RabbitMQ)
// live in subpackages; the session only depends on the Broker interface
// declared here.
package broker

import (
	"context"
	"fmt"
)

// Command names recognized in OutboundJob.SMPPCommand.
const (
	CommandSubmitSM    = "submit_sm"
	CommandEnquireLink = "enquire_link"
	CommandUnbind      = "unbind"
)

// ProtocolVersion is the only OutboundJob schema version this client
// understands.
const ProtocolVersion = "1"

// Job is a broker-dequeued outbound request, matching the OutboundJob
// schema in §3. Only Version, SMPPCommand, and LogID are universally
// required; submit_sm jobs additionally require ShortMessage,
// SourceAddr, and DestinationAddr.
type Job struct {
	Version          string            `json:"version" yaml:"version"`
	SMPPCommand      string            `json:"smpp_command" yaml:"smpp_command"`
	LogID            string            `json:"log_id" yaml:"log_id"`
	ShortMessage     string            `json:"short_message,omitempty" yaml:"short_message,omitempty"`
	SourceAddr       string            `json:"source_addr,omitempty" yaml:"source_addr,omitempty"`
	DestAddr         string            `json:"destination_addr,omitempty" yaml:"destination_addr,omitempty"`
	HookMetadata     map[string]string `json:"hook_metadata,omitempty" yaml:"hook_metadata,omitempty"`
	Encoding         string            `json:"encoding,omitempty" yaml:"encoding,omitempty"`
	CodecErrorPolicy string            `json:"codec_error_policy,omitempty" yaml:"codec_error_policy,omitempty"`

	// RawTLVs lets a caller attach additional TLV parameters to a
	// submit_sm that the session's defaults don't cover, passed through
	// verbatim per §3.
	RawTLVs map[uint16][]byte `json:"raw_tlvs,omitempty" yaml:"raw_tlvs,omitempty"`
}

// Validate checks the universally required fields and, for submit_sm,
// the additional required fields named in §6.
func (j Job) Validate() error {
	if j.Version != ProtocolVersion {
		return fmt.Errorf("broker: unsupported protocol_version %q", j.Version)
	}
	if j.LogID == "" {
		return fmt.Errorf("broker: job missing log_id")
	}
	switch j.SMPPCommand {
	case CommandSubmitSM:
		if j.ShortMessage == "" || j.SourceAddr == "" || j.DestAddr == "" {
			return fmt.Errorf("broker: submit_sm job %s missing short_message/source_addr/destination_addr", j.LogID)
		}
	case CommandEnquireLink, CommandUnbind:
		// no additional fields required
	default:
		return fmt.Errorf("broker: job %s has unsupported smpp_command %q", j.LogID, j.SMPPCommand)
	}
	return nil
}

// Broker is the contract the dispatcher loop drains. Enqueue is used by
// the application; the session writes its enquire_link_resp and
// deliver_sm_resp replies straight to the socket, not through the broker.
// Dequeue may block until a job is available.
type Broker interface {
	Enqueue(ctx context.Context, job Job) error
	Dequeue(ctx context.Context) (Job, error)
}
