// Package config loads and validates the client configuration recognized
// options named in §6: connection parameters, submit_sm defaults, and
// the pluggable-dependency knobs (sequence generator, rate limiter,
// throttle handler, hook, logger, correlater, broker) are supplied by
// the embedding program, not by this package, since they're interfaces
// rather than serializable values.
package config

import (
	"crypto/rand"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds every recognized option from §6. Fields with a non-zero
// default below are filled in by applyDefaults rather than by struct
// tags, since several defaults are derived (e.g. client_id) or shared
// across fields (max_tokens defaulting to send_rate).
type Config struct {
	SMSCHost string `yaml:"smsc_host" validate:"required"`
	SMSCPort int    `yaml:"smsc_port" validate:"required"`
	SystemID string `yaml:"system_id" validate:"required"`
	Password string `yaml:"password" validate:"required"`

	UseTLS           bool   `yaml:"use_tls"`
	SystemType       string `yaml:"system_type"`
	AddrTON          byte   `yaml:"addr_ton"`
	AddrNPI          byte   `yaml:"addr_npi"`
	AddressRange     string `yaml:"address_range"`
	InterfaceVersion byte   `yaml:"interface_version"`

	ServiceType          string `yaml:"service_type"`
	SourceAddrTON        byte   `yaml:"source_addr_ton"`
	SourceAddrNPI        byte   `yaml:"source_addr_npi"`
	DestAddrTON          byte   `yaml:"dest_addr_ton"`
	DestAddrNPI          byte   `yaml:"dest_addr_npi"`
	EsmClass             byte   `yaml:"esm_class"`
	ProtocolID           byte   `yaml:"protocol_id"`
	PriorityFlag         byte   `yaml:"priority_flag"`
	ScheduleDeliveryTime string `yaml:"schedule_delivery_time"`
	ValidityPeriod       string `yaml:"validity_period"`
	RegisteredDelivery   byte   `yaml:"registered_delivery"`
	ReplaceIfPresentFlag byte   `yaml:"replace_if_present_flag"`
	SmDefaultMsgID       byte   `yaml:"sm_default_msg_id"`

	Encoding         string `yaml:"encoding"`
	CodecErrorPolicy string `yaml:"codec_error_policy" validate:"omitempty,oneof=strict ignore replace"`

	EnquireLinkInterval time.Duration `yaml:"enquire_link_interval"`
	SocketTimeout       time.Duration `yaml:"socket_timeout"`
	DrainDuration       time.Duration `yaml:"drain_duration"`

	LogMetadata map[string]string `yaml:"log_metadata"`
	ClientID    string            `yaml:"client_id"`

	// AutoReconnect enables the CONNECTING re-entry the state machine
	// allows from UNBINDING→CLOSED (§4.8).
	AutoReconnect bool `yaml:"auto_reconnect"`

	SendRate       float64       `yaml:"send_rate"`
	MaxTokens      float64       `yaml:"max_tokens"`
	DelayForTokens time.Duration `yaml:"delay_for_tokens"`

	SamplingPeriod time.Duration `yaml:"sampling_period"`
	SampleSize     int           `yaml:"sample_size"`
	DenyRequestAt  float64       `yaml:"deny_request_at"`

	CorrelaterTTL time.Duration `yaml:"correlater_ttl"`
}

// Load reads path as YAML, applies every default from §6, and validates
// the mandatory fields.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	c.applyDefaults()
	if err := validator.New().Struct(&c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.InterfaceVersion == 0 {
		c.InterfaceVersion = 0x34
	}
	if c.ServiceType == "" {
		c.ServiceType = "CMT"
	}
	if c.SourceAddrTON == 0 {
		c.SourceAddrTON = 1
	}
	if c.SourceAddrNPI == 0 {
		c.SourceAddrNPI = 1
	}
	if c.DestAddrTON == 0 {
		c.DestAddrTON = 1
	}
	if c.DestAddrNPI == 0 {
		c.DestAddrNPI = 1
	}
	if c.EsmClass == 0 {
		c.EsmClass = 8
	}
	if c.RegisteredDelivery == 0 {
		c.RegisteredDelivery = 5
	}
	if c.Encoding == "" {
		c.Encoding = "gsm0338"
	}
	if c.CodecErrorPolicy == "" {
		c.CodecErrorPolicy = "strict"
	}
	if c.EnquireLinkInterval == 0 {
		c.EnquireLinkInterval = 55 * time.Second
	}
	if c.SocketTimeout == 0 {
		c.SocketTimeout = 30 * time.Second
	}
	if c.DrainDuration == 0 {
		c.DrainDuration = 8 * time.Second
	}
	if c.SendRate == 0 {
		c.SendRate = 10
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = c.SendRate
	}
	if c.DelayForTokens == 0 {
		c.DelayForTokens = 5 * time.Second
	}
	if c.SamplingPeriod == 0 {
		c.SamplingPeriod = 180 * time.Second
	}
	if c.SampleSize == 0 {
		c.SampleSize = 60
	}
	if c.DenyRequestAt == 0 {
		c.DenyRequestAt = 50
	}
	if c.CorrelaterTTL == 0 {
		c.CorrelaterTTL = 15 * time.Minute
	}
	if c.ClientID == "" {
		c.ClientID = randomClientID()
	}
}

// randomClientID produces the random 17-character token §6 specifies
// when client_id is left unset.
func randomClientID() string {
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, 17)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Errorf("config: generating client_id: %w", err))
	}
	for i := range b {
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return string(b)
}
