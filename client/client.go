// Package client implements the session engine (C8): it owns the TCP
// connection, drives the bind → bound → unbind state machine, and runs
// the three cooperating I/O loops (dispatcher, reader, link-prober)
// described in §4.8 and §5.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/Ucell-first/smppclient/broker"
	"github.com/Ucell-first/smppclient/config"
	"github.com/Ucell-first/smppclient/correlater"
	"github.com/Ucell-first/smppclient/encoding"
	"github.com/Ucell-first/smppclient/encoding/registry"
	"github.com/Ucell-first/smppclient/hook"
	"github.com/Ucell-first/smppclient/logging"
	"github.com/Ucell-first/smppclient/metrics"
	"github.com/Ucell-first/smppclient/pdu"
	"github.com/Ucell-first/smppclient/ratelimiter"
	"github.com/Ucell-first/smppclient/sequence"
	"github.com/Ucell-first/smppclient/throttle"
)

// State is one of the five session states named in §4.8.
type State int

const (
	StateClosed State = iota
	StateConnecting
	StateOpenUnbound
	StateBoundTRx
	StateUnbinding
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateConnecting:
		return "CONNECTING"
	case StateOpenUnbound:
		return "OPEN_UNBOUND"
	case StateBoundTRx:
		return "BOUND_TRX"
	case StateUnbinding:
		return "UNBINDING"
	default:
		return "UNKNOWN"
	}
}

// Deps bundles every pluggable collaborator (§9 "capability sets, not
// inheritance hierarchies"). New fills the unset fields it has defaults
// for; see New for which ones.
type Deps struct {
	Sequencer   sequence.Generator
	Correlater  correlater.Correlater
	RateLimiter ratelimiter.RateLimiter
	Throttle    throttle.Handler
	Broker      broker.Broker
	Hooks       hook.Hooks
	Logger      logging.Logger
	Encodings   encoding.Registry
	Metrics     *metrics.Metrics
}

// Client is the session engine: one instance per SMSC bind.
type Client struct {
	cfg  *config.Config
	deps Deps

	mu    sync.Mutex
	state State
	conn  net.Conn

	writeMu sync.Mutex

	liveness chan struct{}
	stopOnce sync.Once
	stopCh   chan struct{}

	// dialFunc is overridden in tests to avoid a real TCP dial; nil uses
	// the real dialer (with optional TLS) configured in connect.
	dialFunc func(ctx context.Context) (net.Conn, error)
}

// rateLimiterLogAdapter satisfies ratelimiter.Logger so the default
// TokenBucket's acquire events (effective send rate, delay incurred) reach
// both the structured logger and the rate_limiter_wait_seconds histogram,
// per §4.4.
type rateLimiterLogAdapter struct {
	logger  logging.Logger
	metrics *metrics.Metrics
}

func (a rateLimiterLogAdapter) LogAcquire(sendRate float64, delay time.Duration) {
	a.logger.Info("rate_limiter_acquire", map[string]any{
		"send_rate":     sendRate,
		"delay_seconds": delay.Seconds(),
	})
	if a.metrics != nil {
		a.metrics.RateLimiterWaitSec.Observe(delay.Seconds())
	}
}

// New constructs a Client. Nil Sequencer, Correlater, Logger, RateLimiter,
// Throttle and Encodings fields in deps are replaced by package defaults
// built from cfg. Broker is not defaulted and must be set; a nil Metrics
// disables metrics, and nil Hooks fields are skipped.
func New(cfg *config.Config, deps Deps) *Client {
	if deps.Sequencer == nil {
		deps.Sequencer = sequence.New()
	}
	if deps.Correlater == nil {
		deps.Correlater = correlater.New(cfg.CorrelaterTTL)
	}
	if deps.Logger == nil {
		deps.Logger = logging.New(nil, cfg.LogMetadata)
	}
	if deps.RateLimiter == nil {
		deps.RateLimiter = ratelimiter.New(cfg.SendRate,
			ratelimiter.WithMaxTokens(cfg.MaxTokens),
			ratelimiter.WithDelayForTokens(cfg.DelayForTokens),
			ratelimiter.WithLogger(rateLimiterLogAdapter{logger: deps.Logger, metrics: deps.Metrics}))
	}
	if deps.Throttle == nil {
		deps.Throttle = throttle.New(
			throttle.WithSamplingPeriod(cfg.SamplingPeriod),
			throttle.WithSampleSize(cfg.SampleSize),
			throttle.WithDenyRequestAt(cfg.DenyRequestAt))
	}
	if deps.Encodings == nil {
		deps.Encodings = registry.Default()
	}
	return &Client{
		cfg:      cfg,
		deps:     deps,
		state:    StateClosed,
		stopCh:   make(chan struct{}),
		liveness: make(chan struct{}, 1),
	}
}

// State reports the session's current state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.deps.Logger.Info("state_change", map[string]any{"state": s.String(), "client_id": c.cfg.ClientID})
}

// Stop requests an orderly shutdown: BOUND_TRX → UNBINDING, draining for
// at most cfg.DrainDuration before sending unbind.
func (c *Client) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

// Run drives the full connect → bind → serve → (reconnect|exit) cycle
// until ctx is canceled, Stop is called, a bind fails, or, with
// AutoReconnect disabled, a connect fails or the session ends. It returns
// nil on a shutdown requested via Stop or ctx cancellation and when a
// session ends with AutoReconnect disabled, and a non-nil error on any
// bind failure or on a connect failure with AutoReconnect disabled.
func (c *Client) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.stopCh:
			return nil
		default:
		}

		c.setState(StateConnecting)
		if err := c.connect(ctx); err != nil {
			c.deps.Logger.Error("connect_failed", map[string]any{"client_id": c.cfg.ClientID}, err)
			c.setState(StateClosed)
			if !c.cfg.AutoReconnect {
				return fmt.Errorf("client: connect: %w", err)
			}
			if !c.sleepOrDone(ctx, time.Second) {
				return nil
			}
			continue
		}

		c.setState(StateOpenUnbound)
		if err := c.bind(ctx); err != nil {
			c.deps.Logger.Error("bind_failed", map[string]any{"client_id": c.cfg.ClientID}, err)
			c.closeConn()
			c.setState(StateClosed)
			// Per §4.8, a failed bind is fatal with no automatic retry.
			return fmt.Errorf("client: bind: %w", err)
		}

		c.setState(StateBoundTRx)
		c.serve(ctx)
		c.setState(StateClosed)

		if !c.cfg.AutoReconnect {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-c.stopCh:
			return nil
		default:
		}
		if c.deps.Metrics != nil {
			c.deps.Metrics.ReconnectsTotal.Inc()
		}
	}
}

func (c *Client) sleepOrDone(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	case <-c.stopCh:
		return false
	}
}

func (c *Client) connect(ctx context.Context) error {
	dial := c.dialFunc
	if dial == nil {
		dial = c.dialTCP
	}
	conn, err := dial(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	return nil
}

func (c *Client) dialTCP(ctx context.Context) (net.Conn, error) {
	d := net.Dialer{Timeout: c.cfg.SocketTimeout}
	addr := fmt.Sprintf("%s:%d", c.cfg.SMSCHost, c.cfg.SMSCPort)
	if c.cfg.UseTLS {
		return tls.DialWithDialer(&d, "tcp", addr, &tls.Config{ServerName: c.cfg.SMSCHost})
	}
	return d.DialContext(ctx, "tcp", addr)
}

func (c *Client) closeConn() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

// bind sends bind_transceiver and waits for its response.
func (c *Client) bind(ctx context.Context) error {
	seq := c.deps.Sequencer.Next()
	req := &pdu.BindTransceiver{
		SystemID:         c.cfg.SystemID,
		Password:         c.cfg.Password,
		SystemType:       c.cfg.SystemType,
		InterfaceVersion: c.cfg.InterfaceVersion,
		AddrTON:          c.cfg.AddrTON,
		AddrNPI:          c.cfg.AddrNPI,
		AddressRange:     c.cfg.AddressRange,
	}
	if err := c.writeFrame(req, seq, pdu.StatusOK, "bind_transceiver", "", nil); err != nil {
		return err
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("client: no connection to read bind response from")
	}
	if err := conn.SetReadDeadline(time.Now().Add(c.cfg.SocketTimeout)); err != nil {
		return err
	}
	h, resp, err := pdu.Decode(conn)
	if err != nil {
		return fmt.Errorf("client: reading bind_transceiver_resp: %w", err)
	}
	if h.CommandID != pdu.BindTransceiverRespID {
		return fmt.Errorf("client: expected bind_transceiver_resp, got %s", h.CommandID)
	}
	if h.CommandStatus != pdu.StatusOK {
		return fmt.Errorf("client: bind rejected: %s", h.CommandStatus)
	}
	_ = resp
	return nil
}

// writeFrame encodes p, fires the ToSMSC hook, and writes it to the
// socket under the single write lock (§5's only mandatory lock).
func (c *Client) writeFrame(p pdu.PDU, seq uint32, status pdu.Status, smppCommand, logID string, hookMeta map[string]string) error {
	var buf bytes.Buffer
	if err := pdu.Encode(&buf, p, seq, status); err != nil {
		return err
	}
	frame := buf.Bytes()

	if c.deps.Hooks.ToSMSC != nil {
		if r := hook.Run(func() {
			c.deps.Hooks.ToSMSC(context.Background(), smppCommand, logID, hookMeta, frame)
		}); r != nil {
			c.deps.Logger.Error("hook_panic", map[string]any{"hook": "to_smsc"}, fmt.Errorf("%v", r))
		}
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("client: not connected")
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.SetWriteDeadline(time.Now().Add(c.cfg.SocketTimeout)); err != nil {
		return err
	}
	if _, err := conn.Write(frame); err != nil {
		return err
	}
	if c.deps.Metrics != nil {
		c.deps.Metrics.SentTotal.WithLabelValues(smppCommand).Inc()
	}
	return nil
}

// serve runs the dispatcher, reader, and link-prober loops until one of
// them observes a reason to tear the session down, then attempts a
// best-effort unbind before closing the socket.
func (c *Client) serve(ctx context.Context) {
	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stopDispatch := make(chan struct{})
	dispatchDone := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); defer close(dispatchDone); c.dispatchLoop(serveCtx, stopDispatch, cancel) }()
	go func() { defer wg.Done(); c.readLoop(serveCtx, cancel) }()
	go func() { defer wg.Done(); c.proberLoop(serveCtx, cancel) }()

	select {
	case <-serveCtx.Done():
	case <-c.stopCh:
		// Stop dequeuing new jobs but give any job already in flight up to
		// DrainDuration to finish and reach the wire before the rest of the
		// session is torn down (§4.8, §5).
		close(stopDispatch)
		select {
		case <-dispatchDone:
		case <-time.After(c.cfg.DrainDuration):
		}
		cancel()
	}
	// readLoop may be parked in a blocking read that ctx cancellation
	// alone cannot interrupt; an expired read deadline wakes it.
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn != nil {
		_ = conn.SetReadDeadline(time.Now())
	}
	wg.Wait()

	c.setState(StateUnbinding)
	c.unbindBestEffort()
	c.closeConn()
}

// unbindBestEffort sends unbind and waits up to SocketTimeout for
// unbind_resp, swallowing any error: by this point the session is tearing
// down regardless.
func (c *Client) unbindBestEffort() {
	seq := c.deps.Sequencer.Next()
	if err := c.writeFrame(&pdu.Unbind{}, seq, pdu.StatusOK, "unbind", "", nil); err != nil {
		return
	}
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return
	}
	_ = conn.SetReadDeadline(time.Now().Add(c.cfg.SocketTimeout))
	for {
		h, _, err := pdu.Decode(conn)
		if err != nil || h.CommandID == pdu.UnbindRespID {
			return
		}
	}
}
