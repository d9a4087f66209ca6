package client

import (
	"context"
	"fmt"
	"time"

	"github.com/Ucell-first/smppclient/pdu"
)

// proberLoop is the link-prober: it sends enquire_link on a fixed
// interval and requires either that PDU's response or any other inbound
// traffic (readLoop calls noteLiveness on every decoded frame) to arrive
// within two intervals, per §4.8's liveness requirement. A silent link
// is treated as dead and torn down via cancel. It also periodically
// sweeps the correlater (§3/§4.3): entries are purged lazily on access,
// but a seq whose response never arrives would otherwise linger until
// process exit.
func (c *Client) proberLoop(ctx context.Context, cancel context.CancelFunc) {
	ticker := time.NewTicker(c.cfg.EnquireLinkInterval)
	defer ticker.Stop()

	deadline := time.NewTimer(2 * c.cfg.EnquireLinkInterval)
	defer deadline.Stop()

	sweep := time.NewTicker(c.cfg.CorrelaterTTL)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			seq := c.deps.Sequencer.Next()
			if err := c.writeFrame(&pdu.EnquireLink{}, seq, pdu.StatusOK, "enquire_link", "", nil); err != nil {
				c.deps.Logger.Error("write_enquire_link_failed", nil, err)
				cancel()
				return
			}
		case <-c.liveness:
			if !deadline.Stop() {
				select {
				case <-deadline.C:
				default:
				}
			}
			deadline.Reset(2 * c.cfg.EnquireLinkInterval)
		case <-deadline.C:
			c.deps.Logger.Error("link_dead", nil, fmt.Errorf("client: no traffic within %s", 2*c.cfg.EnquireLinkInterval))
			cancel()
			return
		case <-sweep.C:
			c.deps.Correlater.Sweep()
			if c.deps.Metrics != nil {
				if sized, ok := c.deps.Correlater.(interface{ Len() (int, int) }); ok {
					bySeq, byMsgID := sized.Len()
					c.deps.Metrics.CorrelationEntries.Set(float64(bySeq + byMsgID))
				}
			}
		}
	}
}
