// Package metrics exposes prometheus counters/gauges the session calls
// into. Per spec.md §1/§6, exporting these (binding an HTTP listener,
// registering with a pusher) is explicitly out of scope for the core
// client — this package only defines the instruments and lets the
// caller register them with whatever prometheus.Registerer it wants.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles every instrument the session engine updates.
type Metrics struct {
	SentTotal          *prometheus.CounterVec
	ThrottledTotal     prometheus.Counter
	RateLimiterWaitSec prometheus.Histogram
	CorrelationEntries prometheus.Gauge
	ReconnectsTotal    prometheus.Counter
}

// New constructs a Metrics bundle with the given namespace, without
// registering it anywhere.
func New(namespace string) *Metrics {
	return &Metrics{
		SentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pdus_sent_total",
			Help:      "Number of PDUs sent to the SMSC, by command name.",
		}, []string{"command"}),
		ThrottledTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "throttle_responses_total",
			Help:      "Number of ESME_RTHROTTLED/ESME_RMSGQFUL responses observed.",
		}),
		RateLimiterWaitSec: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rate_limiter_wait_seconds",
			Help:      "Time spent waiting for the rate limiter to admit a send.",
			Buckets:   prometheus.DefBuckets,
		}),
		CorrelationEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "correlation_entries",
			Help:      "Number of live entries in the correlation table.",
		}),
		ReconnectsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconnects_total",
			Help:      "Number of times the session has reconnected to the SMSC.",
		}),
	}
}

// MustRegister registers every instrument with reg, panicking on a
// duplicate registration the way prometheus's own MustRegister does.
func (m *Metrics) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(m.SentTotal, m.ThrottledTotal, m.RateLimiterWaitSec, m.CorrelationEntries, m.ReconnectsTotal)
}
