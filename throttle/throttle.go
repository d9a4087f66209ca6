// Package throttle implements the throttle handler (C5): a sliding
// window over recent send outcomes that decides whether the dispatcher
// should keep sending or pause admission.
package throttle

import (
	"sync"
	"time"
)

// Handler is consulted by the dispatcher immediately before each send,
// after the rate limiter has already admitted it.
type Handler interface {
	Throttled()
	NotThrottled()
	ThrottleDelay() time.Duration
	AllowRequest() bool
}

// Window is the default Handler: a sliding window of observations over
// SamplingPeriod. AllowRequest denies once at least SampleSize
// observations have been seen and the throttle share exceeds
// DenyRequestAt.
type Window struct {
	samplingPeriod time.Duration
	sampleSize     int
	denyRequestAt  float64 // percentage, e.g. 50.0 for 50%
	baseDelay      time.Duration

	mu  sync.Mutex
	obs []observation
	now func() time.Time
}

type observation struct {
	at        time.Time
	throttled bool
}

// Option configures a Window at construction time.
type Option func(*Window)

// WithSamplingPeriod overrides the default 180s sliding window.
func WithSamplingPeriod(d time.Duration) Option {
	return func(w *Window) { w.samplingPeriod = d }
}

// WithSampleSize overrides the default minimum of 60 observations before
// AllowRequest will ever deny.
func WithSampleSize(n int) Option {
	return func(w *Window) { w.sampleSize = n }
}

// WithDenyRequestAt overrides the default 50% throttle-share deny
// threshold.
func WithDenyRequestAt(pct float64) Option {
	return func(w *Window) { w.denyRequestAt = pct }
}

// WithBaseDelay overrides the default 1s baseline used by ThrottleDelay's
// backoff calculation.
func WithBaseDelay(d time.Duration) Option {
	return func(w *Window) { w.baseDelay = d }
}

// New creates a Window throttle handler with the given options applied
// over these defaults: 180s sampling period, 60 observation sample size,
// 50% deny threshold, 1s base delay.
func New(opts ...Option) *Window {
	w := &Window{
		samplingPeriod: 180 * time.Second,
		sampleSize:     60,
		denyRequestAt:  50.0,
		baseDelay:      time.Second,
		now:            time.Now,
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

func (w *Window) prune(now time.Time) {
	cutoff := now.Add(-w.samplingPeriod)
	i := 0
	for i < len(w.obs) && w.obs[i].at.Before(cutoff) {
		i++
	}
	if i > 0 {
		w.obs = w.obs[i:]
	}
}

// Throttled records a throttle response (ESME_RTHROTTLED or
// ESME_RMSGQFUL, per §9 both feed the same signal).
func (w *Window) Throttled() {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now()
	w.prune(now)
	w.obs = append(w.obs, observation{at: now, throttled: true})
}

// NotThrottled records a successful (non-throttle) response.
func (w *Window) NotThrottled() {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now()
	w.prune(now)
	w.obs = append(w.obs, observation{at: now, throttled: false})
}

// share returns the fraction of throttled observations in the current
// window. Must be called with mu held.
func (w *Window) share(now time.Time) (count int, share float64) {
	w.prune(now)
	if len(w.obs) == 0 {
		return 0, 0
	}
	throttled := 0
	for _, o := range w.obs {
		if o.throttled {
			throttled++
		}
	}
	return len(w.obs), float64(throttled) / float64(len(w.obs)) * 100
}

// AllowRequest returns false once at least SampleSize observations have
// accumulated in the current window and the throttle share exceeds
// DenyRequestAt.
func (w *Window) AllowRequest() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	count, share := w.share(w.now())
	if count < w.sampleSize {
		return true
	}
	return share <= w.denyRequestAt
}

// ThrottleDelay returns how long the dispatcher should wait before
// re-checking AllowRequest. The backoff grows with the current throttle
// share: from BaseDelay at just over the deny threshold up to 10x
// BaseDelay at a 100% throttle share.
func (w *Window) ThrottleDelay() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, share := w.share(w.now())
	if share <= w.denyRequestAt {
		return w.baseDelay
	}
	factor := 1 + 9*(share-w.denyRequestAt)/(100-w.denyRequestAt)
	return time.Duration(float64(w.baseDelay) * factor)
}
