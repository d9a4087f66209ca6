package throttle

import (
	"testing"
	"time"
)

func TestAllowRequestTrueBelowSampleSize(t *testing.T) {
	w := New(WithSampleSize(60))
	for i := 0; i < 10; i++ {
		w.Throttled()
	}
	if !w.AllowRequest() {
		t.Fatal("expected allow while below sample size")
	}
}

func TestAllowRequestFlipsFalseOverThreshold(t *testing.T) {
	w := New(WithSampleSize(60), WithDenyRequestAt(50))
	for i := 0; i < 30; i++ {
		w.Throttled()
	}
	for i := 0; i < 30; i++ {
		w.NotThrottled()
	}
	if !w.AllowRequest() {
		t.Fatal("expected allow at exactly 50% share")
	}
	w.Throttled()
	if w.AllowRequest() {
		t.Fatal("expected deny once share exceeds 50%")
	}
}

func TestAllowRequestRecoversAsWindowSlides(t *testing.T) {
	fakeNow := time.Now()
	w := New(WithSampleSize(60), WithDenyRequestAt(50), WithSamplingPeriod(180*time.Second))
	w.now = func() time.Time { return fakeNow }
	for i := 0; i < 60; i++ {
		w.Throttled()
	}
	if w.AllowRequest() {
		t.Fatal("expected deny while fully throttled")
	}
	fakeNow = fakeNow.Add(200 * time.Second)
	for i := 0; i < 60; i++ {
		w.NotThrottled()
	}
	if !w.AllowRequest() {
		t.Fatal("expected allow once old throttled observations aged out")
	}
}

func TestThrottleDelayGrowsWithShare(t *testing.T) {
	w := New(WithSampleSize(1), WithDenyRequestAt(0), WithBaseDelay(time.Second))
	w.Throttled()
	w.NotThrottled()
	lowShareDelay := w.ThrottleDelay()
	w2 := New(WithSampleSize(1), WithDenyRequestAt(0), WithBaseDelay(time.Second))
	for i := 0; i < 10; i++ {
		w2.Throttled()
	}
	highShareDelay := w2.ThrottleDelay()
	if highShareDelay <= lowShareDelay {
		t.Fatalf("expected higher share to produce a longer delay: %s vs %s", highShareDelay, lowShareDelay)
	}
}
