package correlater

import (
	"testing"
	"time"
)

func TestPutGetRoundTrip(t *testing.T) {
	c := New(time.Minute)
	c.Put(2, "L1", map[string]string{"k": "v"})
	e, ok := c.Get(2)
	if !ok || e.LogID != "L1" {
		t.Fatalf("expected L1, got %+v ok=%v", e, ok)
	}
}

func TestMessageIDCorrelation(t *testing.T) {
	c := New(time.Minute)
	c.Put(2, "L1", nil)
	e, _ := c.Get(2)
	c.PutMessageID("MID-9", e.LogID, e.HookMetadata)
	got, ok := c.GetByMessageID("MID-9")
	if !ok || got.LogID != "L1" {
		t.Fatalf("expected L1 by message id, got %+v ok=%v", got, ok)
	}
}

func TestEntryExpires(t *testing.T) {
	fakeNow := time.Now()
	c := New(time.Minute)
	c.now = func() time.Time { return fakeNow }
	c.Put(1, "L1", nil)
	fakeNow = fakeNow.Add(2 * time.Minute)
	if _, ok := c.Get(1); ok {
		t.Fatal("expected entry to have expired")
	}
}

func TestSweepPurgesExpired(t *testing.T) {
	fakeNow := time.Now()
	c := New(time.Minute)
	c.now = func() time.Time { return fakeNow }
	c.Put(1, "L1", nil)
	c.PutMessageID("MID-1", "L1", nil)
	fakeNow = fakeNow.Add(2 * time.Minute)
	c.Sweep()
	bySeq, byMsg := c.Len()
	if bySeq != 0 || byMsg != 0 {
		t.Fatalf("expected sweep to purge both tables, got bySeq=%d byMsg=%d", bySeq, byMsg)
	}
}

func TestGetMissingReturnsFalse(t *testing.T) {
	c := New(time.Minute)
	if _, ok := c.Get(999); ok {
		t.Fatal("expected miss")
	}
	if _, ok := c.GetByMessageID("nope"); ok {
		t.Fatal("expected miss")
	}
}
