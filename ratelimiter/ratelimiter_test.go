package ratelimiter

import (
	"context"
	"testing"
	"time"
)

func TestAcquireConsumesToken(t *testing.T) {
	tb := New(10, WithMaxTokens(1))
	ctx := context.Background()
	if err := tb.Acquire(ctx); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
}

func TestAcquireRefillsOverTime(t *testing.T) {
	tb := New(10, WithMaxTokens(1), WithDelayForTokens(time.Second))
	ctx := context.Background()
	if err := tb.Acquire(ctx); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	// Bucket is now empty; the next acquire must wait out a real refill
	// before granting a token.
	start := time.Now()
	if err := tb.Acquire(ctx); err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if time.Since(start) <= 0 {
		t.Fatal("expected second acquire to wait for refill")
	}
}

func TestAcquireRespectsContextCancellation(t *testing.T) {
	tb := New(0.001, WithMaxTokens(0), WithDelayForTokens(time.Minute))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := tb.Acquire(ctx); err == nil {
		t.Fatal("expected error from canceled context")
	}
}

func TestAcquireGivesUpAfterDelayForTokens(t *testing.T) {
	tb := New(0.0001, WithMaxTokens(0), WithDelayForTokens(50*time.Millisecond))
	ctx := context.Background()
	err := tb.Acquire(ctx)
	if err == nil {
		t.Fatal("expected timeout error")
	}
}
