// Package memory implements the trivial in-process Broker default: a
// buffered channel, no persistence across restarts.
package memory

import (
	"context"

	"github.com/Ucell-first/smppclient/broker"
)

// Broker is a buffered-channel implementation of broker.Broker.
type Broker struct {
	jobs chan broker.Job
}

// New creates a Broker with the given channel capacity. A capacity of 0
// makes Enqueue block until a Dequeue is ready to receive, which is
// rarely what's wanted for a process boundary; callers typically pick a
// capacity sized to their expected burst.
func New(capacity int) *Broker {
	return &Broker{jobs: make(chan broker.Job, capacity)}
}

// Enqueue implements broker.Broker.
func (b *Broker) Enqueue(ctx context.Context, job broker.Job) error {
	select {
	case b.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dequeue implements broker.Broker.
func (b *Broker) Dequeue(ctx context.Context) (broker.Job, error) {
	select {
	case job := <-b.jobs:
		return job, nil
	case <-ctx.Done():
		return broker.Job{}, ctx.Err()
	}
}
