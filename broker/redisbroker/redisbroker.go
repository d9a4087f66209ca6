// Package redisbroker is an example Broker (C12) backed by a Redis list,
// usable when multiple ESME processes need to share one outbound queue.
// It is reference code, not part of the client's core engine.
package redisbroker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Ucell-first/smppclient/broker"
)

// Broker implements broker.Broker against a single Redis list key using
// RPUSH/BLPOP.
type Broker struct {
	client *redis.Client
	key    string
}

// New creates a Broker that enqueues/dequeues against listKey on client.
func New(client *redis.Client, listKey string) *Broker {
	return &Broker{client: client, key: listKey}
}

// Enqueue implements broker.Broker by RPUSH-ing the job's JSON encoding.
func (b *Broker) Enqueue(ctx context.Context, job broker.Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("redisbroker: marshal job: %w", err)
	}
	return b.client.RPush(ctx, b.key, payload).Err()
}

// Dequeue implements broker.Broker by blocking on BLPOP until a job is
// available or ctx is done.
func (b *Broker) Dequeue(ctx context.Context) (broker.Job, error) {
	res, err := b.client.BLPop(ctx, 0, b.key).Result()
	if err != nil {
		return broker.Job{}, fmt.Errorf("redisbroker: blpop: %w", err)
	}
	// BLPop returns [key, value]; we only ever watch one key.
	if len(res) != 2 {
		return broker.Job{}, fmt.Errorf("redisbroker: unexpected BLPOP reply shape: %v", res)
	}
	var job broker.Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return broker.Job{}, fmt.Errorf("redisbroker: unmarshal job: %w", err)
	}
	return job, nil
}
