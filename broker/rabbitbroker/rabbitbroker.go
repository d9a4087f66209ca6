// Package rabbitbroker is an example Broker (C12) backed by a RabbitMQ
// queue. It is reference code, not part of the client's core engine.
package rabbitbroker

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Ucell-first/smppclient/broker"
)

// Broker implements broker.Broker against a single RabbitMQ queue using
// a dedicated channel for publish and a consumer for dequeue.
type Broker struct {
	ch       *amqp.Channel
	queue    string
	consumer <-chan amqp.Delivery
}

// New declares queueName durable and non-exclusive, starts a consumer on
// it, and returns a Broker ready to Enqueue/Dequeue.
func New(conn *amqp.Connection, queueName string) (*Broker, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitbroker: open channel: %w", err)
	}
	q, err := ch.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("rabbitbroker: declare queue: %w", err)
	}
	deliveries, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("rabbitbroker: consume: %w", err)
	}
	return &Broker{ch: ch, queue: q.Name, consumer: deliveries}, nil
}

// Enqueue implements broker.Broker by publishing the job's JSON encoding
// as a persistent message.
func (b *Broker) Enqueue(ctx context.Context, job broker.Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("rabbitbroker: marshal job: %w", err)
	}
	return b.ch.PublishWithContext(ctx, "", b.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         payload,
	})
}

// Dequeue implements broker.Broker. Deliveries are acknowledged only
// after the job unmarshals successfully; a malformed payload is nacked
// without requeue so it doesn't spin forever.
func (b *Broker) Dequeue(ctx context.Context) (broker.Job, error) {
	select {
	case d, ok := <-b.consumer:
		if !ok {
			return broker.Job{}, fmt.Errorf("rabbitbroker: consumer channel closed")
		}
		var job broker.Job
		if err := json.Unmarshal(d.Body, &job); err != nil {
			_ = d.Nack(false, false)
			return broker.Job{}, fmt.Errorf("rabbitbroker: unmarshal job: %w", err)
		}
		if err := d.Ack(false); err != nil {
			return broker.Job{}, fmt.Errorf("rabbitbroker: ack: %w", err)
		}
		return job, nil
	case <-ctx.Done():
		return broker.Job{}, ctx.Err()
	}
}
