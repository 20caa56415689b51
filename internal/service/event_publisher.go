package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/council-portal-api/internal/models"
	"github.com/noah-isme/council-portal-api/pkg/jobs"
)

// EventPublisher hands committed lifecycle events to the notification side.
type EventPublisher interface {
	Publish(ctx context.Context, event models.AppealEvent) error
}

// EventPublisherFunc allows using plain functions.
type EventPublisherFunc func(ctx context.Context, event models.AppealEvent) error

// Publish implements EventPublisher.
func (f EventPublisherFunc) Publish(ctx context.Context, event models.AppealEvent) error {
	return f(ctx, event)
}

type jobEnqueuer interface {
	Enqueue(ctx context.Context, job jobs.Job) error
}

// QueuePublisher publishes events onto the in-memory notification queue.
type QueuePublisher struct {
	queue   jobEnqueuer
	timeout time.Duration
}

// NewQueuePublisher constructs a publisher. timeout bounds how long a caller
// waits for buffer space.
func NewQueuePublisher(queue jobEnqueuer, timeout time.Duration) *QueuePublisher {
	if timeout <= 0 {
		timeout = time.Second
	}
	return &QueuePublisher{queue: queue, timeout: timeout}
}

// Publish enqueues the event. The request context is detached so a client
// disconnect after commit does not drop the notification.
func (p *QueuePublisher) Publish(ctx context.Context, event models.AppealEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	return p.queue.Enqueue(ctx, jobs.Job{
		ID:      uuid.NewString(),
		Type:    string(event.Type),
		Payload: event,
	})
}
