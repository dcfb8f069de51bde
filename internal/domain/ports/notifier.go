package ports

import (
	"context"
)

// Notifier delivers a user-facing event to one recipient. Implementations are
// invoked from queued, retryable task handlers, never inline in a request.
type Notifier interface {
	Send(ctx context.Context, recipient, eventType string, data map[string]string) error
}

// TaskQueue enqueues asynchronous work. Enqueuing happens after the
// orchestration transaction commits; delivery is at-least-once with bounded
// retries, so handlers must be idempotent.
type TaskQueue interface {
	Enqueue(ctx context.Context, taskType string, payload map[string]string) error
}
