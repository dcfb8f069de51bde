package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fundhive/donation-service/internal/domain"
	"github.com/fundhive/donation-service/internal/domain/ports"
)

// DefaultMaxAttempts bounds how often a task is retried before it is marked
// permanently failed
const DefaultMaxAttempts = 5

// Queue implements ports.TaskQueue on the tasks table. Enqueued tasks become
// visible to the worker pool immediately.
type Queue struct {
	db          ports.DBPort
	tasks       ports.TaskRepository
	maxAttempts int
	logger      *zap.Logger
}

// NewQueue creates a new durable task queue
func NewQueue(db ports.DBPort, tasks ports.TaskRepository, maxAttempts int, logger *zap.Logger) *Queue {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Queue{
		db:          db,
		tasks:       tasks,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Enqueue persists a new pending task due immediately
func (q *Queue) Enqueue(ctx context.Context, taskType string, payload map[string]string) error {
	now := time.Now()
	task := &domain.Task{
		ID:          uuid.New().String(),
		Type:        domain.TaskType(taskType),
		Payload:     payload,
		Status:      domain.TaskStatusPending,
		Attempts:    0,
		MaxAttempts: q.maxAttempts,
		NextRetryAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := q.tasks.Create(ctx, nil, task); err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}

	q.logger.Debug("task enqueued",
		zap.String("task_id", task.ID),
		zap.String("type", taskType),
	)
	return nil
}
