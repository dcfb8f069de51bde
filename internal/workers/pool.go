package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fundhive/donation-service/internal/domain"
	"github.com/fundhive/donation-service/internal/domain/ports"
	"github.com/fundhive/donation-service/pkg/observability"
	"github.com/fundhive/donation-service/pkg/resilience"
)

// Handler executes one task. Handlers must be idempotent: a task whose
// transaction commit raced a worker crash can be delivered again.
type Handler func(ctx context.Context, task *domain.Task) error

// PoolConfig contains configuration for the worker pool
type PoolConfig struct {
	// PollInterval between queue polls when the previous batch was empty
	PollInterval time.Duration

	// BatchSize limits how many tasks one poll claims
	BatchSize int

	// Concurrency is the number of polling workers
	Concurrency int
}

// DefaultPoolConfig returns default worker pool configuration
func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		PollInterval: 2 * time.Second,
		BatchSize:    10,
		Concurrency:  2,
	}
}

// Pool polls the tasks table and dispatches due tasks to their handlers.
// Claimed rows stay locked until the poll transaction commits, so concurrent
// workers never run the same task twice.
type Pool struct {
	db       ports.DBPort
	tasks    ports.TaskRepository
	handlers map[domain.TaskType]Handler
	config   *PoolConfig
	backoff  resilience.BackoffStrategy
	timeouts *resilience.TimeoutConfig
	logger   *zap.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewPool creates a new worker pool
func NewPool(
	db ports.DBPort,
	tasks ports.TaskRepository,
	handlers map[domain.TaskType]Handler,
	config *PoolConfig,
	timeouts *resilience.TimeoutConfig,
	logger *zap.Logger,
) *Pool {
	if config == nil {
		config = DefaultPoolConfig()
	}
	return &Pool{
		db:       db,
		tasks:    tasks,
		handlers: handlers,
		config:   config,
		backoff:  resilience.TaskBackoff(),
		timeouts: timeouts,
		logger:   logger,
	}
}

// Start launches the polling workers
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.Concurrency; i++ {
		p.wg.Add(1)
		go func(worker int) {
			defer p.wg.Done()
			p.run(ctx, worker)
		}(i)
	}

	p.logger.Info("worker pool started",
		zap.Int("concurrency", p.config.Concurrency),
		zap.Duration("poll_interval", p.config.PollInterval),
	)
}

// Stop signals the workers and waits for in-flight tasks to finish
func (p *Pool) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker pool shutdown timed out: %w", ctx.Err())
	}
}

func (p *Pool) run(ctx context.Context, worker int) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.poll(ctx); err != nil && ctx.Err() == nil {
				p.logger.Error("task poll failed",
					zap.Int("worker", worker),
					zap.Error(err),
				)
			}
		}
	}
}

// poll claims one batch of due tasks and runs them. The claim transaction
// stays open for the duration of the batch; SKIP LOCKED keeps other workers
// from waiting on it.
func (p *Pool) poll(ctx context.Context) error {
	return p.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		tasks, err := p.tasks.FetchDue(ctx, tx, p.config.BatchSize)
		if err != nil {
			return err
		}

		for _, task := range tasks {
			p.execute(ctx, tx, task)
		}
		return nil
	})
}

func (p *Pool) execute(ctx context.Context, tx pgx.Tx, task *domain.Task) {
	handler, ok := p.handlers[task.Type]
	if !ok {
		// No handler registered for this type; park the task permanently
		// rather than retrying it forever.
		p.fail(ctx, tx, task, fmt.Sprintf("no handler for task type %s", task.Type))
		return
	}

	taskCtx, cancel := p.timeouts.TaskContext(ctx)
	err := handler(taskCtx, task)
	cancel()

	task.Attempts++
	task.UpdatedAt = time.Now()

	if err == nil {
		task.Status = domain.TaskStatusSucceeded
		task.LastError = nil
		if updateErr := p.tasks.Update(ctx, tx, task); updateErr != nil {
			p.logger.Error("failed to mark task succeeded",
				zap.String("task_id", task.ID),
				zap.Error(updateErr),
			)
			return
		}
		observability.RecordTask(string(task.Type), "succeeded")
		return
	}

	message := err.Error()
	task.LastError = &message

	if task.Attempts >= task.MaxAttempts {
		task.Status = domain.TaskStatusFailed
		observability.RecordTaskExhausted(string(task.Type))
		p.logger.Error("task permanently failed",
			zap.String("task_id", task.ID),
			zap.String("type", string(task.Type)),
			zap.Int("attempts", task.Attempts),
			zap.Error(err),
		)
	} else {
		task.NextRetryAt = time.Now().Add(p.backoff.NextDelay(task.Attempts - 1))
		observability.RecordTaskRetry(string(task.Type))
		p.logger.Warn("task attempt failed, retry scheduled",
			zap.String("task_id", task.ID),
			zap.String("type", string(task.Type)),
			zap.Int("attempts", task.Attempts),
			zap.Time("next_retry_at", task.NextRetryAt),
			zap.Error(err),
		)
	}
	observability.RecordTask(string(task.Type), "failed")

	if updateErr := p.tasks.Update(ctx, tx, task); updateErr != nil {
		p.logger.Error("failed to update task state",
			zap.String("task_id", task.ID),
			zap.Error(updateErr),
		)
	}
}

// fail marks a task permanently failed without attempting it
func (p *Pool) fail(ctx context.Context, tx pgx.Tx, task *domain.Task, message string) {
	task.Status = domain.TaskStatusFailed
	task.LastError = &message
	task.UpdatedAt = time.Now()
	observability.RecordTaskExhausted(string(task.Type))

	if err := p.tasks.Update(ctx, tx, task); err != nil {
		p.logger.Error("failed to park task",
			zap.String("task_id", task.ID),
			zap.Error(err),
		)
	}
}
