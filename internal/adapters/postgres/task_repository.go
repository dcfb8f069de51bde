package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/fundhive/donation-service/internal/domain"
	"github.com/fundhive/donation-service/internal/domain/ports"
)

// TaskRepository implements ports.TaskRepository on PostgreSQL. The tasks
// table is the durable queue behind the aggregation and notification workers.
type TaskRepository struct {
	db ports.DBPort
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db ports.DBPort) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) exec(db ports.DBTX) ports.DBTX {
	if db != nil {
		return db
	}
	return r.db.GetDB()
}

// Create inserts a new pending task
func (r *TaskRepository) Create(ctx context.Context, db ports.DBTX, task *domain.Task) error {
	payload, err := marshalMap(task.Payload)
	if err != nil {
		return err
	}

	_, err = r.exec(db).Exec(ctx, `
		INSERT INTO tasks (id, type, payload, status, attempts, max_attempts, last_error, next_retry_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		task.ID, string(task.Type), payload, string(task.Status),
		task.Attempts, task.MaxAttempts, nullText(task.LastError),
		task.NextRetryAt, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// FetchDue claims up to limit due pending tasks. SKIP LOCKED lets multiple
// workers poll concurrently without double-claiming; the row locks are held
// until the caller's transaction commits.
func (r *TaskRepository) FetchDue(ctx context.Context, db ports.DBTX, limit int) ([]*domain.Task, error) {
	rows, err := r.exec(db).Query(ctx, `
		SELECT id, type, payload, status, attempts, max_attempts, last_error, next_retry_at, created_at, updated_at
		FROM tasks
		WHERE status = $1 AND next_retry_at <= $2
		ORDER BY next_retry_at
		LIMIT $3
		FOR UPDATE SKIP LOCKED`,
		string(domain.TaskStatusPending), time.Now(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch due tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		var (
			t         domain.Task
			taskType  string
			status    string
			payload   []byte
			lastError pgtype.Text
		)
		if err := rows.Scan(&t.ID, &taskType, &payload, &status,
			&t.Attempts, &t.MaxAttempts, &lastError,
			&t.NextRetryAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Type = domain.TaskType(taskType)
		t.Status = domain.TaskStatus(status)
		t.LastError = textPtr(lastError)
		if t.Payload, err = unmarshalMap(payload); err != nil {
			return nil, err
		}
		tasks = append(tasks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

// Update writes the task's delivery state
func (r *TaskRepository) Update(ctx context.Context, db ports.DBTX, task *domain.Task) error {
	tag, err := r.exec(db).Exec(ctx, `
		UPDATE tasks SET status = $2, attempts = $3, last_error = $4, next_retry_at = $5, updated_at = $6
		WHERE id = $1`,
		task.ID, string(task.Status), task.Attempts,
		nullText(task.LastError), task.NextRetryAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("task %s not found", task.ID)
	}
	return nil
}
