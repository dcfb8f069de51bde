package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fundhive/donation-service/internal/domain"
	"github.com/fundhive/donation-service/internal/testutil/mocks"
)

func TestQueue_Enqueue(t *testing.T) {
	t.Run("new_task_is_pending_and_due_now", func(t *testing.T) {
		tasks := mocks.NewTaskRepository()
		q := NewQueue(&mocks.DB{}, tasks, 5, zap.NewNop())

		err := q.Enqueue(context.Background(), string(domain.TaskTypeNotification), map[string]string{
			domain.TaskKeyRecipient: "user-1",
			domain.TaskKeyEventType: domain.EventPaymentSucceeded,
		})
		require.NoError(t, err)

		all := tasks.All()
		require.Len(t, all, 1)
		task := all[0]
		assert.NotEmpty(t, task.ID)
		assert.Equal(t, domain.TaskTypeNotification, task.Type)
		assert.Equal(t, domain.TaskStatusPending, task.Status)
		assert.Zero(t, task.Attempts)
		assert.Equal(t, 5, task.MaxAttempts)
		assert.False(t, task.NextRetryAt.After(time.Now()), "a fresh task must be claimable immediately")
	})

	t.Run("non_positive_max_attempts_falls_back_to_default", func(t *testing.T) {
		tasks := mocks.NewTaskRepository()
		q := NewQueue(&mocks.DB{}, tasks, 0, zap.NewNop())

		require.NoError(t, q.Enqueue(context.Background(), string(domain.TaskTypeCampaignAggregation), nil))
		assert.Equal(t, DefaultMaxAttempts, tasks.All()[0].MaxAttempts)
	})

	t.Run("persistence_failure_propagates", func(t *testing.T) {
		tasks := mocks.NewTaskRepository()
		tasks.CreateErr = errors.New("connection reset")
		q := NewQueue(&mocks.DB{}, tasks, 5, zap.NewNop())

		err := q.Enqueue(context.Background(), string(domain.TaskTypeNotification), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), string(domain.TaskTypeNotification))
	})
}
