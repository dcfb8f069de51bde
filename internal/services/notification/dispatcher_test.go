package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fundhive/donation-service/internal/testutil/mocks"
)

func TestDispatcher_Dispatch(t *testing.T) {
	t.Run("delivers_event", func(t *testing.T) {
		notifier := &mocks.Notifier{}
		d := NewDispatcher(notifier, zap.NewNop())

		err := d.Dispatch(context.Background(), "user-1", "payment.succeeded", map[string]string{"amount": "50.00"})
		require.NoError(t, err)

		require.Len(t, notifier.Sent, 1)
		assert.Equal(t, "user-1", notifier.Sent[0].Recipient)
		assert.Equal(t, "payment.succeeded", notifier.Sent[0].EventType)
		assert.Equal(t, "50.00", notifier.Sent[0].Data["amount"])
	})

	t.Run("propagates_delivery_failure", func(t *testing.T) {
		notifier := &mocks.Notifier{Fail: true}
		d := NewDispatcher(notifier, zap.NewNop())

		err := d.Dispatch(context.Background(), "user-1", "payment.failed", nil)
		require.Error(t, err)
	})
}

func TestDispatcher_DispatchToRecipients(t *testing.T) {
	t.Run("no_recipients_is_a_noop", func(t *testing.T) {
		notifier := &mocks.Notifier{}
		d := NewDispatcher(notifier, zap.NewNop())

		assert.NoError(t, d.DispatchToRecipients(context.Background(), nil, "donation.received", nil))
		assert.Zero(t, notifier.Calls)
	})

	t.Run("delivers_to_every_recipient", func(t *testing.T) {
		notifier := &mocks.Notifier{}
		d := NewDispatcher(notifier, zap.NewNop())

		err := d.DispatchToRecipients(context.Background(), []string{"a", "b", "c"}, "donation.received", nil)
		require.NoError(t, err)
		assert.Len(t, notifier.Sent, 3)
	})

	t.Run("partial_failure_is_not_an_error", func(t *testing.T) {
		notifier := &mocks.Notifier{FailFor: map[string]bool{"b": true}}
		d := NewDispatcher(notifier, zap.NewNop())

		err := d.DispatchToRecipients(context.Background(), []string{"a", "b", "c"}, "donation.received", nil)
		require.NoError(t, err, "one failed recipient must not abort the rest")
		assert.Len(t, notifier.Sent, 2)
	})

	t.Run("errors_only_when_all_deliveries_fail", func(t *testing.T) {
		notifier := &mocks.Notifier{Fail: true}
		d := NewDispatcher(notifier, zap.NewNop())

		err := d.DispatchToRecipients(context.Background(), []string{"a", "b"}, "donation.received", nil)
		require.Error(t, err)
		assert.Equal(t, 2, notifier.Calls, "every recipient must still be attempted")
	})
}
