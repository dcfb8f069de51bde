package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingPayment() *Payment {
	return &Payment{
		ID:         "pay-1",
		DonationID: "don-1",
		Method:     PaymentMethodFake,
		Status:     PaymentStatusPending,
		Amount:     decimal.RequireFromString("125.75"),
		Currency:   "USD",
	}
}

// TestPayment_IsTerminal verifies terminal-state detection for every status
func TestPayment_IsTerminal(t *testing.T) {
	tests := []struct {
		name     string
		status   PaymentStatus
		expected bool
	}{
		{name: "pending_is_not_terminal", status: PaymentStatusPending, expected: false},
		{name: "processing_is_not_terminal", status: PaymentStatusProcessing, expected: false},
		{name: "completed_is_terminal", status: PaymentStatusCompleted, expected: true},
		{name: "failed_is_terminal", status: PaymentStatusFailed, expected: true},
		{name: "refunded_is_terminal", status: PaymentStatusRefunded, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPendingPayment()
			p.Status = tt.status
			assert.Equal(t, tt.expected, p.IsTerminal(),
				"IsTerminal() should return %v for status=%s", tt.expected, tt.status)
		})
	}
}

// TestPayment_MarkCompleted covers the pending/processing -> completed transition
func TestPayment_MarkCompleted(t *testing.T) {
	t.Run("pending_to_completed_sets_fields_once", func(t *testing.T) {
		p := newPendingPayment()

		err := p.MarkCompleted("T1", `{"resp":"ok"}`)
		require.NoError(t, err)

		assert.Equal(t, PaymentStatusCompleted, p.Status)
		require.NotNil(t, p.TransactionID)
		assert.Equal(t, "T1", *p.TransactionID)
		require.NotNil(t, p.GatewayResponse)
		assert.NotNil(t, p.CompletedAt)
		assert.Nil(t, p.FailedAt, "only one terminal timestamp may be set")
		assert.Nil(t, p.RefundedAt, "only one terminal timestamp may be set")
	})

	t.Run("processing_to_completed_allowed", func(t *testing.T) {
		p := newPendingPayment()
		require.NoError(t, p.MarkProcessing())
		assert.NoError(t, p.MarkCompleted("T2", ""))
	})

	t.Run("completion_without_transaction_id_rejected", func(t *testing.T) {
		p := newPendingPayment()

		err := p.MarkCompleted("", "")
		require.Error(t, err)
		assert.Equal(t, ErrorCodeValidationMissingField, GetErrorCode(err))
		assert.Equal(t, PaymentStatusPending, p.Status, "rejected transition must not mutate status")
	})

	t.Run("terminal_payment_cannot_be_completed_again", func(t *testing.T) {
		for _, status := range []PaymentStatus{PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded} {
			p := newPendingPayment()
			p.Status = status

			err := p.MarkCompleted("T3", "")
			require.Error(t, err, "status=%s", status)
			assert.Equal(t, ErrorCodePaymentInvalidState, GetErrorCode(err))
		}
	})
}

// TestPayment_MarkFailed covers the pending/processing -> failed transition
func TestPayment_MarkFailed(t *testing.T) {
	t.Run("pending_to_failed_records_error", func(t *testing.T) {
		p := newPendingPayment()

		err := p.MarkFailed("card declined", "05")
		require.NoError(t, err)

		assert.Equal(t, PaymentStatusFailed, p.Status)
		require.NotNil(t, p.ErrorMessage)
		assert.Equal(t, "card declined", *p.ErrorMessage)
		require.NotNil(t, p.ErrorCode)
		assert.Equal(t, "05", *p.ErrorCode)
		assert.NotNil(t, p.FailedAt)
		assert.Nil(t, p.CompletedAt)
	})

	t.Run("completed_payment_cannot_fail", func(t *testing.T) {
		p := newPendingPayment()
		require.NoError(t, p.MarkCompleted("T1", ""))

		err := p.MarkFailed("late decline", "99")
		require.Error(t, err)
		assert.Equal(t, ErrorCodePaymentInvalidState, GetErrorCode(err))
		assert.Equal(t, PaymentStatusCompleted, p.Status)
	})
}

// TestPayment_MarkRefunded covers completed -> refunded and refund validation
func TestPayment_MarkRefunded(t *testing.T) {
	completed := func() *Payment {
		p := newPendingPayment()
		if err := p.MarkCompleted("T1", ""); err != nil {
			t.Fatalf("setup: %v", err)
		}
		return p
	}

	t.Run("full_refund_when_amount_unspecified", func(t *testing.T) {
		p := completed()

		err := p.MarkRefunded(decimal.Zero)
		require.NoError(t, err)

		assert.Equal(t, PaymentStatusRefunded, p.Status)
		require.NotNil(t, p.RefundAmount)
		assert.True(t, p.RefundAmount.Equal(p.Amount), "zero refund amount means full refund")
		assert.NotNil(t, p.RefundedAt)
	})

	t.Run("partial_refund_within_amount", func(t *testing.T) {
		p := completed()

		err := p.MarkRefunded(decimal.RequireFromString("25.75"))
		require.NoError(t, err)
		assert.True(t, p.RefundAmount.Equal(decimal.RequireFromString("25.75")))
	})

	t.Run("refund_above_original_amount_rejected", func(t *testing.T) {
		p := completed()

		err := p.MarkRefunded(decimal.RequireFromString("200.00"))
		require.Error(t, err)
		assert.Equal(t, ErrorCodeRefundInvalidAmount, GetErrorCode(err))
		assert.Equal(t, PaymentStatusCompleted, p.Status, "failed refund must not mutate status")
	})

	t.Run("negative_refund_amount_rejected", func(t *testing.T) {
		p := completed()

		err := p.MarkRefunded(decimal.RequireFromString("-1"))
		require.Error(t, err)
		assert.Equal(t, ErrorCodeRefundInvalidAmount, GetErrorCode(err))
	})

	t.Run("refund_requires_completed_status", func(t *testing.T) {
		for _, status := range []PaymentStatus{PaymentStatusPending, PaymentStatusProcessing, PaymentStatusFailed, PaymentStatusRefunded} {
			p := newPendingPayment()
			p.Status = status

			err := p.MarkRefunded(decimal.RequireFromString("10"))
			require.Error(t, err, "status=%s", status)
			assert.Equal(t, ErrorCodeRefundNotAllowed, GetErrorCode(err))
		}
	})
}

// TestPayment_CorrelationToken verifies correlation token extraction from the
// preparation payload
func TestPayment_CorrelationToken(t *testing.T) {
	tests := []struct {
		name     string
		payload  map[string]string
		expected string
		found    bool
	}{
		{
			name:     "token_present",
			payload:  map[string]string{PrepKeyCorrelationToken: "sess-42"},
			expected: "sess-42",
			found:    true,
		},
		{
			name:    "nil_payload",
			payload: nil,
			found:   false,
		},
		{
			name:    "payload_without_token",
			payload: map[string]string{"other": "x"},
			found:   false,
		},
		{
			name:    "empty_token_treated_as_absent",
			payload: map[string]string{PrepKeyCorrelationToken: ""},
			found:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPendingPayment()
			p.PreparationPayload = tt.payload

			token, ok := p.CorrelationToken()
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.expected, token)
		})
	}
}

// TestPayment_Validate checks structural invariants
func TestPayment_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Payment)
		expected ErrorCode
	}{
		{
			name:   "valid_payment",
			mutate: func(p *Payment) {},
		},
		{
			name:     "zero_amount_rejected",
			mutate:   func(p *Payment) { p.Amount = decimal.Zero },
			expected: ErrorCodeValidationAmountInvalid,
		},
		{
			name:     "negative_amount_rejected",
			mutate:   func(p *Payment) { p.Amount = decimal.RequireFromString("-5") },
			expected: ErrorCodeValidationAmountInvalid,
		},
		{
			name:     "unknown_method_rejected",
			mutate:   func(p *Payment) { p.Method = PaymentMethod("bitcoin") },
			expected: ErrorCodeMethodUnsupported,
		},
		{
			name:     "missing_currency_rejected",
			mutate:   func(p *Payment) { p.Currency = "" },
			expected: ErrorCodeValidationMissingField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPendingPayment()
			tt.mutate(p)

			err := p.Validate()
			if tt.expected == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.expected, GetErrorCode(err))
		})
	}
}
