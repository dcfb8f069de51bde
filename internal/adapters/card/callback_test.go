package card

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fundhive/donation-service/internal/domain"
)

func preparedPayment(session string) *domain.Payment {
	p := &domain.Payment{
		ID:         "pay-1",
		DonationID: "don-1",
		Method:     domain.PaymentMethodCreditCard,
		Status:     domain.PaymentStatusPending,
		Amount:     decimal.RequireFromString("10"),
		Currency:   "USD",
	}
	if session != "" {
		p.PreparationPayload = map[string]string{domain.PrepKeyCorrelationToken: session}
	}
	return p
}

func TestCallbackHandler_ValidateCallback(t *testing.T) {
	h := NewCallbackHandler(zap.NewNop())

	tests := []struct {
		name    string
		session string
		params  map[string]string
		allowed bool
	}{
		{
			name:    "matching_session_accepted",
			session: "sess-1",
			params:  map[string]string{"AUTH_RESP": "00", "SESSION": "sess-1"},
			allowed: true,
		},
		{
			name:    "missing_response_code_rejected",
			session: "sess-1",
			params:  map[string]string{"SESSION": "sess-1"},
			allowed: false,
		},
		{
			name:    "session_mismatch_rejected",
			session: "sess-1",
			params:  map[string]string{"AUTH_RESP": "00", "SESSION": "sess-2"},
			allowed: false,
		},
		{
			// A callback can only follow a prepare; a payment that never got a
			// session cannot accept one.
			name:    "payment_without_session_rejected",
			session: "",
			params:  map[string]string{"AUTH_RESP": "00", "SESSION": "sess-1"},
			allowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payment := preparedPayment(tt.session)
			assert.Equal(t, tt.allowed, h.ValidateCallback(payment, &domain.CallbackRequest{Params: tt.params}))
		})
	}
}

func TestCallbackHandler_HandleCallback(t *testing.T) {
	h := NewCallbackHandler(zap.NewNop())

	t.Run("approval_with_guid_succeeds", func(t *testing.T) {
		result, err := h.HandleCallback(preparedPayment("sess-1"), &domain.CallbackRequest{
			Params: map[string]string{"AUTH_RESP": "00", "AUTH_GUID": "GUID-1", "SESSION": "sess-1"},
		})
		require.NoError(t, err)
		assert.True(t, result.IsSuccess())
		assert.Equal(t, "GUID-1", result.TransactionID)
	})

	t.Run("approval_without_guid_downgraded", func(t *testing.T) {
		result, err := h.HandleCallback(preparedPayment("sess-1"), &domain.CallbackRequest{
			Params: map[string]string{"AUTH_RESP": "00", "SESSION": "sess-1"},
		})
		require.NoError(t, err)
		assert.False(t, result.IsSuccess())
		assert.Equal(t, "MISSING_TRANSACTION_ID", result.ErrorCode)
	})

	t.Run("decline_maps_provider_code_and_text", func(t *testing.T) {
		result, err := h.HandleCallback(preparedPayment("sess-1"), &domain.CallbackRequest{
			Params: map[string]string{
				"AUTH_RESP":      "51",
				"AUTH_RESP_TEXT": "INSUFF FUNDS",
				"SESSION":        "sess-1",
			},
		})
		require.NoError(t, err)
		assert.False(t, result.IsSuccess())
		assert.Equal(t, "51", result.ErrorCode)
		assert.Equal(t, "INSUFF FUNDS", result.ErrorMessage)
	})
}
