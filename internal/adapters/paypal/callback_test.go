package paypal

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fundhive/donation-service/internal/domain"
)

func orderPayment(orderID string) *domain.Payment {
	p := &domain.Payment{
		ID:         "pay-1",
		DonationID: "don-1",
		Method:     domain.PaymentMethodPayPal,
		Status:     domain.PaymentStatusPending,
		Amount:     decimal.RequireFromString("10"),
		Currency:   "USD",
	}
	if orderID != "" {
		p.PreparationPayload = map[string]string{
			domain.PrepKeyCorrelationToken: orderID,
			"order_id":                     orderID,
		}
	}
	return p
}

func TestCallbackHandler_ValidateCallback(t *testing.T) {
	h := NewCallbackHandler(zap.NewNop())

	tests := []struct {
		name    string
		orderID string
		params  map[string]string
		allowed bool
	}{
		{
			name:    "matching_order_token_accepted",
			orderID: "ORD-1",
			params:  map[string]string{"status": "success", "token": "ORD-1"},
			allowed: true,
		},
		{
			name:    "missing_status_rejected",
			orderID: "ORD-1",
			params:  map[string]string{"token": "ORD-1"},
			allowed: false,
		},
		{
			name:    "order_mismatch_rejected",
			orderID: "ORD-1",
			params:  map[string]string{"status": "success", "token": "ORD-2"},
			allowed: false,
		},
		{
			name:    "payment_without_order_rejected",
			orderID: "",
			params:  map[string]string{"status": "success", "token": "ORD-1"},
			allowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, h.ValidateCallback(orderPayment(tt.orderID), &domain.CallbackRequest{Params: tt.params}))
		})
	}
}

func TestCallbackHandler_HandleCallback(t *testing.T) {
	h := NewCallbackHandler(zap.NewNop())

	t.Run("success_carries_capture_id", func(t *testing.T) {
		result, err := h.HandleCallback(orderPayment("ORD-1"), &domain.CallbackRequest{
			Params: map[string]string{"status": "success", "transaction_id": "CAP-1", "token": "ORD-1"},
		})
		require.NoError(t, err)
		assert.True(t, result.IsSuccess())
		assert.Equal(t, "CAP-1", result.TransactionID)
	})

	t.Run("success_without_capture_id_downgraded", func(t *testing.T) {
		result, err := h.HandleCallback(orderPayment("ORD-1"), &domain.CallbackRequest{
			Params: map[string]string{"status": "success", "token": "ORD-1"},
		})
		require.NoError(t, err)
		assert.False(t, result.IsSuccess())
		assert.Equal(t, "MISSING_TRANSACTION_ID", result.ErrorCode)
	})

	t.Run("cancellation_maps_to_failed", func(t *testing.T) {
		result, err := h.HandleCallback(orderPayment("ORD-1"), &domain.CallbackRequest{
			Params: map[string]string{"status": "cancelled", "error_message": "buyer cancelled", "token": "ORD-1"},
		})
		require.NoError(t, err)
		assert.False(t, result.IsSuccess())
		assert.Equal(t, "buyer cancelled", result.ErrorMessage)
	})
}
