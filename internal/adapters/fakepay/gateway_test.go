package fakepay

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fundhive/donation-service/internal/domain"
	"github.com/fundhive/donation-service/internal/domain/ports"
)

func TestGateway_ProcessPayment(t *testing.T) {
	t.Run("redirect_mode_prepares_session", func(t *testing.T) {
		g := NewGateway(DefaultConfig(), zap.NewNop())
		payment := pendingPayment(nil)

		result, err := g.ProcessPayment(context.Background(), payment, &ports.ProcessRequest{})
		require.NoError(t, err)

		assert.False(t, result.Completed)
		token := result.PreparationPayload[domain.PrepKeyCorrelationToken]
		require.NotEmpty(t, token)
		assert.True(t, strings.HasPrefix(result.RedirectURL, DefaultConfig().RedirectBaseURL))
		assert.Contains(t, result.RedirectURL, token, "the redirect carries the session token the callback must echo")
	})

	t.Run("synchronous_mode_settles_immediately", func(t *testing.T) {
		g := NewGateway(&Config{Synchronous: true}, zap.NewNop())

		result, err := g.ProcessPayment(context.Background(), pendingPayment(nil), &ports.ProcessRequest{})
		require.NoError(t, err)

		assert.True(t, result.Completed)
		assert.True(t, strings.HasPrefix(result.TransactionID, "FAKE-"))
	})
}

func TestGateway_RefundPayment(t *testing.T) {
	g := NewGateway(DefaultConfig(), zap.NewNop())

	t.Run("completed_payment_refundable", func(t *testing.T) {
		payment := pendingPayment(nil)
		require.NoError(t, payment.MarkCompleted("FAKE-1", ""))

		result, err := g.RefundPayment(context.Background(), payment, &ports.RefundSpec{})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(result.RefundTransactionID, "FAKE-REF-"))
	})

	t.Run("pending_payment_rejected_locally", func(t *testing.T) {
		_, err := g.RefundPayment(context.Background(), pendingPayment(nil), &ports.RefundSpec{})
		require.Error(t, err)
		assert.Equal(t, domain.ErrorCodeRefundNotAllowed, domain.GetErrorCode(err))
	})

	t.Run("excess_amount_rejected_locally", func(t *testing.T) {
		payment := pendingPayment(nil)
		require.NoError(t, payment.MarkCompleted("FAKE-1", ""))

		_, err := g.RefundPayment(context.Background(), payment, &ports.RefundSpec{
			Amount: decimal.RequireFromString("9999"),
		})
		require.Error(t, err)
		assert.Equal(t, domain.ErrorCodeRefundInvalidAmount, domain.GetErrorCode(err))
	})
}

func TestGateway_VerifyPaymentStatus(t *testing.T) {
	g := NewGateway(DefaultConfig(), zap.NewNop())
	payment := pendingPayment(nil)
	require.NoError(t, payment.MarkCompleted("FAKE-1", ""))

	result, err := g.VerifyPaymentStatus(context.Background(), payment)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, result.Status)
	assert.Equal(t, "FAKE-1", result.TransactionID)
}
