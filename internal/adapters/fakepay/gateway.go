package fakepay

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fundhive/donation-service/internal/domain"
	"github.com/fundhive/donation-service/internal/domain/ports"
)

// Config contains configuration for the FakePay gateway
type Config struct {
	// RedirectBaseURL is the fake checkout page donors are sent to
	RedirectBaseURL string

	// Synchronous makes ProcessPayment settle immediately instead of
	// preparing a redirect. Used by integration tests and demo deployments.
	Synchronous bool
}

// DefaultConfig returns default configuration for the FakePay gateway
func DefaultConfig() *Config {
	return &Config{
		RedirectBaseURL: "https://fakepay.invalid/checkout",
	}
}

// Gateway is a simulated payment provider. It never talks to an external
// system; redirect sessions and transaction ids are generated locally so the
// whole payment flow can run in development and tests.
type Gateway struct {
	config *Config
	logger *zap.Logger
}

// NewGateway creates a new FakePay gateway
func NewGateway(config *Config, logger *zap.Logger) *Gateway {
	return &Gateway{config: config, logger: logger}
}

// Name returns the gateway identifier
func (g *Gateway) Name() string {
	return "fakepay"
}

// Supports reports whether this gateway fulfills the given method
func (g *Gateway) Supports(method domain.PaymentMethod) bool {
	return method == domain.PaymentMethodFake
}

// ProcessPayment prepares a fake redirect session, or settles immediately in
// synchronous mode
func (g *Gateway) ProcessPayment(ctx context.Context, payment *domain.Payment, req *ports.ProcessRequest) (*ports.ProcessResult, error) {
	if g.config.Synchronous {
		txnID := "FAKE-" + uuid.New().String()
		g.logger.Info("fakepay settled synchronously",
			zap.String("payment_id", payment.ID),
			zap.String("transaction_id", txnID),
		)
		return &ports.ProcessResult{
			Completed:       true,
			TransactionID:   txnID,
			GatewayResponse: `{"simulated":true}`,
		}, nil
	}

	token := uuid.New().String()
	redirectURL := fmt.Sprintf("%s?payment_id=%s&token=%s",
		g.config.RedirectBaseURL, payment.ID, token)

	g.logger.Info("fakepay session prepared",
		zap.String("payment_id", payment.ID),
	)

	return &ports.ProcessResult{
		PreparationPayload: map[string]string{
			domain.PrepKeyCorrelationToken: token,
		},
		RedirectURL: redirectURL,
	}, nil
}

// RefundPayment simulates a refund after validating eligibility
func (g *Gateway) RefundPayment(ctx context.Context, payment *domain.Payment, spec *ports.RefundSpec) (*ports.RefundResult, error) {
	amount := spec.Amount
	if amount.IsZero() {
		amount = payment.Amount
	}
	if err := domain.ValidateRefund(payment, amount); err != nil {
		return nil, err
	}

	refundID := "FAKE-REF-" + uuid.New().String()
	g.logger.Info("fakepay refund issued",
		zap.String("payment_id", payment.ID),
		zap.String("refund_id", refundID),
		zap.String("amount", amount.String()),
	)

	return &ports.RefundResult{
		RefundTransactionID: refundID,
		GatewayResponse:     `{"simulated":true,"refunded":true}`,
	}, nil
}

// VerifyPaymentStatus echoes the locally stored state; there is no external
// provider to ask
func (g *Gateway) VerifyPaymentStatus(ctx context.Context, payment *domain.Payment) (*ports.VerifyResult, error) {
	result := &ports.VerifyResult{
		Status:          payment.Status,
		GatewayResponse: `{"simulated":true}`,
	}
	if payment.TransactionID != nil {
		result.TransactionID = *payment.TransactionID
	}
	return result, nil
}
