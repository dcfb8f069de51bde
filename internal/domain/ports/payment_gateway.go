package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fundhive/donation-service/internal/domain"
)

// ProcessRequest carries caller-supplied data into a gateway's process step
type ProcessRequest struct {
	// ReturnURL is where the external provider should send the donor back
	ReturnURL string
	// Extra holds provider-specific inputs (e.g. card token)
	Extra map[string]string
}

// ProcessResult is the outcome of a gateway's process step. Redirect gateways
// fill PreparationPayload and RedirectURL and leave the payment pending;
// synchronous gateways report a terminal outcome directly.
type ProcessResult struct {
	// PreparationPayload is persisted on the payment before redirecting.
	// If the gateway needs callback correlation it stores the token under
	// domain.PrepKeyCorrelationToken.
	PreparationPayload map[string]string
	RedirectURL        string

	// Synchronous outcome, only set when the gateway settled immediately
	Completed       bool
	TransactionID   string
	GatewayResponse string
}

// RefundSpec describes a requested refund. A zero Amount means a full refund.
type RefundSpec struct {
	Amount decimal.Decimal
	Reason string
}

// RefundResult is the provider's answer to a refund request
type RefundResult struct {
	RefundTransactionID string
	GatewayResponse     string
}

// VerifyResult reports the provider's current view of a payment
type VerifyResult struct {
	Status          domain.PaymentStatus
	TransactionID   string
	GatewayResponse string
}

// PaymentGateway adapts one external payment provider. Gateway calls may block
// on network I/O; callers bound them with the request context and retry only
// by explicit re-invocation.
type PaymentGateway interface {
	// Name returns the gateway's identifier for logs and registry lookups
	Name() string

	// Supports reports whether this gateway fulfills the given method
	Supports(method domain.PaymentMethod) bool

	// ProcessPayment starts collection for a pending payment, either by
	// preparing a redirect session or by settling synchronously
	ProcessPayment(ctx context.Context, payment *domain.Payment, req *ProcessRequest) (*ProcessResult, error)

	// RefundPayment returns funds for a completed payment. Implementations
	// validate eligibility via domain.ValidateRefund before any provider call.
	RefundPayment(ctx context.Context, payment *domain.Payment, spec *RefundSpec) (*RefundResult, error)

	// VerifyPaymentStatus asks the provider for the payment's current status
	VerifyPaymentStatus(ctx context.Context, payment *domain.Payment) (*VerifyResult, error)
}

// CallbackHandler parses and validates one provider's asynchronous callback
// payload into a normalized result
type CallbackHandler interface {
	// ValidateCallback reports whether the raw callback is acceptable for the
	// payment: the status field must be present and any correlation token
	// stored during preparation must match the request
	ValidateCallback(payment *domain.Payment, req *domain.CallbackRequest) bool

	// HandleCallback normalizes the callback into a CallbackResult. A success
	// status without a usable transaction id normalizes to a failed result.
	HandleCallback(payment *domain.Payment, req *domain.CallbackRequest) (*domain.CallbackResult, error)
}
