package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the lifecycle state of a payment attempt
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"    // Created, awaiting gateway outcome
	PaymentStatusProcessing PaymentStatus = "processing" // Synchronous gateway call in flight
	PaymentStatusCompleted  PaymentStatus = "completed"  // Funds collected
	PaymentStatusFailed     PaymentStatus = "failed"     // Gateway reported failure
	PaymentStatusRefunded   PaymentStatus = "refunded"   // Completed payment returned to donor
)

// PaymentMethod identifies which gateway fulfills a payment
type PaymentMethod string

const (
	PaymentMethodFake       PaymentMethod = "fake" // Test gateway, no external provider
	PaymentMethodPayPal     PaymentMethod = "paypal"
	PaymentMethodCreditCard PaymentMethod = "credit_card"
)

// AllPaymentMethods lists every method the platform knows about.
// Whether a method is usable also depends on deployment feature flags
// and on a gateway actually being registered for it.
var AllPaymentMethods = []PaymentMethod{
	PaymentMethodFake,
	PaymentMethodPayPal,
	PaymentMethodCreditCard,
}

// IsValid returns true if the method is a known payment method
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodFake, PaymentMethodPayPal, PaymentMethodCreditCard:
		return true
	}
	return false
}

// PrepKeyCorrelationToken is the preparation payload key under which gateways
// store the session/correlation token that a later callback must echo back.
const PrepKeyCorrelationToken = "correlation_token"

// Payment represents one attempt to collect funds for a donation
type Payment struct {
	ID         string        `json:"id"`
	DonationID string        `json:"donation_id"`
	Method     PaymentMethod `json:"method"`
	Status     PaymentStatus `json:"status"`

	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"` // ISO 4217

	// Gateway outcome
	TransactionID   *string `json:"transaction_id"`   // Provider transaction id
	GatewayResponse *string `json:"gateway_response"` // Opaque raw provider response
	ErrorMessage    *string `json:"error_message"`
	ErrorCode       *string `json:"error_code"`

	// Refund bookkeeping
	RefundAmount *decimal.Decimal `json:"refund_amount"`

	// Pre-redirect state
	PreparationPayload map[string]string `json:"preparation_payload"` // Opaque, set by prepare
	RedirectURL        *string           `json:"redirect_url"`

	Metadata map[string]string `json:"metadata"`

	InitiatedAt time.Time  `json:"initiated_at"`
	PreparedAt  *time.Time `json:"prepared_at"`
	CompletedAt *time.Time `json:"completed_at"`
	FailedAt    *time.Time `json:"failed_at"`
	RefundedAt  *time.Time `json:"refunded_at"`
}

// IsTerminal returns true once no further callback may mutate the payment
func (p *Payment) IsTerminal() bool {
	return p.Status == PaymentStatusCompleted ||
		p.Status == PaymentStatusFailed ||
		p.Status == PaymentStatusRefunded
}

// CorrelationToken returns the correlation token stored during preparation,
// if the gateway set one
func (p *Payment) CorrelationToken() (string, bool) {
	if p.PreparationPayload == nil {
		return "", false
	}
	token, ok := p.PreparationPayload[PrepKeyCorrelationToken]
	return token, ok && token != ""
}

// SetPreparation records the gateway's pre-redirect payload and redirect URL.
// The payment stays pending so the callback guard's pending-only rule admits
// the gateway's asynchronous callback.
func (p *Payment) SetPreparation(payload map[string]string, redirectURL string) {
	p.PreparationPayload = payload
	if redirectURL != "" {
		p.RedirectURL = &redirectURL
	}
	now := time.Now()
	p.PreparedAt = &now
}

// MarkProcessing moves a pending payment into processing, the transient
// state every settlement traverses before reaching a terminal status. The
// row is never persisted as processing.
func (p *Payment) MarkProcessing() error {
	if p.Status != PaymentStatusPending {
		return ErrPaymentInvalidState.WithDetail("status", string(p.Status))
	}
	p.Status = PaymentStatusProcessing
	return nil
}

// MarkCompleted transitions the payment to completed.
// A non-empty provider transaction id is required; completion without one is
// rejected so incomplete success signals cannot produce a completed payment.
func (p *Payment) MarkCompleted(transactionID, gatewayResponse string) error {
	if p.Status != PaymentStatusPending && p.Status != PaymentStatusProcessing {
		return ErrPaymentInvalidState.WithDetail("status", string(p.Status))
	}
	if transactionID == "" {
		return NewDomainError(ErrorCodeValidationMissingField, "transaction id is required to complete a payment")
	}

	p.Status = PaymentStatusCompleted
	p.TransactionID = &transactionID
	if gatewayResponse != "" {
		p.GatewayResponse = &gatewayResponse
	}
	now := time.Now()
	p.CompletedAt = &now
	return nil
}

// MarkFailed transitions the payment to failed
func (p *Payment) MarkFailed(message, code string) error {
	if p.Status != PaymentStatusPending && p.Status != PaymentStatusProcessing {
		return ErrPaymentInvalidState.WithDetail("status", string(p.Status))
	}

	p.Status = PaymentStatusFailed
	if message != "" {
		p.ErrorMessage = &message
	}
	if code != "" {
		p.ErrorCode = &code
	}
	now := time.Now()
	p.FailedAt = &now
	return nil
}

// MarkRefunded transitions a completed payment to refunded.
// A zero amount means a full refund of the original payment amount.
func (p *Payment) MarkRefunded(amount decimal.Decimal) error {
	if amount.IsZero() {
		amount = p.Amount
	}
	if err := ValidateRefund(p, amount); err != nil {
		return err
	}

	p.Status = PaymentStatusRefunded
	p.RefundAmount = &amount
	now := time.Now()
	p.RefundedAt = &now
	return nil
}

// Validate checks the payment's structural invariants
func (p *Payment) Validate() error {
	if !p.Amount.IsPositive() {
		return ErrValidationAmountInvalid.WithDetail("amount", p.Amount.String())
	}
	if !p.Method.IsValid() {
		return ErrMethodUnsupported.WithDetail("method", string(p.Method))
	}
	if p.Currency == "" {
		return ErrValidationMissingField.WithDetail("field", "currency")
	}
	return nil
}
