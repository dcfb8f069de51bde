package domain

import (
	"github.com/shopspring/decimal"
)

// ValidateRefund checks whether a payment may be refunded for the given
// amount. Every gateway calls this before delegating to provider-specific
// refund logic, so eligibility rules live in exactly one place.
func ValidateRefund(p *Payment, amount decimal.Decimal) error {
	if p.Status != PaymentStatusCompleted {
		return ErrRefundNotAllowed.WithDetail("status", string(p.Status))
	}
	if !amount.IsPositive() {
		return ErrRefundInvalidAmount.WithDetail("amount", amount.String())
	}
	if amount.GreaterThan(p.Amount) {
		return ErrRefundInvalidAmount.
			WithDetail("amount", amount.String()).
			WithDetail("payment_amount", p.Amount.String())
	}
	return nil
}
