package payment

import (
	"context"
	"fmt"

	"github.com/fundhive/donation-service/internal/domain"
	"github.com/fundhive/donation-service/internal/domain/ports"
)

// Guard decides whether a principal may act on a payment at all. It runs
// before any callback handler sees the request and is the mechanism that makes
// replayed or duplicate callbacks safe: only a single pending->terminal
// transition is ever allowed.
//
// Denials are deliberately uniform AUTH_ACCESS_DENIED so responses do not leak
// which invariant failed.
type Guard struct {
	donations ports.DonationRepository
}

// NewGuard creates a new callback guard
func NewGuard(donations ports.DonationRepository) *Guard {
	return &Guard{donations: donations}
}

// AuthorizeCallback checks, in order and short-circuiting on first failure:
//  1. the payment's owning donation belongs to the principal
//  2. the payment is currently exactly pending
func (g *Guard) AuthorizeCallback(ctx context.Context, db ports.DBTX, payment *domain.Payment, principalID string) error {
	if err := g.checkOwnership(ctx, db, payment, principalID); err != nil {
		return err
	}
	if payment.Status != domain.PaymentStatusPending {
		return domain.ErrAuthAccessDenied.WithDetail("reason", "payment not pending")
	}
	return nil
}

// AuthorizeResultView is the read-side counterpart: the principal must own the
// payment and the payment must already be terminal. Viewing never mutates
// payment state.
func (g *Guard) AuthorizeResultView(ctx context.Context, db ports.DBTX, payment *domain.Payment, principalID string) error {
	if err := g.checkOwnership(ctx, db, payment, principalID); err != nil {
		return err
	}
	if !payment.IsTerminal() {
		return domain.ErrAuthAccessDenied.WithDetail("reason", "payment not terminal")
	}
	return nil
}

func (g *Guard) checkOwnership(ctx context.Context, db ports.DBTX, payment *domain.Payment, principalID string) error {
	donation, err := g.donations.GetByID(ctx, db, payment.DonationID)
	if err != nil {
		if domain.IsNotFoundError(err) {
			return domain.ErrAuthAccessDenied.WithDetail("reason", "donation missing")
		}
		return fmt.Errorf("load donation for guard: %w", err)
	}
	if donation.UserID != principalID {
		return domain.ErrAuthAccessDenied.WithDetail("reason", "ownership mismatch")
	}
	return nil
}
