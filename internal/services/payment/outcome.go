package payment

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fundhive/donation-service/internal/domain"
	"github.com/fundhive/donation-service/internal/domain/ports"
)

// outcomeApplier owns the single mutation path for payment outcomes: the
// transactional payment+donation update and the post-commit fan-out. Both the
// callback flow and synchronous gateway completions go through it, so the
// consistency rules live in one place.
type outcomeApplier struct {
	db        ports.DBPort
	payments  ports.PaymentRepository
	donations ports.DonationRepository
	campaigns ports.CampaignRepository
	queue     ports.TaskQueue
	logger    *zap.Logger
}

// apply commits the normalized result to the payment and its donation in one
// transaction. The payment row is locked and re-checked for pending inside the
// transaction, so of two concurrent deliveries exactly one commits; the loser
// gets an authorization denial.
func (o *outcomeApplier) apply(ctx context.Context, paymentID string, result *domain.CallbackResult) (*domain.Payment, *domain.Donation, error) {
	var (
		payment  *domain.Payment
		donation *domain.Donation
	)

	err := o.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		payment, err = o.payments.GetByIDForUpdate(ctx, tx, paymentID)
		if err != nil {
			return fmt.Errorf("lock payment: %w", err)
		}

		// Re-check under the row lock; a concurrent delivery may have won.
		if payment.Status != domain.PaymentStatusPending {
			return domain.ErrAuthAccessDenied.WithDetail("reason", "payment not pending")
		}

		// The processing state only exists inside this transaction; the row
		// is never persisted mid-settlement.
		if err := payment.MarkProcessing(); err != nil {
			return err
		}

		if result.IsSuccess() {
			if err := payment.MarkCompleted(result.TransactionID, result.GatewayResponse); err != nil {
				return err
			}
		} else {
			if err := payment.MarkFailed(result.ErrorMessage, result.ErrorCode); err != nil {
				return err
			}
		}
		if err := o.payments.Update(ctx, tx, payment); err != nil {
			return fmt.Errorf("update payment: %w", err)
		}

		donation, err = o.donations.GetByID(ctx, tx, payment.DonationID)
		if err != nil {
			return fmt.Errorf("load donation: %w", err)
		}
		if result.IsSuccess() {
			donation.MarkSucceeded()
		} else {
			donation.MarkFailed(result.ErrorMessage)
		}
		if err := o.donations.Update(ctx, tx, donation); err != nil {
			return fmt.Errorf("update donation: %w", err)
		}
		return nil
	})
	if err != nil {
		// Keep domain denials intact; wrap everything else so the caller sees
		// a processing failure with the original cause.
		if domain.GetErrorCode(err) != "" {
			return nil, nil, err
		}
		return nil, nil, domain.WrapError(domain.ErrorCodeCallbackProcessingFailed, "callback processing failed", err)
	}

	return payment, donation, nil
}

// fanout enqueues the asynchronous effects of a committed outcome: campaign
// aggregation and the donation-received notification on success, plus the
// payment outcome notification to the donor in all cases. Runs strictly after
// the transaction commits; enqueue failures are logged, not propagated, since
// the payment state is already durable.
func (o *outcomeApplier) fanout(ctx context.Context, payment *domain.Payment, donation *domain.Donation) {
	if payment.Status == domain.PaymentStatusCompleted {
		if err := o.queue.Enqueue(ctx, string(domain.TaskTypeCampaignAggregation), map[string]string{
			domain.TaskKeyCampaignID: donation.CampaignID,
		}); err != nil {
			o.logger.Error("failed to enqueue campaign aggregation",
				zap.String("campaign_id", donation.CampaignID),
				zap.Error(err),
			)
		}

		campaign, err := o.campaigns.GetByID(ctx, nil, donation.CampaignID)
		if err != nil {
			o.logger.Error("failed to load campaign for owner notification",
				zap.String("campaign_id", donation.CampaignID),
				zap.Error(err),
			)
		} else if err := o.queue.Enqueue(ctx, string(domain.TaskTypeNotification), map[string]string{
			domain.TaskKeyRecipient:  campaign.OwnerID,
			domain.TaskKeyEventType:  domain.EventDonationReceived,
			domain.TaskKeyCampaignID: donation.CampaignID,
			domain.TaskKeyDonationID: donation.ID,
			domain.TaskKeyAmount:     donation.Amount.String(),
			domain.TaskKeyCurrency:   payment.Currency,
		}); err != nil {
			o.logger.Error("failed to enqueue donation notification",
				zap.String("campaign_id", donation.CampaignID),
				zap.Error(err),
			)
		}
	}

	eventType := domain.EventPaymentFailed
	if payment.Status == domain.PaymentStatusCompleted {
		eventType = domain.EventPaymentSucceeded
	}
	if err := o.queue.Enqueue(ctx, string(domain.TaskTypeNotification), map[string]string{
		domain.TaskKeyRecipient:  donation.UserID,
		domain.TaskKeyEventType:  eventType,
		domain.TaskKeyPaymentID:  payment.ID,
		domain.TaskKeyDonationID: donation.ID,
		domain.TaskKeyAmount:     payment.Amount.String(),
		domain.TaskKeyCurrency:   payment.Currency,
	}); err != nil {
		o.logger.Error("failed to enqueue payment outcome notification",
			zap.String("payment_id", payment.ID),
			zap.Error(err),
		)
	}
}
