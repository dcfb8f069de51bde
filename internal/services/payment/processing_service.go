package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fundhive/donation-service/internal/domain"
	"github.com/fundhive/donation-service/internal/domain/ports"
	"github.com/fundhive/donation-service/pkg/resilience"
)

// ProcessingService creates donations with their payment attempts and drives
// gateway-side operations: preparation, refunds and status verification.
type ProcessingService struct {
	db        ports.DBPort
	payments  ports.PaymentRepository
	donations ports.DonationRepository
	campaigns ports.CampaignRepository
	registry  *Registry
	guard     *Guard
	applier   *outcomeApplier
	timeouts  *resilience.TimeoutConfig
	logger    *zap.Logger
}

// NewProcessingService creates a new payment processing service
func NewProcessingService(
	db ports.DBPort,
	payments ports.PaymentRepository,
	donations ports.DonationRepository,
	campaigns ports.CampaignRepository,
	registry *Registry,
	guard *Guard,
	queue ports.TaskQueue,
	logger *zap.Logger,
) *ProcessingService {
	return &ProcessingService{
		db:        db,
		payments:  payments,
		donations: donations,
		campaigns: campaigns,
		registry:  registry,
		guard:     guard,
		applier: &outcomeApplier{
			db:        db,
			payments:  payments,
			donations: donations,
			campaigns: campaigns,
			queue:     queue,
			logger:    logger,
		},
		timeouts: resilience.DefaultTimeoutConfig(),
		logger:   logger,
	}
}

// InitiateDonationRequest carries the inputs for a new donation attempt
type InitiateDonationRequest struct {
	CampaignID string
	UserID     string
	Amount     decimal.Decimal
	Currency   string
	Method     domain.PaymentMethod
	Metadata   map[string]string
}

// InitiateDonationResult returns the created aggregates
type InitiateDonationResult struct {
	Donation *domain.Donation
	Payment  *domain.Payment
}

// InitiateDonation creates a pending donation and its pending payment attempt
// in one transaction. The payment method must be enabled and backed by a
// registered gateway.
func (s *ProcessingService) InitiateDonation(ctx context.Context, req InitiateDonationRequest) (*InitiateDonationResult, error) {
	if _, err := s.registry.Gateway(req.Method); err != nil {
		return nil, err
	}
	if _, err := s.campaigns.GetByID(ctx, nil, req.CampaignID); err != nil {
		return nil, err
	}

	now := time.Now()
	donation := &domain.Donation{
		ID:         uuid.New().String(),
		CampaignID: req.CampaignID,
		UserID:     req.UserID,
		Amount:     req.Amount,
		Status:     domain.DonationStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := donation.Validate(); err != nil {
		return nil, err
	}

	payment := &domain.Payment{
		ID:          uuid.New().String(),
		DonationID:  donation.ID,
		Method:      req.Method,
		Status:      domain.PaymentStatusPending,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Metadata:    req.Metadata,
		InitiatedAt: now,
	}
	if err := payment.Validate(); err != nil {
		return nil, err
	}

	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.donations.Create(ctx, tx, donation); err != nil {
			return fmt.Errorf("create donation: %w", err)
		}
		if err := s.payments.Create(ctx, tx, payment); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("donation initiated",
		zap.String("donation_id", donation.ID),
		zap.String("payment_id", payment.ID),
		zap.String("campaign_id", req.CampaignID),
		zap.String("method", string(req.Method)),
		zap.String("amount", req.Amount.String()),
	)

	return &InitiateDonationResult{Donation: donation, Payment: payment}, nil
}

// PreparePayment runs the gateway's process step for a pending payment. For
// redirect gateways the preparation payload and redirect URL are persisted
// before the donor is sent to the provider; synchronous gateways settle
// immediately and flow through the same outcome path as callbacks.
func (s *ProcessingService) PreparePayment(ctx context.Context, principalID, paymentID string, req *ports.ProcessRequest) (*domain.Payment, error) {
	payment, err := s.payments.GetByID(ctx, nil, paymentID)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwnership(ctx, payment, principalID); err != nil {
		return nil, err
	}
	if payment.Status != domain.PaymentStatusPending {
		return nil, domain.ErrPaymentInvalidState.WithDetail("status", string(payment.Status))
	}

	gateway, err := s.registry.Gateway(payment.Method)
	if err != nil {
		return nil, err
	}

	gwCtx, cancel := s.timeouts.GatewayContext(ctx)
	result, err := gateway.ProcessPayment(gwCtx, payment, req)
	cancel()
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeGatewayError, "gateway process failed", err)
	}

	if result.Completed {
		// Synchronous settlement: reuse the callback outcome path so payment,
		// donation and downstream effects stay consistent.
		updated, donation, err := s.applier.apply(ctx, paymentID, &domain.CallbackResult{
			Status:          domain.CallbackStatusSuccess,
			TransactionID:   result.TransactionID,
			GatewayResponse: result.GatewayResponse,
		})
		if err != nil {
			return nil, err
		}
		s.applier.fanout(ctx, updated, donation)
		return updated, nil
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		locked, err := s.payments.GetByIDForUpdate(ctx, tx, paymentID)
		if err != nil {
			return fmt.Errorf("lock payment: %w", err)
		}
		if locked.Status != domain.PaymentStatusPending {
			return domain.ErrPaymentInvalidState.WithDetail("status", string(locked.Status))
		}
		locked.SetPreparation(result.PreparationPayload, result.RedirectURL)
		if err := s.payments.Update(ctx, tx, locked); err != nil {
			return fmt.Errorf("persist preparation: %w", err)
		}
		payment = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment prepared",
		zap.String("payment_id", payment.ID),
		zap.String("gateway", gateway.Name()),
	)
	return payment, nil
}

// Refund returns funds for a completed payment. Eligibility is validated
// before any provider call; a zero amount requests a full refund.
func (s *ProcessingService) Refund(ctx context.Context, principalID, paymentID string, spec *ports.RefundSpec) (*domain.Payment, error) {
	payment, err := s.payments.GetByID(ctx, nil, paymentID)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwnership(ctx, payment, principalID); err != nil {
		return nil, err
	}

	amount := spec.Amount
	if amount.IsZero() {
		amount = payment.Amount
	}
	if err := domain.ValidateRefund(payment, amount); err != nil {
		return nil, err
	}

	gateway, err := s.registry.Gateway(payment.Method)
	if err != nil {
		return nil, err
	}

	gwCtx, cancel := s.timeouts.GatewayContext(ctx)
	refund, err := gateway.RefundPayment(gwCtx, payment, spec)
	cancel()
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeGatewayError, "gateway refund failed", err)
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		locked, err := s.payments.GetByIDForUpdate(ctx, tx, paymentID)
		if err != nil {
			return fmt.Errorf("lock payment: %w", err)
		}
		if err := locked.MarkRefunded(amount); err != nil {
			return err
		}
		if refund.GatewayResponse != "" {
			locked.GatewayResponse = &refund.GatewayResponse
		}
		if err := s.payments.Update(ctx, tx, locked); err != nil {
			return fmt.Errorf("update payment: %w", err)
		}
		payment = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment refunded",
		zap.String("payment_id", payment.ID),
		zap.String("amount", amount.String()),
	)
	return payment, nil
}

// VerifyStatus asks the payment's gateway for the provider's current view.
// Read-only: it never mutates the stored payment.
func (s *ProcessingService) VerifyStatus(ctx context.Context, principalID, paymentID string) (*ports.VerifyResult, error) {
	payment, err := s.payments.GetByID(ctx, nil, paymentID)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwnership(ctx, payment, principalID); err != nil {
		return nil, err
	}

	gateway, err := s.registry.Gateway(payment.Method)
	if err != nil {
		return nil, err
	}
	gwCtx, cancel := s.timeouts.GatewayContext(ctx)
	defer cancel()
	result, err := gateway.VerifyPaymentStatus(gwCtx, payment)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeGatewayError, "gateway verify failed", err)
	}
	return result, nil
}

// AvailableMethods returns the payment methods usable in this deployment
func (s *ProcessingService) AvailableMethods() []domain.PaymentMethod {
	return s.registry.AvailableMethods()
}

func (s *ProcessingService) checkOwnership(ctx context.Context, payment *domain.Payment, principalID string) error {
	donation, err := s.donations.GetByID(ctx, nil, payment.DonationID)
	if err != nil {
		if domain.IsNotFoundError(err) {
			return domain.ErrAuthAccessDenied.WithDetail("reason", "donation missing")
		}
		return err
	}
	if donation.UserID != principalID {
		return domain.ErrAuthAccessDenied.WithDetail("reason", "ownership mismatch")
	}
	return nil
}
