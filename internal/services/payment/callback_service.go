package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fundhive/donation-service/internal/domain"
	"github.com/fundhive/donation-service/internal/domain/ports"
	"github.com/fundhive/donation-service/pkg/observability"
)

// CallbackService orchestrates gateway callback processing: it authenticates
// the callback through the Guard, normalizes it through the method's callback
// handler, applies the result transactionally to payment and donation, and
// triggers the downstream aggregation and notification work.
type CallbackService struct {
	db       ports.DBPort
	payments ports.PaymentRepository
	registry *Registry
	guard    *Guard
	applier  *outcomeApplier
	logger   *zap.Logger
}

// NewCallbackService creates a new callback orchestration service
func NewCallbackService(
	db ports.DBPort,
	payments ports.PaymentRepository,
	donations ports.DonationRepository,
	campaigns ports.CampaignRepository,
	registry *Registry,
	guard *Guard,
	queue ports.TaskQueue,
	logger *zap.Logger,
) *CallbackService {
	return &CallbackService{
		db:       db,
		payments: payments,
		registry: registry,
		guard:    guard,
		applier: &outcomeApplier{
			db:        db,
			payments:  payments,
			donations: donations,
			campaigns: campaigns,
			queue:     queue,
			logger:    logger,
		},
		logger: logger,
	}
}

// ProcessCallback validates and applies one gateway callback for the payment.
// The returned payment reflects the committed terminal state.
func (s *CallbackService) ProcessCallback(ctx context.Context, principalID, paymentID string, req *domain.CallbackRequest) (*domain.Payment, error) {
	start := time.Now()

	payment, err := s.payments.GetByID(ctx, nil, paymentID)
	if err != nil {
		return nil, err
	}

	if err := s.guard.AuthorizeCallback(ctx, nil, payment, principalID); err != nil {
		s.logger.Warn("callback denied",
			zap.String("payment_id", paymentID),
			zap.String("status", string(payment.Status)),
			zap.Error(err),
		)
		observability.RecordCallback(string(payment.Method), "denied", time.Since(start))
		return nil, err
	}

	handler, err := s.registry.CallbackHandler(payment.Method)
	if err != nil {
		observability.RecordCallback(string(payment.Method), "no_handler", time.Since(start))
		return nil, err
	}

	if !handler.ValidateCallback(payment, req) {
		observability.RecordCallback(string(payment.Method), "invalid", time.Since(start))
		return nil, domain.ErrCallbackInvalid.WithDetail("payment_id", paymentID)
	}

	result, err := handler.HandleCallback(payment, req)
	if err != nil {
		observability.RecordCallback(string(payment.Method), "invalid", time.Since(start))
		return nil, domain.WrapError(domain.ErrorCodeCallbackInvalid, "callback normalization failed", err)
	}

	updated, donation, err := s.applier.apply(ctx, paymentID, result)
	if err != nil {
		observability.RecordCallback(string(payment.Method), "error", time.Since(start))
		return nil, err
	}

	s.applier.fanout(ctx, updated, donation)

	s.logger.Info("callback processed",
		zap.String("payment_id", updated.ID),
		zap.String("donation_id", donation.ID),
		zap.String("method", string(updated.Method)),
		zap.String("status", string(updated.Status)),
	)
	observability.RecordCallback(string(updated.Method), string(updated.Status), time.Since(start))

	return updated, nil
}

// GetResult returns the payment for its result view. Access requires
// ownership and a terminal payment; the view content is driven strictly by the
// persisted status, never by callback parameters. Payment and donation are
// read in one read-only transaction so the access decision sees a single
// snapshot.
func (s *CallbackService) GetResult(ctx context.Context, principalID, paymentID string) (*domain.Payment, error) {
	var payment *domain.Payment
	err := s.db.WithReadOnlyTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		payment, err = s.payments.GetByID(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if err := s.guard.AuthorizeResultView(ctx, tx, payment, principalID); err != nil {
			return fmt.Errorf("result view denied: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}
