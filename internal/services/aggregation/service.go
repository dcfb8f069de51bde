package aggregation

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fundhive/donation-service/internal/domain/ports"
)

// Service recomputes a campaign's running total from its successful
// donations. The recomputation is a full re-sum, never an increment, so it is
// idempotent and safe to run repeatedly or concurrently: the campaign row is
// locked while the sum is read and written, so the committed value always
// reflects a consistent sum.
type Service struct {
	db        ports.DBPort
	donations ports.DonationRepository
	campaigns ports.CampaignRepository
	logger    *zap.Logger
}

// NewService creates a new aggregation service
func NewService(db ports.DBPort, donations ports.DonationRepository, campaigns ports.CampaignRepository, logger *zap.Logger) *Service {
	return &Service{
		db:        db,
		donations: donations,
		campaigns: campaigns,
		logger:    logger,
	}
}

// RecomputeCampaignAmount sets campaign.current_amount to the sum of all
// successful donation amounts for the campaign
func (s *Service) RecomputeCampaignAmount(ctx context.Context, campaignID string) error {
	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		campaign, err := s.campaigns.GetByIDForUpdate(ctx, tx, campaignID)
		if err != nil {
			return fmt.Errorf("lock campaign: %w", err)
		}

		total, err := s.donations.SumSucceededByCampaign(ctx, tx, campaignID)
		if err != nil {
			return fmt.Errorf("sum donations: %w", err)
		}

		if err := s.campaigns.UpdateCurrentAmount(ctx, tx, campaign.ID, total); err != nil {
			return fmt.Errorf("update campaign amount: %w", err)
		}

		s.logger.Info("campaign amount recomputed",
			zap.String("campaign_id", campaignID),
			zap.String("current_amount", total.String()),
		)
		return nil
	})
	if err != nil {
		return fmt.Errorf("recompute campaign %s: %w", campaignID, err)
	}
	return nil
}
