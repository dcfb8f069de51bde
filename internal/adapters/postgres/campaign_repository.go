package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/fundhive/donation-service/internal/domain"
	"github.com/fundhive/donation-service/internal/domain/ports"
)

// CampaignRepository implements ports.CampaignRepository on PostgreSQL.
// Campaign creation and editing live in another service; this one only reads
// campaigns and maintains their derived running total.
type CampaignRepository struct {
	db ports.DBPort
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db ports.DBPort) *CampaignRepository {
	return &CampaignRepository{db: db}
}

func (r *CampaignRepository) exec(db ports.DBTX) ports.DBTX {
	if db != nil {
		return db
	}
	return r.db.GetDB()
}

// GetByID retrieves a campaign by its id
func (r *CampaignRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*domain.Campaign, error) {
	return r.get(ctx, db, id, false)
}

// GetByIDForUpdate retrieves a campaign with a row lock so concurrent
// recomputations of the same campaign serialize
func (r *CampaignRepository) GetByIDForUpdate(ctx context.Context, db ports.DBTX, id string) (*domain.Campaign, error) {
	return r.get(ctx, db, id, true)
}

func (r *CampaignRepository) get(ctx context.Context, db ports.DBTX, id string, forUpdate bool) (*domain.Campaign, error) {
	query := `SELECT id, owner_id, title, goal_amount, current_amount, created_at
		FROM campaigns WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var (
		c                         domain.Campaign
		goalAmount, currentAmount pgtype.Numeric
	)
	err := r.exec(db).QueryRow(ctx, query, id).Scan(
		&c.ID, &c.OwnerID, &c.Title, &goalAmount, &currentAmount, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCampaignNotFound
		}
		return nil, fmt.Errorf("get campaign by id: %w", err)
	}

	if c.GoalAmount, err = numericToDecimal(goalAmount); err != nil {
		return nil, err
	}
	if c.CurrentAmount, err = numericToDecimal(currentAmount); err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateCurrentAmount sets the campaign's derived running total
func (r *CampaignRepository) UpdateCurrentAmount(ctx context.Context, db ports.DBTX, id string, amount decimal.Decimal) error {
	total, err := decimalToNumeric(amount)
	if err != nil {
		return err
	}

	tag, err := r.exec(db).Exec(ctx,
		`UPDATE campaigns SET current_amount = $2 WHERE id = $1`, id, total)
	if err != nil {
		return fmt.Errorf("update campaign amount: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCampaignNotFound.WithDetail("campaign_id", id)
	}
	return nil
}
