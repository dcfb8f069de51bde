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

// DonationRepository implements ports.DonationRepository on PostgreSQL
type DonationRepository struct {
	db ports.DBPort
}

// NewDonationRepository creates a new donation repository
func NewDonationRepository(db ports.DBPort) *DonationRepository {
	return &DonationRepository{db: db}
}

func (r *DonationRepository) exec(db ports.DBTX) ports.DBTX {
	if db != nil {
		return db
	}
	return r.db.GetDB()
}

// Create inserts a new donation
func (r *DonationRepository) Create(ctx context.Context, db ports.DBTX, donation *domain.Donation) error {
	amount, err := decimalToNumeric(donation.Amount)
	if err != nil {
		return err
	}

	_, err = r.exec(db).Exec(ctx, `
		INSERT INTO donations (id, campaign_id, user_id, amount, status, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		donation.ID, donation.CampaignID, donation.UserID, amount,
		string(donation.Status), nullText(donation.ErrorMessage),
		donation.CreatedAt, donation.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create donation: %w", err)
	}
	return nil
}

// GetByID retrieves a donation by its id
func (r *DonationRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*domain.Donation, error) {
	var (
		d            domain.Donation
		status       string
		amount       pgtype.Numeric
		errorMessage pgtype.Text
	)

	err := r.exec(db).QueryRow(ctx, `
		SELECT id, campaign_id, user_id, amount, status, error_message, created_at, updated_at
		FROM donations WHERE id = $1`, id,
	).Scan(&d.ID, &d.CampaignID, &d.UserID, &amount, &status, &errorMessage, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDonationNotFound
		}
		return nil, fmt.Errorf("get donation by id: %w", err)
	}

	d.Status = domain.DonationStatus(status)
	d.ErrorMessage = textPtr(errorMessage)
	if d.Amount, err = numericToDecimal(amount); err != nil {
		return nil, err
	}
	return &d, nil
}

// Update writes the donation's status and error message
func (r *DonationRepository) Update(ctx context.Context, db ports.DBTX, donation *domain.Donation) error {
	tag, err := r.exec(db).Exec(ctx, `
		UPDATE donations SET status = $2, error_message = $3, updated_at = $4
		WHERE id = $1`,
		donation.ID, string(donation.Status), nullText(donation.ErrorMessage), donation.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update donation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDonationNotFound.WithDetail("donation_id", donation.ID)
	}
	return nil
}

// SumSucceededByCampaign returns the total amount of successful donations for
// the campaign. COALESCE keeps campaigns with no successful donations at zero.
func (r *DonationRepository) SumSucceededByCampaign(ctx context.Context, db ports.DBTX, campaignID string) (decimal.Decimal, error) {
	var total pgtype.Numeric
	err := r.exec(db).QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM donations
		WHERE campaign_id = $1 AND status = $2`,
		campaignID, string(domain.DonationStatusSuccess),
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum donations: %w", err)
	}
	return numericToDecimal(total)
}
