package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fundhive/donation-service/internal/domain"
)

// PaymentRepository persists payment attempts
type PaymentRepository interface {
	// Create inserts a new payment
	Create(ctx context.Context, db DBTX, payment *domain.Payment) error

	// GetByID retrieves a payment by its id
	GetByID(ctx context.Context, db DBTX, id string) (*domain.Payment, error)

	// GetByIDForUpdate retrieves a payment with a row lock so concurrent
	// callback transactions serialize on the same payment
	GetByIDForUpdate(ctx context.Context, db DBTX, id string) (*domain.Payment, error)

	// Update writes the payment's mutable fields
	Update(ctx context.Context, db DBTX, payment *domain.Payment) error
}

// DonationRepository persists donations
type DonationRepository interface {
	// Create inserts a new donation
	Create(ctx context.Context, db DBTX, donation *domain.Donation) error

	// GetByID retrieves a donation by its id
	GetByID(ctx context.Context, db DBTX, id string) (*domain.Donation, error)

	// Update writes the donation's status and error message
	Update(ctx context.Context, db DBTX, donation *domain.Donation) error

	// SumSucceededByCampaign returns the total amount of donations with
	// status=success for the campaign. Used by the aggregation job's full
	// re-sum.
	SumSucceededByCampaign(ctx context.Context, db DBTX, campaignID string) (decimal.Decimal, error)
}

// CampaignRepository reads campaigns and writes their derived total
type CampaignRepository interface {
	// GetByID retrieves a campaign by its id
	GetByID(ctx context.Context, db DBTX, id string) (*domain.Campaign, error)

	// GetByIDForUpdate retrieves a campaign with a row lock so concurrent
	// recomputations of the same campaign serialize
	GetByIDForUpdate(ctx context.Context, db DBTX, id string) (*domain.Campaign, error)

	// UpdateCurrentAmount sets the campaign's derived running total
	UpdateCurrentAmount(ctx context.Context, db DBTX, id string, amount decimal.Decimal) error
}

// TaskRepository persists the durable task queue
type TaskRepository interface {
	// Create inserts a new pending task
	Create(ctx context.Context, db DBTX, task *domain.Task) error

	// FetchDue claims up to limit due pending tasks, skipping rows locked by
	// other workers
	FetchDue(ctx context.Context, db DBTX, limit int) ([]*domain.Task, error)

	// Update writes the task's delivery state
	Update(ctx context.Context, db DBTX, task *domain.Task) error
}
