package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Campaign is the fundraising aggregate this core mutates only through the
// aggregation job. CurrentAmount is derived: it equals the sum of all
// successful donations for the campaign and is recomputed, never incremented.
type Campaign struct {
	ID            string          `json:"id"`
	OwnerID       string          `json:"owner_id"`
	Title         string          `json:"title"`
	GoalAmount    decimal.Decimal `json:"goal_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	CreatedAt     time.Time       `json:"created_at"`
}
