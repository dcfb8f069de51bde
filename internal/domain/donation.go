package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DonationStatus reflects the most recent payment outcome for a donation
type DonationStatus string

const (
	DonationStatusPending DonationStatus = "pending"
	DonationStatusSuccess DonationStatus = "success"
	DonationStatusFailed  DonationStatus = "failed"
)

// Donation is a pledge of funds by a user to a campaign, fulfilled by one or
// more payment attempts over time
type Donation struct {
	ID         string          `json:"id"`
	CampaignID string          `json:"campaign_id"`
	UserID     string          `json:"user_id"`
	Amount     decimal.Decimal `json:"amount"`
	Status     DonationStatus  `json:"status"`

	ErrorMessage *string `json:"error_message"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MarkSucceeded records a successful payment outcome and clears any prior error
func (d *Donation) MarkSucceeded() {
	d.Status = DonationStatusSuccess
	d.ErrorMessage = nil
	d.UpdatedAt = time.Now()
}

// MarkFailed records a failed payment outcome
func (d *Donation) MarkFailed(message string) {
	d.Status = DonationStatusFailed
	if message != "" {
		d.ErrorMessage = &message
	}
	d.UpdatedAt = time.Now()
}

// Validate checks the donation's structural invariants
func (d *Donation) Validate() error {
	if !d.Amount.IsPositive() {
		return ErrValidationAmountInvalid.WithDetail("amount", d.Amount.String())
	}
	if d.CampaignID == "" {
		return ErrValidationMissingField.WithDetail("field", "campaign_id")
	}
	if d.UserID == "" {
		return ErrValidationMissingField.WithDetail("field", "user_id")
	}
	return nil
}
