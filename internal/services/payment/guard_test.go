package payment

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundhive/donation-service/internal/domain"
	"github.com/fundhive/donation-service/internal/testutil/mocks"
)

func guardFixture(t *testing.T) (*Guard, *mocks.DonationRepository, *domain.Payment) {
	t.Helper()
	donations := mocks.NewDonationRepository()
	donations.Put(&domain.Donation{
		ID:         "don-1",
		CampaignID: "camp-1",
		UserID:     "user-1",
		Amount:     decimal.RequireFromString("25"),
		Status:     domain.DonationStatusPending,
	})
	payment := &domain.Payment{
		ID:         "pay-1",
		DonationID: "don-1",
		Method:     domain.PaymentMethodFake,
		Status:     domain.PaymentStatusPending,
		Amount:     decimal.RequireFromString("25"),
		Currency:   "USD",
	}
	return NewGuard(donations), donations, payment
}

func TestGuard_AuthorizeCallback(t *testing.T) {
	t.Run("owner_with_pending_payment_admitted", func(t *testing.T) {
		guard, _, payment := guardFixture(t)
		assert.NoError(t, guard.AuthorizeCallback(context.Background(), nil, payment, "user-1"))
	})

	t.Run("non_owner_denied", func(t *testing.T) {
		guard, _, payment := guardFixture(t)
		err := guard.AuthorizeCallback(context.Background(), nil, payment, "user-2")
		require.Error(t, err)
		assert.True(t, domain.IsAuthError(err))
	})

	t.Run("missing_donation_denied", func(t *testing.T) {
		guard, _, payment := guardFixture(t)
		payment.DonationID = "don-missing"
		err := guard.AuthorizeCallback(context.Background(), nil, payment, "user-1")
		require.Error(t, err)
		assert.True(t, domain.IsAuthError(err), "missing donation must look like any other denial")
	})

	t.Run("non_pending_payment_denied", func(t *testing.T) {
		for _, status := range []domain.PaymentStatus{
			domain.PaymentStatusProcessing,
			domain.PaymentStatusCompleted,
			domain.PaymentStatusFailed,
			domain.PaymentStatusRefunded,
		} {
			guard, _, payment := guardFixture(t)
			payment.Status = status

			err := guard.AuthorizeCallback(context.Background(), nil, payment, "user-1")
			require.Error(t, err, "status=%s", status)
			assert.True(t, domain.IsAuthError(err), "denial must be uniform for status=%s", status)
		}
	})

	t.Run("ownership_checked_before_status", func(t *testing.T) {
		// A non-owner probing a terminal payment learns nothing about its state:
		// the denial is identical either way.
		guard, _, payment := guardFixture(t)
		payment.Status = domain.PaymentStatusCompleted

		ownerErr := guard.AuthorizeCallback(context.Background(), nil, payment, "user-1")
		strangerErr := guard.AuthorizeCallback(context.Background(), nil, payment, "user-2")
		assert.Equal(t, domain.GetErrorCode(ownerErr), domain.GetErrorCode(strangerErr))
	})
}

func TestGuard_AuthorizeResultView(t *testing.T) {
	t.Run("owner_views_terminal_payment", func(t *testing.T) {
		guard, _, payment := guardFixture(t)
		payment.Status = domain.PaymentStatusCompleted
		assert.NoError(t, guard.AuthorizeResultView(context.Background(), nil, payment, "user-1"))
	})

	t.Run("pending_payment_has_no_result_yet", func(t *testing.T) {
		guard, _, payment := guardFixture(t)
		err := guard.AuthorizeResultView(context.Background(), nil, payment, "user-1")
		require.Error(t, err)
		assert.True(t, domain.IsAuthError(err))
	})

	t.Run("non_owner_denied", func(t *testing.T) {
		guard, _, payment := guardFixture(t)
		payment.Status = domain.PaymentStatusFailed
		err := guard.AuthorizeResultView(context.Background(), nil, payment, "user-2")
		require.Error(t, err)
		assert.True(t, domain.IsAuthError(err))
	})
}
