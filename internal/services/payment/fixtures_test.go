package payment

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fundhive/donation-service/internal/domain"
	"github.com/fundhive/donation-service/internal/testutil/mocks"
)

// testEnv bundles the in-memory backends shared by the payment service tests
type testEnv struct {
	db        *mocks.DB
	payments  *mocks.PaymentRepository
	donations *mocks.DonationRepository
	campaigns *mocks.CampaignRepository
	queue     *mocks.TaskQueue
	gateway   *mocks.Gateway
	handler   *mocks.CallbackHandler
	registry  *Registry
	guard     *Guard
}

func newTestEnv() *testEnv {
	env := &testEnv{
		db:        &mocks.DB{},
		payments:  mocks.NewPaymentRepository(),
		donations: mocks.NewDonationRepository(),
		campaigns: mocks.NewCampaignRepository(),
		queue:     &mocks.TaskQueue{},
		gateway:   &mocks.Gateway{GatewayName: "testgw", Method: domain.PaymentMethodFake},
		handler:   &mocks.CallbackHandler{Valid: true},
	}
	env.registry = NewRegistry(
		[]domain.PaymentMethod{domain.PaymentMethodFake},
		RegistryEntry{Method: domain.PaymentMethodFake, Gateway: env.gateway, Handler: env.handler},
	)
	env.guard = NewGuard(env.donations)
	return env
}

func (e *testEnv) callbackService() *CallbackService {
	return NewCallbackService(e.db, e.payments, e.donations, e.campaigns, e.registry, e.guard, e.queue, zap.NewNop())
}

func (e *testEnv) processingService() *ProcessingService {
	return NewProcessingService(e.db, e.payments, e.donations, e.campaigns, e.registry, e.guard, e.queue, zap.NewNop())
}

// seedDonationFlow stores a campaign, a pending donation owned by userID and a
// pending payment, returning the payment
func (e *testEnv) seedDonationFlow(userID string) *domain.Payment {
	e.campaigns.Put(&domain.Campaign{
		ID:         "camp-1",
		OwnerID:    "owner-1",
		Title:      "Clean Water",
		GoalAmount: decimal.RequireFromString("1000"),
	})
	e.donations.Put(&domain.Donation{
		ID:         "don-1",
		CampaignID: "camp-1",
		UserID:     userID,
		Amount:     decimal.RequireFromString("50.00"),
		Status:     domain.DonationStatusPending,
	})
	payment := &domain.Payment{
		ID:          "pay-1",
		DonationID:  "don-1",
		Method:      domain.PaymentMethodFake,
		Status:      domain.PaymentStatusPending,
		Amount:      decimal.RequireFromString("50.00"),
		Currency:    "USD",
		InitiatedAt: time.Now(),
	}
	e.payments.Put(payment)
	return payment
}
