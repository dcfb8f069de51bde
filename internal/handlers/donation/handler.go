package donation

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fundhive/donation-service/internal/domain"
	"github.com/fundhive/donation-service/internal/handlers/respond"
	"github.com/fundhive/donation-service/internal/middleware"
	paymentsvc "github.com/fundhive/donation-service/internal/services/payment"
)

// Handler serves the donation endpoints
type Handler struct {
	processing *paymentsvc.ProcessingService
	logger     *zap.Logger
}

// NewHandler creates a new donation handler
func NewHandler(processing *paymentsvc.ProcessingService, logger *zap.Logger) *Handler {
	return &Handler{processing: processing, logger: logger}
}

type initiateRequest struct {
	CampaignID string            `json:"campaign_id"`
	Amount     string            `json:"amount"`
	Currency   string            `json:"currency"`
	Method     string            `json:"method"`
	Metadata   map[string]string `json:"metadata"`
}

type initiateResponse struct {
	DonationID string `json:"donation_id"`
	PaymentID  string `json:"payment_id"`
	Status     string `json:"status"`
}

// Initiate creates a pending donation and its payment attempt
func (h *Handler) Initiate(w http.ResponseWriter, r *http.Request) {
	principalID, ok := middleware.PrincipalID(r.Context())
	if !ok {
		respond.WriteError(w, h.logger, domain.ErrAuthAccessDenied)
		return
	}

	var req initiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteJSON(w, http.StatusBadRequest, respond.ErrorResponse{
			Code:    string(domain.ErrorCodeValidationFailed),
			Message: "invalid request body",
		})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		respond.WriteError(w, h.logger, domain.ErrValidationAmountInvalid.WithDetail("amount", req.Amount))
		return
	}

	result, err := h.processing.InitiateDonation(r.Context(), paymentsvc.InitiateDonationRequest{
		CampaignID: req.CampaignID,
		UserID:     principalID,
		Amount:     amount,
		Currency:   req.Currency,
		Method:     domain.PaymentMethod(req.Method),
		Metadata:   req.Metadata,
	})
	if err != nil {
		respond.WriteError(w, h.logger, err)
		return
	}

	respond.WriteJSON(w, http.StatusCreated, initiateResponse{
		DonationID: result.Donation.ID,
		PaymentID:  result.Payment.ID,
		Status:     string(result.Payment.Status),
	})
}
