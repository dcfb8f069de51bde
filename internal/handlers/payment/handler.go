package payment

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fundhive/donation-service/internal/domain"
	"github.com/fundhive/donation-service/internal/domain/ports"
	"github.com/fundhive/donation-service/internal/handlers/respond"
	"github.com/fundhive/donation-service/internal/middleware"
	paymentsvc "github.com/fundhive/donation-service/internal/services/payment"
)

// Handler serves the payment endpoints
type Handler struct {
	processing *paymentsvc.ProcessingService
	callbacks  *paymentsvc.CallbackService
	logger     *zap.Logger
}

// NewHandler creates a new payment handler
func NewHandler(processing *paymentsvc.ProcessingService, callbacks *paymentsvc.CallbackService, logger *zap.Logger) *Handler {
	return &Handler{
		processing: processing,
		callbacks:  callbacks,
		logger:     logger,
	}
}

// PaymentView is the JSON representation of a payment
type PaymentView struct {
	ID            string            `json:"id"`
	DonationID    string            `json:"donation_id"`
	Method        string            `json:"method"`
	Status        string            `json:"status"`
	Amount        string            `json:"amount"`
	Currency      string            `json:"currency"`
	TransactionID *string           `json:"transaction_id,omitempty"`
	ErrorMessage  *string           `json:"error_message,omitempty"`
	ErrorCode     *string           `json:"error_code,omitempty"`
	RefundAmount  *string           `json:"refund_amount,omitempty"`
	RedirectURL   *string           `json:"redirect_url,omitempty"`
	Preparation   map[string]string `json:"preparation,omitempty"`
}

func toPaymentView(p *domain.Payment) PaymentView {
	view := PaymentView{
		ID:            p.ID,
		DonationID:    p.DonationID,
		Method:        string(p.Method),
		Status:        string(p.Status),
		Amount:        p.Amount.String(),
		Currency:      p.Currency,
		TransactionID: p.TransactionID,
		ErrorMessage:  p.ErrorMessage,
		ErrorCode:     p.ErrorCode,
		RedirectURL:   p.RedirectURL,
		Preparation:   p.PreparationPayload,
	}
	if p.RefundAmount != nil {
		s := p.RefundAmount.String()
		view.RefundAmount = &s
	}
	return view
}

// Methods lists the payment methods usable in this deployment
func (h *Handler) Methods(w http.ResponseWriter, r *http.Request) {
	methods := h.processing.AvailableMethods()
	out := make([]string, len(methods))
	for i, m := range methods {
		out[i] = string(m)
	}
	respond.WriteJSON(w, http.StatusOK, map[string][]string{"methods": out})
}

type prepareRequest struct {
	ReturnURL string            `json:"return_url"`
	Extra     map[string]string `json:"extra"`
}

// Prepare runs the gateway process step for a pending payment
func (h *Handler) Prepare(w http.ResponseWriter, r *http.Request) {
	principalID, ok := middleware.PrincipalID(r.Context())
	if !ok {
		respond.WriteError(w, h.logger, domain.ErrAuthAccessDenied)
		return
	}
	paymentID := chi.URLParam(r, "id")

	var req prepareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteJSON(w, http.StatusBadRequest, respond.ErrorResponse{
			Code:    string(domain.ErrorCodeValidationFailed),
			Message: "invalid request body",
		})
		return
	}

	payment, err := h.processing.PreparePayment(r.Context(), principalID, paymentID, &ports.ProcessRequest{
		ReturnURL: req.ReturnURL,
		Extra:     req.Extra,
	})
	if err != nil {
		respond.WriteError(w, h.logger, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, toPaymentView(payment))
}

// Callback receives a gateway callback, via redirect (GET) or provider post
// (POST). Query and form parameters are merged before gateway-specific
// validation. Browser redirects are sent on to the result view so what the
// donor sees is always the persisted outcome; provider posts get the payment
// as JSON.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	principalID, ok := middleware.PrincipalID(r.Context())
	if !ok {
		respond.WriteError(w, h.logger, domain.ErrAuthAccessDenied)
		return
	}
	paymentID := chi.URLParam(r, "id")

	if err := r.ParseForm(); err != nil {
		respond.WriteJSON(w, http.StatusBadRequest, respond.ErrorResponse{
			Code:    string(domain.ErrorCodeCallbackInvalid),
			Message: "malformed callback parameters",
		})
		return
	}
	params := make(map[string]string, len(r.Form))
	for key, values := range r.Form {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	payment, err := h.callbacks.ProcessCallback(r.Context(), principalID, paymentID, &domain.CallbackRequest{Params: params})
	if err != nil {
		respond.WriteError(w, h.logger, err)
		return
	}

	if r.Method == http.MethodGet {
		http.Redirect(w, r, strings.TrimSuffix(r.URL.Path, "/callback")+"/result", http.StatusSeeOther)
		return
	}
	respond.WriteJSON(w, http.StatusOK, toPaymentView(payment))
}

// Result returns the payment's persisted outcome for the donor-facing result
// page. The response is driven strictly by stored state, never by request
// parameters.
func (h *Handler) Result(w http.ResponseWriter, r *http.Request) {
	principalID, ok := middleware.PrincipalID(r.Context())
	if !ok {
		respond.WriteError(w, h.logger, domain.ErrAuthAccessDenied)
		return
	}
	paymentID := chi.URLParam(r, "id")

	payment, err := h.callbacks.GetResult(r.Context(), principalID, paymentID)
	if err != nil {
		respond.WriteError(w, h.logger, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, toPaymentView(payment))
}

type refundRequest struct {
	Amount string `json:"amount"`
	Reason string `json:"reason"`
}

// Refund returns funds for a completed payment. An absent amount requests a
// full refund.
func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	principalID, ok := middleware.PrincipalID(r.Context())
	if !ok {
		respond.WriteError(w, h.logger, domain.ErrAuthAccessDenied)
		return
	}
	paymentID := chi.URLParam(r, "id")

	var req refundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteJSON(w, http.StatusBadRequest, respond.ErrorResponse{
			Code:    string(domain.ErrorCodeValidationFailed),
			Message: "invalid request body",
		})
		return
	}

	amount := decimal.Zero
	if req.Amount != "" {
		parsed, err := decimal.NewFromString(req.Amount)
		if err != nil {
			respond.WriteError(w, h.logger, domain.ErrValidationAmountInvalid.WithDetail("amount", req.Amount))
			return
		}
		amount = parsed
	}

	payment, err := h.processing.Refund(r.Context(), principalID, paymentID, &ports.RefundSpec{
		Amount: amount,
		Reason: req.Reason,
	})
	if err != nil {
		respond.WriteError(w, h.logger, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, toPaymentView(payment))
}

// Verify asks the payment's gateway for the provider's current view without
// mutating stored state
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	principalID, ok := middleware.PrincipalID(r.Context())
	if !ok {
		respond.WriteError(w, h.logger, domain.ErrAuthAccessDenied)
		return
	}
	paymentID := chi.URLParam(r, "id")

	result, err := h.processing.VerifyStatus(r.Context(), principalID, paymentID)
	if err != nil {
		respond.WriteError(w, h.logger, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{
		"status":         string(result.Status),
		"transaction_id": result.TransactionID,
	})
}
