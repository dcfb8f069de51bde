package card

import (
	"go.uber.org/zap"

	"github.com/fundhive/donation-service/internal/domain"
)

// Provider redirect response fields
const (
	paramAuthResp = "AUTH_RESP"
	paramAuthGUID = "AUTH_GUID"
	paramAuthText = "AUTH_RESP_TEXT"
	paramSession  = "SESSION"
)

// CallbackHandler normalizes card provider redirect responses. The provider
// uses its own field names; AUTH_RESP "00" means approved.
type CallbackHandler struct {
	logger *zap.Logger
}

// NewCallbackHandler creates a new card callback handler
func NewCallbackHandler(logger *zap.Logger) *CallbackHandler {
	return &CallbackHandler{logger: logger}
}

// ValidateCallback requires the provider response code and a session matching
// the one issued during preparation
func (h *CallbackHandler) ValidateCallback(payment *domain.Payment, req *domain.CallbackRequest) bool {
	if !req.Has(paramAuthResp) {
		return false
	}

	session, ok := payment.CorrelationToken()
	if !ok {
		h.logger.Warn("card callback for payment without session",
			zap.String("payment_id", payment.ID),
		)
		return false
	}
	if req.Get(paramSession) != session {
		h.logger.Warn("card callback session mismatch",
			zap.String("payment_id", payment.ID),
		)
		return false
	}
	return true
}

// HandleCallback normalizes the provider response. An approval without an
// AUTH_GUID downgrades to failed; the payment must never complete without a
// provider transaction reference.
func (h *CallbackHandler) HandleCallback(payment *domain.Payment, req *domain.CallbackRequest) (*domain.CallbackResult, error) {
	authResp := req.Get(paramAuthResp)

	if authResp == "00" {
		guid := req.Get(paramAuthGUID)
		if guid == "" {
			return &domain.CallbackResult{
				Status:       domain.CallbackStatusFailed,
				ErrorMessage: "approval missing transaction reference",
				ErrorCode:    "MISSING_TRANSACTION_ID",
			}, nil
		}
		return &domain.CallbackResult{
			Status:        domain.CallbackStatusSuccess,
			TransactionID: guid,
		}, nil
	}

	return &domain.CallbackResult{
		Status:       domain.CallbackStatusFailed,
		ErrorMessage: req.Get(paramAuthText),
		ErrorCode:    authResp,
	}, nil
}
