package paypal

import (
	"go.uber.org/zap"

	"github.com/fundhive/donation-service/internal/domain"
)

// CallbackHandler normalizes PayPal return callbacks. PayPal echoes the order
// id in the token parameter, which must match the order created during the
// process step.
type CallbackHandler struct {
	logger *zap.Logger
}

// NewCallbackHandler creates a new PayPal callback handler
func NewCallbackHandler(logger *zap.Logger) *CallbackHandler {
	return &CallbackHandler{logger: logger}
}

// ValidateCallback requires a status parameter and the order id token stored
// during preparation. A PayPal payment without a stored order cannot receive
// callbacks at all.
func (h *CallbackHandler) ValidateCallback(payment *domain.Payment, req *domain.CallbackRequest) bool {
	if !req.Has(domain.CallbackParamStatus) {
		return false
	}

	orderID, ok := payment.CorrelationToken()
	if !ok {
		h.logger.Warn("paypal callback for payment without order",
			zap.String("payment_id", payment.ID),
		)
		return false
	}
	if req.Get(domain.CallbackParamToken) != orderID {
		h.logger.Warn("paypal callback order mismatch",
			zap.String("payment_id", payment.ID),
		)
		return false
	}
	return true
}

// HandleCallback normalizes the callback parameters. The transaction id is
// the PayPal capture id; a success status without one downgrades to failed.
func (h *CallbackHandler) HandleCallback(payment *domain.Payment, req *domain.CallbackRequest) (*domain.CallbackResult, error) {
	status := req.Get(domain.CallbackParamStatus)

	if status == string(domain.CallbackStatusSuccess) {
		captureID := req.Get(domain.CallbackParamTransactionID)
		if captureID == "" {
			return &domain.CallbackResult{
				Status:       domain.CallbackStatusFailed,
				ErrorMessage: "success callback missing capture id",
				ErrorCode:    "MISSING_TRANSACTION_ID",
			}, nil
		}
		return &domain.CallbackResult{
			Status:        domain.CallbackStatusSuccess,
			TransactionID: captureID,
		}, nil
	}

	return &domain.CallbackResult{
		Status:       domain.CallbackStatusFailed,
		ErrorMessage: req.Get(domain.CallbackParamErrorMessage),
		ErrorCode:    req.Get(domain.CallbackParamErrorCode),
	}, nil
}
