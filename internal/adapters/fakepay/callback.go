package fakepay

import (
	"go.uber.org/zap"

	"github.com/fundhive/donation-service/internal/domain"
)

// CallbackHandler normalizes FakePay callbacks. FakePay uses the platform's
// canonical parameter names directly.
type CallbackHandler struct {
	logger *zap.Logger
}

// NewCallbackHandler creates a new FakePay callback handler
func NewCallbackHandler(logger *zap.Logger) *CallbackHandler {
	return &CallbackHandler{logger: logger}
}

// ValidateCallback requires a status parameter and, when a correlation token
// was stored during preparation, a matching token parameter
func (h *CallbackHandler) ValidateCallback(payment *domain.Payment, req *domain.CallbackRequest) bool {
	if !req.Has(domain.CallbackParamStatus) {
		return false
	}
	if token, ok := payment.CorrelationToken(); ok {
		if req.Get(domain.CallbackParamToken) != token {
			h.logger.Warn("fakepay callback token mismatch",
				zap.String("payment_id", payment.ID),
			)
			return false
		}
	}
	return true
}

// HandleCallback normalizes the callback parameters. A success status without
// a transaction id is downgraded to a failed result so the payment can never
// complete without a provider reference.
func (h *CallbackHandler) HandleCallback(payment *domain.Payment, req *domain.CallbackRequest) (*domain.CallbackResult, error) {
	status := req.Get(domain.CallbackParamStatus)

	if status == string(domain.CallbackStatusSuccess) {
		txnID := req.Get(domain.CallbackParamTransactionID)
		if txnID == "" {
			return &domain.CallbackResult{
				Status:       domain.CallbackStatusFailed,
				ErrorMessage: "success callback missing transaction id",
				ErrorCode:    "MISSING_TRANSACTION_ID",
			}, nil
		}
		return &domain.CallbackResult{
			Status:        domain.CallbackStatusSuccess,
			TransactionID: txnID,
		}, nil
	}

	return &domain.CallbackResult{
		Status:       domain.CallbackStatusFailed,
		ErrorMessage: req.Get(domain.CallbackParamErrorMessage),
		ErrorCode:    req.Get(domain.CallbackParamErrorCode),
	}, nil
}
