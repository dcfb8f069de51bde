package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/fundhive/donation-service/internal/domain"
)

// ErrorResponse is the JSON body returned for failed requests
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status
func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// WriteError maps a domain error to its HTTP representation. Authorization
// denials always return the same generic body regardless of the underlying
// reason, so callers cannot probe for payment existence or state.
func WriteError(w http.ResponseWriter, logger *zap.Logger, err error) {
	code := domain.GetErrorCode(err)

	var status int
	switch {
	case code == domain.ErrorCodeAuthAccessDenied:
		WriteJSON(w, http.StatusForbidden, ErrorResponse{
			Code:    string(domain.ErrorCodeAuthAccessDenied),
			Message: "access denied",
		})
		return
	case domain.IsNotFoundError(err):
		status = http.StatusNotFound
	case domain.IsValidationError(err):
		status = http.StatusBadRequest
	case code == domain.ErrorCodeMethodUnsupported,
		code == domain.ErrorCodeCallbackHandlerMissing,
		domain.IsRefundError(err):
		status = http.StatusUnprocessableEntity
	case code == domain.ErrorCodePaymentInvalidState:
		status = http.StatusConflict
	case code == domain.ErrorCodeGatewayError:
		status = http.StatusBadGateway
	default:
		logger.Error("request failed", zap.Error(err))
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Code:    string(domain.ErrorCodeInternalError),
			Message: "internal server error",
		})
		return
	}

	message := "request failed"
	var de *domain.DomainError
	if errors.As(err, &de) {
		message = de.Message
	}
	WriteJSON(w, status, ErrorResponse{Code: string(code), Message: message})
}
