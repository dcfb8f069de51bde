package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Authorization errors (AUTH_*)
	ErrorCodeAuthAccessDenied ErrorCode = "AUTH_ACCESS_DENIED"

	// Lookup errors (*_NOT_FOUND)
	ErrorCodePaymentNotFound  ErrorCode = "PAYMENT_NOT_FOUND"
	ErrorCodeDonationNotFound ErrorCode = "DONATION_NOT_FOUND"
	ErrorCodeCampaignNotFound ErrorCode = "CAMPAIGN_NOT_FOUND"

	// Payment state errors (PAYMENT_*)
	ErrorCodePaymentInvalidState ErrorCode = "PAYMENT_INVALID_STATE"

	// Callback errors (CALLBACK_*)
	ErrorCodeCallbackInvalid          ErrorCode = "CALLBACK_INVALID"
	ErrorCodeCallbackHandlerMissing   ErrorCode = "CALLBACK_HANDLER_MISSING"
	ErrorCodeCallbackProcessingFailed ErrorCode = "CALLBACK_PROCESSING_FAILED"

	// Method errors (METHOD_*)
	ErrorCodeMethodUnsupported ErrorCode = "METHOD_UNSUPPORTED"

	// Refund errors (REFUND_*)
	ErrorCodeRefundNotAllowed    ErrorCode = "REFUND_NOT_ALLOWED"
	ErrorCodeRefundInvalidAmount ErrorCode = "REFUND_INVALID_AMOUNT"

	// Validation errors (VALIDATION_*)
	ErrorCodeValidationFailed        ErrorCode = "VALIDATION_FAILED"
	ErrorCodeValidationAmountInvalid ErrorCode = "VALIDATION_AMOUNT_INVALID"
	ErrorCodeValidationMissingField  ErrorCode = "VALIDATION_MISSING_FIELD"

	// Gateway errors (GATEWAY_*)
	ErrorCodeGatewayError ErrorCode = "GATEWAY_ERROR"

	// Internal errors (INTERNAL_*)
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
	ErrorCodeDatabaseError ErrorCode = "INTERNAL_DATABASE_ERROR"
)

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetail returns a copy of the error with an added detail field.
// Copying keeps the package-level error instances immutable.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &DomainError{
		Err:     e.Err,
		Details: details,
		Code:    e.Code,
		Message: e.Message,
	}
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with a domain error code, preserving the
// original cause for errors.Is/As
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// IsDomainError checks if an error is a DomainError with the given code
func IsDomainError(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error, returns empty string if
// not a DomainError
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsNotFoundError checks if an error represents a "not found" condition
func IsNotFoundError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodePaymentNotFound ||
		code == ErrorCodeDonationNotFound ||
		code == ErrorCodeCampaignNotFound
}

// IsAuthError checks if an error is an authorization denial
func IsAuthError(err error) bool {
	return GetErrorCode(err) == ErrorCodeAuthAccessDenied
}

// IsValidationError checks if an error is a validation error, including an
// invalid callback
func IsValidationError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeValidationFailed ||
		code == ErrorCodeValidationAmountInvalid ||
		code == ErrorCodeValidationMissingField ||
		code == ErrorCodeCallbackInvalid
}

// IsRefundError checks if an error is a refund eligibility error
func IsRefundError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeRefundNotAllowed ||
		code == ErrorCodeRefundInvalidAmount
}

// Structured error instances
var (
	ErrAuthAccessDenied = NewDomainError(ErrorCodeAuthAccessDenied, "access denied")

	ErrPaymentNotFound  = NewDomainError(ErrorCodePaymentNotFound, "payment not found")
	ErrDonationNotFound = NewDomainError(ErrorCodeDonationNotFound, "donation not found")
	ErrCampaignNotFound = NewDomainError(ErrorCodeCampaignNotFound, "campaign not found")

	ErrPaymentInvalidState = NewDomainError(ErrorCodePaymentInvalidState, "payment is in invalid state for this operation")

	ErrCallbackInvalid        = NewDomainError(ErrorCodeCallbackInvalid, "invalid callback")
	ErrCallbackHandlerMissing = NewDomainError(ErrorCodeCallbackHandlerMissing, "no callback handler for payment method")

	ErrMethodUnsupported = NewDomainError(ErrorCodeMethodUnsupported, "unsupported payment method")

	ErrRefundNotAllowed    = NewDomainError(ErrorCodeRefundNotAllowed, "payment is not refundable")
	ErrRefundInvalidAmount = NewDomainError(ErrorCodeRefundInvalidAmount, "invalid refund amount")

	ErrValidationFailed        = NewDomainError(ErrorCodeValidationFailed, "validation failed")
	ErrValidationAmountInvalid = NewDomainError(ErrorCodeValidationAmountInvalid, "invalid amount")
	ErrValidationMissingField  = NewDomainError(ErrorCodeValidationMissingField, "required field missing")

	ErrGatewayError = NewDomainError(ErrorCodeGatewayError, "payment gateway error")

	ErrInternalError = NewDomainError(ErrorCodeInternalError, "internal server error")
	ErrDatabaseError = NewDomainError(ErrorCodeDatabaseError, "database error")
)
