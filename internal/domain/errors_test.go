package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDomainError_WrapPreservesCause verifies errors.Is/As work through wrapping
func TestDomainError_WrapPreservesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := WrapError(ErrorCodeCallbackProcessingFailed, "callback processing failed", cause)

	assert.True(t, errors.Is(err, cause), "wrapped cause must survive errors.Is")
	assert.Equal(t, ErrorCodeCallbackProcessingFailed, GetErrorCode(err))
	assert.Contains(t, err.Error(), "CALLBACK_PROCESSING_FAILED")
	assert.Contains(t, err.Error(), "connection reset")
}

// TestDomainError_CodeSurvivesFmtWrapping verifies GetErrorCode sees through
// fmt.Errorf wrapping done by callers
func TestDomainError_CodeSurvivesFmtWrapping(t *testing.T) {
	err := fmt.Errorf("process callback: %w", ErrAuthAccessDenied)

	assert.Equal(t, ErrorCodeAuthAccessDenied, GetErrorCode(err))
	assert.True(t, IsAuthError(err))
}

// TestDomainError_WithDetailDoesNotMutateShared verifies package-level error
// instances stay immutable when callers attach details
func TestDomainError_WithDetailDoesNotMutateShared(t *testing.T) {
	detailed := ErrRefundInvalidAmount.WithDetail("amount", "-1")

	require.NotSame(t, ErrRefundInvalidAmount, detailed)
	assert.Empty(t, ErrRefundInvalidAmount.Details)
	assert.Equal(t, "-1", detailed.Details["amount"])
	assert.Equal(t, ErrorCodeRefundInvalidAmount, detailed.Code)
}

// TestErrorClassification verifies the taxonomy helpers keep authorization,
// validation, lookup and refund failures distinguishable
func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		isAuth       bool
		isValidation bool
		isNotFound   bool
		isRefund     bool
	}{
		{name: "access_denied", err: ErrAuthAccessDenied, isAuth: true},
		{name: "invalid_callback", err: ErrCallbackInvalid, isValidation: true},
		{name: "missing_field", err: ErrValidationMissingField, isValidation: true},
		{name: "payment_not_found", err: ErrPaymentNotFound, isNotFound: true},
		{name: "campaign_not_found", err: ErrCampaignNotFound, isNotFound: true},
		{name: "refund_not_allowed", err: ErrRefundNotAllowed, isRefund: true},
		{name: "refund_invalid_amount", err: ErrRefundInvalidAmount, isRefund: true},
		{name: "unsupported_method_is_its_own_class", err: ErrMethodUnsupported},
		{name: "plain_error_matches_nothing", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isAuth, IsAuthError(tt.err))
			assert.Equal(t, tt.isValidation, IsValidationError(tt.err))
			assert.Equal(t, tt.isNotFound, IsNotFoundError(tt.err))
			assert.Equal(t, tt.isRefund, IsRefundError(tt.err))
		})
	}
}
