package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fundhive/donation-service/internal/domain"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedBody string
	}{
		{
			name:         "auth_denial_maps_to_403",
			err:          domain.ErrAuthAccessDenied.WithDetail("reason", "ownership mismatch"),
			expectedCode: http.StatusForbidden,
			expectedBody: "AUTH_ACCESS_DENIED",
		},
		{
			name:         "not_found_maps_to_404",
			err:          domain.ErrPaymentNotFound,
			expectedCode: http.StatusNotFound,
			expectedBody: "PAYMENT_NOT_FOUND",
		},
		{
			name:         "invalid_callback_maps_to_400",
			err:          domain.ErrCallbackInvalid,
			expectedCode: http.StatusBadRequest,
			expectedBody: "CALLBACK_INVALID",
		},
		{
			name:         "unsupported_method_maps_to_422",
			err:          domain.ErrMethodUnsupported,
			expectedCode: http.StatusUnprocessableEntity,
			expectedBody: "METHOD_UNSUPPORTED",
		},
		{
			name:         "refund_eligibility_maps_to_422",
			err:          domain.ErrRefundNotAllowed,
			expectedCode: http.StatusUnprocessableEntity,
			expectedBody: "REFUND_NOT_ALLOWED",
		},
		{
			name:         "invalid_state_maps_to_409",
			err:          domain.ErrPaymentInvalidState,
			expectedCode: http.StatusConflict,
			expectedBody: "PAYMENT_INVALID_STATE",
		},
		{
			name:         "gateway_failure_maps_to_502",
			err:          domain.WrapError(domain.ErrorCodeGatewayError, "gateway process failed", errors.New("timeout")),
			expectedCode: http.StatusBadGateway,
			expectedBody: "GATEWAY_ERROR",
		},
		{
			name:         "unknown_error_maps_to_500_with_generic_body",
			err:          errors.New("pq: connection refused"),
			expectedCode: http.StatusInternalServerError,
			expectedBody: "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, zap.NewNop(), tt.err)

			assert.Equal(t, tt.expectedCode, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedBody, body.Code)
		})
	}

	t.Run("internal_errors_never_leak_details", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, zap.NewNop(), errors.New("pq: password authentication failed for user app"))

		assert.NotContains(t, rec.Body.String(), "password")
	})

	t.Run("auth_denials_are_indistinguishable", func(t *testing.T) {
		// The same 403 body regardless of which invariant actually failed.
		bodies := make(map[string]struct{})
		for _, err := range []error{
			domain.ErrAuthAccessDenied.WithDetail("reason", "ownership mismatch"),
			domain.ErrAuthAccessDenied.WithDetail("reason", "payment not pending"),
			domain.ErrAuthAccessDenied.WithDetail("reason", "donation missing"),
		} {
			rec := httptest.NewRecorder()
			WriteError(rec, zap.NewNop(), err)
			assert.Equal(t, http.StatusForbidden, rec.Code)
			bodies[rec.Body.String()] = struct{}{}
		}
		assert.Len(t, bodies, 1)
	})
}
