package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "unit-test-secret"

func TestGenerateAndParseToken(t *testing.T) {
	t.Run("round_trip", func(t *testing.T) {
		token, err := GenerateToken(testSecret, "user-1", time.Hour)
		require.NoError(t, err)

		userID, err := ParseToken(testSecret, token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", userID)
	})

	t.Run("wrong_secret_rejected", func(t *testing.T) {
		token, err := GenerateToken(testSecret, "user-1", time.Hour)
		require.NoError(t, err)

		_, err = ParseToken("other-secret", token)
		assert.Error(t, err)
	})

	t.Run("expired_token_rejected", func(t *testing.T) {
		token, err := GenerateToken(testSecret, "user-1", -time.Minute)
		require.NoError(t, err)

		_, err = ParseToken(testSecret, token)
		assert.Error(t, err)
	})

	t.Run("empty_user_id_rejected", func(t *testing.T) {
		token, err := GenerateToken(testSecret, "", time.Hour)
		require.NoError(t, err)

		_, err = ParseToken(testSecret, token)
		assert.Error(t, err)
	})

	t.Run("garbage_token_rejected", func(t *testing.T) {
		_, err := ParseToken(testSecret, "not.a.jwt")
		assert.Error(t, err)
	})
}

func TestAuthenticator(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := PrincipalID(r.Context())
		require.True(t, ok)
		w.Header().Set("X-Principal", id)
		w.WriteHeader(http.StatusOK)
	})
	handler := Authenticator(testSecret, zap.NewNop())(next)

	t.Run("valid_bearer_token_admitted", func(t *testing.T) {
		token, err := GenerateToken(testSecret, "user-1", time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/payments", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-1", rec.Header().Get("X-Principal"))
	})

	t.Run("missing_header_rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/payments", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non_bearer_scheme_rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/payments", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid_token_rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/payments", nil)
		req.Header.Set("Authorization", "Bearer bogus")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestPrincipalID(t *testing.T) {
	t.Run("absent_from_plain_context", func(t *testing.T) {
		_, ok := PrincipalID(httptest.NewRequest(http.MethodGet, "/", nil).Context())
		assert.False(t, ok)
	})

	t.Run("present_after_with_principal", func(t *testing.T) {
		ctx := WithPrincipal(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "user-9")
		id, ok := PrincipalID(ctx)
		assert.True(t, ok)
		assert.Equal(t, "user-9", id)
	})
}
