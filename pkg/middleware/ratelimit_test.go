package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiter_Middleware(t *testing.T) {
	t.Run("requests_within_burst_pass", func(t *testing.T) {
		rl := NewRateLimiter(1, 3)
		defer rl.Shutdown()
		handler := rl.Middleware(okHandler())

		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/callback", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code, "request %d", i)
		}
	})

	t.Run("burst_exceeded_returns_429", func(t *testing.T) {
		rl := NewRateLimiter(1, 2)
		defer rl.Shutdown()
		handler := rl.Middleware(okHandler())

		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/callback", nil)
			req.RemoteAddr = "10.0.0.2:1234"
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			codes = append(codes, rec.Code)
		}
		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	})

	t.Run("clients_limited_independently", func(t *testing.T) {
		rl := NewRateLimiter(1, 1)
		defer rl.Shutdown()
		handler := rl.Middleware(okHandler())

		first := httptest.NewRequest(http.MethodGet, "/callback", nil)
		first.RemoteAddr = "10.0.0.3:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, first)
		assert.Equal(t, http.StatusOK, rec.Code)

		// Same client is throttled, a different client is not.
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, first)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)

		other := httptest.NewRequest(http.MethodGet, "/callback", nil)
		other.RemoteAddr = "10.0.0.4:1234"
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, other)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
