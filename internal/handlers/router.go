package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	donationhandler "github.com/fundhive/donation-service/internal/handlers/donation"
	paymenthandler "github.com/fundhive/donation-service/internal/handlers/payment"
	"github.com/fundhive/donation-service/internal/middleware"
	pkgmiddleware "github.com/fundhive/donation-service/pkg/middleware"
	"github.com/fundhive/donation-service/pkg/resilience"
)

// RouterConfig carries the router's dependencies
type RouterConfig struct {
	Payments    *paymenthandler.Handler
	Donations   *donationhandler.Handler
	JWTSecret   string
	RateLimiter *pkgmiddleware.RateLimiter
	Timeouts    *resilience.TimeoutConfig
	Logger      *zap.Logger
}

// NewRouter creates the chi router with all API routes mounted. Every route
// requires authentication; callback endpoints additionally sit behind the
// rate limiter.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	if cfg.Timeouts != nil {
		r.Use(requestTimeout(cfg.Timeouts))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticator(cfg.JWTSecret, cfg.Logger))

		r.Post("/donations", cfg.Donations.Initiate)

		r.Route("/payments", func(r chi.Router) {
			r.Get("/methods", cfg.Payments.Methods)

			r.Route("/{id}", func(r chi.Router) {
				r.Post("/prepare", cfg.Payments.Prepare)
				r.Get("/result", cfg.Payments.Result)
				r.Post("/refund", cfg.Payments.Refund)
				r.Get("/status", cfg.Payments.Verify)

				r.Group(func(r chi.Router) {
					if cfg.RateLimiter != nil {
						r.Use(cfg.RateLimiter.Middleware)
					}
					r.Get("/callback", cfg.Payments.Callback)
					r.Post("/callback", cfg.Payments.Callback)
				})
			})
		})
	})

	return r
}

// requestTimeout bounds every request so a stalled gateway or query cannot
// hold a connection past the handler budget
func requestTimeout(timeouts *resilience.TimeoutConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := timeouts.HandlerContext(r.Context())
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
