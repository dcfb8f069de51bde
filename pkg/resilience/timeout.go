package resilience

import (
	"context"
	"time"
)

// TimeoutConfig defines the timeout hierarchy for the service
//
// Each layer must complete before its parent times out:
//
//	HTTP handler (60s) > gateway call (30s) > single delivery attempt (10s)
//
// Task workers run outside the request path and get a wider budget.
type TimeoutConfig struct {
	HTTPHandler time.Duration // Overall request timeout
	TaskRun     time.Duration // One background task execution
	Gateway     time.Duration // Payment provider API calls
	Delivery    time.Duration // One webhook notification attempt
}

// DefaultTimeoutConfig returns production timeout values
func DefaultTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		HTTPHandler: 60 * time.Second,
		TaskRun:     2 * time.Minute,
		Gateway:     30 * time.Second,
		Delivery:    10 * time.Second,
	}
}

// TestTimeoutConfig returns shorter timeouts for testing
func TestTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		HTTPHandler: 5 * time.Second,
		TaskRun:     5 * time.Second,
		Gateway:     2 * time.Second,
		Delivery:    1 * time.Second,
	}
}

// HandlerContext creates a context with timeout for HTTP handlers
func (tc *TimeoutConfig) HandlerContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.HTTPHandler)
}

// TaskContext creates a context with timeout for one background task run
func (tc *TimeoutConfig) TaskContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.TaskRun)
}

// GatewayContext creates a context for payment provider calls
func (tc *TimeoutConfig) GatewayContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.Gateway)
}

// DeliveryContext creates a context for one notification delivery attempt
func (tc *TimeoutConfig) DeliveryContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.Delivery)
}
