package resilience

import (
	"math"
	"math/rand"
	"time"
)

// BackoffStrategy defines retry backoff behavior
type BackoffStrategy interface {
	NextDelay(attempt int) time.Duration
}

// FixedBackoff implements a constant delay between attempts. Background tasks
// use this: a failed task is rescheduled the same interval after every attempt
// until its retry budget runs out.
type FixedBackoff struct {
	Delay time.Duration
}

// TaskBackoff returns the fixed delay used for queued task retries
func TaskBackoff() *FixedBackoff {
	return &FixedBackoff{Delay: 30 * time.Second}
}

// NextDelay returns the fixed delay regardless of attempt number
func (fb *FixedBackoff) NextDelay(attempt int) time.Duration {
	return fb.Delay
}

// ExponentialBackoff implements exponential backoff with jitter.
// Jitter spreads retry attempts over time to prevent thundering herd.
type ExponentialBackoff struct {
	BaseDelay  time.Duration // Initial delay (e.g., 100ms)
	MaxDelay   time.Duration // Maximum delay (e.g., 30s)
	Multiplier float64       // Exponential multiplier (typically 2.0)
	Jitter     float64       // Jitter factor (0.0-1.0, typically 0.1 for ±10%)
}

// NotificationBackoff returns backoff configuration for webhook notification
// delivery retries
//
// Retry sequence (±10% jitter):
//   - Attempt 0: ~1s
//   - Attempt 1: ~2s
//   - Attempt 2: ~4s
//   - Attempt 3: ~8s
//   - Attempt 4+: ~16s, capped at 30s
func NotificationBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
		Multiplier: 2.0,
		Jitter:     0.1,
	}
}

// NextDelay calculates the delay for the given attempt number (0-indexed)
//
// The delay is calculated as: BaseDelay * (Multiplier ^ attempt) ± jitter,
// capped at MaxDelay.
func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	if attempt < 0 {
		return eb.BaseDelay
	}

	delay := float64(eb.BaseDelay) * math.Pow(eb.Multiplier, float64(attempt))
	if delay > float64(eb.MaxDelay) {
		delay = float64(eb.MaxDelay)
	}

	jitterAmount := delay * eb.Jitter
	jitter := (rand.Float64()*2 - 1) * jitterAmount

	finalDelay := time.Duration(delay + jitter)
	if finalDelay < 0 {
		finalDelay = eb.BaseDelay
	}

	return finalDelay
}
