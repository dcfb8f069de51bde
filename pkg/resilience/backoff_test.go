package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedBackoff_NextDelay(t *testing.T) {
	fb := &FixedBackoff{Delay: 30 * time.Second}

	for _, attempt := range []int{0, 1, 5, 100} {
		assert.Equal(t, 30*time.Second, fb.NextDelay(attempt),
			"fixed backoff must not vary with attempt number")
	}
}

func TestExponentialBackoff_NextDelay(t *testing.T) {
	eb := &ExponentialBackoff{
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
		Multiplier: 2.0,
		Jitter:     0.1,
	}

	tests := []struct {
		name     string
		attempt  int
		expected time.Duration
	}{
		{name: "first attempt uses base delay", attempt: 0, expected: 1 * time.Second},
		{name: "second attempt doubles", attempt: 1, expected: 2 * time.Second},
		{name: "fourth attempt", attempt: 3, expected: 8 * time.Second},
		{name: "large attempt capped at max", attempt: 20, expected: 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delay := eb.NextDelay(tt.attempt)

			// Allow for ±10% jitter around the expected value
			lower := time.Duration(float64(tt.expected) * 0.9)
			upper := time.Duration(float64(tt.expected) * 1.1)
			assert.GreaterOrEqual(t, delay, lower)
			assert.LessOrEqual(t, delay, upper)
		})
	}
}

func TestExponentialBackoff_NegativeAttempt(t *testing.T) {
	eb := NotificationBackoff()
	assert.Equal(t, eb.BaseDelay, eb.NextDelay(-1))
}

func TestNotificationBackoff_Defaults(t *testing.T) {
	eb := NotificationBackoff()
	assert.Equal(t, 1*time.Second, eb.BaseDelay)
	assert.Equal(t, 30*time.Second, eb.MaxDelay)
	assert.Equal(t, 2.0, eb.Multiplier)
}
