package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fundhive/donation-service/internal/domain/ports"
	"github.com/fundhive/donation-service/pkg/resilience"
)

// Config contains configuration for the webhook notifier
type Config struct {
	// EndpointURL is the notification hub that fans events out to donors and
	// campaign owners (email, push, in-app)
	EndpointURL string

	// SecretPath is the secret manager path holding the signing key
	SecretPath string

	// MaxRetries bounds in-process delivery retries per Send call. The task
	// queue provides the durable retry layer on top of this.
	MaxRetries int

	// Timeout per delivery attempt
	Timeout time.Duration
}

// DefaultConfig returns default configuration for the webhook notifier
func DefaultConfig(endpointURL, secretPath string) *Config {
	return &Config{
		EndpointURL: endpointURL,
		SecretPath:  secretPath,
		MaxRetries:  3,
		Timeout:     10 * time.Second,
	}
}

// Notifier delivers events to the notification hub as HMAC-signed JSON
// webhooks
type Notifier struct {
	config   *Config
	client   *http.Client
	secrets  ports.SecretManager
	backoff  resilience.BackoffStrategy
	timeouts *resilience.TimeoutConfig
	logger   *zap.Logger
}

// NewNotifier creates a new webhook notifier
func NewNotifier(config *Config, secrets ports.SecretManager, logger *zap.Logger) *Notifier {
	timeouts := resilience.DefaultTimeoutConfig()
	if config.Timeout > 0 {
		timeouts.Delivery = config.Timeout
	}
	return &Notifier{
		config:   config,
		client:   &http.Client{},
		secrets:  secrets,
		backoff:  resilience.NotificationBackoff(),
		timeouts: timeouts,
		logger:   logger,
	}
}

type event struct {
	Recipient string            `json:"recipient"`
	EventType string            `json:"event_type"`
	Data      map[string]string `json:"data"`
	SentAt    time.Time         `json:"sent_at"`
}

// Send delivers one event, retrying transient failures with exponential
// backoff. 4xx responses are permanent and fail immediately.
func (n *Notifier) Send(ctx context.Context, recipient, eventType string, data map[string]string) error {
	payload, err := json.Marshal(event{
		Recipient: recipient,
		EventType: eventType,
		Data:      data,
		SentAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	secret, err := n.secrets.GetSecret(ctx, n.config.SecretPath)
	if err != nil {
		return fmt.Errorf("load signing key: %w", err)
	}
	signature := sign(payload, secret.Value)

	var lastErr error
	for attempt := 0; attempt <= n.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(n.backoff.NextDelay(attempt - 1)):
			}
		}

		permanent, err := n.deliver(ctx, payload, signature)
		if err == nil {
			return nil
		}
		lastErr = err
		if permanent {
			return err
		}

		n.logger.Warn("webhook delivery attempt failed",
			zap.String("event_type", eventType),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}

	return fmt.Errorf("webhook delivery exhausted %d attempts: %w", n.config.MaxRetries+1, lastErr)
}

// deliver posts the signed payload once, bounded by the per-attempt delivery
// budget. The bool reports whether a failure is permanent.
func (n *Notifier) deliver(ctx context.Context, payload []byte, signature string) (bool, error) {
	ctx, cancel := n.timeouts.DeliveryContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		n.config.EndpointURL, bytes.NewReader(payload))
	if err != nil {
		return true, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", signature)

	resp, err := n.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return false, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return true, fmt.Errorf("webhook rejected with %d", resp.StatusCode)
	default:
		return false, fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
}

// sign computes the hex HMAC-SHA256 signature of the payload
func sign(payload []byte, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
