package card

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fundhive/donation-service/internal/domain"
	"github.com/fundhive/donation-service/internal/domain/ports"
)

// Config contains configuration for the hosted card gateway
type Config struct {
	// HostedPageURL is the provider's hosted payment page donors post card
	// details to
	HostedPageURL string

	// APIBaseURL is the provider's server-to-server API for refunds and
	// status lookups
	APIBaseURL string

	// MerchantID identifies this platform at the provider
	MerchantID string

	// MACSecretPath is the secret manager path holding the MAC signing key
	MACSecretPath string

	// HTTP timeout for API calls
	Timeout time.Duration
}

// DefaultConfig returns default configuration for the card gateway sandbox
func DefaultConfig(merchantID, macSecretPath string) *Config {
	return &Config{
		HostedPageURL: "https://secure.cardpay-sandbox.example.com/hosted",
		APIBaseURL:    "https://api.cardpay-sandbox.example.com",
		MerchantID:    merchantID,
		MACSecretPath: macSecretPath,
		Timeout:       30 * time.Second,
	}
}

// Gateway implements the PaymentGateway port for a hosted card payment page.
// The donor enters card details on the provider's page, never on ours; the
// provider redirects back with a signed outcome.
type Gateway struct {
	config  *Config
	client  *http.Client
	secrets ports.SecretManager
	logger  *zap.Logger
}

// NewGateway creates a new card gateway
func NewGateway(config *Config, secrets ports.SecretManager, logger *zap.Logger) *Gateway {
	return &Gateway{
		config:  config,
		client:  &http.Client{Timeout: config.Timeout},
		secrets: secrets,
		logger:  logger,
	}
}

// Name returns the gateway identifier
func (g *Gateway) Name() string {
	return "card"
}

// Supports reports whether this gateway fulfills the given method
func (g *Gateway) Supports(method domain.PaymentMethod) bool {
	return method == domain.PaymentMethodCreditCard
}

// ProcessPayment builds the signed hosted-page redirect. The session token is
// stored as the correlation token and included in the signed parameters, so a
// forged callback cannot reuse another payment's session.
func (g *Gateway) ProcessPayment(ctx context.Context, payment *domain.Payment, req *ports.ProcessRequest) (*ports.ProcessResult, error) {
	macKey, err := g.secrets.GetSecret(ctx, g.config.MACSecretPath)
	if err != nil {
		return nil, fmt.Errorf("load mac key: %w", err)
	}

	session := uuid.New().String()
	params := map[string]string{
		"MERCHANT_ID":  g.config.MerchantID,
		"SESSION":      session,
		"AMOUNT":       payment.Amount.StringFixed(2),
		"CURRENCY":     payment.Currency,
		"REDIRECT_URL": req.ReturnURL,
	}
	params["MAC"] = signParams(params, macKey.Value)

	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	redirectURL := g.config.HostedPageURL + "?" + values.Encode()

	g.logger.Info("card session prepared",
		zap.String("payment_id", payment.ID),
	)

	return &ports.ProcessResult{
		PreparationPayload: map[string]string{
			domain.PrepKeyCorrelationToken: session,
		},
		RedirectURL: redirectURL,
	}, nil
}

// RefundPayment issues a signed refund request after validating eligibility
func (g *Gateway) RefundPayment(ctx context.Context, payment *domain.Payment, spec *ports.RefundSpec) (*ports.RefundResult, error) {
	amount := spec.Amount
	if amount.IsZero() {
		amount = payment.Amount
	}
	if err := domain.ValidateRefund(payment, amount); err != nil {
		return nil, err
	}
	if payment.TransactionID == nil {
		return nil, fmt.Errorf("payment %s has no provider transaction", payment.ID)
	}

	macKey, err := g.secrets.GetSecret(ctx, g.config.MACSecretPath)
	if err != nil {
		return nil, fmt.Errorf("load mac key: %w", err)
	}

	form := map[string]string{
		"MERCHANT_ID": g.config.MerchantID,
		"AUTH_GUID":   *payment.TransactionID,
		"AMOUNT":      amount.StringFixed(2),
		"CURRENCY":    payment.Currency,
	}
	form["MAC"] = signParams(form, macKey.Value)

	raw, err := g.postForm(ctx, "/v1/refunds", form)
	if err != nil {
		return nil, fmt.Errorf("refund request: %w", err)
	}

	refundID := parseField(raw, "REFUND_GUID")
	g.logger.Info("card refund issued",
		zap.String("payment_id", payment.ID),
		zap.String("refund_id", refundID),
		zap.String("amount", amount.String()),
	)

	return &ports.RefundResult{
		RefundTransactionID: refundID,
		GatewayResponse:     raw,
	}, nil
}

// VerifyPaymentStatus asks the provider for the transaction's current state
func (g *Gateway) VerifyPaymentStatus(ctx context.Context, payment *domain.Payment) (*ports.VerifyResult, error) {
	session, ok := payment.CorrelationToken()
	if !ok {
		return nil, fmt.Errorf("payment %s has no card session", payment.ID)
	}

	macKey, err := g.secrets.GetSecret(ctx, g.config.MACSecretPath)
	if err != nil {
		return nil, fmt.Errorf("load mac key: %w", err)
	}

	form := map[string]string{
		"MERCHANT_ID": g.config.MerchantID,
		"SESSION":     session,
	}
	form["MAC"] = signParams(form, macKey.Value)

	raw, err := g.postForm(ctx, "/v1/status", form)
	if err != nil {
		return nil, fmt.Errorf("status request: %w", err)
	}

	result := &ports.VerifyResult{
		Status:          mapAuthResponse(parseField(raw, "AUTH_RESP")),
		TransactionID:   parseField(raw, "AUTH_GUID"),
		GatewayResponse: raw,
	}
	return result, nil
}

// mapAuthResponse maps the provider's response code to a payment status.
// "00" is approved; an empty code means the provider has not settled yet.
func mapAuthResponse(code string) domain.PaymentStatus {
	switch code {
	case "00":
		return domain.PaymentStatusCompleted
	case "":
		return domain.PaymentStatusPending
	default:
		return domain.PaymentStatusFailed
	}
}

func (g *Gateway) postForm(ctx context.Context, path string, form map[string]string) (string, error) {
	values := url.Values{}
	for k, v := range form {
		values.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.config.APIBaseURL+path, strings.NewReader(values.Encode()))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("provider request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("provider returned %d: %s", resp.StatusCode, string(raw))
	}
	return string(raw), nil
}

// signParams computes an HMAC-SHA256 MAC over the sorted key=value pairs
func signParams(params map[string]string, key string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "MAC" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}

	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(b.String()))
	return hex.EncodeToString(mac.Sum(nil))
}

// parseField extracts a value from the provider's key=value response body
func parseField(raw, field string) string {
	for _, pair := range strings.Split(raw, "&") {
		if k, v, ok := strings.Cut(pair, "="); ok && k == field {
			decoded, err := url.QueryUnescape(v)
			if err != nil {
				return v
			}
			return decoded
		}
	}
	return ""
}
