package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fundhive/donation-service/internal/domain"
	"github.com/fundhive/donation-service/internal/domain/ports"
)

// Config contains configuration for the PayPal gateway
type Config struct {
	// BaseURL of the PayPal REST API
	// Sandbox: https://api-m.sandbox.paypal.com
	// Production: https://api-m.paypal.com
	BaseURL string

	// ClientID of the REST application
	ClientID string

	// SecretPath is the secret manager path holding the client secret
	SecretPath string

	// BrandName shown on the PayPal approval page
	BrandName string

	// HTTP timeout for API calls
	Timeout time.Duration
}

// DefaultConfig returns default configuration for the PayPal sandbox
func DefaultConfig(clientID, secretPath string) *Config {
	return &Config{
		BaseURL:    "https://api-m.sandbox.paypal.com",
		ClientID:   clientID,
		SecretPath: secretPath,
		BrandName:  "FundHive",
		Timeout:    30 * time.Second,
	}
}

// Gateway implements the PaymentGateway port against the PayPal Orders API.
// An order is created during the process step; the donor approves it on
// PayPal's side and the platform's callback carries the capture outcome back.
type Gateway struct {
	config  *Config
	client  *http.Client
	secrets ports.SecretManager
	logger  *zap.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewGateway creates a new PayPal gateway
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
	return "paypal"
}

// Supports reports whether this gateway fulfills the given method
func (g *Gateway) Supports(method domain.PaymentMethod) bool {
	return method == domain.PaymentMethodPayPal
}

type orderAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
}

// ProcessPayment creates a PayPal order and returns the approval redirect.
// The order id doubles as the correlation token the callback must echo.
func (g *Gateway) ProcessPayment(ctx context.Context, payment *domain.Payment, req *ports.ProcessRequest) (*ports.ProcessResult, error) {
	body := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{{
			"custom_id": payment.ID,
			"amount": orderAmount{
				CurrencyCode: payment.Currency,
				Value:        payment.Amount.StringFixed(2),
			},
		}},
		"application_context": map[string]string{
			"brand_name": g.config.BrandName,
			"return_url": req.ReturnURL,
			"cancel_url": req.ReturnURL,
		},
	}

	var order orderResponse
	raw, err := g.post(ctx, "/v2/checkout/orders", body, &order)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("create order: response missing order id")
	}

	var approveURL string
	for _, link := range order.Links {
		if link.Rel == "approve" || link.Rel == "payer-action" {
			approveURL = link.Href
			break
		}
	}
	if approveURL == "" {
		return nil, fmt.Errorf("create order: response missing approval link")
	}

	g.logger.Info("paypal order created",
		zap.String("payment_id", payment.ID),
		zap.String("order_id", order.ID),
	)

	return &ports.ProcessResult{
		PreparationPayload: map[string]string{
			domain.PrepKeyCorrelationToken: order.ID,
			"order_id":                     order.ID,
		},
		RedirectURL:     approveURL,
		GatewayResponse: raw,
	}, nil
}

// RefundPayment refunds the capture recorded on the payment. Eligibility is
// validated before PayPal is called.
func (g *Gateway) RefundPayment(ctx context.Context, payment *domain.Payment, spec *ports.RefundSpec) (*ports.RefundResult, error) {
	amount := spec.Amount
	if amount.IsZero() {
		amount = payment.Amount
	}
	if err := domain.ValidateRefund(payment, amount); err != nil {
		return nil, err
	}
	if payment.TransactionID == nil {
		return nil, fmt.Errorf("payment %s has no capture id", payment.ID)
	}

	body := map[string]interface{}{
		"amount": orderAmount{
			CurrencyCode: payment.Currency,
			Value:        amount.StringFixed(2),
		},
	}
	if spec.Reason != "" {
		body["note_to_payer"] = spec.Reason
	}

	var refund struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	raw, err := g.post(ctx, "/v2/payments/captures/"+*payment.TransactionID+"/refund", body, &refund)
	if err != nil {
		return nil, fmt.Errorf("refund capture: %w", err)
	}

	g.logger.Info("paypal refund issued",
		zap.String("payment_id", payment.ID),
		zap.String("refund_id", refund.ID),
		zap.String("amount", amount.String()),
	)

	return &ports.RefundResult{
		RefundTransactionID: refund.ID,
		GatewayResponse:     raw,
	}, nil
}

// VerifyPaymentStatus fetches the order's current state from PayPal
func (g *Gateway) VerifyPaymentStatus(ctx context.Context, payment *domain.Payment) (*ports.VerifyResult, error) {
	orderID, ok := payment.CorrelationToken()
	if !ok {
		return nil, fmt.Errorf("payment %s has no paypal order", payment.ID)
	}

	var order orderResponse
	raw, err := g.get(ctx, "/v2/checkout/orders/"+orderID, &order)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	result := &ports.VerifyResult{
		Status:          mapOrderStatus(order.Status),
		GatewayResponse: raw,
	}
	if payment.TransactionID != nil {
		result.TransactionID = *payment.TransactionID
	}
	return result, nil
}

func mapOrderStatus(status string) domain.PaymentStatus {
	switch status {
	case "COMPLETED":
		return domain.PaymentStatusCompleted
	case "VOIDED":
		return domain.PaymentStatusFailed
	default:
		return domain.PaymentStatusPending
	}
}

func (g *Gateway) post(ctx context.Context, path string, body interface{}, out interface{}) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	return g.do(ctx, http.MethodPost, path, bytes.NewReader(payload), out)
}

func (g *Gateway) get(ctx context.Context, path string, out interface{}) (string, error) {
	return g.do(ctx, http.MethodGet, path, nil, out)
}

func (g *Gateway) do(ctx context.Context, method, path string, body io.Reader, out interface{}) (string, error) {
	token, err := g.getAccessToken(ctx)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, method, g.config.BaseURL+path, body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("paypal request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("paypal returned %d: %s", resp.StatusCode, string(raw))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return "", fmt.Errorf("decode response: %w", err)
		}
	}
	return string(raw), nil
}

// getAccessToken returns a cached OAuth token, refreshing it when it is
// within a minute of expiring
func (g *Gateway) getAccessToken(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.accessToken != "" && time.Now().Before(g.tokenExpiry.Add(-time.Minute)) {
		return g.accessToken, nil
	}

	secret, err := g.secrets.GetSecret(ctx, g.config.SecretPath)
	if err != nil {
		return "", fmt.Errorf("load client secret: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.config.BaseURL+"/v1/oauth2/token",
		strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(g.config.ClientID, secret.Value)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request returned %d", resp.StatusCode)
	}

	var token struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(raw, &token); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	g.accessToken = token.AccessToken
	g.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	return g.accessToken, nil
}
