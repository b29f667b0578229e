// Package razorpay is the payment gateway client: order registration and
// webhook intake for the checkout flow.
package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// ErrConfigurationMissing: no gateway credentials configured. Fatal to
	// the attempt, surfaced to the user as "unavailable".
	ErrConfigurationMissing = errors.New("payment gateway is not configured")

	// ErrGatewayUnreachable: network-level failure talking to the gateway.
	// Retryable by creating a new order; a timeout is ambiguous, so callers
	// re-check ledger status before retrying.
	ErrGatewayUnreachable = errors.New("payment gateway unreachable")

	ErrInvalidAmount = errors.New("amount must be a positive integer in minor units")
)

const defaultEntrypointURL = "https://api.razorpay.com"

type Config struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	EntrypointURL string
}

func NewProvider(cfg Config) *Provider {
	if cfg.EntrypointURL == "" {
		cfg.EntrypointURL = defaultEntrypointURL
	}
	return &Provider{
		cfg: cfg,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		l: zap.L().Named("razorpay_provider"),
	}
}

type Provider struct {
	cfg    Config
	client *http.Client
	l      *zap.Logger
}

func (p *Provider) Configured() bool {
	return p != nil && p.cfg.KeyID != "" && p.cfg.KeySecret != ""
}

// KeySecret is the account secret shared with the gateway. It never
// leaves the server; verification recomputes signatures with it.
func (p *Provider) KeySecret() string {
	return p.cfg.KeySecret
}

// Order is the gateway-side payment order as registered. Amount is in
// minor currency units.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type orderError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder registers a payment order with the gateway. The receipt is
// an idempotency aid for gateway-side reconciliation; a retry after a
// timeout must not be trusted to be a fresh order, so callers re-check
// ledger status first.
func (p *Provider) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error) {
	if !p.Configured() {
		return nil, ErrConfigurationMissing
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	body, err := json.Marshal(map[string]interface{}{
		"amount":          amount,
		"currency":        currency,
		"receipt":         receipt,
		"payment_capture": 1,
	})
	if err != nil {
		return nil, errors.Wrap(err, "Failed marshal order request.")
	}

	req, err := http.NewRequest(http.MethodPost, p.cfg.EntrypointURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "Failed build order request.")
	}
	req = req.WithContext(ctx)
	req.SetBasicAuth(p.cfg.KeyID, p.cfg.KeySecret)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		p.l.Warn("createOrder: request failed",
			zap.Int64("amount", amount),
			zap.Error(err),
		)
		return nil, ErrGatewayUnreachable
	}
	defer res.Body.Close()
	raw, err := ioutil.ReadAll(res.Body)
	if err != nil {
		p.l.Warn("createOrder: read body", zap.Error(err))
		return nil, errors.Wrap(err, "Failed read body response from gateway.")
	}

	if res.StatusCode != http.StatusOK {
		var oe orderError
		if err := json.Unmarshal(raw, &oe); err == nil && oe.Error.Description != "" {
			p.l.Warn("createOrder: gateway rejected order",
				zap.Int("status_code", res.StatusCode),
				zap.String("code", oe.Error.Code),
				zap.String("description", oe.Error.Description),
			)
			return nil, errors.New(oe.Error.Description)
		}
		return nil, errors.Errorf("gateway returned status %d", res.StatusCode)
	}

	var order Order
	if err := json.Unmarshal(raw, &order); err != nil {
		p.l.Warn("createOrder: bad response from gateway",
			zap.String("body", string(raw)),
			zap.Error(err),
		)
		return nil, errors.Wrap(err, "Failed unmarshal response from gateway.")
	}
	return &order, nil
}
