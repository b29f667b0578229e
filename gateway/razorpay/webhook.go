package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io/ioutil"
	"net/http"

	"github.com/labstack/echo"
	"go.uber.org/zap"
)

// CaptureFunc records a captured payment for an order. It must be
// idempotent: webhooks are delivered at least once.
type CaptureFunc func(c echo.Context, orderID, paymentID string) error

type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// WebhookHandler validates the gateway's server-to-server callback and
// feeds captured payments into capture. The body signature is the only
// authentication: a bad signature is a 400, never a partial accept.
func (p *Provider) WebhookHandler(capture CaptureFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if p == nil || p.cfg.WebhookSecret == "" {
			c.Response().WriteHeader(http.StatusServiceUnavailable)
			return nil
		}

		const maxBodyBytes = int64(65536)
		c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, maxBodyBytes)
		payload, err := ioutil.ReadAll(c.Request().Body)
		if err != nil {
			p.l.Warn("webhook: read body", zap.Error(err))
			c.Response().WriteHeader(http.StatusServiceUnavailable)
			return nil
		}

		if !p.verifyWebhookSignature(payload, c.Request().Header.Get("X-Razorpay-Signature")) {
			p.l.Warn("webhook: signature verification failed")
			c.Response().WriteHeader(http.StatusBadRequest)
			return nil
		}

		var event webhookEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			p.l.Warn("webhook: bad payload", zap.Error(err))
			c.Response().WriteHeader(http.StatusBadRequest)
			return nil
		}

		switch event.Event {
		case "payment.captured":
			entity := event.Payload.Payment.Entity
			if err := capture(c, entity.OrderID, entity.ID); err != nil {
				p.l.Warn("webhook: capture failed",
					zap.String("order_id", entity.OrderID),
					zap.String("payment_id", entity.ID),
					zap.Error(err),
				)
				c.Response().WriteHeader(http.StatusInternalServerError)
				return nil
			}
		default:
			p.l.Debug("webhook: ignored event", zap.String("event", event.Event))
		}

		c.Response().WriteHeader(http.StatusOK)
		return nil
	}
}

func (p *Provider) verifyWebhookSignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(p.cfg.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
