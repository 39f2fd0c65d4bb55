package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"payments/internal/domain"
)

// DefaultWebhookHeader carries the shared secret on confirmation calls.
const DefaultWebhookHeader = "x-authentication"

// WebhookPayload is the body of a provider confirmation.
type WebhookPayload struct {
	PaymentID string               `json:"payment_id"`
	Status    domain.PaymentStatus `json:"status"`
}

// WebhookNotifier delivers confirmations to the payment webhook endpoint.
type WebhookNotifier struct {
	client *resty.Client
	url    string
	header string
	secret string
}

// NewWebhookNotifier creates a notifier that POSTs to url with the secret in header.
func NewWebhookNotifier(url, header, secret string, timeout time.Duration) *WebhookNotifier {
	if header == "" {
		header = DefaultWebhookHeader
	}
	return &WebhookNotifier{
		client: resty.New().SetTimeout(timeout),
		url:    url,
		header: header,
		secret: secret,
	}
}

// Notify sends a single confirmation. It does not retry.
func (n *WebhookNotifier) Notify(ctx context.Context, paymentID string, status domain.PaymentStatus) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader(n.header, n.secret).
		SetBody(WebhookPayload{PaymentID: paymentID, Status: status}).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("failed to call payment webhook: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("payment webhook returned an error: %s", resp.Status())
	}

	return nil
}
