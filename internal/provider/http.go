package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"payments/internal/domain"
)

// HTTPConfig configures the REST provider client.
type HTTPConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// HTTPGateway talks to a provider REST API.
type HTTPGateway struct {
	client *resty.Client
	logger *zap.Logger
}

type submitPayload struct {
	PaymentID string          `json:"payment_id"`
	Sender    string          `json:"sender"`
	Receiver  string          `json:"receiver"`
	Currency  string          `json:"currency"`
	Amount    decimal.Decimal `json:"amount"`
}

type submitResponse struct {
	PaymentID string          `json:"payment_id"`
	Status    string          `json:"status"`
	Currency  string          `json:"currency"`
	Amount    decimal.Decimal `json:"amount"`
}

type statusResponse struct {
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
}

// NewHTTPGateway creates a provider client for cfg.BaseURL.
func NewHTTPGateway(cfg HTTPConfig, logger *zap.Logger) *HTTPGateway {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}

	return &HTTPGateway{
		client: client,
		logger: logger.Named("provider.http"),
	}
}

// Name implements Gateway.
func (g *HTTPGateway) Name() string { return VariantHTTP }

// Submit implements Gateway.
func (g *HTTPGateway) Submit(ctx context.Context, req SubmissionRequest) (*SubmissionResult, error) {
	g.logger.Debug("provider submit started", zap.String("payment_id", req.PaymentID))

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(submitPayload{
			PaymentID: req.PaymentID,
			Sender:    req.Sender,
			Receiver:  req.Receiver,
			Currency:  req.Currency,
			Amount:    req.Amount,
		}).
		Post("/v1/payments")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: provider returned %s", ErrProviderUnavailable, resp.Status())
	}

	var out submitResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("%w: decode submit response: %v", ErrProviderUnavailable, err)
	}

	status := parseProviderStatus(out.Status)
	if status == "" {
		status = domain.PaymentStatusProcessing
	}

	return &SubmissionResult{
		PaymentID: req.PaymentID,
		Status:    status,
		Currency:  out.Currency,
		Amount:    out.Amount,
	}, nil
}

// QueryStatus implements Gateway.
func (g *HTTPGateway) QueryStatus(ctx context.Context, paymentID string) (*StatusResult, error) {
	resp, err := g.client.R().
		SetContext(ctx).
		SetPathParam("id", paymentID).
		Get("/v1/payments/{id}")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: provider returned %s", ErrProviderUnavailable, resp.Status())
	}

	var out statusResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("%w: decode status response: %v", ErrProviderUnavailable, err)
	}

	status := parseProviderStatus(out.Status)
	if status == "" {
		return nil, fmt.Errorf("%w: unknown status %q", ErrProviderUnavailable, out.Status)
	}

	return &StatusResult{PaymentID: paymentID, Status: status}, nil
}

// parseProviderStatus maps a provider status string onto a domain status, or "" if unknown.
func parseProviderStatus(raw string) domain.PaymentStatus {
	status := domain.PaymentStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !status.IsValid() {
		return ""
	}
	return status
}
