package provider

import (
	"fmt"

	"go.uber.org/zap"

	"payments/internal/config"
	"payments/internal/scheduler"
)

// Provider variants selectable with PAYMENT_PROVIDER.
const (
	VariantSimulated = "simulated"
	VariantHTTP      = "http"
)

// NewGateway selects the provider variant named in cfg.
func NewGateway(cfg *config.Config, sched *scheduler.Scheduler, logger *zap.Logger) (Gateway, error) {
	switch cfg.Provider.Variant {
	case VariantSimulated:
		notifier := NewWebhookNotifier(
			cfg.Provider.WebhookURL,
			cfg.Webhook.Header,
			cfg.Webhook.Secret,
			cfg.Provider.Timeout,
		)
		return NewSimulated(SimulatedConfig{
			SubmitDelay:   cfg.Provider.SubmitDelay,
			ConfirmDelay:  cfg.Provider.ConfirmDelay,
			QueryDelay:    cfg.Provider.QueryDelay,
			FailureMarker: cfg.Provider.FailureMarker,
		}, notifier, sched, logger), nil
	case VariantHTTP:
		if cfg.Provider.BaseURL == "" {
			return nil, fmt.Errorf("provider %q requires PROVIDER_BASE_URL", VariantHTTP)
		}
		return NewHTTPGateway(HTTPConfig{
			BaseURL: cfg.Provider.BaseURL,
			APIKey:  cfg.Provider.APIKey,
			Timeout: cfg.Provider.Timeout,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown payment provider: %s", cfg.Provider.Variant)
	}
}
