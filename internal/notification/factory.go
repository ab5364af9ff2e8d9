package notification

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/overfiltrr/overfiltrr/internal/config"
	"github.com/overfiltrr/overfiltrr/internal/notification/discord"
	"github.com/overfiltrr/overfiltrr/internal/notification/notifiarr"
	"github.com/overfiltrr/overfiltrr/internal/notification/webhook"
)

// Factory creates Notifier instances from configuration
type Factory struct {
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewFactory creates a new notification factory
func NewFactory(logger zerolog.Logger) *Factory {
	return &Factory{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.With().Str("component", "notification-factory").Logger(),
	}
}

// FromConfig creates every notifier that has its required settings present.
func (f *Factory) FromConfig(cfg *config.Config) []Notifier {
	var notifiers []Notifier

	if n := cfg.Notifiarr; n.APIKey != "" {
		client := f.httpClient
		if n.Timeout > 0 {
			client = &http.Client{Timeout: time.Duration(n.Timeout) * time.Second}
		}
		notifiers = append(notifiers, notifiarr.New("notifiarr", notifiarr.Settings{
			APIKey:  n.APIKey,
			Channel: n.Channel,
			Source:  n.Source,
		}, client, f.logger))
	}

	if d := cfg.Notifications.Discord; d.WebhookURL != "" {
		notifiers = append(notifiers, discord.New("discord", discord.Settings{
			WebhookURL: d.WebhookURL,
			Username:   d.Username,
			AvatarURL:  d.AvatarURL,
		}, f.httpClient, f.logger))
	}

	if w := cfg.Notifications.Webhook; w.URL != "" {
		notifiers = append(notifiers, webhook.New("webhook", webhook.Settings{
			URL:     w.URL,
			Method:  w.Method,
			Headers: w.Headers,
		}, f.httpClient, f.logger))
	}

	for _, n := range notifiers {
		f.logger.Debug().Str("type", string(n.Type())).Str("name", n.Name()).Msg("Notifier enabled")
	}
	return notifiers
}
