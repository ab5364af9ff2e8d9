package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/overfiltrr/overfiltrr/internal/notification/types"
)

// Settings contains webhook-specific configuration
type Settings struct {
	URL     string            `json:"url"`
	Method  string            `json:"method,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// Notifier sends notifications to a custom webhook endpoint
type Notifier struct {
	name       string
	settings   Settings
	httpClient *http.Client
	logger     zerolog.Logger
}

// New creates a new webhook notifier
func New(name string, settings Settings, httpClient *http.Client, logger zerolog.Logger) *Notifier {
	if settings.Method == "" {
		settings.Method = http.MethodPost
	}
	settings.Method = strings.ToUpper(settings.Method)
	return &Notifier{
		name:       name,
		settings:   settings,
		httpClient: httpClient,
		logger:     logger.With().Str("notifier", "webhook").Str("name", name).Logger(),
	}
}

func (n *Notifier) Type() types.NotifierType {
	return types.NotifierWebhook
}

func (n *Notifier) Name() string {
	return n.name
}

func (n *Notifier) Test(ctx context.Context) error {
	payload := Payload{
		EventType:    "test",
		InstanceName: "OverFiltrr",
		Message:      "Test notification from OverFiltrr",
		Timestamp:    time.Now().UTC(),
	}
	return n.send(ctx, payload)
}

func (n *Notifier) OnDecision(ctx context.Context, event types.DecisionEvent) error {
	e := event
	payload := Payload{
		EventType:    "decision",
		InstanceName: "OverFiltrr",
		Message:      event.Heading(),
		Timestamp:    event.OccurredAt.UTC(),
		Decision:     &e,
	}
	return n.send(ctx, payload)
}

func (n *Notifier) send(ctx context.Context, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, n.settings.Method, n.settings.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	// Add custom headers
	for key, value := range n.settings.Headers {
		req.Header.Set(key, value)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// Payload is the webhook request body
type Payload struct {
	EventType    string               `json:"eventType"`
	InstanceName string               `json:"instanceName"`
	Message      string               `json:"message,omitempty"`
	Timestamp    time.Time            `json:"timestamp"`
	Decision     *types.DecisionEvent `json:"decision,omitempty"`
}
