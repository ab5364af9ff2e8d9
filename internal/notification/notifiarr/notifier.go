// Package notifiarr sends decision notifications through the Notifiarr
// passthrough API, which relays them to a Discord channel.
package notifiarr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/overfiltrr/overfiltrr/internal/media"
	"github.com/overfiltrr/overfiltrr/internal/notification/types"
)

const (
	DefaultBaseURL = "https://notifiarr.com"

	ColorApproved = "377E22"
	ColorFailed   = "D65845"

	notApprovedText = "Something unexpected happened. This was not approved, so check the logs or settings."
)

// Settings contains Notifiarr-specific configuration
type Settings struct {
	APIKey  string `json:"apiKey"`
	Channel string `json:"channel"`
	Source  string `json:"source,omitempty"`
	BaseURL string `json:"baseUrl,omitempty"`
}

// Notifier posts passthrough notifications to Notifiarr
type Notifier struct {
	name       string
	settings   Settings
	httpClient *http.Client
	logger     zerolog.Logger
}

// New creates a new Notifiarr notifier
func New(name string, settings Settings, httpClient *http.Client, logger zerolog.Logger) *Notifier {
	if settings.Source == "" {
		settings.Source = "Overseerr"
	}
	if settings.BaseURL == "" {
		settings.BaseURL = DefaultBaseURL
	}
	settings.BaseURL = strings.TrimRight(settings.BaseURL, "/")
	return &Notifier{
		name:       name,
		settings:   settings,
		httpClient: httpClient,
		logger:     logger.With().Str("notifier", "notifiarr").Str("name", name).Logger(),
	}
}

func (n *Notifier) Type() types.NotifierType {
	return types.NotifierNotifiarr
}

func (n *Notifier) Name() string {
	return n.name
}

func (n *Notifier) Test(ctx context.Context) error {
	payload := n.basePayload("OverFiltrr Test Notification", ColorApproved)
	payload.Discord.Text.Title = "OverFiltrr Test Notification"
	payload.Discord.Text.Description = "This is a test notification from OverFiltrr."
	return n.send(ctx, payload)
}

func (n *Notifier) OnDecision(ctx context.Context, event types.DecisionEvent) error {
	return n.send(ctx, n.BuildPayload(event))
}

// BuildPayload renders a decision into the passthrough format.
func (n *Notifier) BuildPayload(event types.DecisionEvent) Payload {
	color := ColorFailed
	if event.Approved {
		color = ColorApproved
	}
	payload := n.basePayload(event.Heading(), color)
	payload.Notification.URL = event.IMDbURL()

	icon := "🎬"
	if event.MediaType == media.TypeTV {
		icon = "📺"
	}
	text := &payload.Discord.Text
	text.Title = fmt.Sprintf("%s **%s**", icon, event.Title)
	text.Description = event.Overview
	text.Fields = []Field{
		{Title: "Requested By", Text: event.Username},
		{Title: "Request Status", Text: event.Status, Inline: true},
	}
	if event.MediaType == media.TypeTV {
		text.Fields = append(text.Fields, Field{Title: "Seasons", Text: event.SeasonsText(), Inline: true})
	}
	text.Fields = append(text.Fields, Field{Title: "Categorised As", Text: event.Category, Inline: true})
	if !event.Approved {
		text.Fields = append(text.Fields, Field{Title: "NOT APPROVED", Text: notApprovedText})
	}

	payload.Discord.Images.Thumbnail = event.PosterURL
	if event.IMDbID == "" {
		n.logger.Warn().Str("title", event.Title).Msg("No IMDb id; title will not be a link")
	}
	if event.PosterURL == "" {
		n.logger.Warn().Str("title", event.Title).Msg("No poster; thumbnail will not be set")
	}
	return payload
}

func (n *Notifier) basePayload(event, color string) Payload {
	return Payload{
		Notification: PayloadNotification{
			Name:  "OverFiltrr",
			Event: event,
		},
		Discord: PayloadDiscord{
			Color: color,
			Text: PayloadText{
				Footer: n.settings.Source + " Notification",
			},
			IDs: PayloadIDs{Channel: channelID(n.settings.Channel)},
		},
	}
}

func (n *Notifier) send(ctx context.Context, payload Payload) error {
	if n.settings.APIKey == "" {
		return fmt.Errorf("notifiarr API key is not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/notification/passthrough/%s", n.settings.BaseURL, n.settings.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("notifiarr returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	n.logger.Debug().Dur("latency", time.Since(start)).Str("event", payload.Notification.Event).Msg("Notification sent via Notifiarr passthrough")
	return nil
}

// channelID sends numeric channel ids as numbers, which is what Notifiarr expects.
func channelID(s string) any {
	if s == "" {
		return nil
	}
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id
	}
	return s
}

// Payload is the passthrough request body
type Payload struct {
	Notification PayloadNotification `json:"notification"`
	Discord      PayloadDiscord      `json:"discord"`
}

type PayloadNotification struct {
	Update bool   `json:"update"`
	Name   string `json:"name"`
	Event  string `json:"event"`
	URL    string `json:"url,omitempty"`
}

type PayloadDiscord struct {
	Color  string        `json:"color"`
	Ping   PayloadPing   `json:"ping"`
	Images PayloadImages `json:"images"`
	Text   PayloadText   `json:"text"`
	IDs    PayloadIDs    `json:"ids"`
}

type PayloadPing struct {
	PingUser int `json:"pingUser"`
	PingRole int `json:"pingRole"`
}

type PayloadImages struct {
	Thumbnail string `json:"thumbnail"`
	Image     string `json:"image"`
}

type PayloadText struct {
	Title       string  `json:"title"`
	Icon        string  `json:"icon"`
	Content     string  `json:"content"`
	Description string  `json:"description"`
	Fields      []Field `json:"fields"`
	Footer      string  `json:"footer"`
}

// Field is one embed field. Notifiarr names them title/text.
type Field struct {
	Title  string `json:"title"`
	Text   string `json:"text"`
	Inline bool   `json:"inline"`
}

type PayloadIDs struct {
	Channel any `json:"channel"`
}
