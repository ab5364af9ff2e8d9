package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/overfiltrr/overfiltrr/internal/media"
	"github.com/overfiltrr/overfiltrr/internal/notification/types"
)

// Discord embed colors
const (
	ColorSuccess = 0x2ECC71 // Green
	ColorWarning = 0xF1C40F // Yellow
	ColorDanger  = 0xE74C3C // Red
	ColorInfo    = 0x3498DB // Blue
)

// Settings contains Discord-specific configuration
type Settings struct {
	WebhookURL string `json:"webhookUrl"`
	Username   string `json:"username,omitempty"`
	AvatarURL  string `json:"avatarUrl,omitempty"`
}

// Notifier sends notifications to Discord via webhook
type Notifier struct {
	name       string
	settings   Settings
	httpClient *http.Client
	logger     zerolog.Logger
}

// New creates a new Discord notifier
func New(name string, settings Settings, httpClient *http.Client, logger zerolog.Logger) *Notifier {
	return &Notifier{
		name:       name,
		settings:   settings,
		httpClient: httpClient,
		logger:     logger.With().Str("notifier", "discord").Str("name", name).Logger(),
	}
}

func (n *Notifier) Type() types.NotifierType {
	return types.NotifierDiscord
}

func (n *Notifier) Name() string {
	return n.name
}

func (n *Notifier) Test(ctx context.Context) error {
	payload := WebhookPayload{
		Username:  n.getUsername(),
		AvatarURL: n.settings.AvatarURL,
		Embeds: []Embed{{
			Title:       "OverFiltrr Test Notification",
			Description: "This is a test notification from OverFiltrr.",
			Color:       ColorInfo,
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
		}},
	}
	return n.send(ctx, payload)
}

func (n *Notifier) OnDecision(ctx context.Context, event types.DecisionEvent) error {
	return n.send(ctx, n.BuildPayload(event))
}

// BuildPayload renders a decision as a single embed.
func (n *Notifier) BuildPayload(event types.DecisionEvent) WebhookPayload {
	embed := Embed{
		Title:       truncate(event.Title, 256),
		URL:         event.IMDbURL(),
		Description: truncate(event.Overview, 2048),
		Color:       decisionColor(event),
		Timestamp:   event.OccurredAt.UTC().Format(time.RFC3339),
		Author:      &EmbedAuthor{Name: event.Heading()},
		Footer:      &EmbedFooter{Text: "OverFiltrr"},
	}
	if event.PosterURL != "" {
		embed.Thumbnail = &EmbedImage{URL: event.PosterURL}
	}

	if event.Username != "" {
		embed.Fields = append(embed.Fields, EmbedField{Name: "Requested By", Value: event.Username})
	}
	embed.Fields = append(embed.Fields,
		EmbedField{Name: "Status", Value: event.Status, Inline: true},
		EmbedField{Name: "Category", Value: event.Category, Inline: true},
	)
	if event.MediaType == media.TypeTV {
		embed.Fields = append(embed.Fields, EmbedField{Name: "Seasons", Value: event.SeasonsText(), Inline: true})
	}
	if event.ProfileID > 0 {
		embed.Fields = append(embed.Fields, EmbedField{Name: "Quality Profile", Value: fmt.Sprint(event.ProfileID), Inline: true})
	}
	if event.RootFolder != "" {
		embed.Fields = append(embed.Fields, EmbedField{Name: "Root Folder", Value: "`" + event.RootFolder + "`", Inline: true})
	}

	return WebhookPayload{
		Username:  n.getUsername(),
		AvatarURL: n.settings.AvatarURL,
		Embeds:    []Embed{embed},
	}
}

func decisionColor(event types.DecisionEvent) int {
	switch {
	case event.Approved:
		return ColorSuccess
	case event.DryRun:
		return ColorInfo
	case event.Status == types.StatusFailed:
		return ColorDanger
	default:
		return ColorWarning
	}
}

func (n *Notifier) getUsername() string {
	if n.settings.Username != "" {
		return n.settings.Username
	}
	return "OverFiltrr"
}

func (n *Notifier) send(ctx context.Context, payload WebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.settings.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("discord returned status %d", resp.StatusCode)
	}

	return nil
}

// WebhookPayload is the Discord webhook request body
type WebhookPayload struct {
	Username  string  `json:"username,omitempty"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	Content   string  `json:"content,omitempty"`
	Embeds    []Embed `json:"embeds,omitempty"`
}

// Embed is a Discord embed object
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Color       int          `json:"color,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Author      *EmbedAuthor `json:"author,omitempty"`
	Thumbnail   *EmbedImage  `json:"thumbnail,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
}

// EmbedAuthor is the author section of an embed
type EmbedAuthor struct {
	Name string `json:"name,omitempty"`
}

// EmbedImage is an image in an embed
type EmbedImage struct {
	URL string `json:"url,omitempty"`
}

// EmbedField is a field in an embed
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// EmbedFooter is the footer section of an embed
type EmbedFooter struct {
	Text string `json:"text,omitempty"`
}

func truncate(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
