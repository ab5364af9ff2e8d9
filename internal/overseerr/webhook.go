package overseerr

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Notification types sent by the Overseerr webhook agent.
const (
	NotificationTest         = "TEST_NOTIFICATION"
	NotificationMediaPending = "MEDIA_PENDING"
)

// WebhookMedia is the {{media}} block of the default webhook template.
type WebhookMedia struct {
	MediaType string  `json:"media_type"`
	TMDbID    FlexInt `json:"tmdbId"`
	TVDbID    FlexInt `json:"tvdbId"`
	Status    string  `json:"status"`
	Status4K  string  `json:"status4k"`
}

// WebhookRequest is the {{request}} block of the default webhook template.
type WebhookRequest struct {
	RequestID           FlexInt `json:"request_id"`
	RequestedByEmail    string  `json:"requestedBy_email"`
	RequestedByUsername string  `json:"requestedBy_username"`
	RequestedByAvatar   string  `json:"requestedBy_avatar"`
}

// WebhookExtra is one {name, value} pair from the {{extra}} block.
type WebhookExtra struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// WebhookPayload is the JSON body Overseerr posts to the webhook endpoint.
type WebhookPayload struct {
	NotificationType string          `json:"notification_type"`
	Event            string          `json:"event"`
	Subject          string          `json:"subject"`
	Message          string          `json:"message"`
	Image            string          `json:"image"`
	Media            *WebhookMedia   `json:"media"`
	Request          *WebhookRequest `json:"request"`
	Extra            []WebhookExtra  `json:"extra"`
}

// ParseWebhook decodes a webhook body.
func ParseWebhook(body []byte) (*WebhookPayload, error) {
	var p WebhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("invalid webhook payload: %w", err)
	}
	return &p, nil
}

// Seasons returns the requested season numbers from the extra block. The
// entry named like "Requested Seasons" is preferred, falling back to the
// first entry. Unparseable values yield nil.
func (p *WebhookPayload) Seasons() ([]int, error) {
	if len(p.Extra) == 0 {
		return nil, nil
	}
	raw := p.Extra[0].Value
	for _, e := range p.Extra {
		if strings.Contains(strings.ToLower(e.Name), "season") {
			raw = e.Value
			break
		}
	}

	var seasons []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid season %q", part)
		}
		seasons = append(seasons, n)
	}
	return seasons, nil
}

// Username returns the requesting user's name, or "" when unknown.
func (p *WebhookPayload) Username() string {
	if p.Request == nil {
		return ""
	}
	return p.Request.RequestedByUsername
}
