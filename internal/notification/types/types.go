// Package types contains shared type definitions for notification packages.
package types

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/overfiltrr/overfiltrr/internal/media"
)

// NotifierType identifies a notification provider
type NotifierType string

const (
	NotifierNotifiarr NotifierType = "notifiarr"
	NotifierDiscord   NotifierType = "discord"
	NotifierWebhook   NotifierType = "webhook"
)

// Notifier is the interface all notification providers must implement
type Notifier interface {
	Type() NotifierType
	Name() string
	Test(ctx context.Context) error
	OnDecision(ctx context.Context, event DecisionEvent) error
}

// Status texts reported for a decision.
const (
	StatusApproved        = "Approved"
	StatusPendingApproval = "Pending Approval"
	StatusDryRun          = "Dry Run"
	StatusFailed          = "Failed"
)

// DecisionEvent describes the outcome of one processed request.
type DecisionEvent struct {
	EventID    string     `json:"eventId"`
	RequestID  int        `json:"requestId"`
	MediaType  media.Type `json:"mediaType"`
	Title      string     `json:"title"`
	Username   string     `json:"username,omitempty"`
	Category   string     `json:"category"`
	AppName    string     `json:"appName,omitempty"`
	ProfileID  int        `json:"profileId,omitempty"`
	RootFolder string     `json:"rootFolder,omitempty"`
	Seasons    []int      `json:"seasons,omitempty"`
	Overview   string     `json:"overview,omitempty"`
	IMDbID     string     `json:"imdbId,omitempty"`
	PosterURL  string     `json:"posterUrl,omitempty"`
	Status     string     `json:"status"`
	State      string     `json:"state"`
	Approved   bool       `json:"approved"`
	DryRun     bool       `json:"dryRun"`
	OccurredAt time.Time  `json:"occurredAt"`
}

// IMDbURL returns the IMDb title link, or "" when the id is unknown.
func (e DecisionEvent) IMDbURL() string {
	if e.IMDbID == "" {
		return ""
	}
	return fmt.Sprintf("https://www.imdb.com/title/%s/", e.IMDbID)
}

// SeasonsText renders the requested seasons, or "All Seasons" when none were listed.
func (e DecisionEvent) SeasonsText() string {
	if len(e.Seasons) == 0 {
		return "All Seasons"
	}
	parts := make([]string, len(e.Seasons))
	for i, s := range e.Seasons {
		parts[i] = fmt.Sprint(s)
	}
	return strings.Join(parts, ", ")
}

// Heading is the event line used as a notification title, e.g. "TV Request Approved - 42".
func (e DecisionEvent) Heading() string {
	kind := "Movie"
	if e.MediaType == media.TypeTV {
		kind = "TV"
	}
	return fmt.Sprintf("%s Request %s - %d", kind, e.Status, e.RequestID)
}
