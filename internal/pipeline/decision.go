package pipeline

import (
	"time"

	"github.com/overfiltrr/overfiltrr/internal/category"
	"github.com/overfiltrr/overfiltrr/internal/media"
	"github.com/overfiltrr/overfiltrr/internal/overseerr"
	"github.com/overfiltrr/overfiltrr/internal/quality"
)

// Event is one inbound webhook delivery.
type Event struct {
	// Token is the credential presented by the caller, "" when absent.
	Token      string
	Body       []byte
	ReceivedAt time.Time
}

// Decision is where a request goes and with which profile.
type Decision struct {
	Category      string          `json:"category"`
	Fallback      bool            `json:"fallback"`
	ProfileID     int             `json:"profileId"`
	ProfileSource quality.Source  `json:"profileSource"`
	Rule          *quality.Rule   `json:"rule,omitempty"`
	RootFolder    string          `json:"rootFolder"`
	ServerID      int             `json:"serverId"`
	AppName       string          `json:"appName,omitempty"`
	Seasons       []int           `json:"seasons,omitempty"`
	Approve       bool            `json:"approve"`
	Match         category.Result `json:"match"`
}

// Update builds the request update body for this decision.
func (d *Decision) Update(mt media.Type) overseerr.RequestUpdate {
	u := overseerr.RequestUpdate{
		MediaType:  mt.String(),
		RootFolder: d.RootFolder,
		ServerID:   d.ServerID,
		ProfileID:  d.ProfileID,
	}
	if mt == media.TypeTV {
		u.Seasons = d.Seasons
	}
	return u
}

// TargetName is the destination app name used in logs.
func (d *Decision) TargetName() string {
	if d.AppName != "" {
		return d.AppName
	}
	return "Unknown App"
}

// Result summarizes one pipeline run.
type Result struct {
	ID               string        `json:"id"`
	State            State         `json:"state"`
	NotificationType string        `json:"notificationType,omitempty"`
	RequestID        int           `json:"requestId,omitempty"`
	MediaType        media.Type    `json:"mediaType,omitempty"`
	TMDbID           int           `json:"tmdbId,omitempty"`
	Title            string        `json:"title,omitempty"`
	Username         string        `json:"username,omitempty"`
	Decision         *Decision     `json:"decision,omitempty"`
	DryRun           bool          `json:"dryRun"`
	Error            string        `json:"error,omitempty"`
	// FailedAt is the last step reached before an error.
	FailedAt         State         `json:"failedAt,omitempty"`
	ReceivedAt       time.Time     `json:"receivedAt"`
	Duration         time.Duration `json:"duration"`
}

// Preview is the decision the engine would make for a title, with the
// attributes it was made from.
type Preview struct {
	Title      string           `json:"title"`
	Attributes media.Attributes `json:"attributes"`
	Ratings    []string         `json:"ratings,omitempty"`
	Decision   *Decision        `json:"decision"`
}
