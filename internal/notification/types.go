package notification

import (
	"time"

	"github.com/overfiltrr/overfiltrr/internal/notification/types"
)

// Re-export types from the types sub-package
type (
	NotifierType  = types.NotifierType
	Notifier      = types.Notifier
	DecisionEvent = types.DecisionEvent
)

// Re-export constants
const (
	NotifierNotifiarr = types.NotifierNotifiarr
	NotifierDiscord   = types.NotifierDiscord
	NotifierWebhook   = types.NotifierWebhook

	StatusApproved        = types.StatusApproved
	StatusPendingApproval = types.StatusPendingApproval
	StatusDryRun          = types.StatusDryRun
	StatusFailed          = types.StatusFailed
)

// TestResult contains the result of testing one notifier
type TestResult struct {
	Name    string       `json:"name"`
	Type    NotifierType `json:"type"`
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
}

// Status tracks notifier failures for backoff logic
type Status struct {
	Name            string    `json:"name"`
	EscalationLevel int       `json:"escalationLevel"`
	DisabledTill    time.Time `json:"disabledTill"`
}
