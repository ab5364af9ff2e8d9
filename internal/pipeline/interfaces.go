package pipeline

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

import (
	"context"

	"github.com/overfiltrr/overfiltrr/internal/media"
	"github.com/overfiltrr/overfiltrr/internal/notification"
	"github.com/overfiltrr/overfiltrr/internal/overseerr"
)

// MetadataClient fetches normalized metadata for a title.
type MetadataClient interface {
	FetchDetails(ctx context.Context, mediaType media.Type, tmdbID int) (*media.Details, error)
}

// RequestClient mutates requests on the request platform.
type RequestClient interface {
	UpdateRequest(ctx context.Context, requestID int, update overseerr.RequestUpdate) error
	ApproveRequest(ctx context.Context, requestID int) error
}

// RequestStatusReader is implemented by request clients that can report a
// request's status after it was applied. It is optional.
type RequestStatusReader interface {
	GetRequest(ctx context.Context, requestID int) (*overseerr.MediaRequest, error)
}

// Notifier receives a summary of every completed decision. Implementations
// must not block the caller.
type Notifier interface {
	NotifyDecision(ctx context.Context, event notification.DecisionEvent)
}
