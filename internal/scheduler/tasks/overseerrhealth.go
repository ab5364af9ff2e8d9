package tasks

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/overfiltrr/overfiltrr/internal/health"
	"github.com/overfiltrr/overfiltrr/internal/overseerr"
	"github.com/overfiltrr/overfiltrr/internal/scheduler"
)

const (
	OverseerrHealthTaskID = "overseerr-health"

	// OverseerrHealthID is the health item tracking the Overseerr API.
	OverseerrHealthID = "overseerr"
)

// StatusChecker is satisfied by *overseerr.Client.
type StatusChecker interface {
	Status(ctx context.Context) (*overseerr.ServerStatus, error)
}

// CheckOverseerr probes the Overseerr API once and records the result.
func CheckOverseerr(ctx context.Context, client StatusChecker, hs *health.Service, logger zerolog.Logger) error {
	status, err := client.Status(ctx)
	if err != nil {
		hs.SetError(health.CategoryUpstream, OverseerrHealthID, err.Error())
		return fmt.Errorf("overseerr unreachable: %w", err)
	}

	hs.ClearStatus(health.CategoryUpstream, OverseerrHealthID)
	logger.Debug().Str("version", status.Version).Msg("Overseerr reachable")
	if status.UpdateAvailable {
		logger.Info().Str("version", status.Version).Msg("Overseerr update available")
	}
	return nil
}

// RegisterOverseerrHealthTask checks Overseerr reachability every 15 minutes and on startup.
func RegisterOverseerrHealthTask(sched *scheduler.Scheduler, client StatusChecker, hs *health.Service, logger zerolog.Logger) error {
	hs.RegisterItem(health.CategoryUpstream, OverseerrHealthID, "Overseerr")

	log := logger.With().Str("task", OverseerrHealthTaskID).Logger()
	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          OverseerrHealthTaskID,
		Name:        "Overseerr Health",
		Description: "Checks that the Overseerr API is reachable with the configured key",
		Cron:        "*/15 * * * *",
		RunOnStart:  true,
		Func: func(ctx context.Context) error {
			return CheckOverseerr(ctx, client, hs, log)
		},
	})
}
