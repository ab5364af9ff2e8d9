package tasks

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/overfiltrr/overfiltrr/internal/scheduler"
)

const LockoutCleanupTaskID = "lockout-cleanup"

// LockoutCleaner is satisfied by *ratelimit.AuthLimiter.
type LockoutCleaner interface {
	Cleanup() int
}

// RegisterLockoutCleanupTask forgets expired failed-token lockouts every ten minutes.
func RegisterLockoutCleanupTask(sched *scheduler.Scheduler, limiter LockoutCleaner, logger zerolog.Logger) error {
	log := logger.With().Str("task", LockoutCleanupTaskID).Logger()
	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          LockoutCleanupTaskID,
		Name:        "Lockout Cleanup",
		Description: "Forgets clients whose failed-token lockout has expired",
		Cron:        "*/10 * * * *",
		Func: func(ctx context.Context) error {
			if removed := limiter.Cleanup(); removed > 0 {
				log.Debug().Int("removed", removed).Msg("Cleared expired lockouts")
			}
			return nil
		},
	})
}
