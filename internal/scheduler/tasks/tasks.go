// Package tasks holds overfiltrr's scheduled maintenance jobs.
package tasks

import (
	"github.com/rs/zerolog"

	"github.com/overfiltrr/overfiltrr/internal/health"
	"github.com/overfiltrr/overfiltrr/internal/scheduler"
)

// Deps are the services the maintenance tasks act on. Nil fields skip their task.
type Deps struct {
	Ledger    Pruner
	Overseerr StatusChecker
	Notifiers NotifierStatusSource
	Lockouts  LockoutCleaner
	Health    *health.Service
}

// RegisterAll registers every task whose dependencies are present.
func RegisterAll(sched *scheduler.Scheduler, deps Deps, logger zerolog.Logger) error {
	if deps.Ledger != nil {
		if err := RegisterDedupPruneTask(sched, deps.Ledger, logger); err != nil {
			return err
		}
	}
	if deps.Lockouts != nil {
		if err := RegisterLockoutCleanupTask(sched, deps.Lockouts, logger); err != nil {
			return err
		}
	}
	if deps.Health == nil {
		return nil
	}
	if deps.Overseerr != nil {
		if err := RegisterOverseerrHealthTask(sched, deps.Overseerr, deps.Health, logger); err != nil {
			return err
		}
	}
	if deps.Notifiers != nil {
		if err := RegisterNotifierStatusTask(sched, deps.Notifiers, deps.Health); err != nil {
			return err
		}
	}
	return nil
}
