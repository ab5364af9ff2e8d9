package tasks

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/overfiltrr/overfiltrr/internal/scheduler"
)

const DedupPruneTaskID = "dedup-prune"

// Pruner is satisfied by *dedup.Ledger.
type Pruner interface {
	Prune() int
	Len() int
}

// RegisterDedupPruneTask drops expired webhook delivery keys every minute.
func RegisterDedupPruneTask(sched *scheduler.Scheduler, ledger Pruner, logger zerolog.Logger) error {
	log := logger.With().Str("task", DedupPruneTaskID).Logger()
	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          DedupPruneTaskID,
		Name:        "Dedup Prune",
		Description: "Removes expired entries from the duplicate webhook ledger",
		Cron:        "* * * * *",
		Func: func(ctx context.Context) error {
			if removed := ledger.Prune(); removed > 0 {
				log.Debug().Int("removed", removed).Int("remaining", ledger.Len()).Msg("Pruned dedup ledger")
			}
			return nil
		},
	})
}
