package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/overfiltrr/overfiltrr/internal/health"
	"github.com/overfiltrr/overfiltrr/internal/notification"
	"github.com/overfiltrr/overfiltrr/internal/scheduler"
)

const NotifierStatusTaskID = "notifier-status"

// NotifierStatusSource is satisfied by *notification.Service.
type NotifierStatusSource interface {
	Notifiers() []notification.Notifier
	Statuses() []notification.Status
}

// SyncNotifierHealth mirrors notifier backoff state into the health service.
func SyncNotifierHealth(src NotifierStatusSource, hs *health.Service, now time.Time) {
	backingOff := make(map[string]notification.Status)
	for _, st := range src.Statuses() {
		backingOff[st.Name] = st
	}

	for _, n := range src.Notifiers() {
		st, failing := backingOff[n.Name()]
		switch {
		case !failing:
			hs.ClearStatus(health.CategoryNotifications, n.Name())
		case st.DisabledTill.After(now):
			hs.SetWarning(health.CategoryNotifications, n.Name(),
				fmt.Sprintf("delivery failed %d time(s), paused until %s", st.EscalationLevel, st.DisabledTill.Format(time.RFC3339)))
		default:
			hs.SetWarning(health.CategoryNotifications, n.Name(),
				fmt.Sprintf("delivery failed %d time(s)", st.EscalationLevel))
		}
	}
}

// RegisterNotifierStatusTask registers every notifier with the health service
// and refreshes their state every five minutes.
func RegisterNotifierStatusTask(sched *scheduler.Scheduler, src NotifierStatusSource, hs *health.Service) error {
	for _, n := range src.Notifiers() {
		hs.RegisterItem(health.CategoryNotifications, n.Name(), string(n.Type()))
	}

	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          NotifierStatusTaskID,
		Name:        "Notifier Status",
		Description: "Reports notifiers that are backing off after delivery failures",
		Cron:        "*/5 * * * *",
		Func: func(ctx context.Context) error {
			SyncNotifierHealth(src, hs, time.Now())
			return nil
		},
	})
}
