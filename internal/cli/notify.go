package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/habitkit/habitkit/internal/logger"
	"github.com/habitkit/habitkit/internal/reminder"
	"github.com/habitkit/habitkit/internal/utils"
)

// NotifyCmd delivers due reminders through the tray app. It is invoked
// periodically by a cron entry or the tray itself, not by hand.
type NotifyCmd struct {
	DryRun bool `help:"Print notifications to stdout instead of sending them."`
}

func (c *NotifyCmd) Run(appCtx *Context) error {
	ctx := context.Background()

	settings := appCtx.Store.Settings(ctx)
	if !settings.NotificationsEnabled {
		if c.DryRun {
			fmt.Println("Notifications are disabled in settings.")
		}
		return nil
	}

	pending, err := appCtx.Scheduler.Pending(ctx)
	if err != nil {
		return fmt.Errorf("failed to read pending reminders: %w", err)
	}

	now := time.Now()
	notifier := reminder.NewNotifier()

	for _, r := range pending {
		if r.At.After(now) {
			continue
		}

		if c.DryRun {
			fmt.Printf("[%s] %s: %s\n", r.At.Format("15:04"), r.Title, r.Body)
		} else if err := notifier.Notify(r.Title, r.Body); err != nil {
			logger.Warn("Failed to deliver notification", "reminder", r.ID, "error", err)
			continue
		}

		if r.Daily {
			// Roll the schedule forward to the next day at the same time
			r.At = utils.NextOccurrence(now, r.At.Hour(), r.At.Minute())
			if err := appCtx.Scheduler.Schedule(ctx, r); err != nil {
				logger.Warn("Failed to reschedule reminder", "reminder", r.ID, "error", err)
			}
		} else if err := appCtx.Scheduler.Cancel(ctx, r.ID); err != nil {
			logger.Warn("Failed to clear one-shot reminder", "reminder", r.ID, "error", err)
		}
	}
	return nil
}
