package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/habitkit/habitkit/internal/backup"
	"github.com/habitkit/habitkit/internal/config"
	"github.com/habitkit/habitkit/internal/habit"
	"github.com/habitkit/habitkit/internal/logger"
	"github.com/habitkit/habitkit/internal/models"
	"github.com/habitkit/habitkit/internal/network"
	"github.com/habitkit/habitkit/internal/reminder"
	"github.com/habitkit/habitkit/internal/storage"
	"github.com/habitkit/habitkit/internal/syncer"
)

type Context struct {
	Config    *config.Config
	Store     *storage.LocalStore
	Manager   *habit.Manager
	Sync      *syncer.Coordinator
	Oracle    network.Oracle
	Backup    *backup.Manager
	Scheduler reminder.Scheduler
}

// Bootstrap loads state into the manager before a command runs. Most
// commands call this first, the way the TUI does once at startup.
func (c *Context) Bootstrap(ctx context.Context) {
	c.Manager.Bootstrap(ctx)
}

// PerformAutomaticBackup snapshots the store and silently handles errors
func (c *Context) PerformAutomaticBackup(ctx context.Context) {
	if _, err := c.Backup.Create(ctx); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ResolveHabit finds a habit by id or by case-insensitive title.
func (c *Context) ResolveHabit(ref string) (models.Habit, error) {
	habits := c.Manager.Habits()
	for _, h := range habits {
		if h.ID == ref {
			return h, nil
		}
	}
	var matches []models.Habit
	for _, h := range habits {
		if strings.EqualFold(h.Title, ref) {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 0:
		return models.Habit{}, fmt.Errorf("habit %q not found", ref)
	case 1:
		return matches[0], nil
	default:
		return models.Habit{}, fmt.Errorf("habit title %q is ambiguous, use the id", ref)
	}
}
