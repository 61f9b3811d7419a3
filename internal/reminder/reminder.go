// Package reminder maps habit reminder fields onto scheduled local
// notifications. Actual OS-level scheduling sits behind the Scheduler
// interface; this package owns the derivation of schedule identifiers
// and firing times.
package reminder

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/habitkit/habitkit/internal/logger"
	"github.com/habitkit/habitkit/internal/models"
	"github.com/habitkit/habitkit/internal/utils"
)

// Reminder is one scheduled notification request.
type Reminder struct {
	ID      uint32    `json:"id"`
	HabitID string    `json:"habit_id"`
	Title   string    `json:"title"`
	Body    string    `json:"body"`
	At      time.Time `json:"at"`
	Daily   bool      `json:"daily"`
}

// Scheduler is the boundary to the OS notification layer.
type Scheduler interface {
	Schedule(ctx context.Context, r Reminder) error
	Cancel(ctx context.Context, id uint32) error
	Pending(ctx context.Context) ([]Reminder, error)
}

// ScheduleID derives a stable numeric schedule identifier from a habit
// id. The same habit always maps to the same identifier across
// restarts, so re-scheduling replaces instead of duplicating.
func ScheduleID(habitID string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(habitID))
	return h.Sum32()
}

// Mapper drives the scheduler from habit state changes.
type Mapper struct {
	scheduler Scheduler
}

func NewMapper(scheduler Scheduler) *Mapper {
	return &Mapper{scheduler: scheduler}
}

// Apply reconciles the schedule for a habit after create or update. Any
// existing schedule is cancelled first, which covers the disable and
// time-change paths without orphaning the old reminder. Validation
// happens at the caller; a malformed time string here is a no-op.
func (m *Mapper) Apply(ctx context.Context, habit models.Habit) {
	id := ScheduleID(habit.ID)
	if err := m.scheduler.Cancel(ctx, id); err != nil {
		logger.Warn("Failed to cancel reminder", "habit", habit.ID, "error", err)
	}

	if !habit.ReminderEnabled || habit.ReminderTime == "" {
		return
	}

	hour, minute, err := utils.ParseClock(habit.ReminderTime)
	if err != nil {
		logger.Warn("Skipping reminder with malformed time", "habit", habit.ID, "time", habit.ReminderTime)
		return
	}

	r := Reminder{
		ID:      id,
		HabitID: habit.ID,
		Title:   "Habit Reminder",
		Body:    fmt.Sprintf("Time to complete: %s", habit.Title),
		At:      utils.NextOccurrence(time.Now(), hour, minute),
		Daily:   true,
	}
	if err := m.scheduler.Schedule(ctx, r); err != nil {
		logger.Warn("Failed to schedule reminder", "habit", habit.ID, "error", err)
	}
}

// Remove cancels the schedule for a deleted habit.
func (m *Mapper) Remove(ctx context.Context, habitID string) {
	if err := m.scheduler.Cancel(ctx, ScheduleID(habitID)); err != nil {
		logger.Warn("Failed to cancel reminder", "habit", habitID, "error", err)
	}
}

// Encourage emits a one-shot milestone notification when the streak
// hits a celebrated length. Non-milestone streaks are silent.
func (m *Mapper) Encourage(ctx context.Context, habit models.Habit, streak int) {
	msg := MilestoneMessage(habit.Title, streak)
	if msg == "" {
		return
	}

	r := Reminder{
		ID:      ScheduleID(habit.ID + "#milestone"),
		HabitID: habit.ID,
		Title:   "Habit Streak Achievement!",
		Body:    msg,
		At:      time.Now().Add(2 * time.Second),
	}
	if err := m.scheduler.Schedule(ctx, r); err != nil {
		logger.Warn("Failed to schedule milestone notification", "habit", habit.ID, "error", err)
	}
}

// MilestoneMessage returns the encouragement text for a streak length,
// or "" when the length is not a milestone.
func MilestoneMessage(habitTitle string, streak int) string {
	switch {
	case streak == 1:
		return fmt.Sprintf("Great start! You've completed %s for 1 day.", habitTitle)
	case streak == 7:
		return fmt.Sprintf("Amazing! You've kept up with %s for a whole week!", habitTitle)
	case streak == 30:
		return fmt.Sprintf("Incredible! 30 days of %s! You're building a strong habit!", habitTitle)
	case streak > 0 && streak%10 == 0:
		return fmt.Sprintf("Fantastic! %d days of %s! Keep it going!", streak, habitTitle)
	default:
		return ""
	}
}
