package models

import (
	"fmt"
	"time"

	"github.com/habitkit/habitkit/internal/constants"
)

// Validate checks caller-supplied habit fields. The sync engine assumes
// input has passed this check.
func (h *Habit) Validate() error {
	if h.Title == "" {
		return fmt.Errorf("habit title cannot be empty")
	}

	if h.ReminderEnabled {
		if h.ReminderTime == "" {
			return fmt.Errorf("reminder time is required when reminders are enabled")
		}
		if _, err := time.Parse(constants.TimeFormat, h.ReminderTime); err != nil {
			return fmt.Errorf("invalid reminder time format (expected HH:MM): %w", err)
		}
	} else if h.ReminderTime != "" {
		if _, err := time.Parse(constants.TimeFormat, h.ReminderTime); err != nil {
			return fmt.Errorf("invalid reminder time format (expected HH:MM): %w", err)
		}
	}

	return nil
}

// Validate checks caller-supplied completion fields.
func (c *Completion) Validate() error {
	if c.HabitID == "" {
		return fmt.Errorf("completion must reference a habit")
	}
	if c.CompletedAt.IsZero() {
		return fmt.Errorf("completion timestamp cannot be zero")
	}
	return nil
}
