// Package remote defines the backend boundary the sync coordinator
// talks to. Every error returned from a Backend is treated upstream as
// "remote unavailable": the coordinator logs it and degrades to the
// local record, it never propagates to the caller.
package remote

import (
	"context"
	"errors"

	"github.com/habitkit/habitkit/internal/models"
)

// ErrUnavailable wraps transport and server failures.
var ErrUnavailable = errors.New("remote backend unavailable")

// Backend offers table-style operations over habits and completions.
// Insert and update return the remote-persisted record, which becomes
// authoritative because the server may normalize fields.
type Backend interface {
	InsertHabit(ctx context.Context, habit models.Habit) (models.Habit, error)
	UpdateHabit(ctx context.Context, habit models.Habit) (models.Habit, error)
	DeleteHabit(ctx context.Context, id string) error
	SelectActiveHabits(ctx context.Context) ([]models.Habit, error)

	InsertCompletion(ctx context.Context, completion models.Completion) (models.Completion, error)
	DeleteCompletions(ctx context.Context, habitID string) error
}
