package remote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/habitkit/habitkit/internal/models"
)

// PostgresBackend talks directly to a shared habits database. It serves
// setups where the "remote" is a household Postgres instance rather
// than an HTTP service.
type PostgresBackend struct {
	db *sql.DB
}

// NewPostgresBackend opens a connection pool for the given DSN.
func NewPostgresBackend(connStr string) (*PostgresBackend, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &PostgresBackend{db: db}, nil
}

// Init creates the remote schema if it does not exist yet.
func (b *PostgresBackend) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS habits (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			icon TEXT NOT NULL DEFAULT '',
			color TEXT NOT NULL DEFAULT '',
			reminder_time TEXT NOT NULL DEFAULT '',
			reminder_enabled BOOLEAN NOT NULL DEFAULT FALSE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			streak_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS habit_completions (
			id TEXT PRIMARY KEY,
			habit_id TEXT NOT NULL REFERENCES habits(id) ON DELETE CASCADE,
			completed_at TIMESTAMPTZ NOT NULL,
			notes TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_completions_habit ON habit_completions(habit_id)`,
	}
	for _, stmt := range stmts {
		if _, err := b.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	return nil
}

func (b *PostgresBackend) Close() error {
	return b.db.Close()
}

func (b *PostgresBackend) InsertHabit(ctx context.Context, habit models.Habit) (models.Habit, error) {
	row := b.db.QueryRowContext(ctx,
		`INSERT INTO habits (id, title, description, icon, color, reminder_time, reminder_enabled, is_active, streak_count, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, title, description, icon, color, reminder_time, reminder_enabled, is_active, streak_count, created_at, updated_at`,
		habit.ID, habit.Title, habit.Description, habit.Icon, habit.Color,
		habit.ReminderTime, habit.ReminderEnabled, habit.IsActive, habit.StreakCount,
		habit.CreatedAt, habit.UpdatedAt)
	return scanHabit(row)
}

func (b *PostgresBackend) UpdateHabit(ctx context.Context, habit models.Habit) (models.Habit, error) {
	row := b.db.QueryRowContext(ctx,
		`UPDATE habits SET title = $2, description = $3, icon = $4, color = $5,
		        reminder_time = $6, reminder_enabled = $7, is_active = $8,
		        streak_count = $9, updated_at = $10
		 WHERE id = $1
		 RETURNING id, title, description, icon, color, reminder_time, reminder_enabled, is_active, streak_count, created_at, updated_at`,
		habit.ID, habit.Title, habit.Description, habit.Icon, habit.Color,
		habit.ReminderTime, habit.ReminderEnabled, habit.IsActive, habit.StreakCount,
		habit.UpdatedAt)
	return scanHabit(row)
}

func (b *PostgresBackend) DeleteHabit(ctx context.Context, id string) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM habits WHERE id = $1`, id); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (b *PostgresBackend) SelectActiveHabits(ctx context.Context) ([]models.Habit, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT id, title, description, icon, color, reminder_time, reminder_enabled, is_active, streak_count, created_at, updated_at
		 FROM habits WHERE is_active ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		var h models.Habit
		if err := rows.Scan(&h.ID, &h.Title, &h.Description, &h.Icon, &h.Color,
			&h.ReminderTime, &h.ReminderEnabled, &h.IsActive, &h.StreakCount,
			&h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return habits, nil
}

func (b *PostgresBackend) InsertCompletion(ctx context.Context, completion models.Completion) (models.Completion, error) {
	row := b.db.QueryRowContext(ctx,
		`INSERT INTO habit_completions (id, habit_id, completed_at, notes)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, habit_id, completed_at, notes`,
		completion.ID, completion.HabitID, completion.CompletedAt, completion.Notes)

	var c models.Completion
	if err := row.Scan(&c.ID, &c.HabitID, &c.CompletedAt, &c.Notes); err != nil {
		return models.Completion{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return c, nil
}

func (b *PostgresBackend) DeleteCompletions(ctx context.Context, habitID string) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM habit_completions WHERE habit_id = $1`, habitID); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func scanHabit(row *sql.Row) (models.Habit, error) {
	var h models.Habit
	err := row.Scan(&h.ID, &h.Title, &h.Description, &h.Icon, &h.Color,
		&h.ReminderTime, &h.ReminderEnabled, &h.IsActive, &h.StreakCount,
		&h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Habit{}, fmt.Errorf("%w: habit not found", ErrUnavailable)
		}
		return models.Habit{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return h, nil
}
