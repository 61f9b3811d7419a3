package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/habitkit/habitkit/internal/constants"
	"github.com/habitkit/habitkit/internal/logger"
	"github.com/habitkit/habitkit/internal/models"
)

// ErrInvalidFormat is returned when imported data does not have the
// expected shape. Imports fail loudly; silently accepting a corrupt
// payload would corrupt the whole store.
var ErrInvalidFormat = errors.New("invalid data format")

// LocalStore layers the application's three JSON blobs (habit list,
// flat completion list, settings) over a KV backend. Read failures and
// corrupt JSON degrade to empty values so startup never crashes on bad
// data; write failures propagate because durability cannot be
// guaranteed past them.
type LocalStore struct {
	kv KV
}

func NewLocalStore(kv KV) *LocalStore {
	return &LocalStore{kv: kv}
}

func (s *LocalStore) Close() error {
	return s.kv.Close()
}

// Ping verifies the underlying store answers reads. The blob accessors
// degrade read failures to empty values, so health checks come through
// here instead.
func (s *LocalStore) Ping(ctx context.Context) error {
	_, _, err := s.kv.Get(ctx, constants.HabitsKey)
	return err
}

// Habits returns the stored habit list, or an empty list on missing,
// unreadable, or corrupt data.
func (s *LocalStore) Habits(ctx context.Context) []models.Habit {
	raw, ok := s.readBlob(ctx, constants.HabitsKey)
	if !ok {
		return nil
	}
	var habits []models.Habit
	if err := json.Unmarshal(raw, &habits); err != nil {
		logger.Warn("Discarding corrupt local blob", "key", constants.HabitsKey, "error", err)
		return nil
	}
	return habits
}

func (s *LocalStore) SaveHabits(ctx context.Context, habits []models.Habit) error {
	return s.writeBlob(ctx, constants.HabitsKey, habits)
}

// SaveHabit upserts a single habit into the stored list.
func (s *LocalStore) SaveHabit(ctx context.Context, habit models.Habit) error {
	habits := s.Habits(ctx)
	replaced := false
	for i, h := range habits {
		if h.ID == habit.ID {
			habits[i] = habit
			replaced = true
			break
		}
	}
	if !replaced {
		habits = append(habits, habit)
	}
	return s.SaveHabits(ctx, habits)
}

// DeleteHabit removes a habit and cascades deletion of its completions.
func (s *LocalStore) DeleteHabit(ctx context.Context, habitID string) error {
	habits := s.Habits(ctx)
	kept := habits[:0]
	for _, h := range habits {
		if h.ID != habitID {
			kept = append(kept, h)
		}
	}
	if err := s.SaveHabits(ctx, kept); err != nil {
		return err
	}
	return s.DeleteCompletions(ctx, habitID)
}

// AllCompletions returns the flat completion list across all habits.
func (s *LocalStore) AllCompletions(ctx context.Context) []models.Completion {
	raw, ok := s.readBlob(ctx, constants.CompletionsKey)
	if !ok {
		return nil
	}
	var completions []models.Completion
	if err := json.Unmarshal(raw, &completions); err != nil {
		logger.Warn("Discarding corrupt local blob", "key", constants.CompletionsKey, "error", err)
		return nil
	}
	return completions
}

// Completions returns the completion log for one habit.
func (s *LocalStore) Completions(ctx context.Context, habitID string) []models.Completion {
	all := s.AllCompletions(ctx)
	out := make([]models.Completion, 0, len(all))
	for _, c := range all {
		if c.HabitID == habitID {
			out = append(out, c)
		}
	}
	return out
}

func (s *LocalStore) SaveCompletion(ctx context.Context, completion models.Completion) error {
	completions := append(s.AllCompletions(ctx), completion)
	return s.writeBlob(ctx, constants.CompletionsKey, completions)
}

// DeleteCompletions removes every completion belonging to a habit.
func (s *LocalStore) DeleteCompletions(ctx context.Context, habitID string) error {
	all := s.AllCompletions(ctx)
	kept := all[:0]
	for _, c := range all {
		if c.HabitID != habitID {
			kept = append(kept, c)
		}
	}
	return s.writeBlob(ctx, constants.CompletionsKey, kept)
}

// Settings returns stored settings merged over defaults.
func (s *LocalStore) Settings(ctx context.Context) models.Settings {
	settings := models.Settings{
		DarkMode:             constants.DefaultDarkMode,
		NotificationsEnabled: constants.DefaultNotificationsEnabled,
		ReminderTime:         constants.DefaultReminderTime,
	}
	raw, ok := s.readBlob(ctx, constants.SettingsKey)
	if !ok {
		return settings
	}
	if err := json.Unmarshal(raw, &settings); err != nil {
		logger.Warn("Discarding corrupt local blob", "key", constants.SettingsKey, "error", err)
	}
	return settings
}

func (s *LocalStore) SaveSettings(ctx context.Context, settings models.Settings) error {
	return s.writeBlob(ctx, constants.SettingsKey, settings)
}

// TouchLastSync records the time of the latest successful resync.
func (s *LocalStore) TouchLastSync(ctx context.Context, at time.Time) error {
	settings := s.Settings(ctx)
	settings.LastSyncTime = &at
	return s.SaveSettings(ctx, settings)
}

// ClearAll removes all three blobs.
func (s *LocalStore) ClearAll(ctx context.Context) error {
	for _, key := range []string{constants.HabitsKey, constants.CompletionsKey, constants.SettingsKey} {
		if err := s.kv.Remove(ctx, key); err != nil {
			return fmt.Errorf("failed to clear %s: %w", key, err)
		}
	}
	return nil
}

// exportEnvelope is the wire shape of an exported data set. Settings is
// a pointer so an import can tell an absent settings object from an
// empty one and leave stored settings alone.
type exportEnvelope struct {
	ExportDate  time.Time           `json:"export_date"`
	HabitList   []models.Habit      `json:"habits"`
	Completions []models.Completion `json:"completions"`
	Settings    *models.Settings    `json:"settings,omitempty"`
}

// Export serializes the full local state for external backup.
func (s *LocalStore) Export(ctx context.Context) (string, error) {
	settings := s.Settings(ctx)
	env := exportEnvelope{
		ExportDate:  time.Now(),
		HabitList:   s.Habits(ctx),
		Completions: s.AllCompletions(ctx),
		Settings:    &settings,
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize export: %w", err)
	}
	return string(data), nil
}

// Import replaces local state from an exported payload. A payload that
// does not parse, or whose records are missing required fields, is
// rejected with ErrInvalidFormat.
func (s *LocalStore) Import(ctx context.Context, data string) error {
	var env exportEnvelope
	if err := json.Unmarshal([]byte(data), &env); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if env.HabitList == nil && env.Completions == nil {
		return fmt.Errorf("%w: no habits or completions present", ErrInvalidFormat)
	}
	for _, h := range env.HabitList {
		if h.ID == "" || h.Title == "" {
			return fmt.Errorf("%w: habit missing id or title", ErrInvalidFormat)
		}
	}
	for _, c := range env.Completions {
		if c.ID == "" || c.HabitID == "" {
			return fmt.Errorf("%w: completion missing id or habit_id", ErrInvalidFormat)
		}
	}

	if env.HabitList != nil {
		if err := s.SaveHabits(ctx, env.HabitList); err != nil {
			return err
		}
	}
	if env.Completions != nil {
		if err := s.writeBlob(ctx, constants.CompletionsKey, env.Completions); err != nil {
			return err
		}
	}
	if env.Settings != nil {
		return s.SaveSettings(ctx, *env.Settings)
	}
	return nil
}

// readBlob returns the raw JSON stored at key. Missing keys and read
// errors report not-ok instead of propagating.
func (s *LocalStore) readBlob(ctx context.Context, key string) ([]byte, bool) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		logger.Warn("Failed to read local blob", "key", key, "error", err)
		return nil, false
	}
	if !ok || raw == "" {
		return nil, false
	}
	return []byte(raw), true
}

func (s *LocalStore) writeBlob(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return nil
}
