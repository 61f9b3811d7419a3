package reminder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/habitkit/habitkit/internal/storage"
)

func setupLogScheduler(t *testing.T) *LogScheduler {
	t.Helper()
	kv, err := storage.NewDiskvStore(filepath.Join(t.TempDir(), "store"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	return NewLogScheduler(kv)
}

func TestLogSchedulerReplaceById(t *testing.T) {
	s := setupLogScheduler(t)
	ctx := context.Background()

	first := Reminder{ID: 42, HabitID: "h1", Title: "Habit Reminder", At: time.Now().Add(time.Hour)}
	if err := s.Schedule(ctx, first); err != nil {
		t.Fatalf("failed to schedule: %v", err)
	}

	// Rescheduling the same id replaces, never duplicates
	second := first
	second.Body = "updated"
	if err := s.Schedule(ctx, second); err != nil {
		t.Fatalf("failed to reschedule: %v", err)
	}

	pending, err := s.Pending(ctx)
	if err != nil {
		t.Fatalf("failed to list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected one pending reminder, got %d", len(pending))
	}
	if pending[0].Body != "updated" {
		t.Errorf("expected replacement to win, got %q", pending[0].Body)
	}
}

func TestLogSchedulerCancel(t *testing.T) {
	s := setupLogScheduler(t)
	ctx := context.Background()

	if err := s.Schedule(ctx, Reminder{ID: 1, HabitID: "h1", At: time.Now()}); err != nil {
		t.Fatalf("failed to schedule: %v", err)
	}
	if err := s.Schedule(ctx, Reminder{ID: 2, HabitID: "h2", At: time.Now()}); err != nil {
		t.Fatalf("failed to schedule: %v", err)
	}

	if err := s.Cancel(ctx, 1); err != nil {
		t.Fatalf("failed to cancel: %v", err)
	}
	// Cancelling an unknown id is harmless
	if err := s.Cancel(ctx, 99); err != nil {
		t.Fatalf("cancel of unknown id should not fail: %v", err)
	}

	pending, err := s.Pending(ctx)
	if err != nil {
		t.Fatalf("failed to list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != 2 {
		t.Errorf("expected only reminder 2 to remain, got %+v", pending)
	}
}
