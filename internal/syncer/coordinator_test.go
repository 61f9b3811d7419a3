package syncer

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/habitkit/habitkit/internal/models"
	"github.com/habitkit/habitkit/internal/network"
	"github.com/habitkit/habitkit/internal/remote"
	"github.com/habitkit/habitkit/internal/storage"
)

// fakeBackend is a scriptable in-memory remote. When failing is set,
// every call returns a transport-style error.
type fakeBackend struct {
	failing     bool
	habits      map[string]models.Habit
	completions []models.Completion
	inserts     int
	normalizeID string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{habits: make(map[string]models.Habit)}
}

func (f *fakeBackend) err() error {
	return fmt.Errorf("%w: connection refused", remote.ErrUnavailable)
}

func (f *fakeBackend) InsertHabit(ctx context.Context, habit models.Habit) (models.Habit, error) {
	if f.failing {
		return models.Habit{}, f.err()
	}
	f.inserts++
	if f.normalizeID != "" {
		habit.ID = f.normalizeID
	}
	f.habits[habit.ID] = habit
	return habit, nil
}

func (f *fakeBackend) UpdateHabit(ctx context.Context, habit models.Habit) (models.Habit, error) {
	if f.failing {
		return models.Habit{}, f.err()
	}
	f.habits[habit.ID] = habit
	return habit, nil
}

func (f *fakeBackend) DeleteHabit(ctx context.Context, id string) error {
	if f.failing {
		return f.err()
	}
	delete(f.habits, id)
	return nil
}

func (f *fakeBackend) SelectActiveHabits(ctx context.Context) ([]models.Habit, error) {
	if f.failing {
		return nil, f.err()
	}
	var out []models.Habit
	for _, h := range f.habits {
		if h.IsActive {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeBackend) InsertCompletion(ctx context.Context, completion models.Completion) (models.Completion, error) {
	if f.failing {
		return models.Completion{}, f.err()
	}
	f.completions = append(f.completions, completion)
	return completion, nil
}

func (f *fakeBackend) DeleteCompletions(ctx context.Context, habitID string) error {
	if f.failing {
		return f.err()
	}
	kept := f.completions[:0]
	for _, c := range f.completions {
		if c.HabitID != habitID {
			kept = append(kept, c)
		}
	}
	f.completions = kept
	return nil
}

func setupCoordinator(t *testing.T, online bool) (*Coordinator, *fakeBackend, *network.Static, *storage.LocalStore) {
	t.Helper()
	kv, err := storage.NewDiskvStore(filepath.Join(t.TempDir(), "store"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { kv.Close() })

	store := storage.NewLocalStore(kv)
	backend := newFakeBackend()
	oracle := network.NewStatic(online)
	return New(store, backend, oracle), backend, oracle, store
}

func newHabit(title string) models.Habit {
	now := time.Now()
	return models.Habit{
		ID:        uuid.New().String(),
		Title:     title,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateHabitOnlineUsesRemoteRecord(t *testing.T) {
	coord, backend, _, store := setupCoordinator(t, true)
	backend.normalizeID = "remote-id"
	ctx := context.Background()

	result, err := coord.CreateHabit(ctx, newHabit("Read"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ID != "remote-id" {
		t.Errorf("expected remote-assigned id to win, got %q", result.ID)
	}

	habits := store.Habits(ctx)
	if len(habits) != 1 || habits[0].ID != "remote-id" {
		t.Errorf("expected remote record persisted locally, got %+v", habits)
	}
}

func TestCreateHabitRemoteFailureDegradesSilently(t *testing.T) {
	coord, backend, _, store := setupCoordinator(t, true)
	backend.failing = true
	ctx := context.Background()

	habit := newHabit("Read")
	result, err := coord.CreateHabit(ctx, habit)
	if err != nil {
		t.Fatalf("remote failure must not surface to the caller, got %v", err)
	}
	if result.ID != habit.ID {
		t.Errorf("expected local record on remote failure, got %q", result.ID)
	}
	if len(store.Habits(ctx)) != 1 {
		t.Error("expected habit persisted locally despite remote failure")
	}
}

func TestCreateHabitOfflineSkipsRemote(t *testing.T) {
	coord, backend, _, store := setupCoordinator(t, false)
	ctx := context.Background()

	habit := newHabit("Read")
	if _, err := coord.CreateHabit(ctx, habit); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if backend.inserts != 0 {
		t.Errorf("expected no remote attempt while offline, got %d", backend.inserts)
	}
	if len(store.Habits(ctx)) != 1 {
		t.Error("expected habit persisted locally while offline")
	}
}

func TestDeleteHabitCascadesLocally(t *testing.T) {
	coord, _, _, store := setupCoordinator(t, true)
	ctx := context.Background()

	habit, err := coord.CreateHabit(ctx, newHabit("Run"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := coord.AddCompletion(ctx, models.Completion{
		ID: uuid.New().String(), HabitID: habit.ID, CompletedAt: time.Now(),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := coord.DeleteHabit(ctx, habit.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.Habits(ctx)) != 0 {
		t.Error("expected habit removed locally")
	}
	if len(store.Completions(ctx, habit.ID)) != 0 {
		t.Error("expected completions cascaded locally")
	}
}

func TestResyncReplacesLocalSnapshot(t *testing.T) {
	coord, backend, _, store := setupCoordinator(t, true)
	ctx := context.Background()

	remoteHabit := newHabit("From server")
	backend.habits[remoteHabit.ID] = remoteHabit

	staleLocal := newHabit("Stale")
	if err := store.SaveHabit(ctx, staleLocal); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	habits, synced := coord.Resync(ctx)
	if !synced {
		t.Fatal("expected resync to run while online")
	}
	if len(habits) != 1 || habits[0].ID != remoteHabit.ID {
		t.Errorf("expected remote snapshot to replace local state, got %+v", habits)
	}

	settings := store.Settings(ctx)
	if settings.LastSyncTime == nil {
		t.Error("expected last sync time recorded")
	}
}

func TestResyncDropsOfflineCreatedHabit(t *testing.T) {
	// Documented replace-not-merge behavior: a habit created while
	// offline and absent remotely disappears on the next bulk resync.
	coord, backend, oracle, store := setupCoordinator(t, false)
	ctx := context.Background()

	offlineHabit, err := coord.CreateHabit(ctx, newHabit("Offline only"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.Habits(ctx)) != 1 {
		t.Fatal("expected offline habit stored locally")
	}

	remoteHabit := newHabit("Server side")
	backend.habits[remoteHabit.ID] = remoteHabit

	oracle.SetOnline(true)
	habits, synced := coord.Resync(ctx)
	if !synced {
		t.Fatal("expected resync to run")
	}
	for _, h := range habits {
		if h.ID == offlineHabit.ID {
			t.Error("expected offline-created habit to be dropped by replace-style resync")
		}
	}
	if len(habits) != 1 || habits[0].ID != remoteHabit.ID {
		t.Errorf("expected only the server habit to survive, got %+v", habits)
	}
}

// countingKV tallies writes so tests can see when the store is touched.
type countingKV struct {
	storage.KV
	sets int
}

func (c *countingKV) Set(ctx context.Context, key, value string) error {
	c.sets++
	return c.KV.Set(ctx, key, value)
}

func TestResyncSkipsWriteWhenUnchanged(t *testing.T) {
	kv, err := storage.NewDiskvStore(filepath.Join(t.TempDir(), "store"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	counting := &countingKV{KV: kv}
	store := storage.NewLocalStore(counting)
	backend := newFakeBackend()
	coord := New(store, backend, network.NewStatic(true))
	ctx := context.Background()

	remoteHabit := newHabit("Server side")
	backend.habits[remoteHabit.ID] = remoteHabit

	if _, synced := coord.Resync(ctx); !synced {
		t.Fatal("expected first resync to run")
	}
	before := counting.sets

	habits, synced := coord.Resync(ctx)
	if !synced {
		t.Fatal("expected second resync to run")
	}
	if len(habits) != 1 || habits[0].ID != remoteHabit.ID {
		t.Errorf("expected the unchanged snapshot back, got %+v", habits)
	}
	if counting.sets != before {
		t.Errorf("expected no writes for an identical snapshot, got %d extra", counting.sets-before)
	}
}

func TestResyncRemoteFailureKeepsLocal(t *testing.T) {
	coord, backend, _, store := setupCoordinator(t, true)
	ctx := context.Background()

	local := newHabit("Keep me")
	if err := store.SaveHabit(ctx, local); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	backend.failing = true
	habits, synced := coord.Resync(ctx)
	if synced {
		t.Error("expected synced=false on remote failure")
	}
	if len(habits) != 1 || habits[0].ID != local.ID {
		t.Errorf("expected local state untouched, got %+v", habits)
	}
}

func TestResyncOfflineIsNoop(t *testing.T) {
	coord, _, _, store := setupCoordinator(t, false)
	ctx := context.Background()

	local := newHabit("Keep me")
	if err := store.SaveHabit(ctx, local); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	habits, synced := coord.Resync(ctx)
	if synced {
		t.Error("expected no sync while offline")
	}
	if len(habits) != 1 {
		t.Errorf("expected local state returned, got %+v", habits)
	}
}

func TestWatchResyncsOnReconnect(t *testing.T) {
	coord, backend, oracle, _ := setupCoordinator(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	remoteHabit := newHabit("Server side")
	backend.habits[remoteHabit.ID] = remoteHabit

	applied := make(chan []models.Habit, 1)
	go coord.Watch(ctx, func(habits []models.Habit) {
		applied <- habits
	})

	// Give the watcher a moment to subscribe before flipping status
	time.Sleep(10 * time.Millisecond)
	oracle.SetOnline(true)

	select {
	case habits := <-applied:
		if len(habits) != 1 || habits[0].ID != remoteHabit.ID {
			t.Errorf("expected server snapshot applied on reconnect, got %+v", habits)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reconnect resync")
	}
}
