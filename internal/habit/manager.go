// Package habit holds the in-memory authoritative habit list. The
// Manager is the single mutation point: the CLI, the TUI, and the sync
// watcher all funnel through it, and its state is only ever replaced
// wholesale after the coordinator's result is known.
package habit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/habitkit/habitkit/internal/models"
	"github.com/habitkit/habitkit/internal/reminder"
	"github.com/habitkit/habitkit/internal/stats"
	"github.com/habitkit/habitkit/internal/storage"
	"github.com/habitkit/habitkit/internal/syncer"
	"github.com/habitkit/habitkit/internal/utils"
)

type Manager struct {
	store  *storage.LocalStore
	coord  *syncer.Coordinator
	mapper *reminder.Mapper

	mu     sync.Mutex
	habits []models.Habit
	subs   map[int]chan []models.Habit
	nextID int
}

func NewManager(store *storage.LocalStore, coord *syncer.Coordinator, mapper *reminder.Mapper) *Manager {
	return &Manager{
		store:  store,
		coord:  coord,
		mapper: mapper,
		subs:   make(map[int]chan []models.Habit),
	}
}

// Bootstrap loads local state first so the app renders immediately,
// then replaces it with the remote snapshot when online.
func (m *Manager) Bootstrap(ctx context.Context) {
	m.replace(m.store.Habits(ctx))

	if habits, synced := m.coord.Resync(ctx); synced {
		m.replace(habits)
	}
}

// Run blocks watching connectivity, resyncing on each reconnect, until
// ctx is done.
func (m *Manager) Run(ctx context.Context) {
	m.coord.Watch(ctx, m.replace)
}

// Habits returns a copy of the current snapshot.
func (m *Manager) Habits() []models.Habit {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Habit(nil), m.habits...)
}

// Subscribe returns a channel that immediately carries the current
// snapshot and then the latest snapshot after every replacement. Slow
// consumers are conflated to the most recent state, never blocked on.
// The returned func cancels the subscription.
func (m *Manager) Subscribe() (<-chan []models.Habit, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	ch := make(chan []models.Habit, 1)
	ch <- append([]models.Habit(nil), m.habits...)
	m.subs[id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// CreateHabit assigns identity and timestamps, runs the operation
// through the coordinator, commits the result, and reconciles the
// habit's reminder schedule. Input must already be validated.
func (m *Manager) CreateHabit(ctx context.Context, habit models.Habit) (models.Habit, error) {
	now := time.Now()
	habit.ID = uuid.New().String()
	habit.StreakCount = 0
	habit.CreatedAt = now
	habit.UpdatedAt = now

	result, err := m.coord.CreateHabit(ctx, habit)
	if err != nil {
		return models.Habit{}, err
	}

	m.mu.Lock()
	m.habits = append(append([]models.Habit(nil), m.habits...), result)
	snapshot := append([]models.Habit(nil), m.habits...)
	m.mu.Unlock()
	m.notify(snapshot)

	m.mapper.Apply(ctx, result)
	return result, nil
}

// UpdateHabit persists a modified habit and reconciles its reminder.
func (m *Manager) UpdateHabit(ctx context.Context, habit models.Habit) (models.Habit, error) {
	habit.UpdatedAt = time.Now()

	result, err := m.coord.UpdateHabit(ctx, habit)
	if err != nil {
		return models.Habit{}, err
	}

	m.mu.Lock()
	next := append([]models.Habit(nil), m.habits...)
	for i, h := range next {
		if h.ID == result.ID {
			next[i] = result
			break
		}
	}
	m.habits = next
	snapshot := append([]models.Habit(nil), next...)
	m.mu.Unlock()
	m.notify(snapshot)

	m.mapper.Apply(ctx, result)
	return result, nil
}

// DeleteHabit removes the habit, its completions, and its reminder.
func (m *Manager) DeleteHabit(ctx context.Context, habitID string) error {
	if err := m.coord.DeleteHabit(ctx, habitID); err != nil {
		return err
	}

	m.mu.Lock()
	next := make([]models.Habit, 0, len(m.habits))
	for _, h := range m.habits {
		if h.ID != habitID {
			next = append(next, h)
		}
	}
	m.habits = next
	snapshot := append([]models.Habit(nil), next...)
	m.mu.Unlock()
	m.notify(snapshot)

	m.mapper.Remove(ctx, habitID)
	return nil
}

// CompleteHabit records a completion, recomputes the habit's cached
// streak through the normal update funnel, and emits a milestone
// notification when one is due. A repeat completion on a day already
// marked done keeps the streak and stays silent.
func (m *Manager) CompleteHabit(ctx context.Context, habitID, notes string) (models.Completion, error) {
	today := utils.Today()
	alreadyToday := false
	for _, c := range m.store.Completions(ctx, habitID) {
		if utils.DayString(c.CompletedAt) == today {
			alreadyToday = true
			break
		}
	}

	completion := models.Completion{
		ID:          uuid.New().String(),
		HabitID:     habitID,
		CompletedAt: time.Now(),
		Notes:       notes,
	}

	result, err := m.coord.AddCompletion(ctx, completion)
	if err != nil {
		return models.Completion{}, err
	}

	streak := stats.CurrentStreak(m.store.Completions(ctx, habitID), time.Now())

	if habit, ok := m.find(habitID); ok {
		habit.StreakCount = streak
		if updated, err := m.UpdateHabit(ctx, habit); err == nil && !alreadyToday {
			m.mapper.Encourage(ctx, updated, streak)
		}
	}
	return result, nil
}

// TodayHabits joins each active habit against today's completions by
// calendar-day equality.
func (m *Manager) TodayHabits(ctx context.Context) []models.TodayHabit {
	today := utils.Today()
	completions := m.store.AllCompletions(ctx)

	doneToday := make(map[string]bool)
	for _, c := range completions {
		if utils.DayString(c.CompletedAt) == today {
			doneToday[c.HabitID] = true
		}
	}

	var out []models.TodayHabit
	for _, h := range m.Habits() {
		if !h.IsActive {
			continue
		}
		out = append(out, models.TodayHabit{Habit: h, CompletedToday: doneToday[h.ID]})
	}
	return out
}

// Statistics computes the derived statistics view for one habit from
// its stored completion log.
func (m *Manager) Statistics(ctx context.Context, habitID string) models.Statistics {
	return stats.Calculate(habitID, m.store.Completions(ctx, habitID), time.Now())
}

func (m *Manager) find(habitID string) (models.Habit, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range m.habits {
		if h.ID == habitID {
			return h, true
		}
	}
	return models.Habit{}, false
}

// replace swaps in a whole new snapshot (bootstrap and resync path).
func (m *Manager) replace(habits []models.Habit) {
	m.mu.Lock()
	m.habits = append([]models.Habit(nil), habits...)
	snapshot := append([]models.Habit(nil), m.habits...)
	m.mu.Unlock()
	m.notify(snapshot)
}

// notify conflates delivery: a subscriber that has not consumed the
// previous snapshot sees only the latest one.
func (m *Manager) notify(snapshot []models.Habit) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}
