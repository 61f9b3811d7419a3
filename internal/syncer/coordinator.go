// Package syncer mediates every mutating habit operation between the
// local store and the remote backend. The contract: a mutation always
// succeeds locally regardless of connectivity; the remote write is
// opportunistic and its failure silently degrades to offline behavior.
package syncer

import (
	"context"
	"time"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/habitkit/habitkit/internal/logger"
	"github.com/habitkit/habitkit/internal/models"
	"github.com/habitkit/habitkit/internal/network"
	"github.com/habitkit/habitkit/internal/remote"
	"github.com/habitkit/habitkit/internal/storage"
)

type Coordinator struct {
	store   *storage.LocalStore
	backend remote.Backend
	oracle  network.Oracle
}

func New(store *storage.LocalStore, backend remote.Backend, oracle network.Oracle) *Coordinator {
	return &Coordinator{
		store:   store,
		backend: backend,
		oracle:  oracle,
	}
}

// CreateHabit persists a locally-constructed habit, attempting the
// remote insert first when online. The returned record is the remote
// one when the insert succeeded (the server may normalize fields),
// otherwise the local record.
func (c *Coordinator) CreateHabit(ctx context.Context, habit models.Habit) (models.Habit, error) {
	result := habit
	if c.oracle.Online(ctx) {
		if remoteHabit, err := c.backend.InsertHabit(ctx, habit); err != nil {
			logger.Warn("Remote habit create failed, keeping local record", "habit", habit.ID, "error", err)
		} else {
			result = remoteHabit
		}
	}

	if err := c.store.SaveHabit(ctx, result); err != nil {
		return models.Habit{}, err
	}
	return result, nil
}

// UpdateHabit mirrors CreateHabit for an existing record.
func (c *Coordinator) UpdateHabit(ctx context.Context, habit models.Habit) (models.Habit, error) {
	result := habit
	if c.oracle.Online(ctx) {
		if remoteHabit, err := c.backend.UpdateHabit(ctx, habit); err != nil {
			logger.Warn("Remote habit update failed, keeping local record", "habit", habit.ID, "error", err)
		} else {
			result = remoteHabit
		}
	}

	if err := c.store.SaveHabit(ctx, result); err != nil {
		return models.Habit{}, err
	}
	return result, nil
}

// DeleteHabit removes the habit locally (cascading its completions) and
// best-effort remotely.
func (c *Coordinator) DeleteHabit(ctx context.Context, habitID string) error {
	if c.oracle.Online(ctx) {
		if err := c.backend.DeleteHabit(ctx, habitID); err != nil {
			logger.Warn("Remote habit delete failed, deleting locally anyway", "habit", habitID, "error", err)
		} else if err := c.backend.DeleteCompletions(ctx, habitID); err != nil {
			logger.Warn("Remote completion cascade failed", "habit", habitID, "error", err)
		}
	}
	return c.store.DeleteHabit(ctx, habitID)
}

// AddCompletion records a completion locally, attempting the remote
// insert first when online.
func (c *Coordinator) AddCompletion(ctx context.Context, completion models.Completion) (models.Completion, error) {
	result := completion
	if c.oracle.Online(ctx) {
		if remoteCompletion, err := c.backend.InsertCompletion(ctx, completion); err != nil {
			logger.Warn("Remote completion insert failed, keeping local record", "habit", completion.HabitID, "error", err)
		} else {
			result = remoteCompletion
		}
	}

	if err := c.store.SaveCompletion(ctx, result); err != nil {
		return models.Completion{}, err
	}
	return result, nil
}

// Resync performs the bulk reconciliation: it reads all active remote
// habits and replaces local state and storage with that snapshot.
// This is last-writer-from-server-wins by design; it does not merge,
// so habits created locally while offline and never individually
// synced are dropped here. A snapshot identical to local state skips
// the write. When the remote read fails the local state is left
// untouched and synced reports false.
func (c *Coordinator) Resync(ctx context.Context) (habits []models.Habit, synced bool) {
	if !c.oracle.Online(ctx) {
		return c.store.Habits(ctx), false
	}

	remoteHabits, err := c.backend.SelectActiveHabits(ctx)
	if err != nil {
		logger.Warn("Bulk resync failed, keeping local state", "error", err)
		return c.store.Habits(ctx), false
	}
	if remoteHabits == nil {
		remoteHabits = []models.Habit{}
	}

	local := c.store.Habits(ctx)
	if changed, err := snapshotChanged(local, remoteHabits); err == nil && !changed {
		logger.Debug("Resync snapshot identical to local state, skipping write")
		return remoteHabits, true
	}
	logger.Info("Resync replacing local habit list", "local", len(local), "remote", len(remoteHabits))

	if err := c.store.SaveHabits(ctx, remoteHabits); err != nil {
		logger.Error("Failed to persist resynced habits", "error", err)
		return local, false
	}
	if err := c.store.TouchLastSync(ctx, time.Now()); err != nil {
		logger.Warn("Failed to record last sync time", "error", err)
	}
	return remoteHabits, true
}

// Watch resyncs on every offline-to-online transition, handing each
// fresh snapshot to apply. It blocks until ctx is done.
func (c *Coordinator) Watch(ctx context.Context, apply func([]models.Habit)) {
	events := c.oracle.Watch(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case online, ok := <-events:
			if !ok {
				return
			}
			if !online {
				continue
			}
			if habits, synced := c.Resync(ctx); synced {
				apply(habits)
			}
		}
	}
}

func snapshotChanged(local, remote []models.Habit) (bool, error) {
	localHash, err := hashstructure.Hash(local, hashstructure.FormatV2, nil)
	if err != nil {
		return true, err
	}
	remoteHash, err := hashstructure.Hash(remote, hashstructure.FormatV2, nil)
	if err != nil {
		return true, err
	}
	return localHash != remoteHash, nil
}
