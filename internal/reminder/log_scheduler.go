package reminder

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/habitkit/habitkit/internal/logger"
	"github.com/habitkit/habitkit/internal/storage"
)

const pendingKey = "pending_reminders"

// LogScheduler records schedule and cancel instructions in the local
// store. It stands in for the OS scheduler on platforms without one and
// gives `habitkit notify` a pending list to deliver from.
type LogScheduler struct {
	kv storage.KV
}

func NewLogScheduler(kv storage.KV) *LogScheduler {
	return &LogScheduler{kv: kv}
}

func (s *LogScheduler) Schedule(ctx context.Context, r Reminder) error {
	pending, err := s.Pending(ctx)
	if err != nil {
		return err
	}
	// Same id replaces
	kept := pending[:0]
	for _, p := range pending {
		if p.ID != r.ID {
			kept = append(kept, p)
		}
	}
	return s.save(ctx, append(kept, r))
}

func (s *LogScheduler) Cancel(ctx context.Context, id uint32) error {
	pending, err := s.Pending(ctx)
	if err != nil {
		return err
	}
	kept := pending[:0]
	for _, p := range pending {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	return s.save(ctx, kept)
}

func (s *LogScheduler) Pending(ctx context.Context) ([]Reminder, error) {
	raw, ok, err := s.kv.Get(ctx, pendingKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read pending reminders: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var pending []Reminder
	if err := json.Unmarshal([]byte(raw), &pending); err != nil {
		logger.Warn("Discarding corrupt pending reminder list", "error", err)
		return nil, nil
	}
	return pending, nil
}

func (s *LogScheduler) save(ctx context.Context, pending []Reminder) error {
	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("failed to serialize pending reminders: %w", err)
	}
	return s.kv.Set(ctx, pendingKey, string(data))
}
