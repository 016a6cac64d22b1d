// ABOUTME: Per-user workout journal holding one short note per calendar date
// ABOUTME: Notes are upserted by date key; note length is the caller's concern

package store

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/pinoyflex/pinoyflex/internal/kv"
)

// DateKeyLayout is the layout of workout log date keys.
const DateKeyLayout = "2006-01-02"

// DateKey formats t as a workout log date key in t's location.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// WorkoutStore owns KeyWorkoutLogs: user key -> date key -> note.
type WorkoutStore struct {
	mu   sync.Mutex
	logs *kv.Collection[map[string]map[string]string]
	opts options
}

// NewWorkoutStore creates a workout log store on sub.
func NewWorkoutStore(sub kv.Substrate, opts ...Option) *WorkoutStore {
	o := buildOptions("workouts", opts)
	return &WorkoutStore{
		logs: kv.NewCollection(sub, KeyWorkoutLogs, func() map[string]map[string]string { return map[string]map[string]string{} }, o.logger),
		opts: o,
	}
}

// ListForUser returns the user's notes by date key. An empty user key yields an empty map.
func (s *WorkoutStore) ListForUser(ctx context.Context, userKey string) (map[string]string, error) {
	if userKey == "" {
		return map[string]string{}, nil
	}
	all, err := s.logs.Load(ctx)
	if err != nil {
		return nil, err
	}
	return userLogs(all, userKey), nil
}

func userLogs(all map[string]map[string]string, userKey string) map[string]string {
	if logs := all[userKey]; logs != nil {
		return maps.Clone(logs)
	}
	return map[string]string{}
}

// Upsert sets the note for dateKey, replacing any previous one, and returns
// the user's notes. An empty user key or date key is a no-op.
func (s *WorkoutStore) Upsert(ctx context.Context, userKey, dateKey, note string) (map[string]string, error) {
	if userKey == "" || dateKey == "" {
		return s.ListForUser(ctx, userKey)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.logs.Load(ctx)
	if err != nil {
		return nil, err
	}

	logs := userLogs(all, userKey)
	logs[dateKey] = note
	all[userKey] = logs
	if err := s.logs.Save(ctx, all); err != nil {
		return nil, err
	}

	s.opts.logger.Debug("upserted workout log", "user", userKey, "date", dateKey)
	return maps.Clone(logs), nil
}

// Rekey moves the notes filed under from to to. Notes already under to win
// on a date both keys share. Missing or empty keys are a no-op.
func (s *WorkoutStore) Rekey(ctx context.Context, from, to string) error {
	if from == "" || to == "" || from == to {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.logs.Load(ctx)
	if err != nil {
		return err
	}
	old, ok := all[from]
	if !ok {
		return nil
	}

	merged := userLogs(all, to)
	for date, note := range old {
		if _, taken := merged[date]; !taken {
			merged[date] = note
		}
	}
	delete(all, from)
	all[to] = merged
	return s.logs.Save(ctx, all)
}
