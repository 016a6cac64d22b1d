// ABOUTME: Shared fixtures for store tests
// ABOUTME: Deterministic clocks and a substrate that always fails

package store

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/pinoyflex/pinoyflex/internal/kv"
)

var baseTime = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

// fixedClock always returns t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// steppingClock advances by step on every call, starting at start.
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(step)
		return t
	}
}

// brokenSubstrate fails every operation as unavailable storage would.
type brokenSubstrate struct{}

func (brokenSubstrate) Get(context.Context, string) (string, bool, error) {
	return "", false, kv.ErrUnavailable
}
func (brokenSubstrate) Set(context.Context, string, string) error { return kv.ErrUnavailable }
func (brokenSubstrate) Remove(context.Context, string) error      { return kv.ErrUnavailable }

func ptr[T any](v T) *T {
	return &v
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
