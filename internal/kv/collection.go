// ABOUTME: Typed JSON document bound to a single substrate key
// ABOUTME: Malformed or missing documents load as the empty default, never as an error

package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
)

// Collection is a typed view of the JSON document stored under one key.
// Loads and saves always move the whole document.
type Collection[T any] struct {
	sub    Substrate
	key    string
	empty  func() T
	logger *slog.Logger
}

// NewCollection binds key on sub to documents of type T. empty builds the
// value returned when the key is absent or unreadable; it must not return nil
// for slice or map types.
func NewCollection[T any](sub Substrate, key string, empty func() T, logger *slog.Logger) *Collection[T] {
	if logger == nil {
		logger = slog.Default().With("component", "kv")
	}
	return &Collection[T]{
		sub:    sub,
		key:    key,
		empty:  empty,
		logger: logger,
	}
}

// Key returns the substrate key backing the collection.
func (c *Collection[T]) Key() string {
	return c.key
}

// Load reads and decodes the document. Only substrate failures are returned.
func (c *Collection[T]) Load(ctx context.Context) (T, error) {
	raw, ok, err := c.sub.Get(ctx, c.key)
	if err != nil {
		return c.empty(), err
	}
	if !ok || raw == "" {
		return c.empty(), nil
	}

	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		c.logger.Warn("discarding unreadable document", "key", c.key, "error", err)
		return c.empty(), nil
	}
	if isNilRef(v) {
		return c.empty(), nil
	}
	return v, nil
}

// Save encodes v and replaces the stored document in one write.
func (c *Collection[T]) Save(ctx context.Context, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", c.key, err)
	}
	return c.sub.Set(ctx, c.key, string(data))
}

// Clear removes the document entirely.
func (c *Collection[T]) Clear(ctx context.Context) error {
	return c.sub.Remove(ctx, c.key)
}

// isNilRef reports whether v is a nil slice, map or pointer, which is what a
// JSON null decodes to.
func isNilRef(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Invalid:
		return true
	case reflect.Slice, reflect.Map, reflect.Pointer:
		return rv.IsNil()
	}
	return false
}
