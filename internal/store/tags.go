// ABOUTME: Tag registry merging the fixed default tags with user-added custom tags
// ABOUTME: Custom tags are trimmed, capped at 24 characters, and never duplicate a default

package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pinoyflex/pinoyflex/internal/kv"
)

// MaxTagLength is the longest custom tag kept, in characters.
const MaxTagLength = 24

// DefaultTag is used for posts created without a tag.
const DefaultTag = "General"

var defaultTags = []string{
	"Form",
	"Meal Prep",
	"Physique",
	"Beginners",
	"General",
	"Success",
}

// DefaultTags returns a copy of the built-in tags.
func DefaultTags() []string {
	return slices.Clone(defaultTags)
}

// NormalizeTag trims raw and caps it at MaxTagLength characters.
func NormalizeTag(raw string) string {
	t := strings.TrimSpace(raw)
	if utf8.RuneCountInString(t) <= MaxTagLength {
		return t
	}
	return string([]rune(t)[:MaxTagLength])
}

// MergeTags returns the defaults followed by custom tags not already present.
func MergeTags(custom []string) []string {
	merged := DefaultTags()
	for _, t := range custom {
		if !slices.Contains(merged, t) {
			merged = append(merged, t)
		}
	}
	return merged
}

// TagRegistry persists custom tags under KeyTags. Defaults are computed, never stored.
type TagRegistry struct {
	mu     sync.Mutex
	custom *kv.Collection[[]string]
	opts   options
}

// NewTagRegistry creates a registry on sub.
func NewTagRegistry(sub kv.Substrate, opts ...Option) *TagRegistry {
	o := buildOptions("tags", opts)
	return &TagRegistry{
		custom: kv.NewCollection(sub, KeyTags, func() []string { return []string{} }, o.logger),
		opts:   o,
	}
}

// List returns default tags first, then custom tags in insertion order.
func (r *TagRegistry) List(ctx context.Context) ([]string, error) {
	custom, err := r.custom.Load(ctx)
	if err != nil {
		return DefaultTags(), err
	}
	return MergeTags(custom), nil
}

// ListCustom returns only the persisted custom tags.
func (r *TagRegistry) ListCustom(ctx context.Context) ([]string, error) {
	return r.custom.Load(ctx)
}

// AddCustom normalizes raw and appends it to the custom tags.
// Returns ErrTagEmpty for blank input and ErrTagExists for a duplicate.
func (r *TagRegistry) AddCustom(ctx context.Context, raw string) (string, error) {
	tag := NormalizeTag(raw)
	if tag == "" {
		return "", ErrTagEmpty
	}
	if slices.Contains(defaultTags, tag) {
		return "", ErrTagExists
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.custom.Load(ctx)
	if err != nil {
		return "", err
	}
	if slices.Contains(current, tag) {
		return "", ErrTagExists
	}

	if err := r.custom.Save(ctx, append(current, tag)); err != nil {
		return "", err
	}

	r.opts.logger.Debug("added custom tag", "tag", tag)
	return tag, nil
}
