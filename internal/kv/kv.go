// ABOUTME: Substrate interface and errors for the key-value persistence layer
// ABOUTME: Every store reads and writes whole JSON documents through this contract

package kv

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the backing storage cannot be read or written.
var ErrUnavailable = errors.New("storage unavailable")

// Substrate is a flat namespace of string values.
type Substrate interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
