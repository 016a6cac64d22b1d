// ABOUTME: Time-derived record ids with a random suffix on collision
// ABOUTME: Ids keep the p_<ms> / c_<ms> shape while staying unique

package store

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// newID returns prefix_<ms>. If that id is already taken, a short random
// suffix is appended until it is not.
func newID(prefix string, ts Timestamp, taken func(string) bool) string {
	id := fmt.Sprintf("%s_%d", prefix, int64(ts))
	for taken(id) {
		id = fmt.Sprintf("%s_%d_%s", prefix, int64(ts), shortUUID())
	}
	return id
}

func shortUUID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}
