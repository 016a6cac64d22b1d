// Package store provides the PinoyFlex domain stores on top of a kv.Substrate.
//
// # Architecture
//
// Each store owns one entity family and one substrate key:
//
//   - TagRegistry: custom tags (pf_tags_v1); defaults are computed
//   - UserStore: accounts (pf_users) and the active session (pf_session)
//   - PostStore: the feed (pf_posts_v1)
//   - CommentStore: comments bucketed by post id (pf_comments_v1)
//   - WorkoutStore: per-user, per-date notes (pf_workout_logs_v1)
//
// Stores never share keys and never call each other. Every mutation loads
// the whole document, applies a pure function (ApplyVote, PrependPost,
// AppendComment, ...), saves the whole document in one write, and returns the
// new collection rather than a diff.
//
// # Consistency
//
// Post.Votes always equals the sum of Post.VoteByUser. Post.CommentCount is a
// cached count that CommentStore does not maintain; callers push the new
// count through PostStore.Edit after every comment mutation (the forum
// package does this). Deleting a post does not cascade: callers run
// CommentStore.DeleteAllForPost first.
//
// Each store serializes its own read-modify-write with a mutex. Separate
// processes sharing one substrate are last-writer-wins per key.
//
// # Error Handling
//
// Validation failures are sentinel errors (ErrTooShort, ErrUsernameExists,
// ErrTagEmpty, ErrTagExists). Lookups report ErrUserNotFound, ErrPostNotFound
// or ErrCommentNotFound. Edits and deletes of unknown records, and votes with
// an empty username or invalid direction, are no-ops that return the current
// collection. Corrupt documents load as empty; substrate failures are returned
// wrapped in kv.ErrUnavailable.
//
// # Testing
//
// Use kv.NewMemory() for unit tests:
//
//	posts := store.NewPostStore(kv.NewMemory())
//
// The pure functions need no substrate at all.
package store
