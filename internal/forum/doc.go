// Package forum is the caller-facing layer over the PinoyFlex stores.
//
// # Overview
//
// The stores in package store are deliberately permissive: they persist
// whatever they are handed and leave policy to their callers. Service is
// that caller. It owns the rules a user-facing front end enforces:
//
//   - who may edit or delete a post or comment
//   - minimum lengths for titles, bodies, comments
//   - deleting a post removes its comments first
//   - Post.CommentCount follows the comment list after every comment change
//
// # Actors
//
// Every mutating method takes the acting session as a *store.Session.
// A nil session means nobody is logged in and yields ErrNotLoggedIn.
// Ownership is decided by username, or by user id when the post carries one:
//
//	actor.Username == post.Author || (actor.ID != "" && actor.ID == post.AuthorID)
//
// Matching on id keeps ownership after a rename, because Author is a
// snapshot of the username at creation time.
//
// # Consistency
//
// Service calls several stores in sequence and there is no transaction
// across keys. A failure between the comment cascade and the post removal
// leaves a post with no comments, which is the harmless direction.
// Comment counts are recomputed from the comment list on every change, so
// a drifted count heals on the next comment mutation for that post.
//
// # Errors
//
// Validation and permission failures use the sentinel errors in this
// package. Store errors (store.ErrPostNotFound, kv.ErrUnavailable, ...)
// pass through wrapped, so errors.Is works on either.
package forum
