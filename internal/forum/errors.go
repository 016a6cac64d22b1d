// ABOUTME: Sentinel errors for forum permission and content checks
// ABOUTME: Store and storage errors are wrapped rather than redefined here

package forum

import "errors"

var (
	// ErrNotLoggedIn is returned when an operation needs a session and there is none.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrNotOwner is returned when the actor may not change the target.
	ErrNotOwner = errors.New("not allowed: not the owner")

	ErrTitleTooShort   = errors.New("title too short")
	ErrBodyTooShort    = errors.New("body too short")
	ErrCommentTooShort = errors.New("comment too short")
	ErrNoteTooLong     = errors.New("note too long")
	ErrInvalidDate     = errors.New("invalid date")
)
