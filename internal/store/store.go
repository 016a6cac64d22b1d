// ABOUTME: Domain types, substrate keys, and shared errors for the PinoyFlex stores
// ABOUTME: Defines User, Session, Post, Comment and the options every store accepts

package store

import (
	"errors"
	"log/slog"
	"time"

	"github.com/pinoyflex/pinoyflex/internal/auth"
)

// Substrate keys. Each store owns exactly one key, except users which also owns the session.
const (
	KeyUsers       = "pf_users"
	KeySession     = "pf_session"
	KeyPosts       = "pf_posts_v1"
	KeyComments    = "pf_comments_v1"
	KeyWorkoutLogs = "pf_workout_logs_v1"
	KeyTags        = "pf_tags_v1"
)

// ErrTooShort is returned when a username or password is below its minimum length.
var ErrTooShort = errors.New("too short")

// ErrUsernameExists is returned when a username is already taken.
var ErrUsernameExists = errors.New("username already exists")

// ErrUserNotFound is returned when no user has the given username.
var ErrUserNotFound = errors.New("user not found")

// ErrWrongPassword is returned when a password does not match.
var ErrWrongPassword = errors.New("wrong password")

// ErrTagEmpty is returned when a tag is blank after trimming.
var ErrTagEmpty = errors.New("tag is empty")

// ErrTagExists is returned when a tag collides with a default or custom tag.
var ErrTagExists = errors.New("tag already exists")

// ErrPostNotFound is returned when no post has the given id.
var ErrPostNotFound = errors.New("post not found")

// ErrCommentNotFound is returned when no comment has the given id.
var ErrCommentNotFound = errors.New("comment not found")

// Timestamp is a point in time in Unix milliseconds, the unit the persisted documents use.
type Timestamp int64

// TimestampOf converts t to a Timestamp.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp(t.UnixMilli())
}

// Time converts the timestamp back to a time.Time.
func (ts Timestamp) Time() time.Time {
	return time.UnixMilli(int64(ts))
}

// IsZero reports whether the timestamp is unset.
func (ts Timestamp) IsZero() bool {
	return ts == 0
}

// User is a registered account.
type User struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username"`
	Password string `json:"password"` // plaintext or bcrypt hash, see auth.PasswordHasher
	Avatar   string `json:"avatar,omitempty"`
	Bio      string `json:"bio,omitempty"`
}

// Session is the projection of the logged-in user.
type Session struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

// Direction is a vote direction.
type Direction int

const (
	Upvote   Direction = 1
	Downvote Direction = -1
)

// Valid reports whether d is Upvote or Downvote.
func (d Direction) Valid() bool {
	return d == Upvote || d == Downvote
}

// Post is a feed entry.
type Post struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Body         string         `json:"body"`
	Tag          string         `json:"tag"`
	Author       string         `json:"author"`             // username at creation time
	AuthorID     string         `json:"authorId,omitempty"` // User.ID when known
	CreatedAt    Timestamp      `json:"createdAt"`
	Votes        int            `json:"votes"`
	VoteByUser   map[string]int `json:"voteByUser"`
	Images       []string       `json:"images"`
	CommentCount int            `json:"commentCount"`
	LastEdited   Timestamp      `json:"lastEdited,omitempty"`
}

// PostUpdate lists the post fields Edit may change. Nil fields are left alone.
type PostUpdate struct {
	Title        *string
	Body         *string
	Tag          *string
	Images       []string
	CommentCount *int
	LastEdited   *Timestamp
}

// Comment is a reply under a post.
type Comment struct {
	ID         string    `json:"id"`
	PostID     string    `json:"postId"`
	Author     string    `json:"author"`
	Body       string    `json:"body"`
	CreatedAt  Timestamp `json:"createdAt"`
	LastEdited Timestamp `json:"lastEdited,omitempty"`
}

// ProfileUpdate lists the profile fields UpdateProfile may change. Nil fields are left alone.
type ProfileUpdate struct {
	Avatar   *string
	Bio      *string
	Username *string
}

type options struct {
	logger *slog.Logger
	now    func() time.Time
	hasher auth.PasswordHasher
}

// Option configures a store.
type Option func(*options)

// WithLogger sets the logger a store reports to.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithClock replaces time.Now for id generation and timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithHasher sets how UserStore stores and checks passwords. Defaults to auth.Plaintext.
func WithHasher(h auth.PasswordHasher) Option {
	return func(o *options) { o.hasher = h }
}

func buildOptions(component string, opts []Option) options {
	o := options{
		now:    time.Now,
		hasher: auth.Plaintext{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	o.logger = o.logger.With("component", component)
	return o
}
