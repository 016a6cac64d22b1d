// ABOUTME: Forum service enforcing ownership and content rules on top of the stores
// ABOUTME: Cascades post deletion to comments and keeps comment counts in sync

package forum

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pinoyflex/pinoyflex/internal/auth"
	"github.com/pinoyflex/pinoyflex/internal/kv"
	"github.com/pinoyflex/pinoyflex/internal/store"
)

// Content rules, counted in characters after trimming.
const (
	MinTitleLength   = 5
	MinBodyLength    = 10
	MinCommentLength = 2
	MaxNoteLength    = 30
)

// PostDraft is what an author submits for a new post.
type PostDraft struct {
	Title  string
	Body   string
	Tag    string
	Images []string
}

// Service bundles the stores sharing one substrate.
type Service struct {
	Users    *store.UserStore
	Posts    *store.PostStore
	Comments *store.CommentStore
	Tags     *store.TagRegistry
	Workouts *store.WorkoutStore

	logger *slog.Logger
	now    func() time.Time
}

type settings struct {
	logger    *slog.Logger
	now       func() time.Time
	storeOpts []store.Option
}

// Option configures a Service.
type Option func(*settings)

// WithLogger sets the logger for the service and its stores.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
		s.storeOpts = append(s.storeOpts, store.WithLogger(logger))
	}
}

// WithClock replaces time.Now for the service and its stores.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		s.now = now
		s.storeOpts = append(s.storeOpts, store.WithClock(now))
	}
}

// WithHasher sets the password hasher used for accounts.
func WithHasher(h auth.PasswordHasher) Option {
	return func(s *settings) {
		s.storeOpts = append(s.storeOpts, store.WithHasher(h))
	}
}

// New creates a Service whose stores all live on sub.
func New(sub kv.Substrate, opts ...Option) *Service {
	st := settings{now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(&st)
	}

	return &Service{
		Users:    store.NewUserStore(sub, st.storeOpts...),
		Posts:    store.NewPostStore(sub, st.storeOpts...),
		Comments: store.NewCommentStore(sub, st.storeOpts...),
		Tags:     store.NewTagRegistry(sub, st.storeOpts...),
		Workouts: store.NewWorkoutStore(sub, st.storeOpts...),
		logger:   st.logger.With("component", "forum"),
		now:      st.now,
	}
}

// Bootstrap installs the sample users, posts and comments on first run.
// Posts and comments are only seeded in the call that seeded an empty user
// list, so a feed emptied by deletes stays empty.
func (s *Service) Bootstrap(ctx context.Context) error {
	seeded, err := s.Users.SeedIfEmpty(ctx)
	if err != nil {
		return fmt.Errorf("seeding users: %w", err)
	}
	if !seeded {
		return nil
	}
	if _, err := s.Posts.SeedIfEmpty(ctx); err != nil {
		return fmt.Errorf("seeding posts: %w", err)
	}
	if _, err := s.Comments.SeedIfEmpty(ctx); err != nil {
		return fmt.Errorf("seeding comments: %w", err)
	}
	return nil
}

// CanModify reports whether actor owns post.
func CanModify(actor *store.Session, post store.Post) bool {
	if actor == nil {
		return false
	}
	return actor.Username == post.Author || (actor.ID != "" && actor.ID == post.AuthorID)
}

func runeLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

// Login checks credentials and starts a session.
func (s *Service) Login(ctx context.Context, username, password string) (store.Session, error) {
	u, err := s.Users.Authenticate(ctx, username, password)
	if err != nil {
		return store.Session{}, err
	}
	return s.Users.Login(ctx, u.Username)
}

// Register creates an account and logs it in.
func (s *Service) Register(ctx context.Context, username, password string) (store.Session, error) {
	u, err := s.Users.Register(ctx, username, password)
	if err != nil {
		return store.Session{}, err
	}
	s.logger.Info("new account", "username", u.Username)
	return s.Users.Login(ctx, u.Username)
}

// UpdateProfile edits the actor's own profile. A rename carries the user's
// votes, posts and comments over to the new username.
func (s *Service) UpdateProfile(ctx context.Context, actor *store.Session, upd store.ProfileUpdate) (store.User, error) {
	if actor == nil {
		return store.User{}, ErrNotLoggedIn
	}
	u, err := s.Users.UpdateProfile(ctx, actor.Username, upd)
	if err != nil {
		return store.User{}, err
	}
	if u.Username == actor.Username {
		return u, nil
	}

	from, to := actor.Username, u.Username
	if _, err := s.Posts.RenameUser(ctx, from, to); err != nil {
		return store.User{}, fmt.Errorf("renaming %s in posts: %w", from, err)
	}
	if err := s.Comments.RenameAuthor(ctx, from, to); err != nil {
		return store.User{}, fmt.Errorf("renaming %s in comments: %w", from, err)
	}
	if actor.ID == "" {
		if err := s.Workouts.Rekey(ctx, from, to); err != nil {
			return store.User{}, fmt.Errorf("renaming %s in workout logs: %w", from, err)
		}
	}

	s.logger.Info("renamed user", "from", from, "to", to)
	return u, nil
}

// CreatePost validates draft and publishes it as actor.
func (s *Service) CreatePost(ctx context.Context, actor *store.Session, draft PostDraft) (store.Post, error) {
	if actor == nil {
		return store.Post{}, ErrNotLoggedIn
	}
	title := strings.TrimSpace(draft.Title)
	body := strings.TrimSpace(draft.Body)
	if runeLen(title) < MinTitleLength {
		return store.Post{}, fmt.Errorf("title needs at least %d characters: %w", MinTitleLength, ErrTitleTooShort)
	}
	if runeLen(body) < MinBodyLength {
		return store.Post{}, fmt.Errorf("body needs at least %d characters: %w", MinBodyLength, ErrBodyTooShort)
	}
	tag := store.NormalizeTag(draft.Tag)
	if tag == "" {
		tag = store.DefaultTag
	}

	posts, err := s.Posts.Create(ctx, store.Post{
		Title:    title,
		Body:     body,
		Tag:      tag,
		Author:   actor.Username,
		AuthorID: actor.ID,
		Images:   draft.Images,
	})
	if err != nil {
		return store.Post{}, fmt.Errorf("creating post: %w", err)
	}
	return posts[0], nil
}

// loadOwned returns the post if actor may modify it.
func (s *Service) loadOwned(ctx context.Context, actor *store.Session, postID string) (store.Post, error) {
	if actor == nil {
		return store.Post{}, ErrNotLoggedIn
	}
	post, err := s.Posts.Get(ctx, postID)
	if err != nil {
		return store.Post{}, err
	}
	if !CanModify(actor, post) {
		return store.Post{}, ErrNotOwner
	}
	return post, nil
}

// EditPost replaces the body of one of actor's posts and stamps LastEdited.
func (s *Service) EditPost(ctx context.Context, actor *store.Session, postID, body string) (store.Post, error) {
	if _, err := s.loadOwned(ctx, actor, postID); err != nil {
		return store.Post{}, err
	}
	body = strings.TrimSpace(body)
	if runeLen(body) < MinBodyLength {
		return store.Post{}, fmt.Errorf("body needs at least %d characters: %w", MinBodyLength, ErrBodyTooShort)
	}

	edited := store.TimestampOf(s.now())
	if _, err := s.Posts.Edit(ctx, postID, store.PostUpdate{Body: &body, LastEdited: &edited}); err != nil {
		return store.Post{}, fmt.Errorf("editing post: %w", err)
	}
	return s.Posts.Get(ctx, postID)
}

// DeletePost removes one of actor's posts together with its comments.
func (s *Service) DeletePost(ctx context.Context, actor *store.Session, postID string) error {
	if _, err := s.loadOwned(ctx, actor, postID); err != nil {
		return err
	}
	if err := s.Comments.DeleteAllForPost(ctx, postID); err != nil {
		return fmt.Errorf("deleting comments of %s: %w", postID, err)
	}
	if _, err := s.Posts.Delete(ctx, postID); err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	s.logger.Info("deleted post", "id", postID, "by", actor.Username)
	return nil
}

// Vote toggles actor's vote on a post.
func (s *Service) Vote(ctx context.Context, actor *store.Session, postID string, dir store.Direction) (store.Post, error) {
	if actor == nil {
		return store.Post{}, ErrNotLoggedIn
	}
	if _, err := s.Posts.Vote(ctx, postID, actor.Username, dir); err != nil {
		return store.Post{}, fmt.Errorf("voting: %w", err)
	}
	return s.Posts.Get(ctx, postID)
}

// syncCommentCount writes n into the post's CommentCount.
func (s *Service) syncCommentCount(ctx context.Context, postID string, n int) error {
	if _, err := s.Posts.Edit(ctx, postID, store.PostUpdate{CommentCount: &n}); err != nil {
		return fmt.Errorf("updating comment count: %w", err)
	}
	return nil
}

// AddComment appends a comment by actor to a post.
func (s *Service) AddComment(ctx context.Context, actor *store.Session, postID, body string) (store.Comment, error) {
	if actor == nil {
		return store.Comment{}, ErrNotLoggedIn
	}
	body = strings.TrimSpace(body)
	if runeLen(body) < MinCommentLength {
		return store.Comment{}, fmt.Errorf("comment needs at least %d characters: %w", MinCommentLength, ErrCommentTooShort)
	}
	if _, err := s.Posts.Get(ctx, postID); err != nil {
		return store.Comment{}, err
	}

	comments, err := s.Comments.Create(ctx, postID, store.Comment{Author: actor.Username, Body: body})
	if err != nil {
		return store.Comment{}, fmt.Errorf("creating comment: %w", err)
	}
	if err := s.syncCommentCount(ctx, postID, len(comments)); err != nil {
		return store.Comment{}, err
	}
	return comments[len(comments)-1], nil
}

// EditComment replaces the body of actor's own comment.
func (s *Service) EditComment(ctx context.Context, actor *store.Session, postID, commentID, body string) (store.Comment, error) {
	if actor == nil {
		return store.Comment{}, ErrNotLoggedIn
	}
	c, err := s.Comments.Get(ctx, postID, commentID)
	if err != nil {
		return store.Comment{}, err
	}
	if c.Author != actor.Username {
		return store.Comment{}, ErrNotOwner
	}
	body = strings.TrimSpace(body)
	if runeLen(body) < MinCommentLength {
		return store.Comment{}, fmt.Errorf("comment needs at least %d characters: %w", MinCommentLength, ErrCommentTooShort)
	}

	comments, err := s.Comments.Edit(ctx, postID, commentID, body)
	if err != nil {
		return store.Comment{}, fmt.Errorf("editing comment: %w", err)
	}
	if err := s.syncCommentCount(ctx, postID, len(comments)); err != nil {
		return store.Comment{}, err
	}
	return s.Comments.Get(ctx, postID, commentID)
}

// DeleteComment removes a comment. The comment's author and the post's
// owner may both delete it.
func (s *Service) DeleteComment(ctx context.Context, actor *store.Session, postID, commentID string) error {
	if actor == nil {
		return ErrNotLoggedIn
	}
	c, err := s.Comments.Get(ctx, postID, commentID)
	if err != nil {
		return err
	}
	if c.Author != actor.Username {
		post, err := s.Posts.Get(ctx, postID)
		if err != nil {
			return err
		}
		if !CanModify(actor, post) {
			return ErrNotOwner
		}
	}

	comments, err := s.Comments.Delete(ctx, postID, commentID)
	if err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}
	return s.syncCommentCount(ctx, postID, len(comments))
}

// WorkoutKey is the key actor's workout notes are filed under: the user id,
// or the username for sessions without one.
func WorkoutKey(actor *store.Session) string {
	if actor == nil {
		return ""
	}
	if actor.ID != "" {
		return actor.ID
	}
	return actor.Username
}

// LogWorkout records actor's note for date (YYYY-MM-DD, today when empty).
func (s *Service) LogWorkout(ctx context.Context, actor *store.Session, date, note string) (map[string]string, error) {
	if actor == nil {
		return nil, ErrNotLoggedIn
	}
	if date == "" {
		date = store.DateKey(s.now())
	} else if _, err := time.Parse(store.DateKeyLayout, date); err != nil {
		return nil, fmt.Errorf("%q: %w", date, ErrInvalidDate)
	}
	note = strings.TrimSpace(note)
	if utf8.RuneCountInString(note) > MaxNoteLength {
		return nil, fmt.Errorf("note may have at most %d characters: %w", MaxNoteLength, ErrNoteTooLong)
	}
	return s.Workouts.Upsert(ctx, WorkoutKey(actor), date, note)
}

// WorkoutLogs returns actor's notes by date.
func (s *Service) WorkoutLogs(ctx context.Context, actor *store.Session) (map[string]string, error) {
	if actor == nil {
		return nil, ErrNotLoggedIn
	}
	return s.Workouts.ListForUser(ctx, WorkoutKey(actor))
}
