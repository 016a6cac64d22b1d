// ABOUTME: Comment store keyed by post id, oldest comment first
// ABOUTME: Creation, edits, deletion and whole-bucket cascade removal

package store

import (
	"context"
	"slices"
	"sync"

	"github.com/pinoyflex/pinoyflex/internal/kv"
)

// CommentStore owns KeyComments, a map from post id to that post's comments.
// It does not maintain Post.CommentCount.
type CommentStore struct {
	mu      sync.Mutex
	buckets *kv.Collection[map[string][]Comment]
	opts    options
}

// NewCommentStore creates a comment store on sub.
func NewCommentStore(sub kv.Substrate, opts ...Option) *CommentStore {
	o := buildOptions("comments", opts)
	return &CommentStore{
		buckets: kv.NewCollection(sub, KeyComments, func() map[string][]Comment { return map[string][]Comment{} }, o.logger),
		opts:    o,
	}
}

func findComment(comments []Comment, id string) int {
	return slices.IndexFunc(comments, func(c Comment) bool { return c.ID == id })
}

// AppendComment returns comments with c at the end.
func AppendComment(comments []Comment, c Comment) []Comment {
	next := make([]Comment, 0, len(comments)+1)
	next = append(next, comments...)
	return append(next, c)
}

// RemoveComment returns comments without the comment whose id matches.
func RemoveComment(comments []Comment, id string) []Comment {
	next := make([]Comment, 0, len(comments))
	for _, c := range comments {
		if c.ID != id {
			next = append(next, c)
		}
	}
	return next
}

// EditCommentBody replaces the body of the matching comment and stamps LastEdited.
// Reports false when no comment matches.
func EditCommentBody(comments []Comment, id, body string, at Timestamp) ([]Comment, bool) {
	i := findComment(comments, id)
	if i < 0 {
		return comments, false
	}
	next := slices.Clone(comments)
	next[i].Body = body
	next[i].LastEdited = at
	return next, true
}

func bucket(buckets map[string][]Comment, postID string) []Comment {
	if c := buckets[postID]; c != nil {
		return c
	}
	return []Comment{}
}

func commentIDTaken(buckets map[string][]Comment) func(string) bool {
	return func(id string) bool {
		for _, comments := range buckets {
			if findComment(comments, id) >= 0 {
				return true
			}
		}
		return false
	}
}

// List returns the post's comments, oldest first.
func (s *CommentStore) List(ctx context.Context, postID string) ([]Comment, error) {
	buckets, err := s.buckets.Load(ctx)
	if err != nil {
		return nil, err
	}
	return bucket(buckets, postID), nil
}

// Count returns the number of comments under postID.
func (s *CommentStore) Count(ctx context.Context, postID string) (int, error) {
	comments, err := s.List(ctx, postID)
	return len(comments), err
}

// Get returns a single comment.
func (s *CommentStore) Get(ctx context.Context, postID, commentID string) (Comment, error) {
	comments, err := s.List(ctx, postID)
	if err != nil {
		return Comment{}, err
	}
	i := findComment(comments, commentID)
	if i < 0 {
		return Comment{}, ErrCommentNotFound
	}
	return comments[i], nil
}

// SeedIfEmpty installs the sample comments when no post has any.
func (s *CommentStore) SeedIfEmpty(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buckets, err := s.buckets.Load(ctx)
	if err != nil {
		return false, err
	}
	if len(buckets) > 0 {
		return false, nil
	}

	seed := SampleComments(s.opts.now())
	if err := s.buckets.Save(ctx, seed); err != nil {
		return false, err
	}

	s.opts.logger.Info("seeded sample comments", "posts", len(seed))
	return true, nil
}

// Create appends c under postID, assigning its id, post id and creation time.
// Returns the post's updated comment list.
func (s *CommentStore) Create(ctx context.Context, postID string, c Comment) ([]Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buckets, err := s.buckets.Load(ctx)
	if err != nil {
		return nil, err
	}

	if c.CreatedAt.IsZero() {
		c.CreatedAt = TimestampOf(s.opts.now())
	}
	c.ID = newID("c", c.CreatedAt, commentIDTaken(buckets))
	c.PostID = postID
	c.LastEdited = 0

	next := AppendComment(bucket(buckets, postID), c)
	buckets[postID] = next
	if err := s.buckets.Save(ctx, buckets); err != nil {
		return nil, err
	}

	s.opts.logger.Debug("created comment", "id", c.ID, "post_id", postID)
	return next, nil
}

// Edit replaces a comment's body and stamps LastEdited. Unknown ids are a no-op.
func (s *CommentStore) Edit(ctx context.Context, postID, commentID, body string) ([]Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buckets, err := s.buckets.Load(ctx)
	if err != nil {
		return nil, err
	}

	current := bucket(buckets, postID)
	next, ok := EditCommentBody(current, commentID, body, TimestampOf(s.opts.now()))
	if !ok {
		return current, nil
	}
	buckets[postID] = next
	if err := s.buckets.Save(ctx, buckets); err != nil {
		return nil, err
	}
	return next, nil
}

// Delete removes one comment. Unknown ids are a no-op.
func (s *CommentStore) Delete(ctx context.Context, postID, commentID string) ([]Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buckets, err := s.buckets.Load(ctx)
	if err != nil {
		return nil, err
	}

	current := bucket(buckets, postID)
	next := RemoveComment(current, commentID)
	if len(next) == len(current) {
		return current, nil
	}
	buckets[postID] = next
	if err := s.buckets.Save(ctx, buckets); err != nil {
		return nil, err
	}

	s.opts.logger.Debug("deleted comment", "id", commentID, "post_id", postID)
	return next, nil
}

// DeleteAllForPost drops the post's whole bucket in a single write.
func (s *CommentStore) DeleteAllForPost(ctx context.Context, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buckets, err := s.buckets.Load(ctx)
	if err != nil {
		return err
	}
	if _, ok := buckets[postID]; !ok {
		return nil
	}

	n := len(buckets[postID])
	delete(buckets, postID)
	if err := s.buckets.Save(ctx, buckets); err != nil {
		return err
	}

	s.opts.logger.Debug("deleted comments for post", "post_id", postID, "count", n)
	return nil
}

// RenameCommentAuthor returns buckets with from's comments attributed to to.
// Reports whether any comment changed.
func RenameCommentAuthor(buckets map[string][]Comment, from, to string) (map[string][]Comment, bool) {
	if from == "" || to == "" || from == to {
		return buckets, false
	}

	next := make(map[string][]Comment, len(buckets))
	changed := false
	for postID, comments := range buckets {
		if !slices.ContainsFunc(comments, func(c Comment) bool { return c.Author == from }) {
			next[postID] = comments
			continue
		}
		renamed := slices.Clone(comments)
		for i := range renamed {
			if renamed[i].Author == from {
				renamed[i].Author = to
			}
		}
		next[postID] = renamed
		changed = true
	}
	if !changed {
		return buckets, false
	}
	return next, true
}

// RenameAuthor attributes every comment by from to to.
func (s *CommentStore) RenameAuthor(ctx context.Context, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buckets, err := s.buckets.Load(ctx)
	if err != nil {
		return err
	}

	next, ok := RenameCommentAuthor(buckets, from, to)
	if !ok {
		return nil
	}
	return s.buckets.Save(ctx, next)
}
