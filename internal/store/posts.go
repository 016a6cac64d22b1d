// ABOUTME: Post store: creation, edits, deletion and per-user toggle voting
// ABOUTME: Each operation is a pure transform over the full post list plus one save

package store

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/pinoyflex/pinoyflex/internal/kv"
)

// PostStore owns KeyPosts. Posts are kept newest-first.
type PostStore struct {
	mu    sync.Mutex
	posts *kv.Collection[[]Post]
	opts  options
}

// NewPostStore creates a post store on sub.
func NewPostStore(sub kv.Substrate, opts ...Option) *PostStore {
	o := buildOptions("posts", opts)
	return &PostStore{
		posts: kv.NewCollection(sub, KeyPosts, func() []Post { return []Post{} }, o.logger),
		opts:  o,
	}
}

func findPost(posts []Post, id string) int {
	return slices.IndexFunc(posts, func(p Post) bool { return p.ID == id })
}

// PrependPost returns posts with p at the front.
func PrependPost(posts []Post, p Post) []Post {
	next := make([]Post, 0, len(posts)+1)
	next = append(next, p)
	return append(next, posts...)
}

// RemovePost returns posts without the post whose id matches.
func RemovePost(posts []Post, id string) []Post {
	next := make([]Post, 0, len(posts))
	for _, p := range posts {
		if p.ID != id {
			next = append(next, p)
		}
	}
	return next
}

// ApplyPostUpdate merges upd into the post with the given id.
// Reports false, and returns posts untouched, when no post matches.
func ApplyPostUpdate(posts []Post, id string, upd PostUpdate) ([]Post, bool) {
	i := findPost(posts, id)
	if i < 0 {
		return posts, false
	}

	next := slices.Clone(posts)
	p := next[i]
	if upd.Title != nil {
		p.Title = *upd.Title
	}
	if upd.Body != nil {
		p.Body = *upd.Body
	}
	if upd.Tag != nil {
		p.Tag = *upd.Tag
	}
	if upd.Images != nil {
		p.Images = slices.Clone(upd.Images)
	}
	if upd.CommentCount != nil {
		p.CommentCount = *upd.CommentCount
	}
	if upd.LastEdited != nil {
		p.LastEdited = *upd.LastEdited
	}
	next[i] = p
	return next, true
}

// ApplyVote records username's vote on the post with the given id.
// Voting the same direction twice retracts the vote; voting the other way
// replaces it. Votes is adjusted by -previous+next so it stays equal to the
// sum of VoteByUser. Reports false for an unknown post, an empty username or
// an invalid direction, and returns posts untouched.
func ApplyVote(posts []Post, id, username string, dir Direction) ([]Post, bool) {
	if username == "" || !dir.Valid() {
		return posts, false
	}
	i := findPost(posts, id)
	if i < 0 {
		return posts, false
	}

	next := slices.Clone(posts)
	p := next[i]

	voteByUser := maps.Clone(p.VoteByUser)
	if voteByUser == nil {
		voteByUser = map[string]int{}
	}

	prev := voteByUser[username]
	vote := int(dir)
	if prev == vote {
		vote = 0
	}
	if vote == 0 {
		delete(voteByUser, username)
	} else {
		voteByUser[username] = vote
	}

	p.Votes = p.Votes - prev + vote
	p.VoteByUser = voteByUser
	next[i] = p
	return next, true
}

// List returns all posts, newest first.
func (s *PostStore) List(ctx context.Context) ([]Post, error) {
	return s.posts.Load(ctx)
}

// Get returns the post with the given id.
func (s *PostStore) Get(ctx context.Context, id string) (Post, error) {
	posts, err := s.posts.Load(ctx)
	if err != nil {
		return Post{}, err
	}
	i := findPost(posts, id)
	if i < 0 {
		return Post{}, ErrPostNotFound
	}
	return posts[i], nil
}

// SeedIfEmpty installs the sample posts when there are none.
func (s *PostStore) SeedIfEmpty(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.posts.Load(ctx)
	if err != nil {
		return false, err
	}
	if len(posts) > 0 {
		return false, nil
	}

	seed := SamplePosts(s.opts.now())
	if err := s.posts.Save(ctx, seed); err != nil {
		return false, err
	}

	s.opts.logger.Info("seeded sample posts", "count", len(seed))
	return true, nil
}

// Create assigns p an id derived from its creation time, resets its vote
// and comment tallies, and prepends it. Returns the full updated list.
func (s *PostStore) Create(ctx context.Context, p Post) ([]Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.posts.Load(ctx)
	if err != nil {
		return nil, err
	}

	if p.CreatedAt.IsZero() {
		p.CreatedAt = TimestampOf(s.opts.now())
	}
	p.ID = newID("p", p.CreatedAt, func(id string) bool { return findPost(posts, id) >= 0 })
	p.Votes = 0
	p.VoteByUser = map[string]int{}
	p.CommentCount = 0
	p.LastEdited = 0
	if p.Images == nil {
		p.Images = []string{}
	}

	next := PrependPost(posts, p)
	if err := s.posts.Save(ctx, next); err != nil {
		return nil, err
	}

	s.opts.logger.Debug("created post", "id", p.ID, "author", p.Author)
	return next, nil
}

// Delete removes the post with the given id. It does not touch comments;
// callers remove the post's comments first.
func (s *PostStore) Delete(ctx context.Context, id string) ([]Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.posts.Load(ctx)
	if err != nil {
		return nil, err
	}

	next := RemovePost(posts, id)
	if len(next) == len(posts) {
		return posts, nil
	}
	if err := s.posts.Save(ctx, next); err != nil {
		return nil, err
	}

	s.opts.logger.Debug("deleted post", "id", id)
	return next, nil
}

// Edit merges upd into the post with the given id. Unknown ids are a no-op.
func (s *PostStore) Edit(ctx context.Context, id string, upd PostUpdate) ([]Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.posts.Load(ctx)
	if err != nil {
		return nil, err
	}

	next, ok := ApplyPostUpdate(posts, id, upd)
	if !ok {
		return posts, nil
	}
	if err := s.posts.Save(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Vote toggles username's vote on a post. Invalid input is a no-op that
// returns the current list.
func (s *PostStore) Vote(ctx context.Context, id, username string, dir Direction) ([]Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.posts.Load(ctx)
	if err != nil {
		return nil, err
	}

	next, ok := ApplyVote(posts, id, username, dir)
	if !ok {
		s.opts.logger.Debug("ignored vote", "id", id, "username", username, "direction", int(dir))
		return posts, nil
	}
	if err := s.posts.Save(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// RenameUserInPosts moves from's authorship and votes to to. If to already
// has a vote on a post, that vote is kept and from's is dropped, with Votes
// adjusted so it still equals the sum of VoteByUser. Reports whether any post
// changed.
func RenameUserInPosts(posts []Post, from, to string) ([]Post, bool) {
	if from == "" || to == "" || from == to {
		return posts, false
	}

	next := slices.Clone(posts)
	changed := false
	for i, p := range next {
		touched := false
		if p.Author == from {
			p.Author = to
			touched = true
		}
		if v, ok := p.VoteByUser[from]; ok {
			voteByUser := maps.Clone(p.VoteByUser)
			delete(voteByUser, from)
			if _, taken := voteByUser[to]; taken {
				p.Votes -= v
			} else {
				voteByUser[to] = v
			}
			p.VoteByUser = voteByUser
			touched = true
		}
		if touched {
			next[i] = p
			changed = true
		}
	}
	if !changed {
		return posts, false
	}
	return next, true
}

// RenameUser rewrites authorship and votes from one username to another.
func (s *PostStore) RenameUser(ctx context.Context, from, to string) ([]Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.posts.Load(ctx)
	if err != nil {
		return nil, err
	}

	next, ok := RenameUserInPosts(posts, from, to)
	if !ok {
		return posts, nil
	}
	if err := s.posts.Save(ctx, next); err != nil {
		return nil, err
	}

	s.opts.logger.Debug("renamed user in posts", "from", from, "to", to)
	return next, nil
}
