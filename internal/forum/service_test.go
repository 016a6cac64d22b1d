// ABOUTME: Tests for the forum service rules over an in-memory substrate
// ABOUTME: Ownership, validation, cascade delete, comment counts and workout notes

package forum

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinoyflex/pinoyflex/internal/kv"
	"github.com/pinoyflex/pinoyflex/internal/store"
)

var t0 = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func steppingClock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		t := next
		next = next.Add(time.Second)
		return t
	}
}

func newTestService(t *testing.T) (*Service, *kv.Memory) {
	t.Helper()
	sub := kv.NewMemory()
	svc := New(sub, WithClock(steppingClock(t0)))
	require.NoError(t, svc.Bootstrap(context.Background()))
	return svc, sub
}

func login(t *testing.T, svc *Service, username string) *store.Session {
	t.Helper()
	sess, err := svc.Login(context.Background(), username, "1234")
	require.NoError(t, err)
	return &sess
}

func TestBootstrap_Idempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Bootstrap(ctx))

	users, err := svc.Users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 5)

	posts, err := svc.Posts.List(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 5)

	for _, p := range posts {
		n, err := svc.Comments.Count(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, n, p.CommentCount, "seeded count for %s", p.ID)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "theo", "nope")
	assert.ErrorIs(t, err, store.ErrWrongPassword)

	sess := login(t, svc, "theo")
	assert.Equal(t, "u_theo", sess.ID)

	current, err := svc.Users.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, sess, current)
}

func TestRegisterLogsIn(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, "newuser", "abcd")
	require.NoError(t, err)
	assert.Equal(t, "newuser", sess.Username)
	assert.Equal(t, store.DefaultAvatar, sess.Avatar)

	_, err = svc.Register(ctx, "newuser", "abcd")
	assert.ErrorIs(t, err, store.ErrUsernameExists)
}

func TestCreatePost(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	alice := login(t, svc, "theo")

	p, err := svc.CreatePost(ctx, alice, PostDraft{Title: "  Deadlift form check  ", Body: "Is my back rounding at lockout?"})
	require.NoError(t, err)
	assert.Equal(t, "Deadlift form check", p.Title)
	assert.Equal(t, store.DefaultTag, p.Tag)
	assert.Equal(t, "theo", p.Author)
	assert.Equal(t, "u_theo", p.AuthorID)
	assert.Zero(t, p.Votes)

	posts, err := svc.Posts.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, p.ID, posts[0].ID)
}

func TestCreatePost_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	theo := login(t, svc, "theo")

	tests := []struct {
		name  string
		actor *store.Session
		draft PostDraft
		want  error
	}{
		{"logged out", nil, PostDraft{Title: "Valid title", Body: "Valid body text"}, ErrNotLoggedIn},
		{"short title", theo, PostDraft{Title: "Hey", Body: "Valid body text"}, ErrTitleTooShort},
		{"blank-padded title", theo, PostDraft{Title: "  ab   ", Body: "Valid body text"}, ErrTitleTooShort},
		{"short body", theo, PostDraft{Title: "Valid title", Body: "too short"}, ErrBodyTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePost(ctx, tt.actor, tt.draft)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	posts, err := svc.Posts.List(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 5, "rejected drafts are not stored")
}

func TestCreatePost_TagTruncated(t *testing.T) {
	svc, _ := newTestService(t)
	theo := login(t, svc, "theo")

	p, err := svc.CreatePost(context.Background(), theo, PostDraft{
		Title: "Valid title",
		Body:  "Valid body text",
		Tag:   strings.Repeat("t", 40),
	})
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("t", store.MaxTagLength), p.Tag)
}

func TestEditPost_Ownership(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	theo := login(t, svc, "theo")
	marc := login(t, svc, "marc")

	_, err := svc.EditPost(ctx, marc, "sample_post_1", "Hijacked body text")
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = svc.EditPost(ctx, theo, "sample_post_1", "short")
	assert.ErrorIs(t, err, ErrBodyTooShort)

	p, err := svc.EditPost(ctx, theo, "sample_post_1", "Switched to full body, thanks all")
	require.NoError(t, err)
	assert.Equal(t, "Switched to full body, thanks all", p.Body)
	assert.False(t, p.LastEdited.IsZero())

	_, err = svc.EditPost(ctx, theo, "p_missing", "Some body text here")
	assert.ErrorIs(t, err, store.ErrPostNotFound)
}

func TestOwnershipSurvivesRename(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	theo := login(t, svc, "theo")

	_, err := svc.UpdateProfile(ctx, theo, store.ProfileUpdate{Username: ptr("theodore")})
	require.NoError(t, err)
	renamed, err := svc.Users.Session(ctx)
	require.NoError(t, err)
	require.NotNil(t, renamed)
	assert.Equal(t, "theodore", renamed.Username)

	_, err = svc.EditPost(ctx, renamed, "sample_post_1", "Still my post after the rename")
	require.NoError(t, err)
}

func TestCanModify(t *testing.T) {
	post := store.Post{Author: "theo", AuthorID: "u_theo"}

	assert.True(t, CanModify(&store.Session{Username: "theo"}, post))
	assert.True(t, CanModify(&store.Session{ID: "u_theo", Username: "other"}, post))
	assert.False(t, CanModify(&store.Session{ID: "u_marc", Username: "marc"}, post))
	assert.False(t, CanModify(nil, post))

	legacy := store.Post{Author: "theo"}
	assert.False(t, CanModify(&store.Session{Username: "marc"}, legacy), "empty ids never match")
}

func TestDeletePost_CascadesComments(t *testing.T) {
	svc, sub := newTestService(t)
	ctx := context.Background()
	theo := login(t, svc, "theo")
	marc := login(t, svc, "marc")

	p, err := svc.CreatePost(ctx, theo, PostDraft{Title: "Bench PR", Body: "Hit 100kg today finally!"})
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, marc, p.ID, "Congrats!")
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, theo, p.ID, "Thanks bro")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeletePost(ctx, marc, p.ID), ErrNotOwner)
	require.NoError(t, svc.DeletePost(ctx, theo, p.ID))

	_, err = svc.Posts.Get(ctx, p.ID)
	assert.ErrorIs(t, err, store.ErrPostNotFound)

	raw, _, err := sub.Get(ctx, store.KeyComments)
	require.NoError(t, err)
	assert.NotContains(t, raw, p.ID)

	// Other posts keep their comments
	n, err := svc.Comments.Count(ctx, "sample_post_1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestVote(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Vote(ctx, nil, "sample_post_5", store.Upvote)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	nat := login(t, svc, "nathaniel")
	before, err := svc.Posts.Get(ctx, "sample_post_5")
	require.NoError(t, err)

	p, err := svc.Vote(ctx, nat, "sample_post_5", store.Upvote)
	require.NoError(t, err)
	assert.Equal(t, before.Votes+1, p.Votes)

	p, err = svc.Vote(ctx, nat, "sample_post_5", store.Downvote)
	require.NoError(t, err)
	assert.Equal(t, before.Votes-1, p.Votes)

	p, err = svc.Vote(ctx, nat, "sample_post_5", store.Downvote)
	require.NoError(t, err)
	assert.Equal(t, before.Votes, p.Votes)
	_, voted := p.VoteByUser["nathaniel"]
	assert.False(t, voted)
}

func TestComments_CountFollowsList(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	ian := login(t, svc, "ian")
	theo := login(t, svc, "theo")

	count := func() int {
		p, err := svc.Posts.Get(ctx, "sample_post_5")
		require.NoError(t, err)
		return p.CommentCount
	}
	require.Zero(t, count())

	c1, err := svc.AddComment(ctx, ian, "sample_post_5", "Nice progress")
	require.NoError(t, err)
	assert.Equal(t, 1, count())

	_, err = svc.AddComment(ctx, theo, "sample_post_5", "Agreed")
	require.NoError(t, err)
	assert.Equal(t, 2, count())

	edited, err := svc.EditComment(ctx, ian, "sample_post_5", c1.ID, "Nice progress, keep going")
	require.NoError(t, err)
	assert.Equal(t, "Nice progress, keep going", edited.Body)
	assert.False(t, edited.LastEdited.IsZero())
	assert.Equal(t, 2, count())

	require.NoError(t, svc.DeleteComment(ctx, ian, "sample_post_5", c1.ID))
	assert.Equal(t, 1, count())
}

func TestComments_HealsDriftedCount(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	ian := login(t, svc, "ian")

	drifted := 42
	_, err := svc.Posts.Edit(ctx, "sample_post_1", store.PostUpdate{CommentCount: &drifted})
	require.NoError(t, err)

	_, err = svc.AddComment(ctx, ian, "sample_post_1", "Full body 3x is great")
	require.NoError(t, err)

	p, err := svc.Posts.Get(ctx, "sample_post_1")
	require.NoError(t, err)
	assert.Equal(t, 3, p.CommentCount)
}

func TestComments_Permissions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	theo := login(t, svc, "theo")
	ian := login(t, svc, "ian")
	nat := login(t, svc, "nathaniel")

	// sample_comment_1 is marc's, on theo's sample_post_1
	_, err := svc.EditComment(ctx, theo, "sample_post_1", "sample_comment_1", "Edited by theo")
	assert.ErrorIs(t, err, ErrNotOwner, "post owner cannot edit others' comments")

	assert.ErrorIs(t, svc.DeleteComment(ctx, ian, "sample_post_1", "sample_comment_1"), ErrNotOwner)
	assert.ErrorIs(t, svc.DeleteComment(ctx, nat, "sample_post_1", "c_nope"), store.ErrCommentNotFound)

	require.NoError(t, svc.DeleteComment(ctx, theo, "sample_post_1", "sample_comment_1"), "post owner may delete")

	comments, err := svc.Comments.List(ctx, "sample_post_1")
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}

func TestComments_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	ian := login(t, svc, "ian")

	_, err := svc.AddComment(ctx, nil, "sample_post_1", "hello")
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = svc.AddComment(ctx, ian, "sample_post_1", "  k ")
	assert.ErrorIs(t, err, ErrCommentTooShort)

	_, err = svc.AddComment(ctx, ian, "p_missing", "hello")
	assert.ErrorIs(t, err, store.ErrPostNotFound)

	c, err := svc.AddComment(ctx, ian, "sample_post_1", "ok")
	require.NoError(t, err)
	_, err = svc.EditComment(ctx, ian, "sample_post_1", c.ID, "x")
	assert.ErrorIs(t, err, ErrCommentTooShort)
}

func TestLogWorkout(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	theo := login(t, svc, "theo")

	logs, err := svc.LogWorkout(ctx, theo, "", "Push day")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"2025-03-14": "Push day"}, logs)

	_, err = svc.LogWorkout(ctx, theo, "2025-03-15", strings.Repeat("x", MaxNoteLength+1))
	assert.ErrorIs(t, err, ErrNoteTooLong)

	_, err = svc.LogWorkout(ctx, theo, "2025-03-15", strings.Repeat("é", MaxNoteLength))
	require.NoError(t, err)

	_, err = svc.LogWorkout(ctx, theo, "15/03/2025", "Pull")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = svc.LogWorkout(ctx, nil, "", "Pull")
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	// Filed under the user id
	byID, err := svc.Workouts.ListForUser(ctx, "u_theo")
	require.NoError(t, err)
	assert.Len(t, byID, 2)

	mine, err := svc.WorkoutLogs(ctx, theo)
	require.NoError(t, err)
	assert.Equal(t, byID, mine)
}

func TestWorkoutKey(t *testing.T) {
	assert.Equal(t, "u_theo", WorkoutKey(&store.Session{ID: "u_theo", Username: "theo"}))
	assert.Equal(t, "legacy", WorkoutKey(&store.Session{Username: "legacy"}))
	assert.Equal(t, "", WorkoutKey(nil))
}

func TestUnavailableStorage(t *testing.T) {
	svc := New(failingSubstrate{})
	err := svc.Bootstrap(context.Background())
	assert.ErrorIs(t, err, kv.ErrUnavailable)
}

type failingSubstrate struct{}

func (failingSubstrate) Get(context.Context, string) (string, bool, error) {
	return "", false, kv.ErrUnavailable
}
func (failingSubstrate) Set(context.Context, string, string) error { return kv.ErrUnavailable }
func (failingSubstrate) Remove(context.Context, string) error      { return kv.ErrUnavailable }

func ptr[T any](v T) *T { return &v }

func TestBootstrap_DoesNotResurrectDeletedPosts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	owners := map[string]string{
		"sample_post_1": "theo",
		"sample_post_2": "marc",
		"sample_post_3": "nathaniel",
		"sample_post_4": "ian",
		"sample_post_5": "arturo",
	}
	for postID, owner := range owners {
		require.NoError(t, svc.DeletePost(ctx, login(t, svc, owner), postID))
	}

	require.NoError(t, svc.Bootstrap(ctx))

	posts, err := svc.Posts.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)

	for postID := range owners {
		comments, err := svc.Comments.List(ctx, postID)
		require.NoError(t, err)
		assert.Empty(t, comments, "comments for %s came back", postID)
	}
}

func TestBootstrap_SkipsFeedWhenUsersExist(t *testing.T) {
	sub := kv.NewMemory()
	svc := New(sub)
	ctx := context.Background()

	_, err := svc.Register(ctx, "early", "abcd")
	require.NoError(t, err)
	require.NoError(t, svc.Bootstrap(ctx))

	posts, err := svc.Posts.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)
	_, ok, err := sub.Get(ctx, store.KeyComments)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRename_CarriesVotesAndComments(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	theo := login(t, svc, "theo")

	seeded, err := svc.Posts.Get(ctx, "sample_post_2")
	require.NoError(t, err)
	require.Equal(t, 1, seeded.VoteByUser["theo"])

	c, err := svc.AddComment(ctx, theo, "sample_post_2", "Adobo is great for a cut")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, theo, store.ProfileUpdate{Username: ptr("theodore")})
	require.NoError(t, err)
	renamed, err := svc.Users.Session(ctx)
	require.NoError(t, err)
	require.NotNil(t, renamed)

	before, err := svc.Posts.Get(ctx, "sample_post_2")
	require.NoError(t, err)
	assert.Equal(t, 1, before.VoteByUser["theodore"])
	assert.NotContains(t, before.VoteByUser, "theo")

	// Voting the same way again retracts rather than double counting
	p, err := svc.Vote(ctx, renamed, "sample_post_2", store.Upvote)
	require.NoError(t, err)
	assert.Equal(t, before.Votes-1, p.Votes)
	assert.NotContains(t, p.VoteByUser, "theodore")

	edited, err := svc.EditComment(ctx, renamed, "sample_post_2", c.ID, "Adobo is great, add eggs")
	require.NoError(t, err)
	assert.Equal(t, "theodore", edited.Author)
	require.NoError(t, svc.DeleteComment(ctx, renamed, "sample_post_2", c.ID))

	own, err := svc.Posts.Get(ctx, "sample_post_1")
	require.NoError(t, err)
	assert.Equal(t, "theodore", own.Author)
}

func TestRename_MovesWorkoutsForSessionsWithoutID(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	legacy := &store.Session{Username: "ian"}

	_, err := svc.LogWorkout(ctx, legacy, "2025-03-14", "Deadlifts")
	require.NoError(t, err)
	_, err = svc.UpdateProfile(ctx, legacy, store.ProfileUpdate{Username: ptr("ian_lifts")})
	require.NoError(t, err)

	logs, err := svc.WorkoutLogs(ctx, &store.Session{Username: "ian_lifts"})
	require.NoError(t, err)
	assert.Equal(t, "Deadlifts", logs["2025-03-14"])
}

func TestDeleteComment_OrphanReportsMissingPost(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	marc := login(t, svc, "marc")

	comments, err := svc.Comments.Create(ctx, "p_gone", store.Comment{Author: "theo", Body: "orphan"})
	require.NoError(t, err)

	err = svc.DeleteComment(ctx, marc, "p_gone", comments[0].ID)
	assert.ErrorIs(t, err, store.ErrPostNotFound)
	assert.NotErrorIs(t, err, ErrNotOwner)
}
