// ABOUTME: Tests for shared store types and their persisted JSON shape
// ABOUTME: Field names and millisecond timestamps must match existing saved data

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinoyflex/pinoyflex/internal/kv"
)

func TestTimestamp(t *testing.T) {
	ts := TimestampOf(baseTime)
	assert.Equal(t, Timestamp(baseTime.UnixMilli()), ts)
	assert.True(t, ts.Time().Equal(baseTime))
	assert.False(t, ts.IsZero())
	assert.True(t, Timestamp(0).IsZero())
}

func TestDirection_Valid(t *testing.T) {
	assert.True(t, Upvote.Valid())
	assert.True(t, Downvote.Valid())
	assert.False(t, Direction(0).Valid())
	assert.False(t, Direction(2).Valid())
}

func TestPost_JSONLayout(t *testing.T) {
	p := Post{
		ID:           "p_1710408600000",
		Title:        "Hello",
		Body:         "World",
		Tag:          "Form",
		Author:       "theo",
		AuthorID:     "u_theo",
		CreatedAt:    1710408600000,
		Votes:        1,
		VoteByUser:   map[string]int{"marc": 1},
		Images:       []string{},
		CommentCount: 2,
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "p_1710408600000",
		"title": "Hello",
		"body": "World",
		"tag": "Form",
		"author": "theo",
		"authorId": "u_theo",
		"createdAt": 1710408600000,
		"votes": 1,
		"voteByUser": {"marc": 1},
		"images": [],
		"commentCount": 2
	}`, string(data))
}

func TestPost_DecodesLegacyRecord(t *testing.T) {
	// Records written before authorId existed
	raw := `{"id":"p_1","title":"Old","body":"Old body","tag":"General","author":"ian",
		"createdAt":1700000000000,"votes":0,"voteByUser":{},"images":[],"commentCount":0,"lastEdited":1700000001000}`

	var p Post
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	assert.Empty(t, p.AuthorID)
	assert.Equal(t, Timestamp(1700000001000), p.LastEdited)
}

func TestComment_JSONLayout(t *testing.T) {
	c := Comment{ID: "c_5", PostID: "p_1", Author: "marc", Body: "nice", CreatedAt: 5}

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"c_5","postId":"p_1","author":"marc","body":"nice","createdAt":5}`, string(data))
}

func TestSession_JSONLayout(t *testing.T) {
	data, err := json.Marshal(Session{ID: "u_theo", Username: "theo", Avatar: "/a.png"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"u_theo","username":"theo","avatar":"/a.png"}`, string(data))
}

func TestOptions_LoggerCarriesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	sub := kv.NewMemory()
	require.NoError(t, sub.Set(context.Background(), KeyTags, "not json"))

	r := NewTagRegistry(sub, WithLogger(logger))
	_, err := r.List(context.Background())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "component=tags")
	assert.Contains(t, out, KeyTags)
}

func TestOptions_Defaults(t *testing.T) {
	o := buildOptions("x", nil)
	assert.NotNil(t, o.logger)
	assert.NotNil(t, o.hasher)
	assert.WithinDuration(t, time.Now(), o.now(), time.Minute)
}
