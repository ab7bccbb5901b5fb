package service

import (
	"context"
	"testing"

	"skillhive/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedService_CreateLikeComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Feed.Create(ctx, CreatePostInput{UserID: "4", Title: "Brush tips", Content: "Use a soft round brush.", Type: models.PostTip})
	require.NoError(t, err)

	posts, err := f.svc.Feed.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, posts)
	assert.Equal(t, p.ID, posts[0].ID)

	p, err = f.svc.Feed.ToggleLike(ctx, p.ID, "5")
	require.NoError(t, err)
	assert.Equal(t, []string{"5"}, p.Likes)

	p, err = f.svc.Feed.ToggleLike(ctx, p.ID, "5")
	require.NoError(t, err)
	assert.Empty(t, p.Likes)

	p, err = f.svc.Feed.AddComment(ctx, p.ID, "6", CommentInput{Text: "Thanks!"})
	require.NoError(t, err)
	require.Len(t, p.Comments, 1)
	assert.Equal(t, "6", p.Comments[0].UserID)

	_, err = f.svc.Feed.AddComment(ctx, p.ID, "6", CommentInput{Text: " "})
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))

	_, err = f.svc.Feed.ToggleLike(ctx, "missing", "5")
	assert.True(t, models.IsNotFound(err))
}

func TestFeedService_AIReply(t *testing.T) {
	f := newFixture(t)
	var gotTitle string
	f.svc.Feed.replier = replierStub{replyFn: func(_ context.Context, title, _ string) string {
		gotTitle = title
		return "Try spaced repetition."
	}}

	p, err := f.svc.Feed.Create(context.Background(), CreatePostInput{UserID: "4", Title: "How to memorise verbs?", Content: "Any tips?", Type: models.PostQuestion})
	require.NoError(t, err)

	reply, err := f.svc.Feed.AIReply(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Try spaced repetition.", reply)
	assert.Equal(t, "How to memorise verbs?", gotTitle)
}
