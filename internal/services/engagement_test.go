package services

import (
	"context"
	"testing"

	"communityhub/internal/apperr"
	"communityhub/internal/db/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReactIsIdempotent(t *testing.T) {
	dbtest.Setup(t)
	author := createUser(t, "author")
	fan := createUser(t, "fan")
	item := createItem(t, author.ID, "Street fair")

	likes, err := React(fan.ID, item.ID, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, likes)

	likes, err = React(fan.ID, item.ID, "like")
	require.NoError(t, err)
	assert.EqualValues(t, 1, likes)

	likes, err = React(author.ID, item.ID, "like")
	require.NoError(t, err)
	assert.EqualValues(t, 2, likes)

	_, err = React(fan.ID, item.ID, "angry")
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	_, err = React(fan.ID, 9999, "like")
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))
}

func TestToggleShareTwiceRestoresState(t *testing.T) {
	dbtest.Setup(t)
	author := createUser(t, "author")
	fan := createUser(t, "fan")
	item := createItem(t, author.ID, "Blood drive")

	shared, count, err := ToggleShare(fan.ID, item.ID)
	require.NoError(t, err)
	assert.True(t, shared)
	assert.EqualValues(t, 1, count)

	shared, count, err = ToggleShare(fan.ID, item.ID)
	require.NoError(t, err)
	assert.False(t, shared)
	assert.EqualValues(t, 0, count)
}

func TestAddComment(t *testing.T) {
	dbtest.Setup(t)
	author := createUser(t, "author")
	fan := createUser(t, "fan")
	item := createItem(t, author.ID, "Water cut")
	otherItem := createItem(t, author.ID, "Another")

	_, _, err := AddComment(fan.ID, item.ID, "   ", nil)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	first, count, err := AddComment(fan.ID, item.ID, "Same on our street", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	assert.Nil(t, first.ParentCommentID)

	reply, count, err := AddComment(author.ID, item.ID, "Thanks, reported", &first.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	require.NotNil(t, reply.ParentCommentID)
	assert.Equal(t, first.ID, *reply.ParentCommentID)

	_, _, err = AddComment(fan.ID, otherItem.ID, "wrong thread", &first.ID)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	require.NoError(t, DeleteItem(author.ID, item.ID))
	_, _, err = AddComment(fan.ID, item.ID, "too late", nil)
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))
}

func TestEngagementScoreOrdersTrending(t *testing.T) {
	dbtest.Setup(t)
	ctx := context.Background()
	author := createUser(t, "author")
	a := createUser(t, "a")
	b := createUser(t, "b")

	quiet := createItem(t, author.ID, "Quiet")
	busy := createItem(t, author.ID, "Busy")

	// 2 赞 1 评论 2 分享 = 2*2 + 1 + 2*3 = 11
	_, err := React(a.ID, busy.ID, "like")
	require.NoError(t, err)
	_, err = React(b.ID, busy.ID, "like")
	require.NoError(t, err)
	_, _, err = AddComment(a.ID, busy.ID, "+1", nil)
	require.NoError(t, err)
	_, _, err = ToggleShare(a.ID, busy.ID)
	require.NoError(t, err)
	_, _, err = ToggleShare(b.ID, busy.ID)
	require.NoError(t, err)

	page, err := Trending(ctx, a.ID, TrendingParams{Sort: TrendingSortPopular, Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, busy.ID, page.Items[0].ID)
	assert.EqualValues(t, 11, page.Items[0].EngagementScore)
	assert.EqualValues(t, 2, page.Items[0].LikeCount)
	assert.EqualValues(t, 1, page.Items[0].CommentCount)
	assert.EqualValues(t, 2, page.Items[0].ShareCount)
	assert.Equal(t, 1, page.Items[0].Rank)
	assert.Equal(t, quiet.ID, page.Items[1].ID)
	assert.Equal(t, 2, page.Items[1].Rank)

	// 第二页的名次接着第一页
	page, err = Trending(ctx, a.ID, TrendingParams{Sort: TrendingSortPopular, Page: 2, Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 2, page.Items[0].Rank)

	recent, err := Trending(ctx, a.ID, TrendingParams{Sort: TrendingSortRecent, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, busy.ID, recent.Items[0].ID)
}
