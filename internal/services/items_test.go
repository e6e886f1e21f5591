package services

import (
	"context"
	"testing"

	"communityhub/internal/apperr"
	"communityhub/internal/db"
	"communityhub/internal/db/dbtest"
	"communityhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareItemValidation(t *testing.T) {
	in := issueInput(1, "")
	_, err := PrepareItem(in)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
	assert.Equal(t, "Missing required fields", apperr.From(err).Message)

	in = issueInput(1, "Pothole")
	in.Type = "rumour"
	_, err = PrepareItem(in)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	in = issueInput(1, "Pothole")
	in.Latitude = "91"
	_, err = PrepareItem(in)
	assert.Equal(t, "location", apperr.From(err).Field)

	in = issueInput(1, "Pothole")
	in.Field = nil
	_, err = PrepareItem(in)
	assert.Equal(t, "category", apperr.From(err).Field)

	item, err := PrepareItem(issueInput(1, "  <b>Pothole</b> "))
	require.NoError(t, err)
	assert.Equal(t, "Pothole", item.Title)
	assert.Equal(t, models.StatusReported, item.Status)
	assert.Equal(t, models.SeverityMedium, item.Severity)
	assert.JSONEq(t, `[]`, string(item.MediaURLs))
	assert.JSONEq(t, `{"category":"infrastructure"}`, string(item.Details))
}

func TestCreateItemAddsReputation(t *testing.T) {
	dbtest.Setup(t)
	user := createUser(t, "asha")

	item := createItem(t, user.ID, "Pothole")
	assert.NotZero(t, item.ID)

	var reloaded models.User
	require.NoError(t, db.DB.First(&reloaded, user.ID).Error)
	assert.Equal(t, 1, reloaded.ReputationScore)

	var logs int64
	db.DB.Model(&models.ReputationLog{}).Where("user_id = ?", user.ID).Count(&logs)
	assert.EqualValues(t, 1, logs)
}

func TestUpdateItemOwnership(t *testing.T) {
	dbtest.Setup(t)
	owner := createUser(t, "owner")
	other := createUser(t, "other")
	item := createItem(t, owner.ID, "Original")

	_, err := UpdateItem(other.ID, item.ID, UpdateItemInput{Title: "Hijacked", Description: "x", Type: "issue"})
	require.Error(t, err)
	assert.Equal(t, 403, apperr.From(err).Status)

	var unchanged models.Item
	require.NoError(t, db.DB.First(&unchanged, item.ID).Error)
	assert.Equal(t, "Original", unchanged.Title)

	updated, err := UpdateItem(owner.ID, item.ID, UpdateItemInput{Title: "Edited", Description: "Fixed text", Type: "notice", City: "Mumbai"})
	require.NoError(t, err)
	assert.Equal(t, "Edited", updated.Title)
	assert.Equal(t, models.ItemTypeNotice, updated.Type)
	assert.Equal(t, "Mumbai", updated.City)

	history, err := ItemHistory(item.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.StatusReported, history[0].OldStatus)
	assert.Equal(t, models.StatusReported, history[0].NewStatus)
}

func TestDeleteItemHidesEverywhere(t *testing.T) {
	dbtest.Setup(t)
	ctx := context.Background()
	owner := createUser(t, "owner")
	item := createItem(t, owner.ID, "Temporary")
	kept := createItem(t, owner.ID, "Kept")

	assert.True(t, apperr.Is(DeleteItem(createUser(t, "intruder").ID, item.ID), apperr.CodeForbidden))
	require.NoError(t, DeleteItem(owner.ID, item.ID))

	var row models.Item
	require.NoError(t, db.DB.First(&row, item.ID).Error)
	assert.Equal(t, models.StatusClosed, row.Status)
	assert.True(t, row.IsDeleted())

	history, err := ItemHistory(item.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.StatusReported, history[0].OldStatus)
	assert.Equal(t, models.StatusDeleted, history[0].NewStatus)

	onlyKept := func(rows []ItemSummary) {
		t.Helper()
		require.Len(t, rows, 1)
		assert.Equal(t, kept.ID, rows[0].ID)
	}

	listed, err := ListItems(ctx, 0, ItemFilter{})
	require.NoError(t, err)
	onlyKept(listed)

	feed, err := Feed(ctx, owner.ID, FeedParams{View: FeedViewForYou, Page: 1, Limit: 10})
	require.NoError(t, err)
	onlyKept(feed.Items)

	trending, err := Trending(ctx, owner.ID, TrendingParams{Sort: TrendingSortPopular, Page: 1, Limit: 10})
	require.NoError(t, err)
	onlyKept(trending.Items)

	posts, err := UserPosts(ctx, owner.ID, owner.ID, 10, 0)
	require.NoError(t, err)
	onlyKept(posts)

	summary, err := GetItemSummary(ctx, owner.ID, item.ID)
	require.NoError(t, err)
	assert.Nil(t, summary)

	// 已删除的条目不能再次删除或修改
	assert.True(t, apperr.Is(DeleteItem(owner.ID, item.ID), apperr.CodeForbidden))
	_, err = UpdateStatus(owner.ID, item.ID, "resolved")
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))
}

func TestUpdateStatusClosedLeavesFeed(t *testing.T) {
	dbtest.Setup(t)
	ctx := context.Background()
	owner := createUser(t, "owner")
	item := createItem(t, owner.ID, "Closing soon")

	_, err := UpdateStatus(owner.ID, item.ID, "archived")
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
	_, err = UpdateStatus(owner.ID, item.ID, "deleted")
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	updated, err := UpdateStatus(owner.ID, item.ID, "closed")
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, updated.Status)

	feed, err := Feed(ctx, owner.ID, FeedParams{View: FeedViewForYou, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, feed.Items)

	// 关闭的条目仍出现在列表中
	listed, err := ListItems(ctx, 0, ItemFilter{Status: "closed"})
	require.NoError(t, err)
	require.Len(t, listed, 1)

	// 重新打开后回到信息流
	_, err = UpdateStatus(owner.ID, item.ID, "in_progress")
	require.NoError(t, err)
	feed, err = Feed(ctx, owner.ID, FeedParams{View: FeedViewForYou, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, feed.Items, 1)

	history, err := ItemHistory(item.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.StatusClosed, history[1].OldStatus)
	assert.Equal(t, models.StatusInProgress, history[1].NewStatus)
}
