package services

import (
	"context"
	"testing"
	"time"

	"communityhub/internal/db/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeActivitiesNewestFirst(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	posts := []Activity{{Type: ActivityPost, ItemID: 1, CreatedAt: base}}
	likes := []Activity{
		{Type: ActivityLike, ItemID: 2, CreatedAt: base.Add(2 * time.Hour)},
		{Type: ActivityLike, ItemID: 3, CreatedAt: base.Add(-time.Hour)},
	}
	comments := []Activity{{Type: ActivityComment, ItemID: 4, CreatedAt: base.Add(time.Hour)}}

	merged := MergeActivities(posts, likes, comments, nil)
	require.Len(t, merged, 4)
	var ids []uint
	for _, a := range merged {
		ids = append(ids, a.ItemID)
	}
	assert.Equal(t, []uint{2, 4, 1, 3}, ids)
}

func TestRecentActivity(t *testing.T) {
	dbtest.Setup(t)
	ctx := context.Background()
	me := createUser(t, "me")
	author := createUser(t, "author")

	mine := createItem(t, me.ID, "My post")
	theirs := createItem(t, author.ID, "Their post")
	gone := createItem(t, author.ID, "Gone soon")

	_, err := React(me.ID, theirs.ID, "like")
	require.NoError(t, err)
	_, _, err = AddComment(me.ID, theirs.ID, "Nice", nil)
	require.NoError(t, err)
	_, _, err = ToggleShare(me.ID, gone.ID)
	require.NoError(t, err)
	require.NoError(t, DeleteItem(author.ID, gone.ID))

	page, err := RecentActivity(ctx, me.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Activities, 3)
	assert.False(t, page.HasMore)

	kinds := map[string]uint{}
	for _, a := range page.Activities {
		kinds[a.Type] = a.ItemID
	}
	assert.Equal(t, mine.ID, kinds[ActivityPost])
	assert.Equal(t, theirs.ID, kinds[ActivityLike])
	assert.Equal(t, theirs.ID, kinds[ActivityComment])
	_, hasShare := kinds[ActivityShare]
	assert.False(t, hasShare, "activity on deleted items is hidden")

	page, err = RecentActivity(ctx, me.ID, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page.Activities, 1)

	page, err = RecentActivity(ctx, me.ID, 5, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Activities)
}
