package services

import (
	"testing"

	"communityhub/internal/apperr"
	"communityhub/internal/db/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleFollow(t *testing.T) {
	dbtest.Setup(t)
	ravi := createUser(t, "ravi")
	meera := createUser(t, "meera")

	_, err := ToggleFollow(ravi.ID, ravi.ID)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	_, err = ToggleFollow(ravi.ID, 4242)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	res, err := ToggleFollow(ravi.ID, meera.ID)
	require.NoError(t, err)
	assert.True(t, res.Following)
	assert.EqualValues(t, 1, res.FollowersCount)
	assert.EqualValues(t, 1, res.FollowingCount)

	following, err := IsFollowing(ravi.ID, meera.ID)
	require.NoError(t, err)
	assert.True(t, following)

	followers, err := ListFollowers(meera.ID, meera.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, "ravi", followers[0].Name)
	assert.False(t, followers[0].IsFollowing)

	list, err := ListFollowing(ravi.ID, ravi.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, meera.ID, list[0].ID)
	assert.True(t, list[0].IsFollowing)

	res, err = ToggleFollow(ravi.ID, meera.ID)
	require.NoError(t, err)
	assert.False(t, res.Following)
	assert.EqualValues(t, 0, res.FollowersCount)
	assert.EqualValues(t, 0, res.FollowingCount)
}
