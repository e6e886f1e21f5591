package services

import (
	"testing"

	"communityhub/internal/apperr"
	"communityhub/internal/db"
	"communityhub/internal/db/dbtest"
	"communityhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	dbtest.Setup(t)
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	user := &models.User{Name: "Kiran", Email: "kiran@example.org", PasswordHash: hash}
	require.NoError(t, db.DB.Create(user).Error)
	otpOnly := createUser(t, "otponly")

	got, err := Authenticate("kiran@example.org", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = Authenticate("kiran@example.org", "wrong")
	assert.True(t, apperr.Is(err, apperr.CodeAuthRequired))
	_, err = Authenticate("nobody@example.org", "secret1")
	assert.True(t, apperr.Is(err, apperr.CodeAuthRequired))
	_, err = Authenticate(otpOnly.Email, "")
	assert.True(t, apperr.Is(err, apperr.CodeAuthRequired))

	require.NoError(t, ResetPassword("kiran@example.org", "newpass"))
	_, err = Authenticate("kiran@example.org", "newpass")
	assert.NoError(t, err)
}

func TestFindOrCreateUserByEmail(t *testing.T) {
	dbtest.Setup(t)

	first, err := FindOrCreateUserByEmail("newbie@example.org")
	require.NoError(t, err)
	assert.Equal(t, "newbie", first.Name)

	again, err := FindOrCreateUserByEmail("newbie@example.org")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	missing, err := FindUserByEmail("ghost@example.org")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFindOrCreateGoogleUser(t *testing.T) {
	dbtest.Setup(t)
	existing := createUser(t, "linked")

	got, err := FindOrCreateGoogleUser("g-1", existing.Email, "Linked Name")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, got.ID)

	byID, err := FindOrCreateGoogleUser("g-1", "changed@example.org", "")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, byID.ID)

	created, err := FindOrCreateGoogleUser("g-2", "fresh@example.org", "")
	require.NoError(t, err)
	assert.NotEqual(t, existing.ID, created.ID)
	assert.Equal(t, "fresh", created.Name)
}

func TestProfileAndStats(t *testing.T) {
	dbtest.Setup(t)
	owner := createUser(t, "owner")
	viewer := createUser(t, "viewer")
	createItem(t, owner.ID, "Open")
	resolved := createItem(t, owner.ID, "Done")
	deleted := createItem(t, owner.ID, "Oops")
	_, err := UpdateStatus(owner.ID, resolved.ID, "resolved")
	require.NoError(t, err)
	require.NoError(t, DeleteItem(owner.ID, deleted.ID))
	_, err = ToggleFollow(viewer.ID, owner.ID)
	require.NoError(t, err)

	view, err := GetProfile(viewer.ID, owner.ID)
	require.NoError(t, err)
	assert.False(t, view.IsSelf)
	assert.True(t, view.IsFollowing)
	assert.Empty(t, view.User.Email)
	assert.EqualValues(t, 2, view.Stats.TotalItems)
	assert.EqualValues(t, 1, view.Stats.ResolvedItems)
	assert.EqualValues(t, 1, view.Stats.FollowersCount)
	assert.Equal(t, 3, view.Stats.Reputation)

	self, err := GetProfile(owner.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, self.IsSelf)
	assert.Equal(t, owner.Email, self.User.Email)

	_, err = GetProfile(owner.ID, 999)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestUpdateProfile(t *testing.T) {
	dbtest.Setup(t)
	me := createUser(t, "me")
	other := createUser(t, "other")

	_, err := UpdateProfile(me.ID, UpdateProfileInput{Name: "Me", Email: other.Email})
	require.Error(t, err)
	assert.Equal(t, 409, apperr.From(err).Status)

	_, err = UpdateProfile(me.ID, UpdateProfileInput{Name: "", Email: me.Email})
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	goa := "Goa"
	updated, err := UpdateProfile(me.ID, UpdateProfileInput{
		Name: "Me Updated", Email: "ME.new@example.org", Contact: "555-1234",
		Bio: "<script>x</script>Hello", City: &goa, ProfileImage: "/uploads/a.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "Me Updated", updated.Name)
	assert.Equal(t, "me.new@example.org", updated.Email)
	assert.Equal(t, "Goa", updated.City)

	// 第二次更新覆盖同一条扩展资料
	_, err = UpdateProfile(me.ID, UpdateProfileInput{Name: "Me Updated", Email: "me.new@example.org", Bio: "Second"})
	require.NoError(t, err)

	var profiles []models.UserProfile
	require.NoError(t, db.DB.Where("user_id = ?", me.ID).Find(&profiles).Error)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Second", profiles[0].Bio)
}

func TestUpdateProfileKeepsCityWhenOmitted(t *testing.T) {
	dbtest.Setup(t)
	me := createUser(t, "citizen")

	updated, err := UpdateProfile(me.ID, UpdateProfileInput{Name: "Citizen", Email: me.Email, Bio: "Hi"})
	require.NoError(t, err)
	assert.Equal(t, "Pune", updated.City)

	empty := ""
	updated, err = UpdateProfile(me.ID, UpdateProfileInput{Name: "Citizen", Email: me.Email, City: &empty})
	require.NoError(t, err)
	assert.Empty(t, updated.City)
}

func TestFindOrCreateGoogleUserPrefersGoogleID(t *testing.T) {
	dbtest.Setup(t)
	linked := createUser(t, "alpha")
	require.NoError(t, db.DB.Model(linked).Update("google_id", "g-9").Error)
	other := createUser(t, "beta")

	// google id 与邮箱分属两个用户时，以 google id 为准
	got, err := FindOrCreateGoogleUser("g-9", other.Email, "")
	require.NoError(t, err)
	assert.Equal(t, linked.ID, got.ID)

	var reloaded models.User
	require.NoError(t, db.DB.First(&reloaded, other.ID).Error)
	assert.Empty(t, reloaded.GoogleID)
}
