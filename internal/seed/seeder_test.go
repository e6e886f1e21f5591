package seed

import (
	"testing"

	"communityhub/internal/db/dbtest"
	"communityhub/internal/models"
	"communityhub/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDev(t *testing.T) {
	conn := dbtest.Setup(t)

	require.NoError(t, NewSeeder(conn).SeedDev(3, 5))

	var users, items, profiles int64
	conn.Model(&models.User{}).Count(&users)
	conn.Model(&models.Item{}).Count(&items)
	conn.Model(&models.UserProfile{}).Count(&profiles)
	assert.EqualValues(t, 3, users)
	assert.EqualValues(t, 5, items)
	assert.EqualValues(t, 3, profiles)

	// 种子用户可以用默认密码登录
	var first models.User
	require.NoError(t, conn.First(&first).Error)
	_, err := services.Authenticate(first.Email, DefaultPassword)
	assert.NoError(t, err)
}
