package services

import (
	"fmt"
	"testing"

	"communityhub/internal/db"
	"communityhub/internal/models"

	"github.com/stretchr/testify/require"
)

func createUser(t *testing.T, name string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: fmt.Sprintf("%s@example.org", name), City: "Pune"}
	require.NoError(t, db.DB.Create(user).Error)
	return user
}

func issueInput(userID uint, title string) CreateItemInput {
	return CreateItemInput{
		UserID:      userID,
		Type:        "issue",
		Title:       title,
		Description: "Broken streetlight near the park",
		Latitude:    "18.5204",
		Longitude:   "73.8567",
		City:        "Pune",
		Field: func(name string) string {
			if name == "category" {
				return "infrastructure"
			}
			return ""
		},
	}
}

func createItem(t *testing.T, userID uint, title string) *models.Item {
	t.Helper()
	item, err := PrepareItem(issueInput(userID, title))
	require.NoError(t, err)
	require.NoError(t, CreateItem(item))
	return item
}
