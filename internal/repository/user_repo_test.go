package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/codecoach/codecoach-api/internal/models"
)

func TestDeleteCascadeRemovesDependentRows(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	victim := createTestUser(t, db, "victim@example.com", true)
	survivor := createTestUser(t, db, "survivor@example.com", true)
	problem, language := createTestProblem(t, db)

	for _, owner := range []models.User{victim, survivor} {
		submission := models.Submission{
			UserID: owner.ID, ProblemID: problem.ID, LanguageID: language.ID,
			SubmittedCode: "print(1+1)", JudgeToken: owner.Email, Status: models.SubmissionStatusPending,
		}
		require.NoError(t, db.Create(&submission).Error)

		key := models.APIKey{UserID: owner.ID, KeyName: "key", KeyValue: "sk"}
		require.NoError(t, db.Create(&key).Error)

		conversation := models.AIConversation{UserID: owner.ID, Title: "help"}
		require.NoError(t, db.Create(&conversation).Error)
		message := models.AIMessage{
			ConversationID: conversation.ID,
			Role:           models.AIMessageRoleUser,
			Content:        "why?",
			Tokens:         3,
			Raw:            datatypes.JSONMap{"usage": "test"},
		}
		require.NoError(t, db.Create(&message).Error)
	}

	require.NoError(t, repo.DeleteCascade(context.Background(), victim.ID))

	// exactly the survivor's rows remain
	for name, model := range map[string]interface{}{
		"submissions":   &models.Submission{},
		"api_keys":      &models.APIKey{},
		"conversations": &models.AIConversation{},
		"messages":      &models.AIMessage{},
		"users":         &models.User{},
	} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		require.EqualValues(t, 1, count, "unexpected rows left in %s", name)
	}
}

func TestDeleteUnconfirmedBefore(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	stale := models.User{Email: "stale@example.com", PasswordHash: "x", CreatedAt: time.Now().Add(-48 * time.Hour)}
	fresh := models.User{Email: "fresh@example.com", PasswordHash: "x", CreatedAt: time.Now()}
	confirmed := models.User{Email: "confirmed@example.com", PasswordHash: "x", EmailConfirmed: true, CreatedAt: time.Now().Add(-48 * time.Hour)}
	for _, u := range []*models.User{&stale, &fresh, &confirmed} {
		require.NoError(t, db.Create(u).Error)
	}

	deleted, err := repo.DeleteUnconfirmedBefore(context.Background(), time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	var remaining []models.User
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 2)
	for _, u := range remaining {
		require.NotEqual(t, "stale@example.com", u.Email)
	}
}

func TestConfirmEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	user := createTestUser(t, db, "new@example.com", false)

	require.NoError(t, repo.ConfirmEmail(context.Background(), user.ID))

	refreshed, err := repo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.True(t, refreshed.EmailConfirmed)
}
