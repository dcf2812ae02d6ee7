package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/codecoach/codecoach-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	// One connection: every session sees the same in-memory database and
	// sqlite writes serialize at the pool instead of failing with SQLITE_BUSY.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Problem{},
		&models.ProblemLanguage{},
		&models.Submission{},
		&models.AIConversation{},
		&models.AIMessage{},
		&models.APIKey{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string, confirmed bool) models.User {
	t.Helper()

	user := models.User{Email: email, Name: "Test User", PasswordHash: "x", EmailConfirmed: confirmed}
	require.NoError(t, db.Create(&user).Error)
	return user
}
