package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/codecoach/codecoach-api/internal/models"
)

func activeKeyCount(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.APIKey{}).Where("user_id = ? AND is_active = ?", userID, true).Count(&count).Error)
	return count
}

func TestSetActiveDeactivatesSiblings(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAPIKeyRepository(db)
	user := createTestUser(t, db, "owner@example.com", true)

	first := models.APIKey{UserID: user.ID, KeyName: "first", KeyValue: "sk-1", IsActive: true}
	second := models.APIKey{UserID: user.ID, KeyName: "second", KeyValue: "sk-2"}
	require.NoError(t, repo.Create(context.Background(), &first))
	require.NoError(t, repo.Create(context.Background(), &second))

	ok, err := repo.SetActive(context.Background(), second.ID, user.ID)
	require.NoError(t, err)
	require.True(t, ok)

	require.EqualValues(t, 1, activeKeyCount(t, db, user.ID))

	active, err := repo.GetActiveByUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, second.ID, active.ID)
}

func TestSetActiveConcurrentCallsKeepOneActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAPIKeyRepository(db)
	user := createTestUser(t, db, "owner@example.com", true)

	first := models.APIKey{UserID: user.ID, KeyName: "first", KeyValue: "sk-1"}
	second := models.APIKey{UserID: user.ID, KeyName: "second", KeyValue: "sk-2"}
	require.NoError(t, repo.Create(context.Background(), &first))
	require.NoError(t, repo.Create(context.Background(), &second))

	var wg sync.WaitGroup
	for _, id := range []uint{first.ID, second.ID} {
		wg.Add(1)
		go func(target uint) {
			defer wg.Done()
			ok, err := repo.SetActive(context.Background(), target, user.ID)
			require.NoError(t, err)
			require.True(t, ok)
		}(id)
	}
	wg.Wait()

	// Whichever activation lands last wins; never both.
	require.EqualValues(t, 1, activeKeyCount(t, db, user.ID))
}

func TestSetActiveForeignKeyLeavesRowsUnchanged(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAPIKeyRepository(db)
	owner := createTestUser(t, db, "owner@example.com", true)
	other := createTestUser(t, db, "other@example.com", true)

	ownerKey := models.APIKey{UserID: owner.ID, KeyName: "mine", KeyValue: "sk-1", IsActive: true}
	require.NoError(t, repo.Create(context.Background(), &ownerKey))

	// other user targets a key they do not own
	ok, err := repo.SetActive(context.Background(), ownerKey.ID, other.ID)
	require.NoError(t, err)
	require.False(t, ok)

	// owner's active key is untouched by the rolled-back transaction
	require.EqualValues(t, 1, activeKeyCount(t, db, owner.ID))
	refreshed, err := repo.GetByIDForUser(context.Background(), ownerKey.ID, owner.ID)
	require.NoError(t, err)
	require.True(t, refreshed.IsActive)
}

func TestSetActiveSequenceKeepsAtMostOneActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAPIKeyRepository(db)
	user := createTestUser(t, db, "owner@example.com", true)

	var ids []uint
	for _, name := range []string{"a", "b", "c"} {
		key := models.APIKey{UserID: user.ID, KeyName: name, KeyValue: "sk-" + name}
		require.NoError(t, repo.Create(context.Background(), &key))
		ids = append(ids, key.ID)
	}

	require.EqualValues(t, 0, activeKeyCount(t, db, user.ID))

	for _, id := range []uint{ids[0], ids[2], ids[1], ids[1], ids[0]} {
		ok, err := repo.SetActive(context.Background(), id, user.ID)
		require.NoError(t, err)
		require.True(t, ok)
		require.EqualValues(t, 1, activeKeyCount(t, db, user.ID))
	}
}

func TestDeleteScopedByOwner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAPIKeyRepository(db)
	owner := createTestUser(t, db, "owner@example.com", true)
	other := createTestUser(t, db, "other@example.com", true)

	key := models.APIKey{UserID: owner.ID, KeyName: "mine", KeyValue: "sk-1"}
	require.NoError(t, repo.Create(context.Background(), &key))

	deleted, err := repo.Delete(context.Background(), key.ID, other.ID)
	require.NoError(t, err)
	require.False(t, deleted)

	deleted, err = repo.Delete(context.Background(), key.ID, owner.ID)
	require.NoError(t, err)
	require.True(t, deleted)
}

func TestIncrementUsage(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAPIKeyRepository(db)
	user := createTestUser(t, db, "owner@example.com", true)

	key := models.APIKey{UserID: user.ID, KeyName: "mine", KeyValue: "sk-1"}
	require.NoError(t, repo.Create(context.Background(), &key))

	require.NoError(t, repo.IncrementUsage(context.Background(), key.ID))
	require.NoError(t, repo.IncrementUsage(context.Background(), key.ID))

	refreshed, err := repo.GetByIDForUser(context.Background(), key.ID, user.ID)
	require.NoError(t, err)
	require.Equal(t, 2, refreshed.UsageCount)
}
