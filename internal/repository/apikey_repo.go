package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/codecoach/codecoach-api/internal/models"
)

// APIKeyRepository persists per-user third-party credentials. All lookups are
// scoped by the owning user so foreign ids behave like missing rows.
type APIKeyRepository interface {
	Create(ctx context.Context, key *models.APIKey) error
	Update(ctx context.Context, key *models.APIKey) error
	GetByIDForUser(ctx context.Context, id, userID uint) (models.APIKey, error)
	GetActiveByUser(ctx context.Context, userID uint) (models.APIKey, error)
	ListByUser(ctx context.Context, userID uint) ([]models.APIKey, error)
	Delete(ctx context.Context, id, userID uint) (bool, error)
	SetActive(ctx context.Context, id, userID uint) (bool, error)
	IncrementUsage(ctx context.Context, id uint) error
}

// NewAPIKeyRepository constructs an API key repository backed by GORM.
func NewAPIKeyRepository(db *gorm.DB) APIKeyRepository {
	return &apiKeyRepository{db: db}
}

type apiKeyRepository struct {
	db *gorm.DB
}

func (r *apiKeyRepository) Create(ctx context.Context, key *models.APIKey) error {
	return r.db.WithContext(ctx).Create(key).Error
}

func (r *apiKeyRepository) Update(ctx context.Context, key *models.APIKey) error {
	return r.db.WithContext(ctx).Save(key).Error
}

func (r *apiKeyRepository) GetByIDForUser(ctx context.Context, id, userID uint) (models.APIKey, error) {
	var key models.APIKey
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&key).Error
	if err != nil {
		return models.APIKey{}, err
	}
	return key, nil
}

func (r *apiKeyRepository) GetActiveByUser(ctx context.Context, userID uint) (models.APIKey, error) {
	var key models.APIKey
	err := r.db.WithContext(ctx).Where("user_id = ? AND is_active = ?", userID, true).First(&key).Error
	if err != nil {
		return models.APIKey{}, err
	}
	return key, nil
}

func (r *apiKeyRepository) ListByUser(ctx context.Context, userID uint) ([]models.APIKey, error) {
	var keys []models.APIKey
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *apiKeyRepository) Delete(ctx context.Context, id, userID uint) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.APIKey{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SetActive marks one key active and all of the user's other keys inactive in
// a single transaction, so at most one key per user is ever active. Returns
// false when the target key does not exist or belongs to another user; the
// transaction is rolled back in that case, leaving sibling rows untouched.
func (r *apiKeyRepository) SetActive(ctx context.Context, id, userID uint) (bool, error) {
	activated := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.APIKey{}).
			Where("user_id = ? AND id <> ?", userID, id).
			Update("is_active", false).Error; err != nil {
			return err
		}

		result := tx.Model(&models.APIKey{}).
			Where("id = ? AND user_id = ?", id, userID).
			Update("is_active", true)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		activated = true
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return activated, nil
}

func (r *apiKeyRepository) IncrementUsage(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.APIKey{}).
		Where("id = ?", id).
		Update("usage_count", gorm.Expr("usage_count + 1")).Error
}
