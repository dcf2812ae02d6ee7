package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/codecoach/codecoach-api/internal/models"
)

// UserRepository exposes persistence helpers for user accounts, including the
// explicit cascade used when an account is removed.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	ConfirmEmail(ctx context.Context, id uint) error
	DeleteCascade(ctx context.Context, id uint) error
	DeleteUnconfirmedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewUserRepository constructs a user repository backed by GORM.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) ConfirmEmail(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("email_confirmed", true).Error
}

// DeleteCascade removes a user and all dependent rows in one transaction.
// The cascade is explicit rather than delegated to the relational engine so
// the behaviour is visible and testable.
func (r *userRepository) DeleteCascade(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conversationIDs []uint
		if err := tx.Model(&models.AIConversation{}).Where("user_id = ?", id).Pluck("id", &conversationIDs).Error; err != nil {
			return err
		}
		if len(conversationIDs) > 0 {
			if err := tx.Where("conversation_id IN ?", conversationIDs).Delete(&models.AIMessage{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.AIConversation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.APIKey{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
}

// DeleteUnconfirmedBefore removes registrations that were never confirmed
// within the allowed window. Used by the background sweep job.
func (r *userRepository) DeleteUnconfirmedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("email_confirmed = ? AND created_at < ?", false, cutoff).
		Delete(&models.User{})
	return result.RowsAffected, result.Error
}
