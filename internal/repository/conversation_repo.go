package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/codecoach/codecoach-api/internal/models"
)

// ConversationRepository persists tutor conversations and their messages.
type ConversationRepository interface {
	Create(ctx context.Context, conversation *models.AIConversation) error
	GetByIDForUser(ctx context.Context, id, userID uint) (models.AIConversation, error)
	ListByUser(ctx context.Context, userID uint) ([]models.AIConversation, error)
	AppendMessages(ctx context.Context, conversationID uint, messages ...*models.AIMessage) error
}

// NewConversationRepository constructs a conversation repository backed by GORM.
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

type conversationRepository struct {
	db *gorm.DB
}

func (r *conversationRepository) Create(ctx context.Context, conversation *models.AIConversation) error {
	return r.db.WithContext(ctx).Create(conversation).Error
}

func (r *conversationRepository) GetByIDForUser(ctx context.Context, id, userID uint) (models.AIConversation, error) {
	var conversation models.AIConversation
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("id = ? AND user_id = ?", id, userID).
		First(&conversation).Error
	if err != nil {
		return models.AIConversation{}, err
	}
	return conversation, nil
}

func (r *conversationRepository) ListByUser(ctx context.Context, userID uint) ([]models.AIConversation, error) {
	var conversations []models.AIConversation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}
	return conversations, nil
}

// AppendMessages inserts the messages and bumps the conversation's running
// token total in one transaction.
func (r *conversationRepository) AppendMessages(ctx context.Context, conversationID uint, messages ...*models.AIMessage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tokens := 0
		for _, message := range messages {
			message.ConversationID = conversationID
			if err := tx.Create(message).Error; err != nil {
				return err
			}
			tokens += message.Tokens
		}

		return tx.Model(&models.AIConversation{}).
			Where("id = ?", conversationID).
			Update("total_tokens", gorm.Expr("total_tokens + ?", tokens)).Error
	})
}
