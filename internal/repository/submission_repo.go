package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/codecoach/codecoach-api/internal/models"
)

// SubmissionRepository persists submission attempts and their judge results.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByToken(ctx context.Context, token string) (models.Submission, error)
	FinalizeByToken(ctx context.Context, token string, successful bool, executionTime, memoryUsed *float64) (bool, error)
	ListByUserAndProblem(ctx context.Context, userID, problemID uint) ([]models.Submission, error)
}

// NewSubmissionRepository constructs a submission repository backed by GORM.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

type submissionRepository struct {
	db *gorm.DB
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) GetByToken(ctx context.Context, token string) (models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).Where("judge_token = ?", token).First(&submission).Error
	if err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

// FinalizeByToken writes the terminal judge result onto the submission row.
// The update is guarded on the pending status so repeated polls after a
// terminal verdict are no-ops; it returns whether a row was mutated.
func (r *submissionRepository) FinalizeByToken(ctx context.Context, token string, successful bool, executionTime, memoryUsed *float64) (bool, error) {
	status := models.SubmissionStatusRejected
	if successful {
		status = models.SubmissionStatusAccepted
	}

	result := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("judge_token = ? AND status = ?", token, models.SubmissionStatusPending).
		Updates(map[string]interface{}{
			"status":         status,
			"is_successful":  successful,
			"execution_time": executionTime,
			"memory_used":    memoryUsed,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *submissionRepository) ListByUserAndProblem(ctx context.Context, userID, problemID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND problem_id = ?", userID, problemID).
		Order("created_at DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}
