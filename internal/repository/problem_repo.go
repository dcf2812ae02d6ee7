package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/codecoach/codecoach-api/internal/models"
)

// ProblemRepository exposes read access to the problem catalog. The catalog
// is a read-only dependency from the submission workflow's perspective.
type ProblemRepository interface {
	GetByID(ctx context.Context, id uint) (models.Problem, error)
	List(ctx context.Context) ([]models.Problem, error)
	GetLanguage(ctx context.Context, problemID uint, judgeLanguageID int) (models.ProblemLanguage, error)
}

// NewProblemRepository constructs a problem repository backed by GORM.
func NewProblemRepository(db *gorm.DB) ProblemRepository {
	return &problemRepository{db: db}
}

type problemRepository struct {
	db *gorm.DB
}

func (r *problemRepository) GetByID(ctx context.Context, id uint) (models.Problem, error) {
	var problem models.Problem
	err := r.db.WithContext(ctx).Preload("Languages").First(&problem, id).Error
	if err != nil {
		return models.Problem{}, err
	}
	return problem, nil
}

func (r *problemRepository) List(ctx context.Context) ([]models.Problem, error) {
	var problems []models.Problem
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&problems).Error; err != nil {
		return nil, err
	}
	return problems, nil
}

func (r *problemRepository) GetLanguage(ctx context.Context, problemID uint, judgeLanguageID int) (models.ProblemLanguage, error) {
	var language models.ProblemLanguage
	err := r.db.WithContext(ctx).
		Where("problem_id = ? AND judge_language_id = ?", problemID, judgeLanguageID).
		First(&language).Error
	if err != nil {
		return models.ProblemLanguage{}, err
	}
	return language, nil
}
