package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/codecoach/codecoach-api/internal/models"
)

func seedProblemWithLanguages(t *testing.T, db *gorm.DB) models.Problem {
	t.Helper()

	problem := models.Problem{Title: "Two Sum", Description: "ZGVzYw==", Difficulty: models.ProblemDifficultyEasy}
	require.NoError(t, db.Create(&problem).Error)
	require.NoError(t, db.Create(&models.ProblemLanguage{ProblemID: problem.ID, JudgeLanguageID: 92, Name: "Python"}).Error)
	require.NoError(t, db.Create(&models.ProblemLanguage{ProblemID: problem.ID, JudgeLanguageID: 63, Name: "JavaScript"}).Error)
	return problem
}

func TestGetProblemPreloadsLanguages(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProblemRepository(db)
	problem := seedProblemWithLanguages(t, db)

	loaded, err := repo.GetByID(context.Background(), problem.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Languages, 2)
}

func TestGetLanguageByJudgeID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProblemRepository(db)
	problem := seedProblemWithLanguages(t, db)
	ctx := context.Background()

	language, err := repo.GetLanguage(ctx, problem.ID, 63)
	require.NoError(t, err)
	require.Equal(t, "JavaScript", language.Name)

	_, err = repo.GetLanguage(ctx, problem.ID, 999)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestListProblemsOrdered(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProblemRepository(db)

	require.NoError(t, db.Create(&models.Problem{Title: "A", Description: "ZGVzYw==", Difficulty: models.ProblemDifficultyEasy}).Error)
	require.NoError(t, db.Create(&models.Problem{Title: "B", Description: "ZGVzYw==", Difficulty: models.ProblemDifficultyHard}).Error)

	problems, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, problems, 2)
	require.Equal(t, "A", problems[0].Title)
}
