package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/codecoach/codecoach-api/internal/models"
)

func createTestProblem(t *testing.T, db *gorm.DB) (models.Problem, models.ProblemLanguage) {
	t.Helper()

	problem := models.Problem{
		Title:       "Two Sum",
		Description: "VHdvIFN1bQ==",
		Points:      100,
		Difficulty:  models.ProblemDifficultyEasy,
		Category:    "arrays",
	}
	require.NoError(t, db.Create(&problem).Error)

	language := models.ProblemLanguage{
		ProblemID:         problem.ID,
		JudgeLanguageID:   92,
		Name:              "Python",
		FunctionSignature: "ZGVmIHR3b19zdW0oKTo=",
		TestCode:          "\nassert two_sum([2,7], 9) == [0,1]",
	}
	require.NoError(t, db.Create(&language).Error)
	return problem, language
}

func TestFinalizeByTokenIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	user := createTestUser(t, db, "coder@example.com", true)
	problem, language := createTestProblem(t, db)

	submission := models.Submission{
		UserID:        user.ID,
		ProblemID:     problem.ID,
		LanguageID:    language.ID,
		SubmittedCode: "print(1+1)",
		JudgeToken:    "token-1",
		Status:        models.SubmissionStatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), &submission))

	execTime := 0.012
	memory := 3456.0
	mutated, err := repo.FinalizeByToken(context.Background(), "token-1", true, &execTime, &memory)
	require.NoError(t, err)
	require.True(t, mutated)

	first, err := repo.GetByToken(context.Background(), "token-1")
	require.NoError(t, err)
	require.True(t, first.IsSuccessful)
	require.Equal(t, models.SubmissionStatusAccepted, first.Status)
	require.NotNil(t, first.ExecutionTime)
	require.Equal(t, 0.012, *first.ExecutionTime)

	// a second poll with a different outcome must not rewrite the row
	otherTime := 9.9
	mutated, err = repo.FinalizeByToken(context.Background(), "token-1", false, &otherTime, nil)
	require.NoError(t, err)
	require.False(t, mutated)

	second, err := repo.GetByToken(context.Background(), "token-1")
	require.NoError(t, err)
	require.Equal(t, first.IsSuccessful, second.IsSuccessful)
	require.Equal(t, first.Status, second.Status)
	require.Equal(t, *first.ExecutionTime, *second.ExecutionTime)
}

func TestListByUserAndProblem(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	user := createTestUser(t, db, "coder@example.com", true)
	other := createTestUser(t, db, "other@example.com", true)
	problem, language := createTestProblem(t, db)

	for i, owner := range []uint{user.ID, user.ID, other.ID} {
		submission := models.Submission{
			UserID:        owner,
			ProblemID:     problem.ID,
			LanguageID:    language.ID,
			SubmittedCode: "print(1+1)",
			JudgeToken:    string(rune('a' + i)),
			Status:        models.SubmissionStatusPending,
		}
		require.NoError(t, repo.Create(context.Background(), &submission))
	}

	submissions, err := repo.ListByUserAndProblem(context.Background(), user.ID, problem.ID)
	require.NoError(t, err)
	require.Len(t, submissions, 2)
	for _, s := range submissions {
		require.Equal(t, user.ID, s.UserID)
	}
}
