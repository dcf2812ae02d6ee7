package dto

import (
	"github.com/codecoach/codecoach-api/internal/models"
	"github.com/codecoach/codecoach-api/pkg/judge0"
)

// ProblemDetailsRequest identifies the problem to fetch.
type ProblemDetailsRequest struct {
	ProblemID uint `json:"problemId" validate:"required,gt=0"`
}

// ProblemLanguageResponse carries the per-language starter stub. The function
// signature stays base64 encoded on the wire, as stored.
type ProblemLanguageResponse struct {
	ID                uint   `json:"id"`
	JudgeLanguageID   int    `json:"judge_language_id"`
	Name              string `json:"name"`
	FunctionSignature string `json:"function_signature"`
}

// ProblemDetailsResponse is the catalog entry plus per-language signatures.
// The description is decoded for display; decoding failures substitute the
// fixed placeholder.
type ProblemDetailsResponse struct {
	ID          uint                      `json:"id"`
	Title       string                    `json:"title"`
	Description string                    `json:"description"`
	Points      int                       `json:"points"`
	Difficulty  string                    `json:"difficulty"`
	Category    string                    `json:"category"`
	Languages   []ProblemLanguageResponse `json:"languages"`
}

// ProblemSummary lists one catalog entry without its description.
type ProblemSummary struct {
	ID         uint   `json:"id"`
	Title      string `json:"title"`
	Points     int    `json:"points"`
	Difficulty string `json:"difficulty"`
	Category   string `json:"category"`
}

// JudgeLanguageOption is one entry of the judge's language metadata,
// relayed as received.
type JudgeLanguageOption struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// NewJudgeLanguageOptionSlice converts judge language metadata into DTOs.
func NewJudgeLanguageOptionSlice(languages []judge0.Language) []JudgeLanguageOption {
	result := make([]JudgeLanguageOption, 0, len(languages))
	for _, language := range languages {
		result = append(result, JudgeLanguageOption{ID: language.ID, Name: language.Name})
	}
	return result
}

// NewProblemSummarySlice converts problem models into DTOs.
func NewProblemSummarySlice(problems []models.Problem) []ProblemSummary {
	result := make([]ProblemSummary, 0, len(problems))
	for _, problem := range problems {
		result = append(result, ProblemSummary{
			ID:         problem.ID,
			Title:      problem.Title,
			Points:     problem.Points,
			Difficulty: problem.Difficulty,
			Category:   problem.Category,
		})
	}
	return result
}
