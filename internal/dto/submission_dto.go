package dto

import "github.com/codecoach/codecoach-api/internal/models"

// SubmitCodeRequest is the payload for dispatching code to the remote judge.
// The code arrives base64 encoded, matching the judge's wire format.
type SubmitCodeRequest struct {
	ProblemID       uint   `json:"problemId" validate:"required,gt=0"`
	EncodedCode     string `json:"encodedCode" validate:"required,base64"`
	JudgeLanguageID int    `json:"judge0LanguageId" validate:"required,gt=0"`
}

// SubmitCodeResponse returns the judge token used for result polling.
type SubmitCodeResponse struct {
	SubmissionID uint   `json:"submission_id"`
	Token        string `json:"token"`
}

// SubmissionResultResponse mirrors the judge result with outputs decoded at
// the boundary for display.
type SubmissionResultResponse struct {
	Token         string   `json:"token"`
	StatusID      int      `json:"status_id"`
	Status        string   `json:"status"`
	IsSuccessful  bool     `json:"is_successful"`
	Terminal      bool     `json:"terminal"`
	Stdout        string   `json:"stdout"`
	Stderr        string   `json:"stderr"`
	CompileOutput string   `json:"compile_output"`
	ExecutionTime *float64 `json:"execution_time,omitempty"`
	MemoryUsed    *float64 `json:"memory_used,omitempty"`
}

// SubmissionSummary lists one historical attempt.
type SubmissionSummary struct {
	ID            uint     `json:"id"`
	ProblemID     uint     `json:"problem_id"`
	JudgeToken    string   `json:"judge_token"`
	Status        string   `json:"status"`
	IsSuccessful  bool     `json:"is_successful"`
	ExecutionTime *float64 `json:"execution_time,omitempty"`
	MemoryUsed    *float64 `json:"memory_used,omitempty"`
	SubmittedAt   string   `json:"submitted_at"`
}

// NewSubmissionSummary builds a summary DTO from a model.
func NewSubmissionSummary(submission models.Submission) SubmissionSummary {
	return SubmissionSummary{
		ID:            submission.ID,
		ProblemID:     submission.ProblemID,
		JudgeToken:    submission.JudgeToken,
		Status:        submission.Status,
		IsSuccessful:  submission.IsSuccessful,
		ExecutionTime: submission.ExecutionTime,
		MemoryUsed:    submission.MemoryUsed,
		SubmittedAt:   submission.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// NewSubmissionSummarySlice converts a slice of models into DTOs.
func NewSubmissionSummarySlice(submissions []models.Submission) []SubmissionSummary {
	result := make([]SubmissionSummary, 0, len(submissions))
	for _, submission := range submissions {
		result = append(result, NewSubmissionSummary(submission))
	}
	return result
}
