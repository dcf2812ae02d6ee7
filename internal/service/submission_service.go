package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/codecoach/codecoach-api/internal/dto"
	"github.com/codecoach/codecoach-api/internal/models"
	"github.com/codecoach/codecoach-api/internal/repository"
	"github.com/codecoach/codecoach-api/internal/utils"
	"github.com/codecoach/codecoach-api/pkg/judge0"
)

// SubmissionService exposes the remote judge submission workflow.
type SubmissionService interface {
	Submit(ctx context.Context, userID uint, payload dto.SubmitCodeRequest) (dto.SubmitCodeResponse, error)
	Result(ctx context.Context, userID uint, token string) (dto.SubmissionResultResponse, error)
	History(ctx context.Context, userID, problemID uint) ([]dto.SubmissionSummary, error)
}

// ErrInvalidLanguage indicates no judge-language mapping exists for the problem.
var ErrInvalidLanguage = errors.New("no judge language mapping for problem")

// ErrSubmissionNotFound indicates the submission is absent or not owned by the caller.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrJudgeUnavailable indicates the remote judge could not be reached.
var ErrJudgeUnavailable = errors.New("judge unavailable")

// ErrJudgeUpstream indicates the remote judge returned an error response.
var ErrJudgeUpstream = errors.New("judge request failed")

// JudgeClient is the outbound surface of the remote judge consumed by the service.
type JudgeClient interface {
	Submit(ctx context.Context, request judge0.SubmissionRequest) (string, error)
	Result(ctx context.Context, token string) (judge0.SubmissionResult, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	problems    repository.ProblemRepository
	judge       JudgeClient
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewSubmissionService constructs the submission service.
func NewSubmissionService(submissionRepo repository.SubmissionRepository, problemRepo repository.ProblemRepository, judge JudgeClient, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissionRepo,
		problems:    problemRepo,
		judge:       judge,
		validator:   validate,
		logger:      logger.With().Str("component", "submission_service").Logger(),
	}
}

// Submit dispatches user code to the remote judge and records the attempt.
// The stored submission stays pending until a poll observes a terminal verdict.
func (s *submissionService) Submit(ctx context.Context, userID uint, payload dto.SubmitCodeRequest) (dto.SubmitCodeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmitCodeResponse{}, err
	}

	language, err := s.problems.GetLanguage(ctx, payload.ProblemID, payload.JudgeLanguageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmitCodeResponse{}, ErrInvalidLanguage
		}
		return dto.SubmitCodeResponse{}, err
	}

	code, err := utils.DecodeBase64(payload.EncodedCode)
	if err != nil {
		return dto.SubmitCodeResponse{}, err
	}

	// The judge runs the user's code followed by the problem's test harness.
	source := code + language.TestCode

	token, err := s.judge.Submit(ctx, judge0.SubmissionRequest{
		SourceCode: utils.EncodeBase64(source),
		LanguageID: payload.JudgeLanguageID,
	})
	if err != nil {
		return dto.SubmitCodeResponse{}, s.mapJudgeError(err)
	}

	submission := models.Submission{
		UserID:        userID,
		ProblemID:     payload.ProblemID,
		LanguageID:    language.ID,
		SubmittedCode: code,
		JudgeToken:    token,
		Status:        models.SubmissionStatusPending,
	}
	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmitCodeResponse{}, err
	}

	s.logger.Info().Uint("user_id", userID).Uint("problem_id", payload.ProblemID).Str("judge_token", token).Msg("submission dispatched")

	return dto.SubmitCodeResponse{SubmissionID: submission.ID, Token: token}, nil
}

// Result polls the judge for the submission identified by token. The first
// poll that observes a terminal verdict finalizes the stored record; later
// polls leave it untouched.
func (s *submissionService) Result(ctx context.Context, userID uint, token string) (dto.SubmissionResultResponse, error) {
	submission, err := s.submissions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResultResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResultResponse{}, err
	}
	if submission.UserID != userID {
		return dto.SubmissionResultResponse{}, ErrSubmissionNotFound
	}

	result, err := s.judge.Result(ctx, token)
	if err != nil {
		return dto.SubmissionResultResponse{}, s.mapJudgeError(err)
	}

	response := dto.SubmissionResultResponse{
		Token:         token,
		StatusID:      result.Status.ID,
		Status:        result.Status.Description,
		IsSuccessful:  result.Status.Accepted(),
		Terminal:      result.Status.Terminal(),
		Stdout:        s.decodeOutput(result.Stdout, "stdout"),
		Stderr:        s.decodeOutput(result.Stderr, "stderr"),
		CompileOutput: s.decodeOutput(result.CompileOutput, "compile_output"),
	}

	if !result.Status.Terminal() {
		return response, nil
	}

	executionTime := parseExecutionTime(result.Time)
	var memoryUsed *float64
	if result.Memory > 0 {
		memory := result.Memory
		memoryUsed = &memory
	}

	mutated, err := s.submissions.FinalizeByToken(ctx, token, response.IsSuccessful, executionTime, memoryUsed)
	if err != nil {
		return dto.SubmissionResultResponse{}, err
	}
	if mutated {
		s.logger.Info().Str("judge_token", token).Int("status_id", result.Status.ID).Msg("submission finalized")
	}

	// Report the persisted metrics, which a repeat poll leaves unchanged.
	persisted, err := s.submissions.GetByToken(ctx, token)
	if err != nil {
		return dto.SubmissionResultResponse{}, err
	}
	response.IsSuccessful = persisted.IsSuccessful
	response.ExecutionTime = persisted.ExecutionTime
	response.MemoryUsed = persisted.MemoryUsed

	return response, nil
}

// History lists the caller's attempts for one problem, newest first.
func (s *submissionService) History(ctx context.Context, userID, problemID uint) ([]dto.SubmissionSummary, error) {
	submissions, err := s.submissions.ListByUserAndProblem(ctx, userID, problemID)
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionSummarySlice(submissions), nil
}

func (s *submissionService) decodeOutput(encoded, field string) string {
	if encoded == "" {
		return ""
	}
	decoded, err := utils.DecodeBase64(encoded)
	if err != nil {
		s.logger.Warn().Err(err).Str("field", field).Msg("failed to decode judge output")
		return ""
	}
	return decoded
}

func (s *submissionService) mapJudgeError(err error) error {
	switch {
	case errors.Is(err, judge0.ErrUnavailable):
		s.logger.Error().Err(err).Msg("judge unreachable")
		return ErrJudgeUnavailable
	case errors.Is(err, judge0.ErrUpstream):
		s.logger.Error().Err(err).Msg("judge returned an error")
		return ErrJudgeUpstream
	default:
		return fmt.Errorf("judge call: %w", err)
	}
}

func parseExecutionTime(raw string) *float64 {
	if raw == "" {
		return nil
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &seconds
}
