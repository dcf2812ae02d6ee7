package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/codecoach/codecoach-api/internal/dto"
	"github.com/codecoach/codecoach-api/internal/models"
	"github.com/codecoach/codecoach-api/internal/repository"
	"github.com/codecoach/codecoach-api/internal/utils"
	"github.com/codecoach/codecoach-api/pkg/judge0"
)

const problemCacheKeyPrefix = "codecoach:problem:details"

// ProblemService exposes read access to the problem catalog and the judge's
// language metadata.
type ProblemService interface {
	Details(ctx context.Context, problemID uint) (dto.ProblemDetailsResponse, error)
	List(ctx context.Context) ([]dto.ProblemSummary, error)
	Languages(ctx context.Context) ([]dto.JudgeLanguageOption, error)
}

// JudgeMetadata is the slice of the judge client the catalog needs.
type JudgeMetadata interface {
	Languages(ctx context.Context) ([]judge0.Language, error)
}

type problemService struct {
	problems repository.ProblemRepository
	judge    JudgeMetadata
	redis    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewProblemService constructs the problem service. The redis client may be
// nil, in which case caching is skipped.
func NewProblemService(problemRepo repository.ProblemRepository, judge JudgeMetadata, redisClient *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) ProblemService {
	return &problemService{
		problems: problemRepo,
		judge:    judge,
		redis:    redisClient,
		cacheTTL: cacheTTL,
		logger:   logger.With().Str("component", "problem_service").Logger(),
	}
}

// Details returns the problem with its per-language starter stubs. The
// description is decoded for display; malformed storage substitutes the
// fixed placeholder and logs the failure.
func (s *problemService) Details(ctx context.Context, problemID uint) (dto.ProblemDetailsResponse, error) {
	cacheKey := fmt.Sprintf("%s:%d", problemCacheKeyPrefix, problemID)

	if cached, ok := s.fetchCached(ctx, cacheKey); ok {
		return cached, nil
	}

	problem, err := s.problems.GetByID(ctx, problemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProblemDetailsResponse{}, ErrProblemNotFound
		}
		return dto.ProblemDetailsResponse{}, err
	}

	response := s.buildDetails(problem)
	s.cacheDetails(ctx, cacheKey, response)
	return response, nil
}

// Languages proxies the judge's language metadata 1:1.
func (s *problemService) Languages(ctx context.Context) ([]dto.JudgeLanguageOption, error) {
	languages, err := s.judge.Languages(ctx)
	if err != nil {
		switch {
		case errors.Is(err, judge0.ErrUnavailable):
			return nil, ErrJudgeUnavailable
		case errors.Is(err, judge0.ErrUpstream):
			return nil, ErrJudgeUpstream
		default:
			return nil, err
		}
	}
	return dto.NewJudgeLanguageOptionSlice(languages), nil
}

// List returns catalog summaries without descriptions.
func (s *problemService) List(ctx context.Context) ([]dto.ProblemSummary, error) {
	problems, err := s.problems.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewProblemSummarySlice(problems), nil
}

func (s *problemService) buildDetails(problem models.Problem) dto.ProblemDetailsResponse {
	languages := make([]dto.ProblemLanguageResponse, 0, len(problem.Languages))
	for _, language := range problem.Languages {
		languages = append(languages, dto.ProblemLanguageResponse{
			ID:                language.ID,
			JudgeLanguageID:   language.JudgeLanguageID,
			Name:              language.Name,
			FunctionSignature: language.FunctionSignature,
		})
	}

	return dto.ProblemDetailsResponse{
		ID:          problem.ID,
		Title:       problem.Title,
		Description: utils.DecodeBase64OrPlaceholder(s.logger, problem.Description),
		Points:      problem.Points,
		Difficulty:  problem.Difficulty,
		Category:    problem.Category,
		Languages:   languages,
	}
}

func (s *problemService) fetchCached(ctx context.Context, key string) (dto.ProblemDetailsResponse, bool) {
	if s.redis == nil {
		return dto.ProblemDetailsResponse{}, false
	}

	raw, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		return dto.ProblemDetailsResponse{}, false
	}

	var cached dto.ProblemDetailsResponse
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		s.logger.Warn().Err(err).Msg("failed to unmarshal cached problem details")
		return dto.ProblemDetailsResponse{}, false
	}
	return cached, true
}

func (s *problemService) cacheDetails(ctx context.Context, key string, details dto.ProblemDetailsResponse) {
	if s.redis == nil || s.cacheTTL <= 0 {
		return
	}

	payload, err := json.Marshal(details)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal problem details for cache")
		return
	}
	if err := s.redis.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache problem details")
	}
}
