package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/codecoach/codecoach-api/internal/dto"
	"github.com/codecoach/codecoach-api/internal/models"
	"github.com/codecoach/codecoach-api/internal/repository"
	"github.com/codecoach/codecoach-api/internal/utils"
	"github.com/codecoach/codecoach-api/pkg/tutor"
)

// TutorService exposes the AI tutor pass-through keyed by the caller's
// stored third-party credential.
type TutorService interface {
	SendMessage(ctx context.Context, userID uint, payload dto.TutorChatRequest) (dto.TutorChatResponse, error)
	Conversations(ctx context.Context, userID uint) ([]dto.ConversationSummary, error)
}

// ErrNoActiveAPIKey indicates the user has no active credential for tutor requests.
var ErrNoActiveAPIKey = errors.New("no active api key")

// ErrTutorUnauthorized indicates the upstream provider rejected the user's credential.
var ErrTutorUnauthorized = errors.New("tutor provider rejected the credential")

// ErrTutorUpstream indicates the upstream provider failed for another reason.
var ErrTutorUpstream = errors.New("tutor provider request failed")

// ErrConversationNotFound indicates the referenced conversation is absent or foreign.
var ErrConversationNotFound = errors.New("conversation not found")

// ErrProblemNotFound indicates the referenced problem does not exist.
var ErrProblemNotFound = errors.New("problem not found")

// ErrEmptyMessage indicates the message had no content after sanitization.
var ErrEmptyMessage = errors.New("message content empty")

const conversationTitleLimit = 60

type tutorService struct {
	conversations repository.ConversationRepository
	apiKeys       repository.APIKeyRepository
	problems      repository.ProblemRepository
	client        tutor.Client
	validator     *validator.Validate
	sanitizer     *bluemonday.Policy
	logger        zerolog.Logger
}

// NewTutorService constructs the tutor service.
func NewTutorService(conversationRepo repository.ConversationRepository, apiKeyRepo repository.APIKeyRepository, problemRepo repository.ProblemRepository, client tutor.Client, validate *validator.Validate, logger zerolog.Logger) TutorService {
	return &tutorService{
		conversations: conversationRepo,
		apiKeys:       apiKeyRepo,
		problems:      problemRepo,
		client:        client,
		validator:     validate,
		sanitizer:     bluemonday.StrictPolicy(),
		logger:        logger.With().Str("component", "tutor_service").Logger(),
	}
}

// SendMessage forwards one exchange to the provider under the user's active
// key. History is stored server side; a rejected credential persists nothing.
//
// Token accounting is written after the upstream reply. A crash between the
// two loses the usage of that exchange; there is no reconciliation against
// upstream billing.
func (s *tutorService) SendMessage(ctx context.Context, userID uint, payload dto.TutorChatRequest) (dto.TutorChatResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TutorChatResponse{}, err
	}

	key, err := s.apiKeys.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TutorChatResponse{}, ErrNoActiveAPIKey
		}
		return dto.TutorChatResponse{}, err
	}

	message, err := utils.DecodeBase64(payload.EncodedMessage)
	if err != nil {
		return dto.TutorChatResponse{}, err
	}
	message = strings.TrimSpace(s.sanitizer.Sanitize(message))
	if message == "" {
		return dto.TutorChatResponse{}, ErrEmptyMessage
	}

	var conversation models.AIConversation
	isNew := payload.ConversationID == nil
	if isNew {
		conversation = models.AIConversation{
			UserID:    userID,
			ProblemID: payload.ProblemID,
			Title:     conversationTitle(message),
		}
	} else {
		conversation, err = s.conversations.GetByIDForUser(ctx, *payload.ConversationID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.TutorChatResponse{}, ErrConversationNotFound
			}
			return dto.TutorChatResponse{}, err
		}
	}

	history, err := s.buildHistory(ctx, conversation, message)
	if err != nil {
		return dto.TutorChatResponse{}, err
	}

	completion, err := s.client.Complete(ctx, key.KeyValue, history)
	if err != nil {
		return dto.TutorChatResponse{}, s.mapTutorError(err)
	}

	if isNew {
		if err := s.conversations.Create(ctx, &conversation); err != nil {
			return dto.TutorChatResponse{}, err
		}
	}

	userMessage := models.AIMessage{
		Role:    models.AIMessageRoleUser,
		Content: message,
		Tokens:  completion.PromptTokens,
	}
	assistantMessage := models.AIMessage{
		Role:    models.AIMessageRoleAssistant,
		Content: completion.Reply,
		Tokens:  completion.CompletionTokens,
		Raw:     datatypes.JSONMap(completion.Raw),
	}
	if err := s.conversations.AppendMessages(ctx, conversation.ID, &userMessage, &assistantMessage); err != nil {
		return dto.TutorChatResponse{}, err
	}

	if err := s.apiKeys.IncrementUsage(ctx, key.ID); err != nil {
		s.logger.Warn().Err(err).Uint("key_id", key.ID).Msg("failed to bump api key usage count")
	}

	return dto.TutorChatResponse{
		ConversationID: conversation.ID,
		Message:        completion.Reply,
		TotalTokens:    conversation.TotalTokens + completion.TotalTokens,
	}, nil
}

// Conversations lists the caller's stored conversations.
func (s *tutorService) Conversations(ctx context.Context, userID uint) ([]dto.ConversationSummary, error) {
	conversations, err := s.conversations.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewConversationSummarySlice(conversations), nil
}

func (s *tutorService) buildHistory(ctx context.Context, conversation models.AIConversation, message string) ([]tutor.Message, error) {
	history := make([]tutor.Message, 0, len(conversation.Messages)+2)

	if conversation.ProblemID != nil {
		problem, err := s.problems.GetByID(ctx, *conversation.ProblemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProblemNotFound
			}
			return nil, err
		}
		history = append(history, tutor.Message{
			Role:    models.AIMessageRoleUser,
			Content: "The problem I am working on:\n" + utils.DecodeBase64OrPlaceholder(s.logger, problem.Description),
		})
	}

	for _, stored := range conversation.Messages {
		history = append(history, tutor.Message{Role: stored.Role, Content: stored.Content})
	}

	return append(history, tutor.Message{Role: models.AIMessageRoleUser, Content: message}), nil
}

func (s *tutorService) mapTutorError(err error) error {
	switch {
	case errors.Is(err, tutor.ErrUnauthorized):
		return ErrTutorUnauthorized
	case errors.Is(err, tutor.ErrUpstream):
		s.logger.Error().Err(err).Msg("tutor provider failed")
		return ErrTutorUpstream
	default:
		return err
	}
}

func conversationTitle(message string) string {
	title := strings.TrimSpace(message)
	if utf8.RuneCountInString(title) <= conversationTitleLimit {
		return title
	}
	runes := []rune(title)
	return string(runes[:conversationTitleLimit])
}
