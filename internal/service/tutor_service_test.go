package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/codecoach/codecoach-api/internal/dto"
	"github.com/codecoach/codecoach-api/internal/models"
	"github.com/codecoach/codecoach-api/internal/utils"
	"github.com/codecoach/codecoach-api/pkg/tutor"
)

type stubConversationRepo struct {
	conversations map[uint]*models.AIConversation
	nextID        uint
	appended      int
}

func newStubConversationRepo() *stubConversationRepo {
	return &stubConversationRepo{conversations: map[uint]*models.AIConversation{}}
}

func (s *stubConversationRepo) Create(ctx context.Context, conversation *models.AIConversation) error {
	s.nextID++
	conversation.ID = s.nextID
	clone := *conversation
	s.conversations[conversation.ID] = &clone
	return nil
}

func (s *stubConversationRepo) GetByIDForUser(ctx context.Context, id, userID uint) (models.AIConversation, error) {
	conversation, ok := s.conversations[id]
	if !ok || conversation.UserID != userID {
		return models.AIConversation{}, gorm.ErrRecordNotFound
	}
	return *conversation, nil
}

func (s *stubConversationRepo) ListByUser(ctx context.Context, userID uint) ([]models.AIConversation, error) {
	var result []models.AIConversation
	for _, conversation := range s.conversations {
		if conversation.UserID == userID {
			result = append(result, *conversation)
		}
	}
	return result, nil
}

func (s *stubConversationRepo) AppendMessages(ctx context.Context, conversationID uint, messages ...*models.AIMessage) error {
	conversation, ok := s.conversations[conversationID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for _, message := range messages {
		message.ConversationID = conversationID
		conversation.Messages = append(conversation.Messages, *message)
		conversation.TotalTokens += message.Tokens
		s.appended++
	}
	return nil
}

type stubAPIKeyRepo struct {
	active     *models.APIKey
	usageBumps int
}

func (s *stubAPIKeyRepo) Create(ctx context.Context, key *models.APIKey) error    { return nil }
func (s *stubAPIKeyRepo) Update(ctx context.Context, key *models.APIKey) error    { return nil }
func (s *stubAPIKeyRepo) Delete(ctx context.Context, id, userID uint) (bool, error) {
	return false, nil
}
func (s *stubAPIKeyRepo) SetActive(ctx context.Context, id, userID uint) (bool, error) {
	return false, nil
}
func (s *stubAPIKeyRepo) ListByUser(ctx context.Context, userID uint) ([]models.APIKey, error) {
	return nil, nil
}
func (s *stubAPIKeyRepo) GetByIDForUser(ctx context.Context, id, userID uint) (models.APIKey, error) {
	return models.APIKey{}, gorm.ErrRecordNotFound
}
func (s *stubAPIKeyRepo) GetActiveByUser(ctx context.Context, userID uint) (models.APIKey, error) {
	if s.active == nil || s.active.UserID != userID {
		return models.APIKey{}, gorm.ErrRecordNotFound
	}
	return *s.active, nil
}
func (s *stubAPIKeyRepo) IncrementUsage(ctx context.Context, id uint) error {
	s.usageBumps++
	return nil
}

type stubTutorClient struct {
	history    [][]tutor.Message
	completion tutor.Completion
	err        error
}

func (s *stubTutorClient) Complete(ctx context.Context, apiKey string, history []tutor.Message) (tutor.Completion, error) {
	if s.err != nil {
		return tutor.Completion{}, s.err
	}
	s.history = append(s.history, history)
	return s.completion, nil
}

func newTutorFixture() (*stubConversationRepo, *stubAPIKeyRepo, *stubTutorClient, TutorService) {
	conversations := newStubConversationRepo()
	keys := &stubAPIKeyRepo{active: &models.APIKey{ID: 5, UserID: 1, KeyValue: "sk-user", IsActive: true}}
	client := &stubTutorClient{completion: tutor.Completion{
		Reply:            "What does your base case return?",
		PromptTokens:     20,
		CompletionTokens: 8,
		TotalTokens:      28,
	}}
	problems := &stubProblemRepo{problem: models.Problem{ID: 7, Title: "Two Sum", Description: utils.EncodeBase64("Find two numbers that add up to target.")}}
	svc := NewTutorService(conversations, keys, problems, client, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
	return conversations, keys, client, svc
}

func TestSendMessageStartsConversationAndTracksTokens(t *testing.T) {
	conversations, keys, client, svc := newTutorFixture()
	problemID := uint(7)

	response, err := svc.SendMessage(context.Background(), 1, dto.TutorChatRequest{
		ProblemID:      &problemID,
		EncodedMessage: utils.EncodeBase64("Why does my recursion overflow?"),
	})
	require.NoError(t, err)
	require.NotZero(t, response.ConversationID)
	require.Equal(t, "What does your base case return?", response.Message)
	require.Equal(t, 28, response.TotalTokens)

	stored := conversations.conversations[response.ConversationID]
	require.NotNil(t, stored)
	require.Len(t, stored.Messages, 2)
	require.Equal(t, models.AIMessageRoleUser, stored.Messages[0].Role)
	require.Equal(t, 20, stored.Messages[0].Tokens)
	require.Equal(t, models.AIMessageRoleAssistant, stored.Messages[1].Role)
	require.Equal(t, 8, stored.Messages[1].Tokens)
	require.Equal(t, 28, stored.TotalTokens)
	require.Equal(t, 1, keys.usageBumps)

	// problem context precedes the user's message in the forwarded history
	require.Len(t, client.history, 1)
	require.Len(t, client.history[0], 2)
	require.Contains(t, client.history[0][0].Content, "Find two numbers")
	require.Equal(t, "Why does my recursion overflow?", client.history[0][1].Content)
}

func TestSendMessageAppendsServerSideHistory(t *testing.T) {
	conversations, _, client, svc := newTutorFixture()

	first, err := svc.SendMessage(context.Background(), 1, dto.TutorChatRequest{
		EncodedMessage: utils.EncodeBase64("What is a slice?"),
	})
	require.NoError(t, err)

	// reload happens from the repository, not from anything client supplied
	_, err = svc.SendMessage(context.Background(), 1, dto.TutorChatRequest{
		ConversationID: &first.ConversationID,
		EncodedMessage: utils.EncodeBase64("And how does append work?"),
	})
	require.NoError(t, err)

	require.Len(t, client.history, 2)
	second := client.history[1]
	require.Len(t, second, 3)
	require.Equal(t, "What is a slice?", second[0].Content)
	require.Equal(t, "What does your base case return?", second[1].Content)
	require.Equal(t, "And how does append work?", second[2].Content)

	require.Len(t, conversations.conversations[first.ConversationID].Messages, 4)
}

func TestSendMessageRejectedKeyPersistsNothing(t *testing.T) {
	conversations, keys, client, svc := newTutorFixture()
	client.err = tutor.ErrUnauthorized

	_, err := svc.SendMessage(context.Background(), 1, dto.TutorChatRequest{
		EncodedMessage: utils.EncodeBase64("hello"),
	})
	require.True(t, errors.Is(err, ErrTutorUnauthorized))
	require.Empty(t, conversations.conversations)
	require.Zero(t, conversations.appended)
	require.Zero(t, keys.usageBumps)
}

func TestSendMessageWithoutActiveKey(t *testing.T) {
	_, keys, _, svc := newTutorFixture()
	keys.active = nil

	_, err := svc.SendMessage(context.Background(), 1, dto.TutorChatRequest{
		EncodedMessage: utils.EncodeBase64("hello"),
	})
	require.True(t, errors.Is(err, ErrNoActiveAPIKey))
}

func TestSendMessageUnknownConversation(t *testing.T) {
	_, _, _, svc := newTutorFixture()
	missing := uint(99)

	_, err := svc.SendMessage(context.Background(), 1, dto.TutorChatRequest{
		ConversationID: &missing,
		EncodedMessage: utils.EncodeBase64("hello"),
	})
	require.True(t, errors.Is(err, ErrConversationNotFound))
}

func TestSendMessageUnknownProblem(t *testing.T) {
	_, _, _, svc := newTutorFixture()
	missing := uint(404)

	_, err := svc.SendMessage(context.Background(), 1, dto.TutorChatRequest{
		ProblemID:      &missing,
		EncodedMessage: utils.EncodeBase64("hello"),
	})
	require.True(t, errors.Is(err, ErrProblemNotFound))
}

func TestSendMessageTitleKeepsRuneBoundaries(t *testing.T) {
	conversations, _, _, svc := newTutorFixture()
	message := strings.Repeat("Почему срез растёт? ", 5)

	response, err := svc.SendMessage(context.Background(), 1, dto.TutorChatRequest{
		EncodedMessage: utils.EncodeBase64(message),
	})
	require.NoError(t, err)

	title := conversations.conversations[response.ConversationID].Title
	require.True(t, utf8.ValidString(title))
	require.Equal(t, 60, utf8.RuneCountInString(title))
	require.True(t, strings.HasPrefix(message, title))
}

func TestSendMessageStripsMarkupBeforeForwarding(t *testing.T) {
	_, _, client, svc := newTutorFixture()

	_, err := svc.SendMessage(context.Background(), 1, dto.TutorChatRequest{
		EncodedMessage: utils.EncodeBase64("<script>alert(1)</script>help me"),
	})
	require.NoError(t, err)
	require.Equal(t, "help me", client.history[0][0].Content)
}
