package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/codecoach/codecoach-api/internal/dto"
	"github.com/codecoach/codecoach-api/internal/models"
	"github.com/codecoach/codecoach-api/internal/repository"
)

// APIKeyService manages a user's stored third-party credentials and the
// exclusive active-key invariant.
type APIKeyService interface {
	Create(ctx context.Context, userID uint, payload dto.APIKeyCreateRequest) (dto.APIKeyResponse, error)
	Update(ctx context.Context, userID, id uint, payload dto.APIKeyUpdateRequest) (dto.APIKeyResponse, error)
	Delete(ctx context.Context, userID, id uint) error
	List(ctx context.Context, userID uint) ([]dto.APIKeyResponse, error)
	SetActive(ctx context.Context, userID, id uint) error
}

// ErrAPIKeyNotFound indicates the key is absent or owned by another user.
// Ownership failures report not-found to avoid leaking key existence.
var ErrAPIKeyNotFound = errors.New("api key not found")

type apiKeyService struct {
	keys      repository.APIKeyRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAPIKeyService constructs the API key service.
func NewAPIKeyService(keyRepo repository.APIKeyRepository, validate *validator.Validate, logger zerolog.Logger) APIKeyService {
	return &apiKeyService{
		keys:      keyRepo,
		validator: validate,
		logger:    logger.With().Str("component", "apikey_service").Logger(),
	}
}

func (s *apiKeyService) Create(ctx context.Context, userID uint, payload dto.APIKeyCreateRequest) (dto.APIKeyResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.APIKeyResponse{}, err
	}

	key := models.APIKey{
		UserID:   userID,
		KeyName:  payload.KeyName,
		KeyValue: payload.KeyValue,
	}
	if err := s.keys.Create(ctx, &key); err != nil {
		return dto.APIKeyResponse{}, err
	}

	return dto.NewAPIKeyResponse(key), nil
}

func (s *apiKeyService) Update(ctx context.Context, userID, id uint, payload dto.APIKeyUpdateRequest) (dto.APIKeyResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.APIKeyResponse{}, err
	}

	key, err := s.keys.GetByIDForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.APIKeyResponse{}, ErrAPIKeyNotFound
		}
		return dto.APIKeyResponse{}, err
	}

	key.KeyName = payload.KeyName
	key.KeyValue = payload.KeyValue
	if err := s.keys.Update(ctx, &key); err != nil {
		return dto.APIKeyResponse{}, err
	}

	return dto.NewAPIKeyResponse(key), nil
}

func (s *apiKeyService) Delete(ctx context.Context, userID, id uint) error {
	deleted, err := s.keys.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrAPIKeyNotFound
	}
	return nil
}

func (s *apiKeyService) List(ctx context.Context, userID uint) ([]dto.APIKeyResponse, error) {
	keys, err := s.keys.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewAPIKeyResponseSlice(keys), nil
}

func (s *apiKeyService) SetActive(ctx context.Context, userID, id uint) error {
	activated, err := s.keys.SetActive(ctx, id, userID)
	if err != nil {
		return err
	}
	if !activated {
		return ErrAPIKeyNotFound
	}

	s.logger.Info().Uint("user_id", userID).Uint("key_id", id).Msg("active api key switched")
	return nil
}
