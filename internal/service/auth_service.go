package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/codecoach/codecoach-api/internal/dto"
	"github.com/codecoach/codecoach-api/internal/models"
	"github.com/codecoach/codecoach-api/internal/repository"
)

// AuthService handles registration, email confirmation and login.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.RegisterResponse, error)
	Confirm(ctx context.Context, payload dto.ConfirmRequest) error
	Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error)
}

// ErrEmailTaken indicates the email is already registered.
var ErrEmailTaken = errors.New("email already registered")

// ErrInvalidCredentials indicates an unknown email or wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEmailNotConfirmed indicates the account has not completed confirmation.
var ErrEmailNotConfirmed = errors.New("email not confirmed")

// ErrInvalidConfirmationCode indicates a missing, expired or wrong code.
var ErrInvalidConfirmationCode = errors.New("invalid confirmation code")

const confirmationKeyPrefix = "codecoach:confirm"

type authService struct {
	users         repository.UserRepository
	redis         *redis.Client
	authenticator Authenticator
	codeTTL       time.Duration
	validator     *validator.Validate
	logger        zerolog.Logger
}

// NewAuthService constructs the auth service.
func NewAuthService(userRepo repository.UserRepository, redisClient *redis.Client, authenticator Authenticator, codeTTL time.Duration, validate *validator.Validate, logger zerolog.Logger) AuthService {
	return &authService{
		users:         userRepo,
		redis:         redisClient,
		authenticator: authenticator,
		codeTTL:       codeTTL,
		validator:     validate,
		logger:        logger.With().Str("component", "auth_service").Logger(),
	}
}

// Register creates an unconfirmed account and stages a confirmation code.
// Unconfirmed accounts are removed by a background sweep when the
// confirmation window lapses.
func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.RegisterResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RegisterResponse{}, err
	}

	email := normalizeEmail(payload.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return dto.RegisterResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.RegisterResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.RegisterResponse{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		Name:         payload.Name,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return dto.RegisterResponse{}, err
	}

	code, err := confirmationCode()
	if err != nil {
		return dto.RegisterResponse{}, err
	}
	if err := s.redis.Set(ctx, confirmationKey(email), code, s.codeTTL).Err(); err != nil {
		return dto.RegisterResponse{}, fmt.Errorf("stage confirmation code: %w", err)
	}

	// Mail delivery is out of scope; the code is logged for the operator.
	s.logger.Info().Str("email", email).Str("code", code).Msg("registration staged")

	return dto.RegisterResponse{Email: email}, nil
}

// Confirm validates the staged code and marks the account confirmed.
func (s *authService) Confirm(ctx context.Context, payload dto.ConfirmRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	email := normalizeEmail(payload.Email)
	staged, err := s.redis.Get(ctx, confirmationKey(email)).Result()
	if err != nil || staged != payload.Code {
		return ErrInvalidConfirmationCode
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidConfirmationCode
		}
		return err
	}

	if err := s.users.ConfirmEmail(ctx, user.ID); err != nil {
		return err
	}

	s.redis.Del(ctx, confirmationKey(email))
	return nil
}

// Login verifies credentials and issues a session token.
func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LoginResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, normalizeEmail(payload.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LoginResponse{}, ErrInvalidCredentials
		}
		return dto.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	if !user.EmailConfirmed {
		return dto.LoginResponse{}, ErrEmailNotConfirmed
	}

	token, expiresAt, err := s.authenticator.Issue(user)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	return dto.LoginResponse{
		Token:     token,
		ExpiresIn: int64(time.Until(expiresAt).Seconds()),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func confirmationKey(email string) string {
	return fmt.Sprintf("%s:%s", confirmationKeyPrefix, email)
}

func confirmationCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate confirmation code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
