package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/codecoach/codecoach-api/internal/models"
)

// Authenticator issues session tokens for confirmed accounts. It is a
// capability passed into the auth service so the token scheme stays
// swappable behind the interface.
type Authenticator interface {
	Issue(user models.User) (string, time.Time, error)
}

type jwtAuthenticator struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTAuthenticator builds an Authenticator signing HMAC session tokens.
func NewJWTAuthenticator(secret string, ttl time.Duration) (Authenticator, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &jwtAuthenticator{secret: []byte(secret), ttl: ttl}, nil
}

func (a *jwtAuthenticator) Issue(user models.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(a.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   time.Now().Unix(),
		"exp":   expiresAt.Unix(),
	})

	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expiresAt, nil
}
