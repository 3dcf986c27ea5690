package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tasktracker/internal/domain"
	"tasktracker/internal/service"
	apperrors "tasktracker/pkg/errors"
)

// tokenTTL is the lifetime of an issued token
const tokenTTL = 24 * time.Hour

// Claims is the JWT payload for issued tokens
type Claims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Service signs and verifies bearer tokens with a symmetric server secret
type Service struct {
	secret []byte
}

// NewService creates a new token service
func NewService(secret string) service.TokenService {
	return &Service{
		secret: []byte(secret),
	}
}

// Generate issues a signed token embedding the user's identity with a
// 24-hour expiry.
func (s *Service) Generate(user *domain.User) (string, error) {
	now := time.Now()

	claims := &Claims{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", apperrors.NewInternalError("Failed to sign token", err)
	}

	return signed, nil
}

// Verify checks signature and expiry and returns the embedded claims.
// Expired tokens and malformed or badly signed tokens fail with distinct
// error codes so the request gate can tell the two apart.
func (s *Service) Verify(tokenString string) (*domain.TokenClaims, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.NewTokenExpiredError()
		}
		return nil, apperrors.NewInvalidTokenError()
	}

	if !parsed.Valid {
		return nil, apperrors.NewInvalidTokenError()
	}

	return &domain.TokenClaims{
		ID:    claims.ID,
		Email: claims.Email,
		Name:  claims.Name,
	}, nil
}
