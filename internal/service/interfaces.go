package service

import (
	"context"

	"tasktracker/internal/domain"
)

// TokenService defines the interface for bearer token operations
type TokenService interface {
	// Generate issues a signed token embedding the user's identity
	Generate(user *domain.User) (string, error)

	// Verify checks signature and expiry and returns the embedded claims
	Verify(token string) (*domain.TokenClaims, error)
}

// AuthService defines the interface for identity resolution operations
type AuthService interface {
	// ResolveGoogleProfile maps a verified Google profile to exactly one
	// user record, creating or linking as needed
	ResolveGoogleProfile(ctx context.Context, profile *domain.GoogleProfile) (*domain.User, error)

	// Login authenticates local credentials
	Login(ctx context.Context, emailOrUsername, password string) (*domain.User, error)

	// Signup registers a local account. upgraded is true when an existing
	// OAuth-only account gained credentials instead of a new record.
	Signup(ctx context.Context, req *domain.SignupRequest) (user *domain.User, upgraded bool, err error)

	// SetPassword adds local credentials to the authenticated user
	SetPassword(ctx context.Context, userID string, req *domain.SetPasswordRequest) (*domain.User, error)

	// GetUserByID loads a user record, preferring the cache
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
}

// GoogleService defines the interface for the Google OAuth redirect flow
type GoogleService interface {
	// AuthURL returns the provider consent page URL
	AuthURL(state string) string

	// Exchange trades an authorization code for a verified profile
	Exchange(ctx context.Context, code string) (*domain.GoogleProfile, error)
}

// Services aggregates all service interfaces
type Services struct {
	Token  TokenService
	Auth   AuthService
	Google GoogleService
}
