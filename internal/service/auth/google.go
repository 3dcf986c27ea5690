package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"tasktracker/internal/config"
	"tasktracker/internal/domain"
	"tasktracker/internal/service"
	"tasktracker/pkg/logger"
)

// GoogleVerifier runs the authorization-code flow against Google and turns
// exchanged tokens into verified profiles via the userinfo API.
type GoogleVerifier struct {
	config *oauth2.Config
	logger *logger.Logger
}

// NewGoogleVerifier creates a new Google OAuth verifier
func NewGoogleVerifier(cfg *config.Config, logger *logger.Logger) service.GoogleService {
	return &GoogleVerifier{
		config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleCallbackURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		logger: logger,
	}
}

// AuthURL returns the provider consent page URL
func (g *GoogleVerifier) AuthURL(state string) string {
	return g.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for a verified Google profile
func (g *GoogleVerifier) Exchange(ctx context.Context, code string) (*domain.GoogleProfile, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	svc, err := goauth2.NewService(ctx, option.WithTokenSource(g.config.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo client: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch userinfo: %w", err)
	}

	if info.Id == "" || info.Email == "" {
		return nil, fmt.Errorf("userinfo response missing identity fields")
	}

	g.logger.WithField("email", info.Email).Debug("Fetched Google profile")

	return &domain.GoogleProfile{
		GoogleID: info.Id,
		Email:    info.Email,
		Name:     info.Name,
		Picture:  info.Picture,
	}, nil
}
