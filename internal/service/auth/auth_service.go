package auth

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tasktracker/internal/domain"
	"tasktracker/internal/repository"
	"tasktracker/internal/service"
	apperrors "tasktracker/pkg/errors"
	"tasktracker/pkg/logger"
	"tasktracker/pkg/redis"
)

// Service implements the AuthService interface. It owns the account
// linking policy: one user record per identity, with Google and local
// credentials merged onto the same record when they share an email.
type Service struct {
	users  repository.UserRepository
	cache  *redis.Client // may be nil when Redis is not configured
	logger *logger.Logger
}

// NewService creates a new auth service
func NewService(users repository.UserRepository, cache *redis.Client, logger *logger.Logger) service.AuthService {
	return &Service{
		users:  users,
		cache:  cache,
		logger: logger,
	}
}

// ResolveGoogleProfile maps a verified Google profile to exactly one user
// record. Lookup order matters: the provider-verified google id is the
// strongest signal and is checked first; email is the merge key that folds
// a Google sign-in into an account created by local signup.
func (s *Service) ResolveGoogleProfile(ctx context.Context, profile *domain.GoogleProfile) (*domain.User, error) {
	user, err := s.users.GetByGoogleID(ctx, profile.GoogleID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to resolve identity", err)
	}
	if user != nil {
		s.logger.WithField("email", user.Email).Info("Existing OAuth user logged in")
		return user, nil
	}

	user, err = s.users.GetByEmail(ctx, profile.Email)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to resolve identity", err)
	}
	if user != nil {
		var picture *string
		if profile.Picture != "" {
			picture = &profile.Picture
		}

		linked, err := s.users.LinkGoogle(ctx, user.ID, profile.GoogleID, picture)
		if err != nil {
			return nil, apperrors.NewInternalError("Failed to link Google account", err)
		}

		s.invalidateUser(ctx, user.ID)
		s.logger.WithField("email", linked.Email).Info("Linked Google account to existing user")
		return linked, nil
	}

	user = &domain.User{
		ID:       uuid.NewString(),
		Email:    profile.Email,
		Name:     profile.Name,
		GoogleID: &profile.GoogleID,
	}
	if profile.Picture != "" {
		user.Picture = &profile.Picture
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.NewInternalError("Failed to create user", err)
	}

	s.logger.WithField("email", user.Email).Info("New OAuth user created")
	return user, nil
}

// Login authenticates local credentials. Lookup and comparison failures
// collapse into the same error so callers cannot probe which accounts exist.
func (s *Service) Login(ctx context.Context, emailOrUsername, password string) (*domain.User, error) {
	user, err := s.users.GetByEmailOrUsername(ctx, emailOrUsername)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to look up user", err)
	}
	if user == nil {
		return nil, apperrors.NewInvalidCredentialsError()
	}

	if !user.HasPassword() {
		return nil, apperrors.NewOAuthOnlyAccountError()
	}

	if bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(password)) != nil {
		return nil, apperrors.NewInvalidCredentialsError()
	}

	s.logger.WithField("email", user.Email).Info("User logged in")
	return user, nil
}

// Signup registers a local account. When the email belongs to an existing
// OAuth-only account the record is upgraded in place instead of erroring,
// so the same person never ends up with two users.
func (s *Service) Signup(ctx context.Context, req *domain.SignupRequest) (*domain.User, bool, error) {
	existing, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, false, apperrors.NewInternalError("Failed to look up user", err)
	}

	if existing != nil && existing.HasPassword() {
		return nil, false, apperrors.NewConflictError(apperrors.CodeEmailTaken, "An account with this email already exists")
	}

	holder, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, false, apperrors.NewInternalError("Failed to look up username", err)
	}
	if holder != nil && (existing == nil || holder.ID != existing.ID) {
		return nil, false, apperrors.NewConflictError(apperrors.CodeUsernameTaken, "Username is already taken")
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, false, apperrors.NewInternalError("Failed to hash password", err)
	}

	if existing != nil {
		// OAuth-only account: set credentials on the existing record
		upgraded, err := s.users.SetCredentials(ctx, existing.ID, req.Username, hash)
		if err != nil {
			return nil, false, apperrors.NewInternalError("Failed to upgrade account", err)
		}

		s.invalidateUser(ctx, existing.ID)
		s.logger.WithField("email", upgraded.Email).Info("OAuth-only account upgraded with local credentials")
		return upgraded, true, nil
	}

	user := &domain.User{
		ID:       uuid.NewString(),
		Email:    req.Email,
		Username: &req.Username,
		Name:     req.Name,
		Password: &hash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, false, apperrors.NewInternalError("Failed to create user", err)
	}

	s.logger.WithField("email", user.Email).Info("New user signed up")
	return user, false, nil
}

// SetPassword adds local credentials to the authenticated user
func (s *Service) SetPassword(ctx context.Context, userID string, req *domain.SetPasswordRequest) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to look up user", err)
	}
	if user == nil {
		return nil, apperrors.NewNotFoundError("User not found")
	}

	if user.HasPassword() {
		return nil, apperrors.NewConflictError(apperrors.CodeAlreadyHasPassword, "This account already has a password set")
	}

	holder, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to look up username", err)
	}
	if holder != nil && holder.ID != user.ID {
		return nil, apperrors.NewConflictError(apperrors.CodeUsernameTaken, "Username is already taken")
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to hash password", err)
	}

	updated, err := s.users.SetCredentials(ctx, user.ID, req.Username, hash)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to set password", err)
	}

	s.invalidateUser(ctx, user.ID)
	s.logger.WithField("email", updated.Email).Info("Password set for user")
	return updated, nil
}

// GetUserByID loads a user record, preferring the cache. Used on every
// authenticated request by the request gate.
func (s *Service) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, s.cache.KeyBuilder.KeyAuthUser(id)); err == nil {
			user := &domain.User{}
			if err := json.Unmarshal([]byte(cached), user); err == nil {
				return user, nil
			}
		}
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to look up user", err)
	}

	if user != nil && s.cache != nil {
		if data, err := json.Marshal(user); err == nil {
			if err := s.cache.Set(ctx, s.cache.KeyBuilder.KeyAuthUser(id), data, redis.TTLAuthUser); err != nil {
				s.logger.WithError(err).Warn("Failed to cache user record")
			}
		}
	}

	return user, nil
}

// invalidateUser drops the cached record after any credential mutation
func (s *Service) invalidateUser(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.cache.KeyBuilder.KeyAuthUser(id)); err != nil {
		s.logger.WithError(err).Warn("Failed to invalidate cached user record")
	}
}

// hashPassword produces a salted bcrypt digest
func hashPassword(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}
