package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"tasktracker/internal/container"
	"tasktracker/internal/domain"
	"tasktracker/pkg/errors"
)

var (
	emailRegex    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
)

const passwordMinLength = 6

// AuthHandler handles authentication related requests
type AuthHandler struct {
	container *container.Container
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(container *container.Container) *AuthHandler {
	return &AuthHandler{
		container: container,
	}
}

// AuthResponse is the body of successful signup/login responses
type AuthResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    *domain.User `json:"user"`
}

// UserResponse is the body of responses carrying only a user
type UserResponse struct {
	Success bool         `json:"success"`
	User    *domain.User `json:"user"`
}

// GoogleLogin handles GET /auth/google
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	authURL := h.container.GetGoogleService().AuthURL("state")
	http.Redirect(w, r, authURL, http.StatusFound)
}

// GoogleCallback handles GET /auth/google/callback. The browser is redirected
// back to the frontend in every outcome; errors travel as query parameters.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()
	clientURL := h.container.GetConfig().ClientURL

	code := r.URL.Query().Get("code")
	if code == "" {
		logger.Warn("OAuth callback without authorization code")
		http.Redirect(w, r, clientURL+"/login?error=auth_failed", http.StatusFound)
		return
	}

	profile, err := h.container.GetGoogleService().Exchange(r.Context(), code)
	if err != nil {
		logger.WithError(err).Error("OAuth code exchange failed")
		http.Redirect(w, r, clientURL+"/login?error=auth_failed", http.StatusFound)
		return
	}

	user, err := h.container.GetAuthService().ResolveGoogleProfile(r.Context(), profile)
	if err != nil {
		logger.WithError(err).Error("Failed to resolve Google profile")
		http.Redirect(w, r, clientURL+"/login?error=auth_failed", http.StatusFound)
		return
	}

	token, err := h.container.GetTokenService().Generate(user)
	if err != nil {
		logger.WithError(err).Error("Failed to generate token")
		http.Redirect(w, r, clientURL+"/login?error=token_generation_failed", http.StatusFound)
		return
	}

	logger.WithField("email", user.Email).Info("User authenticated via Google")
	http.Redirect(w, r, clientURL+"/auth/success?token="+url.QueryEscape(token), http.StatusFound)
}

// Signup handles POST /auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	req := &domain.SignupRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, errors.NewValidationError("Invalid request body"), logger)
		return
	}

	if msgs := validateSignupRequest(req); len(msgs) > 0 {
		writeError(w, errors.NewValidationErrors(msgs), logger)
		return
	}

	user, upgraded, err := h.container.GetAuthService().Signup(r.Context(), req)
	if err != nil {
		writeError(w, err, logger)
		return
	}

	token, err := h.container.GetTokenService().Generate(user)
	if err != nil {
		writeError(w, err, logger)
		return
	}

	// Upgrading an existing OAuth-only account is not a creation
	status := http.StatusCreated
	if upgraded {
		status = http.StatusOK
	}

	writeJSON(w, status, AuthResponse{
		Success: true,
		Token:   token,
		User:    user,
	}, logger)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	req := &domain.LoginRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, errors.NewValidationError("Invalid request body"), logger)
		return
	}

	if msgs := validateLoginRequest(req); len(msgs) > 0 {
		writeError(w, errors.NewValidationErrors(msgs), logger)
		return
	}

	user, err := h.container.GetAuthService().Login(r.Context(), req.EmailOrUsername, req.Password)
	if err != nil {
		writeError(w, err, logger)
		return
	}

	token, err := h.container.GetTokenService().Generate(user)
	if err != nil {
		writeError(w, err, logger)
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Token:   token,
		User:    user,
	}, logger)
}

// SetPassword handles POST /auth/set-password
func (h *AuthHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	user, ok := userFromContext(r)
	if !ok {
		writeError(w, errors.NewUnauthorizedError("User not authenticated"), logger)
		return
	}

	req := &domain.SetPasswordRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, errors.NewValidationError("Invalid request body"), logger)
		return
	}

	if msgs := validateSetPasswordRequest(req); len(msgs) > 0 {
		writeError(w, errors.NewValidationErrors(msgs), logger)
		return
	}

	updated, err := h.container.GetAuthService().SetPassword(r.Context(), user.ID, req)
	if err != nil {
		writeError(w, err, logger)
		return
	}

	writeJSON(w, http.StatusOK, UserResponse{
		Success: true,
		User:    updated,
	}, logger)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	user, ok := userFromContext(r)
	if !ok {
		writeError(w, errors.NewUnauthorizedError("User not authenticated"), logger)
		return
	}

	writeJSON(w, http.StatusOK, UserResponse{
		Success: true,
		User:    user,
	}, logger)
}

// Logout handles GET /auth/logout. Tokens are stateless, so logging out is
// the client discarding its copy.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Logged out successfully. Please remove the token from client storage.",
	}, logger)
}

// validateSignupRequest checks the signup body and returns the list of
// validation messages, empty when valid.
func validateSignupRequest(req *domain.SignupRequest) []string {
	var errs []string

	if req.Email == "" {
		errs = append(errs, "Email is required")
	} else if !emailRegex.MatchString(req.Email) {
		errs = append(errs, "Invalid email format")
	}

	if req.Username == "" {
		errs = append(errs, "Username is required")
	} else if !usernameRegex.MatchString(req.Username) {
		errs = append(errs, "Username must be 3-20 characters long and contain only letters, numbers, and underscores")
	}

	if req.Password == "" {
		errs = append(errs, "Password is required")
	} else if len(req.Password) < passwordMinLength {
		errs = append(errs, "Password must be at least 6 characters long")
	}

	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, "Name is required")
	}

	return errs
}

// validateLoginRequest checks the login body
func validateLoginRequest(req *domain.LoginRequest) []string {
	var errs []string

	if req.EmailOrUsername == "" {
		errs = append(errs, "Email or username is required")
	}

	if req.Password == "" {
		errs = append(errs, "Password is required")
	}

	return errs
}

// validateSetPasswordRequest checks the set-password body
func validateSetPasswordRequest(req *domain.SetPasswordRequest) []string {
	var errs []string

	if req.Username == "" {
		errs = append(errs, "Username is required")
	} else if !usernameRegex.MatchString(req.Username) {
		errs = append(errs, "Username must be 3-20 characters long and contain only letters, numbers, and underscores")
	}

	if req.Password == "" {
		errs = append(errs, "Password is required")
	} else if len(req.Password) < passwordMinLength {
		errs = append(errs, "Password must be at least 6 characters long")
	}

	return errs
}
