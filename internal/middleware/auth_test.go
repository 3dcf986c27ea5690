package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tasktracker/internal/domain"
	apperrors "tasktracker/pkg/errors"
	"tasktracker/pkg/logger"
)

type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) Generate(user *domain.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

func (m *mockTokenService) Verify(token string) (*domain.TokenClaims, error) {
	args := m.Called(token)
	if v := args.Get(0); v != nil {
		return v.(*domain.TokenClaims), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) userArg(args mock.Arguments) (*domain.User, error) {
	if v := args.Get(0); v != nil {
		return v.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthService) ResolveGoogleProfile(ctx context.Context, profile *domain.GoogleProfile) (*domain.User, error) {
	return m.userArg(m.Called(ctx, profile))
}

func (m *mockAuthService) Login(ctx context.Context, emailOrUsername, password string) (*domain.User, error) {
	return m.userArg(m.Called(ctx, emailOrUsername, password))
}

func (m *mockAuthService) Signup(ctx context.Context, req *domain.SignupRequest) (*domain.User, bool, error) {
	args := m.Called(ctx, req)
	user, err := m.userArg(args)
	return user, args.Bool(1), err
}

func (m *mockAuthService) SetPassword(ctx context.Context, userID string, req *domain.SetPasswordRequest) (*domain.User, error) {
	return m.userArg(m.Called(ctx, userID, req))
}

func (m *mockAuthService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return m.userArg(m.Called(ctx, id))
}

func testLogger(t *testing.T) *logger.Logger {
	log, err := logger.New("error")
	require.NoError(t, err)
	return log
}

func gateHarness(t *testing.T, tokens *mockTokenService, users *mockAuthService) (http.Handler, *bool) {
	reached := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		user, ok := r.Context().Value(UserContextKey).(*domain.User)
		require.True(t, ok)
		assert.NotEmpty(t, user.ID)
		w.WriteHeader(http.StatusOK)
	})
	return Auth(tokens, users, testLogger(t))(inner), &reached
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAuth_RejectsMalformedHeaders(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		wantMsg string
	}{
		{
			name:    "Missing header",
			header:  "",
			wantMsg: "No authorization header provided",
		},
		{
			name:    "Wrong scheme",
			header:  "Basic dXNlcjpwYXNz",
			wantMsg: "Invalid authorization format. Use: Bearer <token>",
		},
		{
			name:    "Empty token",
			header:  "Bearer ",
			wantMsg: "No token provided",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := &mockTokenService{}
			users := &mockAuthService{}
			handler, reached := gateHarness(t, tokens, users)

			req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, *reached)

			body := decodeErrorBody(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantMsg, body["message"])
			tokens.AssertNotCalled(t, "Verify", mock.Anything)
		})
	}
}

func TestAuth_RejectsBadTokens(t *testing.T) {
	tests := []struct {
		name      string
		verifyErr error
		wantCode  string
	}{
		{
			name:      "Expired token",
			verifyErr: apperrors.NewTokenExpiredError(),
			wantCode:  string(apperrors.CodeTokenExpired),
		},
		{
			name:      "Tampered token",
			verifyErr: apperrors.NewInvalidTokenError(),
			wantCode:  string(apperrors.CodeInvalidToken),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := &mockTokenService{}
			tokens.On("Verify", "bad-token").Return(nil, tt.verifyErr)
			users := &mockAuthService{}
			handler, reached := gateHarness(t, tokens, users)

			req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
			req.Header.Set("Authorization", "Bearer bad-token")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, *reached)

			body := decodeErrorBody(t, rec)
			assert.Equal(t, tt.wantCode, body["error"])
			users.AssertNotCalled(t, "GetUserByID", mock.Anything, mock.Anything)
		})
	}
}

func TestAuth_RejectsDeletedUser(t *testing.T) {
	tokens := &mockTokenService{}
	tokens.On("Verify", "valid-token").Return(&domain.TokenClaims{ID: "gone", Email: "gone@example.com"}, nil)
	users := &mockAuthService{}
	users.On("GetUserByID", mock.Anything, "gone").Return(nil, nil)

	handler, reached := gateHarness(t, tokens, users)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *reached)
	assert.Equal(t, "User not found", decodeErrorBody(t, rec)["message"])
}

func TestAuth_AttachesUserToContext(t *testing.T) {
	user := &domain.User{ID: "u1", Email: "u1@example.com", Name: "User One"}
	tokens := &mockTokenService{}
	tokens.On("Verify", "valid-token").Return(&domain.TokenClaims{ID: "u1", Email: user.Email, Name: user.Name}, nil)
	users := &mockAuthService{}
	users.On("GetUserByID", mock.Anything, "u1").Return(user, nil)

	handler, reached := gateHarness(t, tokens, users)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *reached)
}

func TestOptionalAuth_ProceedsAnonymously(t *testing.T) {
	tokens := &mockTokenService{}
	users := &mockAuthService{}

	var sawUser bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawUser = r.Context().Value(UserContextKey).(*domain.User)
		w.WriteHeader(http.StatusOK)
	})
	handler := OptionalAuth(tokens, users, testLogger(t))(inner)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, sawUser)
}

func TestRequestID_SetsHeader(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := r.Context().Value(RequestIDContextKey).(string)
		assert.True(t, ok)
		assert.NotEmpty(t, id)
	})
	handler := RequestID(testLogger(t))(inner)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
