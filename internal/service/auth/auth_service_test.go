package auth

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"tasktracker/internal/domain"
	apperrors "tasktracker/pkg/errors"
	"tasktracker/pkg/logger"
	"tasktracker/pkg/redis"
)

// mockUserRepository is a testify mock of repository.UserRepository
type mockUserRepository struct {
	mock.Mock
}

func userArg(args mock.Arguments, index int) *domain.User {
	if u := args.Get(index); u != nil {
		return u.(*domain.User)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	return userArg(args, 0), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	return userArg(args, 0), args.Error(1)
}

func (m *mockUserRepository) GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	args := m.Called(ctx, googleID)
	return userArg(args, 0), args.Error(1)
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	return userArg(args, 0), args.Error(1)
}

func (m *mockUserRepository) GetByEmailOrUsername(ctx context.Context, value string) (*domain.User, error) {
	args := m.Called(ctx, value)
	return userArg(args, 0), args.Error(1)
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) LinkGoogle(ctx context.Context, userID, googleID string, picture *string) (*domain.User, error) {
	args := m.Called(ctx, userID, googleID, picture)
	return userArg(args, 0), args.Error(1)
}

func (m *mockUserRepository) SetCredentials(ctx context.Context, userID, username, passwordHash string) (*domain.User, error) {
	args := m.Called(ctx, userID, username, passwordHash)
	return userArg(args, 0), args.Error(1)
}

func testLogger(t *testing.T) *logger.Logger {
	log, err := logger.New("error")
	require.NoError(t, err)
	return log
}

func hashFor(t *testing.T, plaintext string) string {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.MinCost)
	require.NoError(t, err)
	return string(digest)
}

func strPtr(s string) *string {
	return &s
}

func assertAppError(t *testing.T, err error, code apperrors.ErrorCode) {
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok, "expected *apperrors.AppError, got %T", err)
	assert.Equal(t, code, appErr.Code)
}

func TestResolveGoogleProfile_ExistingOAuthUser(t *testing.T) {
	repo := &mockUserRepository{}
	svc := NewService(repo, nil, testLogger(t))

	existing := &domain.User{ID: "u1", Email: "a@x.com", GoogleID: strPtr("g1")}
	repo.On("GetByGoogleID", mock.Anything, "g1").Return(existing, nil)

	user, err := svc.ResolveGoogleProfile(context.Background(), &domain.GoogleProfile{
		GoogleID: "g1",
		Email:    "a@x.com",
		Name:     "Alice",
	})

	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestResolveGoogleProfile_LinksByEmail(t *testing.T) {
	repo := &mockUserRepository{}
	svc := NewService(repo, nil, testLogger(t))

	local := &domain.User{ID: "u1", Email: "a@x.com", Username: strPtr("alice"), Password: strPtr("digest")}
	linked := &domain.User{ID: "u1", Email: "a@x.com", Username: strPtr("alice"), Password: strPtr("digest"), GoogleID: strPtr("g1")}

	repo.On("GetByGoogleID", mock.Anything, "g1").Return(nil, nil)
	repo.On("GetByEmail", mock.Anything, "a@x.com").Return(local, nil)
	repo.On("LinkGoogle", mock.Anything, "u1", "g1", mock.Anything).Return(linked, nil)

	user, err := svc.ResolveGoogleProfile(context.Background(), &domain.GoogleProfile{
		GoogleID: "g1",
		Email:    "a@x.com",
		Name:     "Alice",
		Picture:  "https://example.com/p.jpg",
	})

	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	require.NotNil(t, user.GoogleID)
	assert.Equal(t, "g1", *user.GoogleID)
	assert.NotNil(t, user.Password, "linking must keep the local credentials")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestResolveGoogleProfile_CreatesNewUser(t *testing.T) {
	repo := &mockUserRepository{}
	svc := NewService(repo, nil, testLogger(t))

	repo.On("GetByGoogleID", mock.Anything, "g1").Return(nil, nil)
	repo.On("GetByEmail", mock.Anything, "new@x.com").Return(nil, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "new@x.com" && u.GoogleID != nil && *u.GoogleID == "g1" && u.ID != ""
	})).Return(nil)

	user, err := svc.ResolveGoogleProfile(context.Background(), &domain.GoogleProfile{
		GoogleID: "g1",
		Email:    "new@x.com",
		Name:     "Newbie",
	})

	require.NoError(t, err)
	assert.Equal(t, "new@x.com", user.Email)
	repo.AssertExpectations(t)
}

func TestLogin(t *testing.T) {
	digest := hashFor(t, "secret1")

	localUser := &domain.User{ID: "u1", Email: "a@x.com", Username: strPtr("alice"), Password: &digest}
	oauthUser := &domain.User{ID: "u2", Email: "g@x.com", GoogleID: strPtr("g2")}

	tests := []struct {
		name     string
		input    string
		password string
		found    *domain.User
		wantCode apperrors.ErrorCode
	}{
		{
			name:     "Successful login by username",
			input:    "alice",
			password: "secret1",
			found:    localUser,
		},
		{
			name:     "Successful login by email",
			input:    "a@x.com",
			password: "secret1",
			found:    localUser,
		},
		{
			name:     "Unknown account",
			input:    "nobody",
			password: "secret1",
			found:    nil,
			wantCode: apperrors.CodeInvalidCredentials,
		},
		{
			name:     "Wrong password",
			input:    "alice",
			password: "wrong",
			found:    localUser,
			wantCode: apperrors.CodeInvalidCredentials,
		},
		{
			name:     "OAuth-only account",
			input:    "g@x.com",
			password: "secret1",
			found:    oauthUser,
			wantCode: apperrors.CodeOAuthOnlyAccount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockUserRepository{}
			repo.On("GetByEmailOrUsername", mock.Anything, tt.input).Return(tt.found, nil)

			svc := NewService(repo, nil, testLogger(t))
			user, err := svc.Login(context.Background(), tt.input, tt.password)

			if tt.wantCode != "" {
				assertAppError(t, err, tt.wantCode)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.found.ID, user.ID)
			}
		})
	}
}

func TestSignup_NewUser(t *testing.T) {
	repo := &mockUserRepository{}
	svc := NewService(repo, nil, testLogger(t))

	repo.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, nil)
	repo.On("GetByUsername", mock.Anything, "alice").Return(nil, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		if u.Email != "a@x.com" || u.Username == nil || *u.Username != "alice" {
			return false
		}
		// The stored password must be a digest that verifies, never plaintext
		return u.Password != nil &&
			bcrypt.CompareHashAndPassword([]byte(*u.Password), []byte("secret1")) == nil
	})).Return(nil)

	user, upgraded, err := svc.Signup(context.Background(), &domain.SignupRequest{
		Email:    "a@x.com",
		Username: "alice",
		Password: "secret1",
		Name:     "Alice",
	})

	require.NoError(t, err)
	assert.False(t, upgraded)
	assert.Equal(t, "a@x.com", user.Email)
	repo.AssertExpectations(t)
}

func TestSignup_EmailTaken(t *testing.T) {
	repo := &mockUserRepository{}
	svc := NewService(repo, nil, testLogger(t))

	digest := hashFor(t, "other")
	repo.On("GetByEmail", mock.Anything, "a@x.com").Return(
		&domain.User{ID: "u1", Email: "a@x.com", Password: &digest}, nil)

	_, _, err := svc.Signup(context.Background(), &domain.SignupRequest{
		Email:    "a@x.com",
		Username: "alice",
		Password: "secret1",
		Name:     "Alice",
	})

	assertAppError(t, err, apperrors.CodeEmailTaken)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSignup_UsernameTaken(t *testing.T) {
	repo := &mockUserRepository{}
	svc := NewService(repo, nil, testLogger(t))

	repo.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, nil)
	repo.On("GetByUsername", mock.Anything, "alice").Return(
		&domain.User{ID: "other", Email: "b@x.com"}, nil)

	_, _, err := svc.Signup(context.Background(), &domain.SignupRequest{
		Email:    "a@x.com",
		Username: "alice",
		Password: "secret1",
		Name:     "Alice",
	})

	assertAppError(t, err, apperrors.CodeUsernameTaken)
}

func TestSignup_UpgradesOAuthOnlyAccount(t *testing.T) {
	repo := &mockUserRepository{}
	svc := NewService(repo, nil, testLogger(t))

	oauthOnly := &domain.User{ID: "u1", Email: "a@x.com", GoogleID: strPtr("g1")}
	upgraded := &domain.User{ID: "u1", Email: "a@x.com", GoogleID: strPtr("g1"), Username: strPtr("alice"), Password: strPtr("digest")}

	repo.On("GetByEmail", mock.Anything, "a@x.com").Return(oauthOnly, nil)
	repo.On("GetByUsername", mock.Anything, "alice").Return(nil, nil)
	repo.On("SetCredentials", mock.Anything, "u1", "alice", mock.AnythingOfType("string")).Return(upgraded, nil)

	user, wasUpgrade, err := svc.Signup(context.Background(), &domain.SignupRequest{
		Email:    "a@x.com",
		Username: "alice",
		Password: "secret1",
		Name:     "Alice",
	})

	require.NoError(t, err)
	assert.True(t, wasUpgrade)
	assert.Equal(t, "u1", user.ID, "must upgrade the existing record, not create a second user")
	assert.NotNil(t, user.GoogleID)
	assert.NotNil(t, user.Password)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSetPassword(t *testing.T) {
	digest := hashFor(t, "existing")

	tests := []struct {
		name     string
		user     *domain.User
		holder   *domain.User
		wantCode apperrors.ErrorCode
	}{
		{
			name: "Success",
			user: &domain.User{ID: "u1", Email: "a@x.com", GoogleID: strPtr("g1")},
		},
		{
			name:     "User not found",
			user:     nil,
			wantCode: apperrors.CodeNotFound,
		},
		{
			name:     "Already has password",
			user:     &domain.User{ID: "u1", Email: "a@x.com", Password: &digest},
			wantCode: apperrors.CodeAlreadyHasPassword,
		},
		{
			name:     "Username held by another account",
			user:     &domain.User{ID: "u1", Email: "a@x.com", GoogleID: strPtr("g1")},
			holder:   &domain.User{ID: "u2", Email: "b@x.com"},
			wantCode: apperrors.CodeUsernameTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockUserRepository{}
			repo.On("GetByID", mock.Anything, "u1").Return(tt.user, nil)
			repo.On("GetByUsername", mock.Anything, "alice").Return(tt.holder, nil)
			if tt.wantCode == "" {
				updated := &domain.User{ID: "u1", Email: "a@x.com", Username: strPtr("alice"), Password: strPtr("digest")}
				repo.On("SetCredentials", mock.Anything, "u1", "alice", mock.AnythingOfType("string")).Return(updated, nil)
			}

			svc := NewService(repo, nil, testLogger(t))
			user, err := svc.SetPassword(context.Background(), "u1", &domain.SetPasswordRequest{
				Username: "alice",
				Password: "secret1",
			})

			if tt.wantCode != "" {
				assertAppError(t, err, tt.wantCode)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user.Username)
				assert.Equal(t, "alice", *user.Username)
			}
		})
	}
}

func TestGetUserByID_CachesRecord(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	log := testLogger(t)
	cache, err := redis.NewClient("redis://"+mr.Addr(), "test", log.Logger)
	require.NoError(t, err)

	repo := &mockUserRepository{}
	repo.On("GetByID", mock.Anything, "u1").Return(
		&domain.User{ID: "u1", Email: "a@x.com", Name: "Alice"}, nil).Once()

	svc := NewService(repo, cache, log)

	// First call hits the repository and fills the cache
	user, err := svc.GetUserByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)

	// Second call is served from cache; the mock would panic on a second repo call
	user, err = svc.GetUserByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)

	repo.AssertNumberOfCalls(t, "GetByID", 1)
}

func TestSetPassword_InvalidatesCachedUser(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	log := testLogger(t)
	cache, err := redis.NewClient("redis://"+mr.Addr(), "test", log.Logger)
	require.NoError(t, err)

	oauthOnly := &domain.User{ID: "u1", Email: "a@x.com", GoogleID: strPtr("g1")}
	updated := &domain.User{ID: "u1", Email: "a@x.com", GoogleID: strPtr("g1"), Username: strPtr("alice"), Password: strPtr("digest")}

	repo := &mockUserRepository{}
	repo.On("GetByID", mock.Anything, "u1").Return(oauthOnly, nil)
	repo.On("GetByUsername", mock.Anything, "alice").Return(nil, nil)
	repo.On("SetCredentials", mock.Anything, "u1", "alice", mock.AnythingOfType("string")).Return(updated, nil)

	svc := NewService(repo, cache, log)

	// Warm the cache, then mutate
	_, err = svc.GetUserByID(context.Background(), "u1")
	require.NoError(t, err)

	key := cache.KeyBuilder.KeyAuthUser("u1")
	assert.True(t, mr.Exists(key))

	_, err = svc.SetPassword(context.Background(), "u1", &domain.SetPasswordRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	assert.False(t, mr.Exists(key))
}
