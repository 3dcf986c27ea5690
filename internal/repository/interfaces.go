package repository

import (
	"context"

	"tasktracker/internal/domain"
)

// UserRepository defines the interface for user data operations. Lookup
// methods return (nil, nil) when no row matches.
type UserRepository interface {
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByGoogleID retrieves a user by Google account ID
	GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error)

	// GetByUsername retrieves a user by username
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetByEmailOrUsername retrieves a user whose email or username matches value
	GetByEmailOrUsername(ctx context.Context, value string) (*domain.User, error)

	// Create inserts a new user and fills server-generated fields
	Create(ctx context.Context, user *domain.User) error

	// LinkGoogle attaches a Google account to an existing user, backfilling
	// the picture only when the record has none
	LinkGoogle(ctx context.Context, userID, googleID string, picture *string) (*domain.User, error)

	// SetCredentials stores a username and password digest on an existing user
	SetCredentials(ctx context.Context, userID, username, passwordHash string) (*domain.User, error)
}

// TaskRepository defines the interface for task data operations
type TaskRepository interface {
	// List retrieves the tasks owned by userID matching the filter,
	// newest first
	List(ctx context.Context, userID string, filter domain.TaskFilter) ([]*domain.Task, error)

	// GetByID retrieves a task by ID regardless of owner; (nil, nil) when absent
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// Create inserts a new task and fills server-generated fields
	Create(ctx context.Context, task *domain.Task) error

	// Update persists the full mutable row of an existing task
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task permanently; false when no row was deleted
	Delete(ctx context.Context, id int64) (bool, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	User UserRepository
	Task TaskRepository
}
