package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"tasktracker/internal/domain"
	"tasktracker/pkg/database"
)

const userColumns = "id, email, username, name, password, google_id, picture, created_at"

// userRepository handles user persistence with PostgreSQL
type userRepository struct {
	db *database.PostgresDB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.PostgresDB) UserRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) getOne(ctx context.Context, query string, args ...interface{}) (*domain.User, error) {
	user := &domain.User{}
	err := r.db.Pool.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.Name,
		&user.Password,
		&user.GoogleID,
		&user.Picture,
		&user.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns)

	user, err := r.getOne(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE email = $1", userColumns)

	user, err := r.getOne(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// GetByGoogleID retrieves a user by Google account ID
func (r *userRepository) GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE google_id = $1", userColumns)

	user, err := r.getOne(ctx, query, googleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by google id: %w", err)
	}
	return user, nil
}

// GetByUsername retrieves a user by username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE username = $1", userColumns)

	user, err := r.getOne(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

// GetByEmailOrUsername retrieves a user whose email or username matches value
func (r *userRepository) GetByEmailOrUsername(ctx context.Context, value string) (*domain.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE email = $1 OR username = $1", userColumns)

	user, err := r.getOne(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email or username: %w", err)
	}
	return user, nil
}

// Create inserts a new user
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, username, name, password, google_id, picture, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		user.ID,
		user.Email,
		user.Username,
		user.Name,
		user.Password,
		user.GoogleID,
		user.Picture,
		time.Now().UTC(),
	).Scan(&user.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// LinkGoogle attaches a Google account to an existing user. The picture is
// only backfilled when the record has none.
func (r *userRepository) LinkGoogle(ctx context.Context, userID, googleID string, picture *string) (*domain.User, error) {
	query := fmt.Sprintf(`
		UPDATE users
		SET google_id = $2, picture = COALESCE(picture, $3)
		WHERE id = $1
		RETURNING %s
	`, userColumns)

	user, err := r.getOne(ctx, query, userID, googleID, picture)
	if err != nil {
		return nil, fmt.Errorf("failed to link google account: %w", err)
	}
	return user, nil
}

// SetCredentials stores a username and password digest on an existing user
func (r *userRepository) SetCredentials(ctx context.Context, userID, username, passwordHash string) (*domain.User, error) {
	query := fmt.Sprintf(`
		UPDATE users
		SET username = $2, password = $3
		WHERE id = $1
		RETURNING %s
	`, userColumns)

	user, err := r.getOne(ctx, query, userID, username, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to set credentials: %w", err)
	}
	return user, nil
}
