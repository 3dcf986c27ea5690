package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"tasktracker/internal/domain"
	"tasktracker/pkg/database"
)

const taskColumns = "id, title, description, priority, status, due_date, user_id, created_at, updated_at"

// taskRepository handles task persistence with PostgreSQL
type taskRepository struct {
	db *database.PostgresDB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *database.PostgresDB) TaskRepository {
	return &taskRepository{
		db: db,
	}
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	task := &domain.Task{}
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Priority,
		&task.Status,
		&task.DueDate,
		&task.UserID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// escapeLike escapes LIKE metacharacters so user input matches literally
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// List retrieves the tasks owned by userID matching the filter, newest
// first. Search matches case-insensitively against title or description;
// case folding is the database's ILIKE rule.
func (r *taskRepository) List(ctx context.Context, userID string, filter domain.TaskFilter) ([]*domain.Task, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("SELECT %s FROM tasks WHERE user_id = $1", taskColumns))

	args := []interface{}{userID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		sb.WriteString(fmt.Sprintf(" AND status = $%d", len(args)))
	}

	if filter.Priority != "" {
		args = append(args, filter.Priority)
		sb.WriteString(fmt.Sprintf(" AND priority = $%d", len(args)))
	}

	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		sb.WriteString(fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	sb.WriteString(" ORDER BY created_at DESC")

	rows, err := r.db.Pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading task rows: %w", err)
	}

	return tasks, nil
}

// GetByID retrieves a task by ID regardless of owner
func (r *taskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	query := fmt.Sprintf("SELECT %s FROM tasks WHERE id = $1", taskColumns)

	task, err := scanTask(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// Create inserts a new task
func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	query := `
		INSERT INTO tasks (title, description, priority, status, due_date, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		task.Title,
		task.Description,
		task.Priority,
		task.Status,
		task.DueDate,
		task.UserID,
		time.Now().UTC(),
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// Update persists the full mutable row of an existing task
func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	query := `
		UPDATE tasks
		SET title = $2, description = $3, priority = $4, status = $5, due_date = $6, updated_at = $7
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Priority,
		task.Status,
		task.DueDate,
		time.Now().UTC(),
	).Scan(&task.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	return nil
}

// Delete removes a task permanently
func (r *taskRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.Pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}

	return result.RowsAffected() > 0, nil
}
