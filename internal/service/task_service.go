package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"tasktracker/internal/domain"
	"tasktracker/internal/repository"
	apperrors "tasktracker/pkg/errors"
	"tasktracker/pkg/logger"
	"tasktracker/pkg/redis"
)

// dueDateFormats are the accepted layouts for the dueDate field
var dueDateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// TaskService performs validated, ownership-checked task operations on
// behalf of a single requesting user.
type TaskService struct {
	tasks  repository.TaskRepository
	cache  *redis.Client // may be nil when Redis is not configured
	logger *logger.Logger
}

// NewTaskService creates a new task service
func NewTaskService(tasks repository.TaskRepository, cache *redis.Client, logger *logger.Logger) *TaskService {
	return &TaskService{
		tasks:  tasks,
		cache:  cache,
		logger: logger,
	}
}

// List retrieves the requester's tasks, newest first. Filters are
// AND-combined; search matches case-insensitively against title or
// description. The unfiltered listing is served from cache when possible.
func (s *TaskService) List(ctx context.Context, userID string, filter domain.TaskFilter) ([]*domain.Task, error) {
	cacheable := filter.IsEmpty() && s.cache != nil

	if cacheable {
		if cached, err := s.cache.Get(ctx, s.cache.KeyBuilder.KeyTaskList(userID)); err == nil {
			tasks := make([]*domain.Task, 0)
			if err := json.Unmarshal([]byte(cached), &tasks); err == nil {
				return tasks, nil
			}
		}
	}

	tasks, err := s.tasks.List(ctx, userID, filter)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to fetch tasks", err)
	}

	if cacheable {
		if data, err := json.Marshal(tasks); err == nil {
			if err := s.cache.Set(ctx, s.cache.KeyBuilder.KeyTaskList(userID), data, redis.TTLTaskList); err != nil {
				s.logger.WithError(err).Warn("Failed to cache task list")
			}
		}
	}

	return tasks, nil
}

// Get retrieves a single task after checking existence and ownership
func (s *TaskService) Get(ctx context.Context, userID string, taskID int64) (*domain.Task, error) {
	return s.authorize(ctx, userID, taskID, "view")
}

// Create validates and stores a new task owned by the requester
func (s *TaskService) Create(ctx context.Context, userID string, req *domain.CreateTaskRequest) (*domain.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("Title is required")
	}

	priority := req.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	} else if !domain.IsValidPriority(priority) {
		return nil, apperrors.NewValidationError("Priority must be one of: Low, Medium, High")
	}

	status := req.Status
	if status == "" {
		status = domain.StatusToDo
	} else if !domain.IsValidStatus(status) {
		return nil, apperrors.NewValidationError("Status must be one of: To Do, In Progress, Done")
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	task := &domain.Task{
		Title:       title,
		Description: trimToNull(req.Description),
		Priority:    priority,
		Status:      status,
		DueDate:     dueDate,
		UserID:      userID,
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, apperrors.NewInternalError("Failed to create task", err)
	}

	s.invalidateList(ctx, userID)
	s.logger.WithFields(map[string]interface{}{
		"task_id": task.ID,
		"user_id": userID,
	}).Info("Task created")

	return task, nil
}

// Update applies a partial update to an owned task. Supplied fields are
// validated with the same rules as Create; absent fields are left alone;
// an explicit null clears description and dueDate.
func (s *TaskService) Update(ctx context.Context, userID string, taskID int64, req *domain.UpdateTaskRequest) (*domain.Task, error) {
	task, err := s.authorize(ctx, userID, taskID, "update")
	if err != nil {
		return nil, err
	}

	if req.Title.Set {
		title := strings.TrimSpace(req.Title.Value)
		if !req.Title.Valid || title == "" {
			return nil, apperrors.NewValidationError("Title is required")
		}
		task.Title = title
	}

	if req.Description.Set {
		if req.Description.Valid {
			task.Description = trimToNull(req.Description.Value)
		} else {
			task.Description = nil
		}
	}

	if req.DueDate.Set {
		if req.DueDate.Valid && req.DueDate.Value != "" {
			dueDate, err := parseDueDate(req.DueDate.Value)
			if err != nil {
				return nil, err
			}
			task.DueDate = dueDate
		} else {
			task.DueDate = nil
		}
	}

	if req.Priority.Set {
		if !req.Priority.Valid || !domain.IsValidPriority(req.Priority.Value) {
			return nil, apperrors.NewValidationError("Priority must be one of: Low, Medium, High")
		}
		task.Priority = req.Priority.Value
	}

	if req.Status.Set {
		if !req.Status.Valid || !domain.IsValidStatus(req.Status.Value) {
			return nil, apperrors.NewValidationError("Status must be one of: To Do, In Progress, Done")
		}
		task.Status = req.Status.Value
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, apperrors.NewInternalError("Failed to update task", err)
	}

	s.invalidateList(ctx, userID)
	s.logger.WithFields(map[string]interface{}{
		"task_id": task.ID,
		"user_id": userID,
	}).Info("Task updated")

	return task, nil
}

// Delete removes an owned task permanently
func (s *TaskService) Delete(ctx context.Context, userID string, taskID int64) error {
	task, err := s.authorize(ctx, userID, taskID, "delete")
	if err != nil {
		return err
	}

	deleted, err := s.tasks.Delete(ctx, task.ID)
	if err != nil {
		return apperrors.NewInternalError("Failed to delete task", err)
	}
	if !deleted {
		// Lost the race against a concurrent delete
		return apperrors.NewNotFoundError("Task not found")
	}

	s.invalidateList(ctx, userID)
	s.logger.WithFields(map[string]interface{}{
		"task_id": taskID,
		"user_id": userID,
	}).Info("Task deleted")

	return nil
}

// authorize loads a task and enforces the existence-then-ownership check
// order: a missing id is NotFound, someone else's id is Forbidden.
func (s *TaskService) authorize(ctx context.Context, userID string, taskID int64, action string) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to fetch task", err)
	}
	if task == nil {
		return nil, apperrors.NewNotFoundError("Task not found")
	}
	if task.UserID != userID {
		return nil, apperrors.NewForbiddenError("You don't have permission to " + action + " this task")
	}
	return task, nil
}

// invalidateList drops the cached task list after any mutation
func (s *TaskService) invalidateList(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.cache.KeyBuilder.KeyTaskList(userID)); err != nil {
		s.logger.WithError(err).Warn("Failed to invalidate cached task list")
	}
}

// parseDueDate parses the dueDate field; empty input means no due date
func parseDueDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	for _, layout := range dueDateFormats {
		if parsed, err := time.Parse(layout, value); err == nil {
			utc := parsed.UTC()
			return &utc, nil
		}
	}

	return nil, apperrors.NewValidationError("Invalid date format for dueDate")
}

// trimToNull trims a string and maps the empty result to NULL
func trimToNull(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
