package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"tasktracker/internal/domain"
	"tasktracker/internal/service"
	"tasktracker/pkg/errors"
	"tasktracker/pkg/logger"
)

// TaskHandler handles task CRUD requests. Every route behind it requires an
// authenticated user attached by the auth gate.
type TaskHandler struct {
	tasks  *service.TaskService
	logger *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(tasks *service.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:  tasks,
		logger: logger,
	}
}

// TaskListResponse is the body of GET /api/tasks
type TaskListResponse struct {
	Success bool           `json:"success"`
	Count   int            `json:"count"`
	Tasks   []*domain.Task `json:"tasks"`
}

// TaskResponse is the body of single-task responses
type TaskResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Task    *domain.Task `json:"task"`
}

// List handles GET /api/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		writeError(w, errors.NewUnauthorizedError("User not authenticated"), h.logger)
		return
	}

	filter := domain.TaskFilter{
		Status:   r.URL.Query().Get("status"),
		Priority: r.URL.Query().Get("priority"),
		Search:   r.URL.Query().Get("search"),
	}

	tasks, err := h.tasks.List(r.Context(), user.ID, filter)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, TaskListResponse{
		Success: true,
		Count:   len(tasks),
		Tasks:   tasks,
	}, h.logger)
}

// Get handles GET /api/tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		writeError(w, errors.NewUnauthorizedError("User not authenticated"), h.logger)
		return
	}

	taskID, err := parseTaskID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	task, err := h.tasks.Get(r.Context(), user.ID, taskID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, TaskResponse{
		Success: true,
		Task:    task,
	}, h.logger)
}

// Create handles POST /api/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		writeError(w, errors.NewUnauthorizedError("User not authenticated"), h.logger)
		return
	}

	req := &domain.CreateTaskRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, errors.NewValidationError("Invalid request body"), h.logger)
		return
	}

	task, err := h.tasks.Create(r.Context(), user.ID, req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, TaskResponse{
		Success: true,
		Message: "Task created successfully",
		Task:    task,
	}, h.logger)
}

// Update handles PUT /api/tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		writeError(w, errors.NewUnauthorizedError("User not authenticated"), h.logger)
		return
	}

	taskID, err := parseTaskID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	req := &domain.UpdateTaskRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, errors.NewValidationError("Invalid request body"), h.logger)
		return
	}

	task, err := h.tasks.Update(r.Context(), user.ID, taskID, req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, TaskResponse{
		Success: true,
		Message: "Task updated successfully",
		Task:    task,
	}, h.logger)
}

// Delete handles DELETE /api/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		writeError(w, errors.NewUnauthorizedError("User not authenticated"), h.logger)
		return
	}

	taskID, err := parseTaskID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.tasks.Delete(r.Context(), user.ID, taskID); err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Task deleted successfully",
	}, h.logger)
}

// parseTaskID extracts and validates the numeric task id route parameter
func parseTaskID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, errors.NewValidationError("Invalid task ID")
	}
	return id, nil
}
