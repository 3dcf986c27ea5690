package handler

import (
	"net/http"
	"time"

	"tasktracker/internal/container"
)

// HealthHandler handles health check and service index requests
type HealthHandler struct {
	container *container.Container
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(container *container.Container) *HealthHandler {
	return &HealthHandler{
		container: container,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// IndexResponse describes the service and its top-level endpoints
type IndexResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	logger.Debug("Health check requested")

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "OK",
		Message:   "Task Tracker API is running",
		Timestamp: time.Now().UTC(),
	}, logger)
}

// Index handles GET /
func (h *HealthHandler) Index(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	writeJSON(w, http.StatusOK, IndexResponse{
		Message: "Task Tracker API",
		Version: "1.0.0",
		Endpoints: map[string]string{
			"health": "/health",
			"auth":   "/auth",
			"tasks":  "/api/tasks",
		},
	}, logger)
}
