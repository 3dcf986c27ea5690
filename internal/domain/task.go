package domain

import (
	"encoding/json"
	"time"
)

// Task priorities
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// Task statuses
const (
	StatusToDo       = "To Do"
	StatusInProgress = "In Progress"
	StatusDone       = "Done"
)

// ValidPriorities lists the accepted task priorities
var ValidPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh}

// ValidStatuses lists the accepted task statuses
var ValidStatuses = []string{StatusToDo, StatusInProgress, StatusDone}

// IsValidPriority reports whether p is an accepted priority value
func IsValidPriority(p string) bool {
	for _, v := range ValidPriorities {
		if p == v {
			return true
		}
	}
	return false
}

// IsValidStatus reports whether s is an accepted status value
func IsValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Task represents a task owned by a single user
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"dueDate"`
	UserID      string     `json:"userId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TaskFilter narrows a task listing. Empty fields are ignored; present
// fields are AND-combined.
type TaskFilter struct {
	Status   string
	Priority string
	Search   string
}

// IsEmpty reports whether the filter matches everything
func (f TaskFilter) IsEmpty() bool {
	return f.Status == "" && f.Priority == "" && f.Search == ""
}

// CreateTaskRequest is the body of POST /api/tasks
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
}

// OptionalString is a tri-state JSON string field: absent (Set=false),
// explicit null (Set=true, Valid=false), or a value (Set=true, Valid=true).
// Partial updates need the distinction because absence leaves a column
// untouched while an explicit null clears it.
type OptionalString struct {
	Set   bool
	Valid bool
	Value string
}

// UnmarshalJSON implements json.Unmarshaler
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// UpdateTaskRequest is the body of PUT /api/tasks/:id. Only supplied fields
// are applied.
type UpdateTaskRequest struct {
	Title       OptionalString `json:"title"`
	Description OptionalString `json:"description"`
	DueDate     OptionalString `json:"dueDate"`
	Priority    OptionalString `json:"priority"`
	Status      OptionalString `json:"status"`
}
