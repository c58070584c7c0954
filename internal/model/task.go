package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrTitleRequired   = errors.New("title is required")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidStatus   = errors.New("invalid status")
)

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Status is the lifecycle state of a task.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task is a task record as served by the task API.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Deadline    LocalTime `json:"deadline"`
	Priority    Priority  `json:"priority"`
	Status      Status    `json:"status"`
	AssignedTo  *User     `json:"assignedTo,omitempty"`
	CreatedBy   *User     `json:"createdBy,omitempty"`
	UpdatedBy   *User     `json:"updatedBy,omitempty"`
	CreatedAt   LocalTime `json:"createdAt"`
	UpdatedAt   LocalTime `json:"updatedAt"`
}

// TaskFilter selects a server-side subset of tasks by deadline window.
type TaskFilter string

const (
	FilterAll       TaskFilter = ""
	FilterToday     TaskFilter = "today"
	FilterNext7Days TaskFilter = "next7days"
)

// ParseTaskFilter maps a dashboard view name to a TaskFilter.
func ParseTaskFilter(s string) (TaskFilter, error) {
	switch s {
	case "", "all":
		return FilterAll, nil
	case "today":
		return FilterToday, nil
	case "next7days", "next7day", "week":
		return FilterNext7Days, nil
	}
	return FilterAll, fmt.Errorf("unknown task view %q", s)
}

// CreateTaskRequest is the payload for creating a task.
type CreateTaskRequest struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Deadline     LocalTime `json:"deadline"`
	Priority     Priority  `json:"priority"`
	Status       Status    `json:"status"`
	AssignedToID int64     `json:"assignedToId"`
	CreatedByID  int64     `json:"createdById"`
}

// UpdateTaskRequest is a partial task update. Nil fields are left unchanged.
type UpdateTaskRequest struct {
	Title        *string    `json:"title,omitempty"`
	Description  *string    `json:"description,omitempty"`
	Deadline     *LocalTime `json:"deadline,omitempty"`
	Priority     *Priority  `json:"priority,omitempty"`
	Status       *Status    `json:"status,omitempty"`
	AssignedToID *int64     `json:"assignedToId,omitempty"`
	UpdatedByID  *int64     `json:"updatedById,omitempty"`
}

// Validate checks the enum fields of a create request. Empty values are
// filled with the dashboard defaults.
func (r *CreateTaskRequest) Validate() error {
	if r.Title == "" {
		return ErrTitleRequired
	}
	if r.Priority == "" {
		r.Priority = PriorityMedium
	}
	if r.Status == "" {
		r.Status = StatusTodo
	}
	if !r.Priority.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, r.Priority)
	}
	if !r.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, r.Status)
	}
	if r.Deadline.IsZero() {
		r.Deadline = LocalTime{Time: time.Now()}
	}
	return nil
}

// Validate checks the enum fields that are present in an update request.
func (r UpdateTaskRequest) Validate() error {
	if r.Title != nil && *r.Title == "" {
		return ErrTitleRequired
	}
	if r.Priority != nil && !r.Priority.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, *r.Priority)
	}
	if r.Status != nil && !r.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, *r.Status)
	}
	return nil
}
