package entities

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrUserNotFound             = errors.New("user not found")
	ErrCategoryNotFound         = errors.New("category not found")
	ErrTaskNotFound             = errors.New("task not found")
	ErrDuplicateIdentity        = errors.New("email or username already registered")
	ErrDuplicateName            = errors.New("category name already exists")
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrInvalidCategory          = errors.New("category does not exist or is not owned by user")
	ErrDefaultCategoryProtected = errors.New("default categories cannot be deleted")
	ErrCategoryInUse            = errors.New("category still has tasks assigned")
	ErrUnauthenticated          = errors.New("authentication required")
	ErrInvalidToken             = errors.New("invalid token")
	ErrTokenExpired             = errors.New("token expired")
)

// FieldError describes a single failed input constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates per-field input failures.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// TaskStatus is derived from completion state and due date; it is never stored.
type TaskStatus string

const (
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusOverdue   TaskStatus = "overdue"
	TaskStatusDueSoon   TaskStatus = "due-soon"
	TaskStatusPending   TaskStatus = "pending"
)

// DueSoonWindow is how far ahead a due date counts as "due-soon".
const DueSoonWindow = 24 * time.Hour

// User represents a registered account.
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	Username     string     `json:"username" db:"username"`
	PasswordHash string     `json:"-" db:"password_hash"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	LastLogin    *time.Time `json:"last_login" db:"last_login"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Category groups a user's tasks. Name is unique per owner, case-insensitive.
// TaskCount is denormalized and must equal the number of tasks referencing it.
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Name        string    `json:"name" db:"name"`
	Color       string    `json:"color" db:"color"`
	Icon        string    `json:"icon" db:"icon"`
	Description string    `json:"description" db:"description"`
	IsDefault   bool      `json:"is_default" db:"is_default"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	TaskCount   int       `json:"task_count" db:"task_count"`
	SortOrder   int       `json:"sort_order" db:"sort_order"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// CategoryRef is the resolved category summary attached to task listings.
type CategoryRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
}

// Task belongs to exactly one user and optionally references one of their categories.
// Tags and Notes carry no cross-entity invariants.
type Task struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	UserID      uuid.UUID    `json:"user_id" db:"user_id"`
	CategoryID  *uuid.UUID   `json:"category_id" db:"category_id"`
	Title       string       `json:"title" db:"title"`
	Description string       `json:"description" db:"description"`
	Completed   bool         `json:"completed" db:"completed"`
	CompletedAt *time.Time   `json:"completed_at" db:"completed_at"`
	Priority    Priority     `json:"priority" db:"priority"`
	DueDate     *time.Time   `json:"due_date" db:"due_date"`
	Tags        []string     `json:"tags" db:"-"`
	Notes       []string     `json:"notes" db:"-"`
	Category    *CategoryRef `json:"category,omitempty" db:"-"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

// Status computes the derived task status at the given instant.
func (t *Task) Status(now time.Time) TaskStatus {
	if t.Completed {
		return TaskStatusCompleted
	}
	if t.DueDate != nil {
		if t.DueDate.Before(now) {
			return TaskStatusOverdue
		}
		if t.DueDate.Sub(now) < DueSoonWindow {
			return TaskStatusDueSoon
		}
	}
	return TaskStatusPending
}

// IsOverdue reports whether the task is past due and not completed.
func (t *Task) IsOverdue(now time.Time) bool {
	return !t.Completed && t.DueDate != nil && t.DueDate.Before(now)
}

// ToggleCompletion flips the completed flag, stamping or clearing CompletedAt.
func (t *Task) ToggleCompletion(now time.Time) {
	t.Completed = !t.Completed
	if t.Completed {
		t.CompletedAt = &now
	} else {
		t.CompletedAt = nil
	}
}

// DefaultCategory describes one entry of the fixed set seeded at registration.
type DefaultCategory struct {
	Name      string
	Color     string
	Icon      string
	SortOrder int
}

// DefaultCategories is the fixed set seeded for every new user.
var DefaultCategories = []DefaultCategory{
	{Name: "Work", Color: "#3B82F6", Icon: "briefcase", SortOrder: 1},
	{Name: "Personal", Color: "#8B5CF6", Icon: "user", SortOrder: 2},
	{Name: "Shopping", Color: "#F59E0B", Icon: "shopping-cart", SortOrder: 3},
	{Name: "Health", Color: "#10B981", Icon: "heart", SortOrder: 4},
	{Name: "Learning", Color: "#EF4444", Icon: "book", SortOrder: 5},
	{Name: "Travel", Color: "#06B6D4", Icon: "map", SortOrder: 6},
}
