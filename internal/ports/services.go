package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tasknest/core/internal/domain/entities"
)

// AuthService handles registration, login and token verification.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*entities.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error
	ValidateToken(tokenString string) (*Claims, error)
}

// CategoryService owns the category ledger, scoped to the acting user.
type CategoryService interface {
	List(ctx context.Context, ownerID uuid.UUID, filter CategoryFilter) ([]*entities.Category, error)
	Create(ctx context.Context, ownerID uuid.UUID, req CreateCategoryRequest) (*entities.Category, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, req UpdateCategoryRequest) (*entities.Category, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	ToggleActive(ctx context.Context, ownerID, id uuid.UUID) (*entities.Category, error)
	Reorder(ctx context.Context, ownerID, id uuid.UUID, sortOrder int) (*entities.Category, error)
	Stats(ctx context.Context, ownerID uuid.UUID) (*CategoryStats, error)
}

// TaskService owns the task ledger, scoped to the acting user.
type TaskService interface {
	List(ctx context.Context, ownerID uuid.UUID, filter TaskFilter) ([]*TaskView, error)
	Create(ctx context.Context, ownerID uuid.UUID, req CreateTaskRequest) (*TaskView, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, req UpdateTaskRequest) (*TaskView, error)
	ToggleComplete(ctx context.Context, ownerID, id uuid.UUID) (*TaskView, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	Stats(ctx context.Context, ownerID uuid.UUID) (*TaskStats, error)
}

// Claims is the verified token payload: just enough to identify the actor.
type Claims struct {
	UserID uuid.UUID
}

// Request/response types

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=30"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// AuthResponse carries the public profile and a signed bearer token.
type AuthResponse struct {
	User      *entities.User `json:"user"`
	Token     string         `json:"token"`
	TokenType string         `json:"token_type"`
	ExpiresIn int64          `json:"expires_in"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=30"`
	Color       string `json:"color" validate:"required,hexcolor"`
	Description string `json:"description" validate:"max=200"`
	Icon        string `json:"icon" validate:"max=50"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=30"`
	Color       *string `json:"color" validate:"omitempty,hexcolor"`
	Description *string `json:"description" validate:"omitempty,max=200"`
	Icon        *string `json:"icon" validate:"omitempty,max=50"`
}

type ReorderCategoryRequest struct {
	SortOrder int `json:"sort_order" validate:"gte=0"`
}

type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required,min=1,max=100"`
	Description string     `json:"description" validate:"max=500"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	CategoryID  *uuid.UUID `json:"category_id"`
	DueDate     *time.Time `json:"due_date"`
	Tags        []string   `json:"tags"`
	Notes       []string   `json:"notes"`
}

type UpdateTaskRequest struct {
	Title         *string    `json:"title" validate:"omitempty,min=1,max=100"`
	Description   *string    `json:"description" validate:"omitempty,max=500"`
	Priority      *string    `json:"priority" validate:"omitempty,oneof=low medium high"`
	CategoryID    *uuid.UUID `json:"category_id"`
	ClearCategory bool       `json:"clear_category"`
	DueDate       *time.Time `json:"due_date"`
	ClearDueDate  bool       `json:"clear_due_date"`
	Tags          []string   `json:"tags"`
	Notes         []string   `json:"notes"`
}

// TaskView is a task plus its derived status, as returned to clients.
type TaskView struct {
	*entities.Task
	Status entities.TaskStatus `json:"status"`
}
