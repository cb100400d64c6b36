package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tasknest/core/internal/domain/entities"
)

// UserRepository defines the interface for user data operations.
// Email and username lookups are case-insensitive.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// CategoryRepository defines the interface for category data operations.
// Every read and write is scoped by owner id; a category belonging to another
// user behaves exactly like a missing one.
type CategoryRepository interface {
	Create(ctx context.Context, category *entities.Category) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*entities.Category, error)
	List(ctx context.Context, ownerID uuid.UUID, filter CategoryFilter) ([]*entities.Category, error)
	Update(ctx context.Context, category *entities.Category) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	NameExists(ctx context.Context, ownerID uuid.UUID, name string, excludeID uuid.UUID) (bool, error)
	NextSortOrder(ctx context.Context, ownerID uuid.UUID) (int, error)
	SeedDefaults(ctx context.Context, ownerID uuid.UUID) error
	// AdjustTaskCount applies delta to the denormalized counter as a single
	// atomic storage operation, clamped at zero.
	AdjustTaskCount(ctx context.Context, id uuid.UUID, delta int) error
	Stats(ctx context.Context, ownerID uuid.UUID) (*CategoryStats, error)
}

// TaskRepository defines the interface for task data operations, scoped by
// owner id. Create, Update and Delete keep the referenced categories'
// task_count consistent within the same storage transaction.
type TaskRepository interface {
	Create(ctx context.Context, task *entities.Task) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*entities.Task, error)
	List(ctx context.Context, ownerID uuid.UUID, filter TaskFilter) ([]*entities.Task, error)
	// Update persists the task; when the category reference changed,
	// oldCategoryID carries the previous value so the count moves from the
	// old category to the new one as one transition.
	Update(ctx context.Context, task *entities.Task, oldCategoryID *uuid.UUID) error
	UpdateCompletion(ctx context.Context, task *entities.Task) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	CountByCategory(ctx context.Context, ownerID, categoryID uuid.UUID) (int, error)
	Stats(ctx context.Context, ownerID uuid.UUID, now time.Time) (*TaskStats, error)
}

// CategoryFilter narrows category listings.
type CategoryFilter struct {
	IsActive  *bool
	IsDefault *bool
}

// TaskFilter narrows task listings. Search matches title or description,
// case-insensitive. DueDate matches tasks due on that calendar day.
type TaskFilter struct {
	Completed  *bool
	Priority   *entities.Priority
	CategoryID *uuid.UUID
	DueDate    *time.Time
	Search     string
}

// TaskStats aggregates a user's tasks.
type TaskStats struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	Pending        int `json:"pending"`
	Overdue        int `json:"overdue"`
	HighPriority   int `json:"high_priority"`
	CompletionRate int `json:"completion_rate"`
}

// CategoryStats aggregates a user's categories.
type CategoryStats struct {
	Total     int                  `json:"total"`
	Active    int                  `json:"active"`
	Default   int                  `json:"default"`
	WithTasks int                  `json:"with_tasks"`
	Top       []*entities.Category `json:"top"`
}
