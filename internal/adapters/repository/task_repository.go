package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/infrastructure/database"
	"github.com/tasknest/core/internal/ports"
)

// TaskRepositoryImpl implements the TaskRepository interface. Writes that touch
// a category's task_count run inside a transaction so the counter cannot
// diverge from the live reference count on partial failure.
type TaskRepositoryImpl struct {
	db *database.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *database.DB) ports.TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

// taskRow carries array columns and the joined category summary that the
// entity keeps out of its db mapping.
type taskRow struct {
	entities.Task
	RawTags  pq.StringArray `db:"tags"`
	RawNotes pq.StringArray `db:"notes"`
	CatName  *string        `db:"category_name"`
	CatColor *string        `db:"category_color"`
}

func (row *taskRow) toEntity() *entities.Task {
	task := row.Task
	task.Tags = []string(row.RawTags)
	task.Notes = []string(row.RawNotes)
	if task.CategoryID != nil && row.CatName != nil {
		task.Category = &entities.CategoryRef{
			ID:    *task.CategoryID,
			Name:  *row.CatName,
			Color: derefOr(row.CatColor, ""),
		}
	}
	return &task
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

const taskColumns = `
	t.id, t.user_id, t.category_id, t.title, t.description, t.completed, t.completed_at,
	t.priority, t.due_date, t.tags, t.notes, t.created_at, t.updated_at,
	c.name AS category_name, c.color AS category_color`

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *entities.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}

	return r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO tasks (id, user_id, category_id, title, description, completed, completed_at, priority, due_date, tags, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING created_at, updated_at`

		err := tx.QueryRowContext(ctx, query,
			task.ID, task.UserID, task.CategoryID, task.Title, task.Description,
			task.Completed, task.CompletedAt, task.Priority, task.DueDate,
			pq.Array(task.Tags), pq.Array(task.Notes),
		).Scan(&task.CreatedAt, &task.UpdatedAt)

		if err != nil {
			if isForeignKeyViolation(err) {
				return entities.ErrInvalidCategory
			}
			return fmt.Errorf("create task: %w", err)
		}

		if task.CategoryID != nil {
			return adjustTaskCount(ctx, tx, *task.CategoryID, 1)
		}
		return nil
	})
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*entities.Task, error) {
	query := `
		SELECT` + taskColumns + `
		FROM tasks t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.id = $1 AND t.user_id = $2`

	var row taskRow
	err := r.db.DB.GetContext(ctx, &row, query, id, ownerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task by id: %w", err)
	}

	return row.toEntity(), nil
}

func (r *TaskRepositoryImpl) List(ctx context.Context, ownerID uuid.UUID, filter ports.TaskFilter) ([]*entities.Task, error) {
	query := `
		SELECT` + taskColumns + `
		FROM tasks t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = $1`
	args := []interface{}{ownerID}

	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		query += fmt.Sprintf(" AND t.completed = $%d", len(args))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		query += fmt.Sprintf(" AND t.priority = $%d", len(args))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		query += fmt.Sprintf(" AND t.category_id = $%d", len(args))
	}
	if filter.DueDate != nil {
		dayStart := filter.DueDate.Truncate(24 * time.Hour)
		args = append(args, dayStart)
		query += fmt.Sprintf(" AND t.due_date >= $%d", len(args))
		args = append(args, dayStart.Add(24*time.Hour))
		query += fmt.Sprintf(" AND t.due_date < $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (t.title ILIKE $%d OR t.description ILIKE $%d)", len(args), len(args))
	}

	query += " ORDER BY t.created_at DESC"

	rows := []taskRow{}
	if err := r.db.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	tasks := make([]*entities.Task, 0, len(rows))
	for i := range rows {
		tasks = append(tasks, rows[i].toEntity())
	}

	return tasks, nil
}

func (r *TaskRepositoryImpl) Update(ctx context.Context, task *entities.Task, oldCategoryID *uuid.UUID) error {
	return r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE tasks
			SET category_id = $3, title = $4, description = $5, priority = $6, due_date = $7,
				tags = $8, notes = $9, updated_at = CURRENT_TIMESTAMP
			WHERE id = $1 AND user_id = $2
			RETURNING updated_at`

		err := tx.QueryRowContext(ctx, query,
			task.ID, task.UserID, task.CategoryID, task.Title, task.Description,
			task.Priority, task.DueDate, pq.Array(task.Tags), pq.Array(task.Notes),
		).Scan(&task.UpdatedAt)

		if err != nil {
			if err == sql.ErrNoRows {
				return entities.ErrTaskNotFound
			}
			if isForeignKeyViolation(err) {
				return entities.ErrInvalidCategory
			}
			return fmt.Errorf("update task: %w", err)
		}

		if !sameCategory(oldCategoryID, task.CategoryID) {
			if oldCategoryID != nil {
				if err := adjustTaskCount(ctx, tx, *oldCategoryID, -1); err != nil {
					return err
				}
			}
			if task.CategoryID != nil {
				if err := adjustTaskCount(ctx, tx, *task.CategoryID, 1); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func sameCategory(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *TaskRepositoryImpl) UpdateCompletion(ctx context.Context, task *entities.Task) error {
	query := `
		UPDATE tasks
		SET completed = $3, completed_at = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at`

	err := r.db.DB.QueryRowContext(ctx, query,
		task.ID, task.UserID, task.Completed, task.CompletedAt,
	).Scan(&task.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return entities.ErrTaskNotFound
		}
		return fmt.Errorf("update task completion: %w", err)
	}

	return nil
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2 RETURNING category_id`

		var categoryID *uuid.UUID
		err := tx.QueryRowContext(ctx, query, id, ownerID).Scan(&categoryID)
		if err != nil {
			if err == sql.ErrNoRows {
				return entities.ErrTaskNotFound
			}
			return fmt.Errorf("delete task: %w", err)
		}

		if categoryID != nil {
			return adjustTaskCount(ctx, tx, *categoryID, -1)
		}
		return nil
	})
}

func (r *TaskRepositoryImpl) CountByCategory(ctx context.Context, ownerID, categoryID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM tasks WHERE user_id = $1 AND category_id = $2`

	var count int
	if err := r.db.DB.GetContext(ctx, &count, query, ownerID, categoryID); err != nil {
		return 0, fmt.Errorf("count tasks by category: %w", err)
	}

	return count, nil
}

func (r *TaskRepositoryImpl) Stats(ctx context.Context, ownerID uuid.UUID, now time.Time) (*ports.TaskStats, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE completed) AS completed,
			COUNT(*) FILTER (WHERE NOT completed) AS pending,
			COUNT(*) FILTER (WHERE NOT completed AND due_date < $2) AS overdue,
			COUNT(*) FILTER (WHERE priority = 'high') AS high_priority
		FROM tasks
		WHERE user_id = $1`

	var row struct {
		Total        int `db:"total"`
		Completed    int `db:"completed"`
		Pending      int `db:"pending"`
		Overdue      int `db:"overdue"`
		HighPriority int `db:"high_priority"`
	}
	if err := r.db.DB.GetContext(ctx, &row, query, ownerID, now); err != nil {
		return nil, fmt.Errorf("task stats: %w", err)
	}

	return &ports.TaskStats{
		Total:        row.Total,
		Completed:    row.Completed,
		Pending:      row.Pending,
		Overdue:      row.Overdue,
		HighPriority: row.HighPriority,
	}, nil
}
