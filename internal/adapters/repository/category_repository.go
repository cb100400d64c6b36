package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/infrastructure/database"
	"github.com/tasknest/core/internal/ports"
)

// CategoryRepositoryImpl implements the CategoryRepository interface
type CategoryRepositoryImpl struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *database.DB) ports.CategoryRepository {
	return &CategoryRepositoryImpl{db: db.DB}
}

func (r *CategoryRepositoryImpl) Create(ctx context.Context, category *entities.Category) error {
	query := `
		INSERT INTO categories (id, user_id, name, color, icon, description, is_default, is_active, task_count, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		category.ID, category.UserID, category.Name, category.Color, category.Icon,
		category.Description, category.IsDefault, category.IsActive, category.TaskCount, category.SortOrder,
	).Scan(&category.CreatedAt, &category.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return entities.ErrDuplicateName
		}
		return fmt.Errorf("create category: %w", err)
	}

	return nil
}

func (r *CategoryRepositoryImpl) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*entities.Category, error) {
	query := `
		SELECT id, user_id, name, color, icon, description, is_default, is_active, task_count, sort_order, created_at, updated_at
		FROM categories
		WHERE id = $1 AND user_id = $2`

	var category entities.Category
	err := r.db.GetContext(ctx, &category, query, id, ownerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category by id: %w", err)
	}

	return &category, nil
}

func (r *CategoryRepositoryImpl) List(ctx context.Context, ownerID uuid.UUID, filter ports.CategoryFilter) ([]*entities.Category, error) {
	query := `
		SELECT id, user_id, name, color, icon, description, is_default, is_active, task_count, sort_order, created_at, updated_at
		FROM categories
		WHERE user_id = $1`
	args := []interface{}{ownerID}

	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		query += fmt.Sprintf(" AND is_active = $%d", len(args))
	}
	if filter.IsDefault != nil {
		args = append(args, *filter.IsDefault)
		query += fmt.Sprintf(" AND is_default = $%d", len(args))
	}

	query += " ORDER BY sort_order ASC, name ASC"

	categories := []*entities.Category{}
	if err := r.db.SelectContext(ctx, &categories, query, args...); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return categories, nil
}

func (r *CategoryRepositoryImpl) Update(ctx context.Context, category *entities.Category) error {
	query := `
		UPDATE categories
		SET name = $3, color = $4, icon = $5, description = $6, is_active = $7, sort_order = $8,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		category.ID, category.UserID, category.Name, category.Color, category.Icon,
		category.Description, category.IsActive, category.SortOrder,
	).Scan(&category.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return entities.ErrCategoryNotFound
		}
		if isUniqueViolation(err) {
			return entities.ErrDuplicateName
		}
		return fmt.Errorf("update category: %w", err)
	}

	return nil
}

func (r *CategoryRepositoryImpl) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	query := `DELETE FROM categories WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrCategoryNotFound
	}

	return nil
}

func (r *CategoryRepositoryImpl) NameExists(ctx context.Context, ownerID uuid.UUID, name string, excludeID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM categories
			WHERE user_id = $1 AND LOWER(name) = LOWER($2) AND id <> $3
		)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, ownerID, name, excludeID); err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}

	return exists, nil
}

func (r *CategoryRepositoryImpl) NextSortOrder(ctx context.Context, ownerID uuid.UUID) (int, error) {
	query := `SELECT COALESCE(MAX(sort_order), 0) + 1 FROM categories WHERE user_id = $1`

	var next int
	if err := r.db.GetContext(ctx, &next, query, ownerID); err != nil {
		return 0, fmt.Errorf("next sort order: %w", err)
	}

	return next, nil
}

func (r *CategoryRepositoryImpl) SeedDefaults(ctx context.Context, ownerID uuid.UUID) error {
	query := `
		INSERT INTO categories (id, user_id, name, color, icon, description, is_default, is_active, task_count, sort_order)
		VALUES ($1, $2, $3, $4, $5, '', TRUE, TRUE, 0, $6)
		ON CONFLICT (user_id, LOWER(name)) DO NOTHING`

	for _, dc := range entities.DefaultCategories {
		if _, err := r.db.ExecContext(ctx, query, uuid.New(), ownerID, dc.Name, dc.Color, dc.Icon, dc.SortOrder); err != nil {
			return fmt.Errorf("seed default category %q: %w", dc.Name, err)
		}
	}

	return nil
}

func (r *CategoryRepositoryImpl) AdjustTaskCount(ctx context.Context, id uuid.UUID, delta int) error {
	return adjustTaskCount(ctx, r.db, id, delta)
}

// adjustTaskCount applies delta to the denormalized counter in a single UPDATE,
// clamped at zero. Shared with the task repository's transactional writes.
func adjustTaskCount(ctx context.Context, e sqlx.ExtContext, id uuid.UUID, delta int) error {
	query := `
		UPDATE categories
		SET task_count = GREATEST(task_count + $2, 0), updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	if _, err := e.ExecContext(ctx, query, id, delta); err != nil {
		return fmt.Errorf("adjust task count: %w", err)
	}

	return nil
}

func (r *CategoryRepositoryImpl) Stats(ctx context.Context, ownerID uuid.UUID) (*ports.CategoryStats, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE is_active) AS active,
			COUNT(*) FILTER (WHERE is_default) AS "default",
			COUNT(*) FILTER (WHERE task_count > 0) AS with_tasks
		FROM categories
		WHERE user_id = $1`

	var row struct {
		Total     int `db:"total"`
		Active    int `db:"active"`
		Default   int `db:"default"`
		WithTasks int `db:"with_tasks"`
	}
	if err := r.db.GetContext(ctx, &row, query, ownerID); err != nil {
		return nil, fmt.Errorf("category stats: %w", err)
	}

	topQuery := `
		SELECT id, user_id, name, color, icon, description, is_default, is_active, task_count, sort_order, created_at, updated_at
		FROM categories
		WHERE user_id = $1 AND task_count > 0
		ORDER BY task_count DESC, name ASC
		LIMIT 5`

	top := []*entities.Category{}
	if err := r.db.SelectContext(ctx, &top, topQuery, ownerID); err != nil {
		return nil, fmt.Errorf("category stats top: %w", err)
	}

	return &ports.CategoryStats{
		Total:     row.Total,
		Active:    row.Active,
		Default:   row.Default,
		WithTasks: row.WithTasks,
		Top:       top,
	}, nil
}
