// Package memory provides a non-persistent implementation of the storage
// ports, sharing one lock across entities so counter adjustments stay atomic.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/ports"
)

// Store holds all entities behind a single mutex.
type Store struct {
	mu         sync.Mutex
	users      map[uuid.UUID]*entities.User
	categories map[uuid.UUID]*entities.Category
	tasks      map[uuid.UUID]*entities.Task
	taskSeq    map[uuid.UUID]int64
	seq        int64
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		users:      make(map[uuid.UUID]*entities.User),
		categories: make(map[uuid.UUID]*entities.Category),
		tasks:      make(map[uuid.UUID]*entities.Task),
		taskSeq:    make(map[uuid.UUID]int64),
	}
}

// Users returns the user repository view of the store.
func (s *Store) Users() ports.UserRepository { return &userRepo{s} }

// Categories returns the category repository view of the store.
func (s *Store) Categories() ports.CategoryRepository { return &categoryRepo{s} }

// Tasks returns the task repository view of the store.
func (s *Store) Tasks() ports.TaskRepository { return &taskRepo{s} }

func cloneUser(u *entities.User) *entities.User {
	c := *u
	return &c
}

func cloneCategory(c *entities.Category) *entities.Category {
	cc := *c
	return &cc
}

func cloneTask(t *entities.Task) *entities.Task {
	c := *t
	c.Tags = append([]string(nil), t.Tags...)
	c.Notes = append([]string(nil), t.Notes...)
	c.Category = nil
	return &c
}

// user repository

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, user *entities.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, user.Email) || strings.EqualFold(existing.Username, user.Username) {
			return entities.ErrDuplicateIdentity
		}
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.s.users[user.ID] = cloneUser(user)
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, user := range r.s.users {
		if strings.EqualFold(user.Email, email) {
			return cloneUser(user), nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, user := range r.s.users {
		if strings.EqualFold(user.Username, username) {
			return cloneUser(user), nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (r *userRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[id]
	if !ok {
		return entities.ErrUserNotFound
	}
	user.LastLogin = &at
	user.UpdatedAt = time.Now()
	return nil
}

func (r *userRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[id]
	if !ok {
		return entities.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now()
	return nil
}

// category repository

type categoryRepo struct{ s *Store }

func (r *categoryRepo) nameTakenLocked(ownerID uuid.UUID, name string, excludeID uuid.UUID) bool {
	for _, c := range r.s.categories {
		if c.UserID == ownerID && c.ID != excludeID && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

func (r *categoryRepo) Create(ctx context.Context, category *entities.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.nameTakenLocked(category.UserID, category.Name, uuid.Nil) {
		return entities.ErrDuplicateName
	}

	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	now := time.Now()
	category.CreatedAt = now
	category.UpdatedAt = now

	r.s.categories[category.ID] = cloneCategory(category)
	return nil
}

func (r *categoryRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*entities.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	category, ok := r.s.categories[id]
	if !ok || category.UserID != ownerID {
		return nil, entities.ErrCategoryNotFound
	}
	return cloneCategory(category), nil
}

func (r *categoryRepo) List(ctx context.Context, ownerID uuid.UUID, filter ports.CategoryFilter) ([]*entities.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := []*entities.Category{}
	for _, c := range r.s.categories {
		if c.UserID != ownerID {
			continue
		}
		if filter.IsActive != nil && c.IsActive != *filter.IsActive {
			continue
		}
		if filter.IsDefault != nil && c.IsDefault != *filter.IsDefault {
			continue
		}
		result = append(result, cloneCategory(c))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].SortOrder != result[j].SortOrder {
			return result[i].SortOrder < result[j].SortOrder
		}
		return result[i].Name < result[j].Name
	})

	return result, nil
}

func (r *categoryRepo) Update(ctx context.Context, category *entities.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.categories[category.ID]
	if !ok || existing.UserID != category.UserID {
		return entities.ErrCategoryNotFound
	}
	if r.nameTakenLocked(category.UserID, category.Name, category.ID) {
		return entities.ErrDuplicateName
	}

	category.TaskCount = existing.TaskCount
	category.IsDefault = existing.IsDefault
	category.CreatedAt = existing.CreatedAt
	category.UpdatedAt = time.Now()
	r.s.categories[category.ID] = cloneCategory(category)
	return nil
}

func (r *categoryRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	category, ok := r.s.categories[id]
	if !ok || category.UserID != ownerID {
		return entities.ErrCategoryNotFound
	}
	delete(r.s.categories, id)

	// Mirrors ON DELETE SET NULL on the task reference.
	for _, t := range r.s.tasks {
		if t.CategoryID != nil && *t.CategoryID == id {
			t.CategoryID = nil
		}
	}
	return nil
}

func (r *categoryRepo) NameExists(ctx context.Context, ownerID uuid.UUID, name string, excludeID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.nameTakenLocked(ownerID, name, excludeID), nil
}

func (r *categoryRepo) NextSortOrder(ctx context.Context, ownerID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	max := 0
	for _, c := range r.s.categories {
		if c.UserID == ownerID && c.SortOrder > max {
			max = c.SortOrder
		}
	}
	return max + 1, nil
}

func (r *categoryRepo) SeedDefaults(ctx context.Context, ownerID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	for _, dc := range entities.DefaultCategories {
		if r.nameTakenLocked(ownerID, dc.Name, uuid.Nil) {
			continue
		}
		c := &entities.Category{
			ID:        uuid.New(),
			UserID:    ownerID,
			Name:      dc.Name,
			Color:     dc.Color,
			Icon:      dc.Icon,
			IsDefault: true,
			IsActive:  true,
			SortOrder: dc.SortOrder,
			CreatedAt: now,
			UpdatedAt: now,
		}
		r.s.categories[c.ID] = c
	}
	return nil
}

func (r *categoryRepo) AdjustTaskCount(ctx context.Context, id uuid.UUID, delta int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.adjustTaskCountLocked(id, delta)
	return nil
}

func (s *Store) adjustTaskCountLocked(id uuid.UUID, delta int) {
	category, ok := s.categories[id]
	if !ok {
		return
	}
	category.TaskCount += delta
	if category.TaskCount < 0 {
		category.TaskCount = 0
	}
	category.UpdatedAt = time.Now()
}

func (r *categoryRepo) Stats(ctx context.Context, ownerID uuid.UUID) (*ports.CategoryStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stats := &ports.CategoryStats{Top: []*entities.Category{}}
	withTasks := []*entities.Category{}
	for _, c := range r.s.categories {
		if c.UserID != ownerID {
			continue
		}
		stats.Total++
		if c.IsActive {
			stats.Active++
		}
		if c.IsDefault {
			stats.Default++
		}
		if c.TaskCount > 0 {
			stats.WithTasks++
			withTasks = append(withTasks, cloneCategory(c))
		}
	}

	sort.Slice(withTasks, func(i, j int) bool {
		if withTasks[i].TaskCount != withTasks[j].TaskCount {
			return withTasks[i].TaskCount > withTasks[j].TaskCount
		}
		return withTasks[i].Name < withTasks[j].Name
	})
	if len(withTasks) > 5 {
		withTasks = withTasks[:5]
	}
	stats.Top = withTasks

	return stats, nil
}

// task repository

type taskRepo struct{ s *Store }

func (r *taskRepo) resolveLocked(t *entities.Task) *entities.Task {
	clone := cloneTask(t)
	if t.CategoryID != nil {
		if c, ok := r.s.categories[*t.CategoryID]; ok {
			clone.Category = &entities.CategoryRef{ID: c.ID, Name: c.Name, Color: c.Color}
		}
	}
	return clone
}

func (r *taskRepo) Create(ctx context.Context, task *entities.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if task.CategoryID != nil {
		if _, ok := r.s.categories[*task.CategoryID]; !ok {
			return entities.ErrInvalidCategory
		}
	}

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	r.s.seq++
	r.s.taskSeq[task.ID] = r.s.seq
	r.s.tasks[task.ID] = cloneTask(task)

	if task.CategoryID != nil {
		r.s.adjustTaskCountLocked(*task.CategoryID, 1)
	}
	return nil
}

func (r *taskRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*entities.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	task, ok := r.s.tasks[id]
	if !ok || task.UserID != ownerID {
		return nil, entities.ErrTaskNotFound
	}
	return r.resolveLocked(task), nil
}

func (r *taskRepo) List(ctx context.Context, ownerID uuid.UUID, filter ports.TaskFilter) ([]*entities.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := []*entities.Task{}
	for _, t := range r.s.tasks {
		if t.UserID != ownerID {
			continue
		}
		if filter.Completed != nil && t.Completed != *filter.Completed {
			continue
		}
		if filter.Priority != nil && t.Priority != *filter.Priority {
			continue
		}
		if filter.CategoryID != nil && (t.CategoryID == nil || *t.CategoryID != *filter.CategoryID) {
			continue
		}
		if filter.DueDate != nil {
			dayStart := filter.DueDate.Truncate(24 * time.Hour)
			if t.DueDate == nil || t.DueDate.Before(dayStart) || !t.DueDate.Before(dayStart.Add(24*time.Hour)) {
				continue
			}
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(t.Title), needle) &&
				!strings.Contains(strings.ToLower(t.Description), needle) {
				continue
			}
		}
		result = append(result, r.resolveLocked(t))
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return r.s.taskSeq[result[i].ID] > r.s.taskSeq[result[j].ID]
	})

	return result, nil
}

func (r *taskRepo) Update(ctx context.Context, task *entities.Task, oldCategoryID *uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return entities.ErrTaskNotFound
	}

	if task.CategoryID != nil {
		if _, ok := r.s.categories[*task.CategoryID]; !ok {
			return entities.ErrInvalidCategory
		}
	}

	task.CreatedAt = existing.CreatedAt
	task.Completed = existing.Completed
	task.CompletedAt = existing.CompletedAt
	task.UpdatedAt = time.Now()
	r.s.tasks[task.ID] = cloneTask(task)

	if !sameCategory(oldCategoryID, task.CategoryID) {
		if oldCategoryID != nil {
			r.s.adjustTaskCountLocked(*oldCategoryID, -1)
		}
		if task.CategoryID != nil {
			r.s.adjustTaskCountLocked(*task.CategoryID, 1)
		}
	}
	return nil
}

func sameCategory(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *taskRepo) UpdateCompletion(ctx context.Context, task *entities.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return entities.ErrTaskNotFound
	}

	existing.Completed = task.Completed
	existing.CompletedAt = task.CompletedAt
	existing.UpdatedAt = time.Now()
	task.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *taskRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	task, ok := r.s.tasks[id]
	if !ok || task.UserID != ownerID {
		return entities.ErrTaskNotFound
	}
	delete(r.s.tasks, id)
	delete(r.s.taskSeq, id)

	if task.CategoryID != nil {
		r.s.adjustTaskCountLocked(*task.CategoryID, -1)
	}
	return nil
}

func (r *taskRepo) CountByCategory(ctx context.Context, ownerID, categoryID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	count := 0
	for _, t := range r.s.tasks {
		if t.UserID == ownerID && t.CategoryID != nil && *t.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

func (r *taskRepo) Stats(ctx context.Context, ownerID uuid.UUID, now time.Time) (*ports.TaskStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stats := &ports.TaskStats{}
	for _, t := range r.s.tasks {
		if t.UserID != ownerID {
			continue
		}
		stats.Total++
		if t.Completed {
			stats.Completed++
		} else {
			stats.Pending++
		}
		if t.IsOverdue(now) {
			stats.Overdue++
		}
		if t.Priority == entities.PriorityHigh {
			stats.HighPriority++
		}
	}
	return stats, nil
}
