package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/core/internal/adapters/repository/memory"
	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/infrastructure/logger"
	"github.com/tasknest/core/internal/ports"
)

func newTaskFixture(t *testing.T) (*TaskService, *CategoryService, uuid.UUID) {
	t.Helper()
	store := memory.NewStore()
	categorySvc := NewCategoryService(store.Categories(), logger.NewNop())
	taskSvc := NewTaskService(store.Tasks(), store.Categories(), logger.NewNop())
	return taskSvc, categorySvc, uuid.New()
}

func categoryCount(t *testing.T, svc *CategoryService, owner, id uuid.UUID) int {
	t.Helper()
	categories, err := svc.List(context.Background(), owner, ports.CategoryFilter{})
	require.NoError(t, err)
	for _, c := range categories {
		if c.ID == id {
			return c.TaskCount
		}
	}
	t.Fatalf("category %s not found", id)
	return 0
}

func TestTaskCreateIncrementsCategoryCount(t *testing.T) {
	taskSvc, categorySvc, owner := newTaskFixture(t)
	category := createCategory(t, categorySvc, owner, "Errands")

	task, err := taskSvc.Create(context.Background(), owner, ports.CreateTaskRequest{
		Title:      "Buy milk",
		CategoryID: &category.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, categoryCount(t, categorySvc, owner, category.ID))
	require.NotNil(t, task.Category)
	assert.Equal(t, "Errands", task.Category.Name)
	assert.Equal(t, entities.PriorityMedium, task.Priority)
	assert.Equal(t, entities.TaskStatusPending, task.Status)
}

func TestTaskCreateWithoutCategory(t *testing.T) {
	taskSvc, _, owner := newTaskFixture(t)

	task, err := taskSvc.Create(context.Background(), owner, ports.CreateTaskRequest{Title: "Buy milk"})
	require.NoError(t, err)
	assert.Nil(t, task.CategoryID)
	assert.Nil(t, task.Category)
}

func TestTaskCreateRejectsForeignCategory(t *testing.T) {
	taskSvc, categorySvc, owner := newTaskFixture(t)
	foreign := createCategory(t, categorySvc, uuid.New(), "Not yours")

	_, err := taskSvc.Create(context.Background(), owner, ports.CreateTaskRequest{
		Title:      "Buy milk",
		CategoryID: &foreign.ID,
	})
	assert.ErrorIs(t, err, entities.ErrInvalidCategory)

	// The foreign category's counter is untouched.
	assert.Equal(t, 0, categoryCount(t, categorySvc, foreign.UserID, foreign.ID))
}

func TestTaskCreateRejectsUnknownPriority(t *testing.T) {
	taskSvc, _, owner := newTaskFixture(t)

	_, err := taskSvc.Create(context.Background(), owner, ports.CreateTaskRequest{
		Title:    "Buy milk",
		Priority: "urgent",
	})

	var verr *entities.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestTaskUpdateMovesCountBetweenCategories(t *testing.T) {
	taskSvc, categorySvc, owner := newTaskFixture(t)
	errands := createCategory(t, categorySvc, owner, "Errands")
	reading := createCategory(t, categorySvc, owner, "Reading")

	task, err := taskSvc.Create(context.Background(), owner, ports.CreateTaskRequest{
		Title:      "Buy milk",
		CategoryID: &errands.ID,
	})
	require.NoError(t, err)

	_, err = taskSvc.Update(context.Background(), owner, task.ID, ports.UpdateTaskRequest{
		CategoryID: &reading.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, categoryCount(t, categorySvc, owner, errands.ID))
	assert.Equal(t, 1, categoryCount(t, categorySvc, owner, reading.ID))
}

func TestTaskUpdateClearCategory(t *testing.T) {
	taskSvc, categorySvc, owner := newTaskFixture(t)
	errands := createCategory(t, categorySvc, owner, "Errands")

	task, err := taskSvc.Create(context.Background(), owner, ports.CreateTaskRequest{
		Title:      "Buy milk",
		CategoryID: &errands.ID,
	})
	require.NoError(t, err)

	updated, err := taskSvc.Update(context.Background(), owner, task.ID, ports.UpdateTaskRequest{
		ClearCategory: true,
	})
	require.NoError(t, err)

	assert.Nil(t, updated.CategoryID)
	assert.Equal(t, 0, categoryCount(t, categorySvc, owner, errands.ID))
}

func TestTaskUpdatePatchesOnlyProvidedFields(t *testing.T) {
	taskSvc, _, owner := newTaskFixture(t)
	due := time.Now().Add(48 * time.Hour)

	task, err := taskSvc.Create(context.Background(), owner, ports.CreateTaskRequest{
		Title:       "Buy milk",
		Description: "Two liters",
		Priority:    "high",
		DueDate:     &due,
		Tags:        []string{"groceries"},
	})
	require.NoError(t, err)

	title := "Buy oat milk"
	updated, err := taskSvc.Update(context.Background(), owner, task.ID, ports.UpdateTaskRequest{Title: &title})
	require.NoError(t, err)

	assert.Equal(t, "Buy oat milk", updated.Title)
	assert.Equal(t, "Two liters", updated.Description)
	assert.Equal(t, entities.PriorityHigh, updated.Priority)
	require.NotNil(t, updated.DueDate)
	assert.Equal(t, []string{"groceries"}, updated.Tags)

	cleared, err := taskSvc.Update(context.Background(), owner, task.ID, ports.UpdateTaskRequest{ClearDueDate: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.DueDate)
}

func TestTaskToggleComplete(t *testing.T) {
	taskSvc, _, owner := newTaskFixture(t)

	task, err := taskSvc.Create(context.Background(), owner, ports.CreateTaskRequest{Title: "Buy milk"})
	require.NoError(t, err)

	done, err := taskSvc.ToggleComplete(context.Background(), owner, task.ID)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, entities.TaskStatusCompleted, done.Status)

	undone, err := taskSvc.ToggleComplete(context.Background(), owner, task.ID)
	require.NoError(t, err)
	assert.False(t, undone.Completed)
	assert.Nil(t, undone.CompletedAt)
}

func TestTaskDeleteDecrementsCategoryCount(t *testing.T) {
	taskSvc, categorySvc, owner := newTaskFixture(t)
	errands := createCategory(t, categorySvc, owner, "Errands")

	task, err := taskSvc.Create(context.Background(), owner, ports.CreateTaskRequest{
		Title:      "Buy milk",
		CategoryID: &errands.ID,
	})
	require.NoError(t, err)

	require.NoError(t, taskSvc.Delete(context.Background(), owner, task.ID))
	assert.Equal(t, 0, categoryCount(t, categorySvc, owner, errands.ID))

	err = taskSvc.Delete(context.Background(), owner, task.ID)
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)
	assert.Equal(t, 0, categoryCount(t, categorySvc, owner, errands.ID))
}

func TestTaskCrossOwnerAccessIsNotFound(t *testing.T) {
	taskSvc, _, owner := newTaskFixture(t)

	task, err := taskSvc.Create(context.Background(), owner, ports.CreateTaskRequest{Title: "Buy milk"})
	require.NoError(t, err)

	stranger := uuid.New()
	title := "Hijacked"

	_, err = taskSvc.Update(context.Background(), stranger, task.ID, ports.UpdateTaskRequest{Title: &title})
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)

	_, err = taskSvc.ToggleComplete(context.Background(), stranger, task.ID)
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)

	err = taskSvc.Delete(context.Background(), stranger, task.ID)
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)
}

func TestTaskListFilters(t *testing.T) {
	taskSvc, categorySvc, owner := newTaskFixture(t)
	errands := createCategory(t, categorySvc, owner, "Errands")

	milk, err := taskSvc.Create(context.Background(), owner, ports.CreateTaskRequest{
		Title:      "Buy milk",
		CategoryID: &errands.ID,
	})
	require.NoError(t, err)

	_, err = taskSvc.Create(context.Background(), owner, ports.CreateTaskRequest{
		Title:    "Read a chapter",
		Priority: "high",
	})
	require.NoError(t, err)

	_, err = taskSvc.ToggleComplete(context.Background(), owner, milk.ID)
	require.NoError(t, err)

	completed := true
	views, err := taskSvc.List(context.Background(), owner, ports.TaskFilter{Completed: &completed})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, milk.ID, views[0].ID)

	high := entities.PriorityHigh
	views, err = taskSvc.List(context.Background(), owner, ports.TaskFilter{Priority: &high})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Read a chapter", views[0].Title)

	views, err = taskSvc.List(context.Background(), owner, ports.TaskFilter{CategoryID: &errands.ID})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, milk.ID, views[0].ID)

	views, err = taskSvc.List(context.Background(), owner, ports.TaskFilter{Search: "chapter"})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Read a chapter", views[0].Title)

	// Other owners never appear.
	views, err = taskSvc.List(context.Background(), uuid.New(), ports.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestTaskListDerivesStatus(t *testing.T) {
	taskSvc, _, owner := newTaskFixture(t)

	past := time.Now().Add(-time.Hour)
	soon := time.Now().Add(time.Hour)
	later := time.Now().Add(72 * time.Hour)

	for _, req := range []ports.CreateTaskRequest{
		{Title: "Overdue", DueDate: &past},
		{Title: "Due soon", DueDate: &soon},
		{Title: "Plenty of time", DueDate: &later},
	} {
		_, err := taskSvc.Create(context.Background(), owner, req)
		require.NoError(t, err)
	}

	views, err := taskSvc.List(context.Background(), owner, ports.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, views, 3)

	byTitle := map[string]entities.TaskStatus{}
	for _, v := range views {
		byTitle[v.Title] = v.Status
	}
	assert.Equal(t, entities.TaskStatusOverdue, byTitle["Overdue"])
	assert.Equal(t, entities.TaskStatusDueSoon, byTitle["Due soon"])
	assert.Equal(t, entities.TaskStatusPending, byTitle["Plenty of time"])
}

func TestTaskStats(t *testing.T) {
	taskSvc, _, owner := newTaskFixture(t)

	stats, err := taskSvc.Stats(context.Background(), owner)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.CompletionRate)

	past := time.Now().Add(-time.Hour)
	first, err := taskSvc.Create(context.Background(), owner, ports.CreateTaskRequest{Title: "One", Priority: "high"})
	require.NoError(t, err)
	second, err := taskSvc.Create(context.Background(), owner, ports.CreateTaskRequest{Title: "Two"})
	require.NoError(t, err)
	_, err = taskSvc.Create(context.Background(), owner, ports.CreateTaskRequest{Title: "Three", DueDate: &past})
	require.NoError(t, err)

	_, err = taskSvc.ToggleComplete(context.Background(), owner, first.ID)
	require.NoError(t, err)
	_, err = taskSvc.ToggleComplete(context.Background(), owner, second.ID)
	require.NoError(t, err)

	stats, err = taskSvc.Stats(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Completed)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.Overdue)
	assert.Equal(t, 1, stats.HighPriority)
	assert.Equal(t, 67, stats.CompletionRate)
}
