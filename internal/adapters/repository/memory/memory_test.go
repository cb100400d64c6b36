package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/ports"
)

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	store := NewStore()
	owner := uuid.New()
	ctx := context.Background()

	require.NoError(t, store.Categories().SeedDefaults(ctx, owner))
	require.NoError(t, store.Categories().SeedDefaults(ctx, owner))

	categories, err := store.Categories().List(ctx, owner, ports.CategoryFilter{})
	require.NoError(t, err)
	assert.Len(t, categories, len(entities.DefaultCategories))
}

func TestAdjustTaskCountClampsAtZero(t *testing.T) {
	store := NewStore()
	owner := uuid.New()
	ctx := context.Background()

	category := &entities.Category{UserID: owner, Name: "Errands", IsActive: true}
	require.NoError(t, store.Categories().Create(ctx, category))

	require.NoError(t, store.Categories().AdjustTaskCount(ctx, category.ID, -3))

	got, err := store.Categories().GetByID(ctx, owner, category.ID)
	require.NoError(t, err)
	assert.Zero(t, got.TaskCount)
}

func TestCategoryDeleteDetachesTasks(t *testing.T) {
	store := NewStore()
	owner := uuid.New()
	ctx := context.Background()

	category := &entities.Category{UserID: owner, Name: "Errands", IsActive: true}
	require.NoError(t, store.Categories().Create(ctx, category))

	task := &entities.Task{UserID: owner, CategoryID: &category.ID, Title: "Buy milk", Priority: entities.PriorityMedium}
	require.NoError(t, store.Tasks().Create(ctx, task))

	require.NoError(t, store.Categories().Delete(ctx, owner, category.ID))

	got, err := store.Tasks().GetByID(ctx, owner, task.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)
	assert.Nil(t, got.Category)
}

func TestTaskListNewestFirst(t *testing.T) {
	store := NewStore()
	owner := uuid.New()
	ctx := context.Background()

	// Created within the same clock tick; insertion order breaks the tie.
	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		task := &entities.Task{UserID: owner, Title: title, Priority: entities.PriorityMedium}
		require.NoError(t, store.Tasks().Create(ctx, task))
	}

	tasks, err := store.Tasks().List(ctx, owner, ports.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "third", tasks[0].Title)
	assert.Equal(t, "second", tasks[1].Title)
	assert.Equal(t, "first", tasks[2].Title)
}

func TestUserIdentityIsCaseInsensitive(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	user := &entities.User{Email: "Ada@Example.com", Username: "Ada", PasswordHash: "x", IsActive: true}
	require.NoError(t, store.Users().Create(ctx, user))

	got, err := store.Users().GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	got, err = store.Users().GetByUsername(ctx, "ADA")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	dup := &entities.User{Email: "ADA@EXAMPLE.COM", Username: "someone", PasswordHash: "x", IsActive: true}
	assert.ErrorIs(t, store.Users().Create(ctx, dup), entities.ErrDuplicateIdentity)
}

func TestStoreReturnsClones(t *testing.T) {
	store := NewStore()
	owner := uuid.New()
	ctx := context.Background()

	category := &entities.Category{UserID: owner, Name: "Errands", IsActive: true}
	require.NoError(t, store.Categories().Create(ctx, category))

	got, err := store.Categories().GetByID(ctx, owner, category.ID)
	require.NoError(t, err)
	got.Name = "Mutated"

	again, err := store.Categories().GetByID(ctx, owner, category.ID)
	require.NoError(t, err)
	assert.Equal(t, "Errands", again.Name)
}
