package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaskStatus(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	past := now.Add(-time.Hour)
	soon := now.Add(6 * time.Hour)
	edge := now.Add(DueSoonWindow)
	later := now.Add(48 * time.Hour)

	tests := []struct {
		name      string
		completed bool
		dueDate   *time.Time
		want      TaskStatus
	}{
		{"completed wins over overdue", true, &past, TaskStatusCompleted},
		{"no due date", false, nil, TaskStatusPending},
		{"due in the past", false, &past, TaskStatusOverdue},
		{"due within window", false, &soon, TaskStatusDueSoon},
		{"due exactly at window boundary", false, &edge, TaskStatusPending},
		{"due well ahead", false, &later, TaskStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &Task{Completed: tt.completed, DueDate: tt.dueDate}
			assert.Equal(t, tt.want, task.Status(now))
		})
	}
}

func TestTaskToggleCompletionIsItsOwnInverse(t *testing.T) {
	now := time.Now()
	task := &Task{Title: "write report"}

	task.ToggleCompletion(now)
	assert.True(t, task.Completed)
	if assert.NotNil(t, task.CompletedAt) {
		assert.Equal(t, now, *task.CompletedAt)
	}

	task.ToggleCompletion(now.Add(time.Minute))
	assert.False(t, task.Completed)
	assert.Nil(t, task.CompletedAt)
}

func TestTaskIsOverdue(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)

	overdue := &Task{DueDate: &past}
	assert.True(t, overdue.IsOverdue(now))

	done := &Task{Completed: true, DueDate: &past}
	assert.False(t, done.IsOverdue(now))

	undated := &Task{}
	assert.False(t, undated.IsOverdue(now))
}

func TestPriorityIsValid(t *testing.T) {
	assert.True(t, PriorityLow.IsValid())
	assert.True(t, PriorityMedium.IsValid())
	assert.True(t, PriorityHigh.IsValid())
	assert.False(t, Priority("critical").IsValid())
	assert.False(t, Priority("").IsValid())
}

func TestDefaultCategories(t *testing.T) {
	assert.Len(t, DefaultCategories, 6)

	names := make(map[string]bool)
	for _, dc := range DefaultCategories {
		names[dc.Name] = true
		assert.NotEmpty(t, dc.Color)
		assert.NotEmpty(t, dc.Icon)
		assert.Greater(t, dc.SortOrder, 0)
	}

	for _, want := range []string{"Work", "Personal", "Shopping", "Health", "Learning", "Travel"} {
		assert.True(t, names[want], "missing default category %s", want)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: []FieldError{
		{Field: "title", Message: "must be between 1 and 100 characters"},
		{Field: "priority", Message: "must be one of low, medium, high"},
	}}
	assert.Contains(t, err.Error(), "title")
	assert.Contains(t, err.Error(), "priority")

	assert.Equal(t, "validation failed", (&ValidationError{}).Error())
}
