package services

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/infrastructure/logger"
	"github.com/tasknest/core/internal/ports"
)

// TaskService owns the task ledger. Every operation is scoped to the acting
// user; category references are validated against the same owner before any
// write, and count transitions ride on the repository's transactional writes.
type TaskService struct {
	taskRepo     ports.TaskRepository
	categoryRepo ports.CategoryRepository
	logger       *logger.Logger
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo ports.TaskRepository, categoryRepo ports.CategoryRepository, logger *logger.Logger) *TaskService {
	return &TaskService{
		taskRepo:     taskRepo,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

func (s *TaskService) view(task *entities.Task) *ports.TaskView {
	return &ports.TaskView{Task: task, Status: task.Status(time.Now())}
}

func (s *TaskService) views(tasks []*entities.Task) []*ports.TaskView {
	now := time.Now()
	result := make([]*ports.TaskView, 0, len(tasks))
	for _, t := range tasks {
		result = append(result, &ports.TaskView{Task: t, Status: t.Status(now)})
	}
	return result
}

// checkCategory verifies the referenced category exists and belongs to the owner.
func (s *TaskService) checkCategory(ctx context.Context, ownerID uuid.UUID, categoryID *uuid.UUID) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.categoryRepo.GetByID(ctx, ownerID, *categoryID); err != nil {
		return entities.ErrInvalidCategory
	}
	return nil
}

// List returns the owner's tasks, newest first, with resolved categories.
func (s *TaskService) List(ctx context.Context, ownerID uuid.UUID, filter ports.TaskFilter) ([]*ports.TaskView, error) {
	tasks, err := s.taskRepo.List(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}
	return s.views(tasks), nil
}

// Create adds a task for the owner, incrementing the referenced category's counter.
func (s *TaskService) Create(ctx context.Context, ownerID uuid.UUID, req ports.CreateTaskRequest) (*ports.TaskView, error) {
	priority := entities.PriorityMedium
	if req.Priority != "" {
		priority = entities.Priority(req.Priority)
		if !priority.IsValid() {
			return nil, entities.NewValidationError("priority", "must be one of low, medium, high")
		}
	}

	if err := s.checkCategory(ctx, ownerID, req.CategoryID); err != nil {
		return nil, err
	}

	task := &entities.Task{
		ID:          uuid.New(),
		UserID:      ownerID,
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    priority,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
		Notes:       req.Notes,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Infow("Task created", "task_id", task.ID, "user_id", ownerID, "title", task.Title)

	created, err := s.taskRepo.GetByID(ctx, ownerID, task.ID)
	if err != nil {
		return nil, err
	}
	return s.view(created), nil
}

// Update applies a partial patch. A category change moves the counter from
// the old category to the new one as a single transition.
func (s *TaskService) Update(ctx context.Context, ownerID, id uuid.UUID, req ports.UpdateTaskRequest) (*ports.TaskView, error) {
	task, err := s.taskRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	oldCategoryID := task.CategoryID

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Priority != nil {
		priority := entities.Priority(*req.Priority)
		if !priority.IsValid() {
			return nil, entities.NewValidationError("priority", "must be one of low, medium, high")
		}
		task.Priority = priority
	}
	if req.ClearCategory {
		task.CategoryID = nil
	} else if req.CategoryID != nil {
		if err := s.checkCategory(ctx, ownerID, req.CategoryID); err != nil {
			return nil, err
		}
		task.CategoryID = req.CategoryID
	}
	if req.ClearDueDate {
		task.DueDate = nil
	} else if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.Tags != nil {
		task.Tags = req.Tags
	}
	if req.Notes != nil {
		task.Notes = req.Notes
	}

	if err := s.taskRepo.Update(ctx, task, oldCategoryID); err != nil {
		return nil, err
	}

	s.logger.Infow("Task updated", "task_id", id, "user_id", ownerID)

	updated, err := s.taskRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return s.view(updated), nil
}

// ToggleComplete flips the completion flag, stamping or clearing completed_at.
func (s *TaskService) ToggleComplete(ctx context.Context, ownerID, id uuid.UUID) (*ports.TaskView, error) {
	task, err := s.taskRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	task.ToggleCompletion(time.Now())
	if err := s.taskRepo.UpdateCompletion(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Infow("Task completion toggled", "task_id", id, "user_id", ownerID, "completed", task.Completed)
	return s.view(task), nil
}

// Delete removes a task, decrementing the referenced category's counter.
func (s *TaskService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.taskRepo.Delete(ctx, ownerID, id); err != nil {
		return err
	}

	s.logger.Infow("Task deleted", "task_id", id, "user_id", ownerID)
	return nil
}

// Stats aggregates the owner's tasks, with the completion rate rounded to
// the nearest percent and zero when there are no tasks.
func (s *TaskService) Stats(ctx context.Context, ownerID uuid.UUID) (*ports.TaskStats, error) {
	stats, err := s.taskRepo.Stats(ctx, ownerID, time.Now())
	if err != nil {
		return nil, err
	}

	if stats.Total > 0 {
		stats.CompletionRate = int(math.Round(float64(stats.Completed) / float64(stats.Total) * 100))
	}
	return stats, nil
}
