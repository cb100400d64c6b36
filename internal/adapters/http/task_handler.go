package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/infrastructure/logger"
	"github.com/tasknest/core/internal/ports"
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskService ports.TaskService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService ports.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// List handles filtered task listing
func (h *TaskHandler) List(c echo.Context) error {
	filter := ports.TaskFilter{
		Search: c.QueryParam("search"),
	}

	var err error
	if filter.Completed, err = boolQueryParam(c, "completed"); err != nil {
		return err
	}

	if raw := c.QueryParam("priority"); raw != "" {
		priority := entities.Priority(raw)
		if !priority.IsValid() {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid priority parameter")
		}
		filter.Priority = &priority
	}

	if raw := c.QueryParam("categoryId"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid categoryId parameter")
		}
		filter.CategoryID = &categoryID
	}

	if raw := c.QueryParam("dueDate"); raw != "" {
		dueDate, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid dueDate parameter, expected YYYY-MM-DD")
		}
		filter.DueDate = &dueDate
	}

	tasks, err := h.taskService.List(c.Request().Context(), UserID(c), filter)
	if err != nil {
		return err
	}

	return OK(c, tasks)
}

// Create handles task creation
func (h *TaskHandler) Create(c echo.Context) error {
	var req ports.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	task, err := h.taskService.Create(c.Request().Context(), UserID(c), req)
	if err != nil {
		return err
	}

	return Created(c, task)
}

// Update handles partial task updates
func (h *TaskHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req ports.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	task, err := h.taskService.Update(c.Request().Context(), UserID(c), id, req)
	if err != nil {
		return err
	}

	return OK(c, task)
}

// ToggleComplete flips the task's completed flag
func (h *TaskHandler) ToggleComplete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.ToggleComplete(c.Request().Context(), UserID(c), id)
	if err != nil {
		return err
	}

	return OK(c, task)
}

// Delete handles task deletion
func (h *TaskHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.taskService.Delete(c.Request().Context(), UserID(c), id); err != nil {
		return err
	}

	return Message(c, "task deleted")
}

// Stats returns aggregate task statistics
func (h *TaskHandler) Stats(c echo.Context) error {
	stats, err := h.taskService.Stats(c.Request().Context(), UserID(c))
	if err != nil {
		return err
	}

	return OK(c, stats)
}
