package http

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tasknest/core/internal/infrastructure/logger"
	"github.com/tasknest/core/internal/ports"
)

// CategoryHandler handles category-related requests
type CategoryHandler struct {
	categoryService ports.CategoryService
	logger          *logger.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService ports.CategoryService, logger *logger.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// List handles listing categories with optional isActive/isDefault filters
func (h *CategoryHandler) List(c echo.Context) error {
	filter := ports.CategoryFilter{}

	var err error
	if filter.IsActive, err = boolQueryParam(c, "isActive"); err != nil {
		return err
	}
	if filter.IsDefault, err = boolQueryParam(c, "isDefault"); err != nil {
		return err
	}

	categories, err := h.categoryService.List(c.Request().Context(), UserID(c), filter)
	if err != nil {
		return err
	}

	return OK(c, categories)
}

// Create handles category creation
func (h *CategoryHandler) Create(c echo.Context) error {
	var req ports.CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	category, err := h.categoryService.Create(c.Request().Context(), UserID(c), req)
	if err != nil {
		return err
	}

	return Created(c, category)
}

// Update handles partial category updates
func (h *CategoryHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req ports.UpdateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	category, err := h.categoryService.Update(c.Request().Context(), UserID(c), id, req)
	if err != nil {
		return err
	}

	return OK(c, category)
}

// ToggleActive flips the category's active flag
func (h *CategoryHandler) ToggleActive(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	category, err := h.categoryService.ToggleActive(c.Request().Context(), UserID(c), id)
	if err != nil {
		return err
	}

	return OK(c, category)
}

// Reorder sets the category's sort order
func (h *CategoryHandler) Reorder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req ports.ReorderCategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	category, err := h.categoryService.Reorder(c.Request().Context(), UserID(c), id, req.SortOrder)
	if err != nil {
		return err
	}

	return OK(c, category)
}

// Delete handles category deletion
func (h *CategoryHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.categoryService.Delete(c.Request().Context(), UserID(c), id); err != nil {
		return err
	}

	return Message(c, "category deleted")
}

// Stats returns aggregate category statistics
func (h *CategoryHandler) Stats(c echo.Context) error {
	stats, err := h.categoryService.Stats(c.Request().Context(), UserID(c))
	if err != nil {
		return err
	}

	return OK(c, stats)
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// boolQueryParam parses an optional boolean query parameter.
func boolQueryParam(c echo.Context, name string) (*bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name+" parameter")
	}
	return &value, nil
}
