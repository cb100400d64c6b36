package http

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/infrastructure/logger"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool                  `json:"success"`
	Data    interface{}           `json:"data,omitempty"`
	Message string                `json:"message,omitempty"`
	Errors  []entities.FieldError `json:"errors,omitempty"`
}

// OK writes a 200 envelope.
func OK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// Created writes a 201 envelope.
func Created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// Message writes a 200 envelope carrying only a message.
func Message(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, Response{Success: true, Message: message})
}

// statusOf maps domain errors to HTTP status codes. Cross-owner access
// surfaces as the same NotFound as true absence.
func statusOf(err error) int {
	switch {
	case errors.Is(err, entities.ErrUnauthenticated),
		errors.Is(err, entities.ErrInvalidToken),
		errors.Is(err, entities.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, entities.ErrUserNotFound),
		errors.Is(err, entities.ErrCategoryNotFound),
		errors.Is(err, entities.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, entities.ErrDuplicateIdentity),
		errors.Is(err, entities.ErrDuplicateName),
		errors.Is(err, entities.ErrInvalidCredentials),
		errors.Is(err, entities.ErrInvalidCategory),
		errors.Is(err, entities.ErrDefaultCategoryProtected),
		errors.Is(err, entities.ErrCategoryInUse):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler builds the central echo error handler. Domain errors keep
// their message; anything unrecognized becomes a generic 500 so storage
// detail never leaks.
func ErrorHandler(appLogger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		resp := Response{Success: false, Message: "internal server error"}

		var validationErr *entities.ValidationError
		var fieldErrs validator.ValidationErrors
		var httpErr *echo.HTTPError

		switch {
		case errors.As(err, &validationErr):
			code = http.StatusBadRequest
			resp.Message = "validation failed"
			resp.Errors = validationErr.Fields
		case errors.As(err, &fieldErrs):
			code = http.StatusBadRequest
			resp.Message = "validation failed"
			for _, fe := range fieldErrs {
				resp.Errors = append(resp.Errors, entities.FieldError{
					Field:   fe.Field(),
					Message: fieldErrorMessage(fe),
				})
			}
		case errors.As(err, &httpErr):
			code = httpErr.Code
			if msg, ok := httpErr.Message.(string); ok {
				resp.Message = msg
			} else {
				resp.Message = http.StatusText(code)
			}
		default:
			code = statusOf(err)
			if code != http.StatusInternalServerError {
				resp.Message = err.Error()
			}
		}

		if code == http.StatusInternalServerError {
			appLogger.Errorw("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(code)
		} else {
			writeErr = c.JSON(code, resp)
		}
		if writeErr != nil {
			appLogger.Errorw("Error sending response", "error", writeErr)
		}
	}
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "hexcolor":
		return "must be a hex color code"
	case "oneof":
		return "must be one of " + fe.Param()
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gte":
		return "must be at least " + fe.Param()
	default:
		return "is invalid"
	}
}
