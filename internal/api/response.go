package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"order-management-service/internal/entity"
	"order-management-service/internal/repository"
	"order-management-service/internal/service"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message,omitempty"`
	Data       any                `json:"data,omitempty"`
	Errors     any                `json:"errors,omitempty"`
	Pagination *entity.Pagination `json:"pagination,omitempty"`
}

func ok(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func fail(c echo.Context, status int, message string, details any) error {
	return c.JSON(status, Response{Success: false, Message: message, Errors: details})
}

// errorResponse is the single place internal error kinds become HTTP
// statuses. Internals are only exposed in development mode.
func (h *Handler) errorResponse(c echo.Context, err error) error {
	var (
		validationErr  *service.ValidationError
		unavailableErr *service.ProductUnavailableError
		stockErr       *service.InsufficientStockError
	)

	switch {
	case errors.As(err, &validationErr):
		return fail(c, http.StatusBadRequest, "Validation failed", []fieldError{
			{Field: validationErr.Field, Message: validationErr.Reason},
		})
	case errors.Is(err, service.ErrOrderNotFound):
		return fail(c, http.StatusNotFound, "Order not found", nil)
	case errors.Is(err, service.ErrProductNotFound):
		return fail(c, http.StatusNotFound, "Product not found", nil)
	case errors.As(err, &unavailableErr):
		return fail(c, http.StatusBadRequest, unavailableErr.Error(), nil)
	case errors.As(err, &stockErr):
		return fail(c, http.StatusConflict, stockErr.Error(), nil)
	case errors.Is(err, repository.ErrConflict):
		return fail(c, http.StatusConflict, "Duplicate or invalid reference", h.detail(err))
	case errors.Is(err, repository.ErrUnavailable):
		return fail(c, http.StatusServiceUnavailable, "Service temporarily unavailable", h.detail(err))
	default:
		return fail(c, http.StatusInternalServerError, "Internal server error", h.detail(err))
	}
}

func (h *Handler) detail(err error) any {
	if h.dev {
		return err.Error()
	}
	return nil
}
