package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/segundamano/marketplace-backend/internal/service"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

// respondServiceError maps the service sentinel taxonomy onto HTTP
// statuses. Anything unrecognized is a 500 so failures never pass as
// client errors silently.
func respondServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", err.Error()))
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", err.Error()))
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, NewErrorResponse("conflict", err.Error()))
	case errors.Is(err, service.ErrUnavailable):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("unavailable", err.Error()))
	case errors.Is(err, service.ErrSelfPurchase):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("self_purchase", err.Error()))
	case errors.Is(err, service.ErrInvalidState):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_state", err.Error()))
	case errors.Is(err, service.ErrEmptyNote):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("empty_note", err.Error()))
	case errors.Is(err, service.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_input", err.Error()))
	default:
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "unexpected error"))
	}
}
