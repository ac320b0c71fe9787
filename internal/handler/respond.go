// Package handler implements the HTTP request layer. Handlers bind and
// sanity-check request bodies, call into the engines, and translate
// typed engine failures into transport status codes. No business logic
// lives here.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/its-ok-zid/movie-booking/internal/service"
)

// respondError maps the engine failure kinds onto HTTP statuses:
// NotFound -> 404, AlreadyExists/Conflict -> 409, InvalidRequest
// (including CapacityExceeded) -> 400, anything else -> 500 with the
// detail withheld from the client.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyExists), errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidRequest):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
