package handler

import (
	"net/http"
	"strconv"

	"github.com/Eursukkul/event-registration/internal/middleware"
	"github.com/Eursukkul/event-registration/internal/service"
	"github.com/labstack/echo/v4"
)

// toHTTPError maps service error kinds onto status codes. Anything else is
// returned as is and rendered as a 500 by the error handler.
func toHTTPError(err error) error {
	switch service.KindOf(err) {
	case service.KindNotFound:
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case service.KindPrecondition:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case service.KindInvariant:
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return err
	}
}

func parseID(c echo.Context, param, label string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+label+" id")
	}
	return uint(id), nil
}

func currentUser(c echo.Context) (uint, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "missing caller identity")
	}
	return id, nil
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.Validate(req)
}
