package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/mikerp/coverage"
)

// Coverage runs a field audit. With fields=only it returns the registry
// without touching the database.
func (h *Handler) Coverage(c echo.Context) error {
	if c.QueryParam("fields") == "only" {
		return c.JSON(http.StatusOK, coverage.Fields())
	}
	rep, err := h.auditor.Audit(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rep)
}
