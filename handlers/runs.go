package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Runs lists recent pipeline runs, newest first.
func (h *Handler) Runs(c echo.Context) error {
	limit, err := limitParam(c, 50)
	if err != nil {
		return err
	}
	runs, err := h.store.ListRuns(c.Request().Context(), c.QueryParam("kind"), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, runs)
}
