package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/mikerp/db"
)

type trainerText struct {
	TrainerID string `json:"trainerID"`
	Trainer   string `json:"trainer,omitempty"`
	Text      string `json:"text,omitempty"`
}

// GetTrainerText returns the notes for a single trainer.
func (h *Handler) GetTrainerText(c echo.Context) error {
	tr, err := h.store.Trainer(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	info := ""
	if tr.Info != nil {
		info = *tr.Info
	}
	return c.JSON(http.StatusOK, trainerText{tr.TrainerID, tr.Trainer, info})
}

// SearchTrainers searches trainers by name pattern.
func (h *Handler) SearchTrainers(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q param not set")
	}
	limit, err := limitParam(c, 20)
	if err != nil {
		return err
	}

	trainers, err := h.store.SearchTrainers(c.Request().Context(), q, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, trainers)
}

// SaveTrainerText replaces the notes for a trainer with the request body.
func (h *Handler) SaveTrainerText(c echo.Context) error {
	bdy, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	defer c.Request().Body.Close()

	if err := h.store.SaveTrainerNotes(c.Request().Context(), c.Param("id"), string(bdy)); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusOK)
}
