package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/mikerp/aggregate"
	"github.com/padraicbc/mikerp/config"
	"github.com/padraicbc/mikerp/db"
)

const maxLimit = 500

// Partnerships returns jockey/trainer rows filtered by either side.
func (h *Handler) Partnerships(c echo.Context) error {
	jockey, trainer := c.QueryParam("jockey"), c.QueryParam("trainer")
	if jockey == "" && trainer == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "jockey or trainer param not set")
	}
	limit, err := limitParam(c, 50)
	if err != nil {
		return err
	}

	rows, err := h.store.Partnerships(c.Request().Context(), jockey, trainer, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rows)
}

// DistanceStats returns the distance band rows of one entity.
func (h *Handler) DistanceStats(c echo.Context) error {
	kind, id, err := entityParams(c)
	if err != nil {
		return err
	}
	rows, err := h.store.DistanceStats(c.Request().Context(), kind, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rows)
}

// VenueStats returns the per-course rows of one entity.
func (h *Handler) VenueStats(c echo.Context) error {
	kind, id, err := entityParams(c)
	if err != nil {
		return err
	}
	rows, err := h.store.VenueStats(c.Request().Context(), kind, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rows)
}

// PedigreeStats returns the progeny row of one sire, dam or damsire.
func (h *Handler) PedigreeStats(c echo.Context) error {
	role, id := c.Param("role"), c.Param("id")
	switch role {
	case config.JobSire, config.JobDam, config.JobDamsire:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown role "+role)
	}

	row, err := h.store.PedigreeStats(c.Request().Context(), role, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, row)
}

func entityParams(c echo.Context) (string, string, error) {
	id := c.QueryParam("id")
	if id == "" {
		return "", "", echo.NewHTTPError(http.StatusBadRequest, "id param not set")
	}
	kind := c.QueryParam("kind")
	switch kind {
	case "":
		kind = aggregate.EntityHorse
	case aggregate.EntityHorse, aggregate.EntityJockey, aggregate.EntityTrainer:
	default:
		return "", "", echo.NewHTTPError(http.StatusBadRequest, "unknown kind "+kind)
	}
	return kind, id, nil
}

func limitParam(c echo.Context, def int) (int, error) {
	s := c.QueryParam("limit")
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	return min(n, maxLimit), nil
}
