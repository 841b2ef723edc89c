package handlers

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/mikerp/coverage"
	"github.com/padraicbc/mikerp/models"
)

// Store is the read side of the database used by the API.
type Store interface {
	Partnerships(ctx context.Context, jockeyID, trainerID string, limit int) ([]models.JockeyTrainerStats, error)
	DistanceStats(ctx context.Context, kind, id string) ([]models.DistanceStats, error)
	VenueStats(ctx context.Context, kind, id string) ([]models.VenueStats, error)
	PedigreeStats(ctx context.Context, role, id string) (*models.PedigreeStats, error)
	ListRuns(ctx context.Context, kind string, limit int) ([]models.PipelineRun, error)
	SearchTrainers(ctx context.Context, q string, limit int) ([]models.Trainer, error)
	Trainer(ctx context.Context, id string) (*models.Trainer, error)
	SaveTrainerNotes(ctx context.Context, id, notes string) error
}

// Auditor produces a coverage report.
type Auditor interface {
	Audit(ctx context.Context) (coverage.Report, error)
}

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	store   Store
	auditor Auditor
	JWTKey  []byte
}

// New creates a Handler with the given store, auditor and JWT signing key.
func New(store Store, auditor Auditor, jwtKey []byte) *Handler {
	return &Handler{store: store, auditor: auditor, JWTKey: jwtKey}
}

// Routes registers the read API on g.
func (h *Handler) Routes(g *echo.Group) {
	g.GET("/coverage", h.Coverage)
	g.GET("/stats/partnerships", h.Partnerships)
	g.GET("/stats/distance", h.DistanceStats)
	g.GET("/stats/venue", h.VenueStats)
	g.GET("/stats/pedigree/:role/:id", h.PedigreeStats)
	g.GET("/runs", h.Runs)
	g.GET("/trainers", h.SearchTrainers)
	g.GET("/trainers/:id/notes", h.GetTrainerText)
	g.POST("/trainers/:id/notes", h.SaveTrainerText)
}
