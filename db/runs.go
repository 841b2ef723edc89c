package db

import (
	"context"

	"github.com/padraicbc/mikerp/models"
)

// SaveRun persists one run summary.
func (s *Store) SaveRun(ctx context.Context, run *models.PipelineRun) error {
	_, err := s.db.NewInsert().Model(run).Exec(ctx)
	return err
}

// ListRuns returns the most recent runs, optionally of one kind.
func (s *Store) ListRuns(ctx context.Context, kind string, limit int) ([]models.PipelineRun, error) {
	var runs []models.PipelineRun
	q := s.db.NewSelect().Model(&runs).Order("started_at DESC")
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if limit <= 0 {
		limit = 50
	}
	if err := q.Limit(limit).Scan(ctx); err != nil {
		return nil, err
	}
	return runs, nil
}
