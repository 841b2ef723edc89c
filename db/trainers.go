package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/padraicbc/mikerp/models"
)

// SearchTrainers returns trainers whose name contains q, case-insensitively.
func (s *Store) SearchTrainers(ctx context.Context, q string, limit int) ([]models.Trainer, error) {
	var trainers []models.Trainer
	query := s.db.NewSelect().Model(&trainers).
		Where("trainer ILIKE ?", fmt.Sprintf("%%%s%%", q)).
		Order("trainer")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	return trainers, nil
}

// Trainer loads one trainer by id.
func (s *Store) Trainer(ctx context.Context, id string) (*models.Trainer, error) {
	tr := new(models.Trainer)
	err := s.db.NewSelect().Model(tr).Where("trainer_id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return tr, nil
}

// SaveTrainerNotes sets the free-text notes of a trainer. Extraction never
// touches this column.
func (s *Store) SaveTrainerNotes(ctx context.Context, id, notes string) error {
	res, err := s.db.NewUpdate().
		TableExpr("trainers").
		Set("info = ?", notes).
		Where("trainer_id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
