package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/padraicbc/mikerp/models"
)

// ErrNotFound is returned by single-row lookups with no match.
var ErrNotFound = errors.New("not found")

const completedFactsQuery = `
SELECT r.race_id,
       to_char(rc.date, 'YYYY-MM-DD') AS date,
       rc.course_id,
       rc.distance_f,
       rc.class,
       r.horse_id,
       r.jockey_id,
       r.trainer_id,
       COALESCE(pd.sire_id, h.sire_id) AS sire_id,
       COALESCE(pd.dam_id, h.dam_id) AS dam_id,
       COALESCE(pd.damsire_id, h.damsire_id) AS damsire_id,
       r.position,
       r.time_secs
FROM runners r
JOIN races rc ON rc.race_id = r.race_id
JOIN horses h ON h.horse_id = r.horse_id
LEFT JOIN pedigrees pd ON pd.horse_id = r.horse_id
WHERE rc.completed AND r.position IS NOT NULL AND r.position <> ''
ORDER BY rc.date, rc.off_time, r.race_id, r.horse_id`

// CompletedFacts loads every finished runner with the race and pedigree
// columns aggregation needs, oldest first.
func (s *Store) CompletedFacts(ctx context.Context) ([]models.RunnerFact, error) {
	var facts []models.RunnerFact
	if err := s.db.NewRaw(completedFactsQuery).Scan(ctx, &facts); err != nil {
		return nil, err
	}
	return facts, nil
}

// ReplaceJockeyTrainer swaps the whole partnership table for rows.
func (s *Store) ReplaceJockeyTrainer(ctx context.Context, rows []models.JockeyTrainerStats) error {
	return replaceRows(ctx, s, rows, "TRUE")
}

// ReplaceDistance swaps the whole distance table for rows.
func (s *Store) ReplaceDistance(ctx context.Context, rows []models.DistanceStats) error {
	return replaceRows(ctx, s, rows, "TRUE")
}

// ReplaceVenue swaps the whole venue table for rows.
func (s *Store) ReplaceVenue(ctx context.Context, rows []models.VenueStats) error {
	return replaceRows(ctx, s, rows, "TRUE")
}

// ReplacePedigree swaps the rows of one ancestor role.
func (s *Store) ReplacePedigree(ctx context.Context, role string, rows []models.PedigreeStats) error {
	return replaceRows(ctx, s, rows, "role = ?", role)
}

func replaceRows[T any](ctx context.Context, s *Store, rows []T, where string, args ...interface{}) error {
	return s.inTx(ctx, func(tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*T)(nil)).Where(where, args...).Exec(ctx); err != nil {
			return err
		}
		for _, chunk := range chunks(rows, batchSize) {
			if _, err := tx.NewInsert().Model(&chunk).Exec(ctx); err != nil {
				return classify(err)
			}
		}
		return nil
	})
}

// Partnerships returns partnership rows filtered by jockey and/or trainer,
// best win rate first.
func (s *Store) Partnerships(ctx context.Context, jockeyID, trainerID string, limit int) ([]models.JockeyTrainerStats, error) {
	var rows []models.JockeyTrainerStats
	q := s.db.NewSelect().Model(&rows).OrderExpr("win_rate DESC, runs DESC")
	if jockeyID != "" {
		q = q.Where("jockey_id = ?", jockeyID)
	}
	if trainerID != "" {
		q = q.Where("trainer_id = ?", trainerID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

// DistanceStats returns every band row of one entity.
func (s *Store) DistanceStats(ctx context.Context, kind, id string) ([]models.DistanceStats, error) {
	var rows []models.DistanceStats
	err := s.db.NewSelect().Model(&rows).
		Where("entity_kind = ?", kind).
		Where("entity_id = ?", id).
		Order("distance_band").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// VenueStats returns every course row of one entity.
func (s *Store) VenueStats(ctx context.Context, kind, id string) ([]models.VenueStats, error) {
	var rows []models.VenueStats
	err := s.db.NewSelect().Model(&rows).
		Where("entity_kind = ?", kind).
		Where("entity_id = ?", id).
		Order("course_id").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// PedigreeStats returns the row for one ancestor in one role.
func (s *Store) PedigreeStats(ctx context.Context, role, id string) (*models.PedigreeStats, error) {
	row := new(models.PedigreeStats)
	err := s.db.NewSelect().Model(row).
		Where("role = ?", role).
		Where("ancestor_id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// FieldCounts tallies one column. scope is a trusted SQL predicate naming
// the rows where a null is unexpected; "" means every row.
func (s *Store) FieldCounts(ctx context.Context, table, column, scope string) (models.FieldCount, error) {
	if scope == "" {
		scope = "TRUE"
	}
	var fc models.FieldCount
	err := s.db.NewRaw(
		`SELECT count(*) AS total, count(?0) AS populated,
		        count(*) FILTER (WHERE ?0 IS NULL AND (?1)) AS null_in_scope
		 FROM ?2`,
		bun.Ident(column), bun.Safe(scope), bun.Ident(table),
	).Scan(ctx, &fc)
	return fc, err
}
