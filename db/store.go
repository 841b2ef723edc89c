package db

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/padraicbc/mikerp/identity"
	"github.com/padraicbc/mikerp/merge"
	"github.com/padraicbc/mikerp/models"
)

const batchSize = 500

type entityTable struct {
	table, alias, pk string
}

var entityTables = map[identity.Kind]entityTable{
	identity.KindCourse:  {"courses", "c", "course_id"},
	identity.KindJockey:  {"jockeys", "j", "jockey_id"},
	identity.KindTrainer: {"trainers", "t", "trainer_id"},
	identity.KindOwner:   {"owners", "o", "owner_id"},
	identity.KindSire:    {"sires", "s", "sire_id"},
	identity.KindDam:     {"dams", "d", "dam_id"},
	identity.KindDamsire: {"damsires", "ds", "damsire_id"},
	identity.KindHorse:   {"horses", "h", "horse_id"},
}

// A horse that has been enriched once is never flagged again; otherwise a
// failure sticks until a later lookup succeeds.
const horseEnrichSet = `enriched_at = COALESCE(EXCLUDED.enriched_at, h.enriched_at), ` +
	`enrich_failed = CASE WHEN EXCLUDED.enriched_at IS NOT NULL OR h.enriched_at IS NOT NULL ` +
	`THEN false ELSE h.enrich_failed OR EXCLUDED.enrich_failed END`

// Store is the bun-backed implementation of every pipeline store interface.
type Store struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewStore wraps an open database.
func NewStore(db *bun.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger.With(zap.String("component", "store"))}
}

// DB exposes the underlying handle for callers that need ad hoc queries.
func (s *Store) DB() *bun.DB { return s.db }

// ExistingKeys returns which of ids are already stored for kind, in one
// query.
func (s *Store) ExistingKeys(ctx context.Context, kind identity.Kind, ids []string) (map[string]bool, error) {
	t, ok := entityTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
	found := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	var keys []string
	err := s.db.NewSelect().
		TableExpr("?", bun.Ident(t.table)).
		ColumnExpr("?", bun.Ident(t.pk)).
		Where("? IN (?)", bun.Ident(t.pk), bun.In(ids)).
		Scan(ctx, &keys)
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		found[k] = true
	}
	return found, nil
}

// UpsertEntities writes the batch in foreign-key order inside one
// transaction.
func (s *Store) UpsertEntities(ctx context.Context, b *models.EntityBatch) error {
	return s.inTx(ctx, func(tx bun.Tx) error {
		if err := upsertEntities(ctx, tx, identity.KindCourse, b.Courses); err != nil {
			return err
		}
		if err := upsertEntities(ctx, tx, identity.KindJockey, b.Jockeys); err != nil {
			return err
		}
		if err := upsertEntities(ctx, tx, identity.KindTrainer, b.Trainers); err != nil {
			return err
		}
		if err := upsertEntities(ctx, tx, identity.KindOwner, b.Owners); err != nil {
			return err
		}
		if err := upsertEntities(ctx, tx, identity.KindSire, b.Sires); err != nil {
			return err
		}
		if err := upsertEntities(ctx, tx, identity.KindDam, b.Dams); err != nil {
			return err
		}
		if err := upsertEntities(ctx, tx, identity.KindDamsire, b.Damsires); err != nil {
			return err
		}
		if err := upsertEntities(ctx, tx, identity.KindHorse, b.Horses); err != nil {
			return err
		}

		set := merge.SetClause("pd", merge.PedigreeColumns) + ", updated_at = EXCLUDED.updated_at"
		for _, chunk := range chunks(b.Pedigrees, batchSize) {
			if _, err := tx.NewInsert().Model(&chunk).
				On("CONFLICT (horse_id) DO UPDATE").
				Set(set).
				Exec(ctx); err != nil {
				return fmt.Errorf("upsert pedigrees: %w", classify(err))
			}
		}
		return nil
	})
}

func upsertEntities[T any](ctx context.Context, tx bun.Tx, kind identity.Kind, rows []T) error {
	t := entityTables[kind]
	set := merge.SetClause(t.alias, merge.EntityColumns[kind])
	if kind == identity.KindHorse {
		set += ", " + horseEnrichSet
	}
	for _, chunk := range chunks(rows, batchSize) {
		_, err := tx.NewInsert().Model(&chunk).
			On(fmt.Sprintf("CONFLICT (%s) DO UPDATE", t.pk)).
			Set(set).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("upsert %s: %w", t.table, classify(err))
		}
	}
	return nil
}

// WriteRace upserts race and its runners atomically. A runner naming an
// entity that was never written fails with ErrIntegrity and nothing of the
// race is kept.
func (s *Store) WriteRace(ctx context.Context, race *models.Race, runners []models.Runner) error {
	err := s.inTx(ctx, func(tx bun.Tx) error {
		_, err := tx.NewInsert().Model(race).
			On("CONFLICT (race_id) DO UPDATE").
			Set(merge.SetClause("rc", merge.RaceColumns)).
			Set("distance_f = CASE WHEN EXCLUDED.distance_f > 0 THEN EXCLUDED.distance_f ELSE rc.distance_f END").
			Set("completed = rc.completed OR EXCLUDED.completed").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("race %s: %w", race.RaceID, err)
		}
		if len(runners) == 0 {
			return nil
		}
		_, err = tx.NewInsert().Model(&runners).
			On("CONFLICT (race_id, horse_id) DO UPDATE").
			Set(merge.SetClause("r", merge.RunnerColumns)).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("runners of %s: %w", race.RaceID, err)
		}
		return nil
	})
	return classify(err)
}

// PendingEnrichment lists horses whose last detail lookup failed.
func (s *Store) PendingEnrichment(ctx context.Context, limit int) ([]string, error) {
	var ids []string
	q := s.db.NewSelect().
		Model((*models.Horse)(nil)).
		Column("horse_id").
		Where("enrich_failed").
		Order("horse_id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// inTx runs fn in a transaction that is rolled back unless fn succeeds.
func (s *Store) inTx(ctx context.Context, fn func(tx bun.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	return nil
}

func chunks[T any](rows []T, size int) [][]T {
	var out [][]T
	for len(rows) > size {
		out = append(out, rows[:size:size])
		rows = rows[size:]
	}
	if len(rows) > 0 {
		out = append(out, rows)
	}
	return out
}
