package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/padraicbc/mikerp/models"
)

// Setup opens a PostgreSQL connection for dsn and checks it is reachable.
func Setup(ctx context.Context, dsn string, debug bool) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// tables lists every model in dependency order.
var tables = []interface{}{
	(*models.Course)(nil),
	(*models.Jockey)(nil),
	(*models.Trainer)(nil),
	(*models.Owner)(nil),
	(*models.Sire)(nil),
	(*models.Dam)(nil),
	(*models.Damsire)(nil),
	(*models.Horse)(nil),
	(*models.Pedigree)(nil),
	(*models.Race)(nil),
	(*models.Runner)(nil),
	(*models.JockeyTrainerStats)(nil),
	(*models.DistanceStats)(nil),
	(*models.VenueStats)(nil),
	(*models.PedigreeStats)(nil),
	(*models.PipelineRun)(nil),
}

type foreignKey struct {
	name, table, column, refTable, refColumn string
}

var foreignKeys = []foreignKey{
	{"horses_sire_fk", "horses", "sire_id", "sires", "sire_id"},
	{"horses_dam_fk", "horses", "dam_id", "dams", "dam_id"},
	{"horses_damsire_fk", "horses", "damsire_id", "damsires", "damsire_id"},
	{"pedigrees_horse_fk", "pedigrees", "horse_id", "horses", "horse_id"},
	{"pedigrees_sire_fk", "pedigrees", "sire_id", "sires", "sire_id"},
	{"pedigrees_dam_fk", "pedigrees", "dam_id", "dams", "dam_id"},
	{"pedigrees_damsire_fk", "pedigrees", "damsire_id", "damsires", "damsire_id"},
	{"races_course_fk", "races", "course_id", "courses", "course_id"},
	{"runners_race_fk", "runners", "race_id", "races", "race_id"},
	{"runners_horse_fk", "runners", "horse_id", "horses", "horse_id"},
	{"runners_jockey_fk", "runners", "jockey_id", "jockeys", "jockey_id"},
	{"runners_trainer_fk", "runners", "trainer_id", "trainers", "trainer_id"},
	{"runners_owner_fk", "runners", "owner_id", "owners", "owner_id"},
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS races_completed_idx ON races (completed, date)`,
	`CREATE INDEX IF NOT EXISTS horses_enrich_failed_idx ON horses (enrich_failed) WHERE enrich_failed`,
	`CREATE INDEX IF NOT EXISTS pipeline_runs_started_idx ON pipeline_runs (started_at DESC)`,
}

// CreateTables creates all tables in dependency order, then adds the
// foreign keys the writer's ordering exists to satisfy.
func CreateTables(ctx context.Context, db *bun.DB) error {
	for _, model := range tables {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("creating table for %T: %w", model, err)
		}
	}

	for _, fk := range foreignKeys {
		stmt := fmt.Sprintf(
			`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s); END IF; END $$`,
			fk.name, fk.table, fk.name, fk.column, fk.refTable, fk.refColumn,
		)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("constraint %s: %w", fk.name, err)
		}
	}

	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("index: %w", err)
		}
	}

	return nil
}
