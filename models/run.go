package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PipelineRun records the summary of one ingest, enrich or aggregate run.
type PipelineRun struct {
	bun.BaseModel `bun:"table:pipeline_runs,alias:pr"`

	ID         uuid.UUID       `bun:"id,pk,type:uuid" json:"id"`
	Kind       string          `bun:"kind,notnull" json:"kind"`
	StartedAt  time.Time       `bun:"started_at,notnull" json:"startedAt"`
	FinishedAt time.Time       `bun:"finished_at,notnull" json:"finishedAt"`
	Summary    json.RawMessage `bun:"summary,notnull,type:jsonb" json:"summary"`
	Failed     bool            `bun:"failed,notnull,default:false" json:"failed"`
}
