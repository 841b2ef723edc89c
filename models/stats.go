package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Summary carries the counts shared by every aggregate row. AEIndex and
// ProfitLoss need a probability model and are always written as NULL.
type Summary struct {
	Runs       int       `bun:"runs,notnull" json:"runs"`
	Wins       int       `bun:"wins,notnull" json:"wins"`
	WinRate    float64   `bun:"win_rate,notnull" json:"winRate"`
	AEIndex    *float64  `bun:"ae_index" json:"aeIndex,omitempty"`
	ProfitLoss *float64  `bun:"profit_loss" json:"profitLoss,omitempty"`
	MinRuns    int       `bun:"min_runs,notnull" json:"minRuns"`
	ComputedAt time.Time `bun:"computed_at,notnull" json:"computedAt"`
}

// JockeyTrainerStats is the partnership aggregate.
type JockeyTrainerStats struct {
	bun.BaseModel `bun:"table:jockey_trainer_stats,alias:jts"`

	JockeyID  string `bun:"jockey_id,pk" json:"jockeyID"`
	TrainerID string `bun:"trainer_id,pk" json:"trainerID"`
	Summary
}

// DistanceStats is keyed by (entity kind, entity, distance band). The time
// columns are only filled for horses with recorded race times.
type DistanceStats struct {
	bun.BaseModel `bun:"table:distance_stats,alias:dst"`

	EntityKind   string   `bun:"entity_kind,pk" json:"entityKind"`
	EntityID     string   `bun:"entity_id,pk" json:"entityID"`
	DistanceBand string   `bun:"distance_band,pk" json:"distanceBand"`
	BestTime     *float64 `bun:"best_time" json:"bestTime,omitempty"`
	AvgTime      *float64 `bun:"avg_time" json:"avgTime,omitempty"`
	LastTime     *float64 `bun:"last_time" json:"lastTime,omitempty"`
	Summary
}

// VenueStats is keyed by (entity kind, entity, course).
type VenueStats struct {
	bun.BaseModel `bun:"table:venue_stats,alias:vst"`

	EntityKind string `bun:"entity_kind,pk" json:"entityKind"`
	EntityID   string `bun:"entity_id,pk" json:"entityID"`
	CourseID   string `bun:"course_id,pk" json:"courseID"`
	Summary
}

// SubGroup is one class or distance-band breakdown of a pedigree line.
// All fields are nil when the sub-group did not reach its threshold.
type SubGroup struct {
	Key     *string  `bun:"key" json:"key,omitempty"`
	Runs    *int     `bun:"runs" json:"runs,omitempty"`
	Wins    *int     `bun:"wins" json:"wins,omitempty"`
	WinRate *float64 `bun:"win_rate" json:"winRate,omitempty"`
}

// PedigreeStats aggregates offspring results by ancestor. Role is one of
// sire, dam or damsire.
type PedigreeStats struct {
	bun.BaseModel `bun:"table:pedigree_stats,alias:pst"`

	Role       string   `bun:"role,pk" json:"role"`
	AncestorID string   `bun:"ancestor_id,pk" json:"ancestorID"`
	Class1     SubGroup `bun:"embed:class_1_" json:"class1"`
	Class2     SubGroup `bun:"embed:class_2_" json:"class2"`
	Class3     SubGroup `bun:"embed:class_3_" json:"class3"`
	Dist1      SubGroup `bun:"embed:dist_1_" json:"dist1"`
	Dist2      SubGroup `bun:"embed:dist_2_" json:"dist2"`
	Dist3      SubGroup `bun:"embed:dist_3_" json:"dist3"`
	Summary
}
