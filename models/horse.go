package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Horse represents a racehorse. Everything past Horse is filled by
// enrichment, except Region which may already be known from the
// "(IRE)"-style suffix on the runner's name.
type Horse struct {
	bun.BaseModel `bun:"table:horses,alias:h"`

	HorseID      string     `bun:"horse_id,pk" json:"horseID"`
	Horse        string     `bun:"horse,notnull" json:"horse"`
	DOB          *string    `bun:"dob,type:date" json:"dob,omitempty"`
	SexCode      *string    `bun:"sex_code" json:"sexCode,omitempty"`
	Colour       *string    `bun:"colour" json:"colour,omitempty"`
	Breeder      *string    `bun:"breeder" json:"breeder,omitempty"`
	Region       *string    `bun:"region" json:"region,omitempty"`
	SireID       *string    `bun:"sire_id" json:"sireID,omitempty"`
	DamID        *string    `bun:"dam_id" json:"damID,omitempty"`
	DamsireID    *string    `bun:"damsire_id" json:"damsireID,omitempty"`
	EnrichedAt   *time.Time `bun:"enriched_at" json:"enrichedAt,omitempty"`
	EnrichFailed bool       `bun:"enrich_failed,notnull,default:false" json:"enrichFailed"`
}

// Sire, Dam and Damsire are the ancestors named on a horse's pedigree.
// They live in separate tables because the same animal is often only ever
// seen in one role.
type Sire struct {
	bun.BaseModel `bun:"table:sires,alias:s"`

	SireID string  `bun:"sire_id,pk" json:"sireID"`
	Sire   string  `bun:"sire,notnull" json:"sire"`
	Region *string `bun:"region" json:"region,omitempty"`
}

type Dam struct {
	bun.BaseModel `bun:"table:dams,alias:d"`

	DamID  string  `bun:"dam_id,pk" json:"damID"`
	Dam    string  `bun:"dam,notnull" json:"dam"`
	Region *string `bun:"region" json:"region,omitempty"`
}

type Damsire struct {
	bun.BaseModel `bun:"table:damsires,alias:ds"`

	DamsireID string  `bun:"damsire_id,pk" json:"damsireID"`
	Damsire   string  `bun:"damsire,notnull" json:"damsire"`
	Region    *string `bun:"region" json:"region,omitempty"`
}

// Pedigree has at most one row per horse.
type Pedigree struct {
	bun.BaseModel `bun:"table:pedigrees,alias:pd"`

	HorseID   string    `bun:"horse_id,pk" json:"horseID"`
	SireID    *string   `bun:"sire_id" json:"sireID,omitempty"`
	DamID     *string   `bun:"dam_id" json:"damID,omitempty"`
	DamsireID *string   `bun:"damsire_id" json:"damsireID,omitempty"`
	Region    *string   `bun:"region" json:"region,omitempty"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}
