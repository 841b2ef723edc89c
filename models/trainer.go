package models

import "github.com/uptrace/bun"

// Trainer holds trainer name and operator notes.
type Trainer struct {
	bun.BaseModel `bun:"table:trainers,alias:t"`

	TrainerID string  `bun:"trainer_id,pk" json:"trainerID"`
	Trainer   string  `bun:"trainer,notnull" json:"trainer"`
	Info      *string `bun:"info" json:"info,omitempty"`
}

// Jockey is a rider referenced by runners.
type Jockey struct {
	bun.BaseModel `bun:"table:jockeys,alias:j"`

	JockeyID string `bun:"jockey_id,pk" json:"jockeyID"`
	Jockey   string `bun:"jockey,notnull" json:"jockey"`
}

// Owner is the registered owner of a runner at race time.
type Owner struct {
	bun.BaseModel `bun:"table:owners,alias:o"`

	OwnerID string `bun:"owner_id,pk" json:"ownerID"`
	Owner   string `bun:"owner,notnull" json:"owner"`
}
