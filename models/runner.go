package models

import "github.com/uptrace/bun"

// Runner links one race to a horse/jockey/trainer/owner tuple. The
// post-race fields stay nil until the result is in.
type Runner struct {
	bun.BaseModel `bun:"table:runners,alias:r"`

	ID             int64    `bun:"id,pk,autoincrement" json:"id"`
	RaceID         string   `bun:"race_id,notnull,unique:runners_no_dupes" json:"raceID"`
	HorseID        string   `bun:"horse_id,notnull,unique:runners_no_dupes" json:"horseID"`
	JockeyID       *string  `bun:"jockey_id" json:"jockeyID,omitempty"`
	TrainerID      *string  `bun:"trainer_id" json:"trainerID,omitempty"`
	OwnerID        *string  `bun:"owner_id" json:"ownerID,omitempty"`
	Number         *int     `bun:"number" json:"number,omitempty"`
	Draw           *int     `bun:"draw" json:"draw,omitempty"`
	WeightLbs      *int     `bun:"weight_lbs" json:"weightLbs,omitempty"`
	Odds           *string  `bun:"odds" json:"odds,omitempty"`
	Headgear       *string  `bun:"headgear" json:"headgear,omitempty"`
	OfficialRating *int     `bun:"official_rating" json:"officialRating,omitempty"`
	Position       *string  `bun:"position" json:"position,omitempty"`
	Margin         *string  `bun:"margin" json:"margin,omitempty"`
	Prize          *float64 `bun:"prize" json:"prize,omitempty"`
	TimeSecs       *float64 `bun:"time_secs" json:"timeSecs,omitempty"`
}
