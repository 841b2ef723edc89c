package provider

import (
	"context"
	"errors"
)

// ErrNotFound is returned by detail lookups for ids the provider doesn't know.
var ErrNotFound = errors.New("provider: not found")

// Race is one event as delivered by a results or racecard fetch. Numeric
// fields arrive as text and are parsed when rows are built.
type Race struct {
	RaceID   string   `json:"race_id"`
	CourseID string   `json:"course_id"`
	Course   string   `json:"course"`
	Region   string   `json:"region"`
	Date     string   `json:"date"`
	OffTime  string   `json:"off"`
	RaceName string   `json:"race_name"`
	Class    string   `json:"class"`
	DistF    string   `json:"dist_f"`
	Going    string   `json:"going"`
	Type     string   `json:"type"`
	Runners  []Runner `json:"runners"`
}

// Runner is one participant entry inside a Race.
type Runner struct {
	HorseID   string `json:"horse_id"`
	Horse     string `json:"horse"`
	SexCode   string `json:"sex_code"`
	Colour    string `json:"colour"`
	JockeyID  string `json:"jockey_id"`
	Jockey    string `json:"jockey"`
	TrainerID string `json:"trainer_id"`
	Trainer   string `json:"trainer"`
	OwnerID   string `json:"owner_id"`
	Owner     string `json:"owner"`
	SireID    string `json:"sire_id"`
	Sire      string `json:"sire"`
	DamID     string `json:"dam_id"`
	Dam       string `json:"dam"`
	DamsireID string `json:"damsire_id"`
	Damsire   string `json:"damsire"`

	Number   string `json:"number"`
	Draw     string `json:"draw"`
	Lbs      string `json:"lbs"`
	SP       string `json:"sp"`
	Headgear string `json:"headgear"`
	OR       string `json:"or"`

	Position string `json:"position"`
	Btn      string `json:"btn"`
	Prize    string `json:"prize"`
	Time     string `json:"time"`
}

// HorseDetail is the richer per-horse record returned by the detail lookup.
type HorseDetail struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	DOB       string `json:"dob"`
	SexCode   string `json:"sex_code"`
	Colour    string `json:"colour"`
	Breeder   string `json:"breeder"`
	Region    string `json:"region"`
	SireID    string `json:"sire_id"`
	Sire      string `json:"sire"`
	DamID     string `json:"dam_id"`
	Dam       string `json:"dam"`
	DamsireID string `json:"damsire_id"`
	Damsire   string `json:"damsire"`
}

// Source delivers batches of races. Client and LegacySource implement it.
type Source interface {
	Results(ctx context.Context, from, to string) ([]Race, error)
}
