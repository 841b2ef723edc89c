package models

// RunnerFact is one completed runner joined with its race and pedigree.
// Aggregation jobs read nothing else.
type RunnerFact struct {
	RaceID    string   `bun:"race_id"`
	Date      string   `bun:"date"`
	CourseID  string   `bun:"course_id"`
	DistanceF float64  `bun:"distance_f"`
	Class     *string  `bun:"class"`
	HorseID   string   `bun:"horse_id"`
	JockeyID  *string  `bun:"jockey_id"`
	TrainerID *string  `bun:"trainer_id"`
	SireID    *string  `bun:"sire_id"`
	DamID     *string  `bun:"dam_id"`
	DamsireID *string  `bun:"damsire_id"`
	Position  string   `bun:"position"`
	TimeSecs  *float64 `bun:"time_secs"`
}

// Won reports whether the runner finished first.
func (f RunnerFact) Won() bool { return f.Position == "1" }
