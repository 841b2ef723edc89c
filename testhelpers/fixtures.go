package testhelpers

import "github.com/padraicbc/mikerp/provider"

// Race builds a completed-looking provider race at course "cr1".
func Race(id string, runners ...provider.Runner) provider.Race {
	return provider.Race{
		RaceID:   id,
		CourseID: "cr1",
		Course:   "Leopardstown",
		Region:   "IRE",
		Date:     "2024-05-01",
		OffTime:  "14:30",
		RaceName: "Maiden " + id,
		Class:    "Class 2",
		DistF:    "8f",
		Going:    "Good",
		Type:     "Flat",
		Runners:  runners,
	}
}

// Runner builds a runner with the given horse and jockey and a fixed
// trainer and owner.
func Runner(horseID, horse, jockeyID, jockey string) provider.Runner {
	return provider.Runner{
		HorseID:   horseID,
		Horse:     horse,
		JockeyID:  jockeyID,
		Jockey:    jockey,
		TrainerID: "tr1",
		Trainer:   "A P O'Brien",
		OwnerID:   "ow1",
		Owner:     "Coolmore",
		Number:    "1",
		Lbs:       "133",
		SP:        "5/1",
	}
}

// Placed returns rec with a finishing position and time set.
func Placed(rec provider.Runner, pos, time string) provider.Runner {
	rec.Position = pos
	rec.Time = time
	return rec
}

// WithPedigree returns rec naming the given sire, dam and damsire ids.
func WithPedigree(rec provider.Runner, sireID, damID, damsireID string) provider.Runner {
	rec.SireID, rec.Sire = sireID, "Sire "+sireID
	rec.DamID, rec.Dam = damID, "Dam "+damID
	rec.DamsireID, rec.Damsire = damsireID, "Damsire "+damsireID
	return rec
}
