package provider

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupLegacy(t *testing.T) {
	day := time.Date(2019, 6, 18, 0, 0, 0, 0, time.UTC)
	rows := []legacyRow{
		{raceID: 7, courseID: 2, course: "Ascot", date: day, offTime: "14:30", distance: 8, going: "Good",
			horseID: 11, horse: "Circus Maximus (IRE)", jockey: "Ryan Moore", trainer: "A P O'Brien",
			number: 1, price: "10/1", weightCarried: 126, placed: "1",
			officialRat: sql.NullInt64{Int64: 115, Valid: true}},
		{raceID: 7, courseID: 2, course: "Ascot", date: day, offTime: "14:30", distance: 8, going: "Good",
			horseID: 12, horse: "King Of Comedy", jockey: "Frankie Dettori", trainer: "John Gosden",
			number: 2, price: "11/4", weightCarried: 126, placed: "2",
			distBehindWinner: sql.NullFloat64{Float64: 0.25, Valid: true}},
		{raceID: 8, courseID: 2, course: "Ascot", date: day, offTime: "15:05", distance: 12.5, going: "Good",
			horseID: 13, horse: "Lah Ti Dar", number: 3, weightCarried: 123, placed: "PU"},
	}

	races := groupLegacy(rows)
	require.Len(t, races, 2)

	first := races[0]
	assert.Equal(t, "rp_7", first.RaceID)
	assert.Equal(t, "rp_2", first.CourseID)
	assert.Equal(t, "2019-06-18", first.Date)
	assert.Equal(t, "8f", first.DistF)
	require.Len(t, first.Runners, 2)
	assert.Equal(t, "rp_11", first.Runners[0].HorseID)
	assert.Empty(t, first.Runners[0].JockeyID, "legacy jockeys are names only")
	assert.Equal(t, "115", first.Runners[0].OR)
	assert.Equal(t, "0.25", first.Runners[1].Btn)

	assert.Equal(t, "12.5f", races[1].DistF)
	assert.Equal(t, 12.5, ParseFurlongs(races[1].DistF))
	assert.Empty(t, races[1].Runners[0].OR)
}
