package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padraicbc/mikerp/provider"
)

func TestParseRegion(t *testing.T) {
	cases := []struct {
		in     string
		base   string
		region string
		ok     bool
	}{
		{"Sea The Stars (IRE)", "Sea The Stars", "ire", true},
		{"Frankel (GB)", "Frankel", "gb", true},
		{"American Pharoah(USA)", "American Pharoah", "usa", true},
		{"Some Horse (UK) ", "Some Horse", "gb", true},
		{"Obscure (ARG)", "Obscure", "arg", true},
		{"No Suffix", "No Suffix", "", false},
		{"Too Long (FRANCE)", "Too Long (FRANCE)", "", false},
		{"(IRE)", "(IRE)", "", false},
		{"", "", "", false},
	}
	for _, tc := range cases {
		base, region, ok := ParseRegion(tc.in)
		assert.Equal(t, tc.base, base, tc.in)
		assert.Equal(t, tc.region, region, tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
	}
}

func TestResolve(t *testing.T) {
	race := provider.Race{RaceID: "rac_1", CourseID: "crs_9", Course: "Leopardstown", Region: "IRE"}
	rec := provider.Runner{
		HorseID: "hrs_1", Horse: "Auguste Rodin (IRE)", SexCode: "C",
		JockeyID: "jky_1", Jockey: "Ryan Moore",
		TrainerID: "trn_1", Trainer: "A P O'Brien",
		Owner:  "Magnier, Tabor & Smith",
		SireID: "sir_1", Sire: "Deep Impact (JPN)",
		DamID: "dam_1", Dam: "Rhododendron (IRE)",
		Damsire: "Galileo (IRE)",
	}

	got := Resolve(race, rec)
	byKind := map[Kind]Entity{}
	for _, e := range got {
		byKind[e.Kind] = e
	}

	require.Contains(t, byKind, KindHorse)
	horse := byKind[KindHorse]
	assert.Equal(t, "Auguste Rodin", horse.Name)
	require.NotNil(t, horse.Region)
	assert.Equal(t, "ire", *horse.Region)
	assert.Nil(t, horse.VenueRegion)
	assert.Equal(t, "sir_1", *horse.SireID)
	assert.Nil(t, horse.DamsireID)

	course := byKind[KindCourse]
	assert.Equal(t, "crs_9", course.ID)
	assert.Nil(t, course.Region)
	require.NotNil(t, course.VenueRegion)
	assert.Equal(t, "ire", *course.VenueRegion)

	assert.Equal(t, "jpn", *byKind[KindSire].Region)
	assert.Equal(t, "Deep Impact", byKind[KindSire].Name)

	// owner has no id: fingerprinted; damsire has no id: dropped
	assert.Equal(t, Fingerprint(KindOwner, "Magnier, Tabor & Smith"), byKind[KindOwner].ID)
	assert.NotContains(t, byKind, KindDamsire)
}

func TestResolveWithoutHorseID(t *testing.T) {
	got := Resolve(provider.Race{}, provider.Runner{Horse: "Nameless (FR)", JockeyID: "jky_1", Jockey: "J"})
	require.Len(t, got, 1)
	assert.Equal(t, KindJockey, got[0].Kind)
}

func TestFingerprintStable(t *testing.T) {
	a := Fingerprint(KindTrainer, "A P O'Brien")
	b := Fingerprint(KindTrainer, "  a p  o'brien ")
	c := Fingerprint(KindJockey, "A P O'Brien")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Regexp(t, `^fp_[0-9a-f]+$`, a)
	assert.Equal(t, "", PersonID(KindJockey, " ", ""))
	assert.Equal(t, "jky_7", PersonID(KindJockey, " jky_7 ", "whoever"))
}
