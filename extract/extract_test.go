package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/padraicbc/mikerp/identity"
	"github.com/padraicbc/mikerp/models"
	"github.com/padraicbc/mikerp/provider"
	"github.com/padraicbc/mikerp/testhelpers"
)

func key(kind identity.Kind, id string) identity.Key { return identity.Key{Kind: kind, ID: id} }

func TestExtractPartitionsNewAndKnown(t *testing.T) {
	store := testhelpers.NewMemStore()
	store.Jockeys["jY"] = models.Jockey{JockeyID: "jY", Jockey: "Y"}

	races := []provider.Race{
		testhelpers.Race("rA", testhelpers.Runner("hX", "X (IRE)", "jY", "Y")),
		testhelpers.Race("rB", testhelpers.Runner("hX", "X (IRE)", "jZ", "Z")),
	}

	res, err := New(store, zap.NewNop()).Extract(context.Background(), races)
	require.NoError(t, err)

	assert.Len(t, res.Races, 2)
	assert.Equal(t, []string{"hX"}, res.New[identity.KindHorse])
	assert.Equal(t, []string{"jZ"}, res.New[identity.KindJockey])
	assert.Equal(t, []string{"jY"}, res.Known[identity.KindJockey])

	x := res.Entities[key(identity.KindHorse, "hX")]
	require.NotNil(t, x)
	assert.Equal(t, "X", x.Name)
	require.NotNil(t, x.Region)
	assert.Equal(t, "ire", *x.Region)

	course := res.Entities[key(identity.KindCourse, "cr1")]
	require.NotNil(t, course)
	assert.Nil(t, course.Region, "venue region must not leak into breeding region")
	require.NotNil(t, course.VenueRegion)
	assert.Equal(t, "ire", *course.VenueRegion)
}

func TestExtractOneExistenceCheckPerKind(t *testing.T) {
	store := testhelpers.NewMemStore()
	var runners []provider.Runner
	for _, id := range []string{"h1", "h2", "h3", "h4"} {
		runners = append(runners, testhelpers.Runner(id, "Horse "+id, "j"+id, "Jockey "+id))
	}
	_, err := New(store, zap.NewNop()).Extract(context.Background(), []provider.Race{
		testhelpers.Race("r1", runners[:2]...),
		testhelpers.Race("r2", runners[2:]...),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, store.ExistsCalls[identity.KindHorse])
	assert.Equal(t, 1, store.ExistsCalls[identity.KindJockey])
	assert.Equal(t, 1, store.ExistsCalls[identity.KindCourse])
}

func TestExtractLastSeenWins(t *testing.T) {
	first := testhelpers.Runner("h1", "Alpha", "j1", "J Smith")
	first.Colour = "b"
	second := testhelpers.Runner("h1", "Alpha (FR)", "j1", "")
	second.Colour = "ch"

	res, err := New(testhelpers.NewMemStore(), zap.NewNop()).Extract(context.Background(), []provider.Race{
		testhelpers.Race("r1", first),
		testhelpers.Race("r2", second),
	})
	require.NoError(t, err)

	h := res.Entities[key(identity.KindHorse, "h1")]
	require.NotNil(t, h.Colour)
	assert.Equal(t, "ch", *h.Colour)
	require.NotNil(t, h.Region)
	assert.Equal(t, "fr", *h.Region)

	j := res.Entities[key(identity.KindJockey, "j1")]
	assert.Equal(t, "J Smith", j.Name, "a blank name never replaces a known one")
}

func TestExtractSkipsMalformed(t *testing.T) {
	noHorse := testhelpers.Runner("", "Nameless", "j1", "J")
	noCourse := testhelpers.Race("r2", testhelpers.Runner("h2", "B", "j2", "K"))
	noCourse.CourseID = ""

	res, err := New(testhelpers.NewMemStore(), zap.NewNop()).Extract(context.Background(), []provider.Race{
		testhelpers.Race("r1", noHorse, testhelpers.Runner("h1", "A", "j1", "J")),
		noCourse,
		testhelpers.Race(""),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 2, res.SkippedRaces)
	require.Len(t, res.Races, 1)
	assert.Len(t, res.Races[0].Runners, 1)
	assert.NotContains(t, res.Entities, key(identity.KindHorse, "h2"))
}

func TestExtractFingerprintsPersonsWithoutID(t *testing.T) {
	rec := testhelpers.Runner("h1", "A", "", "Seamie Heffernan")
	res, err := New(testhelpers.NewMemStore(), zap.NewNop()).Extract(context.Background(), []provider.Race{
		testhelpers.Race("r1", rec),
	})
	require.NoError(t, err)

	fp := identity.Fingerprint(identity.KindJockey, "Seamie Heffernan")
	assert.Equal(t, []string{fp}, res.New[identity.KindJockey])
}

func TestExtractIsIdempotent(t *testing.T) {
	store := testhelpers.NewMemStore()
	store.Horses["h1"] = models.Horse{HorseID: "h1", Horse: "A"}
	races := []provider.Race{
		testhelpers.Race("r1", testhelpers.Runner("h1", "A", "j1", "J"), testhelpers.Runner("h2", "B (GB)", "j2", "K")),
	}
	x := New(store, zap.NewNop())

	first, err := x.Extract(context.Background(), races)
	require.NoError(t, err)
	second, err := x.Extract(context.Background(), races)
	require.NoError(t, err)

	assert.Equal(t, first.New, second.New)
	assert.Equal(t, first.Known, second.Known)
	assert.Equal(t, first.Entities, second.Entities)
}

func TestResultAdd(t *testing.T) {
	res := &Result{
		Entities: map[identity.Key]*identity.Entity{},
		New:      map[identity.Kind][]string{},
	}
	ire, gb := "ire", "gb"
	res.Add(identity.Entity{Kind: identity.KindSire, ID: "s2", Name: "Galileo", Region: &ire})
	res.Add(identity.Entity{Kind: identity.KindSire, ID: "s1", Name: "Frankel"})
	res.Add(identity.Entity{Kind: identity.KindSire, ID: "s2", Name: "", Region: &gb})

	assert.Equal(t, []identity.Key{key(identity.KindSire, "s2"), key(identity.KindSire, "s1")}, res.Added)
	assert.Empty(t, res.New[identity.KindSire], "unclassified until checked against the store")
	assert.Equal(t, "Galileo", res.Entities[key(identity.KindSire, "s2")].Name)
	assert.Equal(t, "ire", *res.Entities[key(identity.KindSire, "s2")].Region)
	assert.False(t, res.IsNew(key(identity.KindSire, "s1")))
}

func TestClassifyAddedAgainstStore(t *testing.T) {
	store := testhelpers.NewMemStore()
	store.Sires["s1"] = models.Sire{SireID: "s1", Sire: "Frankel"}
	x := New(store, zap.NewNop())

	res, err := x.Extract(context.Background(), []provider.Race{
		testhelpers.Race("r1", testhelpers.Runner("h1", "Alpha", "j1", "J")),
	})
	require.NoError(t, err)
	res.Add(identity.Entity{Kind: identity.KindSire, ID: "s1", Name: "Frankel"})
	res.Add(identity.Entity{Kind: identity.KindSire, ID: "s2", Name: "Galileo"})
	res.Add(identity.Entity{Kind: identity.KindDam, ID: "d1", Name: "Dam One"})
	before := store.ExistsCalls[identity.KindSire]

	require.NoError(t, x.Classify(context.Background(), res))

	assert.Equal(t, []string{"s1"}, res.Known[identity.KindSire])
	assert.Equal(t, []string{"s2"}, res.New[identity.KindSire])
	assert.Equal(t, []string{"d1"}, res.New[identity.KindDam])
	assert.False(t, res.IsNew(key(identity.KindSire, "s1")))
	assert.True(t, res.IsNew(key(identity.KindSire, "s2")))
	assert.Empty(t, res.Added)
	assert.Equal(t, before+1, store.ExistsCalls[identity.KindSire], "one existence check per kind")
}
