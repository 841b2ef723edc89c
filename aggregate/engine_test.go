package aggregate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/padraicbc/mikerp/config"
	"github.com/padraicbc/mikerp/models"
	"github.com/padraicbc/mikerp/testhelpers"
	"github.com/padraicbc/mikerp/writer"
)

// seed writes n completed races in which jockey j1 rides for trainer tr1.
func seed(t *testing.T, store *testhelpers.MemStore, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		id := string(rune('a' + i))
		rec := testhelpers.Placed(testhelpers.Runner("h"+id, "Horse "+id, "j1", "J"), "1", "1:40.00")
		if i%2 == 1 {
			rec.Position = "3"
		}
		rec = testhelpers.WithPedigree(rec, "s1", "d"+id, "ds1")
		race := testhelpers.Race("r"+id, rec)

		row, runners := writer.BuildRace(race)
		store.Courses["cr1"] = models.Course{CourseID: "cr1", Course: "Leopardstown"}
		store.Jockeys["j1"] = models.Jockey{JockeyID: "j1", Jockey: "J"}
		store.Trainers["tr1"] = models.Trainer{TrainerID: "tr1", Trainer: "T"}
		store.Owners["ow1"] = models.Owner{OwnerID: "ow1", Owner: "O"}
		store.Horses["h"+id] = models.Horse{HorseID: "h" + id, Horse: "Horse " + id, SireID: &rec.SireID, DamID: &rec.DamID, DamsireID: &rec.DamsireID}
		require.NoError(t, store.WriteRace(context.Background(), &row, runners))
	}
}

func TestEngineSevenOfTenWritesNoPartnership(t *testing.T) {
	store := testhelpers.NewMemStore()
	seed(t, store, 7)
	store.JockeyTrainer = []models.JockeyTrainerStats{{JockeyID: "j1", TrainerID: "tr1"}}

	rep, err := New(store, zap.NewNop()).Run(context.Background(), config.DefaultAggregation())
	require.NoError(t, err)

	assert.Equal(t, 7, rep.Facts)
	assert.Zero(t, rep.Failed)
	assert.Empty(t, store.JockeyTrainer, "stale rows are replaced, not kept")
	assert.Len(t, store.Venue, 2, "only the jockey and trainer reach the venue threshold")
}

func TestEngineRerunIsReproducible(t *testing.T) {
	store := testhelpers.NewMemStore()
	seed(t, store, 10)
	e := New(store, zap.NewNop())

	_, err := e.Run(context.Background(), config.DefaultAggregation())
	require.NoError(t, err)
	first := append([]models.JockeyTrainerStats(nil), store.JockeyTrainer...)
	require.Len(t, first, 1)
	assert.Equal(t, 10, first[0].Runs)
	assert.Equal(t, 5, first[0].Wins)

	_, err = e.Run(context.Background(), config.DefaultAggregation())
	require.NoError(t, err)
	require.Len(t, store.JockeyTrainer, 1)
	assert.Equal(t, first[0].Summary.Runs, store.JockeyTrainer[0].Runs)
	assert.Equal(t, first[0].Summary.WinRate, store.JockeyTrainer[0].WinRate)

	// raising the threshold removes the row on the next run
	cfg := config.DefaultAggregation()
	jt := cfg.Jobs[config.JobJockeyTrainer]
	jt.MinRuns = 11
	cfg.Jobs[config.JobJockeyTrainer] = jt
	_, err = e.Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Empty(t, store.JockeyTrainer)
}

func TestEngineSkipsDisabledJobs(t *testing.T) {
	store := testhelpers.NewMemStore()
	seed(t, store, 3)

	cfg := config.DefaultAggregation()
	cfg.Families[config.FamilyPedigree] = false
	rep, err := New(store, zap.NewNop()).Run(context.Background(), cfg.Only(config.JobVenue, config.JobSire))
	require.NoError(t, err)

	for _, jr := range rep.Jobs {
		assert.Equal(t, jr.Job != config.JobVenue, jr.Skipped, jr.Job)
	}
	assert.Equal(t, -1, store.Index("replace", "sire"))
	assert.GreaterOrEqual(t, store.Index("replace", "venue"), 0)
}

func TestEngineJobFailureIsIsolated(t *testing.T) {
	store := testhelpers.NewMemStore()
	seed(t, store, 10)
	store.FailReplace["distance"] = errors.New("disk full")

	cfg := config.DefaultAggregation()
	cfg.Concurrency = 3
	rep, err := New(store, zap.NewNop()).Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, rep.Failed)
	for _, jr := range rep.Jobs {
		if jr.Job == config.JobDistance {
			assert.Equal(t, "disk full", jr.Err)
			assert.Zero(t, jr.Rows)
			continue
		}
		assert.Empty(t, jr.Err, jr.Job)
	}
	assert.Len(t, store.JockeyTrainer, 1)
	assert.Empty(t, store.Pedigree["sire"], "sire s1 has 10 runs, below the default 20")
	assert.Empty(t, store.Pedigree["dam"], "every dam has a single runner")
}

func TestEngineRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultAggregation()
	cfg.Concurrency = 0
	_, err := New(testhelpers.NewMemStore(), zap.NewNop()).Run(context.Background(), cfg)
	assert.ErrorIs(t, err, config.ErrInvalidThreshold)
}
