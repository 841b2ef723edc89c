package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultAggregationIsValid(t *testing.T) {
	a := DefaultAggregation()
	require.NoError(t, a.Validate())
	assert.Equal(t, 10, a.Jobs[JobJockeyTrainer].MinRuns)
	assert.Equal(t, 10, a.Jobs[JobSire].ClassMinRuns)
	assert.Equal(t, 1, a.Concurrency)
	for _, jf := range JobFamilies {
		assert.True(t, a.Enabled(jf.Job), jf.Job)
	}
}

func TestAggregationFromEnv(t *testing.T) {
	t.Setenv("AGG_JOCKEY_TRAINER_MIN_RUNS", "25")
	t.Setenv("AGG_PEDIGREE_ENABLED", "false")
	t.Setenv("AGG_VENUE_ENABLED", "false")

	v := viper.New()
	v.SetEnvKeyReplacer(replacer())
	v.AutomaticEnv()
	SetAggregationDefaults(v)
	a := AggregationFrom(v)

	assert.Equal(t, 25, a.Jobs[JobJockeyTrainer].MinRuns)
	assert.True(t, a.Enabled(JobJockeyTrainer))
	assert.True(t, a.Enabled(JobDistance))
	assert.False(t, a.Enabled(JobVenue))
	assert.False(t, a.Enabled(JobSire), "family switch disables every pedigree job")
	assert.False(t, a.Enabled(JobDamsire))
}

func TestAggregationFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agg.yaml")
	yaml := `
agg:
  concurrency: 3
  sire:
    min_runs: 50
    class_min_runs: 15
  dam:
    enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	v := viper.New()
	SetAggregationDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	a := AggregationFrom(v)

	require.NoError(t, a.Validate())
	assert.Equal(t, 3, a.Concurrency)
	assert.Equal(t, 50, a.Jobs[JobSire].MinRuns)
	assert.Equal(t, 15, a.Jobs[JobSire].ClassMinRuns)
	assert.Equal(t, 10, a.Jobs[JobSire].DistanceMinRuns)
	assert.False(t, a.Enabled(JobDam))
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	a := DefaultAggregation()
	j := a.Jobs[JobVenue]
	j.MinRuns = 0
	a.Jobs[JobVenue] = j
	err := a.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidThreshold)
	assert.Contains(t, err.Error(), "agg.venue.min_runs")

	// switching the job off makes the same value acceptable
	j.Enabled = false
	a.Jobs[JobVenue] = j
	assert.NoError(t, a.Validate())

	a = DefaultAggregation()
	j = a.Jobs[JobDam]
	j.DistanceMinRuns = -1
	a.Jobs[JobDam] = j
	assert.ErrorIs(t, a.Validate(), ErrInvalidThreshold)

	a = DefaultAggregation()
	a.Concurrency = 0
	assert.ErrorIs(t, a.Validate(), ErrInvalidThreshold)
}

func TestOnly(t *testing.T) {
	a := DefaultAggregation().Only(JobSire, JobVenue)
	assert.True(t, a.Enabled(JobSire))
	assert.True(t, a.Enabled(JobVenue))
	assert.False(t, a.Enabled(JobDam))
	assert.False(t, a.Enabled(JobJockeyTrainer))
	assert.True(t, DefaultAggregation().Enabled(JobDam), "Only must not mutate the receiver")
}
