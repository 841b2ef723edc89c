package config

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/viper"
)

// ErrInvalidThreshold is returned by Aggregation.Validate.
var ErrInvalidThreshold = errors.New("invalid aggregation threshold")

// Aggregation job names.
const (
	JobJockeyTrainer = "jockey_trainer"
	JobDistance      = "distance"
	JobVenue         = "venue"
	JobSire          = "sire"
	JobDam           = "dam"
	JobDamsire       = "damsire"
)

// Aggregation job families.
const (
	FamilyPartnership = "partnership"
	FamilyPerformance = "performance"
	FamilyPedigree    = "pedigree"
)

// JobFamilies maps every job to its family, in run order.
var JobFamilies = []struct{ Job, Family string }{
	{JobJockeyTrainer, FamilyPartnership},
	{JobDistance, FamilyPerformance},
	{JobVenue, FamilyPerformance},
	{JobSire, FamilyPedigree},
	{JobDam, FamilyPedigree},
	{JobDamsire, FamilyPedigree},
}

// Job holds one job's switch and minimum sample sizes. ClassMinRuns and
// DistanceMinRuns only apply to the pedigree jobs.
type Job struct {
	Enabled         bool
	MinRuns         int
	ClassMinRuns    int
	DistanceMinRuns int
}

// Aggregation is passed explicitly to every aggregation run.
type Aggregation struct {
	Families    map[string]bool
	Jobs        map[string]Job
	Concurrency int
}

type jobDefaults struct{ min, class, dist int }

var defaultThresholds = map[string]jobDefaults{
	JobJockeyTrainer: {min: 10},
	JobDistance:      {min: 5},
	JobVenue:         {min: 5},
	JobSire:          {min: 20, class: 10, dist: 10},
	JobDam:           {min: 5, class: 3, dist: 3},
	JobDamsire:       {min: 20, class: 10, dist: 10},
}

// SetAggregationDefaults registers the default thresholds under agg.*;
// AGG_<JOB>_MIN_RUNS style environment variables override them.
func SetAggregationDefaults(v *viper.Viper) {
	v.SetDefault("agg.concurrency", 1)
	for _, f := range []string{FamilyPartnership, FamilyPerformance, FamilyPedigree} {
		v.SetDefault("agg."+f+".enabled", true)
	}
	for job, d := range defaultThresholds {
		v.SetDefault("agg."+job+".enabled", true)
		v.SetDefault("agg."+job+".min_runs", d.min)
		if isPedigreeJob(job) {
			v.SetDefault("agg."+job+".class_min_runs", d.class)
			v.SetDefault("agg."+job+".distance_min_runs", d.dist)
		}
	}
}

// AggregationFrom reads the agg.* keys of v.
func AggregationFrom(v *viper.Viper) Aggregation {
	a := Aggregation{
		Families:    map[string]bool{},
		Jobs:        map[string]Job{},
		Concurrency: v.GetInt("agg.concurrency"),
	}
	for _, jf := range JobFamilies {
		a.Families[jf.Family] = v.GetBool("agg." + jf.Family + ".enabled")
		a.Jobs[jf.Job] = Job{
			Enabled:         v.GetBool("agg." + jf.Job + ".enabled"),
			MinRuns:         v.GetInt("agg." + jf.Job + ".min_runs"),
			ClassMinRuns:    v.GetInt("agg." + jf.Job + ".class_min_runs"),
			DistanceMinRuns: v.GetInt("agg." + jf.Job + ".distance_min_runs"),
		}
	}
	return a
}

// DefaultAggregation returns the built-in thresholds with everything enabled.
func DefaultAggregation() Aggregation {
	v := viper.New()
	SetAggregationDefaults(v)
	return AggregationFrom(v)
}

// Enabled reports whether job should run: both its family and the job
// itself must be switched on.
func (a Aggregation) Enabled(job string) bool {
	for _, jf := range JobFamilies {
		if jf.Job == job {
			return a.Families[jf.Family] && a.Jobs[job].Enabled
		}
	}
	return false
}

// Only returns a copy with every job outside jobs disabled.
func (a Aggregation) Only(jobs ...string) Aggregation {
	keep := map[string]bool{}
	for _, j := range jobs {
		keep[j] = true
	}
	out := a
	out.Jobs = make(map[string]Job, len(a.Jobs))
	for name, j := range a.Jobs {
		j.Enabled = j.Enabled && keep[name]
		out.Jobs[name] = j
	}
	return out
}

// Validate checks every enabled job's thresholds. Disabled jobs are not
// checked so an operator can switch a job off without tuning it.
func (a Aggregation) Validate() error {
	if a.Concurrency < 1 {
		return fmt.Errorf("%w: agg.concurrency must be at least 1, got %d", ErrInvalidThreshold, a.Concurrency)
	}
	names := make([]string, 0, len(a.Jobs))
	for name := range a.Jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := defaultThresholds[name]; !ok {
			return fmt.Errorf("%w: unknown job %q", ErrInvalidThreshold, name)
		}
		j := a.Jobs[name]
		if !a.Enabled(name) {
			continue
		}
		if j.MinRuns < 1 {
			return fmt.Errorf("%w: agg.%s.min_runs must be at least 1, got %d", ErrInvalidThreshold, name, j.MinRuns)
		}
		if isPedigreeJob(name) {
			if j.ClassMinRuns < 1 {
				return fmt.Errorf("%w: agg.%s.class_min_runs must be at least 1, got %d", ErrInvalidThreshold, name, j.ClassMinRuns)
			}
			if j.DistanceMinRuns < 1 {
				return fmt.Errorf("%w: agg.%s.distance_min_runs must be at least 1, got %d", ErrInvalidThreshold, name, j.DistanceMinRuns)
			}
		}
	}
	return nil
}

func isPedigreeJob(job string) bool {
	return job == JobSire || job == JobDam || job == JobDamsire
}
