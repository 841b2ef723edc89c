// Package aggregate recomputes the derived statistics tables from completed
// runners. Every job replaces its own rows wholesale.
package aggregate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/padraicbc/mikerp/config"
	"github.com/padraicbc/mikerp/metrics"
	"github.com/padraicbc/mikerp/models"
)

// Store is what the aggregation jobs read and replace.
type Store interface {
	CompletedFacts(ctx context.Context) ([]models.RunnerFact, error)
	ReplaceJockeyTrainer(ctx context.Context, rows []models.JockeyTrainerStats) error
	ReplaceDistance(ctx context.Context, rows []models.DistanceStats) error
	ReplaceVenue(ctx context.Context, rows []models.VenueStats) error
	ReplacePedigree(ctx context.Context, role string, rows []models.PedigreeStats) error
}

// JobReport is the outcome of one job.
type JobReport struct {
	Job      string        `json:"job"`
	Family   string        `json:"family"`
	Skipped  bool          `json:"skipped,omitempty"`
	Rows     int           `json:"rows"`
	Duration time.Duration `json:"duration"`
	Err      string        `json:"error,omitempty"`
}

// Report is the outcome of one Run.
type Report struct {
	Facts  int         `json:"facts"`
	Jobs   []JobReport `json:"jobs"`
	Failed int         `json:"failed"`
}

// Engine runs the aggregation jobs.
type Engine struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// New creates an Engine.
func New(store Store, logger *zap.Logger) *Engine {
	return &Engine{store: store, logger: logger.With(zap.String("component", "aggregate")), now: time.Now}
}

// Run loads completed facts once and runs every enabled job against them.
// A failing job is reported and does not stop the others; only an invalid
// cfg or a failed fact load is returned as an error.
func (e *Engine) Run(ctx context.Context, cfg config.Aggregation) (Report, error) {
	var rep Report
	if err := cfg.Validate(); err != nil {
		return rep, err
	}

	facts, err := e.store.CompletedFacts(ctx)
	if err != nil {
		return rep, fmt.Errorf("load completed runners: %w", err)
	}
	rep.Facts = len(facts)
	now := e.now().UTC()

	rep.Jobs = make([]JobReport, len(config.JobFamilies))
	var g errgroup.Group
	g.SetLimit(cfg.Concurrency)
	for i, jf := range config.JobFamilies {
		rep.Jobs[i] = JobReport{Job: jf.Job, Family: jf.Family}
		if !cfg.Enabled(jf.Job) {
			rep.Jobs[i].Skipped = true
			continue
		}
		g.Go(func() error {
			jr := &rep.Jobs[i]
			start := time.Now()
			n, err := e.runJob(ctx, jf.Job, facts, cfg.Jobs[jf.Job], now)
			jr.Duration = time.Since(start)
			metrics.AggregateDuration.WithLabelValues(jf.Job).Observe(jr.Duration.Seconds())
			if err != nil {
				jr.Err = err.Error()
				e.logger.Error("aggregation job failed", zap.String("job", jf.Job), zap.Error(err))
				return nil
			}
			jr.Rows = n
			metrics.AggregateRows.WithLabelValues(jf.Job).Set(float64(n))
			e.logger.Info("aggregation job finished",
				zap.String("job", jf.Job), zap.Int("rows", n), zap.Duration("took", jr.Duration))
			return nil
		})
	}
	_ = g.Wait()

	for _, jr := range rep.Jobs {
		if jr.Err != "" {
			rep.Failed++
		}
	}
	return rep, nil
}

func (e *Engine) runJob(ctx context.Context, job string, facts []models.RunnerFact, jc config.Job, now time.Time) (int, error) {
	switch job {
	case config.JobJockeyTrainer:
		rows := Partnerships(facts, jc.MinRuns, now)
		return len(rows), e.store.ReplaceJockeyTrainer(ctx, rows)
	case config.JobDistance:
		rows := Distance(facts, jc.MinRuns, now)
		return len(rows), e.store.ReplaceDistance(ctx, rows)
	case config.JobVenue:
		rows := Venue(facts, jc.MinRuns, now)
		return len(rows), e.store.ReplaceVenue(ctx, rows)
	case config.JobSire, config.JobDam, config.JobDamsire:
		rows := Pedigree(facts, job, jc, now)
		return len(rows), e.store.ReplacePedigree(ctx, job, rows)
	}
	return 0, fmt.Errorf("unknown job %q", job)
}
