// Package pipeline wires extraction, enrichment and writing into batch
// runs, and records a summary of every run.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/padraicbc/mikerp/aggregate"
	"github.com/padraicbc/mikerp/config"
	"github.com/padraicbc/mikerp/enrich"
	"github.com/padraicbc/mikerp/extract"
	"github.com/padraicbc/mikerp/identity"
	"github.com/padraicbc/mikerp/models"
	"github.com/padraicbc/mikerp/provider"
	"github.com/padraicbc/mikerp/writer"
)

// Run kinds recorded in pipeline_runs.
const (
	KindIngest    = "ingest"
	KindEnrich    = "enrich"
	KindAggregate = "aggregate"
)

// Store is everything a pipeline run reads or writes outside aggregation.
type Store interface {
	extract.Store
	writer.Store
	PendingEnrichment(ctx context.Context, limit int) ([]string, error)
	SaveRun(ctx context.Context, run *models.PipelineRun) error
}

// BatchSummary counts one extracted, enriched and written batch.
type BatchSummary struct {
	Races          int            `json:"races"`
	SkippedRunners int            `json:"skippedRunners"`
	SkippedRaces   int            `json:"skippedRaces"`
	New            map[string]int `json:"new"`
	Known          map[string]int `json:"known"`
	Enrichment     enrich.Report  `json:"enrichment"`
	Write          writer.Report  `json:"write"`
}

// IngestSummary is the outcome of one Ingest.
type IngestSummary struct {
	From    string         `json:"from"`
	To      string         `json:"to"`
	Batches []BatchSummary `json:"batches"`
	Err     string         `json:"error,omitempty"`
}

// Totals folds the batches into per-category counts.
func (s IngestSummary) Totals() BatchSummary {
	t := BatchSummary{New: map[string]int{}, Known: map[string]int{}}
	for _, b := range s.Batches {
		t.Races += b.Races
		t.SkippedRunners += b.SkippedRunners
		t.SkippedRaces += b.SkippedRaces
		for k, n := range b.New {
			t.New[k] += n
		}
		for k, n := range b.Known {
			t.Known[k] += n
		}
		t.Enrichment.Attempted += b.Enrichment.Attempted
		t.Enrichment.Enriched += b.Enrichment.Enriched
		t.Enrichment.Failed += b.Enrichment.Failed
		t.Enrichment.Failures = append(t.Enrichment.Failures, b.Enrichment.Failures...)
		t.Write.Entities += b.Write.Entities
		t.Write.RacesWritten += b.Write.RacesWritten
		t.Write.RunnersWritten += b.Write.RunnersWritten
		t.Write.RacesRejected += b.Write.RacesRejected
		t.Write.Rejections = append(t.Write.Rejections, b.Write.Rejections...)
	}
	return t
}

// EnrichSummary is the outcome of a manual or retry enrichment.
type EnrichSummary struct {
	Requested  int           `json:"requested"`
	Enrichment enrich.Report `json:"enrichment"`
	Write      writer.Report `json:"write"`
	Err        string        `json:"error,omitempty"`
}

// Pipeline runs batches against one store.
type Pipeline struct {
	store     Store
	gate      *enrich.Gate
	extractor *extract.Extractor
	writer    *writer.Writer
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a Pipeline. gate decides which kinds are enriched.
func New(store Store, gate *enrich.Gate, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		store:     store,
		gate:      gate,
		extractor: extract.New(store, logger),
		writer:    writer.New(store, logger),
		logger:    logger.With(zap.String("component", "pipeline")),
		now:       time.Now,
	}
}

// Ingest fetches src one day at a time and processes each day as a batch.
// Each batch is written before the next day is fetched.
func (p *Pipeline) Ingest(ctx context.Context, src provider.Source, from, to string) (IngestSummary, error) {
	started := p.now()
	sum := IngestSummary{From: from, To: to}

	err := func() error {
		days, err := provider.Days(from, to)
		if err != nil {
			return err
		}
		for _, day := range days {
			races, err := src.Results(ctx, day, day)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", day, err)
			}
			if len(races) == 0 {
				continue
			}
			b, err := p.RunBatch(ctx, races)
			sum.Batches = append(sum.Batches, b)
			if err != nil {
				return fmt.Errorf("batch %s: %w", day, err)
			}
		}
		return nil
	}()
	if err != nil {
		sum.Err = err.Error()
	}

	t := sum.Totals()
	p.logger.Info("ingest finished",
		zap.String("from", from), zap.String("to", to),
		zap.Int("batches", len(sum.Batches)),
		zap.Int("races_written", t.Write.RacesWritten),
		zap.Int("races_rejected", t.Write.RacesRejected),
		zap.Int("skipped_runners", t.SkippedRunners),
		zap.Int("skipped_races", t.SkippedRaces),
		zap.Int("enrich_failed", t.Enrichment.Failed),
		zap.Error(err))
	p.record(ctx, KindIngest, started, sum, err)
	return sum, err
}

// RunBatch extracts, enriches and writes races. Only an existence check
// or entity write failure is returned; everything else is counted.
func (p *Pipeline) RunBatch(ctx context.Context, races []provider.Race) (BatchSummary, error) {
	b := BatchSummary{New: map[string]int{}, Known: map[string]int{}}

	res, err := p.extractor.Extract(ctx, races)
	if err != nil {
		return b, err
	}
	b.Races = len(res.Races)
	b.SkippedRunners = res.Skipped
	b.SkippedRaces = res.SkippedRaces

	b.Enrichment = p.gate.Enrich(ctx, res)
	if err := p.extractor.Classify(ctx, res); err != nil {
		return b, err
	}

	for kind, ids := range res.New {
		b.New[string(kind)] = len(ids)
	}
	for kind, ids := range res.Known {
		b.Known[string(kind)] = len(ids)
	}

	b.Write, err = p.writer.Write(ctx, res)
	return b, err
}

// Enrich re-runs the horse detail lookup for ids. With no ids it retries
// every horse whose last lookup failed.
func (p *Pipeline) Enrich(ctx context.Context, ids []string) (EnrichSummary, error) {
	started := p.now()
	var sum EnrichSummary

	err := func() error {
		if len(ids) == 0 {
			pending, err := p.store.PendingEnrichment(ctx, 0)
			if err != nil {
				return fmt.Errorf("list pending: %w", err)
			}
			ids = pending
		}
		sum.Requested = len(ids)
		if len(ids) == 0 {
			return nil
		}
		res, rep := p.gate.Reenrich(ctx, identity.KindHorse, ids)
		sum.Enrichment = rep
		if err := p.extractor.Classify(ctx, res); err != nil {
			return err
		}
		w, err := p.writer.Write(ctx, res)
		sum.Write = w
		return err
	}()
	if err != nil {
		sum.Err = err.Error()
	}

	p.logger.Info("enrich finished",
		zap.Int("requested", sum.Requested),
		zap.Int("enriched", sum.Enrichment.Enriched),
		zap.Int("failed", sum.Enrichment.Failed),
		zap.Error(err))
	p.record(ctx, KindEnrich, started, sum, err)
	return sum, err
}

// Aggregate runs eng with cfg and records the report.
func (p *Pipeline) Aggregate(ctx context.Context, eng *aggregate.Engine, cfg config.Aggregation) (aggregate.Report, error) {
	started := p.now()
	rep, err := eng.Run(ctx, cfg)
	if err == nil && rep.Failed > 0 {
		err = fmt.Errorf("%d aggregation jobs failed", rep.Failed)
	}
	p.logger.Info("aggregate finished",
		zap.Int("facts", rep.Facts), zap.Int("failed_jobs", rep.Failed), zap.Error(err))
	p.record(ctx, KindAggregate, started, rep, err)
	return rep, err
}

// record persists a run summary. A failure to save is only logged.
func (p *Pipeline) record(ctx context.Context, kind string, started time.Time, summary interface{}, runErr error) {
	body, err := json.Marshal(summary)
	if err != nil {
		p.logger.Error("encode run summary", zap.String("kind", kind), zap.Error(err))
		return
	}
	run := &models.PipelineRun{
		ID:         uuid.New(),
		Kind:       kind,
		StartedAt:  started.UTC(),
		FinishedAt: p.now().UTC(),
		Summary:    body,
		Failed:     runErr != nil,
	}
	if err := p.store.SaveRun(context.WithoutCancel(ctx), run); err != nil {
		p.logger.Error("save run summary", zap.String("kind", kind), zap.Error(err))
	}
}
