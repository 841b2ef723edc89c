// Package enrich performs the one-time detail lookups for newly discovered
// entities and folds the richer records into an extraction result.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/padraicbc/mikerp/extract"
	"github.com/padraicbc/mikerp/identity"
	"github.com/padraicbc/mikerp/merge"
	"github.com/padraicbc/mikerp/metrics"
)

// errThrottled marks a lookup that never ran because the throttle refused
// to wait; the remaining lookups of the run are not attempted.
var errThrottled = errors.New("throttle wait")

// Detail is what a lookup learns about one entity. Pedigree and Related are
// only filled for kinds that carry a pedigree.
type Detail struct {
	Entity   identity.Entity
	Pedigree *identity.Pedigree
	Related  []identity.Entity
}

// Lookup fetches the detail record for one id.
type Lookup interface {
	Detail(ctx context.Context, id string) (Detail, error)
}

// Failure is one lookup that did not succeed.
type Failure struct {
	Kind identity.Kind `json:"kind"`
	ID   string        `json:"id"`
	Err  string        `json:"error"`
}

// Report counts the lookups made for one batch.
type Report struct {
	Attempted int       `json:"attempted"`
	Enriched  int       `json:"enriched"`
	Failed    int       `json:"failed"`
	Failures  []Failure `json:"failures,omitempty"`
}

// Gate issues throttled lookups for the kinds it has a Lookup for.
type Gate struct {
	lookups  map[identity.Kind]Lookup
	throttle Throttle
	logger   *zap.Logger
}

// NewGate returns a Gate with no registered kinds.
func NewGate(throttle Throttle, logger *zap.Logger) *Gate {
	return &Gate{
		lookups:  map[identity.Kind]Lookup{},
		throttle: throttle,
		logger:   logger.With(zap.String("component", "enrich")),
	}
}

// Register enables enrichment for kind.
func (g *Gate) Register(kind identity.Kind, l Lookup) *Gate {
	g.lookups[kind] = l
	return g
}

// Kinds returns the registered kinds in write order.
func (g *Gate) Kinds() []identity.Kind {
	var out []identity.Kind
	for _, k := range identity.WriteOrder {
		if _, ok := g.lookups[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// Enrich looks up every new entity of a registered kind in res. Known
// entities are never looked up. A failed lookup marks the entity
// EnrichFailed and the batch carries on. Once the throttle refuses, every
// entity not yet looked up is marked EnrichFailed too so a retry finds it.
func (g *Gate) Enrich(ctx context.Context, res *extract.Result) Report {
	var rep Report
	var stopped error
	for _, kind := range g.Kinds() {
		ids := append([]string(nil), res.New[kind]...)
		for _, id := range ids {
			if stopped != nil {
				g.skip(kind, id, stopped, &rep)
				res.State[identity.Key{Kind: kind, ID: id}] = extract.EnrichFailed
				continue
			}
			if err := g.enrichOne(ctx, res, kind, id, &rep); errors.Is(err, errThrottled) {
				stopped = err
			}
		}
	}
	if rep.Attempted > 0 {
		g.logger.Info("enrichment finished",
			zap.Int("attempted", rep.Attempted),
			zap.Int("enriched", rep.Enriched),
			zap.Int("failed", rep.Failed))
	}
	return rep
}

// Reenrich looks up ids of kind regardless of whether they are known and
// returns a result holding only what the lookups returned. Failed ids are
// left out of the result so the stored row is untouched.
func (g *Gate) Reenrich(ctx context.Context, kind identity.Kind, ids []string) (*extract.Result, Report) {
	res := &extract.Result{
		Entities:  map[identity.Key]*identity.Entity{},
		New:       map[identity.Kind][]string{},
		Known:     map[identity.Kind][]string{},
		Pedigrees: map[string]identity.Pedigree{},
		State:     map[identity.Key]extract.EnrichState{},
	}
	var rep Report
	if _, ok := g.lookups[kind]; !ok {
		return res, rep
	}

	ids = append([]string(nil), ids...)
	sort.Strings(ids)
	var stopped error
	for _, id := range ids {
		if stopped != nil {
			g.skip(kind, id, stopped, &rep)
			continue
		}
		key := identity.Key{Kind: kind, ID: id}
		res.Entities[key] = &identity.Entity{Kind: kind, ID: id}
		res.Known[kind] = append(res.Known[kind], id)
		err := g.enrichOne(ctx, res, kind, id, &rep)
		if err != nil {
			delete(res.Entities, key)
			delete(res.State, key)
			res.Known[kind] = res.Known[kind][:len(res.Known[kind])-1]
			if errors.Is(err, errThrottled) {
				stopped = err
			}
		}
	}
	return res, rep
}

// skip records a lookup that was never made.
func (g *Gate) skip(kind identity.Kind, id string, cause error, rep *Report) {
	rep.Failed++
	rep.Failures = append(rep.Failures, Failure{Kind: kind, ID: id, Err: "not attempted: " + cause.Error()})
	metrics.EnrichLookups.WithLabelValues(string(kind), "skipped").Inc()
	g.logger.Debug("enrichment not attempted", zap.String("kind", string(kind)), zap.String("id", id))
}

func (g *Gate) enrichOne(ctx context.Context, res *extract.Result, kind identity.Kind, id string, rep *Report) error {
	key := identity.Key{Kind: kind, ID: id}
	rep.Attempted++

	fail := func(err error) error {
		rep.Failed++
		rep.Failures = append(rep.Failures, Failure{Kind: kind, ID: id, Err: err.Error()})
		res.State[key] = extract.EnrichFailed
		metrics.EnrichLookups.WithLabelValues(string(kind), "failed").Inc()
		g.logger.Warn("enrichment failed", zap.String("kind", string(kind)), zap.String("id", id), zap.Error(err))
		return err
	}

	if err := g.throttle.Wait(ctx); err != nil {
		return fail(fmt.Errorf("%w: %w", errThrottled, err))
	}
	d, err := g.lookups[kind].Detail(ctx, id)
	if err != nil {
		return fail(err)
	}

	cur, ok := res.Entities[key]
	if !ok {
		cur = &identity.Entity{Kind: kind, ID: id}
		res.Entities[key] = cur
	}
	d.Entity.Kind, d.Entity.ID = kind, id
	merge.Entity(cur, d.Entity, merge.FillOnly)
	res.State[key] = extract.Enriched
	rep.Enriched++
	metrics.EnrichLookups.WithLabelValues(string(kind), "enriched").Inc()

	if d.Pedigree != nil {
		p := *d.Pedigree
		p.HorseID = id
		res.Pedigrees[id] = p
	}
	for _, rel := range d.Related {
		res.Add(rel)
	}
	return nil
}
