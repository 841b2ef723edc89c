// Package extract turns a batch of provider races into deduplicated entity
// sets, split into entities the store already holds and ones it doesn't.
package extract

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/padraicbc/mikerp/identity"
	"github.com/padraicbc/mikerp/merge"
	"github.com/padraicbc/mikerp/metrics"
	"github.com/padraicbc/mikerp/provider"
)

// Store is the existence check the extractor needs. ExistingKeys must answer
// for all ids in a single round trip.
type Store interface {
	ExistingKeys(ctx context.Context, kind identity.Kind, ids []string) (map[string]bool, error)
}

// EnrichState tracks what happened to an entity's detail lookup in this batch.
type EnrichState int

const (
	NotAttempted EnrichState = iota
	Enriched
	EnrichFailed
)

// Result is the outcome of one extraction. Enrichment later adds to
// Entities, Pedigrees and State; nothing here has been written yet.
type Result struct {
	Races     []provider.Race
	Entities  map[identity.Key]*identity.Entity
	New       map[identity.Kind][]string
	Known     map[identity.Kind][]string
	Pedigrees map[string]identity.Pedigree
	State     map[identity.Key]EnrichState

	// Skipped counts runners dropped for a missing horse id; SkippedRaces
	// counts races dropped for a missing race or course id.
	Skipped      int
	SkippedRaces int

	// Added holds keys from Add not yet sorted into New or Known.
	Added []identity.Key
}

// IsNew reports whether key was absent from the store at extraction time.
func (r *Result) IsNew(key identity.Key) bool {
	for _, id := range r.New[key.Kind] {
		if id == key.ID {
			return true
		}
	}
	return false
}

// Add records an entity discovered after extraction (e.g. a sire named only
// by a detail lookup). It stays in Added until Classify checks it against
// the store. A region already held is kept.
func (r *Result) Add(e identity.Entity) {
	key := e.Key()
	if cur, ok := r.Entities[key]; ok {
		merge.Entity(cur, e, merge.FillOnly)
		return
	}
	cp := e
	r.Entities[key] = &cp
	r.Added = append(r.Added, key)
}

// Extractor resolves and partitions batches.
type Extractor struct {
	store  Store
	logger *zap.Logger
}

// New creates an Extractor.
func New(store Store, logger *zap.Logger) *Extractor {
	return &Extractor{store: store, logger: logger.With(zap.String("component", "extract"))}
}

// Extract resolves every runner in races, deduplicates entities by
// (kind, id) and partitions each kind's keys with one bulk lookup.
func (x *Extractor) Extract(ctx context.Context, races []provider.Race) (*Result, error) {
	res := &Result{
		Entities:  map[identity.Key]*identity.Entity{},
		New:       map[identity.Kind][]string{},
		Known:     map[identity.Kind][]string{},
		Pedigrees: map[string]identity.Pedigree{},
		State:     map[identity.Key]EnrichState{},
	}

	for _, race := range races {
		if strings.TrimSpace(race.RaceID) == "" || strings.TrimSpace(race.CourseID) == "" {
			res.SkippedRaces++
			metrics.RecordsSkipped.WithLabelValues("race").Inc()
			x.logger.Warn("skipping malformed race",
				zap.String("race_id", race.RaceID), zap.String("course_id", race.CourseID))
			continue
		}

		kept := race
		kept.Runners = make([]provider.Runner, 0, len(race.Runners))
		for _, rec := range race.Runners {
			if strings.TrimSpace(rec.HorseID) == "" {
				res.Skipped++
				metrics.RecordsSkipped.WithLabelValues("runner").Inc()
				x.logger.Debug("skipping runner without horse id",
					zap.String("race_id", race.RaceID), zap.String("horse", rec.Horse))
				continue
			}
			kept.Runners = append(kept.Runners, rec)
			for _, e := range identity.Resolve(race, rec) {
				key := e.Key()
				if cur, ok := res.Entities[key]; ok {
					merge.Entity(cur, e, merge.Overwrite)
					continue
				}
				cp := e
				res.Entities[key] = &cp
			}
		}
		res.Races = append(res.Races, kept)
	}

	byKind := map[identity.Kind][]string{}
	for key := range res.Entities {
		byKind[key.Kind] = append(byKind[key.Kind], key.ID)
	}

	for _, kind := range identity.WriteOrder {
		ids := byKind[kind]
		if len(ids) == 0 {
			continue
		}
		sort.Strings(ids)
		existing, err := x.store.ExistingKeys(ctx, kind, ids)
		if err != nil {
			return nil, fmt.Errorf("existence check for %s: %w", kind, err)
		}
		for _, id := range ids {
			if existing[id] {
				res.Known[kind] = append(res.Known[kind], id)
			} else {
				res.New[kind] = append(res.New[kind], id)
			}
		}
	}

	x.logger.Debug("batch extracted",
		zap.Int("races", len(res.Races)),
		zap.Int("entities", len(res.Entities)),
		zap.Int("skipped_runners", res.Skipped),
		zap.Int("skipped_races", res.SkippedRaces))

	return res, nil
}

func insertSorted(ids []string, id string) []string {
	i := sort.SearchStrings(ids, id)
	if i < len(ids) && ids[i] == id {
		return ids
	}
	ids = append(ids, "")
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	return ids
}

// Classify sorts the keys in res.Added into New or Known with one
// existence check per kind.
func (x *Extractor) Classify(ctx context.Context, res *Result) error {
	byKind := map[identity.Kind][]string{}
	for _, key := range res.Added {
		byKind[key.Kind] = append(byKind[key.Kind], key.ID)
	}
	for _, kind := range identity.WriteOrder {
		ids := byKind[kind]
		if len(ids) == 0 {
			continue
		}
		sort.Strings(ids)
		existing, err := x.store.ExistingKeys(ctx, kind, ids)
		if err != nil {
			return fmt.Errorf("existence check for %s: %w", kind, err)
		}
		for _, id := range ids {
			if existing[id] {
				res.Known[kind] = insertSorted(res.Known[kind], id)
			} else {
				res.New[kind] = insertSorted(res.New[kind], id)
			}
		}
	}
	res.Added = nil
	return nil
}
