// Package writer persists an extracted (and enriched) batch: entities
// first, then each race together with its runners.
package writer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/padraicbc/mikerp/extract"
	"github.com/padraicbc/mikerp/identity"
	"github.com/padraicbc/mikerp/metrics"
	"github.com/padraicbc/mikerp/models"
	"github.com/padraicbc/mikerp/provider"
)

// Store is the persistence the writer needs. UpsertEntities writes the
// whole batch in one transaction; WriteRace writes a race and its runners
// atomically.
type Store interface {
	UpsertEntities(ctx context.Context, batch *models.EntityBatch) error
	WriteRace(ctx context.Context, race *models.Race, runners []models.Runner) error
}

// Rejected is a race whose write was rolled back.
type Rejected struct {
	RaceID string `json:"raceID"`
	Err    string `json:"error"`
}

// Report counts what one Write persisted.
type Report struct {
	Entities       int        `json:"entities"`
	RacesWritten   int        `json:"racesWritten"`
	RunnersWritten int        `json:"runnersWritten"`
	RacesRejected  int        `json:"racesRejected"`
	Rejections     []Rejected `json:"rejections,omitempty"`
}

// Writer applies the entity-before-race ordering.
type Writer struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// New creates a Writer.
func New(store Store, logger *zap.Logger) *Writer {
	return &Writer{store: store, logger: logger.With(zap.String("component", "writer")), now: time.Now}
}

// Write persists res. An entity failure aborts the batch since no race
// could be written without them; a race failure only drops that race.
func (w *Writer) Write(ctx context.Context, res *extract.Result) (Report, error) {
	var rep Report

	batch := BuildEntities(res, w.now().UTC())
	if n := batch.Len(); n > 0 {
		if err := w.store.UpsertEntities(ctx, &batch); err != nil {
			return rep, fmt.Errorf("upsert entities: %w", err)
		}
		rep.Entities = n
		metrics.EntitiesUpserted.Add(float64(n))
	}

	for _, race := range res.Races {
		row, runners := BuildRace(race)
		if err := w.store.WriteRace(ctx, &row, runners); err != nil {
			rep.RacesRejected++
			metrics.RacesWritten.WithLabelValues("rejected").Inc()
			rep.Rejections = append(rep.Rejections, Rejected{RaceID: race.RaceID, Err: err.Error()})
			w.logger.Warn("race rejected", zap.String("race_id", race.RaceID), zap.Error(err))
			continue
		}
		rep.RacesWritten++
		metrics.RacesWritten.WithLabelValues("written").Inc()
		rep.RunnersWritten += len(runners)
	}
	return rep, nil
}

// BuildEntities converts every entity in res into rows. Rows within a kind
// are sorted by id so repeated runs issue identical writes.
func BuildEntities(res *extract.Result, now time.Time) models.EntityBatch {
	byKind := map[identity.Kind][]*identity.Entity{}
	for _, e := range res.Entities {
		byKind[e.Kind] = append(byKind[e.Kind], e)
	}
	for _, es := range byKind {
		sort.Slice(es, func(i, j int) bool { return es[i].ID < es[j].ID })
	}

	var b models.EntityBatch
	for _, e := range byKind[identity.KindCourse] {
		b.Courses = append(b.Courses, models.Course{CourseID: e.ID, Course: e.Name, Region: e.VenueRegion})
	}
	for _, e := range byKind[identity.KindJockey] {
		b.Jockeys = append(b.Jockeys, models.Jockey{JockeyID: e.ID, Jockey: e.Name})
	}
	for _, e := range byKind[identity.KindTrainer] {
		b.Trainers = append(b.Trainers, models.Trainer{TrainerID: e.ID, Trainer: e.Name})
	}
	for _, e := range byKind[identity.KindOwner] {
		b.Owners = append(b.Owners, models.Owner{OwnerID: e.ID, Owner: e.Name})
	}
	for _, e := range byKind[identity.KindSire] {
		b.Sires = append(b.Sires, models.Sire{SireID: e.ID, Sire: e.Name, Region: e.Region})
	}
	for _, e := range byKind[identity.KindDam] {
		b.Dams = append(b.Dams, models.Dam{DamID: e.ID, Dam: e.Name, Region: e.Region})
	}
	for _, e := range byKind[identity.KindDamsire] {
		b.Damsires = append(b.Damsires, models.Damsire{DamsireID: e.ID, Damsire: e.Name, Region: e.Region})
	}
	for _, e := range byKind[identity.KindHorse] {
		h := models.Horse{
			HorseID:   e.ID,
			Horse:     e.Name,
			DOB:       e.DOB,
			SexCode:   e.SexCode,
			Colour:    e.Colour,
			Breeder:   e.Breeder,
			Region:    e.Region,
			SireID:    knownRef(res, identity.KindSire, e.SireID),
			DamID:     knownRef(res, identity.KindDam, e.DamID),
			DamsireID: knownRef(res, identity.KindDamsire, e.DamsireID),
		}
		switch res.State[e.Key()] {
		case extract.Enriched:
			t := now
			h.EnrichedAt = &t
		case extract.EnrichFailed:
			h.EnrichFailed = true
		}
		b.Horses = append(b.Horses, h)
	}

	ids := make([]string, 0, len(res.Pedigrees))
	for id := range res.Pedigrees {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		p := res.Pedigrees[id]
		b.Pedigrees = append(b.Pedigrees, models.Pedigree{
			HorseID:   id,
			SireID:    knownRef(res, identity.KindSire, p.SireID),
			DamID:     knownRef(res, identity.KindDam, p.DamID),
			DamsireID: knownRef(res, identity.KindDamsire, p.DamsireID),
			Region:    p.Region,
			UpdatedAt: now,
		})
	}
	return b
}

// knownRef keeps an ancestor reference only when the ancestor is part of the
// batch, so a horse row never points at a sire that was never written.
func knownRef(res *extract.Result, kind identity.Kind, id *string) *string {
	if id == nil {
		return nil
	}
	if _, ok := res.Entities[identity.Key{Kind: kind, ID: *id}]; !ok {
		return nil
	}
	return id
}

// BuildRace converts a provider race into its row and runner rows. Person
// references resolve exactly as identity.Resolve does.
func BuildRace(race provider.Race) (models.Race, []models.Runner) {
	row := models.Race{
		RaceID:    race.RaceID,
		CourseID:  strings.TrimSpace(race.CourseID),
		Date:      race.Date,
		OffTime:   race.OffTime,
		RaceName:  race.RaceName,
		Class:     provider.Str(race.Class),
		DistanceF: provider.ParseFurlongs(race.DistF),
		Going:     provider.Str(race.Going),
		RaceType:  provider.Str(race.Type),
	}

	runners := make([]models.Runner, 0, len(race.Runners))
	for _, rec := range race.Runners {
		r := models.Runner{
			RaceID:         race.RaceID,
			HorseID:        strings.TrimSpace(rec.HorseID),
			JockeyID:       personRef(identity.KindJockey, rec.JockeyID, rec.Jockey),
			TrainerID:      personRef(identity.KindTrainer, rec.TrainerID, rec.Trainer),
			OwnerID:        personRef(identity.KindOwner, rec.OwnerID, rec.Owner),
			Number:         provider.ParseInt(rec.Number),
			Draw:           provider.ParseInt(rec.Draw),
			WeightLbs:      provider.ParseInt(rec.Lbs),
			Odds:           provider.Str(rec.SP),
			Headgear:       provider.Str(rec.Headgear),
			OfficialRating: provider.ParseInt(rec.OR),
			Position:       provider.Str(rec.Position),
			Margin:         provider.Str(rec.Btn),
			Prize:          provider.ParsePrize(rec.Prize),
			TimeSecs:       provider.ParseTime(rec.Time),
		}
		if r.Position != nil {
			row.Completed = true
		}
		runners = append(runners, r)
	}
	return row, runners
}

func personRef(kind identity.Kind, id, name string) *string {
	key := identity.PersonID(kind, id, name)
	if key == "" {
		return nil
	}
	return &key
}
