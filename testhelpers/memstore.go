// Package testhelpers holds in-memory doubles shared by package tests.
package testhelpers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/padraicbc/mikerp/db"
	"github.com/padraicbc/mikerp/identity"
	"github.com/padraicbc/mikerp/merge"
	"github.com/padraicbc/mikerp/models"
)

// Op is one recorded write, in the order the store accepted it.
type Op struct {
	Table string
	ID    string
}

func (o Op) String() string { return o.Table + ":" + o.ID }

// MemStore is an in-memory store that enforces the same foreign keys and
// merge rules as the database, and records every accepted write.
type MemStore struct {
	mu sync.Mutex

	Courses   map[string]models.Course
	Jockeys   map[string]models.Jockey
	Trainers  map[string]models.Trainer
	Owners    map[string]models.Owner
	Sires     map[string]models.Sire
	Dams      map[string]models.Dam
	Damsires  map[string]models.Damsire
	Horses    map[string]models.Horse
	Pedigrees map[string]models.Pedigree
	Races     map[string]models.Race
	Runners   map[[2]string]models.Runner

	JockeyTrainer []models.JockeyTrainerStats
	Distance      []models.DistanceStats
	Venue         []models.VenueStats
	Pedigree      map[string][]models.PedigreeStats
	Runs          []models.PipelineRun

	Ops []Op
	// ExistsCalls counts ExistingKeys round trips per kind.
	ExistsCalls map[identity.Kind]int
	// FailRace makes WriteRace fail for the given race ids.
	FailRace map[string]error
	// FailReplace makes the named Replace* call fail.
	FailReplace map[string]error
}

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		Courses:     map[string]models.Course{},
		Jockeys:     map[string]models.Jockey{},
		Trainers:    map[string]models.Trainer{},
		Owners:      map[string]models.Owner{},
		Sires:       map[string]models.Sire{},
		Dams:        map[string]models.Dam{},
		Damsires:    map[string]models.Damsire{},
		Horses:      map[string]models.Horse{},
		Pedigrees:   map[string]models.Pedigree{},
		Races:       map[string]models.Race{},
		Runners:     map[[2]string]models.Runner{},
		Pedigree:    map[string][]models.PedigreeStats{},
		ExistsCalls: map[identity.Kind]int{},
		FailRace:    map[string]error{},
		FailReplace: map[string]error{},
	}
}

// Index returns the position of table:id in Ops, or -1.
func (m *MemStore) Index(table, id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, op := range m.Ops {
		if op.Table == table && op.ID == id {
			return i
		}
	}
	return -1
}

func (m *MemStore) has(kind identity.Kind, id string) bool {
	var ok bool
	switch kind {
	case identity.KindCourse:
		_, ok = m.Courses[id]
	case identity.KindJockey:
		_, ok = m.Jockeys[id]
	case identity.KindTrainer:
		_, ok = m.Trainers[id]
	case identity.KindOwner:
		_, ok = m.Owners[id]
	case identity.KindSire:
		_, ok = m.Sires[id]
	case identity.KindDam:
		_, ok = m.Dams[id]
	case identity.KindDamsire:
		_, ok = m.Damsires[id]
	case identity.KindHorse:
		_, ok = m.Horses[id]
	}
	return ok
}

// ExistingKeys implements extract.Store.
func (m *MemStore) ExistingKeys(_ context.Context, kind identity.Kind, ids []string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExistsCalls[kind]++
	out := map[string]bool{}
	for _, id := range ids {
		if m.has(kind, id) {
			out[id] = true
		}
	}
	return out, nil
}

func (m *MemStore) missing(kind identity.Kind, id *string) error {
	if id == nil || m.has(kind, *id) {
		return nil
	}
	return fmt.Errorf("%w: %s %s does not exist", db.ErrIntegrity, kind, *id)
}

func nonBlank(old, new string) string {
	if strings.TrimSpace(new) == "" {
		return old
	}
	return new
}

// UpsertEntities implements writer.Store. The batch is all or nothing.
func (m *MemStore) UpsertEntities(_ context.Context, b *models.EntityBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, h := range b.Horses {
		for _, ref := range []struct {
			kind identity.Kind
			id   *string
		}{{identity.KindSire, h.SireID}, {identity.KindDam, h.DamID}, {identity.KindDamsire, h.DamsireID}} {
			if m.has(ref.kind, deref(ref.id)) || inBatch(b, ref.kind, ref.id) {
				continue
			}
			if err := m.missing(ref.kind, ref.id); err != nil {
				return err
			}
		}
	}

	for _, r := range b.Courses {
		if cur, ok := m.Courses[r.CourseID]; ok {
			r.Course = nonBlank(cur.Course, r.Course)
			r.Region = merge.Value(merge.Overwrite, cur.Region, r.Region)
		}
		m.Courses[r.CourseID] = r
		m.Ops = append(m.Ops, Op{"courses", r.CourseID})
	}
	for _, r := range b.Jockeys {
		if cur, ok := m.Jockeys[r.JockeyID]; ok {
			r.Jockey = nonBlank(cur.Jockey, r.Jockey)
		}
		m.Jockeys[r.JockeyID] = r
		m.Ops = append(m.Ops, Op{"jockeys", r.JockeyID})
	}
	for _, r := range b.Trainers {
		if cur, ok := m.Trainers[r.TrainerID]; ok {
			r.Trainer = nonBlank(cur.Trainer, r.Trainer)
			r.Info = merge.Value(merge.Overwrite, cur.Info, r.Info)
		}
		m.Trainers[r.TrainerID] = r
		m.Ops = append(m.Ops, Op{"trainers", r.TrainerID})
	}
	for _, r := range b.Owners {
		if cur, ok := m.Owners[r.OwnerID]; ok {
			r.Owner = nonBlank(cur.Owner, r.Owner)
		}
		m.Owners[r.OwnerID] = r
		m.Ops = append(m.Ops, Op{"owners", r.OwnerID})
	}
	for _, r := range b.Sires {
		if cur, ok := m.Sires[r.SireID]; ok {
			r.Sire = nonBlank(cur.Sire, r.Sire)
			r.Region = merge.Value(merge.FillOnly, cur.Region, r.Region)
		}
		m.Sires[r.SireID] = r
		m.Ops = append(m.Ops, Op{"sires", r.SireID})
	}
	for _, r := range b.Dams {
		if cur, ok := m.Dams[r.DamID]; ok {
			r.Dam = nonBlank(cur.Dam, r.Dam)
			r.Region = merge.Value(merge.FillOnly, cur.Region, r.Region)
		}
		m.Dams[r.DamID] = r
		m.Ops = append(m.Ops, Op{"dams", r.DamID})
	}
	for _, r := range b.Damsires {
		if cur, ok := m.Damsires[r.DamsireID]; ok {
			r.Damsire = nonBlank(cur.Damsire, r.Damsire)
			r.Region = merge.Value(merge.FillOnly, cur.Region, r.Region)
		}
		m.Damsires[r.DamsireID] = r
		m.Ops = append(m.Ops, Op{"damsires", r.DamsireID})
	}
	for _, r := range b.Horses {
		if cur, ok := m.Horses[r.HorseID]; ok {
			r.Horse = nonBlank(cur.Horse, r.Horse)
			r.DOB = merge.Value(merge.Overwrite, cur.DOB, r.DOB)
			r.SexCode = merge.Value(merge.Overwrite, cur.SexCode, r.SexCode)
			r.Colour = merge.Value(merge.Overwrite, cur.Colour, r.Colour)
			r.Breeder = merge.Value(merge.Overwrite, cur.Breeder, r.Breeder)
			r.Region = merge.Value(merge.FillOnly, cur.Region, r.Region)
			r.SireID = merge.Value(merge.Overwrite, cur.SireID, r.SireID)
			r.DamID = merge.Value(merge.Overwrite, cur.DamID, r.DamID)
			r.DamsireID = merge.Value(merge.Overwrite, cur.DamsireID, r.DamsireID)
			r.EnrichedAt = merge.Value(merge.Overwrite, cur.EnrichedAt, r.EnrichedAt)
			if r.EnrichedAt != nil {
				r.EnrichFailed = false
			} else {
				r.EnrichFailed = cur.EnrichFailed || r.EnrichFailed
			}
		}
		m.Horses[r.HorseID] = r
		m.Ops = append(m.Ops, Op{"horses", r.HorseID})
	}
	for _, r := range b.Pedigrees {
		if !m.has(identity.KindHorse, r.HorseID) {
			return fmt.Errorf("%w: pedigree for missing horse %s", db.ErrIntegrity, r.HorseID)
		}
		if cur, ok := m.Pedigrees[r.HorseID]; ok {
			r.SireID = merge.Value(merge.Overwrite, cur.SireID, r.SireID)
			r.DamID = merge.Value(merge.Overwrite, cur.DamID, r.DamID)
			r.DamsireID = merge.Value(merge.Overwrite, cur.DamsireID, r.DamsireID)
			r.Region = merge.Value(merge.FillOnly, cur.Region, r.Region)
		}
		m.Pedigrees[r.HorseID] = r
		m.Ops = append(m.Ops, Op{"pedigrees", r.HorseID})
	}
	return nil
}

func inBatch(b *models.EntityBatch, kind identity.Kind, id *string) bool {
	if id == nil {
		return true
	}
	switch kind {
	case identity.KindSire:
		for _, s := range b.Sires {
			if s.SireID == *id {
				return true
			}
		}
	case identity.KindDam:
		for _, d := range b.Dams {
			if d.DamID == *id {
				return true
			}
		}
	case identity.KindDamsire:
		for _, d := range b.Damsires {
			if d.DamsireID == *id {
				return true
			}
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// WriteRace implements writer.Store. Nothing is kept when any reference is
// missing.
func (m *MemStore) WriteRace(_ context.Context, race *models.Race, runners []models.Runner) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.FailRace[race.RaceID]; ok {
		return err
	}
	if err := m.missing(identity.KindCourse, &race.CourseID); err != nil {
		return err
	}
	for _, r := range runners {
		horse := r.HorseID
		for _, err := range []error{
			m.missing(identity.KindHorse, &horse),
			m.missing(identity.KindJockey, r.JockeyID),
			m.missing(identity.KindTrainer, r.TrainerID),
			m.missing(identity.KindOwner, r.OwnerID),
		} {
			if err != nil {
				return fmt.Errorf("runner %s of race %s: %w", r.HorseID, race.RaceID, err)
			}
		}
	}

	row := *race
	if cur, ok := m.Races[race.RaceID]; ok {
		row.OffTime = nonBlank(cur.OffTime, row.OffTime)
		row.RaceName = nonBlank(cur.RaceName, row.RaceName)
		row.Class = merge.Value(merge.Overwrite, cur.Class, row.Class)
		row.Going = merge.Value(merge.Overwrite, cur.Going, row.Going)
		row.RaceType = merge.Value(merge.Overwrite, cur.RaceType, row.RaceType)
		if row.DistanceF <= 0 {
			row.DistanceF = cur.DistanceF
		}
		row.Completed = row.Completed || cur.Completed
	}
	m.Races[race.RaceID] = row
	m.Ops = append(m.Ops, Op{"races", race.RaceID})

	for _, r := range runners {
		key := [2]string{r.RaceID, r.HorseID}
		if cur, ok := m.Runners[key]; ok {
			r.JockeyID = merge.Value(merge.Overwrite, cur.JockeyID, r.JockeyID)
			r.TrainerID = merge.Value(merge.Overwrite, cur.TrainerID, r.TrainerID)
			r.OwnerID = merge.Value(merge.Overwrite, cur.OwnerID, r.OwnerID)
			r.Number = merge.Value(merge.Overwrite, cur.Number, r.Number)
			r.Draw = merge.Value(merge.Overwrite, cur.Draw, r.Draw)
			r.WeightLbs = merge.Value(merge.Overwrite, cur.WeightLbs, r.WeightLbs)
			r.Odds = merge.Value(merge.Overwrite, cur.Odds, r.Odds)
			r.Headgear = merge.Value(merge.Overwrite, cur.Headgear, r.Headgear)
			r.OfficialRating = merge.Value(merge.Overwrite, cur.OfficialRating, r.OfficialRating)
			r.Position = merge.Value(merge.Overwrite, cur.Position, r.Position)
			r.Margin = merge.Value(merge.Overwrite, cur.Margin, r.Margin)
			r.Prize = merge.Value(merge.Overwrite, cur.Prize, r.Prize)
			r.TimeSecs = merge.Value(merge.Overwrite, cur.TimeSecs, r.TimeSecs)
		}
		m.Runners[key] = r
		m.Ops = append(m.Ops, Op{"runners", r.RaceID + "/" + r.HorseID})
	}
	return nil
}

// PendingEnrichment implements the retry listing.
func (m *MemStore) PendingEnrichment(_ context.Context, limit int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, h := range m.Horses {
		if h.EnrichFailed {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// CompletedFacts joins finished runners with their race and pedigree the
// way the database query does.
func (m *MemStore) CompletedFacts(_ context.Context) ([]models.RunnerFact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var facts []models.RunnerFact
	for _, r := range m.Runners {
		race, ok := m.Races[r.RaceID]
		if !ok || !race.Completed || r.Position == nil || *r.Position == "" {
			continue
		}
		h := m.Horses[r.HorseID]
		f := models.RunnerFact{
			RaceID:    r.RaceID,
			Date:      race.Date,
			CourseID:  race.CourseID,
			DistanceF: race.DistanceF,
			Class:     race.Class,
			HorseID:   r.HorseID,
			JockeyID:  r.JockeyID,
			TrainerID: r.TrainerID,
			SireID:    h.SireID,
			DamID:     h.DamID,
			DamsireID: h.DamsireID,
			Position:  *r.Position,
			TimeSecs:  r.TimeSecs,
		}
		if p, ok := m.Pedigrees[r.HorseID]; ok {
			f.SireID = merge.Value(merge.Overwrite, f.SireID, p.SireID)
			f.DamID = merge.Value(merge.Overwrite, f.DamID, p.DamID)
			f.DamsireID = merge.Value(merge.Overwrite, f.DamsireID, p.DamsireID)
		}
		facts = append(facts, f)
	}
	sort.Slice(facts, func(i, j int) bool {
		a, b := facts[i], facts[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		ra, rb := m.Races[a.RaceID], m.Races[b.RaceID]
		if ra.OffTime != rb.OffTime {
			return ra.OffTime < rb.OffTime
		}
		if a.RaceID != b.RaceID {
			return a.RaceID < b.RaceID
		}
		return a.HorseID < b.HorseID
	})
	return facts, nil
}

func (m *MemStore) replaceErr(name string) error {
	if err, ok := m.FailReplace[name]; ok {
		return err
	}
	m.Ops = append(m.Ops, Op{"replace", name})
	return nil
}

// ReplaceJockeyTrainer implements aggregate.Store.
func (m *MemStore) ReplaceJockeyTrainer(_ context.Context, rows []models.JockeyTrainerStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.replaceErr("jockey_trainer"); err != nil {
		return err
	}
	m.JockeyTrainer = append([]models.JockeyTrainerStats(nil), rows...)
	return nil
}

// ReplaceDistance implements aggregate.Store.
func (m *MemStore) ReplaceDistance(_ context.Context, rows []models.DistanceStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.replaceErr("distance"); err != nil {
		return err
	}
	m.Distance = append([]models.DistanceStats(nil), rows...)
	return nil
}

// ReplaceVenue implements aggregate.Store.
func (m *MemStore) ReplaceVenue(_ context.Context, rows []models.VenueStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.replaceErr("venue"); err != nil {
		return err
	}
	m.Venue = append([]models.VenueStats(nil), rows...)
	return nil
}

// ReplacePedigree implements aggregate.Store.
func (m *MemStore) ReplacePedigree(_ context.Context, role string, rows []models.PedigreeStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.replaceErr(role); err != nil {
		return err
	}
	m.Pedigree[role] = append([]models.PedigreeStats(nil), rows...)
	return nil
}

// SaveRun implements run persistence.
func (m *MemStore) SaveRun(_ context.Context, run *models.PipelineRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Runs = append(m.Runs, *run)
	return nil
}

// ListRuns returns saved runs newest first.
func (m *MemStore) ListRuns(_ context.Context, kind string, limit int) ([]models.PipelineRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PipelineRun
	for i := len(m.Runs) - 1; i >= 0; i-- {
		if kind == "" || m.Runs[i].Kind == kind {
			out = append(out, m.Runs[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
