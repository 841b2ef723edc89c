package aggregate

import (
	"sort"
	"time"

	"github.com/padraicbc/mikerp/config"
	"github.com/padraicbc/mikerp/models"
)

// Entity kinds carried by the distance and venue tables.
const (
	EntityHorse   = "horse"
	EntityJockey  = "jockey"
	EntityTrainer = "trainer"
)

// maxSubGroups is how many class and distance breakdowns a pedigree row
// holds.
const maxSubGroups = 3

type tally struct {
	runs, wins int
	best       *float64
	sum        float64
	timed      int
	last       *float64
}

func (t *tally) add(f models.RunnerFact, withTime bool) {
	t.runs++
	if f.Won() {
		t.wins++
	}
	if !withTime || f.TimeSecs == nil {
		return
	}
	v := *f.TimeSecs
	if t.best == nil || v < *t.best {
		t.best = &v
	}
	t.sum += v
	t.timed++
	// facts arrive oldest first
	t.last = &v
}

func (t *tally) avg() *float64 {
	if t.timed == 0 {
		return nil
	}
	v := t.sum / float64(t.timed)
	return &v
}

func (t *tally) summary(minRuns int, now time.Time) models.Summary {
	return models.Summary{
		Runs:       t.runs,
		Wins:       t.wins,
		WinRate:    float64(t.wins) / float64(t.runs),
		MinRuns:    minRuns,
		ComputedAt: now,
	}
}

// Partnerships groups facts by (jockey, trainer) and keeps pairs with at
// least minRuns runs.
func Partnerships(facts []models.RunnerFact, minRuns int, now time.Time) []models.JockeyTrainerStats {
	type pair struct{ jockey, trainer string }
	groups := map[pair]*tally{}
	for _, f := range facts {
		if f.JockeyID == nil || f.TrainerID == nil {
			continue
		}
		k := pair{*f.JockeyID, *f.TrainerID}
		if groups[k] == nil {
			groups[k] = &tally{}
		}
		groups[k].add(f, false)
	}

	var out []models.JockeyTrainerStats
	for k, t := range groups {
		if t.runs < minRuns {
			continue
		}
		out = append(out, models.JockeyTrainerStats{
			JockeyID:  k.jockey,
			TrainerID: k.trainer,
			Summary:   t.summary(minRuns, now),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].JockeyID != out[j].JockeyID {
			return out[i].JockeyID < out[j].JockeyID
		}
		return out[i].TrainerID < out[j].TrainerID
	})
	return out
}

type entityRef struct{ kind, id string }

// entities returns the horse, jockey and trainer a fact counts towards.
func entities(f models.RunnerFact) []entityRef {
	out := []entityRef{{EntityHorse, f.HorseID}}
	if f.JockeyID != nil {
		out = append(out, entityRef{EntityJockey, *f.JockeyID})
	}
	if f.TrainerID != nil {
		out = append(out, entityRef{EntityTrainer, *f.TrainerID})
	}
	return out
}

// Distance groups facts by (entity, distance band). Times are only kept
// for horses; a jockey's times span different horses and mean nothing.
func Distance(facts []models.RunnerFact, minRuns int, now time.Time) []models.DistanceStats {
	type key struct {
		entityRef
		band string
	}
	groups := map[key]*tally{}
	for _, f := range facts {
		band := Band(f.DistanceF)
		if band == "" {
			continue
		}
		for _, e := range entities(f) {
			k := key{e, band}
			if groups[k] == nil {
				groups[k] = &tally{}
			}
			groups[k].add(f, e.kind == EntityHorse)
		}
	}

	var out []models.DistanceStats
	for k, t := range groups {
		if t.runs < minRuns {
			continue
		}
		out = append(out, models.DistanceStats{
			EntityKind:   k.kind,
			EntityID:     k.id,
			DistanceBand: k.band,
			BestTime:     t.best,
			AvgTime:      t.avg(),
			LastTime:     t.last,
			Summary:      t.summary(minRuns, now),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.EntityKind != b.EntityKind {
			return a.EntityKind < b.EntityKind
		}
		if a.EntityID != b.EntityID {
			return a.EntityID < b.EntityID
		}
		return a.DistanceBand < b.DistanceBand
	})
	return out
}

// Venue groups facts by (entity, course).
func Venue(facts []models.RunnerFact, minRuns int, now time.Time) []models.VenueStats {
	type key struct {
		entityRef
		course string
	}
	groups := map[key]*tally{}
	for _, f := range facts {
		if f.CourseID == "" {
			continue
		}
		for _, e := range entities(f) {
			k := key{e, f.CourseID}
			if groups[k] == nil {
				groups[k] = &tally{}
			}
			groups[k].add(f, false)
		}
	}

	var out []models.VenueStats
	for k, t := range groups {
		if t.runs < minRuns {
			continue
		}
		out = append(out, models.VenueStats{
			EntityKind: k.kind,
			EntityID:   k.id,
			CourseID:   k.course,
			Summary:    t.summary(minRuns, now),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.EntityKind != b.EntityKind {
			return a.EntityKind < b.EntityKind
		}
		if a.EntityID != b.EntityID {
			return a.EntityID < b.EntityID
		}
		return a.CourseID < b.CourseID
	})
	return out
}

// ancestor returns the id a fact credits for role.
func ancestor(f models.RunnerFact, role string) *string {
	switch role {
	case config.JobSire:
		return f.SireID
	case config.JobDam:
		return f.DamID
	case config.JobDamsire:
		return f.DamsireID
	}
	return nil
}

type line struct {
	all     tally
	classes map[string]*tally
	bands   map[string]*tally
}

// Pedigree groups offspring results by the ancestor in role. A line needs
// jc.MinRuns runs for a row; each class and distance-band breakdown needs
// its own threshold and is left empty rather than zero when it falls short.
func Pedigree(facts []models.RunnerFact, role string, jc config.Job, now time.Time) []models.PedigreeStats {
	lines := map[string]*line{}
	for _, f := range facts {
		id := ancestor(f, role)
		if id == nil || *id == "" {
			continue
		}
		l := lines[*id]
		if l == nil {
			l = &line{classes: map[string]*tally{}, bands: map[string]*tally{}}
			lines[*id] = l
		}
		l.all.add(f, false)
		if f.Class != nil && *f.Class != "" {
			addTo(l.classes, *f.Class, f)
		}
		if band := Band(f.DistanceF); band != "" {
			addTo(l.bands, band, f)
		}
	}

	var out []models.PedigreeStats
	for id, l := range lines {
		if l.all.runs < jc.MinRuns {
			continue
		}
		row := models.PedigreeStats{
			Role:       role,
			AncestorID: id,
			Summary:    l.all.summary(jc.MinRuns, now),
		}
		classes := topSubGroups(l.classes, jc.ClassMinRuns)
		row.Class1, row.Class2, row.Class3 = classes[0], classes[1], classes[2]
		bands := topSubGroups(l.bands, jc.DistanceMinRuns)
		row.Dist1, row.Dist2, row.Dist3 = bands[0], bands[1], bands[2]
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AncestorID < out[j].AncestorID })
	return out
}

func addTo(m map[string]*tally, k string, f models.RunnerFact) {
	if m[k] == nil {
		m[k] = &tally{}
	}
	m[k].add(f, false)
}

// topSubGroups keeps the groups with at least minRuns runs, largest first
// (ties by key), and returns up to three of them. Unused slots stay empty.
func topSubGroups(groups map[string]*tally, minRuns int) [maxSubGroups]models.SubGroup {
	keys := make([]string, 0, len(groups))
	for k, t := range groups {
		if t.runs >= minRuns {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := groups[keys[i]].runs, groups[keys[j]].runs
		if ri != rj {
			return ri > rj
		}
		return keys[i] < keys[j]
	})

	var out [maxSubGroups]models.SubGroup
	for i := 0; i < len(keys) && i < maxSubGroups; i++ {
		k, t := keys[i], groups[keys[i]]
		runs, wins := t.runs, t.wins
		rate := float64(wins) / float64(runs)
		out[i] = models.SubGroup{Key: &k, Runs: &runs, Wins: &wins, WinRate: &rate}
	}
	return out
}
