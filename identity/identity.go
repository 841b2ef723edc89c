// Package identity derives the entity references a runner record mentions.
// Everything here is pure: no I/O and no errors.
package identity

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"

	"github.com/padraicbc/mikerp/provider"
)

// Kind names an entity table.
type Kind string

const (
	KindCourse  Kind = "course"
	KindJockey  Kind = "jockey"
	KindTrainer Kind = "trainer"
	KindOwner   Kind = "owner"
	KindSire    Kind = "sire"
	KindDam     Kind = "dam"
	KindDamsire Kind = "damsire"
	KindHorse   Kind = "horse"
)

// WriteOrder lists entity kinds in foreign-key order: anything a later
// kind can reference comes first.
var WriteOrder = []Kind{
	KindCourse, KindJockey, KindTrainer, KindOwner,
	KindSire, KindDam, KindDamsire, KindHorse,
}

// Key identifies an entity across kinds.
type Key struct {
	Kind Kind
	ID   string
}

// Entity is everything known about one referenced entity. Region is the
// breeding-origin region and is only ever set for animal kinds;
// VenueRegion is only set for courses.
type Entity struct {
	Kind        Kind
	ID          string
	Name        string
	Region      *string
	VenueRegion *string
	DOB         *string
	SexCode     *string
	Colour      *string
	Breeder     *string
	SireID      *string
	DamID       *string
	DamsireID   *string
}

// Key returns the entity's (kind, id) key.
func (e Entity) Key() Key { return Key{Kind: e.Kind, ID: e.ID} }

// Resolve returns the entities one runner of race mentions. Person refs
// without a provider id but with a name get a fingerprint id; animal refs
// without an id are dropped. A runner with no horse id yields no horse.
func Resolve(race provider.Race, rec provider.Runner) []Entity {
	out := make([]Entity, 0, 8)

	if id := strings.TrimSpace(race.CourseID); id != "" {
		out = append(out, Entity{
			Kind:        KindCourse,
			ID:          id,
			Name:        strings.TrimSpace(race.Course),
			VenueRegion: lowerOrNil(race.Region),
		})
	}

	out = appendPerson(out, KindJockey, rec.JockeyID, rec.Jockey)
	out = appendPerson(out, KindTrainer, rec.TrainerID, rec.Trainer)
	out = appendPerson(out, KindOwner, rec.OwnerID, rec.Owner)
	out = appendAnimal(out, KindSire, rec.SireID, rec.Sire)
	out = appendAnimal(out, KindDam, rec.DamID, rec.Dam)
	out = appendAnimal(out, KindDamsire, rec.DamsireID, rec.Damsire)

	if id := strings.TrimSpace(rec.HorseID); id != "" {
		name, region, ok := ParseRegion(rec.Horse)
		h := Entity{
			Kind:      KindHorse,
			ID:        id,
			Name:      name,
			SexCode:   nonEmpty(rec.SexCode),
			Colour:    nonEmpty(rec.Colour),
			SireID:    nonEmpty(rec.SireID),
			DamID:     nonEmpty(rec.DamID),
			DamsireID: nonEmpty(rec.DamsireID),
		}
		if ok {
			h.Region = &region
		}
		out = append(out, h)
	}
	return out
}

// PersonID returns the id a person ref resolves to: the provider id when
// present, otherwise a fingerprint of the name, otherwise "".
func PersonID(kind Kind, id, name string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	if strings.TrimSpace(name) == "" {
		return ""
	}
	return Fingerprint(kind, name)
}

// Fingerprint derives a stable key from a kind and display name. Case,
// punctuation, spacing and any region suffix are ignored.
func Fingerprint(kind Kind, name string) string {
	base, _, _ := ParseRegion(name)
	return "fp_" + strconv.FormatUint(xxhash.Sum64String(string(kind)+"|"+normalizeName(base)), 16)
}

func normalizeName(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			space = true
		}
	}
	return b.String()
}

func appendPerson(out []Entity, kind Kind, id, name string) []Entity {
	key := PersonID(kind, id, name)
	if key == "" {
		return out
	}
	return append(out, Entity{Kind: kind, ID: key, Name: strings.TrimSpace(name)})
}

func appendAnimal(out []Entity, kind Kind, id, name string) []Entity {
	id = strings.TrimSpace(id)
	if id == "" {
		return out
	}
	base, region, ok := ParseRegion(name)
	e := Entity{Kind: kind, ID: id, Name: base}
	if ok {
		e.Region = &region
	}
	return append(out, e)
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func lowerOrNil(s string) *string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil
	}
	return &s
}

// Pedigree is the derived sire/dam/damsire record for one horse.
type Pedigree struct {
	HorseID   string
	SireID    *string
	DamID     *string
	DamsireID *string
	Region    *string
}
