// Package merge holds the per-field rules for combining an existing
// attribute value with a newly observed one.
package merge

import (
	"fmt"
	"strings"

	"github.com/padraicbc/mikerp/identity"
)

// Policy decides which of two values survives.
type Policy int

const (
	// Overwrite takes the new value when it is present. A missing new
	// value never clears the old one.
	Overwrite Policy = iota
	// FillOnly takes the new value only when the old one is absent. Used
	// for immutable metadata such as breeding region.
	FillOnly
	// NonBlank is Overwrite for text columns where an empty string also
	// counts as absent. Display names use it.
	NonBlank
)

func (p Policy) String() string {
	switch p {
	case Overwrite:
		return "overwrite"
	case FillOnly:
		return "fill-only"
	case NonBlank:
		return "non-blank"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// Value applies p to a single field.
func Value[T any](p Policy, old, new *T) *T {
	if new == nil {
		return old
	}
	if p == FillOnly && old != nil {
		return old
	}
	return new
}

// Column binds a stored column to its policy.
type Column struct {
	Name   string
	Policy Policy
}

// EntityColumns lists, per kind, the mutable columns an upsert may touch.
// Key columns are not listed.
var EntityColumns = map[identity.Kind][]Column{
	identity.KindCourse:  {{"course", NonBlank}, {"region", Overwrite}},
	identity.KindJockey:  {{"jockey", NonBlank}},
	identity.KindTrainer: {{"trainer", NonBlank}},
	identity.KindOwner:   {{"owner", NonBlank}},
	identity.KindSire:    {{"sire", NonBlank}, {"region", FillOnly}},
	identity.KindDam:     {{"dam", NonBlank}, {"region", FillOnly}},
	identity.KindDamsire: {{"damsire", NonBlank}, {"region", FillOnly}},
	identity.KindHorse: {
		{"horse", NonBlank},
		{"dob", Overwrite},
		{"sex_code", Overwrite},
		{"colour", Overwrite},
		{"breeder", Overwrite},
		{"region", FillOnly},
		{"sire_id", Overwrite},
		{"dam_id", Overwrite},
		{"damsire_id", Overwrite},
	},
}

// PedigreeColumns are the mutable columns of a pedigree row.
var PedigreeColumns = []Column{
	{"sire_id", Overwrite},
	{"dam_id", Overwrite},
	{"damsire_id", Overwrite},
	{"region", FillOnly},
}

// SetClause renders cols as the SET list of an ON CONFLICT DO UPDATE,
// with table naming the row already stored.
func SetClause(table string, cols []Column) string {
	parts := make([]string, 0, len(cols))
	for _, c := range cols {
		var expr string
		switch c.Policy {
		case FillOnly:
			expr = fmt.Sprintf("COALESCE(%s.%s, EXCLUDED.%s)", table, c.Name, c.Name)
		case NonBlank:
			expr = fmt.Sprintf("COALESCE(NULLIF(EXCLUDED.%s, ''), %s.%s)", c.Name, table, c.Name)
		default:
			expr = fmt.Sprintf("COALESCE(EXCLUDED.%s, %s.%s)", c.Name, table, c.Name)
		}
		parts = append(parts, c.Name+" = "+expr)
	}
	return strings.Join(parts, ", ")
}

// Entity folds src into dst. Name and descriptive attributes overwrite;
// region follows regionPolicy so callers can decide whether they are
// combining sightings within a batch (Overwrite) or against the store
// (FillOnly).
func Entity(dst *identity.Entity, src identity.Entity, regionPolicy Policy) {
	if src.Name != "" {
		dst.Name = src.Name
	}
	dst.Region = Value(regionPolicy, dst.Region, src.Region)
	dst.VenueRegion = Value(Overwrite, dst.VenueRegion, src.VenueRegion)
	dst.DOB = Value(Overwrite, dst.DOB, src.DOB)
	dst.SexCode = Value(Overwrite, dst.SexCode, src.SexCode)
	dst.Colour = Value(Overwrite, dst.Colour, src.Colour)
	dst.Breeder = Value(Overwrite, dst.Breeder, src.Breeder)
	dst.SireID = Value(Overwrite, dst.SireID, src.SireID)
	dst.DamID = Value(Overwrite, dst.DamID, src.DamID)
	dst.DamsireID = Value(Overwrite, dst.DamsireID, src.DamsireID)
}

// RaceColumns are the mutable columns of a race row. distance_f and
// completed have bespoke rules and are handled by the store.
var RaceColumns = []Column{
	{"course_id", Overwrite},
	{"date", Overwrite},
	{"off_time", NonBlank},
	{"race_name", NonBlank},
	{"class", Overwrite},
	{"going", Overwrite},
	{"race_type", Overwrite},
}

// RunnerColumns are the mutable columns of a runner row. Post-race fields
// are absent on a racecard and filled in once the result lands.
var RunnerColumns = []Column{
	{"jockey_id", Overwrite},
	{"trainer_id", Overwrite},
	{"owner_id", Overwrite},
	{"number", Overwrite},
	{"draw", Overwrite},
	{"weight_lbs", Overwrite},
	{"odds", Overwrite},
	{"headgear", Overwrite},
	{"official_rating", Overwrite},
	{"position", Overwrite},
	{"margin", Overwrite},
	{"prize", Overwrite},
	{"time_secs", Overwrite},
}
