package enrich

import (
	"context"
	"strings"

	"github.com/padraicbc/mikerp/identity"
	"github.com/padraicbc/mikerp/provider"
)

// HorseClient is the provider call behind horse enrichment.
type HorseClient interface {
	Horse(ctx context.Context, id string) (provider.HorseDetail, error)
}

// HorseLookup adapts a HorseClient to Lookup.
type HorseLookup struct {
	Client HorseClient
}

// Detail fetches one horse and derives its pedigree and ancestor entities.
func (l HorseLookup) Detail(ctx context.Context, id string) (Detail, error) {
	hd, err := l.Client.Horse(ctx, id)
	if err != nil {
		return Detail{}, err
	}

	name, region, ok := identity.ParseRegion(hd.Name)
	var regionPtr *string
	switch {
	case strings.TrimSpace(hd.Region) != "":
		r := identity.NormalizeRegion(hd.Region)
		regionPtr = &r
	case ok:
		regionPtr = &region
	}

	d := Detail{
		Entity: identity.Entity{
			Kind:      identity.KindHorse,
			ID:        id,
			Name:      name,
			Region:    regionPtr,
			DOB:       provider.Str(hd.DOB),
			SexCode:   provider.Str(hd.SexCode),
			Colour:    provider.Str(hd.Colour),
			Breeder:   provider.Str(hd.Breeder),
			SireID:    provider.Str(hd.SireID),
			DamID:     provider.Str(hd.DamID),
			DamsireID: provider.Str(hd.DamsireID),
		},
	}

	d.Related = appendAncestor(d.Related, identity.KindSire, hd.SireID, hd.Sire)
	d.Related = appendAncestor(d.Related, identity.KindDam, hd.DamID, hd.Dam)
	d.Related = appendAncestor(d.Related, identity.KindDamsire, hd.DamsireID, hd.Damsire)

	if d.Entity.SireID != nil || d.Entity.DamID != nil || d.Entity.DamsireID != nil || regionPtr != nil {
		d.Pedigree = &identity.Pedigree{
			HorseID:   id,
			SireID:    d.Entity.SireID,
			DamID:     d.Entity.DamID,
			DamsireID: d.Entity.DamsireID,
			Region:    regionPtr,
		}
	}
	return d, nil
}

func appendAncestor(out []identity.Entity, kind identity.Kind, id, name string) []identity.Entity {
	id = strings.TrimSpace(id)
	if id == "" {
		return out
	}
	base, region, ok := identity.ParseRegion(name)
	e := identity.Entity{Kind: kind, ID: id, Name: base}
	if ok {
		e.Region = &region
	}
	return append(out, e)
}
