// Package binding holds the page level controllers built on the facet
// engine: the listing query filter, the find-your-tyre form, the pattern
// sidebar and the size table filter.
package binding

import (
	"github.com/matst80/tyre-finder/pkg/catalog"
	"github.com/matst80/tyre-finder/pkg/facet"
	"github.com/matst80/tyre-finder/pkg/types"
)

func ListingFields() []*facet.KeyField {
	return []*facet.KeyField{
		{BaseField: &types.BaseField{Id: types.Category, Name: "Category"}, Match: facet.MatchNormalized},
		{BaseField: &types.BaseField{Id: types.Equipment, Name: "Equipment"}},
		{BaseField: &types.BaseField{Id: types.Rim, Name: "Rim"}, Sort: facet.SortRim},
		{BaseField: &types.BaseField{Id: types.Size, Name: "Size"}, Sort: facet.SortSize},
		{BaseField: &types.BaseField{Id: types.Pattern, Name: "Pattern"}, Sort: facet.SortOrderingKey},
	}
}

// FinderFields is the find-your-tyre form. Category is a radio group that
// must be chosen before anything matches.
func FinderFields() []*facet.KeyField {
	return []*facet.KeyField{
		{
			BaseField: &types.BaseField{Id: types.Category, Name: "Category"},
			Match:     facet.MatchNormalized,
			Required:  true,
			Derive:    facet.DeriveFromCatalog,
		},
		{
			BaseField: &types.BaseField{Id: types.Equipment, Name: "Equipment", Placeholder: "Select Equipment"},
			Derive:    facet.DeriveFromFiltered,
			Missing:   "No Equipment Available",
		},
		{
			BaseField: &types.BaseField{Id: types.Rim, Name: "Rim", Placeholder: "Select Rim"},
			Sort:      facet.SortRim,
			Derive:    facet.DeriveFromFiltered,
			Missing:   "No Rim Available",
		},
		{
			BaseField: &types.BaseField{Id: types.Size, Name: "Size", Placeholder: "Select Size"},
			Sort:      facet.SortSize,
			Derive:    facet.DeriveFromFiltered,
			Missing:   "No Size Available",
		},
		{
			BaseField: &types.BaseField{Id: types.Pattern, Name: "Pattern", Placeholder: "Select Pattern"},
			Match:     facet.MatchWhole,
			Whole:     true,
			Sort:      facet.SortOrderingKey,
			Derive:    facet.DeriveFromFiltered,
		},
	}
}

// SidebarFields is the pattern page sidebar. It compares whole attribute
// strings except for size and rim.
func SidebarFields() []*facet.KeyField {
	return []*facet.KeyField{
		{
			BaseField: &types.BaseField{Id: types.Category, Name: "Category", Placeholder: "All Categories"},
			Match:     facet.MatchWhole,
			Whole:     true,
			Derive:    facet.DeriveFromCatalog,
		},
		{
			BaseField: &types.BaseField{Id: types.Equipment, Name: "Application", Param: "application", Placeholder: "All Applications"},
			Match:     facet.MatchWhole,
			Derive:    facet.DeriveFromFiltered,
		},
		{
			BaseField: &types.BaseField{Id: types.Size, Name: "Tyre Size", Placeholder: "All Sizes"},
			Sort:      facet.SortFloatPrefix,
			Derive:    facet.DeriveFromFiltered,
		},
		{
			BaseField: &types.BaseField{Id: types.Rim, Name: "Rim Size", Placeholder: "All Rims"},
			Sort:      facet.SortFloatPrefix,
			Derive:    facet.DeriveFromFiltered,
		},
		{
			BaseField: &types.BaseField{Id: types.TraCode, Name: "TRA Code", Param: "traCode", Placeholder: "All TRA Codes"},
			Match:     facet.MatchWhole,
			Whole:     true,
			Derive:    facet.DeriveFromFiltered,
		},
		{
			BaseField: &types.BaseField{Id: types.Pattern, Name: "Pattern", Placeholder: "All Patterns"},
			Match:     facet.MatchWhole,
			Whole:     true,
			Sort:      facet.SortOrderingKey,
			Derive:    facet.DeriveFromFiltered,
		},
	}
}

func TableFields() []*facet.KeyField {
	return []*facet.KeyField{
		{BaseField: &types.BaseField{Id: types.Size, Name: "Size", Param: "filter-size", Placeholder: "All"}, Match: facet.MatchWhole, Whole: true},
		{BaseField: &types.BaseField{Id: types.Ply, Name: "Ply Rating", Param: "filter-ply", Placeholder: "All"}, Match: facet.MatchWhole, Whole: true},
	}
}

// Engines is one engine per binding over the same catalog snapshot.
type Engines struct {
	Catalog *catalog.Catalog
	Listing *facet.Engine
	Finder  *facet.Engine
	Sidebar *facet.Engine
	Table   *facet.Engine
}

func NewEngines(c *catalog.Catalog) *Engines {
	if c == nil {
		c = &catalog.Catalog{}
	}
	return &Engines{
		Catalog: c,
		Listing: facet.NewEngine(c.Products, ListingFields()...),
		Finder:  facet.NewEngine(c.Products, FinderFields()...),
		Sidebar: facet.NewEngine(c.Products, SidebarFields()...),
		Table:   facet.NewEngine(c.Rows, TableFields()...),
	}
}

// ResolveField finds a dimension by id or by its page key.
func ResolveField(e *facet.Engine, key string) (*facet.KeyField, bool) {
	if f, ok := e.GetField(key); ok {
		return f, true
	}
	for _, f := range e.Fields() {
		if f.Key() == key {
			return f, true
		}
	}
	return nil, false
}
