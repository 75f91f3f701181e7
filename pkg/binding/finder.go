package binding

import (
	"context"
	"errors"
	"net/url"

	"github.com/matst80/tyre-finder/pkg/facet"
	"github.com/matst80/tyre-finder/pkg/types"
)

var (
	ErrUnknownDimension = errors.New("unknown dimension")
	ErrSearchDisabled   = errors.New("choose a category before searching")
)

// finderSelects are the dependent dropdowns below the category radios.
var finderSelects = []string{types.Equipment, types.Rim, types.Size, types.Pattern}

type FinderView struct {
	Category      string       `json:"category"`
	Selects       []SelectView `json:"selects"`
	Count         string       `json:"count"`
	Matched       int          `json:"matched"`
	SearchEnabled bool         `json:"searchEnabled"`
}

// Finder is the find-your-tyre form state for one visitor.
type Finder struct {
	engines       *Engines
	selection     types.Selection
	selects       []SelectView
	count         string
	matched       int
	searchEnabled bool
}

func NewFinder(e *Engines) *Finder {
	f := &Finder{engines: e}
	f.Reset()
	return f
}

// Reset puts the form in its initial state: every select emptied and
// disabled, search disabled and a zero count.
func (f *Finder) Reset() {
	f.selection = types.Selection{}
	f.searchEnabled = false
	f.count = CountText(0)
	f.matched = 0
	f.selects = make([]SelectView, 0, len(finderSelects))
	for _, id := range finderSelects {
		if field, ok := f.engines.Finder.GetField(id); ok {
			f.selects = append(f.selects, resetSelectView(field))
		}
	}
}

// Rebind moves the form to a new catalog snapshot, keeping what is still
// selectable.
func (f *Finder) Rebind(ctx context.Context, e *Engines) {
	f.engines = e
	if f.searchEnabled {
		f.update(ctx)
	} else {
		f.Reset()
	}
}

func (f *Finder) Selection() types.Selection {
	return f.selection.Clone()
}

func (f *Finder) View() FinderView {
	return FinderView{
		Category:      f.selection.Get(types.Category),
		Selects:       append([]SelectView(nil), f.selects...),
		Count:         f.count,
		Matched:       f.matched,
		SearchEnabled: f.searchEnabled,
	}
}

// Change applies one control change. Choosing a category clears the other
// selections and enables search, an empty category resets the form.
func (f *Finder) Change(ctx context.Context, dimension, value string) (FinderView, error) {
	field, ok := ResolveField(f.engines.Finder, dimension)
	if !ok {
		return f.View(), ErrUnknownDimension
	}
	if field.Id == types.Category {
		category := facet.NormalizeCategory(value)
		if category == "" {
			f.Reset()
			return f.View(), ErrSearchDisabled
		}
		f.selection = types.Selection{}
		f.selection.Set(types.Category, category)
		f.searchEnabled = true
	} else {
		f.selection.Set(field.Id, value)
	}
	f.update(ctx)
	return f.View(), nil
}

func (f *Finder) update(ctx context.Context) {
	e := f.engines.Finder
	filtered := e.Filter(ctx, f.selection)
	f.matched = len(filtered)
	f.count = CountText(f.matched)

	options := make(map[string]facet.Options, len(finderSelects))
	for _, id := range finderSelects {
		if field, ok := e.GetField(id); ok {
			options[id] = e.OptionsFor(ctx, field, f.selection, filtered)
		}
	}
	f.selection = facet.Reconcile(f.selection, options)

	f.selects = f.selects[:0]
	for _, id := range finderSelects {
		if field, ok := e.GetField(id); ok {
			f.selects = append(f.selects, newSelectView(field, options[id], f.selection.Get(id)))
		}
	}
}

// Search returns where the search button navigates: the product page when a
// pattern resolves to a product with a slug, otherwise the listing with the
// current selections.
func (f *Finder) Search() (string, error) {
	if !f.searchEnabled {
		return "", ErrSearchDisabled
	}
	if pattern := f.selection.Get(types.Pattern); pattern != "" {
		if item, ok := f.engines.Catalog.FindByValue(types.Pattern, pattern); ok {
			if slug := item.RawValue(types.Slug); slug != "" {
				return "/product/" + slug, nil
			}
		}
	}
	params := url.Values{}
	for _, key := range []string{types.Category, types.Equipment, types.Rim, types.Size} {
		if value := f.selection.Get(key); value != "" {
			params.Add(key, value)
		}
	}
	return "/products?" + params.Encode(), nil
}
