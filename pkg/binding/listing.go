package binding

import (
	"context"

	"github.com/matst80/tyre-finder/pkg/facet"
	"github.com/matst80/tyre-finder/pkg/types"
)

type ListingResult struct {
	// Applied is false when the query had no parameters and the page should
	// be left as rendered.
	Applied   bool                     `json:"applied"`
	Selection types.Selection          `json:"selection"`
	Report    Report                   `json:"report"`
	Options   map[string]facet.Options `json:"options,omitempty"`
}

// Listing filters product cards from the page query string.
type Listing struct {
	engine *facet.Engine
}

func NewListing(e *Engines) *Listing {
	return &Listing{engine: e.Listing}
}

func (l *Listing) Apply(ctx context.Context, rawQuery string) ListingResult {
	params := ParseQuery(rawQuery)
	if len(params) == 0 {
		return ListingResult{
			Selection: types.Selection{},
			Report:    NewReport(l.engine.Items(), l.engine.Items()),
		}
	}
	sel := ListingSelection(params)
	filtered, options := l.engine.Options(ctx, sel)
	report := NewReport(filtered, l.engine.Items())
	matched := matchedIds(filtered)
	report.Items = make([]Visibility, 0, l.engine.Len())
	for _, item := range l.engine.Items() {
		v := Visibility{
			Id:         item.Id,
			Identifier: item.Identifier,
			Visible:    matched.Contains(item.Id),
		}
		if v.Visible {
			v.Display = DisplayBlock
		} else {
			v.HiddenClass = true
			v.Display = DisplayNone
			v.DeferDisplay = true
		}
		report.Items = append(report.Items, v)
	}
	return ListingResult{
		Applied:   true,
		Selection: sel,
		Report:    report,
		Options:   options,
	}
}
