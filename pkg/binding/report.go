package binding

import (
	"fmt"
	"strconv"
	"time"

	"github.com/matst80/tyre-finder/pkg/facet"
	"github.com/matst80/tyre-finder/pkg/types"
)

const (
	DisplayBlock = "block"
	DisplayNone  = "none"
	DisplayFlex  = "flex"
	// DisplayDefault leaves the element as rendered.
	DisplayDefault = ""

	NoResultsElement = "no-results-message"
)

// FadeDuration is how long the client animates a hide before DeferDisplay
// items are taken out of layout.
var FadeDuration = 300 * time.Millisecond

// Visibility is what the page should do with one item container.
type Visibility struct {
	Id         types.ItemId `json:"id"`
	Identifier string       `json:"identifier"`
	Visible    bool         `json:"visible"`
	// HiddenClass toggles the "hidden" class on the container.
	HiddenClass bool   `json:"hiddenClass"`
	Display     string `json:"display"`
	// DeferDisplay means Display applies when the fade-out transition ends.
	DeferDisplay bool `json:"deferDisplay,omitempty"`
}

type Report struct {
	Count            string       `json:"count"`
	Matched          int          `json:"matched"`
	Total            int          `json:"total"`
	NoResults        bool         `json:"noResults"`
	NoResultsDisplay string       `json:"noResultsDisplay"`
	Items            []Visibility `json:"items,omitempty"`
}

// SelectView is the state of one dropdown.
type SelectView struct {
	Id          string   `json:"id"`
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Placeholder string   `json:"placeholder"`
	Options     []string `json:"options"`
	Selected    string   `json:"selected"`
	Disabled    bool     `json:"disabled"`
}

func newSelectView(field *facet.KeyField, options facet.Options, selected string) SelectView {
	values := options.Values
	if values == nil {
		values = []string{}
	}
	return SelectView{
		Id:          field.Id,
		Key:         field.Key(),
		Name:        field.Name,
		Placeholder: field.Placeholder,
		Options:     values,
		Selected:    selected,
		Disabled:    len(values) == 0,
	}
}

// resetSelectView is an emptied, disabled dropdown.
func resetSelectView(field *facet.KeyField) SelectView {
	return newSelectView(field, facet.Options{Field: field.Id}, "")
}

func ShowingText(visible, total int) string {
	return fmt.Sprintf("Showing %d of %d products", visible, total)
}

func CountText(n int) string {
	return strconv.Itoa(n)
}

func noResultsDisplay(noResults bool) string {
	if noResults {
		return DisplayFlex
	}
	return DisplayNone
}

// NewReport builds the result summary for filtered out of all.
func NewReport(filtered []*types.Item, all []*types.Item) Report {
	noResults := len(filtered) == 0
	return Report{
		Count:            CountText(len(filtered)),
		Matched:          len(filtered),
		Total:            len(all),
		NoResults:        noResults,
		NoResultsDisplay: noResultsDisplay(noResults),
	}
}

func matchedIds(filtered []*types.Item) types.ItemList {
	ids := make(types.ItemList, len(filtered))
	for _, item := range filtered {
		ids.Add(item)
	}
	return ids
}
