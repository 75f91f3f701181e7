package binding

import (
	"context"

	"github.com/matst80/tyre-finder/pkg/facet"
	"github.com/matst80/tyre-finder/pkg/types"
)

type TableView struct {
	Selects []SelectView `json:"selects"`
	Rows    []Visibility `json:"rows"`
	Visible int          `json:"visible"`
}

// Table is the size table filter. Changing one dropdown filters the rows and
// refills only the other dropdown.
type Table struct {
	engines   *Engines
	selection types.Selection
	options   map[string]facet.Options
	visible   types.ItemList
}

func NewTable(ctx context.Context, e *Engines) *Table {
	t := &Table{engines: e}
	t.Reset(ctx)
	return t
}

// Reset fills both dropdowns from every row and shows all rows.
func (t *Table) Reset(ctx context.Context) {
	e := t.engines.Table
	t.selection = types.Selection{}
	t.options = make(map[string]facet.Options, len(e.Fields()))
	for _, field := range e.Fields() {
		t.options[field.Id] = facet.Collect(field, e.Items())
	}
	t.visible = matchedIds(e.Items())
}

func (t *Table) Rebind(ctx context.Context, e *Engines) {
	t.engines = e
	t.Reset(ctx)
}

func (t *Table) Selection() types.Selection {
	return t.selection.Clone()
}

func (t *Table) Change(ctx context.Context, dimension, value string) (TableView, error) {
	e := t.engines.Table
	changed, ok := ResolveField(e, dimension)
	if !ok {
		return t.View(), ErrUnknownDimension
	}
	t.selection.Set(changed.Id, value)
	t.visible = matchedIds(e.Filter(ctx, t.selection))

	for _, field := range e.Fields() {
		if field.Id == changed.Id {
			continue
		}
		t.options[field.Id] = e.DeriveOptions(ctx, t.selection, field.Id)
	}
	t.selection = facet.Reconcile(t.selection, t.options)
	return t.View(), nil
}

func (t *Table) View() TableView {
	e := t.engines.Table
	view := TableView{
		Selects: make([]SelectView, 0, len(e.Fields())),
		Rows:    make([]Visibility, 0, e.Len()),
	}
	for _, field := range e.Fields() {
		view.Selects = append(view.Selects, newSelectView(field, t.options[field.Id], t.selection.Get(field.Id)))
	}
	for _, row := range e.Items() {
		v := Visibility{
			Id:         row.Id,
			Identifier: row.Identifier,
			Visible:    t.visible.Contains(row.Id),
			Display:    DisplayDefault,
		}
		if !v.Visible {
			v.Display = DisplayNone
		}
		if v.Visible {
			view.Visible++
		}
		view.Rows = append(view.Rows, v)
	}
	return view
}
