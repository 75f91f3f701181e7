package binding

import (
	"context"

	"github.com/matst80/tyre-finder/pkg/facet"
	"github.com/matst80/tyre-finder/pkg/types"
)

type SidebarView struct {
	Selects       []SelectView `json:"selects"`
	Report        Report       `json:"report"`
	HasInteracted bool         `json:"hasInteracted"`
}

// Sidebar is the pattern sidebar state for one visitor. Until the first
// interaction the product cards are left as rendered.
type Sidebar struct {
	engines       *Engines
	selection     types.Selection
	hasInteracted bool
	filtered      []*types.Item
	selects       []SelectView
}

func NewSidebar(ctx context.Context, e *Engines) *Sidebar {
	s := &Sidebar{engines: e, selection: types.Selection{}}
	s.update(ctx)
	return s
}

func (s *Sidebar) Rebind(ctx context.Context, e *Engines) {
	s.engines = e
	s.update(ctx)
}

func (s *Sidebar) Selection() types.Selection {
	return s.selection.Clone()
}

func (s *Sidebar) Change(ctx context.Context, dimension, value string) (SidebarView, error) {
	field, ok := ResolveField(s.engines.Sidebar, dimension)
	if !ok {
		return s.View(), ErrUnknownDimension
	}
	s.hasInteracted = true
	s.selection.Set(field.Id, value)
	s.update(ctx)
	return s.View(), nil
}

// Clear resets every select and shows the full catalog.
func (s *Sidebar) Clear(ctx context.Context) SidebarView {
	s.hasInteracted = true
	s.selection = types.Selection{}
	s.update(ctx)
	return s.View()
}

func (s *Sidebar) update(ctx context.Context) {
	e := s.engines.Sidebar
	filtered, options := e.Options(ctx, s.selection)
	s.filtered = filtered
	s.selection = facet.Reconcile(s.selection, options)
	s.selects = make([]SelectView, 0, len(e.Fields()))
	for _, field := range e.Fields() {
		s.selects = append(s.selects, newSelectView(field, options[field.Id], s.selection.Get(field.Id)))
	}
}

func (s *Sidebar) View() SidebarView {
	all := s.engines.Sidebar.Items()
	report := NewReport(s.filtered, all)
	if s.hasInteracted {
		report.Count = ShowingText(len(s.filtered), len(all))
	} else {
		report.Count = ShowingText(s.engines.Catalog.VisibleCount(), len(all))
	}
	matched := matchedIds(s.filtered)
	report.Items = make([]Visibility, 0, len(all))
	for _, item := range all {
		v := Visibility{
			Id:          item.Id,
			Identifier:  item.Identifier,
			Visible:     !item.Hidden,
			HiddenClass: item.Hidden,
			Display:     DisplayDefault,
		}
		if s.hasInteracted {
			v.Visible = matched.Contains(item.Id)
			v.Display = DisplayNone
			if v.Visible {
				v.Display = DisplayBlock
			}
		}
		report.Items = append(report.Items, v)
	}
	return SidebarView{
		Selects:       append([]SelectView(nil), s.selects...),
		Report:        report,
		HasInteracted: s.hasInteracted,
	}
}
