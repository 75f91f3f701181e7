package facet

import (
	"context"
	"math"
	"slices"

	"github.com/matst80/tyre-finder/pkg/types"
	log "github.com/sirupsen/logrus"
)

// Options is the ordered list of values still reachable for one dimension.
type Options struct {
	Field  string   `json:"field"`
	Values []string `json:"values"`
}

func (o Options) Contains(value string) bool {
	return slices.Contains(o.Values, value)
}

func (o Options) IsEmpty() bool {
	return len(o.Values) == 0
}

// Engine filters one catalog snapshot and derives dependent options. It is
// read only after NewEngine returns and safe for concurrent use.
type Engine struct {
	items  []*types.Item
	all    types.ItemList
	fields []*KeyField
	byId   map[string]*KeyField
}

func NewEngine(items []*types.Item, fields ...*KeyField) *Engine {
	e := &Engine{
		items:  items,
		all:    make(types.ItemList, len(items)),
		fields: make([]*KeyField, 0, len(fields)),
		byId:   make(map[string]*KeyField, len(fields)),
	}
	for _, item := range items {
		e.all.Add(item)
	}
	for _, template := range fields {
		if _, found := e.byId[template.Id]; found {
			log.Warnf("duplicate dimension %s ignored", template.Id)
			continue
		}
		field := EmptyKeyField(template)
		for _, item := range items {
			field.AddValueLink(item)
		}
		e.fields = append(e.fields, field)
		e.byId[field.Id] = field
	}
	return e
}

func (e *Engine) Items() []*types.Item {
	return e.items
}

func (e *Engine) Len() int {
	return len(e.items)
}

func (e *Engine) Fields() []*KeyField {
	return e.fields
}

func (e *Engine) GetField(id string) (*KeyField, bool) {
	f, ok := e.byId[id]
	return f, ok
}

// Matches reports whether item satisfies every constrained dimension.
func (e *Engine) Matches(item *types.Item, selection types.Selection) bool {
	for _, field := range e.fields {
		if !field.Matches(item, selection.Get(field.Id)) {
			return false
		}
	}
	return true
}

// MatchIds resolves a selection to the set of matching ids.
func (e *Engine) MatchIds(ctx context.Context, selection types.Selection) *types.ItemList {
	ctx, span := tracer.Start(ctx, "filter")
	defer span.End()
	result := e.all.Clone()
	qm := types.NewQueryMerger(ctx, result)
	e.Match(selection, qm)
	qm.Wait()
	return result
}

// Filter returns the matching items in catalog order.
func (e *Engine) Filter(ctx context.Context, selection types.Selection) []*types.Item {
	return e.itemsIn(e.MatchIds(ctx, selection))
}

func (e *Engine) itemsIn(ids *types.ItemList) []*types.Item {
	ret := make([]*types.Item, 0, ids.Len())
	for _, item := range e.items {
		if ids.Contains(item.Id) {
			ret = append(ret, item)
		}
	}
	return ret
}

// Collect gathers the distinct option values of field among items, in the
// order the field sorts them. Each value keeps the ordering key of the first
// item it was seen on.
func Collect(field *KeyField, items []*types.Item) Options {
	seen := make(map[string]struct{})
	lookups := make(types.ByValue, 0)
	for _, item := range items {
		for _, v := range field.OptionValues(item) {
			if _, found := seen[v]; found {
				continue
			}
			seen[v] = struct{}{}
			key := math.Inf(1)
			if item.HasKey {
				key = item.OrderingKey
			}
			lookups = append(lookups, types.Lookup{Value: v, Key: key})
		}
	}
	return Options{
		Field:  field.Id,
		Values: SortValues(field.Sort, lookups),
	}
}

// DeriveOptions returns the options of target among items passing every
// constraint except target's own.
func (e *Engine) DeriveOptions(ctx context.Context, selection types.Selection, target string) Options {
	field, ok := e.byId[target]
	if !ok {
		return Options{Field: target}
	}
	return Collect(field, e.Filter(ctx, selection.WithOut(target)))
}

// OptionsFor derives the options of field using its configured source.
// filtered is the result of Filter for the full selection.
func (e *Engine) OptionsFor(ctx context.Context, field *KeyField, selection types.Selection, filtered []*types.Item) Options {
	switch field.Derive {
	case DeriveFromFiltered:
		return Collect(field, filtered)
	case DeriveFromCatalog:
		return Collect(field, e.items)
	default:
		return e.DeriveOptions(ctx, selection, field.Id)
	}
}

// Options filters the catalog and derives options for every dimension.
func (e *Engine) Options(ctx context.Context, selection types.Selection) ([]*types.Item, map[string]Options) {
	filtered := e.Filter(ctx, selection)
	ret := make(map[string]Options, len(e.fields))
	for _, field := range e.fields {
		ret[field.Id] = e.OptionsFor(ctx, field, selection, filtered)
	}
	return filtered, ret
}

// Reconcile keeps a previous value only if it is still offered. Dimensions
// without derived options are left as they are.
func Reconcile(previous types.Selection, options map[string]Options) types.Selection {
	ret := make(types.Selection, len(previous))
	for dim, value := range previous {
		if value == "" {
			continue
		}
		if opts, ok := options[dim]; ok && !opts.Contains(value) {
			continue
		}
		ret[dim] = value
	}
	return ret
}
