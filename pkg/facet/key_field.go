package facet

import (
	"slices"

	"github.com/matst80/tyre-finder/pkg/types"
)

type MatchKind uint8

const (
	// MatchTokens compares the selected value with each item token.
	MatchTokens MatchKind = iota
	// MatchNormalized compares normalized category keys.
	MatchNormalized
	// MatchWhole compares with the whole trimmed attribute string.
	MatchWhole
)

type DeriveKind uint8

const (
	// DeriveExcludingOwn derives options from items passing every other constraint.
	DeriveExcludingOwn DeriveKind = iota
	// DeriveFromFiltered derives options from the fully filtered subset.
	DeriveFromFiltered
	// DeriveFromCatalog always offers every value in the catalog.
	DeriveFromCatalog
)

// KeyField is one filter dimension with its value index. Fields passed to
// NewEngine are templates, the engine indexes its own copy.
type KeyField struct {
	*types.BaseField
	Match  MatchKind
	Sort   SortKind
	Derive DeriveKind
	// Whole offers the trimmed attribute string as a single option instead
	// of its tokens.
	Whole bool
	// Missing is offered for items without a value. It is an option only,
	// selecting it matches nothing.
	Missing string
	// Required makes an unset value match nothing.
	Required bool
	Keys     map[string]types.ItemList `json:"-"`
}

func (f *KeyField) key(value string) string {
	if f.Match == MatchNormalized {
		return NormalizeCategory(value)
	}
	return value
}

func (f *KeyField) itemKeys(item *types.Item) []string {
	var keys []string
	if f.Match == MatchWhole {
		if raw := item.RawValue(f.Id); raw != "" {
			keys = []string{raw}
		}
	} else {
		tokens := item.Values(f.Id)
		keys = make([]string, 0, len(tokens))
		for _, t := range tokens {
			if k := f.key(t); k != "" && !slices.Contains(keys, k) {
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// OptionValues returns the values an item contributes to this dimension's
// option list.
func (f *KeyField) OptionValues(item *types.Item) []string {
	if f.Whole {
		if raw := item.RawValue(f.Id); raw != "" {
			return []string{raw}
		}
	} else if tokens := item.Values(f.Id); len(tokens) > 0 {
		return tokens
	}
	if f.Missing != "" {
		return []string{f.Missing}
	}
	return nil
}

func (f *KeyField) AddValueLink(item *types.Item) bool {
	keys := f.itemKeys(item)
	for _, k := range keys {
		if ids, ok := f.Keys[k]; ok {
			ids.AddId(item.Id)
		} else {
			f.Keys[k] = types.ItemList{item.Id: struct{}{}}
		}
	}
	return len(keys) > 0
}

// MatchValue returns the ids matching value. nil means unconstrained.
func (f *KeyField) MatchValue(value string) *types.ItemList {
	if value == "" {
		if f.Required {
			return &types.ItemList{}
		}
		return nil
	}
	if value == f.Missing {
		return &types.ItemList{}
	}
	if ids, ok := f.Keys[f.key(value)]; ok {
		return &ids
	}
	return &types.ItemList{}
}

// Matches is the per item form of MatchValue.
func (f *KeyField) Matches(item *types.Item, value string) bool {
	if value == "" {
		return !f.Required
	}
	if value == f.Missing {
		return false
	}
	return slices.Contains(f.itemKeys(item), f.key(value))
}

func (f *KeyField) UniqueCount() int {
	return len(f.Keys)
}

func (f *KeyField) TotalCount() int {
	total := 0
	for _, ids := range f.Keys {
		total += len(ids)
	}
	return total
}

func EmptyKeyField(field *KeyField) *KeyField {
	c := *field
	c.Keys = map[string]types.ItemList{}
	return &c
}
