package types

import (
	"maps"
	"slices"
	"strings"
)

// Selection maps a dimension to the single chosen value. A missing key or an
// empty value means the dimension is unconstrained.
type Selection map[string]string

func (s Selection) Get(dimension string) string {
	if s == nil {
		return ""
	}
	return s[dimension]
}

func (s Selection) IsSet(dimension string) bool {
	return s.Get(dimension) != ""
}

// Set assigns a value, an empty value unsets the dimension.
func (s Selection) Set(dimension, value string) {
	if value == "" {
		delete(s, dimension)
		return
	}
	s[dimension] = value
}

// WithOut returns a copy without the constraint on id.
func (s Selection) WithOut(id string) Selection {
	result := make(Selection, len(s))
	for key, value := range s {
		if key != id && value != "" {
			result[key] = value
		}
	}
	return result
}

func (s Selection) Clone() Selection {
	if s == nil {
		return Selection{}
	}
	return maps.Clone(s)
}

func (s Selection) IsEmpty() bool {
	for _, v := range s {
		if v != "" {
			return false
		}
	}
	return true
}

// Key is a stable string form, used for cache keys and logging.
func (s Selection) Key() string {
	keys := slices.Sorted(maps.Keys(s))
	var b strings.Builder
	for _, k := range keys {
		if s[k] == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(s[k])
	}
	return b.String()
}
