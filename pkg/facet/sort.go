package facet

import (
	"cmp"
	"math"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/matst80/tyre-finder/pkg/types"
)

type SortKind uint8

const (
	// SortLexical orders by plain string comparison.
	SortLexical SortKind = iota
	// SortRim orders by rim diameter, values that are not a diameter go last.
	SortRim
	// SortSize orders by the leading number, then lexically.
	SortSize
	// SortFloatPrefix orders by the parsed float prefix, unparseable values count as 0.
	SortFloatPrefix
	// SortOrderingKey orders by the item serial number, missing keys go last.
	SortOrderingKey
	// SortNone keeps encounter order.
	SortNone
)

var (
	rimDesignation = regexp.MustCompile(`^[A-Za-z]*\s*(\d+(?:\.\d+)?)$`)
	leadingNumber  = regexp.MustCompile(`^([\d.]+)`)
	floatPrefix    = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// RimDiameter extracts the diameter from values like "R15", "15" or "22.5".
func RimDiameter(value string) float64 {
	m := rimDesignation.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return math.Inf(1)
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return math.Inf(1)
	}
	return v
}

// LeadingNumber parses the leading run of digits and dots, values without one
// get math.MaxFloat64.
func LeadingNumber(value string) float64 {
	m := leadingNumber.FindString(value)
	if m == "" {
		return math.MaxFloat64
	}
	if v, ok := ParseFloatPrefix(m); ok {
		return v
	}
	return math.MaxFloat64
}

// ParseFloatPrefix parses the longest numeric prefix of value, ignoring
// leading whitespace, the way browsers parse a float out of free text.
func ParseFloatPrefix(value string) (float64, bool) {
	m := floatPrefix.FindString(strings.TrimLeft(value, " \t\n\r"))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// SortValues orders option lookups in place according to kind. Key is only
// read for SortOrderingKey.
func SortValues(kind SortKind, values types.ByValue) []string {
	switch kind {
	case SortNone:
	case SortLexical:
		slices.SortStableFunc(values, func(a, b types.Lookup) int {
			return strings.Compare(a.Value, b.Value)
		})
	case SortRim:
		for i := range values {
			values[i].Key = RimDiameter(values[i].Value)
		}
		sort.Stable(values)
	case SortSize:
		for i := range values {
			values[i].Key = LeadingNumber(values[i].Value)
		}
		slices.SortStableFunc(values, func(a, b types.Lookup) int {
			if c := cmp.Compare(a.Key, b.Key); c != 0 {
				return c
			}
			return strings.Compare(a.Value, b.Value)
		})
	case SortFloatPrefix:
		for i := range values {
			v, _ := ParseFloatPrefix(values[i].Value)
			values[i].Key = v
		}
		sort.Stable(values)
	case SortOrderingKey:
		for i := range values {
			if math.IsNaN(values[i].Key) {
				values[i].Key = math.Inf(1)
			}
		}
		sort.Stable(values)
	}
	return values.Values()
}

// SortStrings is SortValues for plain values.
func SortStrings(kind SortKind, values []string) []string {
	lookups := make(types.ByValue, len(values))
	for i, v := range values {
		lookups[i] = types.Lookup{Value: v, Key: math.Inf(1)}
	}
	return SortValues(kind, lookups)
}
