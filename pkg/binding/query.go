package binding

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/matst80/tyre-finder/pkg/facet"
	"github.com/matst80/tyre-finder/pkg/types"
)

// ListingParams are the query keys that constrain the listing.
var ListingParams = []string{types.Category, types.Equipment, types.Rim, types.Size, types.Pattern}

// SafeDecode percent-decodes s with '+' as space. Malformed escapes and
// escapes that decode to invalid UTF-8 leave s unchanged.
func SafeDecode(s string) string {
	decoded, err := url.PathUnescape(strings.ReplaceAll(s, "+", " "))
	if err != nil || !utf8.ValidString(decoded) {
		return s
	}
	return decoded
}

// ParseQuery splits a raw query string on '&' and '='. Parameters with an
// empty value are dropped, a later duplicate key wins.
func ParseQuery(rawQuery string) map[string]string {
	params := make(map[string]string)
	rawQuery = strings.TrimPrefix(rawQuery, "?")
	for part := range strings.SplitSeq(rawQuery, "&") {
		if part == "" {
			continue
		}
		item := strings.Split(part, "=")
		key := SafeDecode(item[0])
		value := ""
		if len(item) > 1 {
			value = SafeDecode(item[1])
		}
		if value != "" {
			params[key] = value
		}
	}
	return params
}

// ListingSelection keeps the recognised keys, with category normalized.
func ListingSelection(params map[string]string) types.Selection {
	sel := make(types.Selection, len(ListingParams))
	for _, key := range ListingParams {
		if value, ok := params[key]; ok {
			if key == types.Category {
				value = facet.NormalizeCategory(value)
			}
			sel.Set(key, value)
		}
	}
	return sel
}
