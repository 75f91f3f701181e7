package types

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

type ItemId uint32

// Item is one product (or table row) read from the listing markup. Items are
// never mutated after the catalog that owns them has been built.
type Item struct {
	Id          ItemId              `json:"id"`
	Identifier  string              `json:"identifier"`
	Attributes  map[string][]string `json:"attributes"`
	Raw         map[string]string   `json:"raw,omitempty"`
	OrderingKey float64             `json:"-"`
	HasKey      bool                `json:"hasKey,omitempty"`
	Hidden      bool                `json:"hidden,omitempty"`
}

// NewItem builds an item from raw attribute strings. Values are split on ","
// into trimmed, non-empty, de-duplicated tokens.
func NewItem(id ItemId, identifier string, raw map[string]string) *Item {
	item := &Item{
		Id:          id,
		Identifier:  identifier,
		Attributes:  make(map[string][]string, len(raw)),
		Raw:         make(map[string]string, len(raw)),
		OrderingKey: math.Inf(1),
	}
	for name, value := range raw {
		value = strings.TrimSpace(value)
		item.Raw[name] = value
		item.Attributes[name] = SplitTokens(value)
	}
	return item
}

func (i *Item) GetId() ItemId {
	return i.Id
}

// Values returns the tokens for a dimension, nil when the item has none.
func (i *Item) Values(dimension string) []string {
	return i.Attributes[dimension]
}

func (i *Item) RawValue(dimension string) string {
	return i.Raw[dimension]
}

func (i *Item) HasValue(dimension, value string) bool {
	return slices.Contains(i.Attributes[dimension], value)
}

// SetOrderingKey parses a serial number. Unparseable input leaves the key at
// +Inf so the item sorts last.
func (i *Item) SetOrderingKey(serial string) {
	v, err := strconv.ParseFloat(strings.TrimSpace(serial), 64)
	if err != nil || math.IsNaN(v) {
		i.OrderingKey = math.Inf(1)
		i.HasKey = false
		return
	}
	i.OrderingKey = v
	i.HasKey = true
}

// SplitTokens splits a comma separated attribute string.
func SplitTokens(value string) []string {
	if value == "" {
		return nil
	}
	ret := make([]string, 0, strings.Count(value, ",")+1)
	for part := range strings.SplitSeq(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" || slices.Contains(ret, part) {
			continue
		}
		ret = append(ret, part)
	}
	if len(ret) == 0 {
		return nil
	}
	return ret
}
