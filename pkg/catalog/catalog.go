// Package catalog reads the product listing markup (or one of its exports)
// into an immutable set of items.
package catalog

import (
	"errors"
	"time"

	"github.com/matst80/tyre-finder/pkg/types"
)

var ErrNoProducts = errors.New("no products found")

// Catalog is one loaded snapshot. Nothing in it changes after load.
type Catalog struct {
	Products []*types.Item `json:"products"`
	Rows     []*types.Item `json:"rows,omitempty"`
	Source   string        `json:"source"`
	LoadedAt time.Time     `json:"loadedAt"`
}

// VisibleCount is the number of products not rendered hidden.
func (c *Catalog) VisibleCount() int {
	count := 0
	for _, item := range c.Products {
		if !item.Hidden {
			count++
		}
	}
	return count
}

// FindByValue returns the first product whose whole value for dimension
// equals value.
func (c *Catalog) FindByValue(dimension, value string) (*types.Item, bool) {
	for _, item := range c.Products {
		if item.RawValue(dimension) == value {
			return item, true
		}
	}
	return nil, false
}

func (c *Catalog) FindByIdentifier(identifier string) (*types.Item, bool) {
	for _, item := range c.Products {
		if item.Identifier == identifier {
			return item, true
		}
	}
	return nil, false
}

func (c *Catalog) IsEmpty() bool {
	return c == nil || len(c.Products) == 0
}
