package catalog

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/matst80/tyre-finder/pkg/types"
)

const (
	ProductSelector   = ".product-data"
	ContainerSelector = ".collection-list-item"
	TableRowSelector  = "#res_table tbody tr"
	HiddenClass       = "hidden"
)

// productAttributes are read from data-* attributes of each product marker.
var productAttributes = append(append([]string{}, types.ProductAttributes...), types.SerialNo, types.Slug)

// NewItemFromRaw builds a product from raw attribute strings. Ids are
// assigned by the caller in document order.
func NewItemFromRaw(id types.ItemId, raw map[string]string) *types.Item {
	slug := strings.TrimSpace(raw[types.Slug])
	identifier := slug
	if identifier == "" {
		identifier = fmt.Sprintf("item-%d", id)
	}
	item := types.NewItem(id, identifier, raw)
	if serial, ok := raw[types.SerialNo]; ok {
		item.SetOrderingKey(serial)
	}
	return item
}

// ProductsFromSelection reads every product marker below root.
func ProductsFromSelection(root *goquery.Selection) []*types.Item {
	items := make([]*types.Item, 0)
	root.Find(ProductSelector).Each(func(i int, s *goquery.Selection) {
		raw := make(map[string]string, len(productAttributes))
		for _, name := range productAttributes {
			if value, exists := s.Attr("data-" + name); exists {
				raw[name] = value
			}
		}
		item := NewItemFromRaw(types.ItemId(len(items)+1), raw)
		if container := s.Closest(ContainerSelector); container.Length() > 0 {
			item.Hidden = container.HasClass(HiddenClass)
		}
		items = append(items, item)
	})
	return items
}

// LoadTable reads the size table rows. A page without the table gives no rows.
func LoadTable(root *goquery.Selection) []*types.Item {
	rows := make([]*types.Item, 0)
	root.Find(TableRowSelector).Each(func(i int, s *goquery.Selection) {
		raw := make(map[string]string, 2)
		for _, name := range []string{types.Size, types.Ply} {
			if value, exists := s.Attr("data-" + name); exists {
				raw[name] = value
			}
		}
		id := types.ItemId(len(rows) + 1)
		identifier, exists := s.Attr("id")
		if !exists || identifier == "" {
			identifier = fmt.Sprintf("row-%d", id)
		}
		rows = append(rows, types.NewItem(id, identifier, raw))
	})
	return rows
}

func FromDocument(doc *goquery.Document, source string) *Catalog {
	return &Catalog{
		Products: ProductsFromSelection(doc.Selection),
		Rows:     LoadTable(doc.Selection),
		Source:   source,
		LoadedAt: time.Now(),
	}
}

func ParseHtml(r io.Reader, source string) (*Catalog, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return FromDocument(doc, source), nil
}
