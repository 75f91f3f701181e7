package types

// BaseField describes one filter dimension as it appears on the page.
type BaseField struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Param       string `json:"param,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
}

// Key returns the form/query key used for this dimension on the page.
func (b *BaseField) Key() string {
	if b.Param != "" {
		return b.Param
	}
	return b.Id
}

// Attribute names read from the product markup.
const (
	Category  = "category"
	Equipment = "equipment"
	Rim       = "rim"
	Size      = "size"
	Pattern   = "pattern"
	TraCode   = "tracode"
	SerialNo  = "serialno"
	Slug      = "slug"
	Ply       = "pr"
)

var ProductAttributes = []string{Category, Equipment, Rim, Size, Pattern, TraCode}
