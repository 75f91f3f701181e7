package types

// Lookup pairs an option value with the number it is ordered by.
type Lookup struct {
	Value string
	Key   float64
}

// ByValue orders lookups by key. Use with sort.Stable so equal keys keep
// their encounter order.
type ByValue []Lookup

func (a ByValue) Len() int           { return len(a) }
func (a ByValue) Less(i, j int) bool { return a[i].Key < a[j].Key }
func (a ByValue) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }

func (a ByValue) Values() []string {
	ret := make([]string, len(a))
	for i, l := range a {
		ret[i] = l.Value
	}
	return ret
}
