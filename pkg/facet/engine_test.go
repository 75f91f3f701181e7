package facet

import (
	"context"
	"slices"
	"testing"

	"github.com/matst80/tyre-finder/pkg/types"
)

func testFields() []*KeyField {
	return []*KeyField{
		{BaseField: &types.BaseField{Id: types.Category}, Match: MatchNormalized},
		{BaseField: &types.BaseField{Id: types.Equipment}},
		{BaseField: &types.BaseField{Id: types.Rim}, Sort: SortRim},
		{BaseField: &types.BaseField{Id: types.Size}, Sort: SortSize},
		{BaseField: &types.BaseField{Id: types.Pattern}, Sort: SortOrderingKey},
	}
}

func testItem(id types.ItemId, serial string, raw map[string]string) *types.Item {
	item := types.NewItem(id, raw[types.Pattern], raw)
	if serial != "" {
		item.SetOrderingKey(serial)
	}
	return item
}

func testCatalog() []*types.Item {
	return []*types.Item{
		testItem(1, "5", map[string]string{
			types.Category:  "Car / SUV",
			types.Equipment: "Tubeless",
			types.Rim:       "R15, R16",
			types.Size:      "195/65R15, 205/55R16",
			types.Pattern:   "X",
		}),
		testItem(2, "", map[string]string{
			types.Category:  "Truck",
			types.Equipment: "Tube Type, Tubeless",
			types.Rim:       "R22.5, 8-Hole",
			types.Size:      "11R22.5",
			types.Pattern:   "Y",
		}),
		testItem(3, "1", map[string]string{
			types.Category: "Car / SUV, Truck",
			types.Rim:      "R16",
			types.Size:     "205/55R16",
			types.Pattern:  "Z",
		}),
	}
}

func ids(items []*types.Item) []types.ItemId {
	ret := make([]types.ItemId, len(items))
	for i, item := range items {
		ret[i] = item.Id
	}
	return ret
}

func TestSingleItemScenario(t *testing.T) {
	item := types.NewItem(1, "a", map[string]string{
		types.Category: "car",
		types.Size:     "16,17",
		types.Pattern:  "P1",
	})
	engine := NewEngine([]*types.Item{item}, testFields()...)
	ctx := context.Background()

	filtered := engine.Filter(ctx, types.Selection{types.Category: "car"})
	if len(filtered) != 1 || filtered[0].Identifier != "a" {
		t.Errorf("Expected [a], got %v", filtered)
	}
	sizes := engine.DeriveOptions(ctx, types.Selection{types.Category: "car"}, types.Size)
	if !slices.Equal(sizes.Values, []string{"16", "17"}) {
		t.Errorf("Expected [16 17], got %v", sizes.Values)
	}

	filtered = engine.Filter(ctx, types.Selection{types.Size: "18"})
	if len(filtered) != 0 {
		t.Errorf("Expected no items, got %v", filtered)
	}
}

func TestFilterMatchesPredicate(t *testing.T) {
	engine := NewEngine(testCatalog(), testFields()...)
	selections := []types.Selection{
		{},
		{types.Category: "car-suv"},
		{types.Category: "Car/SUV", types.Rim: "R16"},
		{types.Equipment: "Tubeless"},
		{types.Equipment: "Tubeless", types.Size: "11R22.5"},
		{types.Pattern: "Q"},
		{"unknown": "value"},
	}
	for _, sel := range selections {
		filtered := engine.Filter(context.Background(), sel)
		expected := make([]types.ItemId, 0)
		for _, item := range engine.Items() {
			if engine.Matches(item, sel) {
				expected = append(expected, item.Id)
			}
		}
		if !slices.Equal(ids(filtered), expected) {
			t.Errorf("Expected %v for %v, got %v", expected, sel, ids(filtered))
		}
	}
}

func TestFilterNormalizedCategory(t *testing.T) {
	engine := NewEngine(testCatalog(), testFields()...)
	for _, category := range []string{"Car / SUV", "car/suv", "  CAR // SUV  ", "car-suv"} {
		got := ids(engine.Filter(context.Background(), types.Selection{types.Category: category}))
		if !slices.Equal(got, []types.ItemId{1, 3}) {
			t.Errorf("Expected [1 3] for %q, got %v", category, got)
		}
	}
}

func TestFilterIsIdempotent(t *testing.T) {
	engine := NewEngine(testCatalog(), testFields()...)
	sel := types.Selection{types.Category: "truck", types.Equipment: "Tubeless"}
	ctx := context.Background()
	first, firstOptions := engine.Options(ctx, sel)
	second, secondOptions := engine.Options(ctx, sel)
	if !slices.Equal(ids(first), ids(second)) {
		t.Errorf("Expected %v, got %v", ids(first), ids(second))
	}
	for dim, opts := range firstOptions {
		if !slices.Equal(opts.Values, secondOptions[dim].Values) {
			t.Errorf("Expected %v for %s, got %v", opts.Values, dim, secondOptions[dim].Values)
		}
	}
}

func TestDeriveExcludesOwnConstraint(t *testing.T) {
	engine := NewEngine(testCatalog(), testFields()...)
	ctx := context.Background()
	base := types.Selection{types.Category: "car-suv"}
	withRim := types.Selection{types.Category: "car-suv", types.Rim: "R15"}

	a := engine.DeriveOptions(ctx, base, types.Rim)
	b := engine.DeriveOptions(ctx, withRim, types.Rim)
	if !slices.Equal(a.Values, b.Values) {
		t.Errorf("Expected %v, got %v", a.Values, b.Values)
	}
	if !slices.Equal(a.Values, []string{"R15", "R16"}) {
		t.Errorf("Expected [R15 R16], got %v", a.Values)
	}

	sizes := engine.DeriveOptions(ctx, withRim, types.Size)
	if !slices.Equal(sizes.Values, []string{"195/65R15", "205/55R16"}) {
		t.Errorf("Expected item 1 sizes, got %v", sizes.Values)
	}
}

func TestPatternOptionsFollowSerial(t *testing.T) {
	engine := NewEngine(testCatalog(), testFields()...)
	patterns := engine.DeriveOptions(context.Background(), types.Selection{}, types.Pattern)
	expected := []string{"Z", "X", "Y"}
	if !slices.Equal(patterns.Values, expected) {
		t.Errorf("Expected %v, got %v", expected, patterns.Values)
	}
}

func TestRimOptionsOrder(t *testing.T) {
	engine := NewEngine(testCatalog(), testFields()...)
	rims := engine.DeriveOptions(context.Background(), nil, types.Rim)
	expected := []string{"R15", "R16", "R22.5", "8-Hole"}
	if !slices.Equal(rims.Values, expected) {
		t.Errorf("Expected %v, got %v", expected, rims.Values)
	}
}

func TestRequiredField(t *testing.T) {
	fields := testFields()
	fields[0].Required = true
	engine := NewEngine(testCatalog(), fields...)
	if got := engine.Filter(context.Background(), types.Selection{types.Rim: "R16"}); len(got) != 0 {
		t.Errorf("Expected no items without category, got %v", ids(got))
	}
	if got := engine.Filter(context.Background(), types.Selection{types.Category: "truck"}); len(got) != 2 {
		t.Errorf("Expected 2 items, got %v", ids(got))
	}
}

func TestMissingPlaceholder(t *testing.T) {
	fields := testFields()
	fields[1].Missing = "No Equipment Available"
	fields[1].Derive = DeriveFromFiltered
	engine := NewEngine(testCatalog(), fields...)
	ctx := context.Background()

	_, options := engine.Options(ctx, types.Selection{types.Category: "car-suv"})
	expected := []string{"No Equipment Available", "Tubeless"}
	if !slices.Equal(options[types.Equipment].Values, expected) {
		t.Errorf("Expected %v, got %v", expected, options[types.Equipment].Values)
	}
	if got := engine.Filter(ctx, types.Selection{types.Equipment: "No Equipment Available"}); len(got) != 0 {
		t.Errorf("Expected placeholder to match nothing, got %v", ids(got))
	}
	if engine.Matches(engine.Items()[2], types.Selection{types.Equipment: "No Equipment Available"}) {
		t.Errorf("Expected item without equipment not to match the placeholder")
	}
}

func TestWholeValueOptions(t *testing.T) {
	fields := []*KeyField{
		{BaseField: &types.BaseField{Id: types.Category}, Match: MatchWhole, Whole: true, Derive: DeriveFromCatalog},
		{BaseField: &types.BaseField{Id: types.Rim}, Sort: SortFloatPrefix, Derive: DeriveFromFiltered},
	}
	engine := NewEngine(testCatalog(), fields...)
	ctx := context.Background()

	filtered, options := engine.Options(ctx, types.Selection{types.Category: "Truck"})
	if !slices.Equal(ids(filtered), []types.ItemId{2}) {
		t.Errorf("Expected [2], got %v", ids(filtered))
	}
	categories := []string{"Car / SUV", "Car / SUV, Truck", "Truck"}
	if !slices.Equal(options[types.Category].Values, categories) {
		t.Errorf("Expected %v, got %v", categories, options[types.Category].Values)
	}
}

func TestReconcile(t *testing.T) {
	previous := types.Selection{types.Rim: "R15", types.Size: "11R22.5", types.Category: "truck"}
	options := map[string]Options{
		types.Rim:  {Field: types.Rim, Values: []string{"R15", "R16"}},
		types.Size: {Field: types.Size, Values: []string{"205/55R16"}},
	}
	got := Reconcile(previous, options)
	if got.Get(types.Rim) != "R15" {
		t.Errorf("Expected rim to be kept, got %v", got)
	}
	if got.IsSet(types.Size) {
		t.Errorf("Expected size to be reset, got %v", got)
	}
	if got.Get(types.Category) != "truck" {
		t.Errorf("Expected category untouched, got %v", got)
	}
}
