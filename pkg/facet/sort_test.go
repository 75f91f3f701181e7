package facet

import (
	"math"
	"slices"
	"testing"

	"github.com/matst80/tyre-finder/pkg/types"
)

func TestRimSorting(t *testing.T) {
	got := SortStrings(SortRim, []string{"R15", "8-Hole", "R9"})
	expected := []string{"R9", "R15", "8-Hole"}
	if !slices.Equal(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestRimSortingKeepsTies(t *testing.T) {
	got := SortStrings(SortRim, []string{"Split", "R16", "16", "8-Hole"})
	expected := []string{"R16", "16", "Split", "8-Hole"}
	if !slices.Equal(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestSizeSorting(t *testing.T) {
	got := SortStrings(SortSize, []string{"7.00-16", "6.50-16", "N/A", "10.00-20", "6.50-15"})
	expected := []string{"6.50-15", "6.50-16", "7.00-16", "10.00-20", "N/A"}
	if !slices.Equal(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestFloatPrefixSorting(t *testing.T) {
	got := SortStrings(SortFloatPrefix, []string{"20", "R16", "9.5", "16"})
	// R16 parses as 0
	expected := []string{"R16", "9.5", "16", "20"}
	if !slices.Equal(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestOrderingKeySorting(t *testing.T) {
	values := types.ByValue{
		{Value: "X", Key: 5},
		{Value: "Y", Key: math.Inf(1)},
		{Value: "Z", Key: 1},
	}
	got := SortValues(SortOrderingKey, values)
	expected := []string{"Z", "X", "Y"}
	if !slices.Equal(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestLexicalSorting(t *testing.T) {
	got := SortStrings(SortLexical, []string{"Tubeless", "Tube Type", "Radial"})
	expected := []string{"Radial", "Tube Type", "Tubeless"}
	if !slices.Equal(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestParseFloatPrefix(t *testing.T) {
	cases := map[string]float64{
		"16":      16,
		" 22.5in": 22.5,
		"7.00-16": 7,
		"-3":      -3,
		".5":      0.5,
	}
	for input, expected := range cases {
		got, ok := ParseFloatPrefix(input)
		if !ok || got != expected {
			t.Errorf("Expected %v for %q, got %v (%v)", expected, input, got, ok)
		}
	}
	if _, ok := ParseFloatPrefix("R16"); ok {
		t.Errorf("Expected R16 to not parse")
	}
}
