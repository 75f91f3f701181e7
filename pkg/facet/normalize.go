package facet

import (
	"regexp"
	"strings"
)

var (
	slashRun      = regexp.MustCompile(`\s*/+\s*`)
	whitespaceRun = regexp.MustCompile(`\s+`)
	invalidChars  = regexp.MustCompile(`[^a-z0-9-]`)
)

// NormalizeCategory turns a category label into its comparison key, so that
// "Car / SUV", "car/suv" and "  CAR // SUV  " all become "car-suv".
func NormalizeCategory(category string) string {
	s := strings.ToLower(strings.TrimSpace(category))
	s = slashRun.ReplaceAllString(s, "-")
	s = whitespaceRun.ReplaceAllString(s, "-")
	return invalidChars.ReplaceAllString(s, "")
}
