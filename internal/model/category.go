package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MajorCategories is the fixed set that free-text category names are folded
// into. Order matters: containment matching picks the first hit.
var MajorCategories = []string{
	"Food",
	"Transport",
	"Leisure",
	"Bills",
	"School Supplies",
	"Shopping",
	"Healthcare",
	"Entertainment",
}

// DefaultCategories are seeded for a user who has none yet.
var DefaultCategories = MajorCategories[:5]

// NormalizeCategory maps free-text input onto a major category. Exact
// case-insensitive matches win, then containment in either direction;
// anything else is kept as a custom category in title case.
func NormalizeCategory(input string) string {
	name := strings.TrimSpace(input)
	if name == "" {
		return ""
	}

	lower := strings.ToLower(name)
	for _, major := range MajorCategories {
		if lower == strings.ToLower(major) {
			return major
		}
	}

	for _, major := range MajorCategories {
		majorLower := strings.ToLower(major)
		if strings.Contains(lower, majorLower) || strings.Contains(majorLower, lower) {
			return major
		}
	}

	return cases.Title(language.English).String(lower)
}
