package model

import "testing"

func TestNormalizeCategory(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"food", "Food"},
		{"FOOD", "Food"},
		{"  Transport  ", "Transport"},
		{"Food Delivery", "Food"},
		{"grab food", "Food"},
		{"transp", "Transport"},
		{"bill", "Bills"},
		{"school", "School Supplies"},
		{"online shopping", "Shopping"},
		{"entertainment", "Entertainment"},
		{"Pet Care", "Pet Care"},
		{"pet care", "Pet Care"},
		{"vet visits", "Vet Visits"},
		{"", ""},
		{"   ", ""},
	}

	for _, tc := range cases {
		got := NormalizeCategory(tc.input)
		if got != tc.want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestNormalizeCategoryPrefersDeclaredOrder(t *testing.T) {
	// Contains both "food" and "leisure"; Food is declared first.
	if got := NormalizeCategory("leisure food court"); got != "Food" {
		t.Fatalf("NormalizeCategory = %q, want Food", got)
	}
}

func TestDefaultCategories(t *testing.T) {
	if len(DefaultCategories) != 5 {
		t.Fatalf("len(DefaultCategories) = %d, want 5", len(DefaultCategories))
	}
	for _, name := range DefaultCategories {
		if NormalizeCategory(name) != name {
			t.Errorf("default category %q does not normalize to itself", name)
		}
	}
}
