package grocery

import (
	"slices"
	"testing"

	"github.com/ecopantry/ecopantry/internal/model"
)

func TestCategorizeExactMatch(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"milk", "dairy"},
		{"chicken", "meat"},
		{"bread", "grains"},
		{"rice", "grains"},
		{"coffee", "beverages"},
		{"chips", "snacks"},
		{"apple", "fruits"},
		{"spinach", "vegetables"},
	}
	for _, tt := range tests {
		got := Categorize(tt.input)
		if got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCategorizeSubstringMatch(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"chicken breast", "meat"},
		{"boneless chicken thighs", "meat"},
		{"whole wheat bread", "grains"},
		{"organic baby spinach", "vegetables"},
		{"sparkling water bottles", "beverages"},
		{"canned black beans", "vegetables"},
		{"greek yogurt cups", "dairy"},
		{"oat milk barista", "beverages"},
		{"crunchy peanut butter", "snacks"},
		{"frozen blueberries", "fruits"},
	}
	for _, tt := range tests {
		got := Categorize(tt.input)
		if got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCategorizeCaseInsensitive(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"MILK", "dairy"},
		{"Chicken", "meat"},
		{"  Bananas  ", "fruits"},
	}
	for _, tt := range tests {
		got := Categorize(tt.input)
		if got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCategorizeFallback(t *testing.T) {
	for _, input := range []string{"", "   ", "xylophone", "batteries"} {
		if got := Categorize(input); got != Other {
			t.Errorf("Categorize(%q) = %q, want %q", input, got, Other)
		}
	}
}

func TestCategoriesAreKnown(t *testing.T) {
	for name, cat := range exactMatch {
		if !slices.Contains(model.FoodCategories, cat) {
			t.Errorf("exact %q maps to unknown category %q", name, cat)
		}
	}
	for _, e := range substringMatches {
		if !slices.Contains(model.FoodCategories, e.category) {
			t.Errorf("substring %q maps to unknown category %q", e.keyword, e.category)
		}
	}
}
