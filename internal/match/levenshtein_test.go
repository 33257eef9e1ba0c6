package match

import (
	"testing"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a        string
		b        string
		expected int
	}{
		{"", "", 0},
		{"city", "city", 0},
		{"", "zip", 3},
		{"zip", "", 3},
		{"city", "citty", 1},
		{"kitten", "sitting", 3},
		{"state", "stat", 1},
		{"café", "cafe", 1},
		{"Weight", "weight", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			result := Levenshtein(tt.a, tt.b)
			if result != tt.expected {
				t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, result, tt.expected)
			}

			if reverse := Levenshtein(tt.b, tt.a); reverse != result {
				t.Errorf("Levenshtein symmetry failed: (%q, %q) = %d, reversed = %d", tt.a, tt.b, result, reverse)
			}
		})
	}
}

func TestLevenshteinNormalized(t *testing.T) {
	tests := []struct {
		a        string
		b        string
		expected float64
	}{
		{"", "", 1.0},
		{"zip", "zip", 1.0},
		{"abc", "xyz", 0.0},
		{"city", "citty", 0.8},
		{"café", "cafe", 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			result := LevenshteinNormalized(tt.a, tt.b)
			if diff := result - tt.expected; diff < -0.001 || diff > 0.001 {
				t.Errorf("LevenshteinNormalized(%q, %q) = %f, want %f", tt.a, tt.b, result, tt.expected)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	if s := Similarity("Load Number", "loadNumber"); s != 1.0 {
		t.Errorf("Similarity after normalization = %f, want 1.0", s)
	}

	if s := Similarity("email", "password"); s >= DefaultSuggestionScore {
		t.Errorf("Similarity(email, password) = %f, want < %f", s, DefaultSuggestionScore)
	}
}

func TestClosest(t *testing.T) {
	got := Closest("Citty", []string{"state", "city", "City Name"}, 2)
	if !stringSliceEqual(got, []string{"city"}) {
		t.Errorf("Closest = %v, want [city]", got)
	}

	got = Closest("zip", []string{"ZIP", "zip", "Zip Code"}, 1)
	if !stringSliceEqual(got, []string{"ZIP"}) {
		t.Errorf("Closest with limit = %v, want [ZIP]", got)
	}

	if got := Closest("anything", nil, 3); len(got) != 0 {
		t.Errorf("Closest with no options = %v, want empty", got)
	}
}

func BenchmarkLevenshtein(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Levenshtein("pickup_appointment_start", "delivery_appointment_end")
	}
}
