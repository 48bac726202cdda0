package usecase

import (
	"testing"

	"github.com/listwise/backend/internal/domain"
)

func TestDamerauDistance(t *testing.T) {
	testCases := []struct {
		s1   string
		s2   string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"same", "same", 0},
		{"chiken", "chicken", 1},   // insertion
		{"chickenn", "chicken", 1}, // deletion
		{"chocken", "chicken", 1},  // substitution
		{"teh", "the", 1},          // adjacent transposition is one edit
		{"ab", "ba", 1},
		{"caf", "fac", 2},
		{"kitten", "sitting", 3},
		{"mlik", "milk", 1},
	}

	for _, tc := range testCases {
		got := damerauDistance(tc.s1, tc.s2)
		if got != tc.want {
			t.Errorf("damerauDistance(%q, %q) = %d, want %d", tc.s1, tc.s2, got, tc.want)
		}
	}
}

func TestCorrectPhrase(t *testing.T) {
	ix := buildIndex(testCatalog(), nil)

	testCases := []struct {
		name   string
		phrase string
		want   string
	}{
		{
			name:   "single typo corrected",
			phrase: "chiken breast",
			want:   "chicken breast",
		},
		{
			name:   "transposition corrected",
			phrase: "mlik",
			want:   "milk",
		},
		{
			name:   "two typos in one phrase",
			phrase: "chiken brest",
			want:   "chicken breast",
		},
		{
			name:   "vocabulary word untouched",
			phrase: "whole milk",
			want:   "whole milk",
		},
		{
			name:   "short word skipped",
			phrase: "oi milk",
			want:   "oi milk",
		},
		{
			name:   "numeric word skipped",
			phrase: "12 mlik",
			want:   "12 milk",
		},
		{
			name:   "nothing within the edit budget",
			phrase: "zzzzzzz",
			want:   "zzzzzzz",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := correctPhrase(tc.phrase, ix)
			if got != tc.want {
				t.Errorf("correctPhrase(%q) = %q, want %q", tc.phrase, got, tc.want)
			}
		})
	}
}

func TestCorrectPhraseDeterministicTie(t *testing.T) {
	// "breat" is one edit from both "bread" and "breast"; the
	// lexicographically smaller token must win every time
	ix := buildIndex([]domain.CatalogProduct{
		{ID: "bread", Name: "Bread"},
		{ID: "breast", Name: "Breast"},
	}, nil)

	for i := 0; i < 10; i++ {
		if got := correctPhrase("breat", ix); got != "bread" {
			t.Fatalf("correctPhrase(%q) = %q, want %q", "breat", got, "bread")
		}
	}
}
