package usecase

import (
	"regexp"
	"strings"
)

// Compiled patterns for text normalization
var (
	// Everything outside lowercase letters, digits, and spaces
	nonAlnumPattern = regexp.MustCompile(`[^a-z0-9 ]+`)

	// Whitespace runs (tabs and newlines are folded by the charset strip first)
	multiSpacePattern = regexp.MustCompile(` {2,}`)
)

// pluralExceptions are domain nouns the catalog keys on in plural form;
// singularizing them would split the query and the catalog apart
var pluralExceptions = map[string]bool{
	"eggs":     true,
	"oats":     true,
	"grits":    true,
	"greens":   true,
	"molasses": true,
}

// esSuffixes are compound plural endings where the whole "es" is dropped
// (tomatoes, peaches, glasses) rather than the bare trailing "s"
var esSuffixes = []string{"sses", "xes", "zes", "ches", "shes", "oes"}

// Normalize canonicalizes a raw list entry: lowercase, strip everything
// outside [a-z0-9 ], collapse whitespace, and singularize each token.
// Blank input yields the empty string, which resolves downstream as no
// match. Normalize is idempotent.
func Normalize(raw string) string {
	lowered := strings.ToLower(raw)
	// Fold tabs and newlines into spaces before the charset strip so word
	// boundaries survive
	lowered = strings.Join(strings.Fields(lowered), " ")
	cleaned := nonAlnumPattern.ReplaceAllString(lowered, " ")
	cleaned = multiSpacePattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return ""
	}

	words := strings.Fields(cleaned)
	for i, word := range words {
		words[i] = singularize(word)
	}
	return strings.Join(words, " ")
}

// singularize folds common plural suffixes so "apples" and "apple" meet at
// the same form. Catalog names pass through the same fold, so systematic
// quirks ("cookies" -> "cooky") cancel out on both sides.
func singularize(word string) string {
	if pluralExceptions[word] {
		return word
	}

	if len(word) > 4 && strings.HasSuffix(word, "ies") {
		return word[:len(word)-3] + "y"
	}
	if len(word) > 4 {
		for _, suffix := range esSuffixes {
			if strings.HasSuffix(word, suffix) {
				return word[:len(word)-2]
			}
		}
	}
	if len(word) > 3 && strings.HasSuffix(word, "s") &&
		!strings.HasSuffix(word, "ss") && !strings.HasSuffix(word, "us") {
		return word[:len(word)-1]
	}
	return word
}
