package usecase

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/listwise/backend/internal/domain"
)

// Compiled patterns for attribute extraction. These run on normalized text,
// so only [a-z0-9 ] can appear and units are already singular.
var (
	// Numeric value with a measurement unit, attached or spaced
	// ("2l", "500 g", "12 fl oz", "1 gallon")
	quantityPattern = regexp.MustCompile(`\b(\d+) ?(fl oz|kilogram|gallon|ounce|pound|liter|litre|quart|count|dozen|each|pack|pint|gram|gal|kg|ml|oz|lb|ct|pk|qt|pt|ea|l|g)\b`)
)

// sizeWords are qualitative size descriptors stripped from the core phrase
// unless the catalog itself uses them
var sizeWords = map[string]bool{
	"large":  true,
	"medium": true,
	"small":  true,
	"mini":   true,
	"jumbo":  true,
	"giant":  true,
	"big":    true,
	"xl":     true,
	"dozen":  true,
}

// sizePhrases are multi-word size descriptors, checked before single words
var sizePhrases = []string{
	"family pack",
	"family size",
	"value pack",
	"party size",
	"half dozen",
}

// Unit dimension classes for quantity/product compatibility
const (
	dimVolume = "volume"
	dimWeight = "weight"
	dimCount  = "count"
)

var unitDimensions = map[string]string{
	"l": dimVolume, "ml": dimVolume, "liter": dimVolume, "litre": dimVolume,
	"gal": dimVolume, "gallon": dimVolume, "qt": dimVolume, "quart": dimVolume,
	"pt": dimVolume, "pint": dimVolume, "fl oz": dimVolume,
	"g": dimWeight, "gram": dimWeight, "kg": dimWeight, "kilogram": dimWeight,
	"oz": dimWeight, "ounce": dimWeight, "lb": dimWeight, "pound": dimWeight,
	"ct": dimCount, "count": dimCount, "pk": dimCount, "pack": dimCount,
	"dozen": dimCount, "each": dimCount, "ea": dimCount,
}

// unitCompatible reports whether a query unit and a product unit measure the
// same dimension. Unitless quantities are never compatible.
func unitCompatible(queryUnit, productUnit string) bool {
	if queryUnit == "" || productUnit == "" {
		return false
	}
	qd := unitDimensions[queryUnit]
	pd := unitDimensions[Normalize(productUnit)]
	return qd != "" && qd == pd
}

// buildQuery derives the pipeline fields for one raw list entry: normalized
// text, extracted quantity and brand, and the remaining core phrase.
// Quantity tokens are stripped first, then brands, greedily longest first.
// Extraction is idempotent: re-extracting a core phrase changes nothing.
func buildQuery(raw string, ix *catalogIndex) domain.MatchQuery {
	q := domain.MatchQuery{Raw: raw}
	q.Normalized = Normalize(raw)
	q.CorePhrase = q.Normalized
	if q.Normalized == "" {
		return q
	}

	q.CorePhrase, q.Quantity = extractQuantity(q.CorePhrase, ix)
	q.Brand, q.CorePhrase = extractBrand(q.CorePhrase, ix)
	return q
}

// extractQuantity strips quantity tokens from the phrase and returns the
// first one found: numeric value plus unit, then qualitative size phrases
// and words, then bare counts. A token that is itself catalog vocabulary is
// left in place, so "large" survives when the catalog names use it.
func extractQuantity(phrase string, ix *catalogIndex) (string, *domain.Quantity) {
	var qty *domain.Quantity

	matches := quantityPattern.FindAllStringSubmatchIndex(phrase, -1)
	if len(matches) > 0 {
		var b strings.Builder
		last := 0
		for _, m := range matches {
			text := phrase[m[0]:m[1]]
			if anyTokenInVocab(text, ix) {
				continue
			}
			b.WriteString(phrase[last:m[0]])
			last = m[1]
			if qty == nil {
				value, _ := strconv.ParseFloat(phrase[m[2]:m[3]], 64)
				qty = &domain.Quantity{Raw: text, Value: value, Unit: phrase[m[4]:m[5]]}
			}
		}
		b.WriteString(phrase[last:])
		phrase = collapseSpaces(b.String())
	}

	for _, sp := range sizePhrases {
		for {
			i := phraseIndex(phrase, sp)
			if i < 0 {
				break
			}
			if anyTokenInVocab(sp, ix) {
				break
			}
			phrase = collapseSpaces(phrase[:i] + phrase[i+len(sp):])
			if qty == nil {
				qty = &domain.Quantity{Raw: sp}
			}
		}
	}

	words := strings.Fields(phrase)
	kept := words[:0]
	for _, word := range words {
		switch {
		case sizeWords[word] && !ix.vocab[word]:
			if qty == nil {
				qty = &domain.Quantity{Raw: word}
			}
		case isNumeric(word) && !ix.vocab[word]:
			if qty == nil {
				value, _ := strconv.ParseFloat(word, 64)
				qty = &domain.Quantity{Raw: word, Value: value}
			}
		default:
			kept = append(kept, word)
		}
	}
	return strings.Join(kept, " "), qty
}

// extractBrand removes the first known brand phrase from the phrase,
// longest brand first, and returns it alongside the remaining core.
// A brand that is the entire phrase is echoed but not stripped, so a
// brand-only entry still has something to resolve.
func extractBrand(phrase string, ix *catalogIndex) (string, string) {
	for _, entry := range ix.brands {
		i := phraseIndex(phrase, entry.phrase)
		if i < 0 {
			continue
		}
		rest := collapseSpaces(phrase[:i] + phrase[i+len(entry.phrase):])
		if rest == "" {
			return entry.phrase, phrase
		}
		return entry.phrase, rest
	}
	return "", phrase
}

// phraseIndex returns the byte offset of phrase in s on word boundaries,
// or -1 when absent
func phraseIndex(s, phrase string) int {
	if phrase == "" {
		return -1
	}
	from := 0
	for {
		i := strings.Index(s[from:], phrase)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(phrase)
		startOK := i == 0 || s[i-1] == ' '
		endOK := end == len(s) || s[end] == ' '
		if startOK && endOK {
			return i
		}
		from = i + 1
	}
}

// anyTokenInVocab reports whether any token of the text is catalog
// vocabulary
func anyTokenInVocab(text string, ix *catalogIndex) bool {
	for _, tok := range strings.Fields(text) {
		if ix.vocab[tok] {
			return true
		}
	}
	return false
}

// isNumeric checks if a string contains only digits
func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// collapseSpaces folds whitespace runs left behind by token removal
func collapseSpaces(s string) string {
	return strings.TrimSpace(multiSpacePattern.ReplaceAllString(s, " "))
}
