package usecase

import "strings"

// Typo correction limits
const (
	maxEditDistance   = 2 // Damerau-Levenshtein budget per word
	minCorrectableLen = 3 // shorter words produce too many false positives
)

// correctPhrase replaces each misspelled word with the closest catalog
// vocabulary token within the edit budget. Words already in vocabulary,
// short words, and numeric words are untouched. Candidates are ranked by
// distance, then lexicographically, so correction is deterministic.
func correctPhrase(phrase string, ix *catalogIndex) string {
	words := strings.Fields(phrase)
	memo := make(map[string]string, len(words))
	changed := false

	for i, word := range words {
		if len([]rune(word)) < minCorrectableLen || isNumeric(word) || ix.vocab[word] {
			continue
		}
		best, seen := memo[word]
		if !seen {
			best = closestVocabToken(word, ix)
			memo[word] = best
		}
		if best != "" {
			words[i] = best
			changed = true
		}
	}

	if !changed {
		return phrase
	}
	return strings.Join(words, " ")
}

// closestVocabToken scans the vocabulary for the nearest token within the
// edit budget, or returns "" when nothing qualifies
func closestVocabToken(word string, ix *catalogIndex) string {
	best := ""
	bestDist := maxEditDistance + 1

	for _, tok := range ix.vocabList {
		if lengthGap(word, tok) > maxEditDistance {
			continue
		}
		d := damerauDistance(word, tok)
		if d < bestDist {
			bestDist = d
			best = tok
		}
	}
	return best
}

// lengthGap is the absolute rune-length difference, a lower bound on edit
// distance used to skip hopeless candidates
func lengthGap(a, b string) int {
	diff := len([]rune(a)) - len([]rune(b))
	if diff < 0 {
		diff = -diff
	}
	return diff
}

// damerauDistance computes edit distance counting an adjacent transposition
// as a single edit. Three rolling rows instead of the full matrix.
func damerauDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}
	r1 := []rune(s1)
	r2 := []rune(s2)
	m, n := len(r1), len(r2)
	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	prevPrev := make([]int, n+1)
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			d := min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
			if i > 1 && j > 1 && r1[i-1] == r2[j-2] && r1[i-2] == r2[j-1] {
				d = min(d, prevPrev[j-2]+1) // transposition
			}
			curr[j] = d
		}
		prevPrev, prev, curr = prev, curr, prevPrev
	}

	return prev[n]
}
