package usecase

import (
	"strings"

	"github.com/listwise/backend/internal/domain"
)

// Stage confidence levels. Later stages are less certain, so their base
// confidence is lower; the fuzzy stage maps similarity into a band that
// stays strictly below the alias level.
const (
	aliasConfidence   = 0.9
	partialConfidence = 0.75
	fuzzyBandFloor    = 0.5
	fuzzyBandWidth    = 0.35

	// partialRatioGate rejects containments where the shorter string is
	// under 40% of the longer one ("tea" inside "steak sauce")
	partialRatioGate = 0.4
)

// resolution is the outcome of the staged ladder before score adjustment
type resolution struct {
	product    *domain.CatalogProduct
	confidence float64
	method     domain.MatchMethod
}

// resolve runs the short-circuiting stage ladder for one query: exact
// canonical name, learned alias, synonym, partial containment, then typo
// correction feeding fuzzy similarity. First hit wins; ties inside a stage
// go to the lexicographically smaller product id.
func (e *Engine) resolve(q domain.MatchQuery, ix *catalogIndex) resolution {
	if q.CorePhrase == "" {
		return resolution{method: domain.MethodNone}
	}

	if p := ix.lookupName(q.CorePhrase, q.Normalized); p != nil {
		return resolution{p, 1.0, domain.MethodExact}
	}

	if p, weight := e.lookupLearned(q, ix); p != nil {
		return resolution{p, weight, domain.MethodLearned}
	}

	if p := ix.lookupSynonym(q.CorePhrase, q.Normalized); p != nil {
		return resolution{p, aliasConfidence, domain.MethodAlias}
	}

	if p := partialMatch(q.CorePhrase, ix); p != nil {
		return resolution{p, partialConfidence, domain.MethodPartial}
	}

	// An exact hit was ruled out above, so from here the query is treated
	// as approximate: a corrected phrase that lands exactly on a canonical
	// name still reports as fuzzy, at the top of the fuzzy band.
	phrases := []string{q.CorePhrase}
	if corrected := correctPhrase(q.CorePhrase, ix); corrected != q.CorePhrase {
		phrases = append(phrases, corrected)
	}
	if p, sim := bestFuzzy(phrases, ix, e.cfg.FuzzyThreshold); p != nil {
		return resolution{p, fuzzyBandFloor + fuzzyBandWidth*sim, domain.MethodFuzzy}
	}

	return resolution{method: domain.MethodNone}
}

// lookupLearned consults the feedback store's alias table for the core
// phrase and the full normalized text. Aliases below the accept threshold
// and aliases pointing at products no longer in the catalog are skipped.
func (e *Engine) lookupLearned(q domain.MatchQuery, ix *catalogIndex) (*domain.CatalogProduct, float64) {
	if e.store == nil {
		return nil, 0
	}
	terms := []string{q.CorePhrase}
	if q.Normalized != q.CorePhrase {
		terms = append(terms, q.Normalized)
	}
	for _, term := range terms {
		alias, ok := e.store.LookupAlias(term)
		if !ok || alias.Lapsed(e.cfg.LearnedAcceptThreshold) {
			continue
		}
		if p, exists := ix.byID[alias.ProductID]; exists {
			return p, alias.Weight
		}
	}
	return nil, 0
}

// partialMatch scans canonical names for containment in either direction,
// gated by the length ratio. Names are in id order, so the first hit is
// the tie-break winner.
func partialMatch(core string, ix *catalogIndex) *domain.CatalogProduct {
	for _, entry := range ix.canonicals {
		if !strings.Contains(entry.text, core) && !strings.Contains(core, entry.text) {
			continue
		}
		if lengthRatio(core, entry.text) < partialRatioGate {
			continue
		}
		return entry.product
	}
	return nil
}

// lengthRatio is shorter over longer in runes
func lengthRatio(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	if la > lb {
		la, lb = lb, la
	}
	if lb == 0 {
		return 0
	}
	return float64(la) / float64(lb)
}

// bestFuzzy finds the highest-similarity candidate over canonical names and
// synonyms for any of the given phrases. Similarity must strictly exceed
// the threshold. Equal similarity on different products keeps the smaller
// product id.
func bestFuzzy(phrases []string, ix *catalogIndex, threshold float64) (*domain.CatalogProduct, float64) {
	var best *domain.CatalogProduct
	bestSim := 0.0

	consider := func(entry indexedName, phrase string, tokens []string) {
		sim := editRatio(phrase, entry.text)
		if j := jaccard(tokens, entry.tokens); j > sim {
			sim = j
		}
		if sim > bestSim || (sim == bestSim && best != nil && entry.product.ID < best.ID) {
			best = entry.product
			bestSim = sim
		}
	}

	for _, phrase := range phrases {
		tokens := strings.Fields(phrase)
		for _, entry := range ix.canonicals {
			consider(entry, phrase, tokens)
		}
		for _, entry := range ix.synonyms {
			consider(entry, phrase, tokens)
		}
	}

	if best == nil || bestSim <= threshold {
		return nil, 0
	}
	return best, bestSim
}

// editRatio is 1 - distance/longer, the whole-phrase similarity in [0,1]
func editRatio(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	longer := la
	if lb > longer {
		longer = lb
	}
	if longer == 0 {
		return 0
	}
	return 1 - float64(damerauDistance(a, b))/float64(longer)
}

// jaccard is token-set intersection over union
func jaccard(tokens1, tokens2 []string) float64 {
	if len(tokens1) == 0 || len(tokens2) == 0 {
		return 0
	}
	set1 := make(map[string]bool, len(tokens1))
	for _, t := range tokens1 {
		set1[t] = true
	}
	common := 0
	union := len(set1)
	seen2 := make(map[string]bool, len(tokens2))
	for _, t := range tokens2 {
		if seen2[t] {
			continue
		}
		seen2[t] = true
		if set1[t] {
			common++
		} else {
			union++
		}
	}
	return float64(common) / float64(union)
}
