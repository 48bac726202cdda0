package usecase

import "github.com/listwise/backend/internal/domain"

// Scoring adjustments applied after stage resolution
const (
	brandMatchBonus    = 0.05 // extracted brand is one of the product's known brands
	unitMatchBonus     = 0.05 // extracted quantity unit fits the product's unit
	shortPhrasePenalty = 0.1  // core phrase under 3 runes carries little signal
	minCorePhraseLen   = 3
)

// adjustConfidence applies the brand, unit, and short-phrase adjustments to
// a stage confidence and clamps the result to [0,1]. The method tag is
// never changed here. Exact matches are pinned at 1.0 and a miss stays at
// 0, so neither is adjusted.
func adjustConfidence(res resolution, q domain.MatchQuery, ix *catalogIndex) float64 {
	if res.method == domain.MethodExact || res.method == domain.MethodNone {
		return res.confidence
	}

	conf := res.confidence
	if q.Brand != "" && ix.hasBrand(res.product.ID, q.Brand) {
		conf += brandMatchBonus
	}
	if q.Quantity != nil && unitCompatible(q.Quantity.Unit, res.product.Unit) {
		conf += unitMatchBonus
	}
	if len([]rune(q.CorePhrase)) < minCorePhraseLen {
		conf -= shortPhrasePenalty
	}

	if conf < 0 {
		return 0
	}
	if conf > 1 {
		return 1
	}
	return conf
}
