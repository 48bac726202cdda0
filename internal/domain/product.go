package domain

import "time"

// CatalogProduct is a single entry in the canonical product catalog
type CatalogProduct struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category,omitempty"`
	Unit     string   `json:"unit,omitempty"` // display unit, e.g. "liter", "lb", "dozen", "each"
	Brands   []string `json:"brands,omitempty"`
	Synonyms []string `json:"synonyms,omitempty"`
}

// MatchMethod identifies the resolution stage that produced a match
type MatchMethod string

const (
	MethodExact   MatchMethod = "exact"
	MethodLearned MatchMethod = "learned"
	MethodAlias   MatchMethod = "alias"
	MethodPartial MatchMethod = "partial"
	MethodFuzzy   MatchMethod = "fuzzy"
	MethodNone    MatchMethod = "none"
)

// Quantity is a size or amount extracted from a list entry, e.g. "2l" or "large"
type Quantity struct {
	Raw   string  `json:"raw"`
	Value float64 `json:"value,omitempty"`
	Unit  string  `json:"unit,omitempty"`
}

// MatchQuery carries a raw list entry and the fields derived from it
// as it moves through the resolution pipeline
type MatchQuery struct {
	Raw        string    `json:"raw"`
	Normalized string    `json:"normalized"`
	CorePhrase string    `json:"corePhrase"`
	Brand      string    `json:"brand,omitempty"`
	Quantity   *Quantity `json:"quantity,omitempty"`
}

// MatchResult is the outcome of resolving one list entry against the catalog
type MatchResult struct {
	Query         string      `json:"query"`
	ProductID     string      `json:"productId,omitempty"`
	CanonicalName string      `json:"canonicalName,omitempty"`
	Category      string      `json:"category,omitempty"`
	Confidence    float64     `json:"confidence"`
	Method        MatchMethod `json:"method"`
	Brand         string      `json:"brand,omitempty"`
	Quantity      *Quantity   `json:"quantity,omitempty"`
}

// Matched reports whether the result references a catalog product
func (r MatchResult) Matched() bool {
	return r.ProductID != ""
}

// BatchStats summarizes one MatchList call
type BatchStats struct {
	Total     int           `json:"total"`
	Matched   int           `json:"matched"`
	Unmatched int           `json:"unmatched"`
	Distinct  int           `json:"distinct"` // unique normalized queries resolved
	Elapsed   time.Duration `json:"elapsed"`
}

// BatchResult partitions a list of entries into matched and unmatched,
// preserving input order within each partition
type BatchResult struct {
	Matched   []MatchResult `json:"matched"`
	Unmatched []string      `json:"unmatched"`
	Stats     BatchStats    `json:"stats"`
}
