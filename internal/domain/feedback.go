package domain

import "time"

// FeedbackRecord is one user verdict on a suggested match
type FeedbackRecord struct {
	ID           string    `json:"id"`
	Query        string    `json:"query"`
	Normalized   string    `json:"normalized"`
	SuggestedID  string    `json:"suggestedProductId"`
	CorrectionID string    `json:"correctionProductId,omitempty"`
	Accepted     bool      `json:"accepted"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsCorrection reports whether the record rejects the suggestion in favor
// of a specific other product
func (r FeedbackRecord) IsCorrection() bool {
	return !r.Accepted && r.CorrectionID != ""
}

// Alias lifecycle. A (term, product) pairing starts Unconfirmed, represented
// by a correction tally. Once the tally reaches the promotion threshold the
// pairing becomes a LearnedAlias served during matching. Supporting feedback
// reinforces the weight, contradicting feedback decays it, and an alias that
// decays below the prune floor is removed.
const (
	AliasBirthWeight   = 0.8  // below 1.0 so a catalog exact match always outranks it
	AliasWeightCap     = 0.95 // reinforcement never reaches exact-match territory
	AliasReinforceStep = 0.05
	AliasDecayStep     = 0.15
	AliasPruneFloor    = 0.3

	// AliasPromotionThreshold is how many corrections a pairing needs
	// before it is promoted to a served alias
	AliasPromotionThreshold = 3
)

// LearnedAlias maps a normalized query term to the product users meant
type LearnedAlias struct {
	Term            string    `json:"term"`
	ProductID       string    `json:"productId"`
	Weight          float64   `json:"weight"`
	SupportingCount int       `json:"supportingCount"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// NewLearnedAlias promotes a correction tally into a served alias
func NewLearnedAlias(term, productID string, supportingCount int) *LearnedAlias {
	return &LearnedAlias{
		Term:            term,
		ProductID:       productID,
		Weight:          AliasBirthWeight,
		SupportingCount: supportingCount,
		UpdatedAt:       time.Now().UTC(),
	}
}

// Reinforce strengthens the alias after feedback supporting it
func (a *LearnedAlias) Reinforce() {
	a.SupportingCount++
	a.Weight += AliasReinforceStep
	if a.Weight > AliasWeightCap {
		a.Weight = AliasWeightCap
	}
	a.UpdatedAt = time.Now().UTC()
}

// Decay weakens the alias after feedback contradicting it and reports
// whether the alias has dropped below the prune floor
func (a *LearnedAlias) Decay() bool {
	a.Weight -= AliasDecayStep
	a.UpdatedAt = time.Now().UTC()
	return a.Weight < AliasPruneFloor
}

// Lapsed reports whether the alias has decayed below the accept threshold
// and no longer serves at resolution time
func (a *LearnedAlias) Lapsed(acceptThreshold float64) bool {
	return a.Weight < acceptThreshold
}

// CorrectionTally counts rejected-with-correction feedback for a
// (term, product) pairing that has not yet been promoted
type CorrectionTally struct {
	Term      string `json:"term"`
	ProductID string `json:"productId"`
	Count     int    `json:"count"`
}
