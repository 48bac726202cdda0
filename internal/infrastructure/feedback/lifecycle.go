package feedback

import "github.com/listwise/backend/internal/domain"

// applyLifecycle advances the alias state machine for one feedback record,
// mutating the alias and tally tables in place. It returns the alias that
// was created or updated, the term whose alias was pruned, and the tally
// that changed, so a persistent store can mirror exactly what happened.
// Both stores funnel every record through here; the maps are the single
// source of truth for lifecycle decisions.
func applyLifecycle(rec *domain.FeedbackRecord, aliases map[string]*domain.LearnedAlias, tallies map[string]map[string]int, promotionThreshold int) (changed *domain.LearnedAlias, prunedTerm string, tallied *domain.CorrectionTally) {
	term := rec.Normalized
	if term == "" {
		return nil, "", nil
	}
	alias := aliases[term]

	switch {
	case rec.IsCorrection():
		byProduct := tallies[term]
		if byProduct == nil {
			byProduct = make(map[string]int)
			tallies[term] = byProduct
		}
		byProduct[rec.CorrectionID]++
		count := byProduct[rec.CorrectionID]
		tallied = &domain.CorrectionTally{Term: term, ProductID: rec.CorrectionID, Count: count}

		switch {
		case alias == nil:
			if count >= promotionThreshold {
				changed = domain.NewLearnedAlias(term, rec.CorrectionID, count)
				aliases[term] = changed
			}
		case alias.ProductID == rec.CorrectionID:
			alias.Reinforce()
			changed = alias
		default:
			// The incumbent points elsewhere. Decay it; once it falls
			// below the prune floor a rival with enough corrections
			// takes over the term.
			if alias.Decay() {
				delete(aliases, term)
				prunedTerm = term
				if count >= promotionThreshold {
					changed = domain.NewLearnedAlias(term, rec.CorrectionID, count)
					aliases[term] = changed
				}
			} else {
				changed = alias
			}
		}

	case rec.Accepted:
		if alias != nil && alias.ProductID == rec.SuggestedID {
			alias.Reinforce()
			changed = alias
		}

	default:
		// Rejected with no correction named. Only an alias that produced
		// the rejected suggestion is implicated.
		if alias != nil && alias.ProductID == rec.SuggestedID {
			if alias.Decay() {
				delete(aliases, term)
				prunedTerm = term
			} else {
				changed = alias
			}
		}
	}

	return changed, prunedTerm, tallied
}
