package feedback

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/listwise/backend/internal/domain"
)

// MemoryStore is a thread-safe in-process feedback store. Records and
// learned aliases live only as long as the process; it backs tests and
// deployments that accept relearning on restart.
type MemoryStore struct {
	promotionThreshold int

	mutex   sync.RWMutex
	records []*domain.FeedbackRecord
	aliases map[string]*domain.LearnedAlias
	tallies map[string]map[string]int
}

// NewMemoryStore creates an empty in-memory feedback store
func NewMemoryStore(promotionThreshold int) *MemoryStore {
	if promotionThreshold <= 0 {
		promotionThreshold = domain.AliasPromotionThreshold
	}
	return &MemoryStore{
		promotionThreshold: promotionThreshold,
		aliases:            make(map[string]*domain.LearnedAlias),
		tallies:            make(map[string]map[string]int),
	}
}

// RecordFeedback appends the record and advances the alias lifecycle
func (s *MemoryStore) RecordFeedback(_ context.Context, rec *domain.FeedbackRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: nil feedback record", domain.ErrInvalidInput)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.records = append(s.records, rec)
	applyLifecycle(rec, s.aliases, s.tallies, s.promotionThreshold)
	return nil
}

// LookupAlias returns a copy of the learned alias for the term, if any.
// A copy keeps concurrent lifecycle updates from racing with readers.
func (s *MemoryStore) LookupAlias(term string) (*domain.LearnedAlias, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	alias, exists := s.aliases[term]
	if !exists {
		return nil, false
	}
	out := *alias
	return &out, true
}

// ListAliases returns all learned aliases ordered by term
func (s *MemoryStore) ListAliases(_ context.Context) ([]*domain.LearnedAlias, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]*domain.LearnedAlias, 0, len(s.aliases))
	for _, alias := range s.aliases {
		cp := *alias
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Term < out[j].Term })
	return out, nil
}

// Size returns the number of feedback records held (for debugging/monitoring)
func (s *MemoryStore) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.records)
}

// Close is a no-op; nothing is held outside process memory
func (s *MemoryStore) Close() error {
	return nil
}
