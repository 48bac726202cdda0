package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/listwise/backend/internal/domain"
)

// Default engine options
const (
	DefaultFuzzyThreshold         = 0.6
	DefaultLearnedAcceptThreshold = 0.8
	DefaultPromotionThreshold     = domain.AliasPromotionThreshold
	DefaultMaxBatchSize           = 100
	DefaultWorkers                = 4
)

// Config bundles the tunable options of the matching engine. Zero values
// fall back to the defaults above.
type Config struct {
	FuzzyThreshold         float64  // fuzzy acceptance, strictly-greater comparison
	LearnedAcceptThreshold float64  // minimum learned alias weight served at stage one
	PromotionThreshold     int      // corrections before an alias is learned; consumed by store constructors
	MaxBatchSize           int      // MatchList upper bound
	Workers                int      // batch resolution parallelism
	ExtraBrands            []string // brand lexicon additions beyond catalog brands
	Logger                 *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.FuzzyThreshold <= 0 {
		c.FuzzyThreshold = DefaultFuzzyThreshold
	}
	if c.LearnedAcceptThreshold <= 0 {
		c.LearnedAcceptThreshold = DefaultLearnedAcceptThreshold
	}
	if c.PromotionThreshold <= 0 {
		c.PromotionThreshold = DefaultPromotionThreshold
	}
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = DefaultMaxBatchSize
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Engine resolves free-text grocery list entries against an immutable
// catalog snapshot, with learned aliases supplied by a feedback store.
// All dependencies are injected; there is no package-level state.
type Engine struct {
	cfg    Config
	store  domain.FeedbackStore
	logger *slog.Logger

	mu    sync.RWMutex
	index *catalogIndex
}

// NewEngine builds an engine over a catalog snapshot. The snapshot is
// indexed once here; ReplaceCatalog swaps it wholesale. store may be nil
// for callers that neither learn aliases nor record feedback.
func NewEngine(cfg Config, products []domain.CatalogProduct, store domain.FeedbackStore) *Engine {
	cfg = cfg.withDefaults()
	return &Engine{
		cfg:    cfg,
		store:  store,
		logger: cfg.Logger,
		index:  buildIndex(products, cfg.ExtraBrands),
	}
}

// ReplaceCatalog installs a freshly loaded snapshot. In-flight resolutions
// keep the snapshot they started with.
func (e *Engine) ReplaceCatalog(products []domain.CatalogProduct) {
	ix := buildIndex(products, e.cfg.ExtraBrands)
	e.mu.Lock()
	e.index = ix
	e.mu.Unlock()
	e.logger.Info("catalog snapshot replaced", "products", len(products))
}

// CatalogSize reports the product count of the current snapshot
func (e *Engine) CatalogSize() int {
	return len(e.snapshot().products)
}

func (e *Engine) snapshot() *catalogIndex {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.index
}

// FindBestMatch resolves a single list entry. Matching is pure CPU over
// the snapshot, so there is no context and no error path: an unresolvable
// entry yields method "none" with confidence 0.
func (e *Engine) FindBestMatch(query string) domain.MatchResult {
	return e.matchAgainst(e.snapshot(), query)
}

// matchAgainst runs the pipeline for one entry against a fixed snapshot.
// Batch resolution uses one snapshot for the whole call.
func (e *Engine) matchAgainst(ix *catalogIndex, query string) domain.MatchResult {
	q := buildQuery(query, ix)
	res := e.resolve(q, ix)

	result := domain.MatchResult{
		Query:      query,
		Confidence: adjustConfidence(res, q, ix),
		Method:     res.method,
		Brand:      q.Brand,
		Quantity:   q.Quantity,
	}
	if res.product != nil {
		result.ProductID = res.product.ID
		result.CanonicalName = res.product.Name
		result.Category = res.product.Category
	}

	e.logger.Debug("query resolved",
		"query", query,
		"method", result.Method,
		"product", result.ProductID,
		"confidence", result.Confidence,
	)
	return result
}

// RecordFeedback appends a feedback record and lets the store apply the
// alias lifecycle. The returned error concerns persistence only; it is
// independent of any match result already delivered to the caller.
func (e *Engine) RecordFeedback(ctx context.Context, query, suggestedID, correctionID string, accepted bool) (*domain.FeedbackRecord, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if suggestedID == "" {
		return nil, fmt.Errorf("%w: missing suggested product id", domain.ErrInvalidInput)
	}
	if e.store == nil {
		return nil, fmt.Errorf("%w: no store configured", domain.ErrFeedbackStore)
	}

	rec := &domain.FeedbackRecord{
		ID:           uuid.NewString(),
		Query:        query,
		Normalized:   Normalize(query),
		SuggestedID:  suggestedID,
		CorrectionID: correctionID,
		Accepted:     accepted,
		CreatedAt:    time.Now().UTC(),
	}
	if err := e.store.RecordFeedback(ctx, rec); err != nil {
		return nil, err
	}

	e.logger.Debug("feedback recorded",
		"query", query,
		"accepted", accepted,
		"correction", correctionID,
	)
	return rec, nil
}

// ListAliases exposes the learned alias table for admin surfaces
func (e *Engine) ListAliases(ctx context.Context) ([]*domain.LearnedAlias, error) {
	if e.store == nil {
		return nil, nil
	}
	return e.store.ListAliases(ctx)
}

// GetAlias looks up the learned alias for one term. The term is normalized
// first, so the lookup key matches whatever a feedback submission would
// have produced. Lapsed aliases are still returned; the admin surface sees
// state the resolver skips.
func (e *Engine) GetAlias(term string) (*domain.LearnedAlias, error) {
	normalized := Normalize(term)
	if normalized == "" {
		return nil, fmt.Errorf("%w: empty term", domain.ErrInvalidInput)
	}
	if e.store == nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrAliasNotFound, normalized)
	}
	alias, ok := e.store.LookupAlias(normalized)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrAliasNotFound, normalized)
	}
	return alias, nil
}
