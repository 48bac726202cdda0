package domain

import "context"

// FeedbackStore persists feedback records and maintains the learned alias
// table. Implementations serialize writes; LookupAlias is safe to call
// concurrently with writes and never performs I/O. Persistence failures
// from RecordFeedback wrap ErrFeedbackStore.
type FeedbackStore interface {
	RecordFeedback(ctx context.Context, rec *FeedbackRecord) error
	LookupAlias(term string) (*LearnedAlias, bool)
	ListAliases(ctx context.Context) ([]*LearnedAlias, error)
	Close() error
}

// CatalogSource loads the product catalog from a backing source.
// The engine never reads a source directly; a snapshot is loaded up front
// and refreshed out of band.
type CatalogSource interface {
	LoadProducts(ctx context.Context) ([]CatalogProduct, error)
}
