package usecase

import (
	"fmt"
	"sync"
	"time"

	"github.com/listwise/backend/internal/domain"
)

// MatchList resolves a list of entries through the per-item pipeline.
// Entries that normalize to the same form are resolved once; the memo never
// outlives the call. Every item lands in exactly one of Matched/Unmatched,
// both in input order, and a blank or unresolvable item goes to Unmatched
// rather than aborting the batch.
func (e *Engine) MatchList(items []string) (*domain.BatchResult, error) {
	if len(items) > e.cfg.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d items, limit %d", domain.ErrBatchTooLarge, len(items), e.cfg.MaxBatchSize)
	}

	start := time.Now()
	ix := e.snapshot()

	keys := make([]string, len(items))
	unique := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		keys[i] = Normalize(item)
		if !seen[keys[i]] {
			seen[keys[i]] = true
			unique = append(unique, keys[i])
		}
	}

	memo := e.resolveUnique(ix, unique)

	result := &domain.BatchResult{
		Matched:   make([]domain.MatchResult, 0, len(items)),
		Unmatched: make([]string, 0),
	}
	for i, item := range items {
		r := memo[keys[i]]
		r.Query = item
		if r.Matched() {
			result.Matched = append(result.Matched, r)
		} else {
			result.Unmatched = append(result.Unmatched, item)
		}
	}

	result.Stats = domain.BatchStats{
		Total:     len(items),
		Matched:   len(result.Matched),
		Unmatched: len(result.Unmatched),
		Distinct:  len(unique),
		Elapsed:   time.Since(start),
	}

	e.logger.Info("batch resolved",
		"total", result.Stats.Total,
		"matched", result.Stats.Matched,
		"unmatched", result.Stats.Unmatched,
		"distinct", result.Stats.Distinct,
		"elapsed", result.Stats.Elapsed,
	)
	return result, nil
}

// resolveUnique fans the unique normalized queries over a bounded worker
// pool and returns the memo table. The table is keyed, not ordered, so
// results are identical regardless of worker scheduling.
func (e *Engine) resolveUnique(ix *catalogIndex, unique []string) map[string]domain.MatchResult {
	memo := make(map[string]domain.MatchResult, len(unique))

	workers := e.cfg.Workers
	if workers > len(unique) {
		workers = len(unique)
	}
	if workers <= 1 {
		for _, key := range unique {
			memo[key] = e.matchAgainst(ix, key)
		}
		return memo
	}

	workChan := make(chan string, len(unique))
	for _, key := range unique {
		workChan <- key
	}
	close(workChan)

	type keyedResult struct {
		key string
		res domain.MatchResult
	}
	resultsChan := make(chan keyedResult, len(unique))

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for key := range workChan {
				resultsChan <- keyedResult{key, e.matchAgainst(ix, key)}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for r := range resultsChan {
		memo[r.key] = r.res
	}
	return memo
}
