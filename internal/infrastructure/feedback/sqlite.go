package feedback

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/listwise/backend/internal/domain"
)

// SQLiteStore persists feedback and learned aliases in SQLite so learning
// survives restarts. The alias and tally tables are mirrored into memory
// at open; LookupAlias reads only the mirror and never touches the
// database.
type SQLiteStore struct {
	db                 *sql.DB
	promotionThreshold int

	mutex   sync.RWMutex
	aliases map[string]*domain.LearnedAlias
	tallies map[string]map[string]int
}

// NewSQLiteStore opens (creating if needed) the feedback database at dbPath
func NewSQLiteStore(dbPath string, promotionThreshold int) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("%w: empty database path", domain.ErrFeedbackStore)
	}
	if promotionThreshold <= 0 {
		promotionThreshold = domain.AliasPromotionThreshold
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStore{
		db:                 db,
		promotionThreshold: promotionThreshold,
		aliases:            make(map[string]*domain.LearnedAlias),
		tallies:            make(map[string]map[string]int),
	}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.warmMirror(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS feedback_log (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			normalized TEXT NOT NULL,
			suggested_id TEXT NOT NULL,
			correction_id TEXT,
			accepted INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_log_normalized ON feedback_log(normalized)`,

		`CREATE TABLE IF NOT EXISTS correction_tallies (
			term TEXT NOT NULL,
			product_id TEXT NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (term, product_id)
		)`,

		`CREATE TABLE IF NOT EXISTS learned_aliases (
			term TEXT PRIMARY KEY,
			product_id TEXT NOT NULL,
			weight REAL NOT NULL,
			supporting_count INTEGER NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

// warmMirror loads the alias and tally tables into memory
func (s *SQLiteStore) warmMirror() error {
	rows, err := s.db.Query(`SELECT term, product_id, weight, supporting_count, updated_at FROM learned_aliases`)
	if err != nil {
		return fmt.Errorf("failed to load aliases: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var alias domain.LearnedAlias
		if err := rows.Scan(&alias.Term, &alias.ProductID, &alias.Weight, &alias.SupportingCount, &alias.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan alias: %w", err)
		}
		a := alias
		s.aliases[alias.Term] = &a
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read aliases: %w", err)
	}

	tallyRows, err := s.db.Query(`SELECT term, product_id, count FROM correction_tallies`)
	if err != nil {
		return fmt.Errorf("failed to load tallies: %w", err)
	}
	defer func() { _ = tallyRows.Close() }()

	for tallyRows.Next() {
		var t domain.CorrectionTally
		if err := tallyRows.Scan(&t.Term, &t.ProductID, &t.Count); err != nil {
			return fmt.Errorf("failed to scan tally: %w", err)
		}
		if s.tallies[t.Term] == nil {
			s.tallies[t.Term] = make(map[string]int)
		}
		s.tallies[t.Term][t.ProductID] = t.Count
	}
	if err := tallyRows.Err(); err != nil {
		return fmt.Errorf("failed to read tallies: %w", err)
	}
	return nil
}

// RecordFeedback appends the record and advances the alias lifecycle,
// committing the log row, tally, and alias change in one transaction.
// The memory mirror is updated only after the transaction commits.
func (s *SQLiteStore) RecordFeedback(ctx context.Context, rec *domain.FeedbackRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: nil feedback record", domain.ErrInvalidInput)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	// Run the lifecycle against scratch copies so a failed transaction
	// leaves the mirror untouched
	scratchAliases := make(map[string]*domain.LearnedAlias, 1)
	if alias, ok := s.aliases[rec.Normalized]; ok {
		cp := *alias
		scratchAliases[rec.Normalized] = &cp
	}
	scratchTallies := make(map[string]map[string]int, 1)
	if byProduct, ok := s.tallies[rec.Normalized]; ok {
		cp := make(map[string]int, len(byProduct))
		for id, n := range byProduct {
			cp[id] = n
		}
		scratchTallies[rec.Normalized] = cp
	}
	changed, prunedTerm, tallied := applyLifecycle(rec, scratchAliases, scratchTallies, s.promotionThreshold)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", domain.ErrFeedbackStore, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO feedback_log (id, query, normalized, suggested_id, correction_id, accepted, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Query, rec.Normalized, rec.SuggestedID, rec.CorrectionID, rec.Accepted, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: failed to save feedback: %v", domain.ErrFeedbackStore, err)
	}

	if tallied != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO correction_tallies (term, product_id, count)
			VALUES (?, ?, ?)
			ON CONFLICT(term, product_id) DO UPDATE SET
				count = excluded.count
		`, tallied.Term, tallied.ProductID, tallied.Count)
		if err != nil {
			return fmt.Errorf("%w: failed to save tally: %v", domain.ErrFeedbackStore, err)
		}
	}

	if prunedTerm != "" {
		if _, err = tx.ExecContext(ctx, `DELETE FROM learned_aliases WHERE term = ?`, prunedTerm); err != nil {
			return fmt.Errorf("%w: failed to prune alias: %v", domain.ErrFeedbackStore, err)
		}
	}

	if changed != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO learned_aliases (term, product_id, weight, supporting_count, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(term) DO UPDATE SET
				product_id = excluded.product_id,
				weight = excluded.weight,
				supporting_count = excluded.supporting_count,
				updated_at = excluded.updated_at
		`, changed.Term, changed.ProductID, changed.Weight, changed.SupportingCount, changed.UpdatedAt)
		if err != nil {
			return fmt.Errorf("%w: failed to save alias: %v", domain.ErrFeedbackStore, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit feedback: %v", domain.ErrFeedbackStore, err)
	}
	committed = true

	// Update mirror
	if prunedTerm != "" {
		delete(s.aliases, prunedTerm)
	}
	if changed != nil {
		s.aliases[changed.Term] = changed
	}
	if tallied != nil {
		if s.tallies[tallied.Term] == nil {
			s.tallies[tallied.Term] = make(map[string]int)
		}
		s.tallies[tallied.Term][tallied.ProductID] = tallied.Count
	}
	return nil
}

// LookupAlias returns a copy of the learned alias for the term, if any
func (s *SQLiteStore) LookupAlias(term string) (*domain.LearnedAlias, bool) {
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
func (s *SQLiteStore) ListAliases(_ context.Context) ([]*domain.LearnedAlias, error) {
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

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
