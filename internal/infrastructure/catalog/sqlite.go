package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/listwise/backend/internal/domain"
)

// SQLiteSource loads the product catalog from a SQLite database. Brands
// and synonyms live in side tables keyed by product id.
type SQLiteSource struct {
	db *sql.DB
}

// NewSQLiteSource opens (creating if needed) the catalog database at dbPath
func NewSQLiteSource(dbPath string) (*SQLiteSource, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("%w: empty database path", domain.ErrCatalogSource)
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

	s := &SQLiteSource{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteSource) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT,
			unit TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS product_brands (
			product_id TEXT NOT NULL,
			brand TEXT NOT NULL,
			PRIMARY KEY (product_id, brand),
			FOREIGN KEY (product_id) REFERENCES products(id)
		)`,

		`CREATE TABLE IF NOT EXISTS product_synonyms (
			product_id TEXT NOT NULL,
			synonym TEXT NOT NULL,
			PRIMARY KEY (product_id, synonym),
			FOREIGN KEY (product_id) REFERENCES products(id)
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

// LoadProducts reads the full catalog, products in id order
func (s *SQLiteSource) LoadProducts(ctx context.Context) ([]domain.CatalogProduct, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(category, ''), COALESCE(unit, '')
		FROM products
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying products: %v", domain.ErrCatalogSource, err)
	}
	defer func() { _ = rows.Close() }()

	var products []domain.CatalogProduct
	index := make(map[string]int)
	for rows.Next() {
		var p domain.CatalogProduct
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Unit); err != nil {
			return nil, fmt.Errorf("%w: scanning product: %v", domain.ErrCatalogSource, err)
		}
		index[p.ID] = len(products)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading products: %v", domain.ErrCatalogSource, err)
	}

	if err := s.attach(ctx, "product_brands", "brand", index, products, func(p *domain.CatalogProduct, v string) {
		p.Brands = append(p.Brands, v)
	}); err != nil {
		return nil, err
	}
	if err := s.attach(ctx, "product_synonyms", "synonym", index, products, func(p *domain.CatalogProduct, v string) {
		p.Synonyms = append(p.Synonyms, v)
	}); err != nil {
		return nil, err
	}

	if err := validateProducts(products); err != nil {
		return nil, err
	}
	return products, nil
}

// attach folds one side table into the product slice
func (s *SQLiteSource) attach(ctx context.Context, table, column string, index map[string]int, products []domain.CatalogProduct, add func(*domain.CatalogProduct, string)) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT product_id, %s FROM %s ORDER BY product_id, %s
	`, column, table, column))
	if err != nil {
		return fmt.Errorf("%w: querying %s: %v", domain.ErrCatalogSource, table, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var productID, value string
		if err := rows.Scan(&productID, &value); err != nil {
			return fmt.Errorf("%w: scanning %s: %v", domain.ErrCatalogSource, table, err)
		}
		if i, ok := index[productID]; ok {
			add(&products[i], value)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: reading %s: %v", domain.ErrCatalogSource, table, err)
	}
	return nil
}

// SaveProducts replaces the stored catalog wholesale in one transaction
func (s *SQLiteSource) SaveProducts(ctx context.Context, products []domain.CatalogProduct) error {
	if err := validateProducts(products); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"product_brands", "product_synonyms", "products"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, p := range products {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO products (id, name, category, unit) VALUES (?, ?, ?, ?)
		`, p.ID, p.Name, p.Category, p.Unit)
		if err != nil {
			return fmt.Errorf("failed to save product %q: %w", p.ID, err)
		}
		for _, b := range p.Brands {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO product_brands (product_id, brand) VALUES (?, ?)
			`, p.ID, b); err != nil {
				return fmt.Errorf("failed to save brand for %q: %w", p.ID, err)
			}
		}
		for _, syn := range p.Synonyms {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO product_synonyms (product_id, synonym) VALUES (?, ?)
			`, p.ID, syn); err != nil {
				return fmt.Errorf("failed to save synonym for %q: %w", p.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog: %w", err)
	}
	committed = true
	return nil
}

// Close closes the database connection
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}
