package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/listwise/backend/internal/domain"
)

// FileSource loads the product catalog from a JSON file holding an array
// of products. The file is read in full on every load; the engine keeps
// its own snapshot between loads.
type FileSource struct {
	path string
}

// NewFileSource creates a catalog source reading from the given path
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// LoadProducts reads and validates the catalog file
func (s *FileSource) LoadProducts(_ context.Context) ([]domain.CatalogProduct, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogSource, err)
	}

	var products []domain.CatalogProduct
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", domain.ErrCatalogSource, s.path, err)
	}

	if err := validateProducts(products); err != nil {
		return nil, err
	}
	return products, nil
}

// validateProducts enforces the catalog contract: every product has a
// unique non-empty id and a non-empty name
func validateProducts(products []domain.CatalogProduct) error {
	seen := make(map[string]bool, len(products))
	for i, p := range products {
		if p.ID == "" {
			return fmt.Errorf("%w: product %d has no id", domain.ErrCatalogSource, i)
		}
		if p.Name == "" {
			return fmt.Errorf("%w: product %q has no name", domain.ErrCatalogSource, p.ID)
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate product id %q", domain.ErrCatalogSource, p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}
