package catalog

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listwise/backend/internal/domain"
)

func newTestHTTPSource(baseURL string) *HTTPSource {
	return NewHTTPSource(baseURL, "test-api-key", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNewHTTPSource(t *testing.T) {
	source := NewHTTPSource("https://catalog.example.com", "test-api-key", nil)

	assert.NotNil(t, source)
	assert.Equal(t, "https://catalog.example.com", source.baseURL)
	assert.Equal(t, "test-api-key", source.apiKey)
	assert.NotNil(t, source.httpClient)
	assert.NotNil(t, source.limiter)
	assert.NotNil(t, source.logger)
}

func TestBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, 1000 * time.Millisecond},
		{3, 2000 * time.Millisecond},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, backoff(tt.attempt))
	}
}

func TestHTTPSource_LoadProducts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/products", r.URL.Path)
		assert.Equal(t, "test-api-key", r.URL.Query().Get("api_key"))

		products := []domain.CatalogProduct{
			{ID: "milk_whole", Name: "Whole Milk", Category: "dairy", Unit: "liter", Synonyms: []string{"milk"}},
			{ID: "sauce_bbq", Name: "BBQ Sauce", Category: "condiments", Unit: "each", Brands: []string{"Sweet Baby Ray's"}},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(products)
	}))
	defer server.Close()

	source := newTestHTTPSource(server.URL)

	products, err := source.LoadProducts(context.Background())

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "milk_whole", products[0].ID)
	assert.Equal(t, "Whole Milk", products[0].Name)
	assert.Equal(t, []string{"milk"}, products[0].Synonyms)
	assert.Equal(t, "sauce_bbq", products[1].ID)
	assert.Equal(t, []string{"Sweet Baby Ray's"}, products[1].Brands)
}

func TestHTTPSource_RetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]domain.CatalogProduct{{ID: "one", Name: "One"}})
	}))
	defer server.Close()

	source := newTestHTTPSource(server.URL)

	products, err := source.LoadProducts(context.Background())

	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPSource_NotFoundFailsFast(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	source := newTestHTTPSource(server.URL)

	products, err := source.LoadProducts(context.Background())

	assert.Nil(t, products)
	assert.ErrorIs(t, err, domain.ErrCatalogSource)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPSource_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	source := newTestHTTPSource(server.URL)

	products, err := source.LoadProducts(context.Background())

	assert.Nil(t, products)
	assert.ErrorIs(t, err, domain.ErrCatalogSource)
}

func TestHTTPSource_RejectsInvalidCatalog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id": "dup", "name": "A"}, {"id": "dup", "name": "B"}]`))
	}))
	defer server.Close()

	source := newTestHTTPSource(server.URL)

	products, err := source.LoadProducts(context.Background())

	assert.Nil(t, products)
	assert.ErrorIs(t, err, domain.ErrCatalogSource)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestHTTPSource_EmptyCatalog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	source := newTestHTTPSource(server.URL)

	products, err := source.LoadProducts(context.Background())

	require.NoError(t, err)
	assert.Empty(t, products)
}
