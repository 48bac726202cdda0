package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/listwise/backend/internal/domain"
)

// HTTPSource fetches the product catalog from a catalog service endpoint.
// The service serves the full catalog as a JSON array at /v1/products.
type HTTPSource struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewHTTPSource creates a catalog source backed by a catalog service.
// apiKey may be empty for unauthenticated deployments.
func NewHTTPSource(baseURL, apiKey string, logger *slog.Logger) *HTTPSource {
	if logger == nil {
		logger = slog.Default()
	}

	// Catalog services allow 60 requests per minute; reloads are rare
	// enough that 1 req/sec with a small burst never throttles in practice
	limiter := rate.NewLimiter(rate.Limit(1), 5)

	return &HTTPSource{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
		limiter: limiter,
		logger:  logger,
	}
}

// backoff returns the sleep before the next retry, doubling per attempt
func backoff(attempt int) time.Duration {
	return 500 * time.Millisecond << (attempt - 1)
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (s *HTTPSource) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Listwise/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogSource, err)
	}

	return resp, nil
}

// LoadProducts fetches and validates the full catalog. Transient failures
// are retried up to 3 times; a 404 fails fast because the endpoint is
// misconfigured rather than overloaded.
func (s *HTTPSource) LoadProducts(ctx context.Context) ([]domain.CatalogProduct, error) {
	endpoint := fmt.Sprintf("%s/v1/products", s.baseURL)
	params := url.Values{}
	if s.apiKey != "" {
		params.Add("api_key", s.apiKey)
	}

	reqURL := endpoint
	if len(params) > 0 {
		reqURL = fmt.Sprintf("%s?%s", endpoint, params.Encode())
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := s.doRequest(ctx, reqURL)
		if err != nil {
			s.logger.Warn("catalog fetch failed", "attempt", attempt, "error", err)
			lastErr = err
			time.Sleep(backoff(attempt))
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: catalog endpoint not found: %s", domain.ErrCatalogSource, endpoint)
		}
		if resp.StatusCode != http.StatusOK {
			s.logger.Warn("catalog fetch failed", "attempt", attempt, "status", resp.StatusCode)
			lastErr = fmt.Errorf("%w: status %d", domain.ErrCatalogSource, resp.StatusCode)
			time.Sleep(backoff(attempt))
			continue
		}

		var products []domain.CatalogProduct
		if err := json.Unmarshal(body, &products); err != nil {
			return nil, fmt.Errorf("%w: parsing response: %v", domain.ErrCatalogSource, err)
		}

		if err := validateProducts(products); err != nil {
			return nil, err
		}

		s.logger.Debug("catalog fetched", "products", len(products))
		return products, nil
	}

	return nil, lastErr
}
