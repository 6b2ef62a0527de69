package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"catalog-service/internal/models"
	"catalog-service/internal/util"
)

// Source fetches the full catalog from wherever it lives
type Source interface {
	Fetch(ctx context.Context) ([]models.Product, error)
}

// HTTPSource reads the catalog from a JSON endpoint with a single GET
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// NewHTTPSource creates a catalog endpoint client. A zero timeout leaves
// requests unbounded.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

// Fetch issues the catalog request and decodes the product array
func (s *HTTPSource) Fetch(ctx context.Context) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "HTTPSource.Fetch")
	defer span.End()

	start := time.Now()
	defer func() {
		util.CatalogFetchLatency.Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog request: %w", err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("catalog request failed: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog response: %w", err)
	}

	products, err := DecodeProducts(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}
	return products, nil
}

var (
	errNotArray    = errors.New("payload is not a JSON array")
	errMissingID   = errors.New("product without id")
	errDuplicateID = errors.New("duplicate product id")
)

// DecodeProducts parses a serialized product list and checks its shape:
// a JSON array whose elements carry unique, non-zero ids.
func DecodeProducts(data []byte) ([]models.Product, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errNotArray
	}

	var products []models.Product
	if err := json.Unmarshal(trimmed, &products); err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{}, len(products))
	for i, p := range products {
		if p.ID == 0 {
			return nil, fmt.Errorf("%w at index %d", errMissingID, i)
		}
		if _, ok := seen[p.ID]; ok {
			return nil, fmt.Errorf("%w %d", errDuplicateID, p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}
