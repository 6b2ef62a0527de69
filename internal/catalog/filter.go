package catalog

import (
	"strings"

	"catalog-service/internal/models"
)

// FilterProducts returns the products matching both filters, in source order.
// An empty category matches every product; query is matched as a
// case-insensitive substring of the title, and an empty query matches all.
func FilterProducts(products []models.Product, category, query string) []models.Product {
	query = strings.ToLower(query)

	filtered := make([]models.Product, 0, len(products))
	for _, p := range products {
		if category != "" && p.Category != category {
			continue
		}
		if !strings.Contains(strings.ToLower(p.Title), query) {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

// DistinctCategories returns each category once, in first-seen order
func DistinctCategories(products []models.Product) []string {
	seen := make(map[string]struct{}, len(products))
	categories := make([]string, 0)
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	return categories
}
