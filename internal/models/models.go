package models

// Product represents a product in the catalog
type Product struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Rating      Rating  `json:"rating"`
}

// Rating is the average rating of a product and the number of votes behind it
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Catalog sources
const (
	SourceCache   = "cache"
	SourceNetwork = "network"
)
