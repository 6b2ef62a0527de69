package models

import "time"

// Event types
const (
	EventTypeCatalogLoaded     = "CATALOG_LOADED"
	EventTypeCatalogLoadFailed = "CATALOG_LOAD_FAILED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// CatalogLoadedEvent published when a session's catalog settles successfully
type CatalogLoadedEvent struct {
	BaseEvent
	SessionID    string   `json:"session_id"`
	Source       string   `json:"source"`
	ProductCount int      `json:"product_count"`
	Categories   []string `json:"categories"`
}

// CatalogLoadFailedEvent published when the catalog fetch fails
type CatalogLoadFailedEvent struct {
	BaseEvent
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
}
