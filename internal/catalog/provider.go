// Package catalog holds per-session product listing state: the catalog is
// loaded once from the persistent cache or the catalog endpoint, and
// consumers read it through category and title-search filters.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"time"

	"catalog-service/internal/cache"
	"catalog-service/internal/models"
	"catalog-service/internal/util"
	"catalog-service/internal/worker"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FailedToLoadMessage is the error consumers see when the catalog fetch fails
const FailedToLoadMessage = "Failed to load products"

// DefaultCacheKey is the cache entry holding the serialized catalog
const DefaultCacheKey = "products"

// Phase is the load state of a provider
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status is the load state together with its error message. Error is set
// only when Phase is PhaseFailed.
type Status struct {
	Phase Phase
	Error string
}

// Snapshot is a consistent copy of everything a consumer can read
type Snapshot struct {
	Products         []models.Product `json:"products"`
	Filtered         []models.Product `json:"filtered"`
	Categories       []string         `json:"categories"`
	SelectedCategory string           `json:"selected_category"`
	SearchQuery      string           `json:"search_query"`
	Loading          bool             `json:"loading"`
	Error            *string          `json:"error"`
}

// EventPublisher receives catalog load outcomes
type EventPublisher interface {
	PublishCatalogLoaded(ctx context.Context, event *models.CatalogLoadedEvent) error
	PublishCatalogLoadFailed(ctx context.Context, event *models.CatalogLoadFailedEvent) error
}

// Options configures a Provider. Source and Cache are required.
type Options struct {
	SessionID string
	CacheKey  string
	Source    Source
	Cache     cache.Store
	Publisher EventPublisher
	Logger    *zap.Logger
}

// Provider owns the catalog state of one session
type Provider struct {
	sessionID string
	cacheKey  string
	source    Source
	cache     cache.Store
	publisher EventPublisher
	logger    *zap.Logger

	mountOnce sync.Once
	mounted   chan struct{}

	mu               sync.RWMutex
	task             *worker.Task[[]models.Product]
	products         []models.Product
	categories       []string
	filtered         []models.Product
	selectedCategory string
	searchQuery      string
	closed           bool
}

// NewProvider creates an unmounted provider
func NewProvider(opts Options) *Provider {
	if opts.CacheKey == "" {
		opts.CacheKey = DefaultCacheKey
	}
	logger := util.SessionLogger(opts.SessionID)
	if opts.Logger != nil {
		logger = opts.Logger.With(zap.String("session_id", opts.SessionID))
	}

	return &Provider{
		sessionID:  opts.SessionID,
		cacheKey:   opts.CacheKey,
		source:     opts.Source,
		cache:      opts.Cache,
		publisher:  opts.Publisher,
		logger:     logger,
		mounted:    make(chan struct{}),
		products:   []models.Product{},
		categories: []string{},
		filtered:   []models.Product{},
	}
}

// SessionID returns the id the provider was created with
func (p *Provider) SessionID() string {
	return p.sessionID
}

// Mount populates the catalog. A valid cache entry settles the provider
// before Mount returns; otherwise a background fetch is started and the
// provider stays loading until it settles. Only the first call has effect,
// and a closed provider is never populated.
func (p *Provider) Mount(ctx context.Context) {
	p.mountOnce.Do(func() {
		p.mount(ctx)
	})
}

func (p *Provider) mount(ctx context.Context) {
	defer close(p.mounted)

	if p.Closed() {
		p.logger.Debug("Provider closed before mount, skipping catalog load")
		return
	}

	ctx, span := util.StartSpan(ctx, "Provider.Mount")
	defer span.End()

	if products, ok := p.readCache(ctx); ok {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			p.logger.Debug("Provider closed during mount, discarding cached catalog")
			return
		}
		p.task = worker.Completed(products)
		p.applyLocked(products)
		p.mu.Unlock()

		util.CatalogLoadsTotal.WithLabelValues(models.SourceCache).Inc()
		p.logger.Info("Catalog loaded from cache", zap.Int("count", len(products)))
		p.publishLoaded(ctx, models.SourceCache, products)
		return
	}

	// The fetch outlives the mounting request and is never cancelled.
	fetchCtx := context.WithoutCancel(ctx)
	task := worker.Go(fetchCtx, p.fetch, p.settle)

	p.mu.Lock()
	p.task = task
	p.mu.Unlock()
}

func (p *Provider) readCache(ctx context.Context) ([]models.Product, bool) {
	data, err := p.cache.Get(ctx, p.cacheKey)
	if errors.Is(err, cache.ErrMiss) {
		util.CacheReadsTotal.WithLabelValues(util.CacheMiss).Inc()
		return nil, false
	}
	if err != nil {
		util.CacheReadsTotal.WithLabelValues(util.CacheError).Inc()
		p.logger.Warn("Catalog cache read failed, fetching from network",
			zap.String("key", p.cacheKey),
			zap.Error(err))
		return nil, false
	}

	products, err := DecodeProducts(data)
	if err != nil {
		util.CacheReadsTotal.WithLabelValues(util.CacheCorrupt).Inc()
		p.logger.Warn("Cached catalog is invalid, fetching from network",
			zap.String("key", p.cacheKey),
			zap.Error(err))
		return nil, false
	}

	util.CacheReadsTotal.WithLabelValues(util.CacheHit).Inc()
	return products, true
}

// fetch runs inside the load task
func (p *Provider) fetch(ctx context.Context) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "Provider.fetch")
	defer span.End()

	products, err := p.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(products)
	if err != nil {
		p.logger.Error("Failed to encode catalog for cache", zap.Error(err))
		util.CacheWriteFailuresTotal.Inc()
		return products, nil
	}
	if err := p.cache.Set(ctx, p.cacheKey, data); err != nil {
		p.logger.Error("Failed to write catalog cache",
			zap.String("key", p.cacheKey),
			zap.Error(err))
		util.CacheWriteFailuresTotal.Inc()
	}

	return products, nil
}

// settle applies the load outcome before the task reports itself settled
func (p *Provider) settle(products []models.Product, err error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.logger.Debug("Provider closed before catalog load settled, discarding result")
		return
	}
	if err == nil {
		p.applyLocked(products)
	}
	p.mu.Unlock()

	ctx := context.Background()
	if err != nil {
		util.CatalogLoadFailuresTotal.Inc()
		p.logger.Error("Catalog load failed", zap.Error(err))
		p.publishFailed(ctx, err)
		return
	}

	util.CatalogLoadsTotal.WithLabelValues(models.SourceNetwork).Inc()
	p.logger.Info("Catalog loaded from network", zap.Int("count", len(products)))
	p.publishLoaded(ctx, models.SourceNetwork, products)
}

func (p *Provider) applyLocked(products []models.Product) {
	p.products = products
	p.categories = DistinctCategories(products)
	p.recomputeLocked()
}

func (p *Provider) recomputeLocked() {
	p.filtered = FilterProducts(p.products, p.selectedCategory, p.searchQuery)
}

func (p *Provider) publishLoaded(ctx context.Context, source string, products []models.Product) {
	if p.publisher == nil {
		return
	}

	event := &models.CatalogLoadedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeCatalogLoaded,
			Timestamp: time.Now(),
		},
		SessionID:    p.sessionID,
		Source:       source,
		ProductCount: len(products),
		Categories:   DistinctCategories(products),
	}

	if err := p.publisher.PublishCatalogLoaded(ctx, event); err != nil {
		p.logger.Error("Failed to publish CatalogLoaded event", zap.Error(err))
	}
}

func (p *Provider) publishFailed(ctx context.Context, cause error) {
	if p.publisher == nil {
		return
	}

	event := &models.CatalogLoadFailedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeCatalogLoadFailed,
			Timestamp: time.Now(),
		},
		SessionID: p.sessionID,
		Reason:    cause.Error(),
	}

	if err := p.publisher.PublishCatalogLoadFailed(ctx, event); err != nil {
		p.logger.Error("Failed to publish CatalogLoadFailed event", zap.Error(err))
	}
}

// Products returns the catalog in source order; empty until the load settles
func (p *Provider) Products() []models.Product {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.products)
}

// Filtered returns the products matching the selected category and search query
func (p *Provider) Filtered() []models.Product {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.filtered)
}

// Categories returns the distinct product categories in first-seen order
func (p *Provider) Categories() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.categories)
}

// SelectedCategory returns the category filter; "" means no filter
func (p *Provider) SelectedCategory() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.selectedCategory
}

// SetSelectedCategory sets the category filter; "" clears it
func (p *Provider) SetSelectedCategory(category string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selectedCategory = category
	p.recomputeLocked()
}

// SearchQuery returns the title search; "" means no filter
func (p *Provider) SearchQuery() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.searchQuery
}

// SetSearchQuery sets the title search; "" clears it
func (p *Provider) SetSearchQuery(query string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.searchQuery = query
	p.recomputeLocked()
}

// Status derives the load state from the load task
func (p *Provider) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.statusLocked()
}

func (p *Provider) statusLocked() Status {
	if p.task == nil {
		return Status{Phase: PhaseLoading}
	}

	_, err := p.task.Result()
	switch {
	case errors.Is(err, worker.ErrPending):
		return Status{Phase: PhaseLoading}
	case err != nil:
		return Status{Phase: PhaseFailed, Error: FailedToLoadMessage}
	default:
		return Status{Phase: PhaseReady}
	}
}

// Loading reports whether the initial load is still in flight
func (p *Provider) Loading() bool {
	return p.Status().Phase == PhaseLoading
}

// ErrorMessage returns the load error, if the load failed
func (p *Provider) ErrorMessage() (string, bool) {
	status := p.Status()
	return status.Error, status.Phase == PhaseFailed
}

// Snapshot copies the whole consumer view under a single lock
func (p *Provider) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	status := p.statusLocked()
	snap := Snapshot{
		Products:         slices.Clone(p.products),
		Filtered:         slices.Clone(p.filtered),
		Categories:       slices.Clone(p.categories),
		SelectedCategory: p.selectedCategory,
		SearchQuery:      p.searchQuery,
		Loading:          status.Phase == PhaseLoading,
	}
	if status.Phase == PhaseFailed {
		msg := status.Error
		snap.Error = &msg
	}
	return snap
}

// Wait blocks until the initial load settles or ctx is done. It returns
// nil straight away for a provider that was closed before it mounted.
func (p *Provider) Wait(ctx context.Context) error {
	select {
	case <-p.mounted:
	case <-ctx.Done():
		return ctx.Err()
	}

	p.mu.RLock()
	task := p.task
	p.mu.RUnlock()
	if task == nil {
		return nil
	}

	select {
	case <-task.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close tears the provider down. A fetch still in flight keeps running but
// its result is no longer applied.
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

// Closed reports whether Close has been called
func (p *Provider) Closed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}
