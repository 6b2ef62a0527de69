package service

import (
	"context"
	"sync"

	"catalog-service/internal/cache"
	"catalog-service/internal/catalog"
	"catalog-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionService mounts and tears down catalog providers, one per session
type SessionService struct {
	source    catalog.Source
	cache     cache.Store
	publisher catalog.EventPublisher
	cacheKey  string
	logger    *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*catalog.Provider
}

// NewSessionService creates a new session service. publisher may be nil.
func NewSessionService(
	source catalog.Source,
	store cache.Store,
	publisher catalog.EventPublisher,
	cacheKey string,
) *SessionService {
	return &SessionService{
		source:    source,
		cache:     store,
		publisher: publisher,
		cacheKey:  cacheKey,
		logger:    util.GetLogger(),
		sessions:  make(map[string]*catalog.Provider),
	}
}

// Mount starts a new session and returns its id and provider
func (s *SessionService) Mount(ctx context.Context) (string, *catalog.Provider) {
	ctx, span := util.StartSpan(ctx, "SessionService.Mount")
	defer span.End()

	id := uuid.New().String()
	provider := catalog.NewProvider(catalog.Options{
		SessionID: id,
		CacheKey:  s.cacheKey,
		Source:    s.source,
		Cache:     s.cache,
		Publisher: s.publisher,
	})

	s.mu.Lock()
	s.sessions[id] = provider
	s.mu.Unlock()
	util.ActiveSessions.Inc()

	provider.Mount(ctx)

	s.logger.Info("Session mounted", zap.String("session_id", id))
	return id, provider
}

// Get returns the provider of a live session, or catalog.ErrNoProvider
func (s *SessionService) Get(id string) (*catalog.Provider, error) {
	s.mu.RLock()
	provider, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, catalog.ErrNoProvider
	}
	return provider, nil
}

// Unmount tears a session down
func (s *SessionService) Unmount(id string) error {
	s.mu.Lock()
	provider, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return catalog.ErrNoProvider
	}

	provider.Close()
	util.ActiveSessions.Dec()
	s.logger.Info("Session unmounted", zap.String("session_id", id))
	return nil
}

// Len returns the number of live sessions
func (s *SessionService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close unmounts every session
func (s *SessionService) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*catalog.Provider)
	s.mu.Unlock()

	for _, provider := range sessions {
		provider.Close()
		util.ActiveSessions.Dec()
	}
	s.logger.Info("All sessions unmounted", zap.Int("count", len(sessions)))
}
