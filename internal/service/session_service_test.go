package service

import (
	"context"
	"testing"
	"time"

	"catalog-service/internal/cache"
	"catalog-service/internal/catalog"
	"catalog-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	products []models.Product
}

func (s staticSource) Fetch(ctx context.Context) ([]models.Product, error) {
	return s.products, nil
}

func newTestService() *SessionService {
	source := staticSource{products: []models.Product{
		{ID: 1, Title: "Shirt", Category: "men"},
		{ID: 2, Title: "Bag", Category: "women"},
	}}
	return NewSessionService(source, cache.NewMemory(), nil, "products")
}

func TestMountAndGet(t *testing.T) {
	svc := newTestService()

	id, provider := svc.Mount(context.Background())
	require.NotEmpty(t, id)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, provider.Wait(ctx))

	got, err := svc.Get(id)
	require.NoError(t, err)
	assert.Same(t, provider, got)
	assert.Equal(t, id, got.SessionID())
	assert.Len(t, got.Products(), 2)
	assert.Equal(t, 1, svc.Len())
}

func TestSessionsAreIndependent(t *testing.T) {
	svc := newTestService()

	_, first := svc.Mount(context.Background())
	_, second := svc.Mount(context.Background())

	first.SetSelectedCategory("men")

	assert.Equal(t, "men", first.SelectedCategory())
	assert.Equal(t, "", second.SelectedCategory())
}

func TestSecondSessionReadsCache(t *testing.T) {
	svc := newTestService()

	_, first := svc.Mount(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, first.Wait(ctx))

	// the first session wrote the cache, so the second settles synchronously
	_, second := svc.Mount(context.Background())
	assert.False(t, second.Loading())
	assert.Len(t, second.Products(), 2)
}

func TestGetUnknownSession(t *testing.T) {
	svc := newTestService()

	_, err := svc.Get("missing")
	assert.ErrorIs(t, err, catalog.ErrNoProvider)
}

func TestUnmount(t *testing.T) {
	svc := newTestService()
	id, provider := svc.Mount(context.Background())

	require.NoError(t, svc.Unmount(id))
	assert.True(t, provider.Closed())

	_, err := svc.Get(id)
	assert.ErrorIs(t, err, catalog.ErrNoProvider)
	assert.ErrorIs(t, svc.Unmount(id), catalog.ErrNoProvider)
}

func TestClose(t *testing.T) {
	svc := newTestService()
	_, a := svc.Mount(context.Background())
	_, b := svc.Mount(context.Background())

	svc.Close()

	assert.Equal(t, 0, svc.Len())
	assert.True(t, a.Closed())
	assert.True(t, b.Closed())
}
