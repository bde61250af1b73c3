package geocode

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfarer/internal/cache"
	"wayfarer/internal/infra"
	"wayfarer/internal/types"
)

var paris = types.Point{Lat: 48.8566, Lng: 2.3522}

type mockProvider struct {
	mu    sync.Mutex
	calls int
	point types.Point
	errs  []error
}

func (m *mockProvider) Geocode(_ context.Context, _ string) (types.Point, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		if err != nil {
			return types.Point{}, err
		}
	}
	return m.point, nil
}

func (m *mockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func newTestService(p Provider, store cache.Store) *Service {
	return NewService(p, store, time.Hour, infra.RetryPolicy{Attempts: 2, Backoff: time.Millisecond}, zerolog.Nop())
}

func TestResolve_CachesResult(t *testing.T) {
	prov := &mockProvider{point: paris}
	svc := newTestService(prov, cache.NewMemoryStore(time.Hour, 100))

	p, err := svc.Resolve(context.Background(), "Paris, France")
	require.NoError(t, err)
	assert.Equal(t, paris, p)

	p, err = svc.Resolve(context.Background(), "  paris,   FRANCE")
	require.NoError(t, err)
	assert.Equal(t, paris, p)
	assert.Equal(t, 1, prov.callCount(), "normalized location hits the cache")
}

func TestResolve_RetriesOnce(t *testing.T) {
	prov := &mockProvider{point: paris, errs: []error{errors.New("timeout")}}
	svc := newTestService(prov, cache.NewMemoryStore(time.Hour, 100))

	p, err := svc.Resolve(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Equal(t, paris, p)
	assert.Equal(t, 2, prov.callCount())
}

func TestResolve_FailureIsUnresolved(t *testing.T) {
	prov := &mockProvider{errs: []error{errors.New("boom"), errors.New("boom")}}
	svc := newTestService(prov, cache.NewMemoryStore(time.Hour, 100))

	_, err := svc.Resolve(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, types.ErrGeocodeUnresolved)
	assert.Equal(t, 2, prov.callCount())
}

func TestResolve_EmptyAndInvalid(t *testing.T) {
	svc := newTestService(&mockProvider{point: types.Point{Lat: 123, Lng: 0}}, cache.NewMemoryStore(time.Hour, 100))

	_, err := svc.Resolve(context.Background(), "   ")
	assert.ErrorIs(t, err, types.ErrGeocodeUnresolved)

	_, err = svc.Resolve(context.Background(), "Nowhere")
	assert.ErrorIs(t, err, types.ErrGeocodeUnresolved)
}

func TestResolve_ServesStaleOnFailure(t *testing.T) {
	store := cache.NewMemoryStore(24*time.Hour, 100)
	e, err := cache.NewEntry(cache.GeocodeKey("Paris"), paris, time.Now().Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), e))

	prov := &mockProvider{errs: []error{errors.New("down"), errors.New("down")}}
	svc := newTestService(prov, store)

	p, err := svc.Resolve(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Equal(t, paris, p)
	assert.Equal(t, 2, prov.callCount(), "stale entries do not short-circuit the provider")
}

func TestResolve_CallerCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := newTestService(&mockProvider{point: paris}, cache.NewMemoryStore(time.Hour, 100))

	_, err := svc.Resolve(ctx, "Paris")
	assert.ErrorIs(t, err, context.Canceled)
}
