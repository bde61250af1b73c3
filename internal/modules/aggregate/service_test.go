package aggregate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfarer/internal/modules/fallback"
	"wayfarer/internal/modules/fetch"
	"wayfarer/internal/types"
)

type stubResolver struct {
	point types.Point
	err   error
}

func (s stubResolver) Resolve(context.Context, string) (types.Point, error) {
	return s.point, s.err
}

type stubFetcher struct {
	name    string
	result  fetch.Result
	err     error
	started chan struct{}
	wait    chan struct{}

	mu      sync.Mutex
	queries []fetch.Query
}

func (s *stubFetcher) Provider() string { return s.name }

func (s *stubFetcher) Fetch(ctx context.Context, q fetch.Query) (fetch.Result, error) {
	s.mu.Lock()
	s.queries = append(s.queries, q)
	s.mu.Unlock()
	if s.started != nil {
		close(s.started)
	}
	if s.wait != nil {
		select {
		case <-s.wait:
		case <-ctx.Done():
			return fetch.Unavailable("cancelled"), nil
		}
	}
	return s.result, s.err
}

func parisRequest(t *testing.T) types.TripRequest {
	t.Helper()
	req, err := types.NewTripRequest("Paris", "2024-06-01", "2024-06-03", 2000, 2, []string{"Food & Dining"})
	require.NoError(t, err)
	return req
}

func livePlaces() []types.CandidateRecord {
	return []types.CandidateRecord{
		rec("google:1", "Le Comptoir", f64(4.3), &types.Price{Tier: 2}, types.ProvenanceLive, here.Offset(400, 0)),
		rec("google:2", "Septime", f64(4.7), &types.Price{Tier: 3}, types.ProvenanceLive, here.Offset(0, 800)),
	}
}

func liveHotels() []types.CandidateRecord {
	return []types.CandidateRecord{
		rec("google:h1", "Hotel Lutetia", f64(4.6), &types.Price{Amount: 1400}, types.ProvenanceLive, here.Offset(-500, 0)),
		rec("google:h2", "Hotel Henriette", f64(4.4), &types.Price{Amount: 180}, types.ProvenanceLive, here.Offset(0, -700)),
		rec("google:h3", "Hotel Providence", f64(4.5), nil, types.ProvenanceLive, here.Offset(300, 300)),
	}
}

func newService(places, hotels Fetcher, resolver Resolver) *Service {
	return NewService(Deps{
		Resolver:      resolver,
		Places:        places,
		Hotels:        hotels,
		Fallback:      fallback.New(),
		FallbackFloor: 3,
		Log:           zerolog.Nop(),
	})
}

func TestBuild_AllLive(t *testing.T) {
	places := &stubFetcher{name: "google_places", result: fetch.Ok(livePlaces())}
	hotels := &stubFetcher{name: "google_lodging", result: fetch.Ok(liveHotels())}
	svc := newService(places, hotels, stubResolver{point: here})

	b, err := svc.Build(context.Background(), parisRequest(t))
	require.NoError(t, err)

	assert.Equal(t, here, b.Center)
	assert.Equal(t, 7000, b.RadiusMeters)
	assert.Equal(t, []string{"google:2", "google:1"}, ids(b.Places))
	assert.Equal(t, []string{"google:h3", "google:h2"}, ids(b.Hotels), "hotel above budget/travelers is dropped")

	assert.Equal(t, types.ProvenanceLive, b.Sources[types.KindPlace].Provenance)
	assert.Equal(t, types.ProvenanceLive, b.Sources[types.KindHotel].Provenance)
	assert.Equal(t, 2, b.Sources[types.KindHotel].LiveCount)

	require.Len(t, places.queries, 1)
	assert.Equal(t, []types.Interest{types.InterestFood}, places.queries[0].Interests)
	assert.Equal(t, maxPlaces, places.queries[0].Limit)
	assert.Equal(t, types.KindHotel, hotels.queries[0].Kind)
}

func TestBuild_UnavailableUsesFallbackFloor(t *testing.T) {
	places := &stubFetcher{name: "google_places", result: fetch.Unavailable("provider timed out")}
	hotels := &stubFetcher{name: "google_lodging", result: fetch.Ok(liveHotels())}
	svc := newService(places, hotels, stubResolver{point: here})

	b, err := svc.Build(context.Background(), parisRequest(t))
	require.NoError(t, err)

	require.Len(t, b.Places, svc.FallbackCount(3))
	assert.Len(t, b.Places, 3)
	for _, p := range b.Places {
		assert.Equal(t, types.ProvenanceFallback, p.Provenance)
	}
	st := b.Sources[types.KindPlace]
	assert.Equal(t, types.ProvenanceFallback, st.Provenance)
	assert.Equal(t, "provider timed out", st.Reason)
	assert.Equal(t, 3, st.FallbackCount)

	assert.Equal(t, types.ProvenanceLive, b.Sources[types.KindHotel].Provenance)
}

func TestBuild_EmptyResultUsesFallback(t *testing.T) {
	places := &stubFetcher{name: "google_places", result: fetch.Ok(nil)}
	hotels := &stubFetcher{name: "google_lodging", result: fetch.Ok([]types.CandidateRecord{
		rec("google:h1", "Hotel Lutetia", f64(4.6), &types.Price{Amount: 1400}, types.ProvenanceLive, here),
	})}
	svc := newService(places, hotels, stubResolver{point: here})

	b, err := svc.Build(context.Background(), parisRequest(t))
	require.NoError(t, err)

	assert.NotEmpty(t, b.Places)
	assert.NotEmpty(t, b.Hotels)
	assert.Equal(t, types.ProvenanceFallback, b.Sources[types.KindPlace].Provenance)
	assert.Equal(t, types.ProvenanceFallback, b.Sources[types.KindHotel].Provenance, "budget filter emptied the live hotels")
}

func TestBuild_FallbackCountCoversEveryDay(t *testing.T) {
	places := &stubFetcher{name: "p", result: fetch.Unavailable("down")}
	hotels := &stubFetcher{name: "h", result: fetch.Unavailable("down")}
	svc := newService(places, hotels, stubResolver{point: here})

	req := parisRequest(t)
	req.EndDate = req.StartDate.AddDate(0, 0, 6)

	b, err := svc.Build(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, b.Places, 7)
	assert.Len(t, b.Hotels, 7)
}

func TestBuild_GeocodeFailureIsFatal(t *testing.T) {
	places := &stubFetcher{name: "p", result: fetch.Ok(livePlaces())}
	hotels := &stubFetcher{name: "h", result: fetch.Ok(liveHotels())}
	svc := newService(places, hotels, stubResolver{err: types.Errorf(types.KindGeocodeUnresolved, "no match")})

	_, err := svc.Build(context.Background(), parisRequest(t))
	assert.ErrorIs(t, err, types.ErrGeocodeUnresolved)
	assert.Empty(t, places.queries)
}

func TestBuild_InvalidQueryPropagates(t *testing.T) {
	places := &stubFetcher{name: "p", err: errors.Join(fetch.ErrInvalidQuery, errors.New("radius"))}
	hotels := &stubFetcher{name: "h", result: fetch.Ok(liveHotels())}
	svc := newService(places, hotels, stubResolver{point: here})

	_, err := svc.Build(context.Background(), parisRequest(t))
	assert.ErrorIs(t, err, fetch.ErrInvalidQuery)
}

func TestBuild_FetchesConcurrently(t *testing.T) {
	hotelsStarted := make(chan struct{})
	places := &stubFetcher{name: "p", result: fetch.Ok(livePlaces()), wait: hotelsStarted}
	hotels := &stubFetcher{name: "h", result: fetch.Ok(liveHotels()), started: hotelsStarted}
	svc := newService(places, hotels, stubResolver{point: here})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	b, err := svc.Build(ctx, parisRequest(t))
	require.NoError(t, err)
	assert.Equal(t, types.ProvenanceLive, b.Sources[types.KindPlace].Provenance, "places fetch waited for hotels fetch to start")
}

func TestBuild_CallerCancellation(t *testing.T) {
	places := &stubFetcher{name: "p", result: fetch.Ok(livePlaces()), wait: make(chan struct{})}
	hotels := &stubFetcher{name: "h", result: fetch.Ok(liveHotels())}
	svc := newService(places, hotels, stubResolver{point: here})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := svc.Build(ctx, parisRequest(t))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
