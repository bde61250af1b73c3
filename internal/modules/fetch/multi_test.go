package fetch

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
	"wayfarer/internal/types"
)

type namedSource struct {
	name    string
	records []types.CandidateRecord
	err     error

	mu      sync.Mutex
	started chan struct{}
	release chan struct{}
}

func (s *namedSource) Name() string { return s.name }

func (s *namedSource) Search(ctx context.Context, _ Query) ([]types.CandidateRecord, error) {
	if s.started != nil {
		close(s.started)
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]types.CandidateRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func hotel(id, name string, at types.Point) types.CandidateRecord {
	return types.CandidateRecord{ID: id, Name: name, Kind: types.KindHotel, Location: at}
}

func TestMultiSource_SameHotelFromTwoProvidersKeptOnce(t *testing.T) {
	rating := 4.4
	google := &namedSource{name: "google_lodging", records: []types.CandidateRecord{
		hotel("google:abc", "Hotel Lutetia", center),
		hotel("google:def", "Le Bristol", center.Offset(1200, 0)),
	}}
	amadeusHotel := hotel("amadeus:PARLUT", "HOTEL LUTETIA", center.Offset(40, 30))
	amadeusHotel.Rating = &rating
	amadeus := &namedSource{name: "amadeus_hotels", records: []types.CandidateRecord{
		amadeusHotel,
		hotel("amadeus:PARMEU", "Le Meurice", center.Offset(-900, 0)),
	}}

	m := NewMultiSource(zerolog.Nop(), google, amadeus)
	assert.Equal(t, "google_lodging+amadeus_hotels", m.Name())

	recs, err := m.Search(context.Background(), query())
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, []string{"google:abc", "google:def", "amadeus:PARMEU"}, []string{recs[0].ID, recs[1].ID, recs[2].ID})
	require.NotNil(t, recs[0].Rating, "rating taken from the duplicate")
	assert.InDelta(t, 4.4, *recs[0].Rating, 0.001)
	assert.Equal(t, "google_lodging", recs[0].Source)
	assert.Equal(t, "amadeus_hotels", recs[2].Source)
}

func TestMultiSource_OneSourceFailing(t *testing.T) {
	google := &namedSource{name: "google_lodging", err: errors.New("OVER_QUERY_LIMIT")}
	amadeus := &namedSource{name: "amadeus_hotels", records: []types.CandidateRecord{hotel("amadeus:PARMEU", "Le Meurice", center)}}

	recs, err := NewMultiSource(zerolog.Nop(), google, amadeus).Search(context.Background(), query())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "amadeus:PARMEU", recs[0].ID)
}

func TestMultiSource_AllFailing(t *testing.T) {
	google := &namedSource{name: "google_lodging", err: errors.New("OVER_QUERY_LIMIT")}
	amadeus := &namedSource{name: "amadeus_hotels", err: errors.New("status 500")}

	_, err := NewMultiSource(zerolog.Nop(), google, amadeus).Search(context.Background(), query())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "google_lodging: OVER_QUERY_LIMIT")
	assert.Contains(t, err.Error(), "amadeus_hotels: status 500")
}

func TestMultiSource_QueriesInParallel(t *testing.T) {
	a := &namedSource{name: "a", started: make(chan struct{}), release: make(chan struct{})}
	b := &namedSource{name: "b", started: make(chan struct{}), release: make(chan struct{})}

	done := make(chan error, 1)
	go func() {
		_, err := NewMultiSource(zerolog.Nop(), a, b).Search(context.Background(), query())
		done <- err
	}()

	for _, s := range []*namedSource{a, b} {
		select {
		case <-s.started:
		case <-time.After(time.Second):
			t.Fatalf("source %s never started while the other was blocked", s.name)
		}
	}
	close(a.release)
	close(b.release)
	require.NoError(t, <-done)
}

func TestMultiSource_BehindFetcher(t *testing.T) {
	google := &namedSource{name: "google_lodging", records: []types.CandidateRecord{hotel("google:abc", "Hotel Lutetia", center)}}
	amadeus := &namedSource{name: "amadeus_hotels", records: []types.CandidateRecord{hotel("amadeus:PARLUT", "Hotel Lutetia", center)}}
	f := NewFetcher(NewMultiSource(zerolog.Nop(), google, amadeus), types.KindHotel, cache.NewMemoryStore(time.Hour, 100), time.Hour, testPolicy(), zerolog.Nop())

	res, err := f.Fetch(context.Background(), query())
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "google_lodging+amadeus_hotels", f.Provider())
	assert.Equal(t, types.ProvenanceLive, res.Records[0].Provenance)
}
