// README: Aggregator; resolves the destination, fetches places and hotels concurrently and builds the data bundle.
package aggregate

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"wayfarer/internal/modules/fetch"
	"wayfarer/internal/types"
)

const (
	baseRadiusMeters   = 5000
	radiusPerDayMeters = 1000
	maxRadiusMeters    = 15000

	// Caps on live records kept per collection.
	maxPlaces = 30
	maxHotels = 20
)

type Resolver interface {
	Resolve(ctx context.Context, location string) (types.Point, error)
}

type Fetcher interface {
	Provider() string
	Fetch(ctx context.Context, q fetch.Query) (fetch.Result, error)
}

type FallbackGenerator interface {
	Generate(kind types.Kind, center types.Point, count int) []types.CandidateRecord
}

type Deps struct {
	Resolver Resolver
	Places   Fetcher
	Hotels   Fetcher
	Fallback FallbackGenerator
	// FallbackFloor is the minimum number of synthetic records per empty collection.
	FallbackFloor int
	Log           zerolog.Logger
}

type Service struct {
	resolver Resolver
	places   Fetcher
	hotels   Fetcher
	fallback FallbackGenerator
	floor    int
	log      zerolog.Logger
}

func NewService(d Deps) *Service {
	return &Service{
		resolver: d.Resolver,
		places:   d.Places,
		hotels:   d.Hotels,
		fallback: d.Fallback,
		floor:    d.FallbackFloor,
		log:      d.Log.With().Str("component", "aggregator").Logger(),
	}
}

// SearchRadius widens with trip length, bounded above.
func SearchRadius(days int) int {
	if days < 1 {
		days = 1
	}
	r := baseRadiusMeters + radiusPerDayMeters*(days-1)
	if r > maxRadiusMeters {
		r = maxRadiusMeters
	}
	return r
}

// FallbackCount is the number of synthetic records generated for an empty collection.
func (s *Service) FallbackCount(days int) int {
	if days > s.floor {
		return days
	}
	return s.floor
}

// Build returns a bundle whose place and hotel collections are never empty.
// Only geocoding failure, an invalid query or caller cancellation return an error.
func (s *Service) Build(ctx context.Context, req types.TripRequest) (*types.DataBundle, error) {
	center, err := s.resolver.Resolve(ctx, req.Location)
	if err != nil {
		return nil, err
	}

	days := req.Days()
	radius := SearchRadius(days)

	var placesRes, hotelsRes fetch.Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := s.places.Fetch(gctx, fetch.Query{
			Kind:         types.KindPlace,
			Center:       center,
			RadiusMeters: radius,
			Interests:    req.Interests,
			Limit:        maxPlaces,
		})
		if err != nil {
			return fmt.Errorf("places fetch: %w", err)
		}
		placesRes = res
		return nil
	})
	g.Go(func() error {
		res, err := s.hotels.Fetch(gctx, fetch.Query{
			Kind:         types.KindHotel,
			Center:       center,
			RadiusMeters: radius,
			Limit:        maxHotels,
		})
		if err != nil {
			return fmt.Errorf("hotels fetch: %w", err)
		}
		hotelsRes = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bundle := &types.DataBundle{
		Request:      req,
		Center:       center,
		RadiusMeters: radius,
		Sources:      make(map[types.Kind]types.SourceStatus, 2),
	}

	bundle.Places, bundle.Sources[types.KindPlace] = s.assemble(types.KindPlace, s.places.Provider(), placesRes, placesRes.Records, center, days)

	hotelsLive := withinNightlyBudget(hotelsRes.Records, req.Budget/float64(req.Travelers))
	bundle.Hotels, bundle.Sources[types.KindHotel] = s.assemble(types.KindHotel, s.hotels.Provider(), hotelsRes, hotelsLive, center, days)

	s.log.Debug().
		Str("location", req.Location).
		Int("radius_m", radius).
		Int("places", len(bundle.Places)).
		Int("hotels", len(bundle.Hotels)).
		Str("places_provenance", string(bundle.Sources[types.KindPlace].Provenance)).
		Str("hotels_provenance", string(bundle.Sources[types.KindHotel].Provenance)).
		Msg("bundle built")
	return bundle, nil
}

func (s *Service) assemble(kind types.Kind, provider string, res fetch.Result, live []types.CandidateRecord, center types.Point, days int) ([]types.CandidateRecord, types.SourceStatus) {
	status := types.SourceStatus{
		Provider:  provider,
		Reason:    res.Reason,
		FromCache: res.FromCache,
		Stale:     res.Stale,
	}

	var synthetic []types.CandidateRecord
	if res.Unavailable() || len(live) == 0 {
		if status.Reason == "" {
			status.Reason = "no live results matched the request"
		}
		synthetic = s.fallback.Generate(kind, center, s.FallbackCount(days))
		s.log.Warn().
			Err(res.Err()).
			Str("kind", string(kind)).
			Str("provider", provider).
			Str("reason", status.Reason).
			Int("fallback", len(synthetic)).
			Msg("using fallback candidates")
	}

	records := dedupe(merge(live, synthetic))
	for _, r := range records {
		if r.IsLive() {
			status.LiveCount++
		} else {
			status.FallbackCount++
		}
	}
	status.Provenance = types.CollectionProvenance(records)
	return records, status
}
