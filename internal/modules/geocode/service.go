// README: Geocoder adapter; cached, retried resolution of a free-text location into coordinates.
package geocode

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"wayfarer/internal/cache"
	"wayfarer/internal/infra"
	"wayfarer/internal/types"
)

// Provider is the external geocoding API.
type Provider interface {
	Geocode(ctx context.Context, address string) (types.Point, error)
}

type Service struct {
	provider Provider
	cache    cache.Store
	ttl      time.Duration
	policy   infra.RetryPolicy
	log      zerolog.Logger
	now      func() time.Time
}

func NewService(provider Provider, store cache.Store, ttl time.Duration, policy infra.RetryPolicy, log zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		cache:    store,
		ttl:      ttl,
		policy:   policy,
		log:      log.With().Str("component", "geocoder").Logger(),
		now:      time.Now,
	}
}

// Resolve returns coordinates for location. A fresh cache entry short-circuits the
// provider; a stale one is served only when the provider fails. Every failure to
// produce valid coordinates is GeocodeUnresolved.
func (s *Service) Resolve(ctx context.Context, location string) (types.Point, error) {
	normalized := cache.NormalizeText(location)
	if normalized == "" {
		return types.Point{}, types.Errorf(types.KindGeocodeUnresolved, "location is empty")
	}
	key := cache.GeocodeKey(location)

	var stale *types.Point
	if e, ok, err := s.cache.Get(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("geocode cache read failed")
	} else if ok {
		var p types.Point
		if derr := e.Decode(&p); derr == nil && p.Valid() {
			if e.Fresh(s.now()) {
				return p, nil
			}
			stale = &p
		}
	}

	var point types.Point
	err := infra.Retry(ctx, s.policy, func(ctx context.Context) error {
		p, err := s.provider.Geocode(ctx, location)
		if err != nil {
			return err
		}
		point = p
		return nil
	})
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return types.Point{}, cerr
		}
		if stale != nil {
			s.log.Warn().Err(err).Str("location", normalized).Msg("geocoder failed, serving stale coordinates")
			return *stale, nil
		}
		return types.Point{}, types.Errorf(types.KindGeocodeUnresolved, "resolve %q: %w", location, err)
	}
	if !point.Valid() {
		return types.Point{}, types.Errorf(types.KindGeocodeUnresolved, "resolve %q: coordinates %s out of range", location, point)
	}

	if e, err := cache.NewEntry(key, point, s.now(), s.ttl); err == nil {
		if err := s.cache.Set(ctx, e); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("geocode cache write failed")
		}
	}
	return point, nil
}
