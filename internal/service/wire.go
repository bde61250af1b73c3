// README: Builds a TripPlanner and its providers from configuration.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"wayfarer/internal/ai"
	"wayfarer/internal/amadeus"
	"wayfarer/internal/cache"
	"wayfarer/internal/config"
	"wayfarer/internal/infra"
	"wayfarer/internal/maps"
	"wayfarer/internal/modules/aggregate"
	"wayfarer/internal/modules/fallback"
	"wayfarer/internal/modules/fetch"
	"wayfarer/internal/modules/geocode"
	"wayfarer/internal/modules/plan"
	"wayfarer/internal/modules/synth"
	"wayfarer/internal/types"
)

// memoryPlanTTL is how long plans stay retrievable without a database.
const memoryPlanTTL = 24 * time.Hour

// NewFromConfig wires every pipeline stage. The returned cleanup releases
// connections and must be called once the planner is no longer used.
func NewFromConfig(ctx context.Context, cfg config.Config, log zerolog.Logger) (*TripPlanner, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*TripPlanner, func(), error) {
		cleanup()
		return nil, func() {}, err
	}

	var store cache.Store
	if cfg.Redis.Addr != "" {
		rdb, err := infra.NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			return fail(fmt.Errorf("redis: %w", err))
		}
		closers = append(closers, func() { _ = rdb.Close() })
		store = cache.NewRedisStore(rdb, cfg.Cache.MaxStale)
	} else {
		store = cache.NewMemoryStore(cfg.Cache.MaxStale, cfg.Cache.MaxEntries)
	}

	mapsClient, err := maps.NewClient(cfg.Maps.APIKey)
	if err != nil {
		return fail(err)
	}

	fetchPolicy := infra.RetryPolicy{
		Attempts: cfg.Fetch.Attempts,
		Backoff:  cfg.Fetch.Backoff,
		Timeout:  cfg.Fetch.Timeout,
	}
	geocodePolicy := fetchPolicy
	geocodePolicy.Retryable = func(err error) bool {
		return !errors.Is(err, maps.ErrNoMatch)
	}

	resolver := geocode.NewService(maps.NewGeocodeService(mapsClient), store, cfg.Cache.TTL, geocodePolicy, log)
	places := fetch.NewFetcher(maps.NewPlacesService(mapsClient), types.KindPlace, store, cfg.Cache.TTL, fetchPolicy, log)

	var hotelSources []fetch.Source
	for _, name := range cfg.HotelSources() {
		switch name {
		case config.HotelsAmadeus:
			hotelSources = append(hotelSources, amadeus.NewHotelService(cfg.Amadeus.BaseURL, cfg.Amadeus.APIKey, cfg.Amadeus.APISecret))
		default:
			hotelSources = append(hotelSources, maps.NewLodgingService(mapsClient))
		}
	}
	hotelSource := hotelSources[0]
	if len(hotelSources) > 1 {
		hotelSource = fetch.NewMultiSource(log, hotelSources...)
	}
	hotels := fetch.NewFetcher(hotelSource, types.KindHotel, store, cfg.Cache.TTL, fetchPolicy, log)

	agg := aggregate.NewService(aggregate.Deps{
		Resolver:      resolver,
		Places:        places,
		Hotels:        hotels,
		Fallback:      fallback.New(),
		FallbackFloor: cfg.Fetch.FallbackFloor,
		Log:           log,
	})

	var engine ai.Engine
	switch cfg.AI.Provider {
	case config.EngineOpenAI:
		engine = ai.NewOpenAIProvider(cfg.AI.OpenAIURL, cfg.AI.OpenAIKey, cfg.AI.OpenAIModel, cfg.AI.Temperature)
	default:
		gemini, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiModel, cfg.AI.Temperature)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, gemini.Close)
		engine = gemini
	}
	syn := synth.NewService(engine, synth.Options{
		Timeout:   cfg.AI.Timeout,
		Backoff:   cfg.Fetch.Backoff,
		PromptCap: cfg.AI.PromptCap,
	}, log)

	var plans PlanStore
	if cfg.DB.DSN != "" {
		applied, err := infra.Migrate(ctx, cfg.DB.DSN)
		if err != nil {
			return fail(err)
		}
		for _, r := range applied {
			log.Info().Str("migration", r.Source.Path).Dur("took", r.Duration).Msg("migration applied")
		}
		pool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			return fail(fmt.Errorf("postgres: %w", err))
		}
		closers = append(closers, pool.Close)
		plans = plan.NewStore(pool)
	} else {
		plans = plan.NewMemoryStore(memoryPlanTTL)
	}

	return NewTripPlanner(agg, syn, plans, log), cleanup, nil
}
