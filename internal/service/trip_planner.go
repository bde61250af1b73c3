// README: Trip planner orchestration; the single entry point upstream callers use to plan a trip.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"wayfarer/internal/modules/budget"
	"wayfarer/internal/modules/plan"
	"wayfarer/internal/modules/synth"
	"wayfarer/internal/types"
)

type Aggregator interface {
	Build(ctx context.Context, req types.TripRequest) (*types.DataBundle, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, bundle *types.DataBundle, bp budget.Plan, req types.TripRequest) (synth.Result, error)
}

type PlanStore interface {
	Save(ctx context.Context, p *plan.Plan) error
	Get(ctx context.Context, id uuid.UUID) (*plan.Plan, error)
}

// TripPlanner runs geocode, fetch, constrain and synthesis for one request.
type TripPlanner struct {
	aggregator  Aggregator
	allocator   *budget.Allocator
	synthesizer Synthesizer
	store       PlanStore
	log         zerolog.Logger
	now         func() time.Time
}

// NewTripPlanner wires the pipeline. store may be nil, in which case plans are not kept.
func NewTripPlanner(agg Aggregator, synthesizer Synthesizer, store PlanStore, log zerolog.Logger) *TripPlanner {
	return &TripPlanner{
		aggregator:  agg,
		allocator:   budget.NewAllocator(budget.DefaultAdjustments),
		synthesizer: synthesizer,
		store:       store,
		log:         log.With().Str("component", "trip_planner").Logger(),
		now:         time.Now,
	}
}

// PlanTrip returns a complete plan or one of GeocodeUnresolved, InvalidBudgetInput,
// SynthesisUnavailable or the context error. Provider outages and invalid engine
// output are absorbed and disclosed through provenance, flags and caveats.
func (p *TripPlanner) PlanTrip(ctx context.Context, req types.TripRequest) (*plan.Plan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	started := p.now()

	bundle, err := p.aggregator.Build(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}

	bp, err := p.allocator.Allocate(req)
	if err != nil {
		return nil, err
	}

	res, err := p.synthesizer.Synthesize(ctx, bundle, bp, req)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}

	out := &plan.Plan{
		ID:              uuid.New(),
		Request:         req,
		Itinerary:       res.Itinerary,
		Recommendations: res.Recommendations,
		Budget:          bp,
		Provenance: plan.Provenance{
			Places: bundle.Sources[types.KindPlace].Provenance,
			Hotels: bundle.Sources[types.KindHotel].Provenance,
		},
		Sources:            bundle.Sources,
		Degraded:           res.Degraded,
		DegradedDays:       res.DegradedDays,
		Summary:            res.Summary,
		TotalEstimatedCost: res.Itinerary.TotalCost(),
		GeneratedAt:        p.now().UTC(),
	}
	out.UsedFallback = out.Provenance.Places != types.ProvenanceLive || out.Provenance.Hotels != types.ProvenanceLive
	out.Caveats = caveats(bundle, res)

	if p.store != nil {
		if err := p.store.Save(ctx, out); err != nil {
			p.log.Warn().Err(err).Str("plan_id", out.ID.String()).Msg("failed to persist plan")
		}
	}

	p.log.Info().
		Str("plan_id", out.ID.String()).
		Str("location", req.Location).
		Int("days", req.Days()).
		Bool("used_fallback", out.UsedFallback).
		Bool("degraded", out.Degraded).
		Dur("took", p.now().Sub(started)).
		Msg("trip planned")
	return out, nil
}

// GetPlan returns a previously generated plan.
func (p *TripPlanner) GetPlan(ctx context.Context, id uuid.UUID) (*plan.Plan, error) {
	if p.store == nil {
		return nil, plan.ErrNotFound
	}
	return p.store.Get(ctx, id)
}

var kindNoun = map[types.Kind]string{types.KindPlace: "place", types.KindHotel: "hotel"}

func caveats(bundle *types.DataBundle, res synth.Result) []string {
	var out []string
	for _, kind := range []types.Kind{types.KindPlace, types.KindHotel} {
		st := bundle.Sources[kind]
		noun := kindNoun[kind]
		switch st.Provenance {
		case types.ProvenanceFallback:
			out = append(out, fmt.Sprintf("%s suggestions use sample data because live %s data was unavailable", noun, noun))
		case types.ProvenanceMixed:
			out = append(out, fmt.Sprintf("some %s suggestions use sample data to fill gaps in live results", noun))
		}
		if st.Stale {
			out = append(out, fmt.Sprintf("%s data was served from cache and may be out of date", noun))
		}
	}
	for _, day := range res.DegradedDays {
		out = append(out, fmt.Sprintf("the plan for %s was generated without the reasoning engine", day))
	}
	if res.Degraded && len(res.DegradedDays) == 0 {
		out = append(out, "recommendations were generated without the reasoning engine")
	}
	return out
}
