// README: Itinerary synthesizer; prompts the engine, validates, repairs once and degrades per day.
package synth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"wayfarer/internal/ai"
	"wayfarer/internal/infra"
	"wayfarer/internal/modules/budget"
	"wayfarer/internal/types"
)

type Options struct {
	// Timeout bounds each engine call.
	Timeout time.Duration
	Backoff time.Duration
	// PromptCap bounds the candidates of each kind in the prompt.
	PromptCap int
}

type Result struct {
	Itinerary       types.Itinerary
	Recommendations types.RecommendationSet
	Summary         string
	Degraded        bool
	DegradedDays    []string
	// Repaired is set when the repair round produced the accepted answer.
	Repaired bool
	// DegradeReason explains why deterministic content was used.
	DegradeReason string
}

type Service struct {
	engine ai.Engine
	policy infra.RetryPolicy
	cap    int
	log    zerolog.Logger
}

func NewService(engine ai.Engine, opts Options, log zerolog.Logger) *Service {
	if opts.PromptCap <= 0 {
		opts.PromptCap = DefaultPromptCap
	}
	return &Service{
		engine: engine,
		policy: infra.RetryPolicy{
			Attempts: 2,
			Backoff:  opts.Backoff,
			Timeout:  opts.Timeout,
			Retryable: func(err error) bool {
				return errors.Is(err, ai.ErrUnreachable)
			},
		},
		cap: opts.PromptCap,
		log: log.With().Str("component", "synthesizer").Logger(),
	}
}

// Synthesize turns the bundle and budget into an itinerary with one day per
// trip date and a non-empty recommendation set. It fails only when the engine
// stays unreachable (SynthesisUnavailable) or ctx is cancelled.
func (s *Service) Synthesize(ctx context.Context, bundle *types.DataBundle, plan budget.Plan, req types.TripRequest) (Result, error) {
	dates := req.Dates()
	prompt := BuildPrompt(bundle, plan, req, s.cap)

	raw, err := s.generate(ctx, prompt)
	if err != nil {
		if fatal := s.fatal(ctx, err); fatal != nil {
			return Result{}, fatal
		}
		reason := "engine returned no usable answer"
		if infra.IsTimeout(err) {
			reason = "engine timed out"
		}
		s.log.Warn().Err(err).Str("reason", reason).Msg("degrading full itinerary")
		return s.assemble(Verdict{}, bundle, plan, req, dates, reason), nil
	}

	first := Validate(raw, bundle, dates)
	if first.Valid() {
		return s.assemble(first, bundle, plan, req, dates, ""), nil
	}
	s.log.Warn().Err(first.Err()).Int("violations", len(first.Violations)).Bool("parsed", first.Parsed()).Msg("engine output invalid, requesting repair")

	repaired, err := s.generate(ctx, buildRepairPrompt(prompt, raw, first.Violations))
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return Result{}, cerr
		}
		s.log.Warn().Err(err).Msg("repair call failed")
		return s.degradeFrom(first, Verdict{}, bundle, plan, req, dates), nil
	}

	second := Validate(repaired, bundle, dates)
	if second.Valid() {
		res := s.assemble(second, bundle, plan, req, dates, "")
		res.Repaired = true
		return res, nil
	}
	return s.degradeFrom(first, second, bundle, plan, req, dates), nil
}

// fatal returns the error that must leave Synthesize, or nil when the
// failure is recovered by degrading.
func (s *Service) fatal(ctx context.Context, err error) error {
	if cerr := ctx.Err(); cerr != nil {
		return cerr
	}
	if !infra.IsTimeout(err) && errors.Is(err, ai.ErrUnreachable) {
		s.log.Error().Err(err).Msg("engine unreachable")
		return types.Errorf(types.KindSynthesisUnavailable, "reasoning engine unreachable: %w", err)
	}
	return nil
}

func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	var out string
	err := infra.Retry(ctx, s.policy, func(ctx context.Context) error {
		raw, err := s.engine.Generate(ctx, prompt)
		if err != nil {
			return err
		}
		out = raw
		return nil
	})
	return out, err
}

// degradeFrom keeps the valid parts of the better parseable verdict.
func (s *Service) degradeFrom(first, second Verdict, bundle *types.DataBundle, plan budget.Plan, req types.TripRequest, dates []time.Time) Result {
	best := first
	if second.Parsed() && (!first.Parsed() || len(second.Violations) < len(first.Violations)) {
		best = second
	}
	reason := "engine output failed validation after repair"
	if !best.Parsed() {
		reason = "engine output could not be parsed"
	}
	res := s.assemble(best, bundle, plan, req, dates, reason)
	s.log.Warn().
		Err(best.Err()).
		Strs("degraded_days", res.DegradedDays).
		Int("violations", len(best.Violations)).
		Msg("degraded itinerary")
	return res
}

// assemble builds the result from v, rebuilding every day and the
// recommendation set that v does not supply validly. An unparsed verdict
// yields a fully deterministic result.
func (s *Service) assemble(v Verdict, bundle *types.DataBundle, plan budget.Plan, req types.TripRequest, dates []time.Time, reason string) Result {
	res := Result{DegradeReason: reason}
	bad := v.invalidDays()

	byDate := make(map[string]DayOutput)
	if v.Output != nil {
		for _, d := range v.Output.Days {
			if _, dup := byDate[d.Date]; !dup {
				byDate[d.Date] = d
			}
		}
	}

	res.Itinerary.Days = make([]types.DayPlan, 0, len(dates))
	for i, date := range dates {
		key := date.Format(types.DateLayout)
		if d, ok := byDate[key]; ok && !bad[key] {
			res.Itinerary.Days = append(res.Itinerary.Days, convertDay(date, d, bundle))
			continue
		}
		res.Itinerary.Days = append(res.Itinerary.Days, fallbackDay(date, i, bundle, plan))
		res.DegradedDays = append(res.DegradedDays, key)
	}

	if v.Output == nil || v.recommendationsInvalid() {
		res.Recommendations = fallbackRecommendations(bundle, req)
		res.Degraded = true
	} else {
		res.Recommendations = convertRecommendations(v.Output.Recommendations, bundle, req)
	}
	if len(res.DegradedDays) > 0 {
		res.Degraded = true
	}

	if v.Output != nil && strings.TrimSpace(v.Output.Summary) != "" {
		res.Summary = strings.TrimSpace(v.Output.Summary)
	} else {
		res.Summary = fallbackSummary(req, res.Itinerary)
	}
	if res.Degraded && res.DegradeReason == "" {
		res.DegradeReason = "engine output failed validation"
	}
	return res
}

func convertDay(date time.Time, d DayOutput, bundle *types.DataBundle) types.DayPlan {
	day := types.DayPlan{Date: date, Activities: make([]types.Activity, 0, len(d.Activities))}
	for _, a := range d.Activities {
		act := types.Activity{
			Time:          strings.TrimSpace(a.Time),
			CandidateID:   a.CandidateID,
			Title:         strings.TrimSpace(a.Title),
			EstimatedCost: a.EstimatedCost,
		}
		if c, ok := bundle.Lookup(a.CandidateID); ok {
			act.Provenance = c.Provenance
			if act.Title == "" {
				act.Title = c.Name
			}
		}
		day.Activities = append(day.Activities, act)
	}
	return day
}

func convertRecommendations(items []RecommendationOutput, bundle *types.DataBundle, req types.TripRequest) types.RecommendationSet {
	set := types.RecommendationSet{Items: make([]types.Recommendation, 0, len(items))}
	for i, r := range items {
		c, _ := bundle.Lookup(r.CandidateID)
		tags := r.Tags
		if len(tags) == 0 {
			tags = tagsFor(c, req)
		}
		set.Items = append(set.Items, types.Recommendation{
			Rank:        i + 1,
			CandidateID: c.ID,
			Name:        c.Name,
			Kind:        c.Kind,
			Rationale:   strings.TrimSpace(r.Rationale),
			Tags:        tags,
			Provenance:  c.Provenance,
		})
	}
	return set
}
