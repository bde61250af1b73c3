// README: Deterministic itinerary and recommendations used when the engine output cannot be trusted.
package synth

import (
	"fmt"
	"strings"
	"time"

	"wayfarer/internal/modules/budget"
	"wayfarer/internal/types"
)

const degradedActivityTime = "10:00"

// fallbackDay schedules the index-th top-ranked place on date. Costs split the
// activities ceiling evenly across the trip.
func fallbackDay(date time.Time, index int, bundle *types.DataBundle, plan budget.Plan) types.DayPlan {
	day := types.DayPlan{Date: date, Degraded: true, Activities: []types.Activity{}}
	if len(bundle.Places) == 0 {
		return day
	}
	p := bundle.Places[index%len(bundle.Places)]
	day.Activities = append(day.Activities, types.Activity{
		Time:          degradedActivityTime,
		CandidateID:   p.ID,
		Title:         "Visit " + p.Name,
		EstimatedCost: plan.PerDay(budget.CategoryActivities).InexactFloat64(),
		Provenance:    p.Provenance,
	})
	return day
}

// fallbackRecommendations ranks the top hotels in bundle order.
func fallbackRecommendations(bundle *types.DataBundle, req types.TripRequest) types.RecommendationSet {
	hotels := bundle.Hotels
	if len(hotels) > types.MaxRecommendations {
		hotels = hotels[:types.MaxRecommendations]
	}
	set := types.RecommendationSet{Items: make([]types.Recommendation, 0, len(hotels))}
	for i, h := range hotels {
		set.Items = append(set.Items, types.Recommendation{
			Rank:        i + 1,
			CandidateID: h.ID,
			Name:        h.Name,
			Kind:        h.Kind,
			Rationale:   hotelRationale(h),
			Tags:        tagsFor(h, req),
			Provenance:  h.Provenance,
		})
	}
	return set
}

func hotelRationale(h types.CandidateRecord) string {
	var parts []string
	if h.Rating != nil {
		parts = append(parts, fmt.Sprintf("rated %.1f", *h.Rating))
	}
	if h.Price != nil {
		parts = append(parts, fmt.Sprintf("around %.0f per night", h.Price.Estimate()))
	}
	if len(parts) == 0 {
		return "Well placed for the destination."
	}
	return "Well placed for the destination, " + strings.Join(parts, " and ") + "."
}

func tagsFor(c types.CandidateRecord, req types.TripRequest) []string {
	matched := types.MatchInterests(c.Types, req.Interests)
	tags := make([]string, 0, len(matched)+1)
	for _, in := range matched {
		tags = append(tags, string(in))
	}
	if c.Provenance == types.ProvenanceFallback {
		tags = append(tags, "sample data")
	}
	return tags
}

func fallbackSummary(req types.TripRequest, it types.Itinerary) string {
	var n int
	for _, d := range it.Days {
		n += len(d.Activities)
	}
	return fmt.Sprintf("A %d-day trip to %s for %d traveler(s) with %d planned activities.", req.Days(), req.Location, req.Travelers, n)
}
