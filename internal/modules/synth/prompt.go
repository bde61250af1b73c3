// README: Prompt construction for itinerary synthesis and the single repair round.
package synth

import (
	"encoding/json"
	"fmt"
	"strings"

	"wayfarer/internal/modules/budget"
	"wayfarer/internal/types"
)

// DefaultPromptCap bounds the candidates of each kind sent to the engine.
const DefaultPromptCap = 30

type promptCandidate struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Category   string           `json:"category,omitempty"`
	Rating     *float64         `json:"rating,omitempty"`
	Price      *types.Price     `json:"price,omitempty"`
	Provenance types.Provenance `json:"provenance"`
}

func compactCandidates(records []types.CandidateRecord, limit int) string {
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	out := make([]promptCandidate, len(records))
	for i, r := range records {
		out[i] = promptCandidate{
			ID:         r.ID,
			Name:       r.Name,
			Category:   r.Category,
			Rating:     r.Rating,
			Price:      r.Price,
			Provenance: r.Provenance,
		}
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

func formatDates(req types.TripRequest) string {
	dates := req.Dates()
	parts := make([]string, len(dates))
	for i, d := range dates {
		parts[i] = d.Format(types.DateLayout)
	}
	return strings.Join(parts, ", ")
}

// BuildPrompt renders the synthesis prompt. Bundle collections are already
// live-first, so truncating to limit keeps the best live records.
func BuildPrompt(bundle *types.DataBundle, plan budget.Plan, req types.TripRequest, limit int) string {
	if limit <= 0 {
		limit = DefaultPromptCap
	}
	interests := strings.Join(types.SortedInterests(req.Interests), ", ")
	if interests == "" {
		interests = "none given"
	}

	return fmt.Sprintf(`Role: You are a travel planner building a day-by-day itinerary for %s.

Trip:
- Dates (exactly one day entry per date, in this order): %s
- Travelers: %d
- Interests: %s
- Total budget: %s

Budget ceilings for the whole trip (do not exceed):
- accommodation: %s
- food: %s
- activities: %s
- transport: %s

Candidate places (JSON):
%s

Candidate hotels (JSON):
%s

Rules:
1. Use only candidate ids from the lists above in "candidate_id"; leave it empty for free-form items such as meals or walks and give a "title".
2. Every activity needs a "time" in 24h HH:MM format and a non-negative "estimated_cost" per group.
3. Candidates with provenance "fallback" are sample data; prefer "live" candidates.
4. Return between 1 and %d recommendations, each referencing a different candidate id; recommend hotels from the hotel list first, at least one.
5. "summary" is two or three sentences describing the trip.

Output strictly as JSON (no markdown) matching this schema:
%s`,
		req.Location,
		formatDates(req),
		req.Travelers,
		interests,
		plan.Total.StringFixed(2),
		plan.Ceilings.Accommodation.StringFixed(2),
		plan.Ceilings.Food.StringFixed(2),
		plan.Ceilings.Activities.StringFixed(2),
		plan.Ceilings.Transport.StringFixed(2),
		compactCandidates(bundle.Places, limit),
		compactCandidates(bundle.Hotels, limit),
		types.MaxRecommendations,
		outputSchema,
	)
}

// buildRepairPrompt asks the engine to correct its previous answer.
func buildRepairPrompt(original string, previous string, violations []Violation) string {
	var b strings.Builder
	for _, v := range violations {
		b.WriteString("- ")
		b.WriteString(v.String())
		b.WriteString("\n")
	}
	return fmt.Sprintf(`%s

Your previous answer was:
%s

It violated these constraints:
%s
Return the corrected JSON document only, fixing every listed problem and keeping everything else.`,
		original, previous, b.String())
}
