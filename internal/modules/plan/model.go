// README: Trip plan returned to callers and persisted for later retrieval.
package plan

import (
	"time"

	"github.com/google/uuid"

	"wayfarer/internal/modules/budget"
	"wayfarer/internal/types"
)

// Provenance discloses where each candidate collection came from.
type Provenance struct {
	Places types.Provenance `json:"places"`
	Hotels types.Provenance `json:"hotels"`
}

type Plan struct {
	ID                 uuid.UUID                         `json:"id"`
	Request            types.TripRequest                 `json:"request"`
	Itinerary          types.Itinerary                   `json:"itinerary"`
	Recommendations    types.RecommendationSet           `json:"recommendations"`
	Budget             budget.Plan                       `json:"budget"`
	Provenance         Provenance                        `json:"provenance"`
	Sources            map[types.Kind]types.SourceStatus `json:"sources,omitempty"`
	UsedFallback       bool                              `json:"used_fallback"`
	Degraded           bool                              `json:"degraded"`
	DegradedDays       []string                          `json:"degraded_days,omitempty"`
	Caveats            []string                          `json:"caveats,omitempty"`
	Summary            string                            `json:"summary"`
	TotalEstimatedCost float64                           `json:"total_estimated_cost"`
	GeneratedAt        time.Time                         `json:"generated_at"`
}
