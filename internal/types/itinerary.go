// README: Synthesized itinerary and recommendation shapes.
package types

import "time"

type Activity struct {
	Time          string     `json:"time"`
	CandidateID   string     `json:"candidate_id,omitempty"`
	Title         string     `json:"title"`
	EstimatedCost float64    `json:"estimated_cost"`
	Provenance    Provenance `json:"provenance,omitempty"`
}

type DayPlan struct {
	Date       time.Time  `json:"date"`
	Activities []Activity `json:"activities"`
	// Degraded marks a day rebuilt deterministically instead of taken from the engine.
	Degraded bool `json:"degraded,omitempty"`
}

// Cost sums the estimated cost of the day's activities.
func (d DayPlan) Cost() float64 {
	var total float64
	for _, a := range d.Activities {
		total += a.EstimatedCost
	}
	return total
}

// Itinerary holds one DayPlan per trip day, ordered by date.
type Itinerary struct {
	Days []DayPlan `json:"days"`
}

func (it Itinerary) TotalCost() float64 {
	var total float64
	for _, d := range it.Days {
		total += d.Cost()
	}
	return total
}

// MaxRecommendations caps the recommendation set.
const MaxRecommendations = 5

type Recommendation struct {
	Rank        int        `json:"rank"`
	CandidateID string     `json:"candidate_id"`
	Name        string     `json:"name"`
	Kind        Kind       `json:"kind"`
	Rationale   string     `json:"rationale"`
	Tags        []string   `json:"tags,omitempty"`
	Provenance  Provenance `json:"provenance"`
}

type RecommendationSet struct {
	Items []Recommendation `json:"items"`
}
