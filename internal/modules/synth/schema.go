// README: Engine output contract; the wire shape the synthesizer asks for and parses.
package synth

// Output is the JSON document the engine must return.
type Output struct {
	Days            []DayOutput            `json:"days"`
	Recommendations []RecommendationOutput `json:"recommendations"`
	Summary         string                 `json:"summary"`
}

type DayOutput struct {
	Date       string           `json:"date"`
	Activities []ActivityOutput `json:"activities"`
}

type ActivityOutput struct {
	Time          string  `json:"time"`
	CandidateID   string  `json:"candidate_id"`
	Title         string  `json:"title"`
	EstimatedCost float64 `json:"estimated_cost"`
}

type RecommendationOutput struct {
	CandidateID string   `json:"candidate_id"`
	Rationale   string   `json:"rationale"`
	Tags        []string `json:"tags"`
}

// activityTimeLayout is the HH:MM slot format.
const activityTimeLayout = "15:04"

const outputSchema = `{
  "days": [
    {
      "date": "YYYY-MM-DD",
      "activities": [
        {"time": "HH:MM", "candidate_id": "id from the candidate list or empty", "title": "string", "estimated_cost": 0}
      ]
    }
  ],
  "recommendations": [
    {"candidate_id": "id from the candidate list", "rationale": "string", "tags": ["string"]}
  ],
  "summary": "string"
}`
