// README: Structural validation of engine output against the bundle and the trip dates.
package synth

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"wayfarer/internal/ai"
	"wayfarer/internal/types"
)

// Violation is one broken constraint. Day is the affected date (YYYY-MM-DD)
// when the problem belongs to a single day, empty otherwise.
type Violation struct {
	Day     string `json:"day,omitempty"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.Day != "" {
		return fmt.Sprintf("day %s: %s: %s", v.Day, v.Field, v.Message)
	}
	return v.Field + ": " + v.Message
}

// Verdict is the result of validating one engine answer. Output is nil when
// the answer did not parse.
type Verdict struct {
	Output     *Output
	Violations []Violation
}

func (v Verdict) Valid() bool {
	return v.Output != nil && len(v.Violations) == 0
}

func (v Verdict) Parsed() bool {
	return v.Output != nil
}

// Err reports the violations as one SynthesisSchemaViolation error, nil for a valid verdict.
func (v Verdict) Err() error {
	if v.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(v.Violations))
	for _, vi := range v.Violations {
		msgs = append(msgs, vi.String())
	}
	if len(msgs) == 0 {
		msgs = append(msgs, "no output")
	}
	return types.Errorf(types.KindSynthesisSchemaViolation, "%s", strings.Join(msgs, "; "))
}

// invalidDays returns the dates whose day entry must be rebuilt.
func (v Verdict) invalidDays() map[string]bool {
	out := make(map[string]bool)
	for _, vi := range v.Violations {
		if vi.Day != "" {
			out[vi.Day] = true
		}
	}
	return out
}

func (v Verdict) recommendationsInvalid() bool {
	for _, vi := range v.Violations {
		if strings.HasPrefix(vi.Field, "recommendations") {
			return true
		}
	}
	return false
}

// Validate parses raw and checks it against the trip dates and the bundle.
func Validate(raw string, bundle *types.DataBundle, dates []time.Time) Verdict {
	var out Output
	if err := json.Unmarshal([]byte(ai.CleanJSON(raw)), &out); err != nil {
		return Verdict{Violations: []Violation{{Field: "output", Message: "not a valid JSON document: " + err.Error()}}}
	}

	var vs []Violation
	add := func(day, field, format string, args ...any) {
		vs = append(vs, Violation{Day: day, Field: field, Message: fmt.Sprintf(format, args...)})
	}

	want := make(map[string]bool, len(dates))
	for _, d := range dates {
		want[d.Format(types.DateLayout)] = true
	}
	seen := make(map[string]bool, len(out.Days))
	for i, d := range out.Days {
		switch {
		case d.Date == "":
			add("", fmt.Sprintf("days[%d].date", i), "missing")
			continue
		case !want[d.Date]:
			add("", fmt.Sprintf("days[%d].date", i), "%q is outside the trip", d.Date)
			continue
		case seen[d.Date]:
			add(d.Date, fmt.Sprintf("days[%d].date", i), "duplicate day")
			continue
		}
		seen[d.Date] = true

		if len(d.Activities) == 0 {
			add(d.Date, fmt.Sprintf("days[%d].activities", i), "no activities")
		}
		for j, a := range d.Activities {
			field := fmt.Sprintf("days[%d].activities[%d]", i, j)
			if _, err := time.Parse(activityTimeLayout, strings.TrimSpace(a.Time)); err != nil {
				add(d.Date, field+".time", "time slot %q is not HH:MM", a.Time)
			}
			if a.EstimatedCost < 0 {
				add(d.Date, field+".estimated_cost", "negative cost %v", a.EstimatedCost)
			}
			if a.CandidateID == "" && strings.TrimSpace(a.Title) == "" {
				add(d.Date, field, "needs a candidate_id or a title")
			}
			if a.CandidateID != "" {
				if _, ok := bundle.Lookup(a.CandidateID); !ok {
					add(d.Date, field+".candidate_id", "unknown candidate %q", a.CandidateID)
				}
			}
		}
	}
	for _, d := range dates {
		key := d.Format(types.DateLayout)
		if !seen[key] {
			add(key, "days", "missing day")
		}
	}

	switch n := len(out.Recommendations); {
	case n == 0:
		add("", "recommendations", "empty")
	case n > types.MaxRecommendations:
		add("", "recommendations", "%d items, at most %d allowed", n, types.MaxRecommendations)
	}
	hotels := 0
	recommended := make(map[string]bool, len(out.Recommendations))
	for i, r := range out.Recommendations {
		field := fmt.Sprintf("recommendations[%d].candidate_id", i)
		c, ok := bundle.Lookup(r.CandidateID)
		switch {
		case !ok:
			add("", field, "unknown candidate %q", r.CandidateID)
			continue
		case recommended[c.ID]:
			add("", field, "duplicate candidate %q", r.CandidateID)
			continue
		}
		recommended[c.ID] = true
		if c.Kind == types.KindHotel {
			hotels++
		}
	}
	if len(out.Recommendations) > 0 && hotels == 0 && len(bundle.Hotels) > 0 {
		add("", "recommendations", "no hotel among the recommendations")
	}

	return Verdict{Output: &out, Violations: vs}
}
