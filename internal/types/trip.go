// README: Trip request value object and the closed interest vocabulary.
package types

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateLayout is the wire format for trip dates.
const DateLayout = "2006-01-02"

// MaxTripDays bounds the itinerary length, and with it the fallback set and the prompt.
const MaxTripDays = 30

type Interest string

const (
	InterestCulture    Interest = "Culture & History"
	InterestFood       Interest = "Food & Dining"
	InterestNature     Interest = "Nature & Outdoor"
	InterestNightlife  Interest = "Nightlife"
	InterestShopping   Interest = "Shopping"
	InterestAdventure  Interest = "Adventure"
	InterestRelaxation Interest = "Relaxation"
	InterestArtMuseums Interest = "Art & Museums"
)

// AllInterests lists the vocabulary in display order.
var AllInterests = []Interest{
	InterestCulture,
	InterestFood,
	InterestNature,
	InterestNightlife,
	InterestShopping,
	InterestAdventure,
	InterestRelaxation,
	InterestArtMuseums,
}

// interestPlaceTypes maps each interest to the provider place types that satisfy it.
var interestPlaceTypes = map[Interest][]string{
	InterestCulture:    {"museum", "church", "tourist_attraction"},
	InterestFood:       {"restaurant", "cafe"},
	InterestNature:     {"park", "zoo", "aquarium"},
	InterestNightlife:  {"bar", "night_club"},
	InterestShopping:   {"shopping_mall", "store"},
	InterestAdventure:  {"amusement_park", "tourist_attraction"},
	InterestRelaxation: {"spa", "park"},
	InterestArtMuseums: {"museum", "art_gallery"},
}

// DefaultPlaceType is searched when a request names no interests.
const DefaultPlaceType = "tourist_attraction"

// ParseInterest resolves a tag case-insensitively.
func ParseInterest(s string) (Interest, error) {
	s = strings.TrimSpace(s)
	for _, in := range AllInterests {
		if strings.EqualFold(string(in), s) {
			return in, nil
		}
	}
	return "", fmt.Errorf("unknown interest %q", s)
}

// PlaceTypes returns the provider place types for an interest.
func (i Interest) PlaceTypes() []string {
	return interestPlaceTypes[i]
}

// PlaceTypesFor returns the de-duplicated place types for a set of interests, in first-seen order.
func PlaceTypesFor(interests []Interest) []string {
	seen := make(map[string]bool)
	var out []string
	for _, in := range interests {
		for _, pt := range in.PlaceTypes() {
			if !seen[pt] {
				seen[pt] = true
				out = append(out, pt)
			}
		}
	}
	if len(out) == 0 {
		out = []string{DefaultPlaceType}
	}
	return out
}

// MatchInterests returns the interests among wanted that any of the given place types satisfy.
func MatchInterests(placeTypes []string, wanted []Interest) []Interest {
	have := make(map[string]bool, len(placeTypes))
	for _, pt := range placeTypes {
		have[pt] = true
	}
	var out []Interest
	for _, in := range wanted {
		for _, pt := range in.PlaceTypes() {
			if have[pt] {
				out = append(out, in)
				break
			}
		}
	}
	return out
}

// SortedInterests returns a sorted copy, used for stable cache keys.
func SortedInterests(in []Interest) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	sort.Strings(out)
	return out
}

// TripRequest is immutable once built; stages receive it by value.
type TripRequest struct {
	Location  string     `json:"location"`
	StartDate time.Time  `json:"start_date"`
	EndDate   time.Time  `json:"end_date"`
	Budget    float64    `json:"budget"`
	Travelers int        `json:"travelers"`
	Interests []Interest `json:"interests"`
}

// NewTripRequest parses wire dates and interests into a request.
func NewTripRequest(location, start, end string, budget float64, travelers int, interests []string) (TripRequest, error) {
	s, err := time.Parse(DateLayout, strings.TrimSpace(start))
	if err != nil {
		return TripRequest{}, Errorf(KindInvalidBudgetInput, "start date: %w", err)
	}
	e, err := time.Parse(DateLayout, strings.TrimSpace(end))
	if err != nil {
		return TripRequest{}, Errorf(KindInvalidBudgetInput, "end date: %w", err)
	}
	req := TripRequest{
		Location:  strings.TrimSpace(location),
		StartDate: s,
		EndDate:   e,
		Budget:    budget,
		Travelers: travelers,
	}
	for _, raw := range interests {
		in, err := ParseInterest(raw)
		if err != nil {
			return TripRequest{}, Errorf(KindInvalidBudgetInput, "%w", err)
		}
		req.Interests = append(req.Interests, in)
	}
	return req, nil
}

// Days is the inclusive number of calendar days; zero when the range is inverted.
func (r TripRequest) Days() int {
	start := truncateDay(r.StartDate)
	end := truncateDay(r.EndDate)
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

// Dates lists every trip day from start to end inclusive.
func (r TripRequest) Dates() []time.Time {
	n := r.Days()
	out := make([]time.Time, n)
	start := truncateDay(r.StartDate)
	for i := 0; i < n; i++ {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

// HasInterest reports whether the request names in.
func (r TripRequest) HasInterest(in Interest) bool {
	for _, v := range r.Interests {
		if v == in {
			return true
		}
	}
	return false
}

// Validate checks the caller-supplied fields before any provider is contacted.
func (r TripRequest) Validate() error {
	if strings.TrimSpace(r.Location) == "" {
		return Errorf(KindGeocodeUnresolved, "location is empty")
	}
	if r.Budget <= 0 {
		return Errorf(KindInvalidBudgetInput, "budget must be positive, got %v", r.Budget)
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return Errorf(KindInvalidBudgetInput, "start and end dates are required")
	}
	if r.Days() == 0 {
		return Errorf(KindInvalidBudgetInput, "end date %s is before start date %s",
			r.EndDate.Format(DateLayout), r.StartDate.Format(DateLayout))
	}
	if n := r.Days(); n > MaxTripDays {
		return Errorf(KindInvalidBudgetInput, "trip spans %d days, at most %d allowed", n, MaxTripDays)
	}
	if r.Travelers < 1 {
		return Errorf(KindInvalidBudgetInput, "travelers must be at least 1, got %d", r.Travelers)
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
