// README: Budget allocator; splits a trip budget into category ceilings.
package budget

import (
	"math"

	"github.com/shopspring/decimal"

	"wayfarer/internal/types"
)

var basePoints = map[Category]int64{
	CategoryAccommodation: 45,
	CategoryFood:          25,
	CategoryActivities:    20,
	CategoryTransport:     10,
}

const (
	// maxNetDelta bounds the total adjustment applied to one category.
	maxNetDelta = 5

	shortTripDelta = -5
	longTripDelta  = 5
	longTripDays   = 7
)

// Allocator computes budget plans with a given interest table.
type Allocator struct {
	adjustments Adjustments
}

func NewAllocator(adj Adjustments) *Allocator {
	if adj == nil {
		adj = DefaultAdjustments
	}
	return &Allocator{adjustments: adj}
}

var defaultAllocator = NewAllocator(DefaultAdjustments)

// Allocate uses DefaultAdjustments.
func Allocate(req types.TripRequest) (Plan, error) {
	return defaultAllocator.Allocate(req)
}

// AllocateAmount uses DefaultAdjustments.
func AllocateAmount(total float64, days int, interests []types.Interest) (Plan, error) {
	return defaultAllocator.AllocateAmount(total, days, interests)
}

func (a *Allocator) Allocate(req types.TripRequest) (Plan, error) {
	if req.StartDate.IsZero() || req.EndDate.IsZero() || req.EndDate.Before(req.StartDate) {
		return Plan{}, types.Errorf(types.KindInvalidBudgetInput, "trip dates are empty or inverted")
	}
	return a.AllocateAmount(req.Budget, req.Days(), req.Interests)
}

func (a *Allocator) AllocateAmount(total float64, days int, interests []types.Interest) (Plan, error) {
	if math.IsNaN(total) || math.IsInf(total, 0) || total <= 0 {
		return Plan{}, types.Errorf(types.KindInvalidBudgetInput, "budget must be a positive amount, got %v", total)
	}
	if days < 1 {
		return Plan{}, types.Errorf(types.KindInvalidBudgetInput, "trip must span at least one day, got %d", days)
	}
	amount := decimal.NewFromFloat(total).Round(2)
	if !amount.IsPositive() {
		return Plan{}, types.Errorf(types.KindInvalidBudgetInput, "budget rounds to zero")
	}

	points := a.points(days, interests)
	base := split(amount, basePoints)
	ceilings := split(amount, points)

	var sum int64
	for _, p := range points {
		sum += p
	}
	shares := make(map[Category]decimal.Decimal, len(points))
	for _, cat := range Categories {
		shares[cat] = decimal.NewFromInt(points[cat]).DivRound(decimal.NewFromInt(sum), 4)
	}

	return Plan{
		Total:    amount,
		Days:     days,
		Base:     base,
		Ceilings: ceilings,
		Shares:   shares,
	}, nil
}

// points applies interest and duration deltas to the base split, clamping the
// net change per category.
func (a *Allocator) points(days int, interests []types.Interest) map[Category]int64 {
	delta := make(map[Category]int64, len(Categories))
	seen := make(map[types.Interest]bool, len(interests))
	for _, in := range interests {
		if seen[in] {
			continue
		}
		seen[in] = true
		for _, d := range a.adjustments[in] {
			delta[d.Category] += d.Points
		}
	}
	switch {
	case days == 1:
		delta[CategoryAccommodation] += shortTripDelta
	case days >= longTripDays:
		delta[CategoryAccommodation] += longTripDelta
	}

	out := make(map[Category]int64, len(Categories))
	for _, cat := range Categories {
		d := delta[cat]
		if d > maxNetDelta {
			d = maxNetDelta
		}
		if d < -maxNetDelta {
			d = -maxNetDelta
		}
		out[cat] = basePoints[cat] + d
	}
	return out
}

// split divides amount proportionally to points, rounding each part to the cent
// and giving the remainder to the category with the most points.
func split(amount decimal.Decimal, points map[Category]int64) Ceilings {
	var sum int64
	largest := Categories[0]
	for _, cat := range Categories {
		sum += points[cat]
		if points[cat] > points[largest] {
			largest = cat
		}
	}
	var c Ceilings
	allocated := decimal.Zero
	for _, cat := range Categories {
		part := amount.Mul(decimal.NewFromInt(points[cat])).DivRound(decimal.NewFromInt(sum), 8).Round(2)
		c.set(cat, part)
		allocated = allocated.Add(part)
	}
	c.set(largest, c.Get(largest).Add(amount.Sub(allocated)))
	return c
}
