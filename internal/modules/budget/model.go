// README: Budget plan shapes; category ceilings in exact decimal amounts.
package budget

import (
	"github.com/shopspring/decimal"

	"wayfarer/internal/types"
)

type Category string

const (
	CategoryAccommodation Category = "accommodation"
	CategoryFood          Category = "food"
	CategoryActivities    Category = "activities"
	CategoryTransport     Category = "transport"
)

// Categories lists every category in allocation order. Ties for the largest
// category resolve to the earliest entry.
var Categories = []Category{CategoryAccommodation, CategoryFood, CategoryActivities, CategoryTransport}

// Ceilings holds one spending ceiling per category.
type Ceilings struct {
	Accommodation decimal.Decimal `json:"accommodation"`
	Food          decimal.Decimal `json:"food"`
	Activities    decimal.Decimal `json:"activities"`
	Transport     decimal.Decimal `json:"transport"`
}

func (c Ceilings) Get(cat Category) decimal.Decimal {
	switch cat {
	case CategoryAccommodation:
		return c.Accommodation
	case CategoryFood:
		return c.Food
	case CategoryActivities:
		return c.Activities
	case CategoryTransport:
		return c.Transport
	}
	return decimal.Zero
}

func (c *Ceilings) set(cat Category, v decimal.Decimal) {
	switch cat {
	case CategoryAccommodation:
		c.Accommodation = v
	case CategoryFood:
		c.Food = v
	case CategoryActivities:
		c.Activities = v
	case CategoryTransport:
		c.Transport = v
	}
}

// Sum adds the four ceilings.
func (c Ceilings) Sum() decimal.Decimal {
	return c.Accommodation.Add(c.Food).Add(c.Activities).Add(c.Transport)
}

// Plan is the allocation for one trip. Base is the unadjusted split and
// Ceilings the interest and duration adjusted one; both sum exactly to Total.
type Plan struct {
	Total    decimal.Decimal              `json:"total"`
	Days     int                          `json:"days"`
	Base     Ceilings                     `json:"base"`
	Ceilings Ceilings                     `json:"ceilings"`
	Shares   map[Category]decimal.Decimal `json:"shares"`
}

// PerDay splits a category ceiling evenly across the trip days, rounded down to the cent.
func (p Plan) PerDay(cat Category) decimal.Decimal {
	if p.Days < 1 {
		return p.Ceilings.Get(cat)
	}
	return p.Ceilings.Get(cat).DivRound(decimal.NewFromInt(int64(p.Days)), 4).RoundFloor(2)
}

// Delta moves share points into one category.
type Delta struct {
	Category Category
	Points   int64
}

// Adjustments maps a traveler interest to the share deltas it applies.
type Adjustments map[types.Interest][]Delta

// DefaultAdjustments is the interest table used by Allocate.
var DefaultAdjustments = Adjustments{
	types.InterestFood:       {{CategoryFood, 5}},
	types.InterestNightlife:  {{CategoryFood, 5}},
	types.InterestCulture:    {{CategoryActivities, 5}},
	types.InterestArtMuseums: {{CategoryActivities, 5}},
	types.InterestAdventure:  {{CategoryActivities, 5}},
	types.InterestShopping:   {{CategoryActivities, 5}},
	types.InterestNature:     {{CategoryTransport, 5}},
	types.InterestRelaxation: {{CategoryAccommodation, 5}},
}
