package budget

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfarer/internal/types"
)

func assertAmount(t *testing.T, want string, got decimal.Decimal, msg string) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "%s: want %s, got %s", msg, want, got)
}

func TestAllocate_ParisFoodTrip(t *testing.T) {
	req, err := types.NewTripRequest("Paris", "2024-06-01", "2024-06-03", 2000, 2, []string{"Food & Dining"})
	require.NoError(t, err)

	p, err := Allocate(req)
	require.NoError(t, err)

	assert.Equal(t, 3, p.Days)
	assertAmount(t, "2000", p.Total, "total")

	assertAmount(t, "900", p.Base.Accommodation, "base accommodation")
	assertAmount(t, "500", p.Base.Food, "base food")
	assertAmount(t, "400", p.Base.Activities, "base activities")
	assertAmount(t, "200", p.Base.Transport, "base transport")

	assertAmount(t, "857.14", p.Ceilings.Accommodation, "accommodation")
	assertAmount(t, "571.43", p.Ceilings.Food, "food")
	assertAmount(t, "380.95", p.Ceilings.Activities, "activities")
	assertAmount(t, "190.48", p.Ceilings.Transport, "transport")
	assertAmount(t, "2000", p.Ceilings.Sum(), "ceilings sum")

	assertAmount(t, "0.4286", p.Shares[CategoryAccommodation], "accommodation share")
	assertAmount(t, "126.98", p.PerDay(CategoryActivities), "activities per day")
}

func TestAllocateAmount(t *testing.T) {
	tests := []struct {
		name      string
		total     float64
		days      int
		interests []types.Interest
		want      [4]string // accommodation, food, activities, transport
	}{
		{
			name:  "no interests keeps the base split",
			total: 1000,
			days:  3,
			want:  [4]string{"450", "250", "200", "100"},
		},
		{
			name:  "one-day trip trims accommodation",
			total: 1000,
			days:  1,
			// points 40/25/20/10 of 95
			want:  [4]string{"421.05", "263.16", "210.53", "105.26"},
		},
		{
			name:      "stacked activity interests clamp at five points",
			total:     1000,
			days:      3,
			interests: []types.Interest{types.InterestCulture, types.InterestArtMuseums, types.InterestAdventure, types.InterestShopping},
			// points 45/25/25/10 of 105; the rounding cent comes off accommodation
			want:      [4]string{"428.56", "238.10", "238.10", "95.24"},
		},
		{
			name:      "long relaxation trip clamps accommodation",
			total:     1100,
			days:      8,
			interests: []types.Interest{types.InterestRelaxation},
			// points 50/25/20/10 of 105; the missing cent goes to accommodation
			want:      [4]string{"523.82", "261.90", "209.52", "104.76"},
		},
		{
			name:      "food and nightlife share one clamp",
			total:     1,
			days:      3,
			interests: []types.Interest{types.InterestFood, types.InterestNightlife},
			// 0.43 + 0.29 + 0.19 + 0.10 overshoots by a cent, taken from accommodation
			want:      [4]string{"0.42", "0.29", "0.19", "0.10"},
		},
		{
			name:      "nature moves points to transport",
			total:     2100,
			days:      4,
			interests: []types.Interest{types.InterestNature, types.InterestNature},
			// points 45/25/20/15 of 105
			want:      [4]string{"900", "500", "400", "300"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := AllocateAmount(tt.total, tt.days, tt.interests)
			require.NoError(t, err)
			for i, cat := range Categories {
				assertAmount(t, tt.want[i], p.Ceilings.Get(cat), string(cat))
			}
			assert.True(t, p.Total.Equal(p.Ceilings.Sum()), "ceilings sum to total")
			assert.True(t, p.Total.Equal(p.Base.Sum()), "base sums to total")
		})
	}
}

func TestAllocateAmount_SumsExactly(t *testing.T) {
	for _, total := range []float64{0.01, 0.07, 1, 99.99, 333.33, 1234.56, 1e6 + 0.01} {
		for _, days := range []int{1, 2, 7} {
			p, err := AllocateAmount(total, days, []types.Interest{types.InterestFood, types.InterestNature})
			require.NoError(t, err)
			assert.Truef(t, p.Total.Equal(p.Ceilings.Sum()), "total %v days %d: %s != %s", total, days, p.Ceilings.Sum(), p.Total)
		}
	}
}

func TestAllocate_InvalidInput(t *testing.T) {
	start := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		run  func() (Plan, error)
	}{
		{"zero budget", func() (Plan, error) { return AllocateAmount(0, 3, nil) }},
		{"negative budget", func() (Plan, error) { return AllocateAmount(-50, 3, nil) }},
		{"NaN budget", func() (Plan, error) { return AllocateAmount(math.NaN(), 3, nil) }},
		{"budget below a cent", func() (Plan, error) { return AllocateAmount(0.001, 3, nil) }},
		{"no days", func() (Plan, error) { return AllocateAmount(100, 0, nil) }},
		{"inverted dates", func() (Plan, error) {
			return Allocate(types.TripRequest{Location: "Paris", StartDate: start, EndDate: start.AddDate(0, 0, -1), Budget: 100, Travelers: 1})
		}},
		{"missing dates", func() (Plan, error) {
			return Allocate(types.TripRequest{Location: "Paris", Budget: 100, Travelers: 1})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.run()
			assert.ErrorIs(t, err, types.ErrInvalidBudgetInput)
		})
	}
}

func TestAllocate_SameDayTrip(t *testing.T) {
	start := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	p, err := Allocate(types.TripRequest{Location: "Rome", StartDate: start, EndDate: start, Budget: 950, Travelers: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Days)
	assertAmount(t, "400", p.Ceilings.Accommodation, "accommodation")
}

func TestNewAllocator_CustomTable(t *testing.T) {
	a := NewAllocator(Adjustments{types.InterestShopping: {{CategoryTransport, -5}, {CategoryActivities, 5}}})
	p, err := a.AllocateAmount(100, 3, []types.Interest{types.InterestShopping, types.InterestFood})
	require.NoError(t, err)
	assertAmount(t, "45", p.Ceilings.Accommodation, "accommodation")
	assertAmount(t, "25", p.Ceilings.Food, "food ignored by custom table")
	assertAmount(t, "25", p.Ceilings.Activities, "activities")
	assertAmount(t, "5", p.Ceilings.Transport, "transport")
}
