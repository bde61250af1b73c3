package aggregate

import (
	"wayfarer/internal/types"
)

// insertionSort is stable and fine for the small collections handled here.
func insertionSort[T any](items []T, less func(a, b T) bool) {
	for i := 1; i < len(items); i++ {
		key := items[i]
		j := i - 1
		for j >= 0 && less(key, items[j]) {
			items[j+1] = items[j]
			j--
		}
		items[j+1] = key
	}
}

// rankLess orders by rating descending, then price ascending; unknown values sort last.
func rankLess(a, b types.CandidateRecord) bool {
	switch {
	case a.Rating != nil && b.Rating == nil:
		return true
	case a.Rating == nil && b.Rating != nil:
		return false
	case a.Rating != nil && b.Rating != nil && *a.Rating != *b.Rating:
		return *a.Rating > *b.Rating
	}
	switch {
	case a.Price != nil && b.Price == nil:
		return true
	case a.Price == nil && b.Price != nil:
		return false
	case a.Price != nil && b.Price != nil && a.Price.Estimate() != b.Price.Estimate():
		return a.Price.Estimate() < b.Price.Estimate()
	}
	return a.Name < b.Name
}

// merge returns live records in rank order followed by the fallback records.
func merge(live, fallback []types.CandidateRecord) []types.CandidateRecord {
	out := make([]types.CandidateRecord, 0, len(live)+len(fallback))
	out = append(out, live...)
	insertionSort(out, rankLess)
	return append(out, fallback...)
}

// dedupe drops records that are the same venue as an earlier record. Earlier
// records win, so live data beats fallback after merge.
func dedupe(records []types.CandidateRecord) []types.CandidateRecord {
	out := make([]types.CandidateRecord, 0, len(records))
	for _, r := range records {
		dup := false
		for _, kept := range out {
			if kept.SameVenue(r) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, r)
		}
	}
	return out
}

// withinNightlyBudget drops hotels whose known nightly amount exceeds ceiling.
// Hotels without a numeric amount are kept.
func withinNightlyBudget(hotels []types.CandidateRecord, ceiling float64) []types.CandidateRecord {
	if ceiling <= 0 {
		return hotels
	}
	out := make([]types.CandidateRecord, 0, len(hotels))
	for _, h := range hotels {
		if h.Price != nil && h.Price.Amount > 0 && h.Price.Amount > ceiling {
			continue
		}
		out = append(out, h)
	}
	return out
}
