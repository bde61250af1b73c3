// README: Normalized candidate records (places and hotels) and the aggregated data bundle.
package types

import (
	"regexp"
	"strings"
)

// Kind separates the two candidate collections.
type Kind string

const (
	KindPlace Kind = "place"
	KindHotel Kind = "hotel"
)

// Provenance tells whether a record came from a live provider or the fallback generator.
type Provenance string

const (
	ProvenanceLive     Provenance = "live"
	ProvenanceFallback Provenance = "fallback"
	// ProvenanceMixed only describes a whole collection, never a single record.
	ProvenanceMixed Provenance = "mixed"
)

// tierAmounts maps a 1..4 price tier to a representative amount.
var tierAmounts = map[int]float64{1: 100, 2: 200, 3: 300, 4: 500}

const defaultTierAmount = 150

// Price is either a numeric amount (nightly rate, admission) or a 1..4 tier.
type Price struct {
	Tier   int     `json:"tier,omitempty"`
	Amount float64 `json:"amount,omitempty"`
}

// Estimate returns a comparable amount for ordering and budget filtering.
func (p Price) Estimate() float64 {
	if p.Amount > 0 {
		return p.Amount
	}
	if v, ok := tierAmounts[p.Tier]; ok {
		return v
	}
	return defaultTierAmount
}

type CandidateRecord struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Kind       Kind       `json:"kind"`
	Category   string     `json:"category"`
	Types      []string   `json:"types,omitempty"`
	Price      *Price     `json:"price,omitempty"`
	Rating     *float64   `json:"rating,omitempty"`
	Location   Point      `json:"location"`
	Address    string     `json:"address,omitempty"`
	Source     string     `json:"source"`
	Provenance Provenance `json:"provenance"`
}

// IsLive reports whether the record came from a live provider.
func (c CandidateRecord) IsLive() bool {
	return c.Provenance == ProvenanceLive
}

// DuplicateRadiusKm is how close two same-named records must be to count as one venue.
const DuplicateRadiusKm = 0.15

// SameVenue reports whether c and o share an id, or a normalized name within DuplicateRadiusKm.
func (c CandidateRecord) SameVenue(o CandidateRecord) bool {
	if c.ID != "" && c.ID == o.ID {
		return true
	}
	return c.NormalizedName() == o.NormalizedName() && c.Location.DistanceKm(o.Location) <= DuplicateRadiusKm
}

var nonAlnum = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// NormalizedName is the name used for duplicate detection.
func (c CandidateRecord) NormalizedName() string {
	return NormalizeName(c.Name)
}

// NormalizeName lowercases s and collapses every run of punctuation or whitespace to one space.
func NormalizeName(s string) string {
	s = strings.ToLower(s)
	s = nonAlnum.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// SourceStatus records how one collection of the bundle was obtained.
type SourceStatus struct {
	Provider      string     `json:"provider"`
	Provenance    Provenance `json:"provenance"`
	Reason        string     `json:"reason,omitempty"`
	FromCache     bool       `json:"from_cache,omitempty"`
	Stale         bool       `json:"stale,omitempty"`
	LiveCount     int        `json:"live_count"`
	FallbackCount int        `json:"fallback_count"`
}

// DataBundle is the aggregated, normalized, provenance-tagged candidate set.
// It is built once per request and treated as read-only afterwards.
type DataBundle struct {
	Request      TripRequest           `json:"request"`
	Center       Point                 `json:"center"`
	RadiusMeters int                   `json:"radius_meters"`
	Places       []CandidateRecord     `json:"places"`
	Hotels       []CandidateRecord     `json:"hotels"`
	Sources      map[Kind]SourceStatus `json:"sources"`
}

// Records returns the collection for kind.
func (b *DataBundle) Records(kind Kind) []CandidateRecord {
	if kind == KindHotel {
		return b.Hotels
	}
	return b.Places
}

// Lookup finds a record by id across both collections.
func (b *DataBundle) Lookup(id string) (CandidateRecord, bool) {
	for _, c := range b.Places {
		if c.ID == id {
			return c, true
		}
	}
	for _, c := range b.Hotels {
		if c.ID == id {
			return c, true
		}
	}
	return CandidateRecord{}, false
}

// CollectionProvenance summarizes the provenance of a set of records.
func CollectionProvenance(records []CandidateRecord) Provenance {
	var live, fallback int
	for _, r := range records {
		if r.IsLive() {
			live++
		} else {
			fallback++
		}
	}
	switch {
	case fallback == 0:
		return ProvenanceLive
	case live == 0:
		return ProvenanceFallback
	default:
		return ProvenanceMixed
	}
}
