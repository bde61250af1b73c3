// README: Deterministic synthetic candidates used when a live provider is unavailable or returns nothing.
package fallback

import (
	"fmt"
	"hash/fnv"
	"math"

	"wayfarer/internal/types"
)

const (
	sourceName = "fallback"
	// spiralStepM spaces generated records so that duplicate detection never merges them.
	spiralStepM = 350.0
	goldenAngle = 2.399963229728653
)

type template struct {
	name     string
	category string
	types    []string
}

var placeTemplates = []template{
	{"Historic Center", "tourist_attraction", []string{"tourist_attraction", "church"}},
	{"City Museum", "museum", []string{"museum"}},
	{"Central Park", "park", []string{"park"}},
	{"Old Town Market", "store", []string{"store", "food"}},
	{"Riverside Promenade", "tourist_attraction", []string{"tourist_attraction", "park"}},
	{"Local Bistro", "restaurant", []string{"restaurant", "food"}},
	{"Art Gallery", "art_gallery", []string{"art_gallery"}},
	{"Panorama Viewpoint", "tourist_attraction", []string{"tourist_attraction"}},
	{"Night Market", "night_club", []string{"bar", "night_club"}},
	{"Botanical Garden", "park", []string{"park"}},
}

var hotelTemplates = []template{
	{"Grand Hotel", "lodging", []string{"lodging"}},
	{"Central Inn", "lodging", []string{"lodging"}},
	{"Boutique Suites", "lodging", []string{"lodging"}},
	{"Riverside Lodge", "lodging", []string{"lodging"}},
	{"City Hostel", "lodging", []string{"lodging"}},
	{"Garden Residence", "lodging", []string{"lodging"}},
}

// Generator produces the same records for the same (kind, centre, count).
type Generator struct{}

func New() *Generator {
	return &Generator{}
}

// Generate returns count synthetic records around center. A non-positive count yields none.
func (g *Generator) Generate(kind types.Kind, center types.Point, count int) []types.CandidateRecord {
	if count <= 0 {
		return nil
	}
	templates := placeTemplates
	if kind == types.KindHotel {
		templates = hotelTemplates
	}
	anchor := center.Round(4)

	out := make([]types.CandidateRecord, count)
	for i := 0; i < count; i++ {
		h := seed(kind, anchor, i)
		tpl := templates[i%len(templates)]

		name := tpl.name
		if round := i / len(templates); round > 0 {
			name = fmt.Sprintf("%s %d", tpl.name, round+1)
		}

		rating := 3.8 + float64(h%12)/10
		rec := types.CandidateRecord{
			ID:         fmt.Sprintf("fallback:%s:%d", kind, i+1),
			Name:       name,
			Kind:       kind,
			Category:   tpl.category,
			Types:      append([]string(nil), tpl.types...),
			Rating:     &rating,
			Location:   spiral(anchor, i),
			Address:    "Sample listing (live data unavailable)",
			Source:     sourceName,
			Provenance: types.ProvenanceFallback,
		}
		if kind == types.KindHotel {
			rec.Price = &types.Price{Amount: float64(80 + (h%9)*20)}
		} else {
			rec.Price = &types.Price{Tier: 1 + int(h%3)}
		}
		out[i] = rec
	}
	return out
}

func seed(kind types.Kind, anchor types.Point, i int) uint64 {
	f := fnv.New64a()
	fmt.Fprintf(f, "%s|%.4f|%.4f|%d", kind, anchor.Lat, anchor.Lng, i)
	return f.Sum64()
}

// spiral places the i-th record on a sunflower spiral around the centre.
func spiral(center types.Point, i int) types.Point {
	r := spiralStepM * math.Sqrt(float64(i+1))
	theta := float64(i) * goldenAngle
	return center.Offset(r*math.Cos(theta), r*math.Sin(theta))
}
