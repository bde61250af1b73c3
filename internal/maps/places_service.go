// README: Google Places boundary; nearby search for attractions by interest and for lodging.
package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"wayfarer/internal/modules/fetch"
	"wayfarer/internal/types"
)

const (
	// maxTypesPerSearch bounds the Nearby Search calls made for one query.
	maxTypesPerSearch = 4
	defaultLimit      = 20
)

type nearbyClient interface {
	NearbySearch(ctx context.Context, r *maps.NearbySearchRequest) (maps.PlacesSearchResponse, error)
}

// PlacesService is a fetch.Source over Google Nearby Search. The same service
// type serves attractions (typed by interest) and hotels (lodging).
type PlacesService struct {
	client   nearbyClient
	kind     types.Kind
	language string
}

// NewPlacesService returns the attractions source.
func NewPlacesService(client *maps.Client) *PlacesService {
	return &PlacesService{client: client, kind: types.KindPlace, language: "en"}
}

// NewLodgingService returns the hotel source.
func NewLodgingService(client *maps.Client) *PlacesService {
	return &PlacesService{client: client, kind: types.KindHotel, language: "en"}
}

var _ fetch.Source = (*PlacesService)(nil)

func (s *PlacesService) Name() string {
	if s.kind == types.KindHotel {
		return "google_lodging"
	}
	return "google_places"
}

// Search runs one Nearby Search per place type and merges the results by place id.
func (s *PlacesService) Search(ctx context.Context, q fetch.Query) ([]types.CandidateRecord, error) {
	placeTypes := []string{string(maps.PlaceTypeLodging)}
	if s.kind == types.KindPlace {
		placeTypes = types.PlaceTypesFor(q.Interests)
	}
	if len(placeTypes) > maxTypesPerSearch {
		placeTypes = placeTypes[:maxTypesPerSearch]
	}
	limit := q.Limit
	if limit == 0 {
		limit = defaultLimit
	}

	seen := make(map[string]bool)
	var out []types.CandidateRecord
	for _, pt := range placeTypes {
		resp, err := s.client.NearbySearch(ctx, &maps.NearbySearchRequest{
			Location: &maps.LatLng{Lat: q.Center.Lat, Lng: q.Center.Lng},
			Radius:   uint(q.RadiusMeters),
			Type:     maps.PlaceType(pt),
			Language: s.language,
		})
		if err != nil {
			return nil, fmt.Errorf("places api error (%s): %w", pt, err)
		}
		for _, r := range resp.Results {
			if r.PlaceID == "" || seen[r.PlaceID] {
				continue
			}
			seen[r.PlaceID] = true
			out = append(out, s.toCandidate(r, pt))
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *PlacesService) toCandidate(r maps.PlacesSearchResult, searchedType string) types.CandidateRecord {
	c := types.CandidateRecord{
		ID:       "google:" + r.PlaceID,
		Name:     r.Name,
		Kind:     s.kind,
		Category: searchedType,
		Types:    r.Types,
		Location: types.Point{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
		Address:  r.Vicinity,
		Source:   s.Name(),
	}
	if c.Address == "" {
		c.Address = r.FormattedAddress
	}
	if r.Rating > 0 {
		rating := float64(r.Rating)
		c.Rating = &rating
	}
	if r.PriceLevel > 0 {
		c.Price = &types.Price{Tier: r.PriceLevel}
	}
	return c
}
