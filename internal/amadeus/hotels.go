// README: Amadeus hotel-list source; client-credentials token is cached until shortly before expiry.
package amadeus

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"wayfarer/internal/modules/fetch"
	"wayfarer/internal/types"
)

const (
	tokenPath     = "/v1/security/oauth2/token"
	byGeocodePath = "/v1/reference-data/locations/hotels/by-geocode"
	// tokenSkew renews the token this long before the provider says it expires.
	tokenSkew    = 30 * time.Second
	defaultLimit = 20
)

// ErrAuth is returned when the token endpoint rejects the credentials.
var ErrAuth = errors.New("amadeus: authentication failed")

type HotelService struct {
	client *resty.Client
	key    string
	secret string
	now    func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func NewHotelService(baseURL, key, secret string) *HotelService {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(15 * time.Second)
	return &HotelService{client: c, key: key, secret: secret, now: time.Now}
}

var _ fetch.Source = (*HotelService)(nil)

func (s *HotelService) Name() string { return "amadeus_hotels" }

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type hotelListResponse struct {
	Data []struct {
		HotelID string `json:"hotelId"`
		Name    string `json:"name"`
		Rating  int    `json:"rating"`
		GeoCode struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"geoCode"`
		Address struct {
			CountryCode string `json:"countryCode"`
		} `json:"address"`
	} `json:"data"`
	Errors []struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// Search lists hotels around the query centre. The hotel list carries no rates,
// so records have a star rating but no price.
func (s *HotelService) Search(ctx context.Context, q fetch.Query) ([]types.CandidateRecord, error) {
	token, err := s.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	radiusKm := int(math.Ceil(float64(q.RadiusMeters) / 1000))
	if radiusKm < 1 {
		radiusKm = 1
	}

	var out hotelListResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(map[string]string{
			"latitude":   strconv.FormatFloat(q.Center.Lat, 'f', 6, 64),
			"longitude":  strconv.FormatFloat(q.Center.Lng, 'f', 6, 64),
			"radius":     strconv.Itoa(radiusKm),
			"radiusUnit": "KM",
		}).
		SetResult(&out).
		SetError(&out).
		Get(byGeocodePath)
	if err != nil {
		return nil, fmt.Errorf("amadeus request: %w", err)
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		s.invalidate()
		return nil, fmt.Errorf("amadeus status %d: %w", resp.StatusCode(), ErrAuth)
	}
	if resp.StatusCode() != http.StatusOK {
		detail := resp.Status()
		if len(out.Errors) > 0 {
			detail = out.Errors[0].Title + ": " + out.Errors[0].Detail
		}
		return nil, fmt.Errorf("amadeus status %d: %s", resp.StatusCode(), detail)
	}

	limit := q.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	records := make([]types.CandidateRecord, 0, len(out.Data))
	for _, h := range out.Data {
		if h.HotelID == "" {
			continue
		}
		rec := types.CandidateRecord{
			ID:       "amadeus:" + h.HotelID,
			Name:     h.Name,
			Kind:     types.KindHotel,
			Category: "lodging",
			Types:    []string{"lodging"},
			Location: types.Point{Lat: h.GeoCode.Latitude, Lng: h.GeoCode.Longitude},
			Address:  h.Address.CountryCode,
			Source:   s.Name(),
		}
		if h.Rating > 0 {
			r := float64(h.Rating)
			rec.Rating = &r
		}
		records = append(records, rec)
		if len(records) >= limit {
			break
		}
	}
	return records, nil
}

func (s *HotelService) accessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.now().Before(s.expiresAt) {
		return s.token, nil
	}

	var tr tokenResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "client_credentials",
			"client_id":     s.key,
			"client_secret": s.secret,
		}).
		SetResult(&tr).
		Post(tokenPath)
	if err != nil {
		return "", fmt.Errorf("amadeus token request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK || tr.AccessToken == "" {
		return "", fmt.Errorf("amadeus token status %d: %w", resp.StatusCode(), ErrAuth)
	}

	s.token = tr.AccessToken
	s.expiresAt = s.now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenSkew)
	return s.token, nil
}

func (s *HotelService) invalidate() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}
