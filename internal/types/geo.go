// README: Coordinate value object and pure geographic helpers shared by all pipeline stages.
package types

import (
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether p lies inside the geographic coordinate range.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Round returns p with both components rounded to the given number of decimal places.
func (p Point) Round(places int) Point {
	f := math.Pow(10, float64(places))
	return Point{
		Lat: math.Round(p.Lat*f) / f,
		Lng: math.Round(p.Lng*f) / f,
	}
}

func (p Point) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}

// DistanceKm returns the great-circle distance between p and q.
func (p Point) DistanceKm(q Point) float64 {
	return haversineKm(p.Lat, p.Lng, q.Lat, q.Lng)
}

// Offset moves p by the given north/east displacement in metres.
func (p Point) Offset(northM, eastM float64) Point {
	dLat := northM / (earthRadiusKm * 1000) * 180 / math.Pi
	dLng := eastM / (earthRadiusKm * 1000 * math.Cos(degreesToRadians(p.Lat))) * 180 / math.Pi
	return Point{Lat: p.Lat + dLat, Lng: p.Lng + dLng}
}

// haversineKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
