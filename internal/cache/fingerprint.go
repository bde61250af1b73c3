package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"wayfarer/internal/types"
)

// CoordPrecision is the number of decimals coordinates are rounded to before hashing (~11 m).
const CoordPrecision = 4

// Params is the canonical request description a fingerprint is computed from.
type Params struct {
	Center    types.Point
	Radius    int
	Interests []types.Interest
	Limit     int
	Extra     map[string]string
}

// Fingerprint derives a stable key for a provider request. Coordinates are rounded,
// interests sorted and text normalized so equivalent requests share one entry.
func Fingerprint(provider string, p Params) string {
	c := p.Center.Round(CoordPrecision)
	parts := []string{
		"lat=" + strconv.FormatFloat(c.Lat, 'f', CoordPrecision, 64),
		"lng=" + strconv.FormatFloat(c.Lng, 'f', CoordPrecision, 64),
		"radius=" + strconv.Itoa(p.Radius),
		"interests=" + strings.Join(types.SortedInterests(p.Interests), ","),
		"limit=" + strconv.Itoa(p.Limit),
	}
	if len(p.Extra) > 0 {
		keys := make([]string, 0, len(p.Extra))
		for k := range p.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, k+"="+p.Extra[k])
		}
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return "fetch:" + provider + ":" + hex.EncodeToString(sum[:])
}

// GeocodeKey is the cache key for a free-text location.
func GeocodeKey(location string) string {
	return "geocode:" + NormalizeText(location)
}

// NormalizeText lowercases, trims and collapses internal whitespace.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
