// README: Fetch query/result shapes and the provider source contract.
package fetch

import (
	"context"
	"errors"

	"wayfarer/internal/types"
)

// ErrInvalidQuery marks a caller bug (bad radius, negative limit, invalid centre).
// It is the only error Fetch returns; provider trouble becomes an Unavailable result.
var ErrInvalidQuery = errors.New("fetch: invalid query")

type Query struct {
	Kind         types.Kind
	Center       types.Point
	RadiusMeters int
	Interests    []types.Interest
	// Limit caps the number of records kept; zero means the source default.
	Limit int
}

func (q Query) validate() error {
	switch {
	case q.RadiusMeters <= 0:
		return errors.Join(ErrInvalidQuery, errors.New("radius must be positive"))
	case q.Limit < 0:
		return errors.Join(ErrInvalidQuery, errors.New("limit must not be negative"))
	case !q.Center.Valid():
		return errors.Join(ErrInvalidQuery, errors.New("center out of range"))
	}
	return nil
}

// Source is one live provider. Implementations convert SDK objects into
// CandidateRecords at the boundary; the fetcher normalizes the rest.
type Source interface {
	Name() string
	Search(ctx context.Context, q Query) ([]types.CandidateRecord, error)
}

// Result is either Ok (Reason empty) or Unavailable (Reason set, Records nil).
type Result struct {
	Records   []types.CandidateRecord
	Reason    string
	FromCache bool
	// Stale marks records served from an expired entry after the provider failed.
	Stale bool
}

func Ok(records []types.CandidateRecord) Result {
	return Result{Records: records}
}

func Unavailable(reason string) Result {
	if reason == "" {
		reason = "provider unavailable"
	}
	return Result{Reason: reason}
}

// Unavailable reports whether the provider could not supply data.
func (r Result) Unavailable() bool {
	return r.Reason != ""
}

// Err is the ProviderUnavailable error behind an Unavailable result, nil otherwise.
func (r Result) Err() error {
	if !r.Unavailable() {
		return nil
	}
	return types.Errorf(types.KindProviderUnavailable, "%s", r.Reason)
}
