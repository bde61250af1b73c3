// README: Source fetcher; cache-first provider access with a bounded timeout, one retry and stale fallback.
package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"wayfarer/internal/cache"
	"wayfarer/internal/infra"
	"wayfarer/internal/types"
)

type Fetcher struct {
	source Source
	kind   types.Kind
	cache  cache.Store
	ttl    time.Duration
	policy infra.RetryPolicy
	log    zerolog.Logger
	now    func() time.Time
}

func NewFetcher(source Source, kind types.Kind, store cache.Store, ttl time.Duration, policy infra.RetryPolicy, log zerolog.Logger) *Fetcher {
	return &Fetcher{
		source: source,
		kind:   kind,
		cache:  store,
		ttl:    ttl,
		policy: policy,
		log:    log.With().Str("component", "fetcher").Str("provider", source.Name()).Logger(),
		now:    time.Now,
	}
}

// Provider names the underlying source.
func (f *Fetcher) Provider() string {
	return f.source.Name()
}

// Fetch returns live records for q. Provider trouble never surfaces as an error:
// it yields an Unavailable result, or stale cached records when any are held.
// The returned error is non-nil only for an invalid query.
func (f *Fetcher) Fetch(ctx context.Context, q Query) (Result, error) {
	if q.Kind == "" {
		q.Kind = f.kind
	}
	if err := q.validate(); err != nil {
		return Result{}, err
	}

	key := cache.Fingerprint(f.source.Name(), cache.Params{
		Center:    q.Center,
		Radius:    q.RadiusMeters,
		Interests: q.Interests,
		Limit:     q.Limit,
		Extra:     map[string]string{"kind": string(q.Kind)},
	})

	var stale []types.CandidateRecord
	if e, ok, err := f.cache.Get(ctx, key); err != nil {
		f.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if ok {
		var recs []types.CandidateRecord
		if derr := e.Decode(&recs); derr != nil {
			f.log.Warn().Err(derr).Str("key", key).Msg("discarding undecodable cache entry")
		} else if e.Fresh(f.now()) {
			return Result{Records: recs, FromCache: true}, nil
		} else {
			stale = recs
		}
	}

	var records []types.CandidateRecord
	err := infra.Retry(ctx, f.policy, func(ctx context.Context) error {
		recs, err := f.source.Search(ctx, q)
		if err != nil {
			return err
		}
		records = recs
		return nil
	})
	if err != nil {
		reason := unavailableReason(ctx, err)
		if stale != nil {
			f.log.Warn().Err(err).Int("records", len(stale)).Msg("provider unavailable, serving stale cache")
			return Result{Records: stale, FromCache: true, Stale: true}, nil
		}
		f.log.Warn().Err(err).Str("reason", reason).Msg("provider unavailable")
		return Unavailable(reason), nil
	}

	records = f.normalize(records)
	if e, err := cache.NewEntry(key, records, f.now(), f.ttl); err == nil {
		if err := f.cache.Set(ctx, e); err != nil {
			f.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
	return Ok(records), nil
}

// normalize enforces the record invariants the sources are not trusted with.
func (f *Fetcher) normalize(in []types.CandidateRecord) []types.CandidateRecord {
	out := make([]types.CandidateRecord, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, r := range in {
		r.Name = strings.TrimSpace(r.Name)
		if r.Name == "" || !r.Location.Valid() {
			continue
		}
		if r.ID == "" {
			r.ID = fmt.Sprintf("%s:%s:%s", f.source.Name(), types.NormalizeName(r.Name), r.Location.Round(4))
		}
		if !strings.Contains(r.ID, ":") {
			r.ID = f.source.Name() + ":" + r.ID
		}
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		r.Kind = f.kind
		r.Provenance = types.ProvenanceLive
		if r.Source == "" {
			r.Source = f.source.Name()
		}
		if r.Rating != nil && (*r.Rating < 0 || *r.Rating > 5) {
			r.Rating = nil
		}
		out = append(out, r)
	}
	return out
}

func unavailableReason(ctx context.Context, err error) string {
	switch {
	case ctx.Err() != nil:
		return "request cancelled: " + ctx.Err().Error()
	case infra.IsTimeout(err):
		return "provider timed out"
	default:
		return err.Error()
	}
}
