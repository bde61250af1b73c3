// README: Composite source; queries several providers of one kind in parallel and merges their records.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"wayfarer/internal/types"
)

// MultiSource fans a query out to every source. A failing source is logged and
// skipped; Search fails only when all of them fail.
type MultiSource struct {
	sources []Source
	log     zerolog.Logger
}

func NewMultiSource(log zerolog.Logger, sources ...Source) *MultiSource {
	return &MultiSource{
		sources: sources,
		log:     log.With().Str("component", "multi_source").Logger(),
	}
}

var _ Source = (*MultiSource)(nil)

// Name joins the source names, e.g. "google_lodging+amadeus_hotels".
func (m *MultiSource) Name() string {
	names := make([]string, len(m.sources))
	for i, s := range m.sources {
		names[i] = s.Name()
	}
	return strings.Join(names, "+")
}

// Search returns the records of every source in source order. A record that is
// the same venue as an earlier one is dropped after lending it any rating or
// price the earlier record lacks.
func (m *MultiSource) Search(ctx context.Context, q Query) ([]types.CandidateRecord, error) {
	results := make([][]types.CandidateRecord, len(m.sources))
	errs := make([]error, len(m.sources))

	var g errgroup.Group
	for i, src := range m.sources {
		g.Go(func() error {
			recs, err := src.Search(ctx, q)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", src.Name(), err)
				return nil
			}
			for j := range recs {
				if recs[j].Source == "" {
					recs[j].Source = src.Name()
				}
			}
			results[i] = recs
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
			m.log.Warn().Err(err).Msg("source failed, continuing with the others")
		}
	}
	if failed == len(m.sources) {
		return nil, errors.Join(errs...)
	}

	var out []types.CandidateRecord
	for _, recs := range results {
		for _, r := range recs {
			if i := indexOfVenue(out, r); i >= 0 {
				enrich(&out[i], r)
				continue
			}
			out = append(out, r)
		}
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func indexOfVenue(records []types.CandidateRecord, r types.CandidateRecord) int {
	for i, kept := range records {
		if kept.SameVenue(r) {
			return i
		}
	}
	return -1
}

func enrich(kept *types.CandidateRecord, dup types.CandidateRecord) {
	if kept.Rating == nil {
		kept.Rating = dup.Rating
	}
	if kept.Price == nil {
		kept.Price = dup.Price
	}
	if kept.Address == "" {
		kept.Address = dup.Address
	}
}
