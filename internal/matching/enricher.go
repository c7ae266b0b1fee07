package matching

import (
	"context"

	"golang.org/x/sync/errgroup"

	"rideshare/internal/apperrors"
	"rideshare/internal/attendance"
	"rideshare/internal/metrics"
	"rideshare/internal/profile"
)

// RideMatch is another attendee's record decorated with their profile. It is never stored.
type RideMatch struct {
	attendance.Record
	Profile *profile.Profile `json:"profile"`
}

// ProfileSource is the bounded batch lookup the enricher relies on.
type ProfileSource interface {
	GetByIDs(ctx context.Context, ids []string) ([]profile.Profile, error)
}

// Enricher attaches profiles to attendance records.
type Enricher struct {
	source    ProfileSource
	batchSize int
	parallel  int
}

// NewEnricher creates an enricher issuing batches of at most profile.MaxBatchSize ids,
// with up to parallel batches in flight.
func NewEnricher(source ProfileSource, parallel int) *Enricher {
	if parallel <= 0 {
		parallel = 4
	}
	return &Enricher{source: source, batchSize: profile.MaxBatchSize, parallel: parallel}
}

// Enrich returns one RideMatch per record, in input order. Records without a profile keep a nil
// Profile. Any failed batch fails the whole call.
func (e *Enricher) Enrich(ctx context.Context, records []attendance.Record) ([]RideMatch, error) {
	out := make([]RideMatch, len(records))
	for i, rec := range records {
		out[i] = RideMatch{Record: rec}
	}
	if len(records) == 0 {
		return out, nil
	}

	batches := chunk(distinctUserIDs(records), e.batchSize)
	found := make([][]profile.Profile, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallel)
	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			profiles, err := e.source.GetByIDs(gctx, batch)
			metrics.ProfileBatches.WithLabelValues(metrics.Outcome(err)).Inc()
			if err != nil {
				return err
			}
			found[i] = profiles
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrEnrichmentFailed, err, "failed to load attendee profiles")
	}

	byID := make(map[string]*profile.Profile)
	for _, profiles := range found {
		for i := range profiles {
			byID[profiles[i].UserID] = &profiles[i]
		}
	}
	for i := range out {
		out[i].Profile = byID[out[i].UserID]
	}
	return out, nil
}

func distinctUserIDs(records []attendance.Record) []string {
	seen := make(map[string]struct{}, len(records))
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		if _, ok := seen[rec.UserID]; ok {
			continue
		}
		seen[rec.UserID] = struct{}{}
		ids = append(ids, rec.UserID)
	}
	return ids
}

func chunk[T any](items []T, size int) [][]T {
	var out [][]T
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}
