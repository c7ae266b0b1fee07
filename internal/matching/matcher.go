package matching

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"rideshare/internal/apperrors"
	"rideshare/internal/attendance"
	"rideshare/internal/metrics"
)

// MatchWindow is the tolerance on either side of the reference time. Both ends are inclusive.
const MatchWindow = 30 * time.Minute

// Reference is the leg other attendees are matched against.
type Reference struct {
	Airport   string
	Time      time.Time
	Direction attendance.Direction
}

// ReferenceFor builds the reference for one leg of rec. Airport and Time are empty when the leg is absent.
func ReferenceFor(rec attendance.Record, d attendance.Direction) Reference {
	ref := Reference{Direction: d}
	if leg := rec.Leg(d); leg != nil {
		ref.Airport, ref.Time = leg.Airport, leg.Time
	}
	return ref
}

// Window returns the inclusive match window around t.
func Window(t time.Time) (from, to time.Time) {
	return t.Add(-MatchWindow), t.Add(MatchWindow)
}

// CandidateSource is the storage query the matcher relies on.
type CandidateSource interface {
	FindTravelers(ctx context.Context, q attendance.TravelerQuery) ([]attendance.Record, error)
}

// Matcher finds attendees of the same event traveling through the same airport at about the same time.
type Matcher struct {
	source CandidateSource
	log    zerolog.Logger
}

func NewMatcher(source CandidateSource, log zerolog.Logger) *Matcher {
	return &Matcher{source: source, log: log}
}

// FindMatches returns the records of other attending users whose leg in ref.Direction is at
// ref.Airport within MatchWindow of ref.Time. A reference without airport or time yields no
// matches and no query.
func (m *Matcher) FindMatches(ctx context.Context, eventID, requesterID string, ref Reference) ([]attendance.Record, error) {
	if !ref.Direction.Valid() {
		return nil, apperrors.Validation("unknown direction %q", ref.Direction)
	}
	if ref.Airport == "" || ref.Time.IsZero() {
		return nil, nil
	}

	from, to := Window(ref.Time)
	candidates, err := m.source.FindTravelers(ctx, attendance.TravelerQuery{
		EventID:       eventID,
		Direction:     ref.Direction,
		Airport:       ref.Airport,
		From:          from,
		To:            to,
		ExcludeUserID: requesterID,
	})
	metrics.MatchQueries.WithLabelValues(string(ref.Direction), metrics.Outcome(err)).Inc()
	if err != nil {
		m.log.Error().Err(err).Str("event_id", eventID).Str("direction", string(ref.Direction)).Msg("match query failed")
		return nil, apperrors.Wrap(apperrors.ErrMatchQueryFailed, err, "failed to load ride matches")
	}

	// The store's filtering is not trusted; every condition is checked again here.
	out := make([]attendance.Record, 0, len(candidates))
	for _, c := range candidates {
		if c.EventID != eventID || !c.Attending || c.UserID == requesterID {
			continue
		}
		leg := c.Leg(ref.Direction)
		if leg == nil || leg.Airport != ref.Airport || leg.Time.Before(from) || leg.Time.After(to) {
			continue
		}
		out = append(out, c)
	}
	sortByLeg(out, ref.Direction)
	metrics.MatchResults.WithLabelValues(string(ref.Direction)).Observe(float64(len(out)))
	return out, nil
}

// DirectionResult holds the outcome for one direction. Skipped means the requester has no such leg.
type DirectionResult struct {
	Records []attendance.Record
	Skipped bool
	Err     error
}

// TripResult holds arrival and departure outcomes, computed independently.
type TripResult struct {
	Arrival   DirectionResult
	Departure DirectionResult
}

// FindForRecord matches both legs of rec concurrently. A failure in one direction leaves the
// other untouched.
func (m *Matcher) FindForRecord(ctx context.Context, rec attendance.Record) TripResult {
	var res TripResult
	bothDirections(func(d attendance.Direction) {
		r := m.findDirection(ctx, rec, d)
		if d == attendance.Arrival {
			res.Arrival = r
		} else {
			res.Departure = r
		}
	})
	return res
}

func (m *Matcher) findDirection(ctx context.Context, rec attendance.Record, d attendance.Direction) DirectionResult {
	ref := ReferenceFor(rec, d)
	if !rec.Attending || ref.Airport == "" || ref.Time.IsZero() {
		return DirectionResult{Skipped: true}
	}
	records, err := m.FindMatches(ctx, rec.EventID, rec.UserID, ref)
	if err != nil {
		return DirectionResult{Err: err}
	}
	return DirectionResult{Records: records}
}

// bothDirections runs fn for arrival and departure in parallel and waits for both.
func bothDirections(fn func(d attendance.Direction)) {
	var wg sync.WaitGroup
	for _, d := range []attendance.Direction{attendance.Arrival, attendance.Departure} {
		wg.Add(1)
		go func(d attendance.Direction) {
			defer wg.Done()
			fn(d)
		}(d)
	}
	wg.Wait()
}

func sortByLeg(records []attendance.Record, d attendance.Direction) {
	sort.SliceStable(records, func(i, j int) bool {
		ti, tj := records[i].Leg(d).Time, records[j].Leg(d).Time
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return records[i].UserID < records[j].UserID
	})
}
