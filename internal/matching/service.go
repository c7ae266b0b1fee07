package matching

import (
	"context"
	"fmt"

	"rideshare/internal/attendance"
)

// AttendanceReader loads the requester's own record.
type AttendanceReader interface {
	Get(ctx context.Context, userID, eventID string) (*attendance.Record, error)
}

// DirectionMatches is the enriched outcome for one direction.
type DirectionMatches struct {
	Matches []RideMatch
	Skipped bool
	Err     error
}

// RideMatches is what the requester sees: arrival and departure matches, each with its own error.
type RideMatches struct {
	Arrival   DirectionMatches
	Departure DirectionMatches
}

// Service matches a user's current attendance record and enriches the results.
type Service struct {
	attendance AttendanceReader
	matcher    *Matcher
	enricher   *Enricher
}

func NewService(att AttendanceReader, matcher *Matcher, enricher *Enricher) *Service {
	return &Service{attendance: att, matcher: matcher, enricher: enricher}
}

// ForUser returns enriched matches for both legs of the user's record at the event. Only loading
// the user's own record can fail the whole call; each direction otherwise fails on its own.
func (s *Service) ForUser(ctx context.Context, userID, eventID string) (RideMatches, error) {
	rec, err := s.attendance.Get(ctx, userID, eventID)
	if err != nil {
		return RideMatches{}, fmt.Errorf("load requester attendance: %w", err)
	}
	if rec == nil {
		return RideMatches{
			Arrival:   DirectionMatches{Skipped: true},
			Departure: DirectionMatches{Skipped: true},
		}, nil
	}

	var out RideMatches
	bothDirections(func(d attendance.Direction) {
		dm := s.direction(ctx, *rec, d)
		if d == attendance.Arrival {
			out.Arrival = dm
		} else {
			out.Departure = dm
		}
	})
	return out, nil
}

func (s *Service) direction(ctx context.Context, rec attendance.Record, d attendance.Direction) DirectionMatches {
	res := s.matcher.findDirection(ctx, rec, d)
	if res.Skipped || res.Err != nil {
		return DirectionMatches{Skipped: res.Skipped, Err: res.Err}
	}
	matches, err := s.enricher.Enrich(ctx, res.Records)
	if err != nil {
		return DirectionMatches{Err: err}
	}
	return DirectionMatches{Matches: matches}
}
