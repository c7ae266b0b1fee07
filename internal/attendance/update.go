package attendance

import (
	"strings"
	"time"

	"rideshare/internal/apperrors"
)

type legOp int

const (
	opKeep legOp = iota
	opClear
	opSet
)

// LegUpdate is an explicit per-leg instruction: keep the stored value, clear it, or replace it.
// The zero value is Keep.
type LegUpdate struct {
	op  legOp
	leg Leg
}

func Keep() LegUpdate { return LegUpdate{op: opKeep} }

func Clear() LegUpdate { return LegUpdate{op: opClear} }

func SetTo(leg Leg) LegUpdate { return LegUpdate{op: opSet, leg: leg} }

func (u LegUpdate) IsKeep() bool  { return u.op == opKeep }
func (u LegUpdate) IsClear() bool { return u.op == opClear }
func (u LegUpdate) IsSet() bool   { return u.op == opSet }

// Value returns the leg carried by a SetTo update.
func (u LegUpdate) Value() (Leg, bool) {
	return u.leg, u.op == opSet
}

// apply returns the leg that results from applying u to current.
func (u LegUpdate) apply(current *Leg) *Leg {
	switch u.op {
	case opClear:
		return nil
	case opSet:
		leg := u.leg
		return &leg
	}
	return current
}

func (u LegUpdate) validate(name string) error {
	if u.op != opSet {
		return nil
	}
	if strings.TrimSpace(u.leg.Airport) == "" {
		return apperrors.Validation("%s airport is required", name)
	}
	if u.leg.Time.IsZero() {
		return apperrors.Validation("%s time is required", name)
	}
	return nil
}

// TravelDetails carries one instruction per leg.
type TravelDetails struct {
	Arrival   LegUpdate
	Departure LegUpdate
}

func (t TravelDetails) setsAny() bool {
	return t.Arrival.IsSet() || t.Departure.IsSet()
}

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// ParseLeg turns form input into a leg instruction. Both date and clock empty clears the leg,
// both present sets it, anything else is a validation error.
func ParseLeg(name, airport, date, clock string, loc *time.Location) (LegUpdate, error) {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	switch {
	case date == "" && clock == "":
		return Clear(), nil
	case date == "":
		return LegUpdate{}, apperrors.Validation("please provide %s date if %s time is set", name, name)
	case clock == "":
		return LegUpdate{}, apperrors.Validation("please provide %s time if %s date is set", name, name)
	}
	if loc == nil {
		loc = time.UTC
	}
	d, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return LegUpdate{}, apperrors.Validation("invalid %s date, use YYYY-MM-DD", name)
	}
	c, err := time.Parse(clockLayout, clock)
	if err != nil {
		return LegUpdate{}, apperrors.Validation("invalid %s time format, use HH:mm", name)
	}
	at := time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), 0, 0, loc)
	u := SetTo(Leg{Airport: strings.TrimSpace(airport), Time: at.UTC()})
	if err := u.validate(name); err != nil {
		return LegUpdate{}, err
	}
	return u, nil
}
