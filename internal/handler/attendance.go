package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rideshare/internal/apperrors"
	"rideshare/internal/attendance"
	"rideshare/internal/event"
)

// legInput is one leg as entered in the travel form. Empty date and time clear the leg.
type legInput struct {
	Airport string `json:"airport"`
	Date    string `json:"date"`
	Time    string `json:"time"`
}

// attendanceRequest is the PUT body. An omitted leg is kept as stored; an omitted attending
// flag keeps the stored value.
type attendanceRequest struct {
	Attending *bool     `json:"attending"`
	Arrival   *legInput `json:"arrival"`
	Departure *legInput `json:"departure"`
}

func (h *Handler) GetAttendance(c *gin.Context) {
	claims, ok := h.caller(c)
	if !ok {
		return
	}
	e, ok := h.event(c)
	if !ok {
		return
	}
	rec, err := h.Attendance.Get(c.Request.Context(), claims.Subject, e.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendance": rec})
}

func (h *Handler) PutAttendance(c *gin.Context) {
	claims, ok := h.caller(c)
	if !ok {
		return
	}
	e, ok := h.event(c)
	if !ok {
		return
	}
	var req attendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, apperrors.Validation("invalid request body"))
		return
	}

	details, err := h.travelDetails(e, req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	attending := false
	if req.Attending != nil {
		attending = *req.Attending
	} else {
		current, err := h.Attendance.Get(c.Request.Context(), claims.Subject, e.ID)
		if err != nil {
			h.writeError(c, err)
			return
		}
		attending = current != nil && current.Attending
	}

	rec, err := h.Attendance.SetAttendance(c.Request.Context(), identityOf(claims), e.ID, attending, details)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendance": rec})
}

// travelDetails parses both legs before anything is written.
func (h *Handler) travelDetails(e event.Event, req attendanceRequest) (*attendance.TravelDetails, error) {
	if req.Arrival == nil && req.Departure == nil {
		return nil, nil
	}
	var details attendance.TravelDetails
	for _, leg := range []struct {
		name  string
		input *legInput
		dst   *attendance.LegUpdate
	}{
		{"arrival", req.Arrival, &details.Arrival},
		{"departure", req.Departure, &details.Departure},
	} {
		if leg.input == nil {
			continue
		}
		u, err := attendance.ParseLeg(leg.name, leg.input.Airport, leg.input.Date, leg.input.Time, h.Location)
		if err != nil {
			return nil, err
		}
		if v, ok := u.Value(); ok && len(e.Airports) > 0 && !e.HasAirport(v.Airport) {
			return nil, apperrors.Validation("%s airport %q does not serve this event", leg.name, v.Airport)
		}
		*leg.dst = u
	}
	return &details, nil
}
