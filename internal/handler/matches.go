package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rideshare/internal/matching"
)

type directionResponse struct {
	Matches []matching.RideMatch `json:"matches"`
	Error   string               `json:"error,omitempty"`
	Skipped bool                 `json:"skipped,omitempty"`
}

type matchesResponse struct {
	Arrival   directionResponse `json:"arrival"`
	Departure directionResponse `json:"departure"`
}

func toDirectionResponse(d matching.DirectionMatches) directionResponse {
	out := directionResponse{Matches: d.Matches, Error: errorText(d.Err), Skipped: d.Skipped}
	if out.Matches == nil {
		out.Matches = []matching.RideMatch{}
	}
	return out
}

// Matches returns co-travelers for the caller's arrival and departure. A failed direction carries
// its own error while the other still returns results.
func (h *Handler) Matches(c *gin.Context) {
	claims, ok := h.caller(c)
	if !ok {
		return
	}
	e, ok := h.event(c)
	if !ok {
		return
	}
	res, err := h.Deps.Matches.ForUser(c.Request.Context(), claims.Subject, e.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	for _, d := range []matching.DirectionMatches{res.Arrival, res.Departure} {
		if d.Err != nil {
			h.Log.Warn().Err(d.Err).Str("user_id", claims.Subject).Str("event_id", e.ID).Msg("ride match direction failed")
		}
	}
	c.JSON(http.StatusOK, matchesResponse{
		Arrival:   toDirectionResponse(res.Arrival),
		Departure: toDirectionResponse(res.Departure),
	})
}
