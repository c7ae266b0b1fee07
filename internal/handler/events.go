package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"rideshare/internal/apperrors"
	"rideshare/internal/event"
)

func (h *Handler) Airports(c *gin.Context) {
	city := strings.TrimSpace(c.Query("city"))
	if city == "" {
		h.writeError(c, apperrors.Validation("city is required"))
		return
	}
	airports, err := h.Deps.Airports.NearbyAirports(c.Request.Context(), city)
	if err != nil {
		h.writeError(c, apperrors.Wrap(apperrors.ErrUnavailable, err, "airport lookup failed"))
		return
	}
	if airports == nil {
		airports = []event.Airport{}
	}
	c.JSON(http.StatusOK, gin.H{"airports": airports})
}

func (h *Handler) ListEvents(c *gin.Context) {
	events, err := h.Events.Upcoming(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	if events == nil {
		events = []event.Event{}
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *Handler) GetEvent(c *gin.Context) {
	e, ok := h.event(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, e)
}
