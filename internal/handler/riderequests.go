package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rideshare/internal/apperrors"
	"rideshare/internal/attendance"
	"rideshare/internal/riderequest"
)

type sendRideRequest struct {
	RecipientID string `json:"recipient_id" binding:"required"`
	Type        string `json:"type" binding:"required"`
}

func (h *Handler) SendRideRequest(c *gin.Context) {
	claims, ok := h.caller(c)
	if !ok {
		return
	}
	e, ok := h.event(c)
	if !ok {
		return
	}
	var req sendRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, apperrors.Validation("recipient_id and type are required"))
		return
	}
	typ, err := attendance.ParseDirection(req.Type)
	if err != nil {
		h.writeError(c, err)
		return
	}
	sender, err := h.Attendance.Get(c.Request.Context(), claims.Subject, e.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	out, err := h.Requests.Send(c.Request.Context(), riderequest.SendInput{
		SenderID:         claims.Subject,
		RecipientID:      req.RecipientID,
		EventID:          e.ID,
		Type:             typ,
		SenderAttendance: sender,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ride_request": out})
}

func (h *Handler) Inbox(c *gin.Context) {
	claims, ok := h.caller(c)
	if !ok {
		return
	}
	reqs, err := h.Requests.ListForRecipient(c.Request.Context(), claims.Subject, pageFrom(c))
	h.writeRequests(c, reqs, err)
}

func (h *Handler) Sent(c *gin.Context) {
	claims, ok := h.caller(c)
	if !ok {
		return
	}
	reqs, err := h.Requests.ListSent(c.Request.Context(), claims.Subject, pageFrom(c))
	h.writeRequests(c, reqs, err)
}

func (h *Handler) writeRequests(c *gin.Context, reqs []riderequest.Request, err error) {
	if err != nil {
		h.writeError(c, err)
		return
	}
	if reqs == nil {
		reqs = []riderequest.Request{}
	}
	c.JSON(http.StatusOK, gin.H{"ride_requests": reqs})
}

func pageFrom(c *gin.Context) riderequest.Page {
	var p riderequest.Page
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			p.Limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			p.Offset = parsed
		}
	}
	return p
}
