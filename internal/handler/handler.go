package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"rideshare/internal/apperrors"
	"rideshare/internal/attendance"
	"rideshare/internal/auth"
	"rideshare/internal/cloudinary"
	"rideshare/internal/event"
	"rideshare/internal/matching"
	"rideshare/internal/profile"
	"rideshare/internal/riderequest"
)

// AirportDirectory looks up airports near a city.
type AirportDirectory interface {
	NearbyAirports(ctx context.Context, city string) ([]event.Airport, error)
}

// PhotoUploader stores profile photos.
type PhotoUploader interface {
	UploadProfilePhoto(ctx context.Context, userID string, data []byte, filename string) (*cloudinary.UploadResult, error)
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) bool

// Tokens configures token refresh.
type Tokens struct {
	Issuer     string
	SigningKey string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Deps are the services the HTTP layer exposes. Photos may be nil.
type Deps struct {
	Events     *event.Catalog
	Attendance *attendance.Manager
	Matches    *matching.Service
	Requests   *riderequest.Dispatcher
	Profiles   profile.Store
	Airports   AirportDirectory
	Photos     PhotoUploader
	Tokens     Tokens
	Location   *time.Location
	Health     map[string]HealthCheck
	Log        zerolog.Logger
}

type Handler struct {
	Deps
}

func New(d Deps) *Handler {
	if d.Location == nil {
		d.Location = time.UTC
	}
	return &Handler{Deps: d}
}

// Register mounts every route. authMW guards /v1 routes that need a caller; extra runs after it.
func (h *Handler) Register(r *gin.Engine, authMW gin.HandlerFunc, extra ...gin.HandlerFunc) {
	r.GET("/healthz", h.Healthz)
	r.POST("/v1/auth/refresh", h.Refresh)

	v1 := r.Group("/v1", append([]gin.HandlerFunc{authMW}, extra...)...)
	{
		v1.POST("/auth/sync", h.SyncProfile)
		v1.POST("/profile/photo", h.UploadPhoto)

		v1.GET("/airports", h.Airports)
		v1.GET("/events", h.ListEvents)
		v1.GET("/events/:eventID", h.GetEvent)

		v1.GET("/events/:eventID/attendance", h.GetAttendance)
		v1.PUT("/events/:eventID/attendance", h.PutAttendance)
		v1.GET("/events/:eventID/matches", h.Matches)
		v1.POST("/events/:eventID/ride-requests", h.SendRideRequest)

		v1.GET("/ride-requests/inbox", h.Inbox)
		v1.GET("/ride-requests/sent", h.Sent)
	}
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := gin.H{"status": "ok"}
	for name, check := range h.Health {
		ok := check(ctx)
		body[name] = ok
		if !ok {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
	}
	c.JSON(status, body)
}

// caller returns the authenticated claims or aborts with 401.
func (h *Handler) caller(c *gin.Context) (auth.Claims, bool) {
	claims, ok := auth.ClaimsFrom(c)
	if !ok || claims.Subject == "" {
		h.writeError(c, &apperrors.Error{Kind: apperrors.ErrUnauthorized, Message: "authentication required"})
		return auth.Claims{}, false
	}
	return claims, true
}

// identityOf is the identity attendance records are written with. Empty claims stay nil.
func identityOf(claims auth.Claims) attendance.Identity {
	return attendance.Identity{
		UserID:   claims.Subject,
		Name:     optional(claims.Name),
		Email:    optional(claims.Email),
		PhotoURL: optional(claims.Picture),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// event loads the :eventID path parameter or writes the error.
func (h *Handler) event(c *gin.Context) (event.Event, bool) {
	e, err := h.Events.Get(c.Request.Context(), c.Param("eventID"))
	if err != nil {
		h.writeError(c, err)
		return event.Event{}, false
	}
	return e, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, apperrors.ErrMatchQueryFailed),
		errors.Is(err, apperrors.ErrEnrichmentFailed),
		errors.Is(err, apperrors.ErrRequestSendFailed):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError maps an error kind to a status. Only server-side failures are logged.
func (h *Handler) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := apperrors.Message(err, http.StatusText(status))
	if status >= 500 {
		h.Log.Error().Err(err).Str("route", c.FullPath()).Int("status", status).Msg("request failed")
		if status == http.StatusInternalServerError {
			msg = "internal error"
		}
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// errorText renders a per-direction failure for the matches response.
func errorText(err error) string {
	if err == nil {
		return ""
	}
	return apperrors.Message(err, "failed to load ride matches")
}
