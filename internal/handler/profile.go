package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"rideshare/internal/apperrors"
	"rideshare/internal/auth"
	"rideshare/internal/cloudinary"
	"rideshare/internal/profile"
)

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh exchanges a refresh token for a new token pair.
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, apperrors.Validation("refresh_token is required"))
		return
	}
	claims, err := auth.Parse(req.RefreshToken, h.Tokens.SigningKey, h.Tokens.Issuer)
	if err != nil || claims.Type != auth.TypeRefresh {
		h.writeError(c, &apperrors.Error{Kind: apperrors.ErrUnauthorized, Message: "invalid refresh token", Err: err})
		return
	}
	pair, err := auth.Issue(claims.User(), h.Tokens.Issuer, h.Tokens.SigningKey, h.Tokens.AccessTTL, h.Tokens.RefreshTTL)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// SyncProfile merges the caller's identity claims into their stored profile.
func (h *Handler) SyncProfile(c *gin.Context) {
	claims, ok := h.caller(c)
	if !ok {
		return
	}
	id := identityOf(claims)
	p, err := h.Profiles.Upsert(c.Request.Context(), profile.Profile{
		UserID:      id.UserID,
		DisplayName: id.Name,
		Email:       id.Email,
		PhotoURL:    id.PhotoURL,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

// UploadPhoto stores the multipart "photo" file as the caller's profile photo.
func (h *Handler) UploadPhoto(c *gin.Context) {
	claims, ok := h.caller(c)
	if !ok {
		return
	}
	if h.Photos == nil {
		h.writeError(c, &apperrors.Error{Kind: apperrors.ErrUnavailable, Message: "image storage not configured"})
		return
	}
	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		h.writeError(c, apperrors.Validation("photo file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, cloudinary.MaxPhotoBytes+1))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if len(data) > cloudinary.MaxPhotoBytes {
		h.writeError(c, apperrors.Validation("photo must be at most %d MB", cloudinary.MaxPhotoBytes>>20))
		return
	}

	res, err := h.Photos.UploadProfilePhoto(c.Request.Context(), claims.Subject, data, header.Filename)
	if err != nil {
		h.writeError(c, apperrors.Wrap(apperrors.ErrUnavailable, err, "image upload failed"))
		return
	}
	if err := h.Profiles.SetPhotoURL(c.Request.Context(), claims.Subject, res.SecureURL); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"photo_url": res.SecureURL})
}
