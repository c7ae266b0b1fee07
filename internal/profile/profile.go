package profile

import (
	"context"
	"fmt"
	"time"
)

// MaxBatchSize is the most ids a single GetByIDs call accepts. Callers with more ids must chunk.
const MaxBatchSize = 30

// Profile is the display data of a user, merged from the identity provider on every sign-in.
type Profile struct {
	UserID      string    `json:"user_id"`
	DisplayName *string   `json:"display_name,omitempty"`
	PhotoURL    *string   `json:"photo_url,omitempty"`
	Email       *string   `json:"email,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	LastLogin   time.Time `json:"last_login"`
}

// Store persists profiles.
type Store interface {
	// Upsert creates the profile or merges present fields into the stored one.
	Upsert(ctx context.Context, p Profile) (Profile, error)
	// Get returns nil, nil when the user has no profile.
	Get(ctx context.Context, userID string) (*Profile, error)
	// GetByIDs returns the profiles that exist among ids, in no particular order.
	GetByIDs(ctx context.Context, ids []string) ([]Profile, error)
	SetPhotoURL(ctx context.Context, userID, url string) error
}

// ErrBatchTooLarge is returned by GetByIDs when more than MaxBatchSize ids are passed.
var ErrBatchTooLarge = fmt.Errorf("profile: at most %d ids per query", MaxBatchSize)

func merge(stored, incoming Profile) Profile {
	out := stored
	if incoming.DisplayName != nil {
		out.DisplayName = incoming.DisplayName
	}
	if incoming.PhotoURL != nil {
		out.PhotoURL = incoming.PhotoURL
	}
	if incoming.Email != nil {
		out.Email = incoming.Email
	}
	if !incoming.LastLogin.IsZero() {
		out.LastLogin = incoming.LastLogin
	}
	return out
}
