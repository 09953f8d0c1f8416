package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is a server-side session record. Deleting the row revokes the
// session; outstanding access tokens stay valid until natural expiry.
type RefreshToken struct {
	ID        uuid.UUID `json:"id"`
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// EmailVerification is a pending signup verification token. Single-use:
// UsedAt is set when consumed.
type EmailVerification struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Token     string     `json:"token"`
	Role      Role       `json:"role"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
