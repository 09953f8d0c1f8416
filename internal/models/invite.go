package models

import (
	"time"

	"github.com/google/uuid"
)

// InviteType distinguishes invites to existing users from invites that
// require registration first.
type InviteType string

const (
	InviteProject            InviteType = "PROJECT_INVITE"
	InviteProjectAndRegister InviteType = "PROJECT_INVITE_AND_REGISTER"
)

// InviteStatus is the stored invite state. Expiry is derived from ExpiresAt
// at read time and never persisted as a status of its own.
type InviteStatus string

const (
	InvitePending  InviteStatus = "PENDING"
	InviteAccepted InviteStatus = "ACCEPTED"
)

// InviteDetails is the opaque payload stored with an invite: the access level
// the redeemer will receive and, when the target email already had an
// account at issue time, that user's id.
type InviteDetails struct {
	AccessLevel    string     `json:"access_level"`
	ExistingUserID *uuid.UUID `json:"existing_user_id,omitempty"`
}

// EmailInvite is a time-limited, single-use token granting a named email
// address an accessibility level on one project upon redemption.
type EmailInvite struct {
	ID         uuid.UUID     `json:"id"`
	Email      string        `json:"email"`
	ProjectID  uuid.UUID     `json:"project_id"`
	Token      string        `json:"token"`
	Type       InviteType    `json:"type"`
	Status     InviteStatus  `json:"status"`
	Details    InviteDetails `json:"details"`
	InviteLink string        `json:"invite_link"`
	ExpiresAt  time.Time     `json:"expires_at"`
	CreatedBy  uuid.UUID     `json:"created_by"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// Expired reports whether the invite is past its expiry at the given time.
func (i *EmailInvite) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// Usable reports whether the invite can still be redeemed at the given time:
// stored as PENDING and not yet expired. Callers must re-evaluate this on
// every access; nothing sweeps expired invites in the background.
func (i *EmailInvite) Usable(now time.Time) bool {
	return i.Status == InvitePending && !i.Expired(now)
}
