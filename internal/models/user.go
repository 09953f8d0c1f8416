package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a profile role in the platform.
type Role string

const (
	RoleEnterprise Role = "ENTERPRISE"
	RoleClient     Role = "CLIENT"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleEnterprise || r == RoleClient
}

// User represents a platform account. A user owns one or more profiles;
// authentication happens per user, authorization per profile.
type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Password    string    `json:"-"` // bcrypt hash; empty until set (invite-first accounts)
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	IsVerified  bool      `json:"is_verified"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserPublic is User without sensitive fields for API responses.
type UserPublic struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	IsVerified bool      `json:"is_verified"`
}

// ToPublic converts User to UserPublic.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		IsVerified: u.IsVerified,
	}
}

// UserProfile is a role-scoped identity owned by a user, bound to at most
// one tenant. The tenant binding is fixed at creation.
type UserProfile struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Role      Role       `json:"role"`
	Name      string     `json:"name"`
	TenantID  *uuid.UUID `json:"tenant_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
