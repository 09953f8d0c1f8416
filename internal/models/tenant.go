package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is an isolated organizational namespace owned by one enterprise
// signup. Every project, album, photo and grant belongs to exactly one tenant.
type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
