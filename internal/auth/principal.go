package auth

import (
	"github.com/google/uuid"

	"github.com/fotofolio/backend/internal/models"
)

// Principal is the resolved identity every authorized operation acts under:
// one user, one explicit profile, and that profile's role and tenant. It is
// rebuilt from storage on each request, not taken from claims alone.
type Principal struct {
	UserID        uuid.UUID
	UserProfileID uuid.UUID
	Email         string
	Role          models.Role
	TenantID      *uuid.UUID
}
