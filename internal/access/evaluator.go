package access

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fotofolio/backend/internal/auth"
	"github.com/fotofolio/backend/pkg/apperr"
)

// Grant is the authorization edge linking a profile to a project with an
// accessibility level. Unique per (project, profile).
type Grant struct {
	ID            uuid.UUID `json:"id"`
	ProjectID     uuid.UUID `json:"project_id"`
	UserProfileID uuid.UUID `json:"user_profile_id"`
	TenantID      uuid.UUID `json:"tenant_id"`
	Level         Level     `json:"accessibility"`
	CreatedAt     time.Time `json:"created_at"`
}

// GrantSource looks up the grant for (project, profile). Implementations
// return pgx.ErrNoRows when no grant exists.
type GrantSource interface {
	GetGrant(ctx context.Context, projectID, profileID uuid.UUID) (*Grant, error)
}

// Evaluator answers authorization questions for resource handlers.
type Evaluator struct {
	grants GrantSource
}

// NewEvaluator creates an evaluator over a grant source.
func NewEvaluator(grants GrantSource) *Evaluator {
	return &Evaluator{grants: grants}
}

// RequireTenant returns the principal's tenant or Forbidden. Every
// tenant-scoped operation calls this first; pure-collaborator CLIENT
// profiles may carry no tenant and are rejected here.
func RequireTenant(p *auth.Principal) (uuid.UUID, error) {
	if p == nil {
		return uuid.Nil, apperr.Unauthorized("authentication required")
	}
	if p.TenantID == nil {
		return uuid.Nil, apperr.Forbidden("tenant access required")
	}
	return *p.TenantID, nil
}

// RequireProjectAccess returns the principal's grant on the project when it
// meets the minimum level, or Forbidden. A missing grant is Forbidden, not
// NotFound: the caller has already resolved the project within its own
// tenant, so existence is not being leaked.
func (e *Evaluator) RequireProjectAccess(ctx context.Context, p *auth.Principal, projectID uuid.UUID, min Level) (*Grant, error) {
	if p == nil {
		return nil, apperr.Unauthorized("authentication required")
	}
	grant, err := e.grants.GetGrant(ctx, projectID, p.UserProfileID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.Forbidden("access denied to this project")
		}
		return nil, apperr.FromPG(err, "project not found")
	}
	if !grant.Level.AtLeast(min) {
		return nil, apperr.Forbidden("insufficient permissions for this operation")
	}
	return grant, nil
}
