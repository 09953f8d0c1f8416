package access

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fotofolio/backend/internal/auth"
	"github.com/fotofolio/backend/pkg/apperr"
)

type fakeGrants struct {
	grants map[string]*Grant
}

func grantKey(projectID, profileID uuid.UUID) string {
	return projectID.String() + "/" + profileID.String()
}

func (f *fakeGrants) GetGrant(_ context.Context, projectID, profileID uuid.UUID) (*Grant, error) {
	g, ok := f.grants[grantKey(projectID, profileID)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return g, nil
}

func testPrincipal(tenantID *uuid.UUID) *auth.Principal {
	return &auth.Principal{
		UserID:        uuid.New(),
		UserProfileID: uuid.New(),
		Email:         "user@example.com",
		TenantID:      tenantID,
	}
}

func TestRequireTenant(t *testing.T) {
	tenantID := uuid.New()

	if _, err := RequireTenant(nil); apperr.StatusOf(err) != http.StatusUnauthorized {
		t.Fatalf("nil principal: expected 401, got %d", apperr.StatusOf(err))
	}
	if _, err := RequireTenant(testPrincipal(nil)); apperr.StatusOf(err) != http.StatusForbidden {
		t.Fatalf("no tenant: expected 403, got %d", apperr.StatusOf(err))
	}
	got, err := RequireTenant(testPrincipal(&tenantID))
	if err != nil {
		t.Fatalf("with tenant: unexpected error %v", err)
	}
	if got != tenantID {
		t.Fatalf("expected tenant %s, got %s", tenantID, got)
	}
}

func TestRequireProjectAccess(t *testing.T) {
	tenantID := uuid.New()
	projectID := uuid.New()
	principal := testPrincipal(&tenantID)

	grants := &fakeGrants{grants: map[string]*Grant{
		grantKey(projectID, principal.UserProfileID): {
			ProjectID:     projectID,
			UserProfileID: principal.UserProfileID,
			TenantID:      tenantID,
			Level:         Edit,
		},
	}}
	e := NewEvaluator(grants)
	ctx := context.Background()

	t.Run("nil principal is unauthorized", func(t *testing.T) {
		_, err := e.RequireProjectAccess(ctx, nil, projectID, ViewOnly)
		if apperr.StatusOf(err) != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", apperr.StatusOf(err))
		}
	})

	t.Run("missing grant is forbidden", func(t *testing.T) {
		_, err := e.RequireProjectAccess(ctx, principal, uuid.New(), ViewOnly)
		if apperr.StatusOf(err) != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", apperr.StatusOf(err))
		}
	})

	t.Run("grant below minimum is forbidden", func(t *testing.T) {
		_, err := e.RequireProjectAccess(ctx, principal, projectID, Admin)
		if apperr.StatusOf(err) != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", apperr.StatusOf(err))
		}
	})

	t.Run("sufficient grant is returned", func(t *testing.T) {
		g, err := e.RequireProjectAccess(ctx, principal, projectID, ViewOnly)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if g.Level != Edit {
			t.Fatalf("expected EDIT grant, got %s", g.Level)
		}
	})

	t.Run("exact minimum passes", func(t *testing.T) {
		if _, err := e.RequireProjectAccess(ctx, principal, projectID, Edit); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
