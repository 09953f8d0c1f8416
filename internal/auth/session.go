package auth

import (
	"context"
	"time"

	"github.com/fotofolio/backend/internal/models"
)

// Session is the login payload returned by every flow that ends in an
// authenticated session: password login, email verification, Google sign-in
// and invite redemption.
type Session struct {
	User         models.UserPublic   `json:"user"`
	UserProfile  *models.UserProfile `json:"userProfile"`
	Tenant       *models.Tenant      `json:"tenant,omitempty"`
	AccessToken  string              `json:"accessToken"`
	RefreshToken string              `json:"refreshToken"`
}

// NewSession issues a token pair for the user acting under the given
// profile, persists the refresh token, and assembles the login payload.
func NewSession(ctx context.Context, repo *Repository, jwtSvc *JWTService, user *models.User, profile *models.UserProfile) (*Session, error) {
	principal := &Principal{
		UserID:        user.ID,
		UserProfileID: profile.ID,
		Email:         user.Email,
		Role:          profile.Role,
		TenantID:      profile.TenantID,
	}

	access, err := jwtSvc.GenerateAccess(principal)
	if err != nil {
		return nil, err
	}
	refresh, err := jwtSvc.GenerateRefresh()
	if err != nil {
		return nil, err
	}
	if err := repo.CreateRefreshToken(ctx, user.ID, refresh, time.Now().Add(jwtSvc.RefreshTTL())); err != nil {
		return nil, err
	}

	var tenant *models.Tenant
	if profile.TenantID != nil {
		tenant, err = repo.GetTenant(ctx, *profile.TenantID)
		if err != nil {
			return nil, err
		}
	}

	return &Session{
		User:         user.ToPublic(),
		UserProfile:  profile,
		Tenant:       tenant,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
