package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fotofolio/backend/internal/auth"
	"github.com/fotofolio/backend/pkg/apperr"
	"github.com/fotofolio/backend/pkg/response"
)

// PrincipalKey is the gin context key the auth middleware stores the
// resolved principal under.
const PrincipalKey = "principal"

// PrincipalLoader re-resolves a principal from storage so revoked or deleted
// accounts lose access immediately, not at token expiry.
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, userID, profileID uuid.UUID) (*auth.Principal, error)
}

// JWTAuth validates the bearer token and loads the current principal into
// the request context.
func JWTAuth(jwtSvc *auth.JWTService, loader PrincipalLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.AbortError(c, apperr.Unauthorized("authorization header required"))
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.AbortError(c, apperr.Unauthorized("authorization header must be a bearer token"))
			return
		}

		claims, err := jwtSvc.Validate(parts[1])
		if err != nil {
			response.AbortError(c, apperr.Unauthorized("invalid or expired token"))
			return
		}

		principal, err := loader.LoadPrincipal(c.Request.Context(), claims.UserID, claims.UserProfileID)
		if err != nil {
			response.AbortError(c, apperr.Unauthorized("account no longer active"))
			return
		}

		c.Set(PrincipalKey, principal)
		c.Next()
	}
}

// PrincipalFrom returns the authenticated principal set by JWTAuth, or nil
// when the request was not authenticated.
func PrincipalFrom(c *gin.Context) *auth.Principal {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*auth.Principal)
	return p
}
