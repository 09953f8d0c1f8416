package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/fotofolio/backend/internal/models"
	"github.com/fotofolio/backend/pkg/apperr"
	"github.com/fotofolio/backend/pkg/response"
)

// RequireRole allows the request through only when the authenticated
// principal has one of the given roles. Must run after JWTAuth.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := PrincipalFrom(c)
		if principal == nil {
			response.AbortError(c, apperr.Unauthorized("authentication required"))
			return
		}
		for _, role := range roles {
			if principal.Role == role {
				c.Next()
				return
			}
		}
		response.AbortError(c, apperr.Forbidden("insufficient role for this operation"))
	}
}
