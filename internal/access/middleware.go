package access

import (
	"github.com/gin-gonic/gin"

	"github.com/fotofolio/backend/internal/middleware"
	"github.com/fotofolio/backend/pkg/response"
)

// RequireTenantMiddleware rejects requests whose principal carries no
// tenant. Routes behind it can assume RequireTenant succeeds.
func RequireTenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := RequireTenant(middleware.PrincipalFrom(c)); err != nil {
			response.AbortError(c, err)
			return
		}
		c.Next()
	}
}
