package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/forgottenfelines/tnr-intake-api/internal/models"
	appErrors "github.com/forgottenfelines/tnr-intake-api/pkg/errors"
	"github.com/forgottenfelines/tnr-intake-api/pkg/response"
)

// RequireRoles restricts a route to the given staff roles.
func RequireRoles(roles ...models.StaffRole) gin.HandlerFunc {
	allowed := make(map[models.StaffRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
