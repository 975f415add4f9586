package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/forgottenfelines/tnr-intake-api/internal/middleware"
	"github.com/forgottenfelines/tnr-intake-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// editorFromContext resolves the identity recorded on audit entries.
func editorFromContext(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.Email
	}
	return "system"
}
