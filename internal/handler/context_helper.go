package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/aulaflow/agenda-api/internal/middleware"
	"github.com/aulaflow/agenda-api/internal/models"
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

// tenantFromContext resolves the caller's tenant. Row-level scoping relies
// on it, so handlers bail out when it is absent.
func tenantFromContext(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.TenantID
	}
	return ""
}
