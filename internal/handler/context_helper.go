package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/erp-access-api/internal/middleware"
	"github.com/noah-isme/erp-access-api/internal/models"
	"github.com/noah-isme/erp-access-api/internal/service"
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

func permissionsFromContext(c *gin.Context) *service.PermissionService {
	value, exists := c.Get(middleware.ContextPermissionsKey)
	if !exists {
		return nil
	}
	perms, ok := value.(*service.PermissionService)
	if !ok {
		return nil
	}
	return perms
}
