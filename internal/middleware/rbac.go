package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/erp-access-api/internal/models"
	"github.com/noah-isme/erp-access-api/internal/service"
	appErrors "github.com/noah-isme/erp-access-api/pkg/errors"
	"github.com/noah-isme/erp-access-api/pkg/response"
)

// RequirePermission guards a route behind a single resource/action check.
// Every decision is observed on the metrics service when one is provided.
func RequirePermission(metrics *service.MetricsService, resource models.Resource, action models.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		perms, ok := CurrentPermissions(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		allowed := perms.CanAccess(resource, action)
		if metrics != nil {
			metrics.ObservePermissionCheck(allowed)
		}
		if !allowed {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "insufficient permissions"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAnyPermission passes when the user holds at least one of the
// provided permissions.
func RequireAnyPermission(metrics *service.MetricsService, permissions ...models.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		perms, ok := CurrentPermissions(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		allowed := perms.HasAnyPermission(permissions...)
		if metrics != nil {
			metrics.ObservePermissionCheck(allowed)
		}
		if !allowed {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "insufficient permissions"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRoles passes when the user holds at least one of the given roles.
func RequireRoles(metrics *service.MetricsService, roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		perms, ok := CurrentPermissions(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		allowed := perms.HasAnyRole(roles...)
		if metrics != nil {
			metrics.ObservePermissionCheck(allowed)
		}
		if !allowed {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "insufficient role"))
			c.Abort()
			return
		}
		c.Next()
	}
}
