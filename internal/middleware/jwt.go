package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/erp-access-api/internal/models"
	"github.com/noah-isme/erp-access-api/internal/service"
	appErrors "github.com/noah-isme/erp-access-api/pkg/errors"
	"github.com/noah-isme/erp-access-api/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

// ContextPermissionsKey is the gin context key storing the permission engine
// built from the authenticated user's roles.
const ContextPermissionsKey = "permissions"

// JWT protects routes by requiring a valid access token. On success the
// request context is enriched with the session ID and client info the audit
// trail reads, and a permission engine seeded from the token's roles is
// attached to the gin context.
func JWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		ctx := service.WithSessionID(c.Request.Context(), claims.UserID)
		ctx = service.WithClientInfo(ctx, c.ClientIP(), c.GetHeader("User-Agent"))
		c.Request = c.Request.WithContext(ctx)

		c.Set(ContextUserKey, claims)
		c.Set(ContextPermissionsKey, service.PermissionServiceForRoles(claims.Roles))
		c.Next()
	}
}

// OptionalJWT attaches claims when present but does not block.
func OptionalJWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.Next()
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			c.Next()
			return
		}

		ctx := service.WithSessionID(c.Request.Context(), claims.UserID)
		ctx = service.WithClientInfo(ctx, c.ClientIP(), c.GetHeader("User-Agent"))
		c.Request = c.Request.WithContext(ctx)

		c.Set(ContextUserKey, claims)
		c.Set(ContextPermissionsKey, service.PermissionServiceForRoles(claims.Roles))
		c.Next()
	}
}

// CurrentClaims extracts the JWT claims set by the JWT middleware.
func CurrentClaims(c *gin.Context) (*models.JWTClaims, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*models.JWTClaims)
	return claims, ok
}

// CurrentPermissions extracts the permission engine set by the JWT middleware.
func CurrentPermissions(c *gin.Context) (*service.PermissionService, bool) {
	value, exists := c.Get(ContextPermissionsKey)
	if !exists {
		return nil, false
	}
	perms, ok := value.(*service.PermissionService)
	return perms, ok
}
