package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/erp-access-api/internal/service"
)

// AuditView records a VIEW entry on the audit trail after a successful read
// of the given entity type. The entity ID is taken from the named route
// parameter; when the parameter is absent the route is treated as a listing.
func AuditView(audit *service.AuditService, entityType, idParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if audit == nil || c.Writer.Status() >= 400 {
			return
		}

		entityID := ""
		if idParam != "" {
			entityID = c.Param(idParam)
		}

		description := fmt.Sprintf("Viewed %s", entityType)
		if entityID != "" {
			description = fmt.Sprintf("Viewed %s %s", entityType, entityID)
		}
		audit.LogView(c.Request.Context(), entityType, entityID, description)
	}
}
